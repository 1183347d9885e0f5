package grpc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/metadata"
)

func Test_MetadataTokenExtractor(t *testing.T) {
	t.Run("It reads the identity metadata key", func(t *testing.T) {
		token, err := MetadataTokenExtractor(withToken("the-token"))
		require.NoError(t, err)
		assert.Equal(t, "the-token", token)
	})

	t.Run("It falls back to authorization Bearer", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
			"authorization", "Bearer the-token",
		))

		token, err := MetadataTokenExtractor(ctx)
		require.NoError(t, err)
		assert.Equal(t, "the-token", token)
	})

	t.Run("The identity key wins over authorization", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
			"cf-access-jwt-assertion", "edge-token",
			"authorization", "Bearer other-token",
		))

		token, err := MetadataTokenExtractor(ctx)
		require.NoError(t, err)
		assert.Equal(t, "edge-token", token)
	})

	t.Run("No metadata means no token, not an error", func(t *testing.T) {
		token, err := MetadataTokenExtractor(context.Background())
		require.NoError(t, err)
		assert.Empty(t, token)
	})

	t.Run("Duplicate token entries are rejected", func(t *testing.T) {
		ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
			"cf-access-jwt-assertion", "one",
			"cf-access-jwt-assertion", "two",
		))

		_, err := MetadataTokenExtractor(ctx)
		assert.ErrorIs(t, err, ErrMultipleTokenEntries)
	})

	t.Run("A malformed authorization value is rejected", func(t *testing.T) {
		for _, value := range []string{"the-token", "Basic dXNlcg==", "Bearer"} {
			ctx := metadata.NewIncomingContext(context.Background(), metadata.Pairs(
				"authorization", value,
			))

			_, err := MetadataTokenExtractor(ctx)
			assert.ErrorIs(t, err, ErrInvalidAuthFormat, value)
		}
	})
}

package accessmiddleware

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgeguard/go-access-middleware/verifier"
)

func Test_Claims_Context(t *testing.T) {
	t.Run("SetClaims then ClaimsFrom round-trips", func(t *testing.T) {
		claims := &verifier.Claims{Subject: "user-123"}
		ctx := SetClaims(context.Background(), claims)

		got, ok := ClaimsFrom(ctx)
		require.True(t, ok)
		assert.Same(t, claims, got)
	})

	t.Run("An unadorned context has no identity", func(t *testing.T) {
		_, ok := ClaimsFrom(context.Background())
		assert.False(t, ok)
	})
}

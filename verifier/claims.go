package verifier

import "encoding/json"

// Claims is the decoded payload of a verified access token. The named fields
// cover the registered claims plus the identity fields the edge adds; the
// full payload stays reachable through Get and Map.
type Claims struct {
	Issuer        string
	Subject       string
	Audience      []string
	Email         string
	Country       string
	IdentityNonce string
	Expiry        int64
	IssuedAt      int64

	raw map[string]any
}

func (c *Claims) UnmarshalJSON(data []byte) error {
	var payload struct {
		Issuer        string   `json:"iss"`
		Subject       string   `json:"sub"`
		Audience      audience `json:"aud"`
		Email         string   `json:"email"`
		Country       string   `json:"country"`
		IdentityNonce string   `json:"identity_nonce"`
		Expiry        int64    `json:"exp"`
		IssuedAt      int64    `json:"iat"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*c = Claims{
		Issuer:        payload.Issuer,
		Subject:       payload.Subject,
		Audience:      payload.Audience,
		Email:         payload.Email,
		Country:       payload.Country,
		IdentityNonce: payload.IdentityNonce,
		Expiry:        payload.Expiry,
		IssuedAt:      payload.IssuedAt,
		raw:           raw,
	}
	return nil
}

// HasAudience reports whether the aud claim contains the given tag.
func (c *Claims) HasAudience(aud string) bool {
	for _, a := range c.Audience {
		if a == aud {
			return true
		}
	}
	return false
}

// Get returns an arbitrary payload claim by name, or nil when absent.
func (c *Claims) Get(name string) any {
	return c.raw[name]
}

// Map returns the full decoded payload.
func (c *Claims) Map() map[string]any {
	return c.raw
}

// audience accepts both the single-string and list forms of the aud claim.
type audience []string

func (a *audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = audience{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*a = audience(list)
	return nil
}

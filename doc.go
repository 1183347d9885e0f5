/*
Package accessmiddleware provides HTTP middleware that verifies the signed
identity tokens an external SSO edge attaches to inbound requests.

It does not issue tokens or manage sessions. It decides, per request, whether
a valid token signed by the identity edge is present, and either forwards the
request with the decoded identity in the context, redirects the caller to the
edge's hosted login, or rejects with 401.

# Quick Start

	import (
	    accessmiddleware "github.com/edgeguard/go-access-middleware"
	    "github.com/edgeguard/go-access-middleware/keyset"
	    "github.com/edgeguard/go-access-middleware/verifier"
	)

	func main() {
	    provider := keyset.NewCachingProvider()

	    tokenVerifier, err := verifier.New(provider,
	        verifier.WithAudience("your-application-aud-tag"),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    m, err := accessmiddleware.New(tokenVerifier, "myteam.cloudflareaccess.com",
	        accessmiddleware.WithResponseMode(accessmiddleware.ResponseModeHTML),
	        accessmiddleware.WithRedirectOnMissingToken(true),
	    )
	    if err != nil {
	        log.Fatal(err)
	    }

	    http.Handle("/", m.CheckToken(appHandler))
	    http.ListenAndServe(":8080", nil)
	}

# Accessing the identity

	func appHandler(w http.ResponseWriter, r *http.Request) {
	    claims, ok := accessmiddleware.ClaimsFrom(r.Context())
	    if !ok {
	        http.Error(w, "unauthorized", http.StatusUnauthorized)
	        return
	    }
	    fmt.Fprintf(w, "Hello, %s!", claims.Email)
	}

# Denial behavior

Missing and invalid tokens produce the same response on purpose. With
ResponseModeAPI the middleware answers 401 with no detail; with
ResponseModeHTML and WithRedirectOnMissingToken it redirects to the identity
edge's hosted login. The concrete failure (malformed token, unknown key, bad
signature, expired, audience mismatch, key set fetch error) is available to
the configured Logger and Metrics only.

# Dev mode

WithDevBypass(true) disables enforcement entirely and logs each bypassed
request. It exists for local development against an app that is normally
deployed behind the identity edge and must never be enabled in production.

# Key material

Public signing keys are fetched from the identity edge's certs endpoint and
cached for one hour per provider domain; see the keyset package. The cache is
an injected object rather than a process global, so tests construct isolated
instances, and keyset.CachingProvider.Clear forces a refetch on the next
request.
*/
package accessmiddleware

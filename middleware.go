package accessmiddleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/edgeguard/go-access-middleware/verifier"
)

// ResponseMode selects how a denied request is answered: html surfaces may
// be redirected to the hosted login, api surfaces always get a bare 401.
type ResponseMode string

const (
	ResponseModeHTML ResponseMode = "html"
	ResponseModeAPI  ResponseMode = "api"
)

// Default token transports used by the identity edge.
const (
	DefaultTokenHeader = "Cf-Access-Jwt-Assertion"
	DefaultTokenCookie = "CF_Authorization"
)

// TokenVerifier checks one bearer token for a provider domain and returns
// its decoded payload. *verifier.Verifier is the usual implementation.
type TokenVerifier interface {
	Verify(ctx context.Context, token, domain string) (*verifier.Claims, error)
}

// AccessMiddleware wraps protected routes and enforces that every request
// carries a valid identity token issued for the configured team domain.
// Immutable after New; safe for concurrent use across routes.
type AccessMiddleware struct {
	verifier          TokenVerifier
	teamDomain        string
	responseMode      ResponseMode
	redirectOnMissing bool
	devBypass         bool

	tokenExtractor      TokenExtractor
	errorHandler        ErrorHandler
	exclusionURLHandler func(r *http.Request) bool
	logger              Logger
	metrics             Metrics
	tracer              Tracer
}

// LoginURL returns the identity edge's hosted login entry point for a team
// domain. Denied html requests are redirected here when
// WithRedirectOnMissingToken is set.
func LoginURL(teamDomain string) string {
	return "https://" + teamDomain + "/cdn-cgi/access/login"
}

// New constructs an AccessMiddleware verifying tokens for teamDomain.
//
// Example:
//
//	m, err := accessmiddleware.New(tokenVerifier, "myteam.cloudflareaccess.com",
//	    accessmiddleware.WithResponseMode(accessmiddleware.ResponseModeHTML),
//	    accessmiddleware.WithRedirectOnMissingToken(true),
//	)
func New(v TokenVerifier, teamDomain string, opts ...Option) (*AccessMiddleware, error) {
	if v == nil {
		return nil, ErrVerifierNil
	}
	if teamDomain == "" {
		return nil, ErrTeamDomainEmpty
	}

	m := &AccessMiddleware{
		verifier:     v,
		teamDomain:   teamDomain,
		responseMode: ResponseModeHTML,
	}

	for _, opt := range opts {
		if err := opt(m); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}

	m.applyDefaults()

	return m, nil
}

func (m *AccessMiddleware) applyDefaults() {
	if m.tokenExtractor == nil {
		m.tokenExtractor = MultiTokenExtractor(
			HeaderTokenExtractor(DefaultTokenHeader),
			CookieTokenExtractor(DefaultTokenCookie),
		)
	}
	if m.errorHandler == nil {
		m.errorHandler = DenyHandler(m.responseMode, m.redirectOnMissing, LoginURL(m.teamDomain))
	}
	if m.metrics == nil {
		m.metrics = &NoopMetrics{}
	}
	if m.tracer == nil {
		m.tracer = &NoopTracer{}
	}
}

// CheckToken wraps next with token enforcement. Each request resolves in one
// hop: bypass, redirect, reject, or proceed with the decoded identity in the
// request context. A failed verification never refetches keys within the same
// request; refresh happens only through the key set cache's TTL.
func (m *AccessMiddleware) CheckToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.exclusionURLHandler != nil && m.exclusionURLHandler(r) {
			if m.logger != nil {
				m.logger.Debugf("skipping token check for excluded path %s", r.URL.Path)
			}
			next.ServeHTTP(w, r)
			return
		}

		span := m.tracer.StartSpan("accessmiddleware.check_token")
		span.SetTag("team_domain", m.teamDomain)
		defer span.Finish()

		token, err := m.tokenExtractor(r)
		if err != nil {
			// The extractor found a token but could not read it; this is not
			// the missing-token case.
			if m.logger != nil {
				m.logger.Errorf("failed to extract token from %s %s: %v", r.Method, r.URL.Path, err)
			}
			m.countDecision("denied", "extract")
			m.errorHandler(w, r, fmt.Errorf("error extracting token: %w", err))
			return
		}

		if token == "" {
			if m.devBypass {
				if m.logger != nil {
					m.logger.Warnf("dev mode bypass: allowing unauthenticated request to %s; do not run this in production", r.URL.Path)
				}
				m.countDecision("bypassed", "dev_mode")
				next.ServeHTTP(w, r)
				return
			}
			m.countDecision("denied", "missing")
			m.errorHandler(w, r, ErrTokenMissing)
			return
		}

		claims, err := m.verifier.Verify(r.Context(), token, m.teamDomain)
		if err != nil {
			// The failure kind stays in logs and metrics; the caller gets the
			// same denial as a missing token either way.
			if m.logger != nil {
				m.logger.Warnf("token verification failed for %s %s: %v", r.Method, r.URL.Path, err)
			}
			m.countDecision("denied", verifier.FailureKind(err))
			m.errorHandler(w, r, &invalidError{details: err})
			return
		}

		if m.logger != nil {
			m.logger.Debugf("token verified for %s, subject %s", r.URL.Path, claims.Subject)
		}
		m.countDecision("allowed", "")
		next.ServeHTTP(w, r.Clone(SetClaims(r.Context(), claims)))
	})
}

func (m *AccessMiddleware) countDecision(result, reason string) {
	m.metrics.IncCounter("access_auth_decisions_total", map[string]string{
		"result": result,
		"reason": reason,
	})
}

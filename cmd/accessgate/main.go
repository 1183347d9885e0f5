// Command accessgate runs a small gateway that puts access token enforcement
// in front of an upstream HTTP service. Health and metrics endpoints stay
// unprotected.
package main

import (
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	accessmiddleware "github.com/edgeguard/go-access-middleware"
	"github.com/edgeguard/go-access-middleware/config"
	"github.com/edgeguard/go-access-middleware/keyset"
	"github.com/edgeguard/go-access-middleware/verifier"
)

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("log_level", cfg.LogLevel).Warn("unknown log level, using info")
	}

	logger := accessmiddleware.NewLogrusLogger(log)
	metrics := accessmiddleware.NewPrometheusMetrics()

	provider := keyset.NewCachingProvider(
		keyset.WithLogger(logger),
		keyset.WithMetrics(metrics),
	)

	verifierOpts := []verifier.Option{}
	if cfg.Audience != "" {
		verifierOpts = append(verifierOpts, verifier.WithAudience(cfg.Audience))
	}
	tokenVerifier, err := verifier.New(provider, verifierOpts...)
	if err != nil {
		log.WithError(err).Fatal("failed to build verifier")
	}

	m, err := accessmiddleware.New(tokenVerifier, cfg.TeamDomain,
		accessmiddleware.WithResponseMode(accessmiddleware.ResponseMode(cfg.ResponseMode)),
		accessmiddleware.WithRedirectOnMissingToken(cfg.RedirectOnMissing),
		accessmiddleware.WithDevBypass(cfg.DevMode),
		accessmiddleware.WithLogger(logger),
		accessmiddleware.WithMetrics(metrics),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to build middleware")
	}

	upstream, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		log.WithError(err).Fatal("invalid upstream URL")
	}
	proxy := httputil.NewSingleHostReverseProxy(upstream)

	mux := http.NewServeMux()
	mux.Handle("/healthz", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", m.CheckToken(proxy))

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.WithFields(logrus.Fields{
		"listen_addr": cfg.ListenAddr,
		"upstream":    upstream.String(),
		"team_domain": cfg.TeamDomain,
		"dev_mode":    cfg.DevMode,
	}).Info("accessgate listening")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.WithError(err).Fatal("server exited")
	}
}

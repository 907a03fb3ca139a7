// Package server assembles the development backend: services over the
// in-memory store, the chi router and its metrics endpoint.
package server

import (
	"fmt"
	nethttp "net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/atinyakov/DigitalHouse/internal/config"
	"github.com/atinyakov/DigitalHouse/internal/middleware"
	"github.com/atinyakov/DigitalHouse/internal/repository"
	"github.com/atinyakov/DigitalHouse/internal/server/handler/http"
	"github.com/atinyakov/DigitalHouse/internal/service"
)

// NewHandler wires every service over store and returns the router. When
// reg is non-nil request metrics are recorded in it and served on /metrics.
func NewHandler(store *repository.Memory, opts *config.ServerOptions, reg *prometheus.Registry, log *zap.Logger) (nethttp.Handler, error) {
	tokens := service.NewTokens(opts.JWTSecret, opts.TokenTTL)

	authService := service.NewAuthService(store, tokens, service.AuthOptions{
		AutoApprove: opts.AutoApprove,
		OTPCode:     opts.OTPCode,
		OTPTTL:      opts.OTPTTL,
	}, log)
	contentService := service.NewContentService(store, log)
	profileService := service.NewProfileService(store, opts.AutoApprove, log)
	mediaService := service.NewMediaService(store, tokens, opts.PublicURL, log)

	h := http.Handlers{
		Auth:    &http.AuthHandler{AuthService: authService, Log: log},
		Home:    &http.HomeHandler{HomeService: contentService, Log: log},
		Posts:   &http.PostHandler{PostService: contentService, Log: log},
		Profile: &http.ProfileHandler{ProfileService: profileService, MediaService: mediaService, Log: log},
		Media:   &http.MediaHandler{MediaService: mediaService, Log: log},
		Options: &http.OptionsHandler{Options: store},
		Admin:   &http.AdminHandler{AdminService: profileService, Log: log},
	}

	var (
		metrics        *middleware.Metrics
		metricsHandler nethttp.Handler
	)
	if reg != nil {
		var err error
		if metrics, err = middleware.NewMetrics(reg); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
		metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	return http.NewRouter(h, authService, metrics, metricsHandler, log), nil
}

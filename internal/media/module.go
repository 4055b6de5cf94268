// Package media provides the media resources bounded context: educational
// content with optional file attachments and a text-to-speech proxy.
package media

import (
	"educare/internal/adapters/storage"
	apphttp "educare/internal/http"
	"educare/internal/media/handler"
	"educare/internal/media/repository"
	"educare/internal/media/service"
	"educare/platform/config"
	"educare/platform/httpkit"
	"educare/platform/logger"
	"educare/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the subset of application config the media module reads.
type Config interface {
	config.UploadConfig
	config.TTSConfig
	GetMinioBucketMediaResources() string
}

// Module is the media bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

var _ apphttp.Module = (*Module)(nil)

// NewModule wires the media module. store and cleanup may be nil when object
// storage or the scheduler are not configured.
func NewModule(pool *pgxpool.Pool, store storage.StorageService, cleanup service.CleanupScheduler, metrics service.Metrics, cfg Config, val *validator.Validator, log *logger.Logger) *Module {
	return newModule(repository.New(pool), store, cleanup, metrics, cfg, val, log)
}

func newModule(repo repository.Repository, store storage.StorageService, cleanup service.CleanupScheduler, metrics service.Metrics, cfg Config, val *validator.Validator, log *logger.Logger) *Module {
	// Resources may name their own endpoint, so the client exists even
	// without a default.
	tts := service.NewTTSClient(cfg.GetTTSEndpoint(), cfg.GetTTSTimeout())

	svc := service.New(service.Deps{
		Repo:      repo,
		Storage:   store,
		Cleanup:   cleanup,
		Metrics:   metrics,
		TTS:       tts,
		Validator: val,
		Log:       log,
	}, service.Config{
		Bucket:      cfg.GetMinioBucketMediaResources(),
		MaxFileSize: cfg.GetUploadMaxFileSize(),
	})

	return &Module{
		handler: handler.New(svc, val, cfg.GetUploadMaxFileSize()),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "media"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts media resource routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	editors := httpkit.RequireRoles(ctx.Logger, httpkit.RoleAdmin, httpkit.RoleOwner, httpkit.RoleProfessional)

	resources := ctx.Protected.Group("/resources")
	resources.GET("", m.handler.List)
	resources.POST("/tts", m.handler.Speak)
	resources.GET("/:id", m.handler.Get)
	resources.GET("/:id/file", m.handler.Download)
	resources.POST("", editors, m.handler.Create)
	resources.PUT("/:id", editors, m.handler.Update)
	resources.DELETE("/:id", editors, m.handler.Delete)
}

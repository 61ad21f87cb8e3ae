package setup

import (
	"context"
	"fmt"

	"github.com/mdpress/mdpress/internal/config"
	"github.com/mdpress/mdpress/internal/handler"
	"github.com/mdpress/mdpress/internal/markdown"
	"github.com/mdpress/mdpress/internal/middleware"
	"github.com/mdpress/mdpress/internal/service"
	"github.com/mdpress/mdpress/internal/storage/pg"
	"github.com/mdpress/mdpress/internal/utils/email"
	"github.com/mdpress/mdpress/internal/utils/jwt"
)

// Dependencies wires the storage, services and HTTP layer together.
type Dependencies struct {
	Storage        *pg.Storage
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Config         *config.Config
}

func SetupDependencies(ctx context.Context, cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())
	emailSender := email.New(&cfg.Private.Email)

	authService := service.NewAuth(storage, emailSender, jwtService, cfg)
	blogService := service.NewBlog(storage, cfg)

	h := handler.New(authService, blogService, markdown.New(), storage, cfg)
	authMw := middleware.NewAuth(jwtService, storage)

	return &Dependencies{
		Storage:        storage,
		Handler:        h,
		AuthMiddleware: authMw,
		Config:         cfg,
	}, nil
}

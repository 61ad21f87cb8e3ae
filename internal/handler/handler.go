package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mdpress/mdpress/internal/api"
	"github.com/mdpress/mdpress/internal/config"
	"github.com/mdpress/mdpress/internal/domain"
	"github.com/mdpress/mdpress/internal/logger"
	"github.com/mdpress/mdpress/internal/markdown"
	"github.com/mdpress/mdpress/internal/service"
)

// Pinger reports database reachability for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	auth   service.AuthService
	blog   service.BlogService
	md     *markdown.Renderer
	health Pinger
	cfg    *config.Config
}

func New(auth service.AuthService, blog service.BlogService, md *markdown.Renderer, health Pinger, cfg *config.Config) *Handler {
	return &Handler{auth, blog, md, health, cfg}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "error", err)
	}
}

func userResponse(user domain.User) api.UserResponse {
	return api.UserResponse{
		Id:        user.Id,
		Username:  user.Username,
		Email:     user.Email,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}
}

func blogResponse(post domain.BlogPost) api.BlogResponse {
	return api.BlogResponse{
		Id:        post.Id,
		Title:     post.Title,
		Content:   post.Content,
		AuthorId:  post.AuthorId,
		Author:    post.Author,
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
		UpdatedAt: post.UpdatedAt.Format(time.RFC3339),
	}
}

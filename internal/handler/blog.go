package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/mdpress/mdpress/internal/api"
	"github.com/mdpress/mdpress/internal/domain"
	"github.com/mdpress/mdpress/internal/logger"
	mw "github.com/mdpress/mdpress/internal/middleware"
	"github.com/mdpress/mdpress/internal/utils"
)

const defaultPage int = 1

func (h *Handler) ListBlogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := defaultPage
	var err error
	if pageQuery := query.Get("page"); pageQuery != "" {
		if page, err = parseIntParam(pageQuery, "page"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	limit := 0 // service falls back to the configured default
	if limitQuery := query.Get("limit"); limitQuery != "" {
		if limit, err = parseIntParam(limitQuery, "limit"); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	}

	filter := domain.BlogFilter{AuthorId: query.Get("authorId")}

	pageData, err := h.blog.List(filter, page, limit)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	blogs := make([]api.BlogResponse, len(pageData.Posts))
	for i, post := range pageData.Posts {
		blogs[i] = blogResponse(post)
	}

	writeJSON(w, http.StatusOK, api.BlogListResponse{Blogs: blogs, Pagination: pageData.Pagination})
}

func (h *Handler) GetBlog(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	post, err := h.blog.GetById(id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	blog := blogResponse(post)
	rendered, err := h.md.Render(post.Content)
	if err != nil {
		// Raw markdown is still served if rendering fails
		logger.Log.Error("failed to render post content", "id", post.Id, "error", err)
	} else {
		blog.ContentHTML = rendered
	}

	writeJSON(w, http.StatusOK, api.SingleBlogResponse{Blog: blog})
}

func (h *Handler) CreateBlog(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	var body api.CreateBlogRequest
	if err := utils.DecodeValidate(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.blog.Create(body.Title, body.Content, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, api.MutateBlogResponse{Message: "Blog post created", Blog: blogResponse(post)})
}

func (h *Handler) UpdateBlog(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	var body api.UpdateBlogRequest
	if err := utils.Decode(r.Body, &body); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	post, err := h.blog.Update(id, domain.BlogPatch{Title: body.Title, Content: body.Content}, user.Id)
	if err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.MutateBlogResponse{Message: "Blog post updated", Blog: blogResponse(post)})
}

func (h *Handler) DeleteBlog(w http.ResponseWriter, r *http.Request) {
	user := mw.GetUserFromContext(r)
	if user == nil {
		http.Error(w, "Not authorized", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")

	if err := h.blog.Delete(id, user.Id); err != nil {
		utils.WriteErrorAndStatusCode(w, err)
		return
	}

	writeJSON(w, http.StatusOK, api.DeleteBlogResponse{Message: "Blog post deleted", Id: id})
}

package api

import "github.com/mdpress/mdpress/internal/domain"

// Request DTOs

type CreateBlogRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content" validate:"required"`
}

type UpdateBlogRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// Response DTOs

type BlogResponse struct {
	Id          string                `json:"id"`
	Title       string                `json:"title"`
	Content     string                `json:"content"`
	ContentHTML string                `json:"contentHtml,omitempty"`
	AuthorId    string                `json:"authorId"`
	Author      *domain.AuthorSummary `json:"author,omitempty"`
	CreatedAt   string                `json:"createdAt"`
	UpdatedAt   string                `json:"updatedAt"`
}

type BlogListResponse struct {
	Blogs      []BlogResponse    `json:"blogs"`
	Pagination domain.Pagination `json:"pagination"`
}

type SingleBlogResponse struct {
	Blog BlogResponse `json:"blog"`
}

type MutateBlogResponse struct {
	Message string       `json:"message"`
	Blog    BlogResponse `json:"blog"`
}

type DeleteBlogResponse struct {
	Message string `json:"message"`
	Id      string `json:"id"`
}

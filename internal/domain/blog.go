package domain

import "time"

type BlogPost struct {
	Id        string
	Title     string
	Content   string // markdown source
	AuthorId  string
	Author    *AuthorSummary
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlogPatch carries the mutable fields of an update request.
// Nil fields are left untouched.
type BlogPatch struct {
	Title   *string
	Content *string
}

func (p BlogPatch) Empty() bool {
	return p.Title == nil && p.Content == nil
}

type BlogFilter struct {
	AuthorId string // empty matches all authors
}

type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

type BlogPage struct {
	Posts      []BlogPost
	Pagination Pagination
}

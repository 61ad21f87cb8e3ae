package domain

import "time"

type User struct {
	Id           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AuthorSummary is the denormalized author view attached to blog posts.
type AuthorSummary struct {
	Id       string `json:"id"`
	Username string `json:"username"`
}

package models

import (
	"time"
)

type BlogPost struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Summary   string    `json:"summary,omitempty"`
	AuthorID  string    `json:"authorId"`
	Tags      []string  `json:"tags,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	Draft     bool      `json:"draft"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateBlogPostRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Summary  string   `json:"summary,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Draft    bool     `json:"draft"`
}

type UpdateBlogPostRequest struct {
	Title    *string   `json:"title,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Summary  *string   `json:"summary,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	ImageURL *string   `json:"imageUrl,omitempty"`
	Draft    *bool     `json:"draft,omitempty"`
}

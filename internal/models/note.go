package models

import (
	"time"
)

// DefaultCategory is assigned when a note is created without one
const DefaultCategory = "general"

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Tags      []string  `json:"tags"`
	TypeID    string    `json:"typeId,omitempty"`
	IsPublic  bool      `json:"isPublic"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type CreateNoteRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category,omitempty"`
	Tags     []string `json:"tags,omitempty"`
	TypeID   string   `json:"typeId,omitempty"`
	IsPublic bool     `json:"isPublic"`
}

type UpdateNoteRequest struct {
	Title    *string   `json:"title,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Category *string   `json:"category,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	TypeID   *string   `json:"typeId,omitempty"`
	IsPublic *bool     `json:"isPublic,omitempty"`
}

// Sort and order values accepted by note listing
const (
	SortCreated = "created"
	SortUpdated = "updated"
	OrderAsc    = "asc"
	OrderDesc   = "desc"
)

type NoteListFilters struct {
	Query    string
	Category string
	Tags     []string
	Sort     string
	Order    string
	Offset   int
	Limit    int
}

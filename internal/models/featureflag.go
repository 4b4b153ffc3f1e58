package models

import (
	"time"
)

type FeatureFlag struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Enabled     bool      `json:"enabled"`
	Category    string    `json:"category,omitempty"`
	Status      string    `json:"status,omitempty"`
	AdminOnly   bool      `json:"adminOnly"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type UpdateFeatureFlagRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Enabled     *bool   `json:"enabled,omitempty"`
	Category    *string `json:"category,omitempty"`
	Status      *string `json:"status,omitempty"`
	AdminOnly   *bool   `json:"adminOnly,omitempty"`
}

// Well-known flag ids referenced by middleware and handlers
const (
	FlagCookieAuth      = "cookie-auth"
	FlagGuestbook       = "guestbook"
	FlagMaintenanceMode = "maintenance-mode"
	FlagBetaBlogEditor  = "beta-blog-editor"
)

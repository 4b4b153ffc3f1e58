package models

import (
	"time"
)

type GuestbookEntry struct {
	Name      string    `json:"name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateGuestbookEntryRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

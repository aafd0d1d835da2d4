package models

import (
	"time"

	"github.com/google/uuid"
)

// Admin is a reviewer account allowed to list and review submitted records.
type Admin struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

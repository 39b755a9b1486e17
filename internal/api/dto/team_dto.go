package dto

import "time"

// TeamRequest payload for create and update.
type TeamRequest struct {
	Name      *string `json:"name"`
	Specialty *string `json:"specialty"`
	IsActive  *bool   `json:"is_active"`
}

// TeamResponse representation.
type TeamResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Specialty string    `json:"specialty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

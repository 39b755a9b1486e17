package domain

import "time"

// Team represents a maintenance crew that work orders are assigned to.
type Team struct {
	ID        string
	Name      string
	Specialty string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

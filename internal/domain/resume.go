package domain

import "time"

// Resume is the owned resource guarded by ownership checks.
type Resume struct {
	ID        int64
	UserID    int64
	Title     string
	Summary   string
	IsPublic  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

package domain

import "time"

// Auditable provides the common identity and audit fields embedded in every
// persisted domain type.
type Auditable struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (a *Auditable) Touch() {
	a.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (a *Auditable) InitTimestamps() {
	now := time.Now()
	a.CreatedAt = now
	a.UpdatedAt = now
}

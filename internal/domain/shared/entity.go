package shared

import (
	"time"

	"github.com/google/uuid"
)

// Entity is anything with a stable identity
type Entity interface {
	GetID() uuid.UUID
}

// BaseEntity carries the identity and timestamps every persisted company,
// relationship and recommendation has. Timestamps round-trip through the
// persistence models unchanged.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity assigns a fresh ID with CreatedAt equal to UpdatedAt
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
}

func (e *BaseEntity) GetID() uuid.UUID {
	return e.ID
}

// Touch moves UpdatedAt to now. State-changing methods call it.
func (e *BaseEntity) Touch() {
	e.UpdatedAt = time.Now()
}

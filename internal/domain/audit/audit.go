// Package audit defines the audit trail written by mutating operations.
package audit

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Action names recorded in the audit trail
const (
	ActionRelationshipCreated    = "relationship.created"
	ActionRelationshipUpdated    = "relationship.updated"
	ActionRelationshipDeleted    = "relationship.deleted"
	ActionRecommendationReviewed = "recommendation.reviewed"
)

// Entry is one audit record
type Entry struct {
	ID         uuid.UUID
	ActorID    uuid.UUID
	Action     string
	EntityType string
	EntityID   uuid.UUID
	Before     json.RawMessage
	After      json.RawMessage
	CreatedAt  time.Time
}

// Recorder persists audit entries
type Recorder interface {
	Record(ctx context.Context, entry Entry) error
}

// Snapshot is a flat field map of an entity used for diffs
type Snapshot map[string]any

// Diff returns the before/after JSON of the fields that differ between two
// snapshots. Fields only present on one side are included. Both results are
// nil when nothing changed.
func Diff(before, after Snapshot) (json.RawMessage, json.RawMessage, error) {
	changedBefore := Snapshot{}
	changedAfter := Snapshot{}

	for key, oldValue := range before {
		newValue, ok := after[key]
		if !ok || !reflect.DeepEqual(oldValue, newValue) {
			changedBefore[key] = oldValue
			if ok {
				changedAfter[key] = newValue
			}
		}
	}
	for key, newValue := range after {
		if _, ok := before[key]; !ok {
			changedAfter[key] = newValue
		}
	}

	if len(changedBefore) == 0 && len(changedAfter) == 0 {
		return nil, nil, nil
	}

	beforeJSON, err := json.Marshal(changedBefore)
	if err != nil {
		return nil, nil, err
	}
	afterJSON, err := json.Marshal(changedAfter)
	if err != nil {
		return nil, nil, err
	}
	return beforeJSON, afterJSON, nil
}

// Marshal encodes a full snapshot, used for create and delete records
func Marshal(s Snapshot) (json.RawMessage, error) {
	if s == nil {
		return nil, nil
	}
	return json.Marshal(s)
}

// Package models defines the persisted entities shared between the API
// handlers and the storage layer.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Status enumerates the lifecycle states an item can be in.
type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

// ParseStatus validates a raw status value against the enumerated set.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.TrimSpace(raw))
	if !status.Valid() {
		return "", fmt.Errorf("invalid status %q, expected todo, doing, or done", raw)
	}
	return status, nil
}

// Valid reports whether the status is one of the enumerated values.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusDoing, StatusDone:
		return true
	}
	return false
}

// Item is the managed resource record. IDs and timestamps are assigned by the
// store at insertion time and are never client-supplied.
type Item struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Package service defines the backend-agnostic interface for submitting time logs.
package service

import (
	"context"
	"time"
)

// Submitter authenticates against the project tracker and records time
// against a task. Commands never talk HTTP directly.
type Submitter interface {
	// Login starts an authenticated session.
	Login(ctx context.Context, user, password string) error

	// LogTask records hours worked on the task with the given tracker id.
	// Login must have succeeded first.
	LogTask(ctx context.Context, taskID string, date time.Time, hours float64, description string) error
}

// Factory creates a Submitter for the tracker at server.
type Factory func(ctx context.Context, server string) (Submitter, error)

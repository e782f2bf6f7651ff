// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"dpclient/internal/service"
)

// ErrAuthRejected is returned by FakeSubmitter.Login when the credentials do not match.
var ErrAuthRejected = errors.New("login rejected")

// ErrNotLoggedIn is returned by FakeSubmitter.LogTask before a successful Login.
var ErrNotLoggedIn = errors.New("not logged in")

// FakeSubmitter is an in-memory implementation of service.Submitter for testing.
type FakeSubmitter struct {
	mu       sync.Mutex
	loggedIn bool
	entries  []service.Entry

	// User and Password, when set, are the only accepted credentials.
	User     string
	Password string

	// Server is the server the factory was called with.
	Server string

	// Error injection for testing
	FactoryErr error
	LoginErr   error
	LogTaskErr error

	// Calls counts factory, Login and LogTask invocations.
	FactoryCalls int
	LoginCalls   int
	LogTaskCalls int
}

// NewFakeSubmitter creates a FakeSubmitter that accepts any credentials.
func NewFakeSubmitter() *FakeSubmitter {
	return &FakeSubmitter{}
}

// Factory returns a service.Factory handing out f.
func (f *FakeSubmitter) Factory() service.Factory {
	return func(ctx context.Context, server string) (service.Submitter, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.FactoryCalls++
		f.Server = server
		if f.FactoryErr != nil {
			return nil, f.FactoryErr
		}
		return f, nil
	}
}

// Login implements service.Submitter.
func (f *FakeSubmitter) Login(ctx context.Context, user, password string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LoginCalls++
	if f.LoginErr != nil {
		return f.LoginErr
	}
	if (f.User != "" && user != f.User) || (f.Password != "" && password != f.Password) {
		return ErrAuthRejected
	}
	f.loggedIn = true
	return nil
}

// LogTask implements service.Submitter.
func (f *FakeSubmitter) LogTask(ctx context.Context, taskID string, date time.Time, hours float64, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LogTaskCalls++
	if f.LogTaskErr != nil {
		return f.LogTaskErr
	}
	if !f.loggedIn {
		return ErrNotLoggedIn
	}
	f.entries = append(f.entries, service.Entry{
		TaskID:      taskID,
		Date:        date,
		Hours:       hours,
		Description: description,
	})
	return nil
}

// Entries returns the submitted entries.
func (f *FakeSubmitter) Entries() []service.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Entry, len(f.entries))
	copy(out, f.entries)
	return out
}

// Calls returns the total number of factory, Login and LogTask calls.
func (f *FakeSubmitter) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.FactoryCalls + f.LoginCalls + f.LogTaskCalls
}

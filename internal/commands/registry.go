package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds registered commands.
type Registry struct {
	mu   sync.RWMutex
	cmds map[Verb]Command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds: make(map[Verb]Command),
	}
}

// Register adds a command to the registry.
// Returns an error if the verb is already registered.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, exists := r.cmds[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}
	r.cmds[name] = c
	return nil
}

// Find looks up a command by the verb typed by the user. Matching is exact.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[Verb(name)]
	return cmd, ok
}

// All returns all commands sorted by verb.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, string(name))
	}
	sort.Strings(names)

	result := make([]Command, len(names))
	for i, name := range names {
		result[i] = r.cmds[Verb(name)]
	}
	return result
}

// NewDefaultRegistry returns a registry holding the four dpclient verbs.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, c := range []Command{&ConfigCmd{}, &TaskCmd{}, &LogCmd{}, &HelpCmd{}} {
		if err := r.Register(c); err != nil {
			panic(err)
		}
	}
	return r
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewDefaultRegistry()

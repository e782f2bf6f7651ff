// Package commands provides the command interface and implementations.
package commands

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"dpclient/internal/record"
	"dpclient/internal/service"
)

// Verb is a command name typed on the command line.
type Verb string

// The recognized verbs.
const (
	VerbConfig Verb = "config"
	VerbTask   Verb = "task"
	VerbLog    Verb = "log"
	VerbHelp   Verb = "help"
)

// Access describes what a command needs from the store.
type Access int

const (
	// AccessNone commands never touch the data file.
	AccessNone Access = iota
	// AccessRead commands get the loaded record; nothing is saved.
	AccessRead
	// AccessWrite commands get the loaded record, which is saved if Run succeeds.
	AccessWrite
)

// Unbounded as the max of Arity means any number of trailing arguments.
const Unbounded = -1

// Env carries what a command may use while running.
type Env struct {
	// Record is the loaded data file; nil for AccessNone commands.
	Record *record.Record

	// Submitters creates the remote submitter for the log command.
	Submitters service.Factory

	// Registry is the set of known commands, used by help.
	Registry *Registry

	Logger *log.Logger
}

func (e *Env) logger() *log.Logger {
	if e.Logger == nil {
		return log.New(io.Discard)
	}
	return e.Logger
}

// Command defines the interface for CLI commands.
type Command interface {
	// Name returns the verb selecting the command.
	Name() Verb

	// Synopsis returns a short description for help output.
	Synopsis() string

	// Usage returns the full static usage text.
	Usage() string

	// Arity returns the accepted number of positional arguments.
	// max may be Unbounded.
	Arity() (min, max int)

	// Access returns how the dispatcher must wrap Run with load and save.
	Access() Access

	// Run executes the command and writes its result to out.
	// The argument count has already been checked against Arity.
	Run(ctx context.Context, env *Env, args []string, out io.Writer) error
}

// CheckArity reports whether n arguments are acceptable for c.
func CheckArity(c Command, n int) bool {
	min, max := c.Arity()
	return n >= min && (max == Unbounded || n <= max)
}

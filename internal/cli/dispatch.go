package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"dpclient/internal/apperr"
	"dpclient/internal/commands"
	"dpclient/internal/exitcode"
	"dpclient/internal/record"
	"dpclient/internal/service"
	"dpclient/internal/store"
)

// Dispatcher resolves the verb, checks arity and runs the command inside the
// store access it declares.
type Dispatcher struct {
	registry   *commands.Registry
	store      *store.Store
	submitters service.Factory
	logger     *log.Logger
}

// NewDispatcher creates a new dispatcher.
func NewDispatcher(registry *commands.Registry, st *store.Store, submitters service.Factory, logger *log.Logger) *Dispatcher {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Dispatcher{
		registry:   registry,
		store:      st,
		submitters: submitters,
		logger:     logger,
	}
}

// Run dispatches args and returns the exit code. Results go to out; a single
// error line (plus usage text for usage errors) goes to errOut.
func (d *Dispatcher) Run(ctx context.Context, args []string, out, errOut io.Writer) int {
	// No args -> show help
	if len(args) == 0 {
		args = []string{string(commands.VerbHelp)}
	}

	name := args[0]
	cmd, ok := d.registry.Find(name)
	if !ok {
		return d.fail(errOut, nil, apperr.New(apperr.UnknownCommand, "%s", name))
	}

	positional := args[1:]
	if !commands.CheckArity(cmd, len(positional)) {
		return d.fail(errOut, cmd, apperr.New(apperr.Usage, "wrong number of arguments for %s", cmd.Name()))
	}

	// Output is held back until the record has been saved.
	var buf bytes.Buffer
	env := &commands.Env{
		Submitters: d.submitters,
		Registry:   d.registry,
		Logger:     d.logger,
	}
	run := func(rec *record.Record) error {
		env.Record = rec
		return cmd.Run(ctx, env, positional, &buf)
	}

	d.logger.Debug("dispatch", "verb", cmd.Name(), "args", len(positional), "file", d.store.Path())

	var err error
	switch cmd.Access() {
	case commands.AccessWrite:
		err = d.store.Update(ctx, run)
	case commands.AccessRead:
		err = d.store.View(ctx, run)
	default:
		err = run(nil)
	}
	if err != nil {
		return d.fail(errOut, cmd, err)
	}

	// The record is already saved; only the report of it is lost.
	if _, err := out.Write(buf.Bytes()); err != nil {
		return d.fail(errOut, cmd, apperr.Wrap(apperr.IO, err, "write output"))
	}
	return exitcode.Success
}

// fail prints err as one line naming the help command to consult and returns
// the matching exit code. Usage errors also print the command's usage text.
func (d *Dispatcher) fail(errOut io.Writer, cmd commands.Command, err error) int {
	topic := ""
	if cmd != nil {
		topic = " " + string(cmd.Name())
	}
	if e, ok := apperr.As(err); ok {
		switch {
		case e.Kind == apperr.UnknownCommand:
			topic = ""
		case e.Topic != "":
			topic = " " + e.Topic
		}
	}

	fmt.Fprintf(errOut, "error: %s (see: dpclient help%s)\n", err, topic)
	if cmd != nil && apperr.IsKind(err, apperr.Usage) {
		fmt.Fprint(errOut, "\n"+cmd.Usage())
	}
	return apperr.ExitCode(err)
}

package commands

import (
	"context"
	"fmt"
	"io"

	"dpclient/internal/apperr"
)

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() Verb        { return VerbHelp }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Arity() (int, int) { return 0, 1 }
func (c *HelpCmd) Access() Access    { return AccessNone }
func (c *HelpCmd) Usage() string     { return helpUsage }

func (c *HelpCmd) Run(ctx context.Context, env *Env, args []string, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(out, helpText)
		return nil
	}

	reg := env.Registry
	if reg == nil {
		reg = DefaultRegistry
	}
	cmd, ok := reg.Find(args[0])
	if !ok {
		return apperr.New(apperr.UnknownCommand, "%s", args[0])
	}
	fmt.Fprint(out, cmd.Usage())
	return nil
}

const helpText = `Usage:
  dpclient help [verb]                           Show help for a verb
  dpclient config [setting [value]]              Show or change server, user, password
  dpclient task [name [id]]                      Show tasks or map a name to a dotProject task id
  dpclient log <date> <hours> <task> <text...>   Log hours on a task

Environment:
  DPCLIENT_FILE     Data file (default ~/.dpclient)
  DPCLIENT_DEBUG    Print debug logs to stderr
  DPCLIENT_TIMEOUT  HTTP timeout, e.g. 45s (default 30s)
`

const helpUsage = `Usage: dpclient help [verb]

Without a verb, lists all verbs. With a verb, shows its usage.
Verbs: config, task, log, help
`

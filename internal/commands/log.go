package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"dpclient/internal/timelog"
)

// LogCmd implements the log command.
type LogCmd struct{}

func (c *LogCmd) Name() Verb        { return VerbLog }
func (c *LogCmd) Synopsis() string  { return "Log hours on a task" }
func (c *LogCmd) Arity() (int, int) { return 4, Unbounded }
func (c *LogCmd) Access() Access    { return AccessRead }
func (c *LogCmd) Usage() string     { return logUsage }

func (c *LogCmd) Run(ctx context.Context, env *Env, args []string, out io.Writer) error {
	// The description is free text and is passed on untrimmed.
	description := strings.Join(args[3:], " ")
	result, err := timelog.Log(ctx, env.Record, args[0], args[1], args[2], description, env.Submitters, env.logger())
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result)
	return nil
}

const logUsage = `Usage: dpclient log <date> <hours> <task> <description...>

  date          Day worked, dd/mm/yyyy
  hours         Decimal hours, e.g. 1.5
  task          A task name added with "dpclient task"
  description   Free text; remaining words are joined with spaces

Requires server, user and password (see "dpclient help config").
`

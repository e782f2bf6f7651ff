package commands

import (
	"context"
	"fmt"
	"io"

	"dpclient/internal/record"
)

// TaskCmd implements the task command.
type TaskCmd struct{}

func (c *TaskCmd) Name() Verb        { return VerbTask }
func (c *TaskCmd) Synopsis() string  { return "Show tasks or add a task mapping" }
func (c *TaskCmd) Arity() (int, int) { return 0, 2 }
func (c *TaskCmd) Access() Access    { return AccessWrite }
func (c *TaskCmd) Usage() string     { return taskUsage }

func (c *TaskCmd) Run(ctx context.Context, env *Env, args []string, out io.Writer) error {
	var (
		result string
		err    error
	)
	switch len(args) {
	case 0:
		result, err = record.GetTask(env.Record, "")
	case 1:
		result, err = record.GetTask(env.Record, args[0])
	default:
		result, err = record.SetTask(env.Record, args[0], args[1])
		if err == nil {
			env.logger().Debug("task mapped", "name", args[0], "id", args[1])
		}
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result)
	return nil
}

const taskUsage = `Usage: dpclient task [name [id]]

  dpclient task                List task names and their dotProject ids
  dpclient task <name>         Show the id of one task
  dpclient task <name> <id>    Map a name to a dotProject task id

Names and ids must each be unique.
`

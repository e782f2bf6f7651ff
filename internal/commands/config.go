package commands

import (
	"context"
	"fmt"
	"io"
	"strings"

	"dpclient/internal/record"
)

// ConfigCmd implements the config command.
type ConfigCmd struct{}

func (c *ConfigCmd) Name() Verb        { return VerbConfig }
func (c *ConfigCmd) Synopsis() string  { return "Show or change settings" }
func (c *ConfigCmd) Arity() (int, int) { return 0, Unbounded }
func (c *ConfigCmd) Access() Access    { return AccessWrite }
func (c *ConfigCmd) Usage() string     { return configUsage }

func (c *ConfigCmd) Run(ctx context.Context, env *Env, args []string, out io.Writer) error {
	var (
		result string
		err    error
	)
	switch len(args) {
	case 0:
		result, err = record.GetConfig(env.Record, "")
	case 1:
		result, err = record.GetConfig(env.Record, args[0])
	default:
		// Unquoted multi-word values arrive as separate arguments.
		value := strings.Join(args[1:], " ")
		if strings.TrimSpace(value) == "" {
			// A blank value shows the setting rather than clearing it.
			result, err = record.GetConfig(env.Record, args[0])
			break
		}
		result, err = record.SetConfig(env.Record, args[0], value)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, result)
	return nil
}

const configUsage = `Usage: dpclient config [setting [value]]

  dpclient config                  Show server, user and password
  dpclient config <setting>        Show one setting
  dpclient config <setting> <value>
                                   Change a setting (surrounding whitespace is trimmed;
                                   a blank value shows the setting instead)

Settings: server, user, password
The server is the dotProject base URL, e.g. https://pm.example.com/dotproject
`

package workspace

import (
	"context"
	"os/exec"
	"strings"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

// Command is one step of a pre-diff build pipeline.
type Command struct {
	Name string
	Args []string
}

// ParsePipeline splits a "cmd1 arg && cmd2 arg" script into ordered commands.
// Each segment is trimmed and tokenized on whitespace. No other shell
// features (quoting, pipes, redirects) are interpreted.
func ParsePipeline(script string) []Command {
	var commands []Command
	for _, segment := range strings.Split(script, "&&") {
		fields := strings.Fields(strings.TrimSpace(segment))
		if len(fields) == 0 {
			continue
		}
		commands = append(commands, Command{Name: fields[0], Args: fields[1:]})
	}
	return commands
}

// RunScript executes the pipeline sequentially inside dir, stopping at the
// first failing command. An empty script is a no-op.
func RunScript(ctx context.Context, dir, script string) error {
	commands := ParsePipeline(script)
	if len(commands) == 0 {
		return nil
	}

	log := logze.With("component", "workspace", "dir", dir)

	for _, command := range commands {
		log.Debug("running build command", "command", command.Name, "args", strings.Join(command.Args, " "))

		cmd := exec.CommandContext(ctx, command.Name, command.Args...)
		cmd.Dir = dir

		output, err := cmd.CombinedOutput()
		if err != nil {
			return errm.Wrap(err, "command "+command.Name+" failed: "+strings.TrimSpace(string(output)))
		}
	}

	return nil
}

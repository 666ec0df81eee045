package bot

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// ArgSpec declares one argument of a command: its name, whether it is
// required, an optional validation pattern, and whether it consumes the
// remainder of the line.
type ArgSpec struct {
	Name     string
	Required bool
	Pattern  *regexp.Regexp
	Rest     bool
}

// Command binds a command name to a handler plus a declared argument schema.
// Dispatch goes through an explicit table so every command and its arguments
// are visible in one place.
type Command struct {
	Name    string
	Help    string
	Args    []ArgSpec
	Handler func(ctx context.Context, msg Message, args map[string]string) []Reply
}

// Usage renders a short usage line for error replies.
func (c Command) Usage() string {
	parts := []string{c.Name}
	for _, arg := range c.Args {
		if arg.Required {
			parts = append(parts, "<"+arg.Name+">")
		} else {
			parts = append(parts, "["+arg.Name+"]")
		}
	}
	return strings.Join(parts, " ")
}

// parseArgs binds whitespace-separated tokens to the declared schema.
func (c Command) parseArgs(input string) (map[string]string, error) {
	args := make(map[string]string, len(c.Args))
	rest := strings.TrimSpace(input)

	for _, spec := range c.Args {
		if rest == "" {
			if spec.Required {
				return nil, fmt.Errorf("missing argument %q", spec.Name)
			}
			continue
		}

		var value string
		if spec.Rest {
			value, rest = rest, ""
		} else {
			fields := strings.SplitN(rest, " ", 2)
			value = fields[0]
			if len(fields) == 2 {
				rest = strings.TrimSpace(fields[1])
			} else {
				rest = ""
			}
		}

		if spec.Pattern != nil && !spec.Pattern.MatchString(value) {
			return nil, fmt.Errorf("argument %q does not match the expected pattern", spec.Name)
		}
		args[spec.Name] = value
	}

	if rest != "" {
		return nil, fmt.Errorf("unexpected trailing input %q", rest)
	}
	return args, nil
}

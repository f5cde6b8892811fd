// Package commands dispatches named subcommands, each with its own flag set.
package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
)

// ErrUsage is returned when no subcommand is given or the name is unknown.
var ErrUsage = errors.New("usage")

// Command is a subcommand with its own flags and a Run function.
// Flags are defined on FlagSet; Run is called after Parse with the remaining positional
// arguments.
type Command struct {
	Name    string
	Summary string
	FlagSet *flag.FlagSet
	Run     func(ctx context.Context, args []string) error
}

// Registry holds subcommands by name. Add commands with Register; run with Execute.
type Registry struct {
	cmds map[string]*Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// Register adds a subcommand. A nil fs gets an empty one that returns parse errors
// instead of exiting.
func (r *Registry) Register(name, summary string, fs *flag.FlagSet, run func(ctx context.Context, args []string) error) {
	if fs == nil {
		fs = flag.NewFlagSet(name, flag.ContinueOnError)
	}
	r.cmds[name] = &Command{Name: name, Summary: summary, FlagSet: fs, Run: run}
}

// Names returns the registered command names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the subcommand in args[0] with args[1:] as flag/positional arguments.
// Returns an error wrapping ErrUsage for a missing or unknown command, the parse error,
// or the error from Run.
func (r *Registry) Execute(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: missing subcommand", ErrUsage)
	}
	name := args[0]
	cmd, ok := r.cmds[name]
	if !ok {
		return fmt.Errorf("%w: unknown command: %s", ErrUsage, name)
	}
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		return err
	}
	return cmd.Run(ctx, cmd.FlagSet.Args())
}

// Usage writes one line per command.
func (r *Registry) Usage(w io.Writer, program string) {
	fmt.Fprintf(w, "usage: %s <command> [flags]\n\n", program)
	for _, name := range r.Names() {
		fmt.Fprintf(w, "  %-10s %s\n", name, r.cmds[name].Summary)
	}
}

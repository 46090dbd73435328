// Package cli implements the command-line entry point, grounded on
// _examples/purpleidea-mgmt/cli/cli.go's go-arg-based Args/subcommand
// shape.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/linknx-go/ruled/lib"
)

// RunCmd starts the rule server against a configuration file, watching it
// for changes.
type RunCmd struct {
	Config string `arg:"required,--config" help:"path to the rule configuration document"`
	Listen string `arg:"--listen" help:"address to serve Prometheus metrics on" default:":9123"`
}

// ExportCmd loads a configuration file and prints it back out, exercising
// the same parse/serialize path the running server uses — useful for
// validating a document before deploying it.
type ExportCmd struct {
	Config string `arg:"required,--config" help:"path to the rule configuration document"`
}

// InspectCmd loads a configuration file and dumps its raw parsed element
// tree, for debugging a document the server rejects before it even reaches
// rule configuration.
type InspectCmd struct {
	Config string `arg:"required,--config" help:"path to the rule configuration document"`
}

// KindsCmd lists every condition and action type tag this build knows how
// to configure.
type KindsCmd struct{}

// Args is the top-level argument structure; exactly one subcommand must be
// given.
type Args struct {
	Run     *RunCmd     `arg:"subcommand:run"`
	Export  *ExportCmd  `arg:"subcommand:export"`
	Inspect *InspectCmd `arg:"subcommand:inspect"`
	Kinds   *KindsCmd   `arg:"subcommand:kinds"`
}

func (Args) Version() string {
	return "ruled (unversioned)"
}

// Main parses os.Args and dispatches to the requested subcommand. It
// returns a process exit code.
func Main() int {
	var args Args
	p := arg.MustParse(&args)

	switch {
	case args.Run != nil:
		if err := lib.Run(context.Background(), args.Run.Config, args.Run.Listen); err != nil {
			fmt.Fprintln(os.Stderr, "ruled:", err)
			return 1
		}
		return 0
	case args.Export != nil:
		out, err := lib.Export(args.Export.Config)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ruled:", err)
			return 1
		}
		fmt.Println(out)
		return 0
	case args.Inspect != nil:
		out, err := lib.Inspect(args.Inspect.Config)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ruled:", err)
			return 1
		}
		fmt.Println(out)
		return 0
	case args.Kinds != nil:
		conditions, actions := lib.Kinds()
		fmt.Println("conditions:")
		for _, k := range conditions {
			fmt.Println(" ", k)
		}
		fmt.Println("actions:")
		for _, k := range actions {
			fmt.Println(" ", k)
		}
		return 0
	default:
		p.WriteHelp(os.Stderr)
		return 1
	}
}

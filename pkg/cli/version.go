package cli

import (
	"flag"
	"fmt"
	"io"
)

func newVersionCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "version",
		Description: "Print the version",
		Flags:       flag.NewFlagSet("version", flag.ExitOnError),
	}

	cmd.Run = func(args []string) error {
		fmt.Fprintf(out, "zombograph %s\n", Version)
		return nil
	}

	return cmd
}

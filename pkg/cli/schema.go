package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/zombograph/pkg/config"
	"github.com/platinummonkey/zombograph/pkg/introspection"
	"github.com/platinummonkey/zombograph/pkg/schema"
	"github.com/platinummonkey/zombograph/pkg/server"
)

func newSchemaCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "schema",
		Description: "Build the schema once and print it",
		Flags:       flag.NewFlagSet("schema", flag.ExitOnError),
	}

	var common commonFlags
	common.register(cmd.Flags)
	outFile := cmd.Flags.String("out", "", "Write the schema to this file instead of stdout")

	cmd.Run = func(args []string) error {
		if err := cmd.Flags.Parse(args); err != nil {
			return err
		}

		cfg, logger, err := common.load(os.Stderr)
		if err != nil {
			return err
		}
		db, err := connectDatabase(cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		w := out
		if *outFile != "" {
			f, err := os.Create(*outFile)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			defer f.Close()
			w = f
		}

		return writeSchema(context.Background(), cfg, introspection.NewLoader(db, logger), logger, w)
	}

	return cmd
}

// writeSchema builds one generation from source and prints its SDL
func writeSchema(ctx context.Context, cfg *config.Config, source introspection.Source, logger *logrus.Logger, w io.Writer) error {
	snapshot, err := source.Load(ctx, cfg.Schema.Schemas)
	if err != nil {
		return fmt.Errorf("failed to introspect database: %w", err)
	}
	snapshot = snapshot.ApplyTagOverrides(cfg.TagOverrides())

	builder, err := server.NewBuilder(cfg, nil, logger)
	if err != nil {
		return err
	}
	res, err := builder.Build(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("failed to build schema: %w", err)
	}

	if _, err := io.WriteString(w, schema.PrintSDL(res.Schema)); err != nil {
		return fmt.Errorf("failed to write schema: %w", err)
	}
	return nil
}

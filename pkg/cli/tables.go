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
	"github.com/platinummonkey/zombograph/pkg/zombodb"
)

func newTablesCommand(out io.Writer) *Command {
	cmd := &Command{
		Name:        "tables",
		Description: "List tables and the zombodb index used to search them",
		Flags:       flag.NewFlagSet("tables", flag.ExitOnError),
	}

	var common commonFlags
	common.register(cmd.Flags)

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

		return writeTables(context.Background(), cfg, introspection.NewLoader(db, logger), logger, out)
	}

	return cmd
}

// writeTables prints one line per table with its search index, or "-" when
// the table cannot be searched
func writeTables(ctx context.Context, cfg *config.Config, source introspection.Source, logger *logrus.Logger, w io.Writer) error {
	snapshot, err := source.Load(ctx, cfg.Schema.Schemas)
	if err != nil {
		return fmt.Errorf("failed to introspect database: %w", err)
	}
	snapshot = snapshot.ApplyTagOverrides(cfg.TagOverrides())

	eligible := zombodb.Scan(snapshot, logrus.NewEntry(logger))

	fmt.Fprintf(w, "%-40s %s\n", "TABLE", "SEARCH INDEX")
	for _, class := range snapshot.Classes {
		if class.Namespace == nil {
			continue
		}
		index := "-"
		if idx, ok := eligible.Index(class); ok {
			index = idx.Name
		}
		fmt.Fprintf(w, "%-40s %s\n", class.Namespace.Name+"."+class.Name, index)
	}
	fmt.Fprintf(w, "\n%d of %d tables searchable\n", len(eligible), len(snapshot.Classes))
	return nil
}

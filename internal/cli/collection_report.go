package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/readinglog"
)

// CollectionReportCommand renders a user's collection growth report to a
// local PDF file. Nothing is recorded in the report history.
type CollectionReportCommand struct {
	Login        string
	From         string
	To           string
	OutputPath   string
	DatabasePath string

	from, to time.Time
}

func NewCollectionReportCommand() *CollectionReportCommand {
	return &CollectionReportCommand{}
}

func (cmd *CollectionReportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("collection-report", flag.ExitOnError)

	fs.StringVar(&cmd.Login, "login", "", "Login of the collection owner (required)")
	fs.StringVar(&cmd.From, "from", "", "First day of the period, YYYY-MM-DD (required)")
	fs.StringVar(&cmd.To, "to", "", "Last day of the period, YYYY-MM-DD (defaults to today)")
	fs.StringVar(&cmd.OutputPath, "out", "", "Output PDF path (defaults to collection_<login>_<from>_<to>.pdf)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (defaults to DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s collection-report -login <login> -from <date> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Render the books a user added during a period as a PDF.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  %s collection-report -login alice -from 2024-01-01 -to 2024-12-31 -out 2024.pdf\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Login == "" {
		return fmt.Errorf("required flag -login not provided")
	}
	if cmd.From == "" {
		return fmt.Errorf("required flag -from not provided")
	}
	if cmd.To == "" {
		cmd.To = time.Now().UTC().Format(readinglog.DateLayout)
	}

	var err error
	if cmd.from, err = readinglog.ParseDate(cmd.From); err != nil {
		return fmt.Errorf("invalid -from %q: expected YYYY-MM-DD", cmd.From)
	}
	if cmd.to, err = readinglog.ParseDate(cmd.To); err != nil {
		return fmt.Errorf("invalid -to %q: expected YYYY-MM-DD", cmd.To)
	}
	if cmd.to.Before(cmd.from) {
		return fmt.Errorf("-from must not be after -to")
	}

	if cmd.OutputPath == "" {
		cmd.OutputPath = fmt.Sprintf("collection_%s_%s_%s.pdf", cmd.Login,
			cmd.from.Format("20060102"), cmd.to.Format("20060102"))
	}
	return nil
}

func (cmd *CollectionReportCommand) Run(cfg *config.Config) error {
	if cmd.DatabasePath != "" {
		cfg.Database.Path = cmd.DatabasePath
	}

	svc, err := entrypoint.NewServices(cfg)
	if err != nil {
		return err
	}
	defer svc.DB.Close()

	ctx := context.Background()
	user, err := svc.Auth.GetUserByLogin(ctx, cmd.Login)
	if err != nil {
		return err
	}

	owner := user.Name
	if owner == "" {
		owner = user.Login
	}
	content, err := svc.Reports.RenderCollectionGrowth(ctx, user.ID, owner, cmd.from, cmd.to)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(cmd.OutputPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(cmd.OutputPath, content, 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	fmt.Printf("Wrote collection report for %s (%s to %s) to %s\n",
		user.Login, cmd.From, cmd.To, cmd.OutputPath)
	return nil
}

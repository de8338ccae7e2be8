package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/mrlokans/bookshelf/internal/auth"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
)

// CreateAdminCommand creates an administrator account without going through
// the HTTP API.
type CreateAdminCommand struct {
	Login        string
	Name         string
	Password     string
	DatabasePath string
}

func NewCreateAdminCommand() *CreateAdminCommand {
	return &CreateAdminCommand{}
}

func (cmd *CreateAdminCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ExitOnError)

	fs.StringVar(&cmd.Login, "login", "", "Login of the new administrator (required)")
	fs.StringVar(&cmd.Name, "name", "", "Display name (defaults to the login)")
	fs.StringVar(&cmd.Password, "password", "", "Password, at least 8 characters (required)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the database file (defaults to DATABASE_PATH)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s create-admin -login <login> -password <password> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Create an administrator account.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.Login == "" {
		return fmt.Errorf("required flag -login not provided")
	}
	if cmd.Password == "" {
		return fmt.Errorf("required flag -password not provided")
	}
	return nil
}

func (cmd *CreateAdminCommand) Run(cfg *config.Config) error {
	if cmd.DatabasePath != "" {
		cfg.Database.Path = cmd.DatabasePath
	}

	svc, err := entrypoint.NewServices(cfg)
	if err != nil {
		return err
	}
	defer svc.DB.Close()

	user, err := svc.Auth.CreateUser(context.Background(), auth.CreateUserInput{
		Login:    cmd.Login,
		Name:     cmd.Name,
		Password: cmd.Password,
		IsAdmin:  true,
	})
	if err != nil {
		return err
	}
	svc.Audit.LogUser(0, "user_create", user.ID, user.Login)
	svc.Audit.Wait()

	fmt.Printf("Created administrator %s (id %d)\n", user.Login, user.ID)
	return nil
}

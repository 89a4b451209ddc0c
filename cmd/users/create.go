package users

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/mail"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/insightequity/alpha-api/internal/auth"
	"github.com/insightequity/alpha-api/internal/config"
	"github.com/insightequity/alpha-api/internal/db/bunx"
	"github.com/insightequity/alpha-api/internal/db/models"
	"github.com/insightequity/alpha-api/internal/repository"
)

var (
	emailFlag    string
	nameFlag     string
	passwordFlag string
	roleFlag     string
	stdinFlag    bool
)

// UsersCmd groups account management subcommands.
var UsersCmd = &cobra.Command{
	Use:   "users",
	Short: "User account management commands",
}

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a user account",
	Long: `Creates a user account directly in the database. Unlike the
self-service registration endpoint, this command can assign any role, which
is how the first ADMIN account gets provisioned.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if emailFlag == "" {
			return fmt.Errorf("--email flag is required")
		}
		if nameFlag == "" {
			return fmt.Errorf("--name flag is required")
		}

		role, valid := auth.ParseRole(roleFlag)
		if !valid {
			return fmt.Errorf("unknown role %q (valid: VIEWER, ANALYST, EDITOR, ADMIN)", roleFlag)
		}

		password := passwordFlag
		if stdinFlag {
			scanner := bufio.NewScanner(os.Stdin)
			fmt.Print("Enter password: ")
			if scanner.Scan() {
				password = scanner.Text()
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
		}
		if password == "" {
			return fmt.Errorf("password is required (use --password or --stdin)")
		}
		if len(password) < 8 {
			return fmt.Errorf("password must be at least 8 characters long")
		}

		if _, err := mail.ParseAddress(emailFlag); err != nil {
			return fmt.Errorf("invalid email format: %w", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		ctx := context.Background()
		userRepo := repository.NewBunUserRepository(db)

		if _, err := userRepo.GetByEmail(ctx, emailFlag); err == nil {
			return fmt.Errorf("user with email %s already exists", emailFlag)
		} else if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to check for existing user: %w", err)
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		hashStr := string(hash)

		user := &models.User{
			Email:        emailFlag,
			Name:         nameFlag,
			PasswordHash: &hashStr,
			Role:         string(role),
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}

		fmt.Printf("Created user %s (%s) with role %s\n", user.Email, user.ID, user.Role)
		return nil
	},
}

func init() {
	createCmd.Flags().StringVar(&emailFlag, "email", "", "Email address (required)")
	createCmd.Flags().StringVar(&nameFlag, "name", "", "Display name (required)")
	createCmd.Flags().StringVar(&passwordFlag, "password", "", "Password (or use --stdin)")
	createCmd.Flags().StringVar(&roleFlag, "role", "VIEWER", "Role: VIEWER, ANALYST, EDITOR, ADMIN")
	createCmd.Flags().BoolVar(&stdinFlag, "stdin", false, "Read password from stdin")

	UsersCmd.AddCommand(createCmd)
}

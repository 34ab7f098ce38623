package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jonathan/interview-prep/internal/jobstore"
	"github.com/jonathan/interview-prep/internal/server"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Delete expired preparation guides from the database",
	RunE:  runSweep,
}

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for a user id",
	Long: `Issue a signed bearer token for the API. Requests carrying it are attributed to
the user, and history is filtered to that user's guides.`,
	RunE: runToken,
}

var tokenUserID string

func init() {
	for _, cmd := range []*cobra.Command{migrateCmd, sweepCmd} {
		cmd.Flags().String("db-url", "", "PostgreSQL connection URL")
	}
	tokenCmd.Flags().StringVar(&tokenUserID, "user-id", "", "User id to embed (a new one is generated when empty)")
	rootCmd.AddCommand(migrateCmd, sweepCmd, tokenCmd)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, map[string]string{"database_url": "db-url"})
	if err != nil {
		return err
	}
	log, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	database, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	applied, err := database.Migrate(cmd.Context(), log)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
	return nil
}

func runSweep(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, map[string]string{"database_url": "db-url"})
	if err != nil {
		return err
	}
	database, err := openDatabase(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	deleted, err := jobstore.New(database).SweepExpired(cmd.Context())
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d expired guide(s)\n", deleted)
	return nil
}

func runToken(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	jwtConfig, err := cfg.JWT()
	if err != nil {
		return err
	}

	userID := uuid.New()
	if tokenUserID != "" {
		userID, err = uuid.Parse(tokenUserID)
		if err != nil {
			return fmt.Errorf("invalid --user-id: %w", err)
		}
	}

	token, err := server.NewJWTService(jwtConfig).GenerateToken(userID)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "user_id: %s\ntoken:   %s\n", userID, token)
	return nil
}

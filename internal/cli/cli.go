package cli

import (
	"fmt"
	"time"

	"github.com/Domenick1991/carestaff/config"
	"github.com/Domenick1991/carestaff/internal/auth"
	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

// ConfigLoader returns the configuration a command runs against.
type ConfigLoader func() (*config.Config, error)

// DefaultLoader reads the file named by CONFIG_PATH.
func DefaultLoader() (*config.Config, error) {
	return config.LoadConfig(config.Path())
}

// MigrateCmd applies the embedded schema migrations.
func MigrateCmd(load ConfigLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			pool, err := pgxpool.New(cmd.Context(), cfg.Database.ConnString())
			if err != nil {
				return fmt.Errorf("connect postgres: %w", err)
			}
			defer pool.Close()

			if err := repository.Migrate(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

// TokenCmd mints a bearer token for local use.
func TokenCmd(load ConfigLoader) *cobra.Command {
	var (
		userID string
		role   string
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user",
		Long: `Issue a signed bearer token for the given user and role.
The token is signed with auth.jwt_secret and accepted by the API.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return fmt.Errorf("--user is required")
			}
			parsed, err := domain.ParseRole(role)
			if err != nil {
				return err
			}
			cfg, err := load()
			if err != nil {
				return err
			}
			if ttl <= 0 {
				ttl = cfg.Auth.TTL()
			}

			tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, ttl)
			token, err := tokens.Issue(domain.Actor{ID: userID, Role: parsed})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "user id (subject)")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleClient), "client, worker or admin")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to auth.token_ttl_minutes)")
	return cmd
}

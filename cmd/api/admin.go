package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/patient-registry/internal/repository/postgres"
	authservice "github.com/jwalitptl/patient-registry/internal/service/auth"
	eventservice "github.com/jwalitptl/patient-registry/internal/service/event"
	"github.com/jwalitptl/patient-registry/pkg/security"
)

// newCreateAdminCommand provisions administrators, which the public
// registration endpoint refuses to create.
func newCreateAdminCommand() *cobra.Command {
	var email, password, firstName, lastName string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := postgres.NewDB(ctx, cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			ttl, err := cfg.JWT.TTL()
			if err != nil {
				return err
			}

			base := postgres.NewBaseRepository(db)
			svc := authservice.NewService(
				postgres.NewUserRepository(base),
				security.NewBcryptHasher(cfg.Security.BcryptCost),
				security.NewTokenManager(cfg.JWT.Secret, ttl, cfg.JWT.Issuer),
				eventservice.NewService(postgres.NewOutboxRepository(base)),
			)

			user, err := svc.CreateAdmin(ctx, email, password, firstName, lastName)
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			log.Info().Str("user_id", user.ID.String()).Str("email", user.Email).Msg("administrator created")
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "administrator email")
	cmd.Flags().StringVar(&password, "password", "", "administrator password (min 8 characters)")
	cmd.Flags().StringVar(&firstName, "first-name", "Admin", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "User", "last name")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

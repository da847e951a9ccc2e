package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/grievance-service/internal/config"
	"github.com/spec-kit/grievance-service/internal/domain"
	"github.com/spec-kit/grievance-service/internal/persistence"
	"github.com/spec-kit/grievance-service/internal/repository"
	"github.com/spec-kit/grievance-service/internal/service"
)

var (
	userName     string
	userEmail    string
	userPassword string
	userRole     string
)

var errNoPersistentStore = errors.New("user create needs POSTGRES_DSN: accounts in the in-memory store do not outlive this process (set ADMIN_EMAIL and ADMIN_PASSWORD for serve instead)")

// openStore returns the persistent store and a release func.
var openStore = func(ctx context.Context) (repository.Store, func(), error) {
	if cfg.Postgres.DSN == "" {
		return nil, nil, errNoPersistentStore
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("run migrations: %w", err)
		}
	}
	return pg.Store(), pg.Close, nil
}

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage staff accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an account with any role",
	Long: `Create an account directly in the store. Self-registration over HTTP only
creates requesters, so the first admin or resolver is created here.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		role := domain.UserRole(userRole)
		if !role.Valid() {
			return fmt.Errorf("unknown role %q", userRole)
		}

		store, release, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer release()

		authService := service.NewAuthService(cfg.Auth, store.Users(), nil)
		result, err := authService.Register(cmd.Context(), service.RegisterInput{
			Name:     userName,
			Email:    userEmail,
			Password: userPassword,
			Role:     role,
		})
		if err != nil {
			return err
		}
		logger.Info("user created", zap.String("user_id", result.User.ID), zap.String("role", string(role)))
		fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", result.User.ID, result.User.Email, result.User.Role)
		return nil
	},
}

func init() {
	userCreateCmd.Flags().StringVar(&userName, "name", "", "display name")
	userCreateCmd.Flags().StringVar(&userEmail, "email", "", "login email")
	userCreateCmd.Flags().StringVar(&userPassword, "password", "", "login password")
	userCreateCmd.Flags().StringVar(&userRole, "role", string(domain.UserRoleResolver), "admin, resolver or requester")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")

	userCmd.AddCommand(userCreateCmd)
}

// bootstrapAdmin seeds the configured admin account. It does nothing when
// no admin email is configured or the account already exists.
func bootstrapAdmin(ctx context.Context, authService *service.AuthService, authCfg config.AuthConfig) error {
	if authCfg.AdminEmail == "" {
		return nil
	}
	if authCfg.AdminPassword == "" {
		return errors.New("ADMIN_EMAIL is set but ADMIN_PASSWORD is empty")
	}
	user, created, err := authService.EnsureUser(ctx, service.RegisterInput{
		Name:     authCfg.AdminName,
		Email:    authCfg.AdminEmail,
		Password: authCfg.AdminPassword,
		Role:     domain.UserRoleAdmin,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		logger.Info("admin account seeded", zap.String("user_id", user.ID), zap.String("email", user.Email))
	} else if user.Role != domain.UserRoleAdmin {
		logger.Warn("ADMIN_EMAIL belongs to a non-admin account", zap.String("user_id", user.ID), zap.String("role", string(user.Role)))
	}
	return nil
}

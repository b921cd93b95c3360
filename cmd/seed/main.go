package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/piezasya/loyalty/internal/config"
	"github.com/piezasya/loyalty/internal/constants"
	"github.com/piezasya/loyalty/internal/logger"
	"github.com/piezasya/loyalty/internal/models"
	"github.com/piezasya/loyalty/internal/repository"
	"github.com/piezasya/loyalty/internal/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "seed",
		Short:         "PiezasYA loyalty maintenance CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("driver", "", "database driver (sqlite|postgres), overrides config")
	root.PersistentFlags().String("dsn", "", "database DSN, overrides config")
	_ = viper.BindPFlag("database.driver", root.PersistentFlags().Lookup("driver"))
	_ = viper.BindPFlag("database.dsn", root.PersistentFlags().Lookup("dsn"))

	root.AddCommand(newMigrateCmd(), newSeedCmd(), newTokenCmd())
	return root
}

// bootstrap 加载配置并连接数据库
func bootstrap() (*config.Config, error) {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, cfg.Database.ToDBOptions()); err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return cfg, nil
}

func newMigrateCmd() *cobra.Command {
	var rollback bool
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply (or roll back the latest) schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			if rollback {
				if err := models.RollbackLast(models.DB); err != nil {
					return fmt.Errorf("rollback: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "rolled back latest migration")
				return nil
			}
			if err := models.Migrate(models.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
	cmd.Flags().BoolVar(&rollback, "rollback", false, "roll back the most recent migration")
	return cmd
}

func newSeedCmd() *cobra.Command {
	var (
		adminUser string
		adminPass string
		users     int
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the default admin, demo rewards and demo users",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := bootstrap(); err != nil {
				return err
			}
			if err := models.Migrate(models.DB); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			if err := models.InitDefaultAdmin(models.DB, adminUser, adminPass); err != nil {
				return fmt.Errorf("default admin: %w", err)
			}

			out := cmd.OutOrStdout()
			userRepo := repository.NewUserRepository(models.DB)
			rewardSvc := service.NewRewardService(repository.NewRewardRepository(models.DB), userRepo, 0)
			existing, total, err := rewardSvc.List(repository.RewardListFilter{Page: 1, PageSize: 1})
			if err != nil {
				return err
			}
			if total == 0 && len(existing) == 0 {
				for _, input := range demoRewards() {
					reward, err := rewardSvc.Create(context.Background(), 0, input)
					if err != nil {
						return fmt.Errorf("create reward %q: %w", input.Name, err)
					}
					fmt.Fprintf(out, "reward #%d %s (%d pts)\n", reward.ID, reward.Slug, reward.PointsRequired)
				}
			} else {
				fmt.Fprintln(out, "rewards already present, skipped")
			}

			for i := 1; i <= users; i++ {
				email := fmt.Sprintf("demo%d@piezasya.test", i)
				found, err := userRepo.GetByEmail(email)
				if err != nil {
					return err
				}
				if found != nil {
					continue
				}
				user := &models.User{
					Email:        email,
					DisplayName:  fmt.Sprintf("Demo %d", i),
					Status:       constants.UserStatusActive,
					LoyaltyLevel: constants.LoyaltyLevelBronze,
				}
				if err := userRepo.Create(user); err != nil {
					return fmt.Errorf("create user %s: %w", email, err)
				}
				fmt.Fprintf(out, "user #%d %s\n", user.ID, email)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&adminUser, "admin-user", os.Getenv("PYA_DEFAULT_ADMIN_USERNAME"), "default admin username")
	cmd.Flags().StringVar(&adminPass, "admin-pass", os.Getenv("PYA_DEFAULT_ADMIN_PASSWORD"), "default admin password")
	cmd.Flags().IntVar(&users, "users", 3, "number of demo users to create")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		userID uint
		email  string
		hours  int
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a user JWT for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap()
			if err != nil {
				return err
			}
			userRepo := repository.NewUserRepository(models.DB)
			var user *models.User
			if userID > 0 {
				user, err = userRepo.GetByID(userID)
			} else if strings.TrimSpace(email) != "" {
				user, err = userRepo.GetByEmail(strings.TrimSpace(email))
			} else {
				return fmt.Errorf("either --user-id or --email is required")
			}
			if err != nil {
				return err
			}
			if user == nil {
				return service.ErrUserNotFound
			}
			auth := service.NewAuthService(cfg, repository.NewAdminRepository(models.DB), userRepo)
			token, expiresAt, err := auth.GenerateUserJWT(user, hours)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n# user=%d expires=%s\n", token, user.ID, expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user-id", 0, "user id")
	cmd.Flags().StringVar(&email, "email", "", "user email")
	cmd.Flags().IntVar(&hours, "hours", 0, "token lifetime in hours (default from user_jwt.expire_hours)")
	return cmd
}

func demoRewards() []service.RewardInput {
	return []service.RewardInput{
		{
			Name:           "Descuento 5€",
			Description:    "5€ de descuento en tu próximo pedido",
			PointsRequired: 500,
			Category:       constants.RewardCategoryDiscount,
			Stock:          1000,
			IsActive:       true,
		},
		{
			Name:           "Envío gratis",
			Description:    "Envío gratuito en un pedido",
			PointsRequired: 300,
			Category:       constants.RewardCategoryShipping,
			Stock:          1000,
			IsActive:       true,
		},
		{
			Name:           "Kit de limpieza de frenos",
			Description:    "Spray limpiador y paño de microfibra",
			PointsRequired: 1200,
			CashRequired:   models.NewMoneyFromDecimal(decimal.NewFromInt(3)),
			Category:       constants.RewardCategoryProduct,
			Stock:          50,
			IsActive:       true,
		},
		{
			Name:           "Revisión de neumáticos",
			Description:    "Revisión de presión y desgaste en taller asociado",
			PointsRequired: 2000,
			Category:       constants.RewardCategoryService,
			Stock:          20,
			IsActive:       true,
		},
		{
			Name:           "Acceso anticipado a ofertas",
			Description:    "Ofertas exclusivas 24h antes",
			PointsRequired: 5000,
			Category:       constants.RewardCategoryExclusive,
			Stock:          1000,
			IsActive:       true,
		},
	}
}

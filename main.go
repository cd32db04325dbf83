package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/freelance-platform/marketplace-api/config"
	"github.com/freelance-platform/marketplace-api/models"
	"github.com/freelance-platform/marketplace-api/routes"
	"github.com/freelance-platform/marketplace-api/services"
	"github.com/freelance-platform/marketplace-api/store"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var (
	promoteEmail string
	promoteRole  string
)

var rootCmd = &cobra.Command{
	Use:          "marketplace-api",
	Short:        "Freelance marketplace REST API",
	Long:         "Customers post orders, freelancers respond, and both sides talk per order until the work is archived with a review.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Migrate the database and start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		if err := models.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		slog.Info("database migration completed successfully")
		return nil
	},
}

var promoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Change the role of an existing user",
	Long: `Change the role of an existing user. This is the only way to create an admin.

Examples:
  marketplace-api promote --email ada@example.com
  marketplace-api promote --email fiona@example.com --role freelancer`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, err := bootstrap()
		if err != nil {
			return err
		}
		users := services.NewUserService(store.New(db), nil, slog.Default())
		user, err := users.Promote(cmd.Context(), promoteEmail, models.Role(promoteRole))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "user %d (%s) is now %s\n", user.ID, user.Email, user.Role)
		return nil
	},
}

func init() {
	promoteCmd.Flags().StringVar(&promoteEmail, "email", "", "Email of the user to promote")
	promoteCmd.Flags().StringVar(&promoteRole, "role", string(models.RoleAdmin), "Role to assign (customer, freelancer, admin)")
	_ = promoteCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(serveCmd, migrateCmd, promoteCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads the configuration, installs the default logger and connects to the database
func bootstrap() (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	db, err := config.ConnectDatabase(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return cfg, db, nil
}

func newImageService(ctx context.Context, cfg *config.Config) (services.ImageService, error) {
	if !cfg.UsesS3() {
		slog.Info("storing avatars on local disk", "dir", cfg.UploadDir)
		return services.NewLocalImageService(cfg.UploadDir), nil
	}
	s3Service, err := services.NewS3Service(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3: %w", err)
	}
	slog.Info("storing avatars in S3", "bucket", cfg.AWSS3Bucket)
	return services.NewS3ImageService(s3Service), nil
}

func newNotifier(cfg *config.Config) (services.Notifier, func()) {
	if cfg.RedisAddr == "" {
		slog.Info("REDIS_ADDR not set, message notifications disabled")
		return services.NoopNotifier{}, func() {}
	}
	notifier := services.NewRedisNotifier(cfg.RedisAddr, cfg.RedisPassword)
	return notifier, func() {
		if err := notifier.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}
}

func runServe(ctx context.Context) error {
	slog.Info("starting marketplace API server")

	cfg, db, err := bootstrap()
	if err != nil {
		return err
	}
	if err := models.Migrate(db); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	slog.Info("database migration completed successfully")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	images, err := newImageService(ctx, cfg)
	if err != nil {
		return err
	}
	notifier, closeNotifier := newNotifier(cfg)
	defer closeNotifier()

	deps := routes.NewDependencies(cfg, store.New(db), images, notifier, slog.Default())
	router, err := routes.Setup(deps)
	if err != nil {
		return err
	}

	addr := ":" + cfg.Port
	slog.Info("server is running", "addr", addr, "env", cfg.GoEnv)
	return router.Run(addr)
}

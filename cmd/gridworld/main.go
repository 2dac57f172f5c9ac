package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/l1jgo/gridworld/internal/auth"
	"github.com/l1jgo/gridworld/internal/config"
	"github.com/l1jgo/gridworld/internal/persist"
)

const defaultConfigPath = "config/server.toml"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:           "gridworld",
		Short:         "Authoritative grid world server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (default $GRIDWORLD_CONFIG or "+defaultConfigPath+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the game server",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(cfgPath)
				if err != nil {
					return err
				}
				return serve(cmd.Context(), cfg)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply pending Postgres migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := loadConfig(cfgPath)
				if err != nil {
					return err
				}
				return migrate(cmd, cfg)
			},
		},
		&cobra.Command{
			Use:   "token <user-id> <name>",
			Short: "Mint a signed login token",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg, err := loadConfig(cfgPath)
				if err != nil {
					return err
				}
				if cfg.Auth.JWTSecret == "" {
					return errors.New("auth.jwt_secret is empty; a token signed with a random key is useless")
				}
				tok, err := auth.NewService(cfg.Auth).Issue(args[0], args[1], time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), tok)
				return nil
			},
		},
	)
	return root
}

// loadConfig resolves the config path from the flag, then the environment.
// A missing default file falls back to the built-in configuration.
func loadConfig(flagPath string) (*config.Config, error) {
	path := flagPath
	if path == "" {
		path = os.Getenv("GRIDWORLD_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			cfg := config.Default()
			cfg.Server.StartTime = time.Now().Unix()
			return cfg, nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func migrate(cmd *cobra.Command, cfg *config.Config) error {
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations apply to the postgres driver, not %q", cfg.Database.Driver)
	}
	log, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	ctx := cmd.Context()
	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer db.Close()

	if err := persist.RunMigrations(ctx, db.Pool); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	version, err := persist.MigrationVersion(ctx, db.Pool)
	if err != nil {
		return fmt.Errorf("migration version: %w", err)
	}
	printOK(fmt.Sprintf("資料庫遷移完成 (版本 %d)", version))
	return nil
}

package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Jim-devENG/ispora-engine/internal/auth"
	"github.com/Jim-devENG/ispora-engine/internal/config"
	"github.com/Jim-devENG/ispora-engine/internal/database"
	"github.com/Jim-devENG/ispora-engine/internal/logging"
	"github.com/Jim-devENG/ispora-engine/internal/maintenance"
	"github.com/Jim-devENG/ispora-engine/internal/metrics"
	"github.com/Jim-devENG/ispora-engine/internal/web"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// CLI flags
var (
	configPath  string
	envFile     string
	port        int
	bind        string
	allowSubnet string
	dbPath      string
	verbosity   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ispora",
		Short: "iSpora - mentorship platform API server",
		Long:  `iSpora serves the projects, sessions, tasks and activity feed API backed by a local SQLite database.`,
		RunE:  run,

		SilenceUsage: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file")
	pf.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before the environment is read")
	pf.StringVarP(&dbPath, "db", "d", "", "SQLite database path (or set DB_PATH env var)")
	pf.CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v debug, -vv trace)")

	rootCmd.Flags().IntVarP(&port, "port", "p", 0, "HTTP server port (or set PORT env var)")
	rootCmd.Flags().StringVarP(&bind, "bind", "b", "", "IP address to bind to (e.g., 127.0.0.1, 0.0.0.0)")
	rootCmd.Flags().StringVarP(&allowSubnet, "allow-subnet", "a", "", "CIDR subnet allowed to connect (e.g., 192.168.1.0/24)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("ispora %s (commit: %s, built: %s)\n", version, commit, date)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "keygen",
		Short: "Generate a random dev access key",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := auth.GenerateDevKey()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	})
	rootCmd.AddCommand(newSeedCmd(), newDoctorCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env, config file and environment, then applies flags
// the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database.Path = dbPath
	}
	if flags.Changed("port") {
		cfg.Server.Port = port
	}
	if flags.Changed("bind") {
		if ip := net.ParseIP(bind); ip == nil {
			return nil, fmt.Errorf("invalid bind address: %s", bind)
		}
		cfg.Server.Host = bind
	}
	if flags.Changed("allow-subnet") {
		cfg.Server.AllowSubnet = allowSubnet
	}
	switch {
	case verbosity == 1:
		cfg.Log.Level = "debug"
	case verbosity >= 2:
		cfg.Log.Level = "trace"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = logging.FilePathForDB(cfg.Database.Path)
	}
	logging.Apply(cfg.Log.Level, logging.Options{
		FilePath:   logFile,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})

	return cfg, nil
}

// openDatabase opens the store and ensures the schema.
func openDatabase(ctx context.Context, path string) (*database.DB, error) {
	db, err := database.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}
	return db, nil
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	allowedNet, err := cfg.Subnet()
	if err != nil {
		return err
	}

	// Warn if binding to all interfaces without an allow list
	if (cfg.Server.Host == "" || cfg.Server.Host == "0.0.0.0" || cfg.Server.Host == "::") && allowedNet == nil {
		log.Warn().Msg("Server is accessible from all interfaces without subnet restrictions. Consider using --bind or --allow-subnet for security.")
	}
	if cfg.Auth.DevKey == "CHANGE_ME_STRONG_KEY" {
		log.Warn().Msg("Using the default dev access key. Set DEV_ACCESS_KEY before exposing this server.")
	}

	log.Info().
		Str("version", version).
		Str("addr", cfg.Addr()).
		Str("allow_subnet", cfg.Server.AllowSubnet).
		Str("database", cfg.Database.Path).
		Msg("Starting iSpora")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := openDatabase(ctx, cfg.Database.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	devKeys, err := auth.NewDevKeyService(cfg.Auth.DevKey)
	if err != nil {
		return err
	}

	m := metrics.New()

	scheduler := maintenance.NewScheduler(db, cfg.Maintenance.Schedule, m)
	if err := scheduler.Start(); err != nil {
		log.Warn().Err(err).Msg("Failed to start maintenance scheduler")
	}
	defer scheduler.Stop()

	server := web.NewServer(db, devKeys, m, web.Options{
		Addr:            cfg.Addr(),
		AllowedNet:      allowedNet,
		AllowedOrigins:  cfg.CORS.AllowedOrigins,
		RequestTimeout:  cfg.Server.RequestTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Server error")
		return err
	}

	log.Info().Msg("iSpora stopped")
	return nil
}

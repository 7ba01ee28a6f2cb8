package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/smartdevs17/steelflow-monitor/internal/config"
	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/internal/storage"
)

// AppVersion contains the application version
const AppVersion = "1.0.0"

// rootCmd serves the API when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "steelflow",
	Short:   "SteelFlow file-system audit monitor",
	Long:    `Serves the SteelFlow monitoring API over a relational audit store and renders the terminal dashboard.`,
	Version: AppVersion,
	RunE:    runServer,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the monitoring API",
	RunE:  runServer,
}

// loadConfig loads configuration and applies command line overrides
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if level := viper.GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if viper.GetBool("debug") {
		cfg.Logging.Level = "debug"
	}
	return cfg, nil
}

// runServer runs the API until SIGINT or SIGTERM
func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	migrate, _ := cmd.Flags().GetBool("migrate")
	app, err := NewApplication(cfg, migrate)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	if err := app.Start(); err != nil {
		app.Stop()
		return fmt.Errorf("failed to start application: %w", err)
	}

	<-signalChan
	fmt.Fprintln(os.Stderr, "\nReceived shutdown signal, stopping application...")

	return app.Stop()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("SteelFlow Monitor %s\n", AppVersion)
	},
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

// validateConfigCmd validates the configuration
var validateConfigCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("configuration validation failed: %w", err)
		}

		fmt.Printf("Configuration is valid!\n")
		fmt.Printf("Environment: %s\n", cfg.App.Environment)
		fmt.Printf("Database: %s\n", cfg.Storage.Type)
		fmt.Printf("Listen address: %s\n", cfg.Server.Address())
		fmt.Printf("CORS origin: %s\n", cfg.Server.CORSOrigin)
		fmt.Printf("Dashboard API: %s (every %s)\n", cfg.Dashboard.APIURL, cfg.Dashboard.PollInterval)

		return nil
	},
}

// testCmd probes the store without starting the API
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test store connectivity and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Testing storage connection (%s)...\n", cfg.Storage.Type)
		store, err := storage.NewStorage(&cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage: %w", err)
		}
		if err := store.Connect(); err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		defer store.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("store is unreachable: %w", err)
		}
		fmt.Println("✓ Storage connection successful")

		rows, err := store.Query(ctx, "SELECT COUNT(*) AS total FROM logs")
		if err != nil {
			return fmt.Errorf("failed to read audit log: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("failed to read audit log: no rows returned")
		}
		total, err := models.RowInt64(rows[0], "total")
		if err != nil {
			return fmt.Errorf("failed to read audit log: %w", err)
		}
		fmt.Printf("✓ Audit log readable (%d events)\n", total)

		fmt.Println("\nAll connectivity tests passed! ✓")
		return nil
	},
}

// init initializes the CLI commands
func init() {
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringP("log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug mode")
	rootCmd.Flags().Bool("migrate", false, "apply schema migrations before serving")
	serveCmd.Flags().Bool("migrate", false, "apply schema migrations before serving")

	viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(sensitivityCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(testCmd)
	configCmd.AddCommand(validateConfigCmd)
}

// main is the entry point
func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

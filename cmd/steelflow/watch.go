package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/smartdevs17/steelflow-monitor/internal/aggregator"
	"github.com/smartdevs17/steelflow-monitor/internal/config"
	"github.com/smartdevs17/steelflow-monitor/internal/dashboard"
	"github.com/smartdevs17/steelflow-monitor/internal/eventlog"
	"github.com/smartdevs17/steelflow-monitor/internal/storage"
	"github.com/smartdevs17/steelflow-monitor/pkg/client"
	"github.com/smartdevs17/steelflow-monitor/pkg/utils"
)

const dashboardZone = "America/Sao_Paulo"

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Render the monitoring dashboard from a running API",
	RunE:  runWatch,
}

func init() {
	watchCmd.Flags().StringP("filter", "f", "", "only show events whose path, action or user contains this text")
	watchCmd.Flags().String("api-url", "", "API base URL (defaults to dashboard.api_url)")
	watchCmd.Flags().Duration("interval", 0, "refresh interval (defaults to dashboard.poll_interval)")
	watchCmd.Flags().Int("limit", 0, "number of recent events to show (defaults to dashboard.recent_limit)")
	watchCmd.Flags().Bool("once", false, "render a single snapshot and exit")
}

// dashboardOptions resolves watch flags against the loaded configuration
type dashboardOptions struct {
	apiURL   string
	filter   string
	interval time.Duration
	limit    int
	once     bool
}

func resolveDashboardOptions(cmd *cobra.Command, cfg *config.DashboardConfig) dashboardOptions {
	opts := dashboardOptions{
		apiURL:   cfg.APIURL,
		interval: cfg.PollInterval,
		limit:    cfg.RecentLimit,
	}

	flags := cmd.Flags()
	opts.filter, _ = flags.GetString("filter")
	opts.once, _ = flags.GetBool("once")
	if v, _ := flags.GetString("api-url"); v != "" {
		opts.apiURL = v
	}
	if v, _ := flags.GetDuration("interval"); v > 0 {
		opts.interval = v
	}
	if v, _ := flags.GetInt("limit"); v > 0 {
		opts.limit = v
	}
	return opts
}

// dashboardLocation returns the zone timestamps are shown in
func dashboardLocation() *time.Location {
	loc, err := time.LoadLocation(dashboardZone)
	if err != nil {
		return time.FixedZone("BRT", -3*60*60)
	}
	return loc
}

// initCLILogger keeps log lines off stdout, which belongs to the dashboard
func initCLILogger(cfg *config.Config) (*logrus.Logger, error) {
	if err := utils.InitLogger(cfg.Logging.Level, "text", "stderr", ""); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return utils.GetLogger(), nil
}

// remoteDialect asks the API which dialect its store speaks so windowed
// queries bind timestamps the way that store compares them
func remoteDialect(ctx context.Context, c *client.Client, fallback string, logger *logrus.Logger) storage.Dialect {
	health, err := c.Health(ctx)
	if err == nil && health.Dialect != "" {
		if d, perr := storage.ParseDialect(health.Dialect); perr == nil {
			return d
		}
	}
	if err != nil {
		logger.WithError(err).Warn("API health check failed, assuming configured dialect")
	}

	d, perr := storage.ParseDialect(fallback)
	if perr != nil {
		return storage.DialectSQLite
	}
	return d
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := initCLILogger(cfg)
	if err != nil {
		return err
	}

	opts := resolveDashboardOptions(cmd, &cfg.Dashboard)
	if opts.interval <= 0 {
		return fmt.Errorf("refresh interval must be positive")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(opts.apiURL)
	dialect := remoteDialect(ctx, api, cfg.Storage.Type, logger)

	loader := dashboard.NewLoader(
		aggregator.New(api, dialect),
		eventlog.NewReader(api, dialect),
		opts.limit,
	)
	renderer := dashboard.NewRenderer(os.Stdout, dashboardLocation())

	refresh := func(ctx context.Context) {
		view := loader.Load(ctx, opts.filter)
		if ctx.Err() != nil {
			return
		}
		for section, err := range map[string]error{
			"metrics": view.SnapshotErr,
			"logs":    view.LogsErr,
			"summary": view.SummaryErr,
		} {
			if err != nil {
				logger.WithError(err).WithField("section", section).Warn("Dashboard section failed to load")
			}
		}
		if err := renderer.Render(view); err != nil {
			logger.WithError(err).Error("Failed to render dashboard")
		}
	}

	if opts.once {
		refresh(ctx)
		return nil
	}

	logger.WithFields(logrus.Fields{
		"api_url":  opts.apiURL,
		"interval": opts.interval,
		"dialect":  dialect,
	}).Info("Watching dashboard")

	err = dashboard.NewPoller(opts.interval, refresh).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

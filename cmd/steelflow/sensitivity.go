package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smartdevs17/steelflow-monitor/internal/models"
	"github.com/smartdevs17/steelflow-monitor/internal/sensitivity"
	"github.com/smartdevs17/steelflow-monitor/pkg/client"
)

var sensitivityCmd = &cobra.Command{
	Use:   "sensitivity",
	Short: "Manage root sensitivity declarations",
}

var sensitivityAddCmd = &cobra.Command{
	Use:   "add <root_path>",
	Short: "Declare a root path sensitive or not sensitive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := initCLILogger(cfg); err != nil {
			return err
		}

		sensitive := 0
		if on, _ := cmd.Flags().GetBool("sensitive"); on {
			sensitive = 1
		}

		rule := &models.RootSensitivityRule{RootPath: args[0], Sensitive: sensitive}
		if err := sensitivity.Validate(rule); err != nil {
			return err
		}

		api := client.New(apiURL(cmd, cfg.Dashboard.APIURL))
		saved, err := api.InsertRootSensitivity(cmd.Context(), rule.RootPath, rule.Sensitive)
		if err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}

		fmt.Printf("Configuração salva: #%d %s (sensível: %s)\n", saved.ID, saved.RootPath, yesNo(saved.Sensitive))
		return nil
	},
}

var sensitivityListCmd = &cobra.Command{
	Use:   "list",
	Short: "List root sensitivity declarations in insertion order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := initCLILogger(cfg); err != nil {
			return err
		}

		api := client.New(apiURL(cmd, cfg.Dashboard.APIURL))
		rules, err := api.RootSensitivity(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list configurations: %w", err)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCAMINHO RAIZ\tSENSÍVEL")
		for _, r := range rules {
			fmt.Fprintf(w, "%s\t%s\t%s\n", strconv.FormatInt(r.ID, 10), r.RootPath, yesNo(r.Sensitive))
		}
		return w.Flush()
	},
}

func init() {
	sensitivityCmd.PersistentFlags().String("api-url", "", "API base URL (defaults to dashboard.api_url)")
	sensitivityAddCmd.Flags().Bool("sensitive", false, "mark the root path as sensitive")

	sensitivityCmd.AddCommand(sensitivityAddCmd)
	sensitivityCmd.AddCommand(sensitivityListCmd)
}

func apiURL(cmd *cobra.Command, fallback string) string {
	if v, _ := cmd.Flags().GetString("api-url"); v != "" {
		return v
	}
	return fallback
}

func yesNo(sensitive int) string {
	if sensitive == 1 {
		return "sim"
	}
	return "não"
}

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/todatrack/todatrack/config"
	"github.com/todatrack/todatrack/core/model"
	"github.com/todatrack/todatrack/pkg/export"
)

var exportFormat string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the archived trips of the running stand to stdout",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format, csv or json")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("unknown format %q", exportFormat)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	url := apiBase(cfg.API.Addr) + "/api/fleet/trips/archive"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch archive failed: %s", resp.Status)
	}
	var trips []model.Trip
	if err := json.NewDecoder(resp.Body).Decode(&trips); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if exportFormat == "json" {
		return export.WriteJSON(os.Stdout, trips)
	}
	return export.WriteCSV(os.Stdout, trips)
}

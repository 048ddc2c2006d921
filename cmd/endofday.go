package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/todatrack/todatrack/config"
)

var endOfDayCmd = &cobra.Command{
	Use:   "endofday",
	Short: "Close the dispatch day on the running stand and print the report",
	RunE:  runEndOfDay,
}

func init() {
	rootCmd.AddCommand(endOfDayCmd)
}

func runEndOfDay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.API.AdminToken == "" {
		return fmt.Errorf("admin_token is not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	url := apiBase(cfg.API.Addr) + "/api/admin/endofday"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+cfg.API.AdminToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("day close failed: %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	var out struct {
		Report string `json:"report"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	fmt.Println(out.Report)
	return nil
}

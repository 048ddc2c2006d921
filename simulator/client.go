package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// apiClient is a minimal HTTP client for the stand API. Admin calls carry
// the bearer token, fleet calls go out bare.
type apiClient struct {
	base  string
	token string
	hc    *http.Client
}

func newAPIClient(base, token string) *apiClient {
	return &apiClient{
		base:  strings.TrimSuffix(base, "/"),
		token: token,
		hc:    &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *apiClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" && strings.HasPrefix(path, "/api/admin/") {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (c *apiClient) registerVehicle(ctx context.Context, plate, operator string, fareRate float64) error {
	in := map[string]any{
		"plate":     plate,
		"operator":  map[string]string{"name": operator},
		"fare_rate": fareRate,
	}
	return c.do(ctx, http.MethodPost, "/api/fleet/vehicles", in, nil)
}

func (c *apiClient) setDuty(ctx context.Context, plate string, on bool) error {
	return c.do(ctx, http.MethodPost, "/api/fleet/vehicles/"+plate+"/duty", map[string]bool{"on_duty": on}, nil)
}

func (c *apiClient) startTrip(ctx context.Context, plate string, passengers int, from, dest string) (int, error) {
	in := map[string]any{
		"plate":       plate,
		"passengers":  passengers,
		"from":        from,
		"destination": dest,
	}
	var out struct {
		Trip struct {
			ID int `json:"id"`
		} `json:"trip"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/fleet/trips", in, &out); err != nil {
		return 0, err
	}
	return out.Trip.ID, nil
}

func (c *apiClient) completeTrip(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodPost, fmt.Sprintf("/api/fleet/trips/%d/complete", id), nil, nil)
}

func (c *apiClient) endOfDay(ctx context.Context) (string, error) {
	var out struct {
		Report string `json:"report"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/admin/endofday", nil, &out); err != nil {
		return "", err
	}
	return out.Report, nil
}

package config

// APIConfig defines the HTTP listener settings.
type APIConfig struct {
	// Addr is the listen address of the fleet API.
	Addr string `json:"addr"`
	// AdminToken guards the admin endpoints (day close, broadcast,
	// snapshot save). Empty disables them.
	AdminToken string `json:"admin_token"`
}

// SetDefaults applies sane defaults.
func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}

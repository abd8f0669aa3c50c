package store

import "fmt"

// Config defines database connection settings.
type Config struct {
	// Driver selects the backend: "sqlite" or "postgres".
	Driver string `json:"driver"`
	// DSN is the file path for sqlite or the connection string for
	// postgres.
	DSN                    string `json:"dsn"`
	MaxOpenConns           int    `json:"max_open_conns"`
	MaxIdleConns           int    `json:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `json:"conn_max_lifetime_minutes"`
}

// SetDefaults applies sane defaults for a single-node deployment.
func (c *Config) SetDefaults() {
	if c.Driver == "" {
		c.Driver = "sqlite"
	}
	if c.DSN == "" {
		c.DSN = "crewsched.db"
	}
	if c.MaxOpenConns == 0 {
		c.MaxOpenConns = 10
	}
	if c.MaxIdleConns == 0 {
		c.MaxIdleConns = 5
	}
	if c.ConnMaxLifetimeMinutes == 0 {
		c.ConnMaxLifetimeMinutes = 30
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	if c.Driver != "sqlite" && c.Driver != "postgres" {
		return fmt.Errorf("unknown database driver %q", c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("dsn is required")
	}
	return nil
}

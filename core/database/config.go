package database

import (
	"fmt"
	"net/url"
	"strings"
)

// Supported storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverFile     = "file"
)

// Config holds storage settings shared across bots.
type Config struct {
	Driver string `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	// URL is a full postgres connection URL; when set it wins over the discrete fields.
	URL            string `yaml:"url" envconfig:"DATABASE_URL"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`

	SQLitePath    string `yaml:"sqlite_path" envconfig:"SQLITE_PATH"`
	FilePath      string `yaml:"file_path" envconfig:"USERS_FILE"`
	MigrationsDir string `yaml:"migrations_dir" envconfig:"MIGRATIONS_DIR"`
}

// Normalize applies defaults and validates the driver selection.
func (c *Config) Normalize() error {
	c.Driver = strings.ToLower(strings.TrimSpace(c.Driver))
	if c.Driver == "" {
		c.Driver = DriverFile
		if c.URL != "" || c.Host != "" {
			c.Driver = DriverPostgres
		}
	}
	if c.MigrationsDir == "" {
		c.MigrationsDir = "migrations"
	}
	switch c.Driver {
	case DriverPostgres:
		if c.URL == "" && c.Host == "" {
			return fmt.Errorf("database: postgres driver needs DATABASE_URL or DB_HOST")
		}
		if c.SSLMode == "" {
			c.SSLMode = "disable"
		}
		if c.Port == "" {
			c.Port = "5432"
		}
		if c.MaxConnections <= 0 {
			c.MaxConnections = 5
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			c.SQLitePath = "data/users.db"
		}
	case DriverFile:
		if c.FilePath == "" {
			c.FilePath = "data/users.json"
		}
	default:
		return fmt.Errorf("database: unknown driver %q; allowed: postgres, sqlite, file", c.Driver)
	}
	return nil
}

// PostgresURL renders the connection URL understood by both lib/pq and golang-migrate.
func (c Config) PostgresURL() string {
	if c.URL != "" {
		return c.URL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}
	return u.String()
}

// SQLiteDSN returns the modernc.org/sqlite DSN with WAL and a busy timeout.
func (c Config) SQLiteDSN() string {
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)", c.SQLitePath)
}

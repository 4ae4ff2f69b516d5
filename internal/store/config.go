package store

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-sql-driver/mysql"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

// Config describes how to reach the relational database.
type Config struct {
	Driver   string `toml:"driver" validate:"oneof=sqlite3 pgx mysql"`
	DSN      string `toml:"dsn"`
	Path     string `toml:"path"`
	Host     string `toml:"host"`
	Username string `toml:"username"`
	Password string `toml:"password"`
	Name     string `toml:"name"`

	MaxOpenConns    int           `toml:"max_open_conns" validate:"gte=0"`
	MaxIdleConns    int           `toml:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`

	Tables Tables `toml:"tables"`
}

// DataSourceName returns the explicit DSN when set, otherwise builds one for
// the configured driver from the individual credential fields.
func (c Config) DataSourceName() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}

	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return "", fmt.Errorf("%w: sqlite path is empty", ErrInvalidConfig)
		}
		return c.Path, nil
	case DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = c.Username
		mc.Passwd = c.Password
		mc.Net = "tcp"
		mc.Addr = c.Host
		mc.DBName = c.Name
		mc.ParseTime = true
		mc.Params = map[string]string{"charset": "utf8mb4"}
		return mc.FormatDSN(), nil
	case DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			Host:   c.Host,
			Path:   "/" + c.Name,
		}
		if c.Username != "" {
			u.User = url.UserPassword(c.Username, c.Password)
		}
		return u.String(), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDriver, c.Driver)
	}
}

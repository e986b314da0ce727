package config

import (
	"fmt"
	"net/url"
	"regexp"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Значения по умолчанию
const (
	defaultLogLevel        = "info"
	defaultLogFormat       = "json"
	defaultPortHTTP        = 3000
	defaultReadTimeout     = 10
	defaultWriteTimeout    = 10
	defaultIdleTimeout     = 60
	defaultReadHeaderTime  = 5
	defaultShutdownTimeout = 10
	defaultCORSOrigins     = "*"
	defaultCORSMaxAge      = 86400 // 24 часа
	defaultRateLimitRPS    = 100
	defaultRateLimitBurst  = 10
	defaultDSN             = "notes.db"
	defaultTable           = "notas"
	defaultMaxOpenConns    = 10
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 300
	defaultLookupBaseURL   = "http://localhost:3000/notas"
	defaultQRSize          = 256
)

// ApplyDefaults заполняет незаданные значения
func (c *Config) ApplyDefaults() {
	if c.Logger == nil {
		c.Logger = &ConfigLogger{}
	}
	if c.Server == nil {
		c.Server = &ConfigServer{}
	}
	if c.HTTP == nil {
		c.HTTP = &ConfigHTTP{}
	}
	if c.Database == nil {
		c.Database = &ConfigDatabase{}
	}
	if c.Lookup == nil {
		c.Lookup = &ConfigLookup{}
	}
	if c.Swagger == nil {
		c.Swagger = &ConfigSwagger{}
	}

	setString(&c.Logger.Level, defaultLogLevel)
	setString(&c.Logger.Format, defaultLogFormat)

	setInt(&c.Server.PortHTTP, defaultPortHTTP)
	setInt(&c.Server.HTTPReadTimeout, defaultReadTimeout)
	setInt(&c.Server.HTTPWriteTimeout, defaultWriteTimeout)
	setInt(&c.Server.HTTPIdleTimeout, defaultIdleTimeout)
	setInt(&c.Server.HTTPReadHeaderTimeout, defaultReadHeaderTime)
	setInt(&c.Server.GracefulShutdownTimeout, defaultShutdownTimeout)

	setString(&c.HTTP.CORSAllowedOrigins, defaultCORSOrigins)
	setInt(&c.HTTP.CORSMaxAge, defaultCORSMaxAge)
	setInt(&c.HTTP.RateLimitRPS, defaultRateLimitRPS)
	setInt(&c.HTTP.RateLimitBurst, defaultRateLimitBurst)

	setString(&c.Database.Driver, DriverSQLite)
	setString(&c.Database.DSN, defaultDSN)
	setString(&c.Database.Table, defaultTable)
	setInt(&c.Database.MaxOpenConns, defaultMaxOpenConns)
	setInt(&c.Database.MaxIdleConns, defaultMaxIdleConns)
	setInt(&c.Database.ConnMaxLifetime, defaultConnMaxLifetime)

	setString(&c.Lookup.BaseURL, defaultLookupBaseURL)
	setInt(&c.Lookup.QRSize, defaultQRSize)
}

// Validate проверяет конфигурацию после ApplyDefaults
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("database.driver: unsupported driver %q", c.Database.Driver)
	}
	if !identifierPattern.MatchString(c.Database.Table) {
		return fmt.Errorf("database.table: invalid identifier %q", c.Database.Table)
	}
	if c.Server.PortHTTP < 1 || c.Server.PortHTTP > 65535 {
		return fmt.Errorf("server.port_http: %d out of range", c.Server.PortHTTP)
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns: %d exceeds max_open_conns %d",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}
	if u, err := url.Parse(c.Lookup.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("lookup.base_url: %q is not an absolute URL", c.Lookup.BaseURL)
	}
	switch c.Logger.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logger.format: unsupported format %q", c.Logger.Format)
	}
	return nil
}

func setString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func setInt(dst *int, def int) {
	if *dst <= 0 {
		*dst = def
	}
}

package config

// ConfigLogger настройки логирования
type ConfigLogger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json | console
}

// ConfigServer настройки HTTP сервера (таймауты в секундах)
type ConfigServer struct {
	PortHTTP                int    `mapstructure:"port_http"`
	HTTPReadTimeout         int    `mapstructure:"http_read_timeout"`
	HTTPWriteTimeout        int    `mapstructure:"http_write_timeout"`
	HTTPIdleTimeout         int    `mapstructure:"http_idle_timeout"`
	HTTPReadHeaderTimeout   int    `mapstructure:"http_read_header_timeout"`
	GracefulShutdownTimeout int    `mapstructure:"graceful_shutdown_timeout"`
	StaticDir               string `mapstructure:"static_dir"`
}

// ConfigHTTP настройки HTTP middleware
type ConfigHTTP struct {
	CORSAllowedOrigins string `mapstructure:"cors_allowed_origins"`
	CORSMaxAge         int    `mapstructure:"cors_max_age"`
	RateLimitRPS       int    `mapstructure:"rate_limit_rps"`
	RateLimitBurst     int    `mapstructure:"rate_limit_burst"`
}

// ConfigDatabase настройки хранилища
type ConfigDatabase struct {
	Driver          string `mapstructure:"driver"` // sqlite | memory
	DSN             string `mapstructure:"dsn"`
	Table           string `mapstructure:"table"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"` // секунды
	AutoMigrate     bool   `mapstructure:"auto_migrate"`
}

// ConfigLookup настройки кода быстрого доступа (QR)
type ConfigLookup struct {
	BaseURL string `mapstructure:"base_url"`
	QRSize  int    `mapstructure:"qr_size"`
}

// ConfigSwagger настройки документации API
type ConfigSwagger struct {
	Enabled bool `mapstructure:"enabled"`
}

// Config основная структура конфигурации
type Config struct {
	Logger   *ConfigLogger   `mapstructure:"logger"`
	Server   *ConfigServer   `mapstructure:"server"`
	HTTP     *ConfigHTTP     `mapstructure:"http"`
	Database *ConfigDatabase `mapstructure:"database"`
	Lookup   *ConfigLookup   `mapstructure:"lookup"`
	Swagger  *ConfigSwagger  `mapstructure:"swagger"`
}

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

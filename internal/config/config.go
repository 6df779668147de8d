package config

import "time"

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig     `yaml:"server"`
	Database DatabaseConfig   `yaml:"database"`
	Catalog  CatalogConfig    `yaml:"catalog"`
	Page     PaginationConfig `yaml:"pagination"`
	Log      LogConfig        `yaml:"log"`
	CORS     CORSConfig       `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// CatalogConfig holds catalog service settings.
type CatalogConfig struct {
	// EnforceStatusFlow gates listing status changes through the
	// PENDINGLISTING -> LISTED -> SOLDOUT workflow. Off by default to
	// match existing admin clients that jump states freely.
	EnforceStatusFlow bool `yaml:"enforce_status_flow" env:"CATALOG_ENFORCE_STATUS_FLOW" env-default:"false"`
	// FacetConcurrency bounds the parallel facet sub-queries per request.
	FacetConcurrency int `yaml:"facet_concurrency" env:"CATALOG_FACET_CONCURRENCY" env-default:"4"`
	// FacetChunkSize caps the id set handed to one second-hop facet query;
	// larger reference sets fan out in chunks of this size.
	FacetChunkSize int `yaml:"facet_chunk_size" env:"CATALOG_FACET_CHUNK_SIZE" env-default:"500"`
}

// PaginationConfig bounds the page window for every paged endpoint.
type PaginationConfig struct {
	DefaultPageSize int `yaml:"default_page_size" env:"PAGE_DEFAULT_SIZE" env-default:"20"`
	MinPageSize     int `yaml:"min_page_size"     env:"PAGE_MIN_SIZE"     env-default:"1"`
	MaxPageSize     int `yaml:"max_page_size"     env:"PAGE_MAX_SIZE"     env-default:"100"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"Authorization,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"true"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

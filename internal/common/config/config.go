// internal/common/config/config.go
package config

import (
	"fmt"

	"github.com/EdwinBostonIII/custom-shape-puzzle-sub000/internal/models"
)

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Tiers         []models.TierSpec   `mapstructure:"tiers"`
	Geometry      GeometryConfig      `mapstructure:"geometry"`
	Warming       WarmingConfig       `mapstructure:"warming"`
	Registry      RegistryConfig      `mapstructure:"registry"`
	Archive       ArchiveConfig       `mapstructure:"archive"`
	Search        SearchConfig        `mapstructure:"search"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Port            int `mapstructure:"port"`
	ReadTimeout     int `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// --- Template Generation Config ---

// CacheConfig holds settings for the in-process template cache.
// MaxEntries of 0 means the cache grows without bound.
type CacheConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// GeometryConfig holds the piece outline constants. TabSize and
// NeckWidth are fractions of the cell size; CornerRadius is absolute.
type GeometryConfig struct {
	CellSize     float64 `mapstructure:"cell_size"`
	TabSize      float64 `mapstructure:"tab_size"`
	NeckWidth    float64 `mapstructure:"neck_width"`
	CornerRadius float64 `mapstructure:"corner_radius"`
}

// WarmingConfig controls startup cache pregeneration.
type WarmingConfig struct {
	Enabled      bool       `mapstructure:"enabled"`
	Combinations [][]string `mapstructure:"combinations"`
	TopN         int        `mapstructure:"top_n"`         // popular combinations pulled from redis
	RestoreLimit int        `mapstructure:"restore_limit"` // recent selections pulled from the archive
	FeedURL      string     `mapstructure:"feed_url"`
	FeedTimeout  int        `mapstructure:"feed_timeout"` // milliseconds
}

// RegistryConfig locates the shape registry file.
type RegistryConfig struct {
	Path string `mapstructure:"path"`
}

// ArchiveConfig controls template persistence in PostgreSQL.
type ArchiveConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// SearchConfig controls the Elasticsearch shape catalog.
type SearchConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Index       string `mapstructure:"index"`
	SeedOnStart bool   `mapstructure:"seed_on_start"`
}

// ObservabilityConfig holds OpenTelemetry settings. Tracing is off
// unless a Jaeger collector endpoint is set.
type ObservabilityConfig struct {
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

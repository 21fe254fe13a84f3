package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Messenger MessengerConfig `mapstructure:"messenger"`
	Geocode   GeocodeConfig   `mapstructure:"geocode"`
	Forecast  ForecastConfig  `mapstructure:"forecast"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// MessengerConfig controls the inbound message poller.
type MessengerConfig struct {
	PollInterval int    `mapstructure:"poll_interval"`
	CursorName   string `mapstructure:"cursor_name"`
}

type GeocodeConfig struct {
	SearchURL   string `mapstructure:"search_url"`
	FallbackURL string `mapstructure:"fallback_url"`
	CountryCode string `mapstructure:"country_code"`
	Timeout     int    `mapstructure:"timeout"`
	MaxRetries  int    `mapstructure:"max_retries"`
}

type ForecastConfig struct {
	PointsURL  string `mapstructure:"points_url"`
	MetarURL   string `mapstructure:"metar_url"`
	UserAgent  string `mapstructure:"user_agent"`
	Timeout    int    `mapstructure:"timeout"`
	MaxRetries int    `mapstructure:"max_retries"`
}

type SchedulerConfig struct {
	PollInterval    int  `mapstructure:"poll_interval"`
	ShutdownTimeout int  `mapstructure:"shutdown_timeout"`
	Enabled         bool `mapstructure:"enabled"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set defaults
	setDefaults()

	// Enable environment variable support
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.environment", "development")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)

	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "weatherbot")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_open_conns", 25)
	viper.SetDefault("database.max_idle_conns", 5)
	viper.SetDefault("database.conn_max_lifetime", 300)

	viper.SetDefault("messenger.poll_interval", 5) // seconds
	viper.SetDefault("messenger.cursor_name", "inbound")

	viper.SetDefault("geocode.search_url", "https://geocoding-api.open-meteo.com/v1/search")
	viper.SetDefault("geocode.fallback_url", "https://geocoding.geo.census.gov/geocoder/locations/onelineaddress")
	viper.SetDefault("geocode.country_code", "US")
	viper.SetDefault("geocode.timeout", 10)
	viper.SetDefault("geocode.max_retries", 2)

	viper.SetDefault("forecast.points_url", "https://api.weather.gov/points")
	viper.SetDefault("forecast.metar_url", "https://www.fli-rite.net/metars")
	viper.SetDefault("forecast.user_agent", "weatherbot-api/1.0 (contact: ops@example.com)")
	viper.SetDefault("forecast.timeout", 10)
	viper.SetDefault("forecast.max_retries", 2)

	viper.SetDefault("scheduler.poll_interval", 15) // seconds
	viper.SetDefault("scheduler.shutdown_timeout", 30)
	viper.SetDefault("scheduler.enabled", true)

	viper.SetDefault("log.level", "info")
}

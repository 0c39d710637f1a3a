// Package config loads the application configuration from, in increasing
// priority: built-in defaults, a JSON config file (the CONFIG environment
// variable or the -c flag), command-line flags, and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"net/url"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds all runtime settings of the service.
type Config struct {
	RunAddr                    string        `env:"SERVER_ADDRESS" json:"server_address" validate:"hostname_port"`
	ShortURLBase               string        `env:"BASE_URL" json:"base_url" validate:"url"`
	LogLevel                   string        `env:"LOG_LEVEL" json:"log_level" validate:"loglevel"`
	AuthCookieName             string        `env:"AUTH_COOKIE_NAME" json:"auth_cookie_name"`
	AuthCookieSigningSecretKey string        `env:"AUTH_COOKIE_SIGNING_SECRET_KEY" json:"auth_cookie_signing_secret_key"`
	TrustedSubnet              string        `env:"TRUSTED_SUBNET" json:"trusted_subnet"`
	ChannelCapacity            int           `env:"CHANNEL_CAPACITY" json:"channel_capacity"`
	DelayBetweenQueueFetches   time.Duration `env:"DELAY_BETWEEN_QUEUE_FETCHES" json:"delay_between_queue_fetches"`
	BcryptCost                 int           `env:"BCRYPT_COST" json:"bcrypt_cost"`
	EnableHTTPS                bool          `env:"ENABLE_HTTPS" json:"enable_https"`
}

// defaultConfig is the bottom layer of the configuration.
// AuthCookieSigningSecretKey is base64url-encoded and suitable for
// development only.
var defaultConfig = Config{
	RunAddr:                    ":8080",
	ShortURLBase:               "http://localhost:8080",
	LogLevel:                   "info",
	AuthCookieName:             "tinylinks_session",
	AuthCookieSigningSecretKey: "dGlueWxpbmtzLWRldi1zaWduaW5nLWtleQ==",
	TrustedSubnet:              "",
	ChannelCapacity:            64,
	DelayBetweenQueueFetches:   10 * time.Second,
	BcryptCost:                 0,
	EnableHTTPS:                false,
}

type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing turns off flag.Parse; tests use it to avoid
// clashing with the `go test` flag set.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds the configuration by layering the sources and validating the
// result.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}

	configFileName := os.Getenv("CONFIG")
	if !options.disableFlagsParsing {
		flag.StringVar(&configFileName, "c", configFileName, "path to a JSON config file")
		flag.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flag.StringVar(&values.ShortURLBase, "b", values.ShortURLBase, "base address of the resulting shortened URL")
		flag.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flag.StringVar(&values.TrustedSubnet, "t", values.TrustedSubnet, "CIDR of the subnet trusted to read internal stats")
		flag.BoolVar(&values.EnableHTTPS, "s", values.EnableHTTPS, "enable HTTPS")
		flag.Parse()
	}

	if configFileName != "" {
		fromFile, err := parseConfigFile(configFileName)
		if err != nil {
			return nil, err
		}
		applyDefaults(values, *fromFile)
	}

	applyDefaults(values, defaultConfig)

	valuesFromEnv := Config{}
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}
	overrideWithNonZero(values, valuesFromEnv)

	if err := values.clarifyShortURLBase(); err != nil {
		return nil, err
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}

func parseConfigFile(fileName string) (*Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}

	fromFile := &Config{}
	if err := json.Unmarshal(data, fromFile); err != nil {
		return nil, err
	}

	return fromFile, nil
}

// applyDefaults fills every zero-valued field of values from defaults.
func applyDefaults(values *Config, defaults Config) {
	if values.RunAddr == "" {
		values.RunAddr = defaults.RunAddr
	}
	if values.ShortURLBase == "" {
		values.ShortURLBase = defaults.ShortURLBase
	}
	if values.LogLevel == "" {
		values.LogLevel = defaults.LogLevel
	}
	if values.AuthCookieName == "" {
		values.AuthCookieName = defaults.AuthCookieName
	}
	if values.AuthCookieSigningSecretKey == "" {
		values.AuthCookieSigningSecretKey = defaults.AuthCookieSigningSecretKey
	}
	if values.TrustedSubnet == "" {
		values.TrustedSubnet = defaults.TrustedSubnet
	}
	if values.ChannelCapacity == 0 {
		values.ChannelCapacity = defaults.ChannelCapacity
	}
	if values.DelayBetweenQueueFetches == 0 {
		values.DelayBetweenQueueFetches = defaults.DelayBetweenQueueFetches
	}
	if values.BcryptCost == 0 {
		values.BcryptCost = defaults.BcryptCost
	}
	if !values.EnableHTTPS {
		values.EnableHTTPS = defaults.EnableHTTPS
	}
}

func overrideWithNonZero(values *Config, overrides Config) {
	if overrides.RunAddr != "" {
		values.RunAddr = overrides.RunAddr
	}
	if overrides.ShortURLBase != "" {
		values.ShortURLBase = overrides.ShortURLBase
	}
	if overrides.LogLevel != "" {
		values.LogLevel = overrides.LogLevel
	}
	if overrides.AuthCookieName != "" {
		values.AuthCookieName = overrides.AuthCookieName
	}
	if overrides.AuthCookieSigningSecretKey != "" {
		values.AuthCookieSigningSecretKey = overrides.AuthCookieSigningSecretKey
	}
	if overrides.TrustedSubnet != "" {
		values.TrustedSubnet = overrides.TrustedSubnet
	}
	if overrides.ChannelCapacity != 0 {
		values.ChannelCapacity = overrides.ChannelCapacity
	}
	if overrides.DelayBetweenQueueFetches != 0 {
		values.DelayBetweenQueueFetches = overrides.DelayBetweenQueueFetches
	}
	if overrides.BcryptCost != 0 {
		values.BcryptCost = overrides.BcryptCost
	}
	if overrides.EnableHTTPS {
		values.EnableHTTPS = true
	}
}

// clarifyShortURLBase rewrites the short URL base when HTTPS is enabled:
// the scheme becomes https and the default :8080 port is dropped.
func (values *Config) clarifyShortURLBase() error {
	if !values.EnableHTTPS {
		return nil
	}

	parsed, err := url.Parse(values.ShortURLBase)
	if err != nil {
		return err
	}

	parsed.Scheme = "https"
	if port := parsed.Port(); port == "8080" || port == "80" {
		parsed.Host = parsed.Hostname()
	}
	values.ShortURLBase = parsed.String()

	return nil
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug":   true,
		"info":    true,
		"warning": true,
		"error":   true,
		"fatal":   true,
	}

	return allowedLogLevels[value]
}

func (values *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	return validate.Struct(values)
}

package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the full server configuration, parsed from environment variables.
type Config struct {
	Port           int      `env:"PORT"                 envDefault:"3000"`
	Host           string   `env:"HOST"                 envDefault:"0.0.0.0"`
	StaticDir      string   `env:"STATIC_DIR"           envDefault:"./frontend"`
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000,http://127.0.0.1:3000,http://localhost:5500,http://127.0.0.1:5500"`

	// AppPasswordResetURL is the front-end page the emailed reset link points at.
	AppPasswordResetURL string `env:"APP_PASSWORD_RESET_URL" envDefault:"http://localhost:3000/reset-password"`

	// VerificationCodeExpiresIn bounds how long a registration code stays valid.
	VerificationCodeExpiresIn time.Duration `env:"VERIFICATION_CODE_EXPIRES_IN" envDefault:"10m"`

	Mongo  MongoConfig
	Token  TokenConfig
	Google GoogleConfig
}

// MongoConfig holds the MongoDB connection settings.
type MongoConfig struct {
	URI      string `env:"MONGODB_URI"`
	Database string `env:"MONGODB_DATABASE" envDefault:"parkqueue"`
}

// TokenConfig holds JWT issuance settings.
type TokenConfig struct {
	Issuer                      string        `env:"TOKEN_ISSUER" envDefault:"parkqueue"`
	AccessTokenSecret           string        `env:"ACCESS_TOKEN_SECRET"`
	AccessTokenExpiresIn        time.Duration `env:"ACCESS_TOKEN_EXPIRES_IN"         envDefault:"15m"`
	RefreshTokenSecret          string        `env:"REFRESH_TOKEN_SECRET"`
	RefreshTokenExpiresIn       time.Duration `env:"REFRESH_TOKEN_EXPIRES_IN"        envDefault:"168h"`
	PasswordResetTokenSecret    string        `env:"PASSWORD_RESET_TOKEN_SECRET"`
	PasswordResetTokenExpiresIn time.Duration `env:"PASSWORD_RESET_TOKEN_EXPIRES_IN" envDefault:"1h"`
}

// GoogleConfig holds the Google OAuth settings.
type GoogleConfig struct {
	ClientID string `env:"GOOGLE_CLIENT_ID"`
}

// New parses and validates the configuration from environment variables.
func New(logger *zerolog.Logger) *Config {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to parse environment variables")
	}

	if err := cfg.validate(); err != nil {
		logger.Fatal().Err(err).Msg("failed to validate configuration")
	}

	return &cfg
}

// validate checks that the settings without a usable default are present.
func (c *Config) validate() error {
	if c.Mongo.URI == "" {
		return fmt.Errorf("missing MONGODB_URI environment variable")
	}
	if c.Token.AccessTokenSecret == "" {
		return fmt.Errorf("missing ACCESS_TOKEN_SECRET environment variable")
	}
	if c.Token.RefreshTokenSecret == "" {
		return fmt.Errorf("missing REFRESH_TOKEN_SECRET environment variable")
	}
	if c.Token.PasswordResetTokenSecret == "" {
		return fmt.Errorf("missing PASSWORD_RESET_TOKEN_SECRET environment variable")
	}
	if c.Google.ClientID == "" {
		return fmt.Errorf("missing GOOGLE_CLIENT_ID environment variable")
	}

	return nil
}

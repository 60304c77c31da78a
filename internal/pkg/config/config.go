package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// OAuthCredentials holds the application registration for one external platform.
type OAuthCredentials struct {
	ClientID     string
	ClientSecret string
}

// IsConfigured reports whether both parts of the registration are present.
func (c OAuthCredentials) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// ProviderCredentials bundles the registrations for all supported platforms.
// Adapters receive their slice at construction; nothing reads the process
// environment after Load has run.
type ProviderCredentials struct {
	Facebook OAuthCredentials
	TikTok   OAuthCredentials
	Twitter  OAuthCredentials
	LinkedIn OAuthCredentials
	YouTube  OAuthCredentials
}

type DBConfig struct {
	Host     string `validate:"required"`
	Port     string `validate:"required"`
	User     string `validate:"required"`
	Password string
	Name     string `validate:"required"`
}

type RedisConfig struct {
	Host string `validate:"required"`
	Port string `validate:"required"`
}

type S3Config struct {
	AccessKeyID     string `validate:"required"`
	SecretAccessKey string `validate:"required"`
	Region          string `validate:"required"`
	Bucket          string `validate:"required"`
	EndpointURL     string // optional, for S3-compatible services
	PublicBaseURL   string // optional CDN/public host for retrieval URLs
}

// Config is the full process configuration, loaded once at startup.
type Config struct {
	AppHost string
	AppPort string `validate:"required"`

	// PublicBaseURL is the externally reachable base of this service; provider
	// callbacks for state-bound platforms land under it.
	PublicBaseURL string `validate:"required,url"`

	// AuthServiceURL is the identity provider used to resolve bearer tokens.
	AuthServiceURL string `validate:"required,url"`

	// StateSecret signs the OAuth state tokens.
	StateSecret string `validate:"required"`

	DB        DBConfig
	Redis     RedisConfig
	S3        S3Config
	Providers ProviderCredentials
}

// Load reads configuration from a .env file (if present) and the process
// environment, then validates it. It is the only place that touches env vars.
func Load() (*Config, error) {
	// Missing .env is fine in containers; env vars win there.
	_ = godotenv.Load()

	cfg := &Config{
		AppHost:        getenv("APP_HOST", "0.0.0.0"),
		AppPort:        getenv("APP_PORT", "4000"),
		PublicBaseURL:  getenv("PUBLIC_BASE_URL", ""),
		AuthServiceURL: getenv("AUTH_SERVICE_URL", ""),
		StateSecret:    getenv("OAUTH_STATE_SECRET", ""),
		DB: DBConfig{
			Host:     getenv("DB_HOST", "127.0.0.1"),
			Port:     getenv("DB_PORT", "3306"),
			User:     getenv("DB_USER", ""),
			Password: getenv("DB_PASSWORD", ""),
			Name:     getenv("DB_NAME", ""),
		},
		Redis: RedisConfig{
			Host: getenv("REDIS_HOST", "127.0.0.1"),
			Port: getenv("REDIS_PORT", "6379"),
		},
		S3: S3Config{
			AccessKeyID:     getenv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getenv("S3_SECRET_ACCESS_KEY", ""),
			Region:          getenv("S3_REGION", "us-east-1"),
			Bucket:          getenv("S3_BUCKET_NAME", ""),
			EndpointURL:     getenv("S3_ENDPOINT_URL", ""),
			PublicBaseURL:   getenv("S3_PUBLIC_BASE_URL", ""),
		},
		Providers: ProviderCredentials{
			Facebook: OAuthCredentials{
				ClientID:     getenv("FACEBOOK_APP_ID", ""),
				ClientSecret: getenv("FACEBOOK_APP_SECRET", ""),
			},
			TikTok: OAuthCredentials{
				ClientID:     getenv("TIKTOK_CLIENT_KEY", ""),
				ClientSecret: getenv("TIKTOK_CLIENT_SECRET", ""),
			},
			Twitter: OAuthCredentials{
				ClientID:     getenv("TWITTER_CLIENT_ID", ""),
				ClientSecret: getenv("TWITTER_CLIENT_SECRET", ""),
			},
			LinkedIn: OAuthCredentials{
				ClientID:     getenv("LINKEDIN_CLIENT_ID", ""),
				ClientSecret: getenv("LINKEDIN_CLIENT_SECRET", ""),
			},
			YouTube: OAuthCredentials{
				ClientID:     getenv("YOUTUBE_CLIENT_ID", ""),
				ClientSecret: getenv("YOUTUBE_CLIENT_SECRET", ""),
			},
		},
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

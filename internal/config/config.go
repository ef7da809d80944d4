package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort string
	AppEnv  string

	LogLevel  string
	LogFormat string

	StripeSecretKey      string
	StripeAPIVersion     string
	StripeWebhookSecret  string
	StripeCountry        string
	StorefrontURL        string
	OnboardingRefreshURL string
	OnboardingReturnURL  string

	GlideAPIURL              string
	GlideAppID               string
	GlideSecret              string
	GlideTableName           string
	GlideOnboardingURLColumn string
	GlideDashboardURLColumn  string
	GlideOnboardedColumn     string
	GlidePushOnCreate        bool
	GlideRetryMax            int

	HTTPClientTimeout time.Duration

	StoreDriver     string
	MappingFile     string
	RedisAddr       string
	RedisPassword   string
	RedisMappingKey string
	DatabaseDSN     string

	CORSAllowOrigins []string
}

// Load reads configuration from the environment, applying defaults.
func Load() Config {
	return load(viper.New())
}

func load(v *viper.Viper) Config {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := Config{
		AppPort: v.GetString("APP_PORT"),
		AppEnv:  v.GetString("APP_ENV"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFormat: v.GetString("LOG_FORMAT"),

		StripeSecretKey:      v.GetString("STRIPE_SECRET_KEY"),
		StripeAPIVersion:     v.GetString("STRIPE_API_VERSION"),
		StripeWebhookSecret:  v.GetString("STRIPE_WEBHOOK_SECRET"),
		StripeCountry:        v.GetString("STRIPE_COUNTRY"),
		StorefrontURL:        v.GetString("STOREFRONT_URL"),
		OnboardingRefreshURL: v.GetString("ONBOARDING_REFRESH_URL"),
		OnboardingReturnURL:  v.GetString("ONBOARDING_RETURN_URL"),

		GlideAPIURL:              v.GetString("GLIDE_API_URL"),
		GlideAppID:               v.GetString("GLIDE_APP_ID"),
		GlideSecret:              v.GetString("GLIDE_SECRET"),
		GlideTableName:           v.GetString("GLIDE_TABLE_NAME"),
		GlideOnboardingURLColumn: v.GetString("GLIDE_ONBOARDING_URL_COLUMN"),
		GlideDashboardURLColumn:  v.GetString("GLIDE_DASHBOARD_URL_COLUMN"),
		GlideOnboardedColumn:     v.GetString("GLIDE_ONBOARDED_COLUMN"),
		GlidePushOnCreate:        v.GetBool("GLIDE_PUSH_ON_CREATE"),
		GlideRetryMax:            v.GetInt("GLIDE_RETRY_MAX"),

		HTTPClientTimeout: v.GetDuration("HTTP_CLIENT_TIMEOUT"),

		StoreDriver:     strings.ToLower(v.GetString("STORE_DRIVER")),
		MappingFile:     v.GetString("MAPPING_FILE"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisMappingKey: v.GetString("REDIS_MAPPING_KEY"),
		DatabaseDSN:     v.GetString("DATABASE_DSN"),

		CORSAllowOrigins: splitList(v.GetString("CORS_ALLOW_ORIGINS")),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STRIPE_COUNTRY", "US")

	v.SetDefault("GLIDE_API_URL", "https://api.glideapp.io")
	v.SetDefault("GLIDE_ONBOARDING_URL_COLUMN", "onboardingUrl")
	v.SetDefault("GLIDE_DASHBOARD_URL_COLUMN", "dashboardUrl")
	v.SetDefault("GLIDE_ONBOARDED_COLUMN", "onboarded")
	v.SetDefault("GLIDE_PUSH_ON_CREATE", false)
	v.SetDefault("GLIDE_RETRY_MAX", 0)

	v.SetDefault("HTTP_CLIENT_TIMEOUT", 30*time.Second)

	v.SetDefault("STORE_DRIVER", "file")
	v.SetDefault("MAPPING_FILE", "./data/accounts.json")
	v.SetDefault("REDIS_MAPPING_KEY", "connected_accounts")

	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
}

// Warnings lists settings whose absence defers failure to first use.
func (c Config) Warnings() []string {
	var missing []string

	required := []struct {
		key   string
		value string
	}{
		{"STRIPE_SECRET_KEY", c.StripeSecretKey},
		{"STRIPE_API_VERSION", c.StripeAPIVersion},
		{"GLIDE_APP_ID", c.GlideAppID},
		{"GLIDE_SECRET", c.GlideSecret},
		{"GLIDE_TABLE_NAME", c.GlideTableName},
	}
	for _, r := range required {
		if r.value == "" {
			missing = append(missing, r.key)
		}
	}

	return missing
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

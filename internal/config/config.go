package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	GoogleAds GoogleAdsConfig `yaml:"google_ads"`
	Dashboard DashboardConfig `yaml:"dashboard"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Database  DatabaseConfig  `yaml:"database"`
	Notify    NotifyConfig    `yaml:"notify"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, listening on all interfaces in containers.
func (c ServerConfig) GetHost() string {
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// Addr returns host:port.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.GetHost(), c.Port)
}

// GoogleAdsConfig holds the credentials and endpoints for the Google Ads API.
type GoogleAdsConfig struct {
	DeveloperToken  string `yaml:"developer_token"`
	ClientID        string `yaml:"client_id"`
	ClientSecret    string `yaml:"client_secret"`
	RefreshToken    string `yaml:"refresh_token"`
	LoginCustomerID string `yaml:"login_customer_id"`
	CustomerID      string `yaml:"customer_id"`
	APIVersion      string `yaml:"api_version"`
	BaseURL         string `yaml:"base_url"`
	TokenURL        string `yaml:"token_url"`
	UIBaseURL       string `yaml:"ui_base_url"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxRetries      int    `yaml:"max_retries"`
}

// Timeout returns the configured timeout as a duration
func (c GoogleAdsConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MissingSettingsError reports required settings that are absent. It is
// fatal for refresh and apply and is surfaced verbatim.
type MissingSettingsError struct {
	Missing []string
}

func (e *MissingSettingsError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// Validate checks that every credential the Ads API needs is present.
// The names reported are the environment variables that set them.
func (c GoogleAdsConfig) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"GOOGLE_ADS_DEVELOPER_TOKEN", c.DeveloperToken},
		{"GOOGLE_ADS_CLIENT_ID", c.ClientID},
		{"GOOGLE_ADS_CLIENT_SECRET", c.ClientSecret},
		{"GOOGLE_ADS_REFRESH_TOKEN", c.RefreshToken},
		{"GOOGLE_ADS_LOGIN_CUSTOMER_ID", c.LoginCustomerID},
		{"GOOGLE_ADS_CUSTOMER_ID", c.CustomerID},
	}

	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	if len(missing) > 0 {
		return &MissingSettingsError{Missing: missing}
	}
	return nil
}

// DashboardConfig controls payload assembly and the rule engines.
type DashboardConfig struct {
	AccountName         string `yaml:"account_name"`
	Currency            string `yaml:"currency"`
	DefaultDays         int    `yaml:"default_days"`
	MaxDays             int    `yaml:"max_days"`
	InsightLimit        int    `yaml:"insight_limit"`
	RecommendationLimit int    `yaml:"recommendation_limit"`
	TopKeywords         int    `yaml:"top_keywords"`
	TopSearchQueries    int    `yaml:"top_search_queries"`
	TopGeoRows          int    `yaml:"top_geo_rows"`
	RefreshLockSeconds  int    `yaml:"refresh_lock_seconds"`
}

// RefreshLockTTL returns how long a refresh may hold the lock.
func (c DashboardConfig) RefreshLockTTL() time.Duration {
	return time.Duration(c.RefreshLockSeconds) * time.Second
}

// StorageConfig selects where the latest payload is kept.
// Type is one of "local", "s3", "dynamodb", "redis", "postgres".
type StorageConfig struct {
	Type          string `yaml:"type"`
	LocalPath     string `yaml:"local_path"`
	S3Bucket      string `yaml:"s3_bucket"`
	S3Prefix      string `yaml:"s3_prefix"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
	RedisKey      string `yaml:"redis_key"`
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// RedisConfig holds the optional Redis connection used for payload storage
// and refresh locking.
type RedisConfig struct {
	URL string `yaml:"url"`
}

// DatabaseConfig holds the optional Postgres connection.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// NotifyConfig controls refresh report emails sent through SES.
type NotifyConfig struct {
	Enabled        bool     `yaml:"enabled"`
	OnSuccess      bool     `yaml:"on_success"`
	From           string   `yaml:"from"`
	To             []string `yaml:"to"`
	Region         string   `yaml:"region"`
	AccessKey      string   `yaml:"access_key"`
	SecretKey      string   `yaml:"secret_key"`
	DashboardURL   string   `yaml:"dashboard_url"`
	TimeoutSeconds int      `yaml:"timeout_seconds"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads and parses the configuration file. A missing file is not an
// error: every setting can come from the environment instead.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.GoogleAds.APIVersion == "" {
		cfg.GoogleAds.APIVersion = "v17"
	}
	if cfg.GoogleAds.BaseURL == "" {
		cfg.GoogleAds.BaseURL = "https://googleads.googleapis.com"
	}
	if cfg.GoogleAds.TokenURL == "" {
		cfg.GoogleAds.TokenURL = "https://oauth2.googleapis.com/token"
	}
	if cfg.GoogleAds.UIBaseURL == "" {
		cfg.GoogleAds.UIBaseURL = "https://ads.google.com/aw"
	}
	if cfg.GoogleAds.TimeoutSeconds == 0 {
		cfg.GoogleAds.TimeoutSeconds = 60
	}
	if cfg.GoogleAds.MaxRetries == 0 {
		cfg.GoogleAds.MaxRetries = 3
	}
	if cfg.Dashboard.Currency == "" {
		cfg.Dashboard.Currency = "RM"
	}
	if cfg.Dashboard.DefaultDays == 0 {
		cfg.Dashboard.DefaultDays = 30
	}
	if cfg.Dashboard.MaxDays == 0 {
		cfg.Dashboard.MaxDays = 365
	}
	if cfg.Dashboard.InsightLimit == 0 {
		cfg.Dashboard.InsightLimit = 6
	}
	if cfg.Dashboard.RecommendationLimit == 0 {
		cfg.Dashboard.RecommendationLimit = 8
	}
	if cfg.Dashboard.TopKeywords == 0 {
		cfg.Dashboard.TopKeywords = 15
	}
	if cfg.Dashboard.TopSearchQueries == 0 {
		cfg.Dashboard.TopSearchQueries = 10
	}
	if cfg.Dashboard.TopGeoRows == 0 {
		cfg.Dashboard.TopGeoRows = 10
	}
	if cfg.Dashboard.RefreshLockSeconds == 0 {
		cfg.Dashboard.RefreshLockSeconds = 300
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data"
	}
	if cfg.Storage.AWSRegion == "" {
		cfg.Storage.AWSRegion = "us-east-1"
	}
	if cfg.Storage.S3Prefix == "" {
		cfg.Storage.S3Prefix = "dashboard/"
	}
	if cfg.Storage.RedisKey == "" {
		cfg.Storage.RedisKey = "dashboard:payload"
	}
	if cfg.Notify.Region == "" {
		cfg.Notify.Region = "us-east-1"
	}
	if cfg.Notify.TimeoutSeconds == 0 {
		cfg.Notify.TimeoutSeconds = 15
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It loads a .env file (if present) first, so credentials can live in .env
// locally and in real env vars in deployment.
func LoadFromEnv(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	setString(&cfg.GoogleAds.DeveloperToken, "GOOGLE_ADS_DEVELOPER_TOKEN")
	setString(&cfg.GoogleAds.ClientID, "GOOGLE_ADS_CLIENT_ID")
	setString(&cfg.GoogleAds.ClientSecret, "GOOGLE_ADS_CLIENT_SECRET")
	setString(&cfg.GoogleAds.RefreshToken, "GOOGLE_ADS_REFRESH_TOKEN")
	setString(&cfg.GoogleAds.LoginCustomerID, "GOOGLE_ADS_LOGIN_CUSTOMER_ID")
	setString(&cfg.GoogleAds.CustomerID, "GOOGLE_ADS_CUSTOMER_ID")
	setString(&cfg.GoogleAds.APIVersion, "GOOGLE_ADS_API_VERSION")
	setString(&cfg.GoogleAds.BaseURL, "GOOGLE_ADS_BASE_URL")
	setString(&cfg.GoogleAds.TokenURL, "GOOGLE_ADS_TOKEN_URL")

	// Customer ids are often copied from the UI as 123-456-7890.
	cfg.GoogleAds.LoginCustomerID = NormalizeCustomerID(cfg.GoogleAds.LoginCustomerID)
	cfg.GoogleAds.CustomerID = NormalizeCustomerID(cfg.GoogleAds.CustomerID)

	setString(&cfg.Dashboard.AccountName, "DASHBOARD_ACCOUNT_NAME")
	setString(&cfg.Dashboard.Currency, "DASHBOARD_CURRENCY")

	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.LocalPath, "STORAGE_LOCAL_PATH")
	setString(&cfg.Storage.S3Bucket, "STORAGE_S3_BUCKET")
	setString(&cfg.Storage.DynamoDBTable, "STORAGE_DYNAMODB_TABLE")
	setString(&cfg.Storage.AWSRegion, "AWS_REGION")

	setString(&cfg.Redis.URL, "REDIS_URL")
	setString(&cfg.Database.URL, "DATABASE_URL")

	if v := os.Getenv("NOTIFY_ENABLED"); v != "" {
		cfg.Notify.Enabled, _ = strconv.ParseBool(v)
	}
	setString(&cfg.Notify.From, "NOTIFY_FROM")
	if v := os.Getenv("NOTIFY_TO"); v != "" {
		cfg.Notify.To = splitList(v)
	}
	setString(&cfg.Notify.AccessKey, "AWS_SES_ACCESS_KEY")
	setString(&cfg.Notify.SecretKey, "AWS_SES_SECRET_KEY")
	setString(&cfg.Notify.Region, "AWS_SES_REGION")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}

	return cfg, nil
}

// NormalizeCustomerID strips the dashes the Ads UI shows in customer ids.
func NormalizeCustomerID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

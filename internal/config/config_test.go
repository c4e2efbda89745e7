package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"

google_ads:
  developer_token: "dev-token"
  client_id: "client-id"
  client_secret: "client-secret"
  refresh_token: "refresh-token"
  login_customer_id: "1112223333"
  customer_id: "7867388610"
  timeout_seconds: 45

dashboard:
  account_name: "YCK Chiropractic"
  currency: "USD"
  insight_limit: 4
  recommendation_limit: 5

storage:
  type: "s3"
  s3_bucket: "dashboards"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)

	assert.Equal(t, "dev-token", cfg.GoogleAds.DeveloperToken)
	assert.Equal(t, "7867388610", cfg.GoogleAds.CustomerID)
	assert.Equal(t, 45*time.Second, cfg.GoogleAds.Timeout())
	assert.NoError(t, cfg.GoogleAds.Validate())

	assert.Equal(t, "YCK Chiropractic", cfg.Dashboard.AccountName)
	assert.Equal(t, "USD", cfg.Dashboard.Currency)
	assert.Equal(t, 4, cfg.Dashboard.InsightLimit)
	assert.Equal(t, 5, cfg.Dashboard.RecommendationLimit)

	assert.Equal(t, "s3", cfg.Storage.Type)
	assert.Equal(t, "dashboards", cfg.Storage.S3Bucket)
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err, "a missing file falls back to defaults")

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "v17", cfg.GoogleAds.APIVersion)
	assert.Equal(t, "https://googleads.googleapis.com", cfg.GoogleAds.BaseURL)
	assert.Equal(t, 60, cfg.GoogleAds.TimeoutSeconds)
	assert.Equal(t, 30, cfg.Dashboard.DefaultDays)
	assert.Equal(t, 6, cfg.Dashboard.InsightLimit)
	assert.Equal(t, 8, cfg.Dashboard.RecommendationLimit)
	assert.Equal(t, 15, cfg.Dashboard.TopKeywords)
	assert.Equal(t, 5*time.Minute, cfg.Dashboard.RefreshLockTTL())
	assert.Equal(t, "local", cfg.Storage.Type)
}

func TestLoadInvalidYAML(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [unclosed"), 0644))

	_, err := Load(configPath)
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
google_ads:
  developer_token: "file-token"
  customer_id: "111-222-3333"
`), 0644))

	t.Setenv("GOOGLE_ADS_DEVELOPER_TOKEN", "env-token")
	t.Setenv("GOOGLE_ADS_LOGIN_CUSTOMER_ID", "999-888-7777")
	t.Setenv("NOTIFY_TO", "ops@example.com, owner@example.com")
	t.Setenv("PORT", "3000")

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	assert.Equal(t, "env-token", cfg.GoogleAds.DeveloperToken)
	assert.Equal(t, "9998887777", cfg.GoogleAds.LoginCustomerID)
	assert.Equal(t, "1112223333", cfg.GoogleAds.CustomerID, "file value is normalized too")
	assert.Equal(t, []string{"ops@example.com", "owner@example.com"}, cfg.Notify.To)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestValidateListsMissingSettings(t *testing.T) {
	cfg := GoogleAdsConfig{
		DeveloperToken: "dev",
		ClientID:       "id",
		CustomerID:     "123",
	}

	err := cfg.Validate()
	require.Error(t, err)

	var missing *MissingSettingsError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{
		"GOOGLE_ADS_CLIENT_SECRET",
		"GOOGLE_ADS_REFRESH_TOKEN",
		"GOOGLE_ADS_LOGIN_CUSTOMER_ID",
	}, missing.Missing)
	assert.Contains(t, err.Error(), "GOOGLE_ADS_REFRESH_TOKEN")
}

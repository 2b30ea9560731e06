package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)
	require.Equal(t, EnvDevelopment, cfg.Env)
	require.Equal(t, 8080, cfg.Port)
	require.Equal(t, "/api/v1", cfg.APIPrefix)
	require.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
	require.Equal(t, 30*time.Minute, cfg.Reports.CacheTTL)
	require.Equal(t, 50, cfg.Reports.ListLimit)
	require.False(t, cfg.Reports.CacheEnabled)
	require.True(t, cfg.Reports.PDFExportEnabled)
	require.Nil(t, cfg.CORS.AllowedOrigins)
	require.True(t, cfg.Database.AutoMigrate)
}

func TestOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("REPORT_CACHE_TTL", "not-a-duration")
	v.Set("REPORTS_LIST_LIMIT", -3)
	v.Set("ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	v.Set("ENABLE_REPORT_CACHE", true)

	cfg := fromViper(v)
	require.Equal(t, 30*time.Minute, cfg.Reports.CacheTTL)
	require.Equal(t, 50, cfg.Reports.ListLimit)
	require.True(t, cfg.Reports.CacheEnabled)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

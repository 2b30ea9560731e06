package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/rdic-api/pkg/config"
)

func TestOptions(t *testing.T) {
	opts := Options(config.RedisConfig{Host: "cache", Port: 6380, Password: "secret", DB: 2})
	require.Equal(t, "cache:6380", opts.Addr)
	require.Equal(t, "secret", opts.Password)
	require.Equal(t, 2, opts.DB)
	require.Equal(t, 3*time.Second, opts.DialTimeout)
}

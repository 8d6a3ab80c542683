package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/aretw0/canopy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "canopy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultLimits(), cfg.Limits)
	assert.Nil(t, cfg.Seed)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, `
tree: menus/food.yaml
seed: 42
limits:
  max_depth: 6
  max_total_categories: 3
log:
  level: debug
  format: json
redis:
  addr: localhost:6379
  ttl: 1h
session:
  id: kiosk-1
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "menus/food.yaml", cfg.Tree)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(42), *cfg.Seed)

	// Unset limits keep their defaults
	assert.Equal(t, 6, cfg.Limits.MaxDepth)
	assert.Equal(t, 3, cfg.Limits.MaxTotalCategories)
	assert.Equal(t, domain.DefaultMaxDescentAttempts, cfg.Limits.MaxDescentAttempts)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "canopy:report:", cfg.Redis.Prefix)
	assert.Equal(t, 5*time.Minute, cfg.Session.LockTTL)
}

func TestLoad_Rejects(t *testing.T) {
	cases := map[string]string{
		"unknown key":       "colour: green\n",
		"negative limit":    "limits:\n  max_depth: -2\n",
		"bad format":        "log:\n  format: xml\n",
		"session w/o redis": "session:\n  id: kiosk-1\n",
		"browser selectors": "browser:\n  url: http://shop.local\n",
		"malformed yaml":    "limits: [\n",
		"bad duration":      "redis:\n  ttl: forever\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, content))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "limits:\n  max_depth: 6\n")
	t.Setenv("CANOPY_LIMITS_MAX_DEPTH", "12")
	t.Setenv("CANOPY_SEED", "7")
	t.Setenv("CANOPY_REDIS_ADDR", "redis:6379")
	t.Setenv("CANOPY_REDIS_TTL", "30s")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Limits.MaxDepth)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(7), *cfg.Seed)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Redis.TTL)
}

func TestLoad_NestedEnvOverrides(t *testing.T) {
	path := writeFile(t, "browser:\n  url: https://shop.test\n  children: .from-file\n")
	t.Setenv("CANOPY_BROWSER_CHILDREN", ".cat")
	t.Setenv("CANOPY_BROWSER_ITEMS", ".item")
	t.Setenv("CANOPY_BROWSER_NO_RESULTS", ".empty")
	t.Setenv("CANOPY_BROWSER_HEADLESS", "false")
	t.Setenv("CANOPY_SESSION_LOCK_TTL", "1m")
	t.Setenv("CANOPY_REDIS_PREFIX", "x:")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://shop.test", cfg.Browser.URL)
	assert.Equal(t, ".cat", cfg.Browser.Children)
	assert.Equal(t, ".item", cfg.Browser.Items)
	assert.Equal(t, ".empty", cfg.Browser.NoResults)
	assert.False(t, cfg.Browser.Headless)
	assert.Equal(t, time.Minute, cfg.Session.LockTTL)
	assert.Equal(t, "x:", cfg.Redis.Prefix)

	// Untouched keys keep their defaults.
	assert.Equal(t, 15*time.Second, cfg.Browser.Timeout)
	assert.Equal(t, 24*time.Hour, cfg.Redis.TTL)
}

func TestLoad_EnvOnlyBrowser(t *testing.T) {
	t.Setenv("CANOPY_BROWSER_URL", "https://shop.test")
	t.Setenv("CANOPY_BROWSER_CHILDREN", ".cat")
	t.Setenv("CANOPY_BROWSER_ITEMS", ".item")
	t.Setenv("CANOPY_BROWSER_UP", ".breadcrumb a")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ".breadcrumb a", cfg.Browser.Up)
}

func TestKeys_CoverEveryField(t *testing.T) {
	all := keys(reflect.TypeOf(Config{}), "")
	for _, key := range []string{
		"tree", "seed", "reports",
		"limits.max_depth", "limits.category_switch_retry_draws",
		"log.format", "redis.prefix", "http.addr", "session.lock_ttl",
		"browser.no_results", "browser.dismiss", "browser.install",
	} {
		assert.Contains(t, all, key)
	}
	assert.Len(t, all, 27)
	assert.Equal(t, "CANOPY_BROWSER_NO_RESULTS", EnvName("browser.no_results"))
}

func TestLimitsErrorIsExposed(t *testing.T) {
	_, err := Decode(map[string]interface{}{
		"limits": map[string]interface{}{"max_descent_attempts": 0, "max_total_categories": -1},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidLimits)
}

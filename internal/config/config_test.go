package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/shipmart")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "development", cfg.AppEnv)
	require.Equal(t, ":8080", cfg.HTTPAddr())
	require.True(t, cfg.Rates.USDToBDT.Equal(decimal.RequireFromString("121.50")))
	require.True(t, cfg.Rates.CNYToBDT.Equal(decimal.RequireFromString("17.50")))
	require.True(t, cfg.Rates.USDToCNY.Equal(decimal.RequireFromString("7")))
	require.True(t, cfg.ShippingAirBDT.Equal(decimal.RequireFromString("1500")))
	require.True(t, cfg.ShippingSeaBDT.Equal(decimal.RequireFromString("1000")))
	require.Equal(t, 20, cfg.OrdersPerPage)
	require.Equal(t, "json", cfg.LogFormat)
	require.Equal(t, "notifications", cfg.NotifyQueue)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/shipmart")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("PORT", "9090")
	t.Setenv("RATE_USD_TO_BDT", "125")
	t.Setenv("RATE_USD_TO_CNY", "7.2")
	t.Setenv("COUPON_FALLBACK_CODE", " save5 ")
	t.Setenv("COUPON_FALLBACK_RATE_BPS", "500")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://shop.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9090", cfg.HTTPAddr())
	require.True(t, cfg.Rates.USDToBDT.Equal(decimal.RequireFromString("125")))
	require.True(t, cfg.Rates.USDToCNY.Equal(decimal.RequireFromString("7.2")))
	require.Equal(t, "save5", cfg.CouponFallbackCode)
	require.Equal(t, 500, cfg.CouponFallbackRateBps)
	require.Equal(t, []string{"https://shop.example.com", "https://admin.example.com"}, cfg.CORSAllowedOrigins)
}

func TestLoadRequiresDatabaseAndRedis(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", "postgres://localhost:5432/shipmart")
	t.Setenv("REDIS_URL", "")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadRejectsNonPositiveRates(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/shipmart")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("RATE_USD_TO_BDT", "-1")

	_, err := Load()
	require.Error(t, err)
}

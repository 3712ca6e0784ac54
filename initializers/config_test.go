package initializers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"":      time.Minute,
		"90s":   90 * time.Second,
		"0s":    time.Minute,
		"-5m":   time.Minute,
		"soon":  time.Minute,
		"250ms": 250 * time.Millisecond,
	}
	for value, want := range cases {
		t.Run(value, func(t *testing.T) {
			t.Setenv("SWEEP_INTERVAL", value)
			assert.Equal(t, want, getDuration("SWEEP_INTERVAL", time.Minute))
		})
	}
}

func TestLoadConfig_SweepIntervalNeverZero(t *testing.T) {
	t.Setenv("SWEEP_INTERVAL", "0s")
	t.Setenv("INTENT_TTL", "-1h")

	cfg := LoadConfig()
	assert.Equal(t, time.Minute, cfg.SweepInterval)
	assert.Equal(t, 30*time.Minute, cfg.IntentTTL)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ppe-gate/internal/domain/entity"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("REQUIRED_PPE", "")
	t.Setenv("GATE_COOLDOWN", "")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, entity.NumClasses, cfg.RequiredPPE.Count())
	require.Equal(t, 5*time.Second, cfg.GateCooldown)
	require.Equal(t, 30*time.Second, cfg.GateIdleReset)
	require.InDelta(t, 0.9, cfg.DetectConfidence, 1e-12)
	require.InDelta(t, 0.3, cfg.DetectNMS, 1e-12)
	require.Equal(t, 416, cfg.DetectInput)
	require.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("REQUIRED_PPE", "helmets, vest,boots")
	t.Setenv("GATE_COOLDOWN", "7s")
	t.Setenv("GATE_IDLE_RESET", "1m")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOGDY_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, []entity.PPEClass{entity.Helmet, entity.Vest, entity.Boot}, cfg.RequiredPPE.Classes())
	require.Equal(t, 7*time.Second, cfg.Gate().Cooldown)
	require.Equal(t, time.Minute, cfg.Gate().IdleReset)
	require.Equal(t, 9090, cfg.HTTPPort)
	require.True(t, cfg.LogdyEnabled)
}

func TestLoad_UnknownClass(t *testing.T) {
	t.Setenv("REQUIRED_PPE", "helmet,cape")

	_, err := Load()
	require.ErrorIs(t, err, entity.ErrUnknownClass)
}

func TestValidate(t *testing.T) {
	t.Setenv("REQUIRED_PPE", "")

	cfg, err := Load()
	require.NoError(t, err)

	cfg.RequiredPPE = entity.RequiredSet{}
	require.ErrorIs(t, cfg.Validate(), entity.ErrEmptyRequiredSet)

	cfg.RequiredPPE = entity.AllRequired()
	cfg.DetectConfidence = 1.5
	cfg.DetectInput = 400
	err = cfg.Validate()
	require.ErrorContains(t, err, "DETECT_CONFIDENCE")
	require.ErrorContains(t, err, "DETECT_INPUT")
}

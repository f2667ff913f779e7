package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("PHOTOHIRE_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("PHOTOHIRE_JWT_SECRET", "   ")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("GIN_MODE", "release")
	t.Setenv("PHOTOHIRE_JWT_SECRET", "s3cret")
	t.Setenv("PHOTOHIRE_ALLOWED_ORIGINS", "https://photohire.app, ,https://admin.photohire.app")

	c, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "s3cret", c.JWTSecret)
	assert.Equal(t, "disk", c.StorageDriver)
	assert.Equal(t, time.Second, c.SendRateWindow)
	assert.Equal(t, []string{"https://photohire.app", "https://admin.photohire.app"}, c.Origins())
}

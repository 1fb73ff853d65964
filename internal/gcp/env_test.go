package gcp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV_TEST_SET", "value")
	assert.Equal(t, "value", GetEnv("ENV_TEST_SET", "fallback"))
	assert.Equal(t, "fallback", GetEnv("ENV_TEST_UNSET", "fallback"))
}

func TestRequireEnv(t *testing.T) {
	t.Setenv("REQUIRED_TEST", "")
	_, err := RequireEnv("REQUIRED_TEST")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUIRED_TEST environment variable must be set")

	t.Setenv("REQUIRED_TEST", "docs")
	v, err := RequireEnv("REQUIRED_TEST")
	require.NoError(t, err)
	assert.Equal(t, "docs", v)
}

func TestDurationEnv(t *testing.T) {
	d, err := DurationEnv("POLL_DELAY_TEST_UNSET", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, d)

	t.Setenv("POLL_DELAY_TEST", "250ms")
	d, err = DurationEnv("POLL_DELAY_TEST", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, d)

	t.Setenv("POLL_DELAY_TEST", "soon")
	_, err = DurationEnv("POLL_DELAY_TEST", 10*time.Second)
	assert.Error(t, err)

	t.Setenv("POLL_DELAY_TEST", "-1s")
	_, err = DurationEnv("POLL_DELAY_TEST", 10*time.Second)
	assert.Error(t, err)
}

func TestIntEnv(t *testing.T) {
	n, err := IntEnv("MAX_POLLS_TEST_UNSET", 180)
	require.NoError(t, err)
	assert.Equal(t, 180, n)

	t.Setenv("MAX_POLLS_TEST", "0")
	n, err = IntEnv("MAX_POLLS_TEST", 180)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	for _, bad := range []string{"many", "-3"} {
		t.Setenv("MAX_POLLS_TEST", bad)
		_, err = IntEnv("MAX_POLLS_TEST", 180)
		assert.Error(t, err, bad)
	}
}

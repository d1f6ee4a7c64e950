package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGetEnv(t *testing.T) {
	t.Setenv("TEST_INT", "42")
	t.Setenv("TEST_BOOL", "true")
	t.Setenv("TEST_DURATION", "90s")
	t.Setenv("TEST_EMPTY", "")

	assert.Equal(t, 42, GetEnv("TEST_INT", 1))
	assert.True(t, GetEnv("TEST_BOOL", false))
	assert.Equal(t, 90*time.Second, GetEnv("TEST_DURATION", time.Duration(0)))
	assert.Equal(t, "default", GetEnv("TEST_EMPTY", "default"))
	assert.Equal(t, 500, GetEnv("TEST_UNSET_VARIABLE", 500))
}

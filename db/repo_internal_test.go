package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLockTimeoutSQL(t *testing.T) {
	assert.Equal(t, "SET LOCAL lock_timeout = 5000", lockTimeoutSQL("postgres", 5*time.Second))
	assert.Equal(t, "SET LOCAL lock_timeout = 1", lockTimeoutSQL("postgres", time.Microsecond))
	assert.Empty(t, lockTimeoutSQL("postgres", 0))
	assert.Empty(t, lockTimeoutSQL("sqlite", 5*time.Second))
}

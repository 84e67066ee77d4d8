package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfig_CacheTTL(t *testing.T) {
	assert.Equal(t, 5*time.Minute, Config{CacheTTLSeconds: 300}.CacheTTL())
	assert.Equal(t, time.Duration(0), Config{CacheTTLSeconds: 0}.CacheTTL())
	assert.Equal(t, time.Duration(0), Config{CacheTTLSeconds: -1}.CacheTTL())
}

package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := defaultConfig()

	assert.Equal(t, 30, config.Quiz.AnswerWindowSec)
	assert.Equal(t, time.Second, config.debounceWindow(), "debounce is a 1-second rolling window")
	assert.Equal(t, 2*time.Second, config.cacheTTL())
}

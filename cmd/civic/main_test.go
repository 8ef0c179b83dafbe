package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigPath(t *testing.T) {
	assert.Equal(t, "", configPath(nil))
	assert.Equal(t, "a.yaml", configPath([]string{"--config", "a.yaml", "generate"}))
	assert.Equal(t, "b.yaml", configPath([]string{"generate", "--topic", "parks", "--config=b.yaml", "--json"}))
	assert.Equal(t, "", configPath([]string{"--help"}))
}

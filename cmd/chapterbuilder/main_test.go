package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunMissingConfig(t *testing.T) {
	code := run([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "list"})
	assert.Equal(t, 7, code)
}

func TestRunUnknownFlag(t *testing.T) {
	assert.Equal(t, 2, run([]string{"list", "--bogus"}))
}

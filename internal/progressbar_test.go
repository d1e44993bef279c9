package internal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEntryBar(t *testing.T) {
	var buf bytes.Buffer
	bar := newEntryBar(&buf, 1024, "lua/init.lua")

	n, err := bar.Write(make([]byte, 1024))
	assert.NoError(t, err)
	assert.Equal(t, 1024, n)
	assert.True(t, bar.IsFinished())
	assert.NoError(t, bar.Close())

	assert.Contains(t, buf.String(), "writing lua/init.lua")
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", "json")
	log.Info("dropped")
	log.Warn("kept", "application_id", "a-1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "kept", line["msg"])
	assert.Equal(t, "homestay", line["service"])
	assert.Equal(t, "a-1", line["application_id"])
}

func TestParseLevelFallsBackToInfo(t *testing.T) {
	assert.Equal(t, "INFO", parseLevel("verbose").String())
	assert.Equal(t, "DEBUG", parseLevel("debug").String())
}

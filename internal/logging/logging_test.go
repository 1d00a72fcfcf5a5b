package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_JSONWithService(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "api", "info")
	log.WithField("k", "v").Info("probe")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "api", line["service"])
	assert.Equal(t, "v", line["k"])
	assert.Equal(t, "probe", line["msg"])
}

func TestNewLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := newLogger(&buf, "api", "warn")
	log.Info("hidden")
	assert.Empty(t, buf.String())

	buf.Reset()
	log = newLogger(&buf, "api", "nonsense")
	log.Info("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestRedactToken(t *testing.T) {
	assert.Equal(t, "[empty]", RedactToken(""))
	assert.Equal(t, "a...", RedactToken("abc"))
	assert.Equal(t, "0123abcd...", RedactToken("0123abcdef9876"))
}

func TestRedactCode(t *testing.T) {
	assert.Equal(t, "**", RedactCode("A"))
	assert.Equal(t, "******34", RedactCode("TEST1234"))
	assert.Equal(t, "*EF", RedactCode("DEF"))
}

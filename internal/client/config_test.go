package client

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "http://127.0.0.1:8080", c.ServerURL)
	assert.Equal(t, DefaultPollInterval, c.PollInterval)
	assert.True(t, c.Obfuscate)
	assert.NotEmpty(t, c.StateDir)
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-server", "https://tv.example.com", "-state", "/tmp/sg", "-interval", "10", "-obfuscate=false"},
			expected: &Config{
				ServerURL:    "https://tv.example.com",
				StateDir:     "/tmp/sg",
				PollInterval: 10 * time.Second,
				Obfuscate:    false,
			},
		},
		{name: "bad interval", args: []string{"-interval", "abc"}, wantErr: true},
		{name: "zero interval", args: []string{"-interval", "0"}, wantErr: true},
		{name: "unknown flag", args: []string{"-x"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}

func TestLoadConfig_NoArgs(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Empty(t, cmp.Diff(&want, cfg))
}

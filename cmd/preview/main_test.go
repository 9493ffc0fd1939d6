package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const domainForecast = `{
  "provider": "met.no",
  "hours": [
    {"time": "2024-05-01T11:00:00Z", "temperature_f": 52, "wind_mph": 4, "condition": "Clear"},
    {"time": "2024-05-01T12:00:00Z", "temperature_f": 56, "wind_mph": 6, "condition": "Partly Cloudy"}
  ]
}`

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRun_DomainForecast(t *testing.T) {
	path := writeFile(t, "forecast.json", domainForecast)
	var out bytes.Buffer

	err := run([]string{
		"-forecast", path,
		"-title", "Morning Run | ☁️ 40°",
		"-description", "Loop twice.",
		"-start", "2024-05-01T06:00:00-05:00",
		"-duration", "2h",
		"-lat", "30.2669", "-lon", "-97.7729",
		"-tz", "America/Chicago",
	}, &out)
	require.NoError(t, err)

	lines := strings.SplitN(out.String(), "\n", 3)
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "Morning Run | "), lines[0])
	assert.NotContains(t, lines[0], "40°", "old suffix is replaced")
	assert.Contains(t, lines[0], "52–56°")
	assert.True(t, strings.HasPrefix(lines[2], "Loop twice.\n----- weather -----"))
	assert.Contains(t, lines[2], "Source: met.no")
}

func TestRun_GoNoGo(t *testing.T) {
	path := writeFile(t, "forecast.json", domainForecast)
	var out bytes.Buffer

	err := run([]string{
		"-forecast", path,
		"-title", "Star Party",
		"-start", "2024-05-01T11:00:00Z",
		"-go-no-go", "(?i)star party",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Go/No-Go:")
}

func TestRun_GoNoGoActivity(t *testing.T) {
	path := writeFile(t, "forecast.json", domainForecast)
	var out bytes.Buffer

	err := run([]string{
		"-forecast", path,
		"-title", "Tempo Run",
		"-start", "2024-05-01T11:00:00Z",
		"-go-no-go", "(?i)run",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Go/No-Go (running):")
}

func TestRun_Errors(t *testing.T) {
	good := writeFile(t, "forecast.json", domainForecast)
	unknownField := writeFile(t, "bad.json", `{"provider":"x","hourz":[]}`)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"missing flags", []string{"-title", "x"}, "required"},
		{"bad start", []string{"-forecast", good, "-start", "tomorrow"}, "invalid -start"},
		{"bad zone", []string{"-forecast", good, "-start", "2024-05-01T11:00:00Z", "-tz", "Mars/Olympus"}, "invalid -tz"},
		{"bad format", []string{"-forecast", good, "-start", "2024-05-01T11:00:00Z", "-format", "csv"}, "unknown -format"},
		{"unknown field", []string{"-forecast", unknownField, "-start", "2024-05-01T11:00:00Z"}, "decode forecast"},
		{"no hours in window", []string{"-forecast", good, "-start", "2024-06-01T11:00:00Z"}, "no matching forecast hour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := run(tt.args, &out)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

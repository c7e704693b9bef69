package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_ProductionUsesJSON(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "registry", "production")
	assert.Equal(t, logrus.InfoLevel, l.GetLevel())

	buf.Reset()
	LogError(l, "search failed", errors.New("boom"), logrus.Fields{"request_id": "r-1"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "search failed", line["msg"])
	assert.Equal(t, "boom", line["error"])
	assert.Equal(t, "r-1", line["request_id"])
	assert.Equal(t, "error", line["level"])
}

func TestNewLogger_DevelopmentIsVerboseText(t *testing.T) {
	var buf bytes.Buffer
	l := newLogger(&buf, "registry", "development")
	assert.Equal(t, logrus.DebugLevel, l.GetLevel())

	buf.Reset()
	LogWarn(l, "cache unavailable", nil, nil)
	out := buf.String()
	assert.True(t, strings.Contains(out, "level=warning"), out)
	assert.NotContains(t, out, "error=")
}

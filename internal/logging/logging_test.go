package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWriter(&buf, "info", "json")
	require.NoError(t, err)

	l.Debug("hidden")
	l.Info("remote call", zap.String("op", "rename"), zap.Int("status", 201))
	require.NoError(t, l.Sync())

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "remote call", line["msg"])
	assert.Equal(t, "rename", line["op"])
	assert.Equal(t, float64(201), line["status"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWriter(&buf, "WARN", "")
	require.NoError(t, err)

	l.Info("quiet")
	l.Warn("loud")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "loud")
	assert.NotContains(t, buf.String(), "quiet")
}

func TestNewWriter_Errors(t *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, "chatty", "json")
	assert.Error(t, err)

	_, err = NewWriter(&bytes.Buffer{}, "info", "xml")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}

package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitWithOutputJSON(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(&buf, "debug", "")
	t.Cleanup(func() { InitWithOutput(&bytes.Buffer{}, "info", "") })

	WithFields(logrus.Fields{"model": "pce", "risk": 0.09}).Debug("scored")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "scored", entry["msg"])
	assert.Equal(t, "pce", entry["model"])
	assert.Equal(t, "debug", entry["level"])
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	InitWithOutput(&buf, "chatty", "text")
	t.Cleanup(func() { InitWithOutput(&bytes.Buffer{}, "info", "") })

	assert.Equal(t, logrus.InfoLevel, Log.GetLevel())
	WithField("model", "ukpds").Debug("hidden")
	assert.Empty(t, buf.String())
	WithField("model", "ukpds").Info("shown")
	assert.Contains(t, buf.String(), "model=ukpds")
}

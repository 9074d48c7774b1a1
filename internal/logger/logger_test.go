package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("debug", "json", &buf)
	require.NoError(t, err)
	require.Equal(t, logrus.DebugLevel, log.GetLevel())

	log.WithField("keyword", "해운").Debug("query done")

	var m map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &m))
	require.Equal(t, "query done", m["message"])
	require.Equal(t, "debug", m["level"])
	require.Equal(t, "해운", m["keyword"])
	require.Contains(t, m, "timestamp")
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log, err := New("info", "text", &buf)
	require.NoError(t, err)

	log.Debug("hidden")
	log.WithField("items", 3).Info("aggregation complete")

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.True(t, strings.Contains(out, `msg="aggregation complete"`), out)
	require.Contains(t, out, "items=3")
}

func TestNew_Invalid(t *testing.T) {
	_, err := New("loud", "text", &bytes.Buffer{})
	require.ErrorContains(t, err, "log level")

	_, err = New("info", "xml", &bytes.Buffer{})
	require.ErrorContains(t, err, "log format")
}

func TestDiscard(t *testing.T) {
	log := Discard()
	log.Error("nothing")
}

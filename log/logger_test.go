package log

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]Level{
		"debug":   Debug,
		"INFO":    Info,
		"":        Notice,
		"warn":    Warning,
		"error":   Error,
		" notice": Notice,
	}
	for in, want := range cases {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestSinkAndLevel(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)

	logger := New("test")
	SetLevel(Warning)
	logger.Info("hidden")
	logger.Warning("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "[test]")
}

func TestPackageLevelOverride(t *testing.T) {
	var buf bytes.Buffer
	SetSink(&buf)
	defer SetSink(os.Stdout)
	defer ResetPackageLevels()
	defer SetLevel(Notice)

	SetLevel(Warning)
	SetPackageLevel("watch", Debug)
	New("watch").Debug("rename seen")
	New("opengl").Info("program linked")

	out := buf.String()
	assert.Contains(t, out, "rename seen")
	assert.NotContains(t, out, "program linked")

	buf.Reset()
	SetSink(&buf)
	New("watch").Debug("still debug")
	assert.Contains(t, buf.String(), "still debug")

	ResetPackageLevels()
	buf.Reset()
	New("watch").Debug("now hidden")
	assert.NotContains(t, buf.String(), "now hidden")
}

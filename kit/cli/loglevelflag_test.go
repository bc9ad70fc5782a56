package cli

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevelVar(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

	var level zapcore.Level
	LevelVar(fs, &level, "log-level", zapcore.InfoLevel, "verbosity")
	assert.Equal(t, zapcore.InfoLevel, level)

	require.NoError(t, fs.Parse([]string{"--log-level=warn"}))
	assert.Equal(t, zapcore.WarnLevel, level)

	require.Error(t, fs.Set("log-level", "shout"))
}

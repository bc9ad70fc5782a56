package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/influxdata/chkconfig"
)

// runCmd executes the command as a user would, resetting the package-level
// flag destinations first so subtests do not leak state into one another.
func runCmd(t *testing.T, args ...string) error {
	t.Helper()

	flags = chkconfigFlags{}
	t.Cleanup(func() { flags = chkconfigFlags{} })

	cmd, err := newCommand()
	require.NoError(t, err)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func writeFlag(t *testing.T, dir, flag, content string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, flag), []byte(content), 0666))
}

func TestCheckUsage(t *testing.T) {
	stateDir := t.TempDir()
	writeFlag(t, stateDir, "ntpd", "on\n")
	writeFlag(t, stateDir, "dhcp", "off\n")

	t.Run("flag on exits zero", func(t *testing.T) {
		err := runCmd(t, "--state-directory", stateDir, "-q", "ntpd")
		require.NoError(t, err)
	})

	t.Run("flag off exits nonzero", func(t *testing.T) {
		err := runCmd(t, "--state-directory", stateDir, "-q", "dhcp")
		require.ErrorIs(t, err, errFlagOff)
	})

	t.Run("missing flag without fallback is off", func(t *testing.T) {
		err := runCmd(t, "--state-directory", stateDir, "-q", "sshd")
		require.ErrorIs(t, err, errFlagOff)
	})

	t.Run("missing flag with fallback is an error", func(t *testing.T) {
		err := runCmd(t,
			"--state-directory", stateDir,
			"--default-directory", t.TempDir(),
			"-d", "-q", "sshd")
		require.Error(t, err)
		require.NotErrorIs(t, err, errFlagOff)
	})

	t.Run("default directory fallback", func(t *testing.T) {
		defaultDir := t.TempDir()
		writeFlag(t, defaultDir, "sshd", "on\n")

		err := runCmd(t,
			"--state-directory", stateDir,
			"--default-directory", defaultDir,
			"-d", "-q", "sshd")
		require.NoError(t, err)
	})
}

func TestSetUsage(t *testing.T) {
	t.Run("set existing flag", func(t *testing.T) {
		stateDir := t.TempDir()
		writeFlag(t, stateDir, "ntpd", "off\n")

		require.NoError(t, runCmd(t, "--state-directory", stateDir, "-q", "ntpd", "on"))

		content, err := os.ReadFile(filepath.Join(stateDir, "ntpd"))
		require.NoError(t, err)
		assert.Equal(t, "on\n", string(content))
	})

	t.Run("missing flag requires force", func(t *testing.T) {
		stateDir := t.TempDir()

		require.Error(t, runCmd(t, "--state-directory", stateDir, "-q", "ntpd", "on"))

		require.NoError(t, runCmd(t, "--state-directory", stateDir, "-q", "-f", "ntpd", "on"))
		content, err := os.ReadFile(filepath.Join(stateDir, "ntpd"))
		require.NoError(t, err)
		assert.Equal(t, "on\n", string(content))
	})

	t.Run("unrecognized state value", func(t *testing.T) {
		err := runCmd(t, "--state-directory", t.TempDir(), "-q", "-f", "ntpd", "bogus")
		require.Error(t, err)
	})

	t.Run("state keyword is case-insensitive", func(t *testing.T) {
		stateDir := t.TempDir()
		require.NoError(t, runCmd(t, "--state-directory", stateDir, "-q", "-f", "ntpd", "OFF"))

		content, err := os.ReadFile(filepath.Join(stateDir, "ntpd"))
		require.NoError(t, err)
		assert.Equal(t, "off\n", string(content))
	})
}

func TestUsageExclusions(t *testing.T) {
	stateDir := t.TempDir()
	writeFlag(t, stateDir, "ntpd", "on\n")

	t.Run("force excludes list", func(t *testing.T) {
		err := runCmd(t, "--state-directory", stateDir, "-q", "-f")
		require.ErrorIs(t, err, errUsage)
	})

	t.Run("force excludes check", func(t *testing.T) {
		err := runCmd(t, "--state-directory", stateDir, "-q", "-f", "ntpd")
		require.ErrorIs(t, err, errUsage)
	})

	t.Run("state sort excludes check", func(t *testing.T) {
		err := runCmd(t, "--state-directory", stateDir, "-q", "-s", "ntpd")
		require.ErrorIs(t, err, errUsage)
	})

	t.Run("too many arguments", func(t *testing.T) {
		err := runCmd(t, "--state-directory", stateDir, "-q", "ntpd", "on", "extra")
		require.Error(t, err)
	})
}

func TestUsageDiagnostics(t *testing.T) {
	execute := func(t *testing.T, args ...string) (*bytes.Buffer, error) {
		t.Helper()

		flags = chkconfigFlags{}
		t.Cleanup(func() { flags = chkconfigFlags{} })

		cmd, err := newCommand()
		require.NoError(t, err)
		cmd.SetArgs(args)

		var buf bytes.Buffer
		return &buf, executeCmd(cmd, &buf)
	}

	t.Run("too many arguments prints a diagnostic", func(t *testing.T) {
		buf, err := execute(t, "ntpd", "on", "extra")
		require.Error(t, err)
		assert.Contains(t, buf.String(), "Error:")
		assert.Contains(t, buf.String(), "usage")
	})

	t.Run("unknown flag prints a diagnostic", func(t *testing.T) {
		buf, err := execute(t, "--bogus")
		require.Error(t, err)
		assert.Contains(t, buf.String(), "unknown flag")
	})

	t.Run("quiet suppresses the diagnostic", func(t *testing.T) {
		buf, err := execute(t, "-q", "ntpd", "on", "extra")
		require.Error(t, err)
		assert.Zero(t, buf.Len())
	})

	t.Run("flag off exits silently", func(t *testing.T) {
		stateDir := t.TempDir()
		writeFlag(t, stateDir, "dhcp", "off\n")

		buf, err := execute(t, "--state-directory", stateDir, "dhcp")
		require.ErrorIs(t, err, errFlagOff)
		assert.Zero(t, buf.Len())
	})

	// Store failures were already logged inside run; executeCmd must not
	// print them a second time.
	t.Run("store failures are not printed twice", func(t *testing.T) {
		buf, err := execute(t,
			"--state-directory", t.TempDir(),
			"--default-directory", t.TempDir(),
			"-d", "ntpd")
		require.Error(t, err)
		assert.Zero(t, buf.Len())
	})
}

func TestEnvironmentBinding(t *testing.T) {
	stateDir := t.TempDir()
	writeFlag(t, stateDir, "ntpd", "on\n")

	t.Setenv("CHKCONFIG_STATE_DIRECTORY", stateDir)

	require.NoError(t, runCmd(t, "-q", "ntpd"))
}

func TestVersionFlag(t *testing.T) {
	require.NoError(t, runCmd(t, "-V"))
}

func TestListAll(t *testing.T) {
	stateDir, defaultDir := t.TempDir(), t.TempDir()
	writeFlag(t, stateDir, "dhcp", "off\n")
	writeFlag(t, defaultDir, "dhcp", "on\n")
	writeFlag(t, defaultDir, "ntpd", "on\n")

	newTestStore := func(t *testing.T) *chkconfig.Store {
		t.Helper()
		store, err := chkconfig.NewStore(
			chkconfig.WithStateDirectory(stateDir),
			chkconfig.WithDefaultDirectory(defaultDir),
			chkconfig.WithUseDefaultDirectory(true),
		)
		require.NoError(t, err)
		return store
	}

	t.Run("sorted by flag", func(t *testing.T) {
		flags = chkconfigFlags{}
		t.Cleanup(func() { flags = chkconfigFlags{} })

		var buf bytes.Buffer
		require.NoError(t, listAll(newTestStore(t), zap.NewNop(), &buf))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], "Flag")
		assert.Contains(t, lines[0], "State")
		assert.Contains(t, lines[2], "dhcp")
		assert.Contains(t, lines[2], "off")
		assert.Contains(t, lines[3], "ntpd")
		assert.Contains(t, lines[3], "on")
	})

	t.Run("sorted by state", func(t *testing.T) {
		flags = chkconfigFlags{sortByState: true}
		t.Cleanup(func() { flags = chkconfigFlags{} })

		var buf bytes.Buffer
		require.NoError(t, listAll(newTestStore(t), zap.NewNop(), &buf))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[2], "ntpd")
		assert.Contains(t, lines[3], "dhcp")
	})

	t.Run("with origins", func(t *testing.T) {
		flags = chkconfigFlags{showOrigin: true}
		t.Cleanup(func() { flags = chkconfigFlags{} })

		var buf bytes.Buffer
		require.NoError(t, listAll(newTestStore(t), zap.NewNop(), &buf))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		require.Len(t, lines, 4)
		assert.Contains(t, lines[0], "Origin")
		assert.Contains(t, lines[2], "state")   // dhcp overrides the default
		assert.Contains(t, lines[3], "default") // ntpd only has a default
	})
}

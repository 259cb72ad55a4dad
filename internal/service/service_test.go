package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlist(t *testing.T) {
	p := pathsFor("/Users/sam")
	out, err := renderPlist(p, "/usr/local/bin/mentor", "/Users/sam/.mentor")
	require.NoError(t, err)

	assert.Equal(t, "/Users/sam/Library/LaunchAgents/com.mentor.agent.plist", p.Plist)
	assert.Contains(t, out, "<string>com.mentor.agent</string>")
	assert.Contains(t, out, "<string>/usr/local/bin/mentor</string>\n\t\t<string>run</string>")
	assert.Contains(t, out, "<string>/Users/sam/.mentor</string>")
	assert.Contains(t, out, "<string>/Users/sam/Library/Logs/mentor-stderr.log</string>")
}

func TestSeedConfig(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	cfg := filepath.Join(dir, "home", ".mentor", "config")

	seeded, err := seedConfig(env, cfg)
	require.NoError(t, err)
	assert.False(t, seeded, "no .env to seed from")

	require.NoError(t, os.WriteFile(env, []byte("DATABASE_PATH=/var/mentor.db\n"), 0o600))
	seeded, err = seedConfig(env, cfg)
	require.NoError(t, err)
	assert.True(t, seeded)

	info, err := os.Stat(cfg)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	seeded, err = seedConfig(env, cfg)
	require.NoError(t, err)
	assert.False(t, seeded, "existing config is left alone")
}

func TestResolveWorkDir(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "config")

	require.NoError(t, os.WriteFile(cfg, []byte("DATABASE_PATH=/var/mentor.db\n"), 0o600))
	assert.Equal(t, dir, resolveWorkDir(cfg))

	require.NoError(t, os.WriteFile(cfg, []byte("DATABASE_PATH=./mentor.db\n"), 0o600))
	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, wd, resolveWorkDir(cfg))
}

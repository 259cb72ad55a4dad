package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/chris/mentor/config"
	"github.com/chris/mentor/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabasePath:      filepath.Join(t.TempDir(), "mentor.db"),
		CacheBackend:      "memory",
		CacheSize:         16,
		CacheTTL:          time.Second,
		MaxContextChars:   6000,
		ChatHistoryTurns:  10,
		ProfileWindowDays: 30,
		ModelTimeout:      time.Second,
		LogMode:           "prod",
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root, closeApp := newRootCmd(cfg)
	defer closeApp()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--user", "cli"}, args...))
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestLogThenAnalytics(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, cfg, "log", "habit", `{"sleep_hours": 6.5, "exercise_minutes": 20}`)
	require.NoError(t, err)
	assert.Contains(t, out, "habit log saved")

	out, _, err = run(t, cfg, "analytics", "week")
	require.NoError(t, err)
	assert.Equal(t, "week", gjson.Get(out, "period").String())
	assert.Equal(t, "cli", gjson.Get(out, "user_id").String())
	assert.Equal(t, 6.5, gjson.Get(out, "summary.sleep_hours.mean").Float())
	assert.EqualValues(t, 1, gjson.Get(out, "days_tracked").Int())
}

func TestLog_RejectsUnknownFields(t *testing.T) {
	_, _, err := run(t, testConfig(t), "log", "habit", `{"sleep": 7}`)
	assert.ErrorIs(t, err, model.ErrInvalidRecord)
}

func TestLog_BadDate(t *testing.T) {
	_, _, err := run(t, testConfig(t), "log", "habit", "--date", "tomorrow", `{"sleep_hours": 7}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2026-03-14")
}

func TestGoal_AddProgressList(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, cfg, "goal", "add", `{"title": "Read 12 books", "target_value": 12, "unit": "books"}`)
	require.NoError(t, err)
	assert.Equal(t, "goal 1 added\n", out)

	_, _, err = run(t, cfg, "goal", "progress", "1", "12", "--done")
	require.NoError(t, err)

	_, _, err = run(t, cfg, "goal", "progress", "7", "1")
	assert.ErrorIs(t, err, model.ErrNotFound)

	out, _, err = run(t, cfg, "goal", "list")
	require.NoError(t, err)
	goals := gjson.Parse(out).Array()
	require.Len(t, goals, 1)
	assert.True(t, goals[0].Get("completed").Bool())
	assert.Equal(t, 12.0, goals[0].Get("current_progress").Float())
	assert.True(t, goals[0].Get("completed_at").Exists())
}

func TestChat_OfflineWithoutCredentials(t *testing.T) {
	cfg := testConfig(t)

	out, errOut, err := run(t, cfg, "chat", "how", "am", "I", "doing?")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))
	assert.Contains(t, errOut, "(offline reply:")

	out, _, err = run(t, cfg, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "user: how am I doing?")
	assert.Contains(t, out, "assistant: ")
}

func TestCheckIn_DryRunDoesNotRecord(t *testing.T) {
	cfg := testConfig(t)

	out, _, err := run(t, cfg, "checkin", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "This is your first check-in.")

	out, _, err = run(t, cfg, "checkin")
	require.NoError(t, err)
	assert.Contains(t, out, "This is your first check-in.")

	out, _, err = run(t, cfg, "checkin", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Last check-in was")
}

func TestAnalytics_InvalidPeriod(t *testing.T) {
	_, _, err := run(t, testConfig(t), "analytics", "decade")
	assert.ErrorIs(t, err, model.ErrInvalidPeriod)
}

package config

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CANVAS_BASE_URL", "https://canvas.example.edu")
	t.Setenv("CANVAS_TOKEN", "secret-token")
	t.Setenv("CANVAS_COURSE_ID", "7")
	t.Setenv("CANVAS_ASSIGNMENT_ID", "9")
}

func TestLoadFromEnvironment(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CANVAS_ANONYMISE", "true")

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "https://canvas.example.edu", cfg.BaseURL)
	require.Equal(t, int64(7), cfg.CourseID)
	require.Equal(t, int64(9), cfg.AssignmentID)
	require.True(t, cfg.Anonymize)
	require.False(t, cfg.Annotate)
	require.Equal(t, 30*time.Second, cfg.HTTPTimeout)
}

func TestLoadTrimsTrailingSlash(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CANVAS_BASE_URL", "https://canvas.example.edu/")

	cfg, err := Load(nil)
	require.NoError(t, err)
	require.Equal(t, "https://canvas.example.edu", cfg.BaseURL)
}

func TestLoadMissingToken(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CANVAS_TOKEN", "")

	_, err := Load(nil)
	require.Error(t, err)
}

func TestLoadAnnotateRequiresCookie(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CANVAS_ANNOTATE", "true")

	_, err := Load(nil)
	require.Error(t, err)

	t.Setenv("CANVAS_SESSION_COOKIE", "session-cookie")
	cfg, err := Load(nil)
	require.NoError(t, err)
	require.True(t, cfg.Annotate)
}

func TestLoadFlagsOverrideEnvironment(t *testing.T) {
	setRequiredEnv(t)

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int64("course.id", 0, "")
	require.NoError(t, flags.Parse([]string{"--course.id=99"}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	require.Equal(t, int64(99), cfg.CourseID)
}

func TestLoadInvalidTimeout(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CANVAS_HTTP_TIMEOUT", "soon")

	_, err := Load(nil)
	require.Error(t, err)
}

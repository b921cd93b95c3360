package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestResolveLogFilePathUsesWorkdirLogsByDefault(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	got, err := resolveLogFilePath(Options{})
	if err != nil {
		t.Fatalf("resolve default log path failed: %v", err)
	}
	realTmpDir, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("resolve tmp dir symlink failed: %v", err)
	}
	realGot, err := filepath.EvalSymlinks(filepath.Dir(got))
	if err != nil {
		t.Fatalf("resolve got dir symlink failed: %v", err)
	}
	if want := filepath.Join(realTmpDir, defaultLogDirName); realGot != want {
		t.Fatalf("unexpected log dir: got=%s want=%s", realGot, want)
	}
	if filepath.Base(got) != defaultLogFilename {
		t.Fatalf("unexpected log filename: %s", filepath.Base(got))
	}
}

func TestReleaseModeWritesJSONFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Dir: tmpDir, Filename: "loyalty-release.log"})
	log.Info("loyalty_points_added")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "loyalty-release.log"))
	if err != nil {
		t.Fatalf("read release log failed: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "loyalty_points_added") || !strings.Contains(text, `"level":"info"`) || !strings.Contains(text, `"service":"piezasya-loyalty"`) {
		t.Fatalf("expected json log line, got=%s", text)
	}
}

func TestDebugModeSkipsFile(t *testing.T) {
	tmpDir := t.TempDir()
	log := New(" DEBUG ", Options{Dir: tmpDir, Filename: "debug.log"})
	log.Info("debug-log-test")
	_ = log.Sync()

	if _, err := os.Stat(filepath.Join(tmpDir, "debug.log")); !os.IsNotExist(err) {
		t.Fatalf("debug mode should not create log file")
	}
}

func TestLevelOverride(t *testing.T) {
	tmpDir := t.TempDir()
	log := New("release", Options{Level: "warn", Dir: tmpDir, Filename: "warn.log"})
	log.Info("dropped_info")
	log.Warn("kept_warn")
	_ = log.Sync()

	content, err := os.ReadFile(filepath.Join(tmpDir, "warn.log"))
	if err != nil {
		t.Fatalf("read log failed: %v", err)
	}
	if strings.Contains(string(content), "dropped_info") || !strings.Contains(string(content), "kept_warn") {
		t.Fatalf("level override not applied: %s", content)
	}

	if err := SetLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
	if err := SetLevel("info"); err != nil {
		t.Fatalf("set level failed: %v", err)
	}
}

func TestResolveLevel(t *testing.T) {
	if got := resolveLevel("", true); got.String() != "debug" {
		t.Fatalf("debug mode default want debug got %s", got)
	}
	if got := resolveLevel("bogus", false); got.String() != "info" {
		t.Fatalf("invalid level want info got %s", got)
	}
	if got := resolveLevel(" ERROR ", true); got.String() != "error" {
		t.Fatalf("explicit level want error got %s", got)
	}
}

func TestPositiveOr(t *testing.T) {
	cases := []struct {
		value, fallback, want int
	}{
		{0, 7, 7},
		{-3, 7, 7},
		{5, 7, 5},
	}
	for _, tc := range cases {
		if got := positiveOr(tc.value, tc.fallback); got != tc.want {
			t.Fatalf("positiveOr(%d,%d)=%d want %d", tc.value, tc.fallback, got, tc.want)
		}
	}
}

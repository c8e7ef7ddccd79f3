package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeZeroCooldownConfig removes the playback delay so tests run fast.
func writeZeroCooldownConfig(t *testing.T, work string) {
	t.Helper()
	dir := filepath.Join(work, ".replaykit")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	cfg := "replay:\n  cooldown: 0s\n"
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(cfg), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPlaybookCommand(t *testing.T) {
	work := t.TempDir()
	chdir(t, work)
	writeZeroCooldownConfig(t, work)

	libDir := filepath.Join(work, "sessions")
	storeTestSession(t, libDir, "gather_loop", 3)
	storeTestSession(t, libDir, "deposit", 2)

	pb := filepath.Join(work, "morning.md")
	content := "---\nlibrary: " + libDir + "\n---\n\n- gather_loop (repeats: 2)\n- deposit\n"
	if err := os.WriteFile(pb, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := runRoot(t, "playbook", pb, "--injector", "noop"); err != nil {
		t.Fatalf("playbook failed: %v", err)
	}

	out, err := runRoot(t, "sessions", "history", "--kind", "playbook")
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if !strings.Contains(out, "gather_loop") || !strings.Contains(out, "deposit") {
		t.Errorf("history should show both playbook steps:\n%s", out)
	}
}

func TestPlaybookAbortsOnMissingSession(t *testing.T) {
	work := t.TempDir()
	chdir(t, work)
	writeZeroCooldownConfig(t, work)

	libDir := filepath.Join(work, "sessions")
	storeTestSession(t, libDir, "real", 1)

	pb := filepath.Join(work, "broken.md")
	content := "---\nlibrary: " + libDir + "\n---\n\n- phantom\n- real\n"
	if err := os.WriteFile(pb, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := runRoot(t, "playbook", pb, "--injector", "noop")
	if err == nil {
		t.Fatal("expected an error for the missing session")
	}
	if !strings.Contains(err.Error(), "phantom") {
		t.Errorf("error should name the failing step: %v", err)
	}
}

func TestPlaybookMissingFile(t *testing.T) {
	work := t.TempDir()
	chdir(t, work)

	if _, err := runRoot(t, "playbook", "missing.md"); err == nil {
		t.Fatal("expected an error for a missing playbook")
	}
}

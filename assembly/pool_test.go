package assembly

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestRunGeneCommands(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "pool.log")

	if err := runGeneCommands([]string{"echo one", "echo two"}, 2, logPath); err != nil {
		t.Fatalf("runGeneCommands: %v", err)
	}

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "one") || !strings.Contains(string(content), "two") {
		t.Errorf("pool log %q missing command output", content)
	}
}

func TestRunGeneCommandsCountsFailures(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "pool.log")

	err := runGeneCommands([]string{"true", "false", "false"}, 1, logPath)
	if err == nil {
		t.Fatal("expected aggregate error for failing commands")
	}
	if !strings.Contains(err.Error(), "2 of 3") {
		t.Errorf("error = %v, want failure count 2 of 3", err)
	}
}

func TestRunGeneCommandsHonorsJobLimit(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "pool.log")
	lock := filepath.Join(dir, "lock")
	overlap := filepath.Join(dir, "overlap")
	ran := filepath.Join(dir, "ran")

	// Each command trips the overlap sentinel if another one is still
	// holding the lock. With jobs=1 the lock must never be seen.
	cmdStr := fmt.Sprintf("if [ -e %s ]; then echo x >> %s; fi; touch %s; sleep 0.1; rm %s; echo done >> %s",
		lock, overlap, lock, lock, ran)
	cmds := []string{cmdStr, cmdStr, cmdStr}

	if err := runGeneCommands(cmds, 1, logPath); err != nil {
		t.Fatalf("runGeneCommands: %v", err)
	}

	if _, err := os.Stat(overlap); err == nil {
		t.Error("commands overlapped despite jobs=1")
	}
	content, err := os.ReadFile(ran)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Count(string(content), "done"); got != 3 {
		t.Errorf("ran %d commands, want 3", got)
	}
}

func TestRunGeneCommandsEmpty(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "pool.log")

	if err := runGeneCommands(nil, 0, logPath); err != nil {
		t.Fatalf("runGeneCommands with no commands: %v", err)
	}
}

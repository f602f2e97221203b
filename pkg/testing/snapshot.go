package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/weave/pkg/engine"
	"github.com/google/go-cmp/cmp"
)

// updateEnv rewrites golden files instead of comparing against them.
const updateEnv = "WEAVE_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Snapshot is the layout outline of every tree at one point in time.
type Snapshot struct {
	Outline string
	Tree    engine.TreeSnapshot
}

// Snapshot captures the current trees.
func (t *Tester) Snapshot() *Snapshot {
	var sb strings.Builder
	if err := t.rt.DumpText(&sb); err != nil {
		panic(fmt.Sprintf("dump text: %v", err))
	}
	return &Snapshot{Outline: sb.String(), Tree: t.rt.Snapshot()}
}

func (s *Snapshot) String() string {
	return s.Outline
}

// Diff returns a line diff against another outline, empty when equal.
func (s *Snapshot) Diff(expected string) string {
	return cmp.Diff(splitLines(expected), splitLines(s.Outline))
}

// MatchesFile compares the outline with the golden file at path. With
// WEAVE_UPDATE_SNAPSHOTS=1 set, or when the file is missing, it writes the
// file instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if os.Getenv(updateEnv) == "1" || os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("create snapshot dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(s.Outline), 0o644); err != nil {
			t.Fatalf("write snapshot: %v", err)
		}
		return
	}
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
		return
	}
	if diff := s.Diff(string(data)); diff != "" {
		t.Errorf("snapshot %s mismatch (-want +got):\n%s\nrerun with %s=1 to update", path, diff, updateEnv)
	}
}

func splitLines(s string) []string {
	return strings.Split(strings.TrimRight(s, "\n"), "\n")
}

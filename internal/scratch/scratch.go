// Package scratch manages the per-run working directory that holds
// intermediate rasters and violation artifacts.
//
// An Arena is opened once per run and closed on every exit path. Close
// applies the cleanup policy: the default removes the arena only when the
// run succeeded, so artifacts referenced by failing QC statuses survive.
package scratch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Policy decides whether Close removes the arena.
type Policy string

const (
	PolicyOnSuccess Policy = "on-success"
	PolicyAlways    Policy = "always"
	PolicyNever     Policy = "never"
)

// ParsePolicy validates a policy name. The empty string selects
// PolicyOnSuccess.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(s); p {
	case "":
		return PolicyOnSuccess, nil
	case PolicyOnSuccess, PolicyAlways, PolicyNever:
		return p, nil
	}
	return "", fmt.Errorf("unknown cleanup policy %q (want on-success, always or never)", s)
}

// Arena is a scoped directory under a scratch root.
type Arena struct {
	root   string
	dir    string
	policy Policy
	closed bool
	kept   bool
}

// Open creates root/runID.
func Open(root, runID string, policy Policy) (*Arena, error) {
	if runID == "" {
		return nil, errors.New("scratch: empty run id")
	}
	if policy == "" {
		policy = PolicyOnSuccess
	}
	dir := filepath.Join(root, runID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("scratch: %w", err)
	}
	return &Arena{root: root, dir: dir, policy: policy}, nil
}

// Dir returns the arena directory.
func (a *Arena) Dir() string { return a.dir }

// Path returns the path for name inside the arena, creating parent
// directories.
func (a *Arena) Path(name string) (string, error) {
	p := filepath.Join(a.dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", fmt.Errorf("scratch: %w", err)
	}
	return p, nil
}

// Rel returns path relative to the scratch root, slash-separated. Paths
// outside the root are returned unchanged.
func (a *Arena) Rel(path string) string {
	rel, err := filepath.Rel(a.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return path
	}
	return filepath.ToSlash(rel)
}

// Close applies the cleanup policy. It is safe to call more than once;
// only the first call has an effect.
func (a *Arena) Close(success bool) error {
	if a.closed {
		return nil
	}
	a.closed = true
	remove := a.policy == PolicyAlways || (a.policy == PolicyOnSuccess && success)
	if !remove {
		a.kept = true
		return nil
	}
	if err := os.RemoveAll(a.dir); err != nil {
		a.kept = true
		return fmt.Errorf("scratch: %w", err)
	}
	return nil
}

// Kept reports whether the arena survived Close.
func (a *Arena) Kept() bool { return a.kept }

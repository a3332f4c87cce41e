/*
PURPOSE:
  Collects ambient machine and commit metadata stamped into saved runs.
  Providers are explicit strategy interfaces resolved once per session,
  so tests and embedders can substitute their own.

REQUIREMENTS:
  User-specified:
  - Saved runs must record enough environment to warn when a baseline
    was produced elsewhere.

  Implementation-discovered:
  - git may be absent or the working directory may not be a repository;
    commit info degrades to {"id": "unknown"} instead of failing the run.

ARCHITECTURE INTEGRATION:
  - Used by: internal/session (metadata), internal/compare (mismatch check)

ERROR HANDLING:
  - Never fatal; metadata collection cannot abort a measurement session.

USAGE:
  info := machine.Host{}.MachineInfo()
  commit := machine.Git{}.CommitInfo()

MAINTENANCE:
  - Keys are part of the persisted schema; renaming them breaks the
    machine-info mismatch check against old baselines.
*/

package machine

import (
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// InfoProvider describes the current machine.
type InfoProvider interface {
	MachineInfo() map[string]string
}

// CommitProvider describes the code under test.
type CommitProvider interface {
	CommitInfo() map[string]string
}

// Host is the default machine-info provider.
type Host struct{}

func (Host) MachineInfo() map[string]string {
	node, err := os.Hostname()
	if err != nil {
		node = "unknown"
	}
	return map[string]string{
		"node":      node,
		"goos":      runtime.GOOS,
		"goarch":    runtime.GOARCH,
		"numcpu":    strconv.Itoa(runtime.NumCPU()),
		"goversion": runtime.Version(),
	}
}

// Git reads commit info from the repository containing Dir ("." when empty).
type Git struct {
	Dir string
}

func (g Git) CommitInfo() map[string]string {
	dir := g.Dir
	if dir == "" {
		dir = "."
	}
	id, err := gitOutput(dir, "rev-parse", "HEAD")
	if err != nil {
		return map[string]string{"id": "unknown"}
	}
	info := map[string]string{"id": id}
	if branch, err := gitOutput(dir, "rev-parse", "--abbrev-ref", "HEAD"); err == nil {
		info["branch"] = branch
	}
	if status, err := gitOutput(dir, "status", "--porcelain"); err == nil {
		info["dirty"] = strconv.FormatBool(status != "")
	}
	if when, err := gitOutput(dir, "show", "-s", "--format=%cI", "HEAD"); err == nil {
		info["time"] = when
	}
	return info
}

func gitOutput(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

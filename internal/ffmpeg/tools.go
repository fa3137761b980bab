package ffmpeg

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ZacxDev/ultrawide-splitter/internal/runner"
	"github.com/pkg/errors"
)

// ResolveBinary picks the executable to run for name. Explicit paths are
// returned unchanged. Bare names prefer a copy bundled next to the running
// executable (same dir, bin/, lib/, or a macOS app bundle's Resources/)
// and otherwise fall back to PATH lookup at run time.
func ResolveBinary(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsRune(name, os.PathSeparator) || strings.Contains(name, "/") {
		return name
	}
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	if bundled, ok := bundledCandidate(filepath.Dir(exe), name); ok {
		return bundled
	}
	return name
}

func bundledCandidate(exeDir, name string) (string, bool) {
	if runtime.GOOS == "windows" && !strings.HasSuffix(strings.ToLower(name), ".exe") {
		name += ".exe"
	}

	candidates := []string{
		filepath.Join(exeDir, name),
		filepath.Join(exeDir, "bin", name),
		filepath.Join(exeDir, "lib", name),
	}
	if runtime.GOOS == "darwin" {
		candidates = append(candidates, filepath.Join(exeDir, "..", "Resources", name))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && isExecutable(info) {
			return c, true
		}
	}
	return "", false
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

// ToolStatus reports whether a tool can be run and which version it is.
type ToolStatus struct {
	Name      string
	Command   string
	Path      string
	Version   string
	Available bool
	Detail    string
}

// Check resolves binary and runs it with -version.
func Check(ctx context.Context, r runner.Runner, name, binary string) ToolStatus {
	status := ToolStatus{Name: name, Command: binary}

	path, err := r.LookPath(binary)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Path = path

	version, err := Version(ctx, r, binary)
	if err != nil {
		status.Detail = err.Error()
		return status
	}
	status.Version = version
	status.Available = true
	return status
}

// Version returns the first line of `binary -version`.
func Version(ctx context.Context, r runner.Runner, binary string) (string, error) {
	res, err := r.Run(ctx, runner.Command{Binary: binary, Args: []string{"-version"}})
	if err != nil {
		return "", err
	}
	if res.ExitCode != 0 {
		return "", errors.Errorf("%s -version exited with code %d: %s", binary, res.ExitCode, runner.Tail(res.Stderr, 3))
	}
	first := strings.TrimSpace(strings.SplitN(string(res.Stdout), "\n", 2)[0])
	if first == "" {
		return "", errors.Errorf("%s -version printed nothing", binary)
	}
	return first, nil
}

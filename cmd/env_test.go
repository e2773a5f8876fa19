// The cmd/ package holds CLI integration tests that exercise the full stack:
// command parsing -> extension -> nextcloud client -> HTTP. Each test builds
// the binary once and runs it against an in-process fake Nextcloud.
//
// The fake server runs in the test process; the binary reaches it over
// loopback HTTP using the NEXTCLOUD_* environment variables.

package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aitormendez/nextcloud-mcp-server/internal/nextcloud/nextcloudtest"
)

var (
	binaryPath string
	buildOnce  sync.Once
	buildErr   error
)

// buildBinary compiles the nextcloud-mcp binary once for all tests.
func buildBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		tmpDir, err := os.MkdirTemp("", "nextcloud-mcp-test-bin-*")
		if err != nil {
			buildErr = err
			return
		}

		binaryName := "nextcloud-mcp"
		if os.PathSeparator == '\\' {
			binaryName += ".exe"
		}
		binaryPath = filepath.Join(tmpDir, binaryName)

		projectRoot := filepath.Dir(mustGetwd())
		cmd := exec.Command("go", "build", "-o", binaryPath, ".")
		cmd.Dir = projectRoot
		if out, err := cmd.CombinedOutput(); err != nil {
			buildErr = &buildError{err: err, output: string(out)}
		}
	})

	if buildErr != nil {
		t.Fatalf("failed to build binary: %v", buildErr)
	}
	return binaryPath
}

type buildError struct {
	err    error
	output string
}

func (e *buildError) Error() string {
	return e.err.Error() + "\n" + e.output
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	return dir
}

// testEnv holds test environment state.
type testEnv struct {
	t      *testing.T
	dir    string
	home   string
	binary string
	srv    *nextcloudtest.Server
	env    []string
}

// newTestEnv starts a fake server and returns an environment whose
// commands are connected to it. HOME and the working directory are
// temporary, so no real config or audit log is touched.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	e := newOfflineEnv(t)
	e.srv = nextcloudtest.New(t)
	e.env = append(e.env,
		"NEXTCLOUD_URL="+e.srv.URL,
		"NEXTCLOUD_USER="+nextcloudtest.User,
		"NEXTCLOUD_PASSWORD="+nextcloudtest.Password,
	)
	return e
}

// newOfflineEnv is newTestEnv without a server or credentials.
func newOfflineEnv(t *testing.T) *testEnv {
	t.Helper()

	home := t.TempDir()
	e := &testEnv{t: t, dir: t.TempDir(), home: home, binary: buildBinary(t)}
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "NEXTCLOUD_") || strings.HasPrefix(kv, "HOME=") || strings.HasPrefix(kv, "USERPROFILE=") {
			continue
		}
		e.env = append(e.env, kv)
	}
	e.env = append(e.env, "HOME="+home, "USERPROFILE="+home)
	return e
}

// run executes nextcloud-mcp with the given args and returns its output.
func (e *testEnv) run(args ...string) string {
	e.t.Helper()
	out, err := e.runErr(args...)
	if err != nil {
		e.t.Fatalf("nextcloud-mcp %v failed: %v\noutput: %s", args, err, out)
	}
	return out
}

// runErr executes nextcloud-mcp and returns its output and any error.
func (e *testEnv) runErr(args ...string) (string, error) {
	e.t.Helper()

	cmd := exec.Command(e.binary, args...)
	cmd.Dir = e.dir
	cmd.Env = e.env
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// contains checks if output contains expected string.
func (e *testEnv) contains(output, expected string) {
	e.t.Helper()
	assert.Contains(e.t, output, expected)
}

// notContains checks that output lacks s.
func (e *testEnv) notContains(output, s string) {
	e.t.Helper()
	assert.NotContains(e.t, output, s)
}

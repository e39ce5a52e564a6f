// internal/verify/runner_test.go
package verify

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/valpere/uiverify/internal/browser"
	"github.com/valpere/uiverify/internal/utils"
)

// syncBuffer makes the output buffer safe against the asynchronous
// console/page-error observers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newTestRunner(t *testing.T, url string) (*Runner, *syncBuffer) {
	t.Helper()

	dir := t.TempDir()
	out := &syncBuffer{}
	return &Runner{
		TargetURL:         url,
		RenderWait:        500 * time.Millisecond,
		ExpectedText:      DefaultExpectedText,
		DebugScreenshot:   filepath.Join(dir, DefaultDebugScreenshot),
		SuccessScreenshot: filepath.Join(dir, DefaultSuccessScreenshot),
		Browser:           browser.DefaultConfig(),
		Out:               out,
		Logger:            utils.NewLoggerWithOptions(utils.ErrorLevel, os.Stderr),
	}, out
}

// runOrSkip runs one pass, skipping the test when Chrome is not installed.
func runOrSkip(t *testing.T, r *Runner) {
	t.Helper()

	if err := r.Run(context.Background()); err != nil {
		t.Skipf("Skipping runner test - Chrome may not be available: %v", err)
	}
}

func requireFile(t *testing.T, path string) {
	t.Helper()

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Expected artifact %s: %v", filepath.Base(path), err)
	}
	if info.Size() == 0 {
		t.Errorf("Expected non-empty artifact %s", filepath.Base(path))
	}
}

func requireNoFile(t *testing.T, path string) {
	t.Helper()

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no artifact %s", filepath.Base(path))
	}
}

func TestRunnerFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><div class="engine-info">Stockfish 16</div></body></html>`)
	}))
	defer srv.Close()

	r, out := newTestRunner(t, srv.URL)
	runOrSkip(t, r)

	output := out.String()
	for _, want := range []string{
		"Navigating to " + strings.TrimPrefix(srv.URL, "http://") + "...",
		"Saved debug_screenshot.png",
		"Found Stockfish 16",
		"Saved pv_board_verification.png",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected output to contain %q, got:\n%s", want, output)
		}
	}

	requireFile(t, r.DebugScreenshot)
	requireFile(t, r.SuccessScreenshot)
}

func TestRunnerNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><div>Engine loading failed</div></body></html>`)
	}))
	defer srv.Close()

	r, out := newTestRunner(t, srv.URL)
	runOrSkip(t, r)

	if !strings.Contains(out.String(), "Stockfish 16 NOT found") {
		t.Errorf("Expected NOT found message, got:\n%s", out.String())
	}

	requireFile(t, r.DebugScreenshot)
	requireNoFile(t, r.SuccessScreenshot)

	// A second pass against unchanged server state overwrites the same
	// artifact instead of accumulating new ones.
	runOrSkip(t, r)
	requireFile(t, r.DebugScreenshot)
	requireNoFile(t, r.SuccessScreenshot)
}

func TestRunnerNavigationFault(t *testing.T) {
	// Grab a port with nothing listening on it.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve port: %v", err)
	}
	target := "http://" + l.Addr().String()
	l.Close()

	r, out := newTestRunner(t, target)
	runOrSkip(t, r)

	output := out.String()
	if !strings.Contains(output, "Script Error: ") {
		t.Errorf("Expected Script Error line, got:\n%s", output)
	}
	if !strings.Contains(output, "Navigating to ") {
		t.Errorf("Expected progress line before the fault, got:\n%s", output)
	}

	// The fault fires before the diagnostic capture step.
	requireNoFile(t, r.DebugScreenshot)
	requireNoFile(t, r.SuccessScreenshot)
}

func TestRunnerConsoleObserver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<html><body><div>Stockfish 16</div>`+
			`<script>console.log("pv board mounted")</script></body></html>`)
	}))
	defer srv.Close()

	r, out := newTestRunner(t, srv.URL)
	r.RenderWait = time.Second
	runOrSkip(t, r)

	if !strings.Contains(out.String(), "Console: pv board mounted") {
		t.Errorf("Expected console observer output, got:\n%s", out.String())
	}
}

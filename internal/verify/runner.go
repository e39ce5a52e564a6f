// internal/verify/runner.go
package verify

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/valpere/uiverify/internal/browser"
	"github.com/valpere/uiverify/internal/utils"
)

// Fixed parameters for the board verification pass.
const (
	DefaultTargetURL         = "http://localhost:1420"
	DefaultRenderWait        = 5 * time.Second
	DefaultExpectedText      = "Stockfish 16"
	DefaultDebugScreenshot   = "debug_screenshot.png"
	DefaultSuccessScreenshot = "pv_board_verification.png"
)

// Runner performs one end-to-end check that the locally served analysis
// board becomes interactive and displays the expected engine name. It
// produces a diagnostic screenshot regardless of outcome and a second
// screenshot only when the expected text is found.
type Runner struct {
	TargetURL         string
	RenderWait        time.Duration
	ExpectedText      string
	DebugScreenshot   string
	SuccessScreenshot string

	Browser *browser.Config
	Out     io.Writer
	Logger  utils.Logger
}

// NewRunner returns a runner with the fixed verification parameters.
func NewRunner() *Runner {
	return &Runner{
		TargetURL:         DefaultTargetURL,
		RenderWait:        DefaultRenderWait,
		ExpectedText:      DefaultExpectedText,
		DebugScreenshot:   DefaultDebugScreenshot,
		SuccessScreenshot: DefaultSuccessScreenshot,
		Out:               os.Stdout,
		Logger:            utils.NewLogger(),
	}
}

// Run executes one verification pass. Faults inside the monitored
// navigate/wait/screenshot/query region are printed with a "Script Error: "
// prefix and swallowed. Only a failure to acquire the browser session, which
// happens before anything worth diagnosing, is returned to the caller.
func (r *Runner) Run(ctx context.Context) error {
	session, err := browser.NewSession(r.Browser)
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeBrowserFailed, "failed to acquire browser session")
	}
	defer session.Close()

	// Standing observers for the session's lifetime. They fire whenever the
	// page emits, in browser order, interleaved with the steps below.
	session.Listen(
		func(text string) { fmt.Fprintf(r.Out, "Console: %s\n", text) },
		func(text string) { fmt.Fprintf(r.Out, "PageError: %s\n", text) },
	)

	if err := r.verify(ctx, session); err != nil {
		fmt.Fprintf(r.Out, "Script Error: %v\n", err)
	}
	return nil
}

// verify walks the monitored steps in order. Any fault it returns is handled
// by the single boundary in Run; session release is not its concern.
func (r *Runner) verify(ctx context.Context, session *browser.Session) error {
	fmt.Fprintf(r.Out, "Navigating to %s...\n", displayTarget(r.TargetURL))

	start := time.Now()
	if err := session.Navigate(ctx, r.TargetURL); err != nil {
		return utils.WrapError(err, utils.ErrCodeNavigationFailed, "navigation failed")
	}
	r.Logger.Debugf("navigation completed in %s", time.Since(start).Round(time.Millisecond))

	// Blind delay to let the client-side renderer settle.
	if err := session.WaitRender(ctx, r.RenderWait); err != nil {
		return utils.WrapError(err, utils.ErrCodeRenderQueryFailed, "render wait interrupted")
	}

	// Diagnostic capture happens before the query so a broken page still
	// leaves something to triage.
	if err := r.capture(ctx, session, r.DebugScreenshot); err != nil {
		return utils.WrapError(err, utils.ErrCodeScreenshotFailed, "diagnostic screenshot failed")
	}

	html, err := session.HTML(ctx)
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeRenderQueryFailed, "failed to read rendered DOM")
	}

	matches, err := matchCount(strings.NewReader(html), r.ExpectedText)
	if err != nil {
		return utils.WrapError(err, utils.ErrCodeRenderQueryFailed, "failed to query rendered DOM")
	}
	r.Logger.Debugf("text query for %q matched %d element(s)", r.ExpectedText, matches)

	// Zero matches is a clean outcome, not a failure.
	if matches == 0 {
		fmt.Fprintf(r.Out, "%s NOT found\n", r.ExpectedText)
		return nil
	}

	fmt.Fprintf(r.Out, "Found %s\n", r.ExpectedText)
	if err := r.capture(ctx, session, r.SuccessScreenshot); err != nil {
		return utils.WrapError(err, utils.ErrCodeScreenshotFailed, "verification screenshot failed")
	}
	return nil
}

// capture writes a full-page screenshot to path, overwriting any previous
// run's artifact, and reports it on the output protocol.
func (r *Runner) capture(ctx context.Context, session *browser.Session, path string) error {
	buf, err := session.Screenshot(ctx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(r.Out, "Saved %s\n", filepath.Base(path))
	return nil
}

// displayTarget trims the scheme for the human-facing progress line.
func displayTarget(url string) string {
	url = strings.TrimPrefix(url, "http://")
	return strings.TrimPrefix(url, "https://")
}

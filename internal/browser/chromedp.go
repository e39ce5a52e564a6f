// internal/browser/chromedp.go
package browser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
)

// Session owns one headless Chrome process and a single page target. It is
// not safe for concurrent use; one verification pass owns it exclusively.
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	config      *Config
}

// NewSession launches the browser and attaches to a fresh page target. The
// caller must Close the session on every exit path.
func NewSession(config *Config) (*Session, error) {
	if config == nil {
		config = DefaultConfig()
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.DisableGPU,
		chromedp.NoSandbox, // Required for Docker environments
	}
	if config.Headless {
		opts = append(opts, chromedp.Headless)
	}
	if config.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(config.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	ctx, cancel := chromedp.NewContext(allocCtx)
	if config.Timeout > 0 {
		var timeoutCancel context.CancelFunc
		ctx, timeoutCancel = context.WithTimeout(ctx, config.Timeout)
		targetCancel := cancel
		cancel = func() {
			timeoutCancel()
			targetCancel()
		}
	}

	s := &Session{
		ctx:         ctx,
		cancel:      cancel,
		allocCancel: allocCancel,
		config:      config,
	}

	// Start the browser process and size the page before any navigation.
	err := chromedp.Run(s.ctx,
		chromedp.EmulateViewport(int64(config.ViewportWidth), int64(config.ViewportHeight)),
	)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	return s, nil
}

// Listen registers standing observers for console messages and uncaught page
// errors. Callbacks fire on chromedp's event goroutine at any point between
// registration and Close, interleaved with the blocking session calls.
func (s *Session) Listen(onConsole, onPageError func(text string)) {
	chromedp.ListenTarget(s.ctx, func(ev interface{}) {
		switch e := ev.(type) {
		case *runtime.EventConsoleAPICalled:
			if onConsole != nil {
				onConsole(formatConsoleArgs(e.Args))
			}
		case *runtime.EventExceptionThrown:
			if onPageError != nil {
				onPageError(exceptionText(e.ExceptionDetails))
			}
		}
	})
}

// Navigate drives the page to url and blocks until the document body is
// ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	err := chromedp.Run(s.ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

// WaitRender suspends for a fixed duration. This is a blind delay to let
// client-side rendering settle, not a readiness poll.
func (s *Session) WaitRender(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	if err := chromedp.Run(s.ctx, chromedp.Sleep(d)); err != nil {
		return fmt.Errorf("render wait interrupted: %w", err)
	}
	return nil
}

// HTML returns the rendered outer HTML of the current document.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var html string
	if err := chromedp.Run(s.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

// Screenshot captures a full-page screenshot and returns the PNG bytes.
// Quality 100 selects PNG encoding; anything lower would produce JPEG.
func (s *Session) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := chromedp.Run(s.ctx, chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return buf, nil
}

// Close releases the page target and the browser process. Safe on every exit
// path, including after a failed launch.
func (s *Session) Close() error {
	if s.cancel != nil {
		s.cancel()
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	return nil
}

func formatConsoleArgs(args []*runtime.RemoteObject) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, remoteObjectText(arg))
	}
	return strings.Join(parts, " ")
}

// remoteObjectText renders a console argument the way the browser console
// would: primitives by value, everything else by description.
func remoteObjectText(obj *runtime.RemoteObject) string {
	if obj == nil {
		return ""
	}
	if obj.Value != nil {
		raw := string(obj.Value)
		if unquoted, err := strconv.Unquote(raw); err == nil {
			return unquoted
		}
		return raw
	}
	return obj.Description
}

func exceptionText(details *runtime.ExceptionDetails) string {
	if details == nil {
		return ""
	}
	if details.Exception != nil && details.Exception.Description != "" {
		return details.Exception.Description
	}
	return details.Text
}

package fetcher

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"

	"github.com/seo-optimizer/seoscore/config"
	"github.com/seo-optimizer/seoscore/errs"
)

// BrowserRenderer is the rendered stage. Every call launches its own browser
// and tears it down before returning.
type BrowserRenderer struct {
	cfg       config.RenderConfig
	userAgent string
}

// NewBrowserRenderer returns a renderer that sends userAgent.
func NewBrowserRenderer(cfg config.RenderConfig, userAgent string) *BrowserRenderer {
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	return &BrowserRenderer{cfg: cfg, userAgent: userAgent}
}

// Render loads url in a headless browser, waits for the network to go idle
// or the navigation timeout to pass, and returns the rendered DOM.
func (r *BrowserRenderer) Render(ctx context.Context, url string) (html string, err error) {
	if !r.cfg.Enabled {
		return "", errs.Render("rendered fetch is disabled", nil)
	}

	// rod can panic when the CDP connection drops mid-call.
	defer func() {
		if rec := recover(); rec != nil {
			html = ""
			err = errs.Render("browser crashed", panicError{rec})
		}
	}()

	l := launcher.New().
		Context(ctx).
		Headless(r.cfg.Headless).
		NoSandbox(r.cfg.NoSandbox)
	if r.cfg.BrowserBin != "" {
		l = l.Bin(r.cfg.BrowserBin)
	}
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return "", errs.Render("failed to launch browser", err)
	}
	// Kill ends the process if Close did not; Cleanup then removes the profile dir.
	defer l.Cleanup()
	defer l.Kill()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", errs.Render("failed to connect to browser", err)
	}
	defer browser.Close()

	var page *rod.Page
	if r.cfg.Stealth {
		page, err = stealth.Page(browser)
	} else {
		page, err = browser.Page(proto.TargetCreateTarget{})
	}
	if err != nil {
		return "", errs.Render("failed to open page", err)
	}
	defer page.Close()

	if err := r.preparePage(page); err != nil {
		return "", err
	}

	timeout := r.cfg.NavigationTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	idle := r.cfg.IdleWindow
	if idle <= 0 {
		idle = 500 * time.Millisecond
	}

	nav := page.Timeout(timeout)
	defer nav.CancelTimeout()
	// The waiter must be registered before navigating.
	wait := nav.WaitRequestIdle(idle, nil, nil, nil)
	if err := nav.Navigate(url); err != nil {
		return "", errs.Render("navigation failed", err)
	}
	// Idle wait ends on its own when the navigation timeout passes.
	wait()

	html, err = page.HTML()
	if err != nil {
		return "", errs.Render("failed to capture rendered HTML", err)
	}
	return html, nil
}

// preparePage sends the configured user agent and browser-like headers
// with every request the page makes.
func (r *BrowserRenderer) preparePage(c proto.Client) error {
	if err := (proto.NetworkSetUserAgentOverride{
		UserAgent:      r.userAgent,
		AcceptLanguage: "en-US,en;q=0.9",
	}).Call(c); err != nil {
		return errs.Render("failed to set user agent", err)
	}
	if err := (proto.NetworkSetExtraHTTPHeaders{
		Headers: proto.NetworkHeaders{
			"Accept": gson.New("text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8"),
		},
	}).Call(c); err != nil {
		return errs.Render("failed to set headers", err)
	}
	return nil
}

type panicError struct{ value any }

func (p panicError) Error() string {
	if err, ok := p.value.(error); ok {
		return err.Error()
	}
	return "panic during render"
}

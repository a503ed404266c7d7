// Package browser drives a Chromium-based browser over the DevTools protocol.
package browser

import (
	"context"
	"fmt"
	"sync"

	cdpbrowser "github.com/chromedp/cdproto/browser"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"

	"github.com/neilberkman/tabrider/internal/core/restore"
	"github.com/neilberkman/tabrider/internal/logx"
)

// Chrome implements restore.Browser on a DevTools connection.
//
// The protocol cannot open a tab in a chosen window. New targets land in
// the focused window, so CreateTab activates the window's placeholder first
// and holds a lock until the tab exists. Pinning and tab index are not part
// of the protocol and are ignored.
type Chrome struct {
	ctx    context.Context
	cancel context.CancelFunc

	createMu sync.Mutex
}

// Options configures how the browser is reached
type Options struct {
	// URL is a DevTools websocket or http endpoint of a running browser.
	// Empty launches a new browser process.
	URL      string
	Headless bool
}

// Connect attaches to (or launches) a browser
func Connect(ctx context.Context, opts Options) (*Chrome, error) {
	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if opts.URL != "" {
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(ctx, opts.URL)
	} else {
		execOpts := append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", opts.Headless),
		)
		allocCtx, allocCancel = chromedp.NewExecAllocator(ctx, execOpts...)
	}

	bctx, bcancel := chromedp.NewContext(allocCtx)
	// Run with no actions starts the browser and attaches to it
	if err := chromedp.Run(bctx); err != nil {
		bcancel()
		allocCancel()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Chrome{
		ctx: bctx,
		cancel: func() {
			bcancel()
			allocCancel()
		},
	}, nil
}

// Close detaches from the browser. A launched browser is shut down.
func (c *Chrome) Close() {
	c.cancel()
}

// exec returns a context that sends commands to the browser target and is
// cancelled with either ctx or the connection.
func (c *Chrome) exec(ctx context.Context) (context.Context, context.CancelFunc) {
	ectx, cancel := context.WithCancel(cdp.WithExecutor(ctx, chromedp.FromContext(c.ctx).Browser))
	stop := context.AfterFunc(c.ctx, cancel)
	return ectx, func() {
		stop()
		cancel()
	}
}

// CreateWindow opens a new window holding a single blank tab
func (c *Chrome) CreateWindow(ctx context.Context) (restore.WindowHandle, error) {
	ectx, cancel := c.exec(ctx)
	defer cancel()

	id, err := target.CreateTarget("about:blank").WithNewWindow(true).Do(ectx)
	if err != nil {
		return restore.WindowHandle{}, fmt.Errorf("failed to create window: %w", err)
	}
	windowID, _, err := cdpbrowser.GetWindowForTarget().WithTargetID(id).Do(ectx)
	if err != nil {
		return restore.WindowHandle{}, fmt.Errorf("failed to resolve window of %s: %w", id, err)
	}
	return restore.WindowHandle{ID: int64(windowID), Placeholder: restore.TabHandle(id)}, nil
}

// CreateTab opens a tab in window
func (c *Chrome) CreateTab(ctx context.Context, window restore.WindowHandle, opts restore.TabOptions) (restore.TabHandle, error) {
	if opts.Pinned {
		logx.Ctx(ctx).Debug("pinning is not supported over devtools", "url", opts.URL)
	}

	c.createMu.Lock()
	defer c.createMu.Unlock()

	ectx, cancel := c.exec(ctx)
	defer cancel()

	if err := target.ActivateTarget(target.ID(window.Placeholder)).Do(ectx); err != nil {
		return "", fmt.Errorf("failed to focus window %d: %w", window.ID, err)
	}
	id, err := target.CreateTarget(opts.URL).WithBackground(!opts.Active).Do(ectx)
	if err != nil {
		return "", fmt.Errorf("failed to create tab: %w", err)
	}
	return restore.TabHandle(id), nil
}

// QueryTabs lists open page targets. Index is the order the browser reports
// them in within each window.
func (c *Chrome) QueryTabs(ctx context.Context, filter restore.TabFilter) ([]restore.TabInfo, error) {
	ectx, cancel := c.exec(ctx)
	defer cancel()

	infos, err := target.GetTargets().Do(ectx)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}

	// The page chromedp attached to is ours, not the user's
	var own target.ID
	if t := chromedp.FromContext(c.ctx).Target; t != nil {
		own = t.TargetID
	}

	counts := make(map[int64]int)
	var tabs []restore.TabInfo
	for _, info := range infos {
		if info.Type != "page" || info.TargetID == own {
			continue
		}
		windowID, _, err := cdpbrowser.GetWindowForTarget().WithTargetID(info.TargetID).Do(ectx)
		if err != nil {
			// Targets can close between listing and lookup
			logx.Ctx(ctx).Debug("skipping target without window", "target", info.TargetID, "err", err)
			continue
		}
		wid := int64(windowID)
		if filter.WindowID != nil && *filter.WindowID != wid {
			continue
		}
		tabs = append(tabs, restore.TabInfo{
			Handle:   restore.TabHandle(info.TargetID),
			WindowID: wid,
			Index:    counts[wid],
			URL:      info.URL,
			Title:    info.Title,
		})
		counts[wid]++
	}
	return tabs, nil
}

// RemoveTab closes a tab
func (c *Chrome) RemoveTab(ctx context.Context, tab restore.TabHandle) error {
	ectx, cancel := c.exec(ctx)
	defer cancel()

	if err := target.CloseTarget(target.ID(tab)).Do(ectx); err != nil {
		return fmt.Errorf("failed to close tab %s: %w", tab, err)
	}
	return nil
}

var _ restore.Browser = (*Chrome)(nil)

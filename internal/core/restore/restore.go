// Package restore recreates stored windows in a live browser and captures
// the live layout back into a session.
package restore

import (
	"context"
	"fmt"
	"sync"

	"github.com/neilberkman/tabrider/internal/core/models"
	"github.com/neilberkman/tabrider/internal/core/suspend"
	"github.com/neilberkman/tabrider/internal/logx"
)

// Mode selects how tab URLs are transformed on restore
type Mode int

const (
	// Reload opens every tab live, resuming suspended URLs
	Reload Mode = iota
	// Resuspend opens every eligible tab suspended
	Resuspend
)

func (m Mode) String() string {
	if m == Resuspend {
		return "resuspend"
	}
	return "reload"
}

// WindowResult describes one recreated window. Tabs is parallel to the
// captured tab list; a failed creation leaves an empty handle.
type WindowResult struct {
	Index              int
	Window             WindowHandle
	Tabs               []TabHandle
	PlaceholderRemoved bool
}

// Result describes a whole restore
type Result struct {
	Windows []WindowResult
}

// Created returns the number of tabs that were opened
func (r Result) Created() int {
	n := 0
	for _, w := range r.Windows {
		for _, h := range w.Tabs {
			if h != "" {
				n++
			}
		}
	}
	return n
}

// Restorer drives a Browser to recreate windows
type Restorer struct {
	browser Browser
	codec   *suspend.Codec
}

// New creates a restorer. codec decides which URLs are suspended or special.
func New(browser Browser, codec *suspend.Codec) *Restorer {
	if codec == nil {
		codec = suspend.NewCodec("", nil)
	}
	return &Restorer{browser: browser, codec: codec}
}

// TargetURL returns the URL a stored tab is opened with in the given mode
func (r *Restorer) TargetURL(tab models.Tab, mode Mode) string {
	switch mode {
	case Resuspend:
		if !r.codec.IsSuspended(tab.URL) && !r.codec.IsSpecial(tab) {
			return r.codec.Suspend(tab.URL)
		}
	case Reload:
		if r.codec.IsSuspended(tab.URL) {
			return r.codec.Resume(tab.URL)
		}
	}
	return tab.URL
}

// RestoreWindow recreates a single stored window
func (r *Restorer) RestoreWindow(ctx context.Context, window models.Window, mode Mode) (WindowResult, error) {
	wr, tabFails, winFail := r.restoreWindow(ctx, 0, window, mode)
	if len(tabFails) == 0 && winFail == nil {
		return wr, nil
	}
	perr := &PartialFailureError{Tabs: tabFails}
	if winFail != nil {
		perr.Windows = []WindowFailure{*winFail}
	}
	return wr, perr
}

// RestoreSession recreates every window of session concurrently. Windows
// are independent; within a window the placeholder is removed only after
// every tab creation has resolved. Nothing is rolled back on failure.
func (r *Restorer) RestoreSession(ctx context.Context, session models.Session, mode Mode) (Result, error) {
	ctx = logx.ContextWithSessionLogger(ctx, session.ID)
	log := logx.WithSession(ctx, session.ID)
	log.Info("restoring session", "windows", len(session.Windows), "tabs", session.TabCount(), "mode", mode.String())

	type outcome struct {
		result  WindowResult
		tabs    []TabFailure
		failure *WindowFailure
	}
	outcomes := make([]outcome, len(session.Windows))

	var wg sync.WaitGroup
	for i, w := range session.Windows {
		wg.Add(1)
		go func(i int, w models.Window) {
			defer wg.Done()
			res, tabs, failure := r.restoreWindow(ctx, i, w, mode)
			outcomes[i] = outcome{result: res, tabs: tabs, failure: failure}
		}(i, w)
	}
	wg.Wait()

	result := Result{Windows: make([]WindowResult, 0, len(outcomes))}
	perr := &PartialFailureError{}
	for _, o := range outcomes {
		result.Windows = append(result.Windows, o.result)
		perr.Tabs = append(perr.Tabs, o.tabs...)
		if o.failure != nil {
			perr.Windows = append(perr.Windows, *o.failure)
		}
	}

	if len(perr.Tabs) > 0 || len(perr.Windows) > 0 {
		log.Warn("restore finished with failures", "created", result.Created(), "failed_tabs", len(perr.Tabs), "failed_windows", len(perr.Windows))
		return result, perr
	}
	log.Info("restore finished", "created", result.Created())
	return result, nil
}

func (r *Restorer) restoreWindow(ctx context.Context, index int, window models.Window, mode Mode) (WindowResult, []TabFailure, *WindowFailure) {
	log := logx.WithWindow(logx.Ctx(ctx), index, window.ID)
	result := WindowResult{Index: index, Tabs: make([]TabHandle, len(window.Tabs))}
	if len(window.Tabs) == 0 {
		return result, nil, nil
	}

	handle, err := r.browser.CreateWindow(ctx)
	if err != nil {
		log.Warn("create window failed", "err", err)
		return result, nil, &WindowFailure{WindowIndex: index, Err: fmt.Errorf("failed to create window: %w", err)}
	}
	result.Window = handle
	log = log.With("new_window", handle.ID)

	errs := make([]error, len(window.Tabs))
	urls := make([]string, len(window.Tabs))

	var wg sync.WaitGroup
	for i, tab := range window.Tabs {
		urls[i] = r.TargetURL(tab, mode)
		wg.Add(1)
		go func(i int, tab models.Tab) {
			defer wg.Done()
			h, err := r.browser.CreateTab(ctx, handle, TabOptions{
				URL:    urls[i],
				Pinned: tab.Pinned,
				Active: false,
				Index:  i + 1,
			})
			if err != nil {
				errs[i] = err
				return
			}
			result.Tabs[i] = h
		}(i, tab)
	}
	// Every creation must resolve before the placeholder goes, otherwise
	// the window could close or the wrong tab could be removed.
	wg.Wait()

	var failures []TabFailure
	for i, err := range errs {
		if err != nil {
			log.Warn("create tab failed", "tab", i, "url", urls[i], "err", err)
			failures = append(failures, TabFailure{WindowIndex: index, TabIndex: i, URL: urls[i], Err: err})
		}
	}

	// With nothing created, the placeholder is all that keeps the window open
	if len(failures) == len(window.Tabs) {
		return result, failures, nil
	}

	if err := r.browser.RemoveTab(ctx, handle.Placeholder); err != nil {
		log.Warn("remove placeholder failed", "err", err)
		return result, failures, &WindowFailure{WindowIndex: index, Err: fmt.Errorf("failed to remove placeholder tab: %w", err)}
	}
	result.PlaceholderRemoved = true
	log.Debug("window restored", "tabs", len(window.Tabs)-len(failures))
	return result, failures, nil
}

package restore

import "context"

// TabHandle identifies a live browser tab
type TabHandle string

// WindowHandle identifies a live browser window. Placeholder is the tab the
// browser opened with the window, captured before any other tab exists.
type WindowHandle struct {
	ID          int64
	Placeholder TabHandle
}

// TabOptions describes a tab to create
type TabOptions struct {
	URL    string
	Pinned bool
	Active bool
	Index  int // Position in the window; 0 is the placeholder
}

// TabInfo is a live tab as reported by QueryTabs
type TabInfo struct {
	Handle   TabHandle
	WindowID int64
	Index    int
	URL      string
	Title    string
	Pinned   bool
}

// TabFilter narrows QueryTabs. A nil WindowID matches every window.
type TabFilter struct {
	WindowID *int64
}

// Browser is the browser automation API used to recreate and capture windows.
// All methods block until the browser has acknowledged the request.
type Browser interface {
	CreateWindow(ctx context.Context) (WindowHandle, error)
	CreateTab(ctx context.Context, window WindowHandle, opts TabOptions) (TabHandle, error)
	QueryTabs(ctx context.Context, filter TabFilter) ([]TabInfo, error)
	RemoveTab(ctx context.Context, tab TabHandle) error
}

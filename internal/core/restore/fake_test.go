package restore

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"time"
)

// fakeBrowser is an in-memory Browser with controllable completion order
// and injectable failures.
type fakeBrowser struct {
	mu       sync.Mutex
	nextID   int64
	windows  map[int64][]fakeTab
	inFlight int

	delay      func(opts TabOptions) time.Duration
	failTab    map[string]error
	failWindow error

	created          []TabOptions
	removed          []TabHandle
	inFlightAtRemove []int
	events           []string
}

type fakeTab struct {
	handle TabHandle
	index  int
	url    string
	pinned bool
}

func newFakeBrowser() *fakeBrowser {
	return &fakeBrowser{nextID: 100, windows: make(map[int64][]fakeTab), failTab: map[string]error{}}
}

func (f *fakeBrowser) newHandle() TabHandle {
	f.nextID++
	return TabHandle(strconv.FormatInt(f.nextID, 10))
}

func (f *fakeBrowser) CreateWindow(ctx context.Context) (WindowHandle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWindow != nil {
		err := f.failWindow
		f.failWindow = nil
		return WindowHandle{}, err
	}
	f.nextID++
	id := f.nextID
	placeholder := f.newHandle()
	f.windows[id] = []fakeTab{{handle: placeholder, url: "about:blank"}}
	f.events = append(f.events, "window "+strconv.FormatInt(id, 10))
	return WindowHandle{ID: id, Placeholder: placeholder}, nil
}

func (f *fakeBrowser) CreateTab(ctx context.Context, window WindowHandle, opts TabOptions) (TabHandle, error) {
	f.mu.Lock()
	f.inFlight++
	f.created = append(f.created, opts)
	f.mu.Unlock()

	if f.delay != nil {
		time.Sleep(f.delay(opts))
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--
	if err := f.failTab[opts.URL]; err != nil {
		return "", err
	}
	tabs, ok := f.windows[window.ID]
	if !ok {
		return "", errors.New("no such window")
	}
	h := f.newHandle()
	tabs = append(tabs, fakeTab{handle: h, index: opts.Index, url: opts.URL, pinned: opts.Pinned})
	sort.SliceStable(tabs, func(i, j int) bool { return tabs[i].index < tabs[j].index })
	f.windows[window.ID] = tabs
	f.events = append(f.events, "created "+opts.URL)
	return h, nil
}

func (f *fakeBrowser) QueryTabs(ctx context.Context, filter TabFilter) ([]TabInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []TabInfo
	for wid, tabs := range f.windows {
		if filter.WindowID != nil && *filter.WindowID != wid {
			continue
		}
		for i, t := range tabs {
			out = append(out, TabInfo{Handle: t.handle, WindowID: wid, Index: i, URL: t.url, Pinned: t.pinned})
		}
	}
	return out, nil
}

func (f *fakeBrowser) RemoveTab(ctx context.Context, tab TabHandle) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, tab)
	f.inFlightAtRemove = append(f.inFlightAtRemove, f.inFlight)
	f.events = append(f.events, "removed "+string(tab))
	for wid, tabs := range f.windows {
		for i, t := range tabs {
			if t.handle == tab {
				f.windows[wid] = append(tabs[:i], tabs[i+1:]...)
				if len(f.windows[wid]) == 0 {
					delete(f.windows, wid)
				}
				return nil
			}
		}
	}
	return errors.New("no such tab")
}

// urls returns the URLs of a live window in tab order
func (f *fakeBrowser) urls(windowID int64) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, t := range f.windows[windowID] {
		out = append(out, t.url)
	}
	return out
}

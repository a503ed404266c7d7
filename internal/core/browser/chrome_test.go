package browser

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/neilberkman/tabrider/internal/core/models"
	"github.com/neilberkman/tabrider/internal/core/restore"
	"github.com/neilberkman/tabrider/internal/core/suspend"
)

func TestChromeRestoreRoundTrip(t *testing.T) {
	if os.Getenv("TABRIDER_CHROME_TESTS") != "1" {
		t.Skip("set TABRIDER_CHROME_TESTS=1 to run against a local Chrome")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	chrome, err := Connect(ctx, Options{URL: os.Getenv("TABRIDER_BROWSER_URL"), Headless: true})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer chrome.Close()

	r := restore.New(chrome, suspend.NewCodec("", nil))
	window := models.Window{Tabs: []models.Tab{
		{URL: "data:text/html,<title>one</title>"},
		{URL: "data:text/html,<title>two</title>"},
	}}

	res, err := r.RestoreWindow(ctx, window, restore.Reload)
	if err != nil {
		t.Fatalf("restore window: %v", err)
	}
	if !res.PlaceholderRemoved {
		t.Fatalf("placeholder not removed")
	}

	tabs, err := chrome.QueryTabs(ctx, restore.TabFilter{WindowID: &res.Window.ID})
	if err != nil {
		t.Fatalf("query tabs: %v", err)
	}
	if len(tabs) != 2 {
		t.Fatalf("expected 2 tabs in restored window, got %d: %+v", len(tabs), tabs)
	}
	for _, tab := range tabs {
		if tab.Handle == res.Window.Placeholder {
			t.Fatalf("placeholder still open")
		}
		if err := chrome.RemoveTab(ctx, tab.Handle); err != nil {
			t.Fatalf("remove tab: %v", err)
		}
	}
}

package cli

import (
	"strings"
	"testing"
)

func TestPruneLimit(t *testing.T) {
	tests := []struct {
		name       string
		flagSet    bool
		flagValue  int
		maxHistory int
		want       int
		wantErr    bool
	}{
		{"config default", false, 0, 50, 50, false},
		{"explicit keep", true, 10, 50, 10, false},
		{"explicit keep above config", true, 80, 50, 80, false},
		{"explicit zero rejected", true, 0, 50, 0, true},
		{"explicit negative rejected", true, -3, 50, 0, true},
		{"config zero disables", false, 0, 0, 0, false},
		{"config negative disables", false, 0, -1, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := pruneLimit(tt.flagSet, tt.flagValue, tt.maxHistory)
			if (err != nil) != tt.wantErr {
				t.Fatalf("pruneLimit() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !strings.Contains(err.Error(), "tabrider clear") {
					t.Errorf("error %q does not point to clear", err)
				}
				return
			}
			if got != tt.want {
				t.Errorf("pruneLimit() = %d, want %d", got, tt.want)
			}
		})
	}
}

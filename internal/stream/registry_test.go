package stream

import (
	"errors"
	"testing"
)

func TestDisplayFor(t *testing.T) {
	r := NewRegistry("vnc.internal", 5900)

	tests := []struct {
		desktopID string
		display   string
		vncAddr   string
	}{
		{"desktop-000", ":0", "vnc.internal:5900"},
		{"desktop-007", ":7", "vnc.internal:5907"},
		{"desktop-042", ":42", "vnc.internal:5942"},
	}

	for _, tt := range tests {
		info, err := r.DisplayFor(tt.desktopID)
		if err != nil {
			t.Fatalf("DisplayFor(%s): %v", tt.desktopID, err)
		}
		if info.Display != tt.display || info.VNCAddr != tt.vncAddr {
			t.Errorf("DisplayFor(%s) = %+v, want display=%s vnc=%s",
				tt.desktopID, info, tt.display, tt.vncAddr)
		}
	}
}

func TestDisplayForUnknown(t *testing.T) {
	r := NewRegistry("localhost", 0)

	for _, id := range []string{"", "desktop-", "desktop-abc", "vm-001"} {
		if _, err := r.DisplayFor(id); !errors.Is(err, ErrUnknownDesktop) {
			t.Errorf("DisplayFor(%q): expected ErrUnknownDesktop, got %v", id, err)
		}
	}
}

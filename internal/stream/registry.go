package stream

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrUnknownDesktop = errors.New("unknown desktop")

// DisplayInfo tells the streaming bridge which display an allocated desktop
// instance maps to. The bridge owns the underlying VNC/X11 process; this
// registry only resolves the logical assignment.
type DisplayInfo struct {
	DesktopID string `json:"desktop_id"`
	Display   string `json:"display"`
	VNCAddr   string `json:"vnc_addr"`
}

type Registry struct {
	vncHost  string
	basePort int
}

func NewRegistry(vncHost string, basePort int) *Registry {
	if basePort == 0 {
		basePort = 5900
	}

	return &Registry{vncHost: vncHost, basePort: basePort}
}

// DisplayFor resolves a desktop id of the form "desktop-NNN" to its X display
// and VNC endpoint. Display N serves VNC on basePort+N, the x11vnc convention.
func (r *Registry) DisplayFor(desktopID string) (DisplayInfo, error) {
	idx, ok := parseIndex(desktopID)
	if !ok {
		return DisplayInfo{}, fmt.Errorf("%w: %s", ErrUnknownDesktop, desktopID)
	}

	return DisplayInfo{
		DesktopID: desktopID,
		Display:   fmt.Sprintf(":%d", idx),
		VNCAddr:   fmt.Sprintf("%s:%d", r.vncHost, r.basePort+idx),
	}, nil
}

func parseIndex(desktopID string) (int, bool) {
	suffix, found := strings.CutPrefix(desktopID, "desktop-")
	if !found {
		return 0, false
	}

	idx, err := strconv.Atoi(suffix)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

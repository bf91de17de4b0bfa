// Package tray puts neoncake in the system tray: a hand tracking switch, a
// live hand status line and Quit.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray menu.
type Tray struct {
	onToggle func(enabled bool)
	onViewer func()
	onQuit   func()
	tracking bool
	mu       sync.RWMutex

	menuToggle *systray.MenuItem
	menuStatus *systray.MenuItem
}

// New creates a Tray with tracking shown as on.
func New() *Tray {
	return &Tray{
		tracking: true,
	}
}

// OnToggle sets the callback for the tracking menu item.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpenViewer sets the callback for the "Open Viewer" menu item. The item
// is only added when a callback is set before Run.
func (t *Tray) OnOpenViewer(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onViewer = fn
}

// OnQuit sets the callback for the quit menu item.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray. It blocks until Quit is called and must run on
// the main goroutine on macOS.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit removes the tray icon and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("neoncake")
	systray.SetTooltip("neoncake hand-tracked particle cake")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(trackingLabel(t.tracking), "Toggle hand tracking")
	systray.AddSeparator()
	t.menuStatus = systray.AddMenuItem(statusLabel(false, 0), "Current hand state")
	t.menuStatus.Disable()
	hasViewer := t.onViewer != nil
	t.mu.Unlock()

	var viewerClicked <-chan struct{}
	if hasViewer {
		systray.AddSeparator()
		viewerClicked = systray.AddMenuItem("Open Viewer...", "Open the browser viewer").ClickedCh
	}
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit neoncake")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-viewerClicked:
				t.handleViewer()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.tracking = !t.tracking
	enabled := t.tracking
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(trackingLabel(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleViewer() {
	t.mu.RLock()
	callback := t.onViewer
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
	systray.Quit()
}

// SetTracking updates the tracking item after a change made elsewhere, for
// example from the keyboard.
func (t *Tray) SetTracking(enabled bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tracking = enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(trackingLabel(enabled))
	}
}

// SetStatus updates the hand status line.
func (t *Tray) SetStatus(handPresent bool, openness float64) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.menuStatus != nil {
		t.menuStatus.SetTitle(statusLabel(handPresent, openness))
	}
}

// IsTracking returns the tracking state shown in the menu.
func (t *Tray) IsTracking() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.tracking
}

func trackingLabel(enabled bool) string {
	if enabled {
		return "● Tracking"
	}
	return "○ Tracking off"
}

func statusLabel(handPresent bool, openness float64) string {
	if !handPresent {
		return "Hand: none"
	}
	return fmt.Sprintf("Hand: %d%% open", int(openness*100+0.5))
}

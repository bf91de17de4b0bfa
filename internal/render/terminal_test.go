package render

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ayusman/neoncake/internal/cloud"
)

func newTestTerminal(t *testing.T, cols, rows int) (*TerminalRenderer, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	r, err := NewTerminalRenderer(screen, rand.New(rand.NewPCG(7, 8)))
	if err != nil {
		t.Fatalf("NewTerminalRenderer() error = %v", err)
	}
	screen.SetSize(cols, rows)
	r.Resize(cols, rows)
	t.Cleanup(func() { r.Close() })
	return r, screen
}

func centerFrame(t *testing.T) *Frame {
	t.Helper()
	b := cloud.NewBuilder(1)
	b.Add(mgl64.Vec3{}, colorful.Color{R: 1, G: 0, B: 1})
	f, err := NewDriver(b.Build()).Tick(time.Now(), 0, mgl64.Vec3{}, true)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestTerminalRenderer_Draw(t *testing.T) {
	r, screen := newTestTerminal(t, 40, 20)
	r.stars = NewStarfield(rand.New(rand.NewPCG(1, 1)), 0, 320, 320)

	if w, h := r.Size(); w != 40 || h != 40 {
		t.Fatalf("Size() = %dx%d, want 40x40", w, h)
	}

	if err := r.Draw(centerFrame(t)); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}

	cells, w, h := screen.GetContents()
	if w != 40 || h != 20 {
		t.Fatalf("screen is %dx%d", w, h)
	}

	// The cloud's only point sits at the center pixel (20, 20): the top half
	// of cell (20, 10).
	cell := cells[10*w+20]
	if len(cell.Runes) == 0 || cell.Runes[0] != halfBlock {
		t.Fatalf("center cell runes = %q, want half block", cell.Runes)
	}
	fg, _, _ := cell.Style.Decompose()
	r8, g8, b8 := fg.RGB()
	if r8 < 200 || b8 < 200 || g8 > 120 {
		t.Errorf("center color = (%d, %d, %d), want magenta", r8, g8, b8)
	}

	// The HUD is drawn on the first row.
	hud := ""
	for x := 0; x < 9; x++ {
		if rs := cells[x].Runes; len(rs) > 0 {
			hud += string(rs[0])
		}
	}
	if hud != " neoncake" {
		t.Errorf("HUD starts with %q", hud)
	}
}

func TestTerminalRenderer_Keys(t *testing.T) {
	tests := []struct {
		name string
		key  tcell.Key
		ch   rune
	}{
		{"q", tcell.KeyRune, 'q'},
		{"escape", tcell.KeyEscape, 0},
		{"ctrl-c", tcell.KeyCtrlC, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, screen := newTestTerminal(t, 20, 10)
			screen.InjectKey(tt.key, tt.ch, tcell.ModNone)

			if err := drawUntil(r, centerFrame(t), time.Second); !errors.Is(err, ErrQuit) {
				t.Errorf("Draw() error = %v, want ErrQuit", err)
			}
		})
	}
}

func TestTerminalRenderer_Toggle(t *testing.T) {
	r, screen := newTestTerminal(t, 20, 10)
	toggled := make(chan struct{}, 1)
	r.OnToggle(func() { toggled <- struct{}{} })

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)

	f := centerFrame(t)
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if err := r.Draw(f); err != nil {
			t.Fatalf("Draw() error = %v", err)
		}
		select {
		case <-toggled:
			return
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatal("space did not toggle tracking")
}

func TestTerminalRenderer_CloseIsIdempotent(t *testing.T) {
	r, _ := newTestTerminal(t, 10, 5)
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
}

// drawUntil draws until Draw fails or the timeout passes. Events reach the
// renderer from a polling goroutine, so a key may take a few frames.
func drawUntil(r *TerminalRenderer, f *Frame, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := r.Draw(f); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
	return nil
}

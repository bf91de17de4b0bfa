package render

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
)

// Terminal cells are treated as two stacked pixels drawn with an upper half
// block, and stars live in a finer virtual space of cellPixelW x cellPixelH
// per cell so their fall speed matches a browser canvas.
const (
	cellPixelW = 8
	cellPixelH = 16
	halfBlock  = '▀'
	splatAlpha = 0.95
)

// TerminalRenderer draws frames to a tcell screen.
type TerminalRenderer struct {
	screen    tcell.Screen
	projector *Projector
	stars     *Starfield
	pixels    []colorful.Color
	cols      int
	rows      int

	events   chan tcell.Event
	done     chan struct{}
	once     sync.Once
	onToggle func()
	onResize func(width, height int)

	lastDraw time.Time
	fps      float64
}

// OpenTerminal initializes the controlling terminal and returns a renderer for it.
func OpenTerminal(rng *rand.Rand) (*TerminalRenderer, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %w", err)
	}
	return NewTerminalRenderer(screen, rng)
}

// NewTerminalRenderer initializes screen and starts reading its events.
func NewTerminalRenderer(screen tcell.Screen, rng *rand.Rand) (*TerminalRenderer, error) {
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %w", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack))
	screen.HideCursor()
	screen.Clear()

	r := &TerminalRenderer{
		screen:    screen,
		projector: NewProjector(1, 1),
		events:    make(chan tcell.Event, 100),
		done:      make(chan struct{}),
	}
	cols, rows := screen.Size()
	r.stars = NewStarfield(rng, DefaultStars, float64(cols*cellPixelW), float64(rows*cellPixelH))
	r.resize(cols, rows)

	go r.poll()
	return r, nil
}

// OnToggle registers the callback for the tracking toggle key. It runs on
// the render goroutine from inside Draw.
func (r *TerminalRenderer) OnToggle(fn func()) {
	r.onToggle = fn
}

// OnResize registers the callback invoked when the terminal changes size,
// with the viewport size in pixels.
func (r *TerminalRenderer) OnResize(fn func(width, height int)) {
	r.onResize = fn
}

// Size returns the viewport size in pixels.
func (r *TerminalRenderer) Size() (int, int) {
	return r.projector.Size()
}

func (r *TerminalRenderer) poll() {
	for {
		ev := r.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case r.events <- ev:
		case <-r.done:
			return
		}
	}
}

// Draw renders f. It returns ErrQuit once the user pressed q, Esc or Ctrl-C.
func (r *TerminalRenderer) Draw(f *Frame) error {
	if err := r.handleEvents(); err != nil {
		return err
	}

	r.stars.Step()
	r.paintBackground(f.Time)
	r.paintStars()
	r.paintSplats(f)
	r.flush()

	if !r.lastDraw.IsZero() {
		if dt := f.Time.Sub(r.lastDraw).Seconds(); dt > 0 {
			r.fps = r.fps*0.9 + 0.1/dt
		}
	}
	r.lastDraw = f.Time
	r.drawHUD(f)

	r.screen.Show()
	return nil
}

func (r *TerminalRenderer) handleEvents() error {
	for {
		select {
		case ev := <-r.events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch {
				case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
					return ErrQuit
				case ev.Key() == tcell.KeyRune && (ev.Rune() == 'q' || ev.Rune() == 'Q'):
					return ErrQuit
				case ev.Key() == tcell.KeyRune && ev.Rune() == ' ':
					if r.onToggle != nil {
						r.onToggle()
					}
				}
			case *tcell.EventResize:
				r.screen.Sync()
				cols, rows := r.screen.Size()
				r.resize(cols, rows)
				if r.onResize != nil {
					r.onResize(r.projector.Size())
				}
			}
		default:
			return nil
		}
	}
}

// Resize re-reads the terminal size. The terminal owns its dimensions, so
// the requested size is ignored.
func (r *TerminalRenderer) Resize(width, height int) {
	cols, rows := r.screen.Size()
	if cols != r.cols || rows != r.rows {
		r.resize(cols, rows)
	}
}

func (r *TerminalRenderer) resize(cols, rows int) {
	cols, rows = max(cols, 1), max(rows, 1)
	r.stars.Resize(float64(cols*cellPixelW), float64(rows*cellPixelH))
	r.cols, r.rows = cols, rows
	r.projector.Resize(cols, rows*2)
	r.pixels = make([]colorful.Color, cols*rows*2)
}

func (r *TerminalRenderer) paintBackground(now time.Time) {
	w, h := r.projector.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.pixels[y*w+x] = Background((float64(x)+0.5)/float64(w), (float64(y)+0.5)/float64(h), now)
		}
	}
}

func (r *TerminalRenderer) paintStars() {
	w, h := r.projector.Size()
	white := colorful.Color{R: 1, G: 1, B: 1}
	for _, st := range r.stars.Stars() {
		x := int(st.X / cellPixelW)
		y := int(st.Y / (cellPixelH / 2))
		if x < 0 || x >= w || y < 0 || y >= h {
			continue
		}
		// Small stars cover a fraction of a terminal pixel.
		alpha := st.Opacity * min(1, st.Radius/1.5) * 0.6
		r.pixels[y*w+x] = r.pixels[y*w+x].BlendRgb(white, alpha)
	}
}

func (r *TerminalRenderer) paintSplats(f *Frame) {
	w, h := r.projector.Size()
	for _, s := range r.projector.Project(f) {
		x, y := int(s.X), int(s.Y)
		if x < 0 || x >= w || y < 0 || y >= h {
			continue
		}
		p := &r.pixels[y*w+x]
		*p = colorful.Color{
			R: p.R + s.Color.R*splatAlpha,
			G: p.G + s.Color.G*splatAlpha,
			B: p.B + s.Color.B*splatAlpha,
		}.Clamped()
	}
}

func (r *TerminalRenderer) flush() {
	w, _ := r.projector.Size()
	for row := 0; row < r.rows; row++ {
		for col := 0; col < r.cols; col++ {
			top := r.pixels[(2*row)*w+col]
			bottom := r.pixels[(2*row+1)*w+col]
			style := tcell.StyleDefault.Foreground(tcellColor(top)).Background(tcellColor(bottom))
			r.screen.SetContent(col, row, halfBlock, nil, style)
		}
	}
}

func (r *TerminalRenderer) drawHUD(f *Frame) {
	tracking := "off"
	if f.Tracking {
		tracking = "on"
	}
	text := fmt.Sprintf(" neoncake  hand %-3s  openness %.2f  %3.0f fps   space: tracking  q: quit ",
		tracking, f.Openness, r.fps)

	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(0, 255, 255)).Background(tcell.ColorBlack)
	for i, c := range []rune(text) {
		if i >= r.cols {
			break
		}
		r.screen.SetContent(i, 0, c, nil, style)
	}
}

// Close stops event polling and restores the terminal.
func (r *TerminalRenderer) Close() error {
	r.once.Do(func() {
		close(r.done)
		r.screen.Fini()
	})
	return nil
}

func tcellColor(c colorful.Color) tcell.Color {
	r, g, b := c.Clamped().RGB255()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}

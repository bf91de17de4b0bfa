// Package window shows frames in a desktop window using ebiten.
package window

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/ayusman/neoncake/internal/render"
)

const splatAlpha = 0.95

// Config configures the desktop window.
type Config struct {
	Title  string
	Width  int
	Height int
	TPS    int
}

// DefaultConfig returns a 1280x720 window ticking at 60 frames per second.
func DefaultConfig() Config {
	return Config{
		Title:  "neoncake",
		Width:  1280,
		Height: 720,
		TPS:    60,
	}
}

// Renderer rasterizes frames into an RGBA buffer that Run shows in the window.
type Renderer struct {
	mu        sync.Mutex
	projector *render.Projector
	accum     []colorful.Color
	img       *image.RGBA
	dirty     bool
}

// NewRenderer returns a renderer with a width x height buffer.
func NewRenderer(width, height int) *Renderer {
	r := &Renderer{projector: render.NewProjector(width, height)}
	r.alloc()
	return r
}

func (r *Renderer) alloc() {
	w, h := r.projector.Size()
	r.accum = make([]colorful.Color, w*h)
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
}

// Size returns the buffer size.
func (r *Renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.projector.Size()
}

// Draw rasterizes f with additive blending over the backdrop.
func (r *Renderer) Draw(f *render.Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, h := r.projector.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.accum[y*w+x] = render.Background((float64(x)+0.5)/float64(w), (float64(y)+0.5)/float64(h), f.Time)
		}
	}

	for _, s := range r.projector.Project(f) {
		r.splat(s, w, h)
	}

	for i, c := range r.accum {
		cr, cg, cb := c.Clamped().RGB255()
		r.img.Pix[4*i] = cr
		r.img.Pix[4*i+1] = cg
		r.img.Pix[4*i+2] = cb
		r.img.Pix[4*i+3] = 0xff
	}
	r.dirty = true
	return nil
}

func (r *Renderer) splat(s render.Splat, w, h int) {
	radius := math.Max(s.Size/2, 0.75)
	x0, x1 := int(math.Floor(s.X-radius)), int(math.Ceil(s.X+radius))
	y0, y1 := int(math.Floor(s.Y-radius)), int(math.Ceil(s.Y+radius))
	for y := max(y0, 0); y < min(y1, h); y++ {
		for x := max(x0, 0); x < min(x1, w); x++ {
			dx, dy := float64(x)+0.5-s.X, float64(y)+0.5-s.Y
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			p := &r.accum[y*w+x]
			p.R += s.Color.R * splatAlpha
			p.G += s.Color.G * splatAlpha
			p.B += s.Color.B * splatAlpha
		}
	}
}

// Pixel returns the color last drawn at (x, y).
func (r *Renderer) Pixel(x, y int) colorful.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := r.img.RGBAAt(x, y)
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
}

// Resize reallocates the buffer.
func (r *Renderer) Resize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, h := r.projector.Size(); w == width && h == height {
		return
	}
	r.projector.Resize(width, height)
	r.alloc()
}

// Close is a no-op; the window closes when Run returns.
func (r *Renderer) Close() error {
	return nil
}

// Hooks connects the window to the render loop.
type Hooks struct {
	// Step renders one frame; it is called from the window's update tick.
	Step func() error
	// Toggle is called when space is pressed.
	Toggle func()
	// Resize is called when the window size changes.
	Resize func(width, height int)
}

// Run opens the window and blocks until it is closed or Step returns
// an error. A quit request ends the loop without error.
func Run(cfg Config, r *Renderer, hooks Hooks) error {
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(cfg.TPS)

	g := &windowGame{r: r, hooks: hooks}
	err := ebiten.RunGame(g)
	if errors.Is(err, render.ErrQuit) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	return nil
}

type windowGame struct {
	r      *Renderer
	hooks  Hooks
	screen *ebiten.Image
	width  int
	height int
}

func (g *windowGame) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return render.ErrQuit
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && g.hooks.Toggle != nil {
		g.hooks.Toggle()
	}
	if g.hooks.Step != nil {
		if err := g.hooks.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (g *windowGame) Draw(screen *ebiten.Image) {
	g.r.mu.Lock()
	defer g.r.mu.Unlock()

	b := g.r.img.Bounds()
	if g.screen == nil || g.screen.Bounds() != b {
		if g.screen != nil {
			g.screen.Deallocate()
		}
		g.screen = ebiten.NewImage(b.Dx(), b.Dy())
		g.r.dirty = true
	}
	if g.r.dirty {
		g.screen.WritePixels(g.r.img.Pix)
		g.r.dirty = false
	}
	screen.DrawImage(g.screen, nil)
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		if g.hooks.Resize != nil {
			g.hooks.Resize(outsideWidth, outsideHeight)
		} else {
			g.r.Resize(outsideWidth, outsideHeight)
		}
	}
	return outsideWidth, outsideHeight
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/ayusman/neoncake/internal/app"
	"github.com/ayusman/neoncake/internal/render"
	"github.com/ayusman/neoncake/internal/render/window"
	"github.com/ayusman/neoncake/internal/server"
	"github.com/ayusman/neoncake/internal/tray"
)

// Renderer names accepted by -renderer.
const (
	rendererTerminal = "terminal"
	rendererWindow   = "window"
	rendererWeb      = "web"
	rendererHeadless = "headless"
)

type options struct {
	renderer    string
	camera      int
	noCamera    bool
	seed        uint64
	particles   int
	fps         int
	addr        string
	serve       bool
	staticDir   string
	streamEvery int
	motionGate  bool
	tray        bool
	logFile     string
	frames      uint64
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.renderer, "renderer", rendererTerminal, "output: terminal, window, web or headless")
	flag.IntVar(&o.camera, "camera", 0, "camera device index")
	flag.BoolVar(&o.noCamera, "no-camera", false, "run without hand tracking")
	flag.Uint64Var(&o.seed, "seed", 1, "random seed for the cake shape")
	flag.IntVar(&o.particles, "particles", 5000, "particle budget")
	flag.IntVar(&o.fps, "fps", app.DefaultFPS, "render frames per second")
	flag.StringVar(&o.addr, "addr", ":8080", "HTTP listen address for the viewer")
	flag.BoolVar(&o.serve, "serve", false, "also serve the browser viewer with other renderers")
	flag.StringVar(&o.staticDir, "static", "", "directory with the browser viewer (default: search web/)")
	flag.IntVar(&o.streamEvery, "stream-every", 2, "send every nth frame to browser viewers")
	flag.BoolVar(&o.motionGate, "motion-gate", false, "skip hand detection on frames without motion")
	flag.BoolVar(&o.tray, "tray", false, "show a system tray menu")
	flag.StringVar(&o.logFile, "log", "", "log file (terminal renderer default: ~/.neoncake/neoncake.log)")
	flag.Uint64Var(&o.frames, "frames", 0, "headless: stop after this many frames")
	flag.Parse()
	return o
}

func main() {
	opts := parseFlags()
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "neoncake: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	switch opts.renderer {
	case rendererTerminal, rendererWindow, rendererWeb, rendererHeadless:
	default:
		return fmt.Errorf("unknown renderer %q", opts.renderer)
	}

	closeLog, err := setupLog(opts)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg := app.DefaultConfig()
	cfg.Camera.DeviceID = opts.camera
	cfg.Seed = opts.seed
	cfg.Cake.ParticleCount = opts.particles
	cfg.FPS = opts.fps
	cfg.MotionGate = opts.motionGate

	a := app.New(cfg)
	defer a.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	viewerURL := ""
	if opts.renderer == rendererWeb || opts.serve {
		viewerURL = startServer(ctx, a, opts)
	}

	if !opts.noCamera {
		if err := a.Start(ctx); err != nil {
			return err
		}
	}

	var tr *tray.Tray
	if opts.tray {
		if opts.renderer == rendererWindow {
			log.Println("Tray is not available with the window renderer")
		} else {
			tr = newTray(a, stop, viewerURL)
		}
	}

	onToggle := func() {
		enabled := a.ToggleTracking()
		if tr != nil {
			tr.SetTracking(enabled)
		}
	}

	var loop func() error
	switch opts.renderer {
	case rendererTerminal:
		term, err := render.OpenTerminal(rand.New(rand.NewPCG(opts.seed, uint64(time.Now().UnixNano()))))
		if err != nil {
			return err
		}
		term.OnToggle(onToggle)
		term.OnResize(a.Driver().Resize)
		a.Attach(term)
		a.Driver().Resize(term.Size())
		loop = func() error { return a.Run(ctx) }

	case rendererWindow:
		wcfg := window.DefaultConfig()
		wcfg.TPS = opts.fps
		wr := window.NewRenderer(wcfg.Width, wcfg.Height)
		a.Attach(wr)
		a.Driver().Resize(wcfg.Width, wcfg.Height)
		hooks := window.Hooks{
			Step:   func() error { return a.Step(time.Now()) },
			Toggle: onToggle,
			Resize: a.Driver().Resize,
		}
		// ebiten needs the main goroutine, so the window runs here directly.
		return window.Run(wcfg, wr, hooks)

	case rendererWeb, rendererHeadless:
		interval := 5 * time.Second
		if opts.renderer == rendererWeb {
			interval = 30 * time.Second
		}
		a.Attach(render.NewHeadlessRenderer(interval, opts.frames))
		loop = func() error { return a.Run(ctx) }
	}

	if tr == nil {
		return loop()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- loop()
		tr.Quit()
	}()
	go updateTray(ctx, tr, a)
	tr.Run()
	stop()
	return <-errCh
}

// setupLog sends log output to a file when one is configured. The terminal
// renderer owns the screen, so it always logs to a file.
func setupLog(opts options) (func(), error) {
	path := opts.logFile
	if path == "" && opts.renderer == rendererTerminal {
		dir, err := dataDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "neoncake.log")
	}
	if path == "" {
		return func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(f)
	return func() {
		log.SetOutput(os.Stderr)
		f.Close()
	}, nil
}

func dataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	dir := filepath.Join(homeDir, ".neoncake")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}
	return dir, nil
}

func startServer(ctx context.Context, a *app.App, opts options) string {
	staticDir := opts.staticDir
	if staticDir == "" {
		staticDir = findWebDir()
	}
	if staticDir != "" {
		log.Printf("Serving static files from: %s", staticDir)
	}

	hub := server.NewFrameHub(opts.streamEvery)
	a.Attach(hub)

	srv := server.New(server.Config{
		StaticDir: staticDir,
		Hub:       hub,
		Preview:   a.Preview(),
		App:       a,
	})
	go func() {
		if err := srv.Run(ctx, opts.addr); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Server failed: %v", err)
		}
	}()

	host := opts.addr
	if len(host) > 0 && host[0] == ':' {
		host = "localhost" + host
	}
	url := "http://" + host + "/"
	if opts.renderer == rendererWeb {
		fmt.Printf("Viewer at %s\n", url)
	}
	return url
}

func newTray(a *app.App, quit func(), viewerURL string) *tray.Tray {
	tr := tray.New()
	tr.SetTracking(a.Tracking())
	tr.OnToggle(a.SetTracking)
	tr.OnQuit(quit)
	if viewerURL != "" {
		tr.OnOpenViewer(func() {
			if err := openBrowser(viewerURL); err != nil {
				log.Printf("Failed to open browser: %v", err)
			}
		})
	}
	return tr
}

func updateTray(ctx context.Context, tr *tray.Tray, a *app.App) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st := a.Status()
			tr.SetStatus(st.HandPresent, st.Openness)
		}
	}
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}

// findWebDir searches for the browser viewer in common locations.
// It checks: "web", "../web", "../../web", and ~/.neoncake/web.
// Returns the first existing directory or empty string if none found.
func findWebDir() string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	homeWebDir := filepath.Join(homeDir, ".neoncake", "web")
	if info, err := os.Stat(homeWebDir); err == nil && info.IsDir() {
		return homeWebDir
	}

	return ""
}

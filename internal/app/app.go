// Package app runs the interactive terrain viewer: a fly camera over an
// endlessly streamed terrain.
package app

import (
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainstream/internal/config"
	"github.com/Faultbox/terrainstream/internal/engine/camera"
	"github.com/Faultbox/terrainstream/internal/engine/debug"
	"github.com/Faultbox/terrainstream/internal/engine/input"
	"github.com/Faultbox/terrainstream/internal/engine/lighting"
	"github.com/Faultbox/terrainstream/internal/engine/renderer"
	"github.com/Faultbox/terrainstream/internal/engine/window"
	"github.com/Faultbox/terrainstream/internal/logger"
	"github.com/Faultbox/terrainstream/internal/store"
	"github.com/Faultbox/terrainstream/internal/terrain"
	"github.com/Faultbox/terrainstream/internal/worker"
)

const (
	title = "Terrain Stream"

	// groundClearance keeps the camera above loaded terrain.
	groundClearance = 2

	sunTurnRate = 45 // degrees per second
)

// App is the viewer instance.
type App struct {
	cfg     *config.Config
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	input    *input.Input
	camera   *camera.FlyCamera
	capture  *debug.Capture

	pool     *worker.Pool
	cache    *store.Cache
	source   *store.CachedSource
	streamer *terrain.Streamer

	followGround bool
	wantCapture  bool

	log *zap.Logger
}

// New creates the window, GL state and terrain streamer.
func New(cfg *config.Config) (*App, error) {
	settings, err := cfg.TerrainSettings()
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:          cfg,
		followGround: true,
		log:          logger.Named("app"),
	}

	a.window, err = window.New(window.Config{
		Title:        title,
		Width:        cfg.View.Width,
		Height:       cfg.View.Height,
		Fullscreen:   cfg.View.Fullscreen,
		VSync:        cfg.View.VSync,
		CaptureMouse: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	// The drawable can be larger than the window on HiDPI screens.
	w, h := a.window.Size()
	a.renderer, err = renderer.New(renderer.Config{
		Width:       w,
		Height:      h,
		FogDistance: settings.MaxViewDistance(),
		HeightScale: settings.Height.MaxHeight(),
		Sun:         lighting.DefaultSun(),
	})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create renderer: %w", err)
	}

	a.input = input.New()
	a.capture = debug.NewCapture(cfg.View.ScreenshotDir, "terrain")
	a.camera = camera.NewFlyCamera(mgl32.Vec3{0, settings.Height.MaxHeight() + 20, 0})
	a.camera.Speed = cfg.View.Speed
	a.camera.Far = settings.MaxViewDistance() * 1.5

	a.pool = worker.New(cfg.Streamer.Workers)

	opts := terrain.Options{
		Pool: a.pool,
		Host: a.renderer,
	}
	if cfg.Cache.Enabled {
		a.cache, err = store.Open(cfg.Cache.Path, nil)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open height cache: %w", err)
		}
		a.source = store.NewCachedSource(a.cache,
			terrain.GeneratorSource{Settings: settings.Height},
			store.Fingerprint(settings.Height, settings.Mesh), logger.Named("cache"))
		opts.Source = a.source
	}

	a.streamer, err = terrain.NewStreamer(settings, terrain.ViewerFunc(a.camera.Position), opts)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("create streamer: %w", err)
	}

	a.log.Info("viewer initialized",
		zap.Int("width", w),
		zap.Int("height", h),
		zap.Bool("cache", a.cache != nil),
	)
	return a, nil
}

// Run starts the main loop and returns when the window is closed.
func (a *App) Run() error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")

	for a.running {
		now := time.Now()
		dt := float32(now.Sub(lastTime).Seconds())
		lastTime = now

		if a.input.Update() {
			break
		}
		a.handleEvents()

		a.update(dt)
		a.render()
		a.window.SwapBuffers()

		frameCount++
		if elapsed := time.Since(fpsTimer); elapsed >= time.Second {
			a.updateTitle(float64(frameCount) / elapsed.Seconds())
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	return nil
}

func (a *App) handleEvents() {
	for _, event := range a.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			w, h := a.window.Size()
			a.renderer.Resize(w, h)
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				a.running = false
			case sdl.SCANCODE_F:
				a.renderer.SetWireframe(!a.renderer.Wireframe())
			case sdl.SCANCODE_G:
				a.followGround = !a.followGround
			case sdl.SCANCODE_F12:
				a.wantCapture = true
			case sdl.SCANCODE_R:
				a.log.Info("resetting terrain")
				a.streamer.ResetTerrain()
				a.streamer.ForceUpdateNow()
			}
		}
	}
}

func (a *App) update(dt float32) {
	a.camera.Look(a.input.MouseDelta())
	a.camera.Move(
		axis(a.input, sdl.SCANCODE_W, sdl.SCANCODE_S),
		axis(a.input, sdl.SCANCODE_D, sdl.SCANCODE_A),
		axis(a.input, sdl.SCANCODE_SPACE, sdl.SCANCODE_LCTRL),
		dt,
		a.input.Held(sdl.SCANCODE_LSHIFT),
	)

	if a.input.Held(sdl.SCANCODE_LEFTBRACKET) {
		a.renderer.Sun().Rotate(-sunTurnRate * dt)
	}
	if a.input.Held(sdl.SCANCODE_RIGHTBRACKET) {
		a.renderer.Sun().Rotate(sunTurnRate * dt)
	}

	a.streamer.Tick()

	pos := a.camera.Position()
	if a.followGround && a.streamer.IsChunkLoadedAt(pos) {
		a.camera.KeepAbove(a.streamer.HeightAt(pos), groundClearance)
	}
}

func (a *App) render() {
	a.renderer.Begin()
	a.renderer.DrawTerrain(a.camera.ViewProjection(a.renderer.Aspect()), a.camera.Position())
	a.renderer.End()

	// Read back before SwapBuffers, while the frame is still in the back buffer.
	if a.wantCapture {
		a.wantCapture = false
		pixels, w, h := a.renderer.ReadPixels()
		path, err := a.capture.SavePixels(pixels, w, h)
		if err != nil {
			a.log.Warn("screenshot failed", zap.Error(err))
			return
		}
		a.log.Info("screenshot saved", zap.String("path", path))
	}
}

func (a *App) updateTitle(fps float64) {
	st := a.streamer.Stats()
	pos := a.camera.Position()
	t := fmt.Sprintf("%s | %.0f fps | chunk %v | %d chunks, %d visible, %d loading, %d colliders, %d jobs",
		title, fps, a.streamer.ChunkCoordAt(pos),
		st.Chunks, st.Visible, st.Loading, st.Colliders, st.PendingJobs)
	if a.source != nil {
		t += fmt.Sprintf(" | cache %d/%d", a.source.Hits(), a.source.Hits()+a.source.Misses())
	}
	a.window.SetTitle(t)
}

// Close releases everything New created, in reverse order.
func (a *App) Close() {
	a.log.Info("closing viewer")

	if a.streamer != nil {
		a.streamer.Close()
	}
	if a.pool != nil {
		a.pool.Stop()
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.log.Warn("close height cache", zap.Error(err))
		}
	}
	if a.renderer != nil {
		a.renderer.Close()
	}
	if a.window != nil {
		a.window.Close()
	}
}

// axis maps a pair of held keys to -1, 0 or 1.
func axis(in *input.Input, pos, neg sdl.Scancode) float32 {
	var v float32
	if in.Held(pos) {
		v++
	}
	if in.Held(neg) {
		v--
	}
	return v
}

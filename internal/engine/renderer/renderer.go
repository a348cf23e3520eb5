// Package renderer draws streamed terrain chunks with OpenGL. It
// implements terrain.RenderHost, so the streamer hands it one view per
// chunk.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/terrainstream/internal/engine/lighting"
	"github.com/Faultbox/terrainstream/internal/engine/shader"
	"github.com/Faultbox/terrainstream/internal/logger"
	"github.com/Faultbox/terrainstream/internal/terrain"
)

// Config holds renderer configuration.
type Config struct {
	Width  int
	Height int

	// Wireframe draws triangle edges only.
	Wireframe bool
	// FogDistance is where fog becomes opaque; zero disables fog.
	FogDistance float32
	// HeightScale maps world height to the colour ramp.
	HeightScale float32
	Sun         lighting.Sun
}

// Renderer owns the terrain program and every live chunk view.
type Renderer struct {
	config  Config
	program *shader.Program
	views   map[*chunkView]struct{}

	skyColor mgl32.Vec3

	log *zap.Logger
}

var _ terrain.RenderHost = (*Renderer)(nil)

// New creates a new renderer.
// Must be called after the OpenGL context is created.
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}

	r := &Renderer{
		config:   cfg,
		views:    make(map[*chunkView]struct{}),
		skyColor: mgl32.Vec3{0.55, 0.7, 0.85},
		log:      logger.Named("renderer"),
	}
	if r.config.HeightScale <= 0 {
		r.config.HeightScale = 1
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	// Chunk meshes are drawn from above and below while flying, so no culling.
	gl.Disable(gl.CULL_FACE)
	gl.ClearColor(r.skyColor[0], r.skyColor[1], r.skyColor[2], 1.0)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))

	program, err := shader.New(terrainVertexShader, terrainFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("terrain shader: %w", err)
	}
	r.program = program

	return r, nil
}

// NewChunkView implements terrain.RenderHost.
func (r *Renderer) NewChunkView(coord terrain.Coord, position mgl32.Vec3) terrain.ChunkView {
	v := &chunkView{
		owner:    r,
		coord:    coord,
		model:    mgl32.Translate3D(position.X(), position.Y(), position.Z()),
		uploaded: make(map[*terrain.Mesh]*gpuMesh),
	}
	r.views[v] = struct{}{}
	return v
}

// Close releases all GPU resources.
func (r *Renderer) Close() {
	r.log.Info("closing renderer", zap.Int("views", len(r.views)))
	for v := range r.views {
		v.Destroy()
	}
	if r.program != nil {
		r.program.Delete()
	}
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized",
		zap.Int("width", width),
		zap.Int("height", height),
	)
}

// Aspect returns the current viewport aspect ratio.
func (r *Renderer) Aspect() float32 {
	if r.config.Height == 0 {
		return 1
	}
	return float32(r.config.Width) / float32(r.config.Height)
}

// SetWireframe toggles line rendering.
func (r *Renderer) SetWireframe(on bool) {
	r.config.Wireframe = on
}

// Sun returns the light so callers can move it.
func (r *Renderer) Sun() *lighting.Sun {
	return &r.config.Sun
}

// Wireframe reports whether line rendering is on.
func (r *Renderer) Wireframe() bool {
	return r.config.Wireframe
}

// Begin starts a new frame.
func (r *Renderer) Begin() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End finishes the current frame.
func (r *Renderer) End() {
	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
}

// ReadPixels returns the current back buffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// DrawTerrain draws every active chunk view and returns how many meshes
// were drawn.
func (r *Renderer) DrawTerrain(viewProj mgl32.Mat4, cameraPos mgl32.Vec3) int {
	if r.config.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}

	r.program.Use()
	r.program.SetMat4("uViewProj", viewProj)
	r.program.SetVec3("uLightDir", r.config.Sun.Direction())
	r.program.SetFloat("uAmbient", r.config.Sun.Ambient)
	r.program.SetVec3("uCameraPos", cameraPos)
	r.program.SetVec3("uFogColor", r.skyColor)
	r.program.SetFloat("uFogDistance", r.config.FogDistance)
	r.program.SetFloat("uHeightScale", r.config.HeightScale)

	drawn := 0
	for v := range r.views {
		if v.draw(r.program) {
			drawn++
		}
	}
	gl.BindVertexArray(0)
	return drawn
}

package render

import (
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Stats describes the last drawn frame.
type Stats struct {
	Submitted int
	Drawn     int
	DrawMs    float64
}

// Renderer draws a frame's batch from one camera. It needs an open window.
type Renderer struct {
	Background rl.Color
	Cull       bool
	CullRadius float32
	GridSlices int32

	stats Stats
}

func NewRenderer() *Renderer {
	return &Renderer{
		Background: rl.NewColor(20, 20, 30, 255),
		Cull:       true,
		CullRadius: 2,
		GridSlices: 40,
	}
}

// Draw clears the screen and flushes batch in 3D mode. Text overlays are
// drawn by the caller between Draw and rl.EndDrawing.
func (r *Renderer) Draw(camera rl.Camera3D, batch *Batch) {
	rl.ClearBackground(r.Background)

	drawStart := time.Now()
	submitted := batch.Len()

	var frustum *Frustum
	if r.Cull {
		aspect := float32(rl.GetScreenWidth()) / float32(rl.GetScreenHeight())
		f := CameraFrustum(camera, aspect)
		frustum = &f
	}

	rl.BeginMode3D(camera)
	if r.GridSlices > 0 {
		rl.DrawGrid(r.GridSlices, 1.0)
	}
	drawn := batch.Flush(frustum, r.CullRadius)
	rl.EndMode3D()

	r.stats = Stats{
		Submitted: submitted,
		Drawn:     drawn,
		DrawMs:    float64(time.Since(drawStart).Microseconds()) / 1000.0,
	}
}

// Stats returns the numbers of the last Draw call.
func (r *Renderer) Stats() Stats { return r.stats }

package render

import (
	"rayforce/internal/assets"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// DrawFunc draws one model instance. The model's Transform is already set.
type DrawFunc func(model rl.Model, tint rl.Color)

// DrawModel is the default DrawFunc.
func DrawModel(model rl.Model, tint rl.Color) {
	rl.DrawModel(model, rl.Vector3Zero(), 1.0, tint)
}

// instanceGroup holds every submission for one model, in submission order
type instanceGroup struct {
	model      *assets.Model
	transforms []rl.Matrix
}

// Batch collects the world matrices submitted during a frame, grouped by
// model. Groups keep the order their model was first submitted in.
type Batch struct {
	Draw DrawFunc

	groups  []instanceGroup
	byModel map[*assets.Model]int
	count   int
}

func NewBatch() *Batch {
	return &Batch{
		Draw:    DrawModel,
		byModel: make(map[*assets.Model]int),
	}
}

// Add queues one instance of model at transform. Nil models are ignored.
func (b *Batch) Add(model *assets.Model, transform rl.Matrix) {
	if model == nil {
		return
	}
	if b.byModel == nil {
		b.byModel = make(map[*assets.Model]int)
	}
	idx, ok := b.byModel[model]
	if !ok {
		idx = len(b.groups)
		if idx < cap(b.groups) {
			// Reuse the slot Reset truncated, with its transforms storage
			b.groups = b.groups[:idx+1]
			b.groups[idx].model = model
			b.groups[idx].transforms = b.groups[idx].transforms[:0]
		} else {
			b.groups = append(b.groups, instanceGroup{model: model})
		}
		b.byModel[model] = idx
	}
	b.groups[idx].transforms = append(b.groups[idx].transforms, transform)
	b.count++
}

// Len returns the number of queued instances.
func (b *Batch) Len() int { return b.count }

// Models returns the number of distinct models queued.
func (b *Batch) Models() int { return len(b.groups) }

// Each visits every queued instance, model by model.
func (b *Batch) Each(fn func(model *assets.Model, transform rl.Matrix)) {
	for _, g := range b.groups {
		for _, t := range g.transforms {
			fn(g.model, t)
		}
	}
}

// Reset empties the batch, keeping allocated storage for the next frame.
func (b *Batch) Reset() {
	for i := range b.groups {
		b.groups[i].transforms = b.groups[i].transforms[:0]
	}
	b.groups = b.groups[:0]
	clear(b.byModel)
	b.count = 0
}

// Flush draws every queued instance with the model transform set to the
// submitted matrix, then resets. Instances whose origin sphere lies outside
// frustum are skipped; a nil frustum draws everything. Returns the number drawn.
func (b *Batch) Flush(frustum *Frustum, cullRadius float32) int {
	draw := b.Draw
	if draw == nil {
		draw = DrawModel
	}
	drawn := 0
	b.Each(func(model *assets.Model, transform rl.Matrix) {
		if frustum != nil {
			center := rl.Vector3{X: transform.M12, Y: transform.M13, Z: transform.M14}
			if !frustum.ContainsSphere(center, cullRadius) {
				return
			}
		}
		m := model.Model
		m.Transform = transform
		draw(m, model.Tint)
		drawn++
	})
	b.Reset()
	return drawn
}

package compute

import (
	"errors"
	"fmt"

	"rayforce/internal/physics"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	ErrTooManyObjects = errors.New("more spheres than the broad-phase was sized for")
	ErrPairOverflow   = errors.New("pair buffer overflowed")
)

const workgroupSize = 256

// Sphere is packed as a vec4: xyz center, w radius.
type Sphere struct {
	X, Y, Z float32
	Radius  float32
}

// Pair holds two indices into the sphere slice, A < B.
type Pair struct {
	A, B uint32
}

// PackSpheres converts physics volumes to the GPU layout. ids[i] is the body
// behind spheres[i].
func PackSpheres(volumes []physics.BoundingSphere) (spheres []Sphere, ids []physics.BodyID) {
	spheres = make([]Sphere, len(volumes))
	ids = make([]physics.BodyID, len(volumes))
	for i, v := range volumes {
		spheres[i] = Sphere{X: v.Center[0], Y: v.Center[1], Z: v.Center[2], Radius: v.Radius}
		ids[i] = v.Body
	}
	return spheres, ids
}

func overlaps(a, b Sphere) bool {
	dx, dy, dz := a.X-b.X, a.Y-b.Y, a.Z-b.Z
	r := a.Radius + b.Radius
	return dx*dx+dy*dy+dz*dz <= r*r
}

// OverlappingPairs is the CPU reference for DetectPairs, in index order.
func OverlappingPairs(spheres []Sphere) []Pair {
	var pairs []Pair
	for i := range spheres {
		for j := i + 1; j < len(spheres); j++ {
			if overlaps(spheres[i], spheres[j]) {
				pairs = append(pairs, Pair{A: uint32(i), B: uint32(j)})
			}
		}
	}
	return pairs
}

// One thread per sphere, each testing against every higher index so no
// pair is emitted twice.
const broadPhaseShader = `
struct Sphere {
    pos: vec3<f32>,
    radius: f32,
}

struct Pair {
    a: u32,
    b: u32,
}

@group(0) @binding(0) var<storage, read> spheres: array<Sphere>;
@group(0) @binding(1) var<storage, read_write> pairs: array<Pair>;
@group(0) @binding(2) var<storage, read_write> pairCount: atomic<u32>;
@group(0) @binding(3) var<uniform> objectCount: u32;

@compute @workgroup_size(256)
fn main(@builtin(global_invocation_id) global_id: vec3<u32>) {
    let i = global_id.x;
    if (i >= objectCount) {
        return;
    }
    let a = spheres[i];
    for (var j = i + 1u; j < objectCount; j = j + 1u) {
        let b = spheres[j];
        let diff = a.pos - b.pos;
        let r = a.radius + b.radius;
        if (dot(diff, diff) <= r * r) {
            let idx = atomicAdd(&pairCount, 1u);
            if (idx < arrayLength(&pairs)) {
                pairs[idx] = Pair(i, j);
            }
        }
    }
}
`

// BroadPhase finds overlapping bounding spheres on the GPU.
type BroadPhase struct {
	device *Device

	shader     *wgpu.ShaderModule
	layout     *wgpu.BindGroupLayout
	pipeLayout *wgpu.PipelineLayout
	pipeline   *wgpu.ComputePipeline

	spheres *buffer
	pairs   *buffer
	count   *buffer
	params  *buffer

	maxObjects uint32
	maxPairs   uint32
}

// NewBroadPhase sizes the GPU buffers. maxPairs should be generous,
// around ten times maxObjects for dense scenes.
func NewBroadPhase(d *Device, maxObjects, maxPairs uint32) (*BroadPhase, error) {
	if maxObjects == 0 || maxPairs == 0 {
		return nil, fmt.Errorf("broad-phase capacity must be positive: objects %d pairs %d", maxObjects, maxPairs)
	}
	bp := &BroadPhase{device: d, maxObjects: maxObjects, maxPairs: maxPairs}
	if err := bp.build(); err != nil {
		bp.Release()
		return nil, err
	}
	return bp, nil
}

func (bp *BroadPhase) build() error {
	device := bp.device.device
	var err error

	bp.shader, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "broadphase_shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: broadPhaseShader},
	})
	if err != nil {
		return fmt.Errorf("compile broad-phase shader: %w", err)
	}

	bp.layout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "broadphase_layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}},
			{Binding: 1, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
			{Binding: 2, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeStorage}},
			{Binding: 3, Visibility: wgpu.ShaderStageCompute,
				Buffer: wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group layout: %w", err)
	}

	bp.pipeLayout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "broadphase_pipeline_layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bp.layout},
	})
	if err != nil {
		return fmt.Errorf("create pipeline layout: %w", err)
	}

	bp.pipeline, err = device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  "broadphase_pipeline",
		Layout: bp.pipeLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     bp.shader,
			EntryPoint: "main",
		},
	})
	if err != nil {
		return fmt.Errorf("create compute pipeline: %w", err)
	}

	if bp.spheres, err = bp.device.createBuffer("spheres", uint64(bp.maxObjects)*16,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopyDst); err != nil {
		return err
	}
	if bp.pairs, err = bp.device.createBuffer("pairs", uint64(bp.maxPairs)*8,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc); err != nil {
		return err
	}
	if bp.count, err = bp.device.createBuffer("pairCount", 4,
		wgpu.BufferUsageStorage|wgpu.BufferUsageCopySrc|wgpu.BufferUsageCopyDst); err != nil {
		return err
	}
	// Uniform bindings are padded to 16 bytes
	if bp.params, err = bp.device.createBuffer("objectCount", 16,
		wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst); err != nil {
		return err
	}
	return nil
}

// DetectPairs returns every overlapping pair. Order is unspecified. When more
// pairs exist than the buffer holds, the pairs that fit are returned along
// with ErrPairOverflow.
func (bp *BroadPhase) DetectPairs(spheres []Sphere) ([]Pair, error) {
	if len(spheres) < 2 {
		return nil, nil
	}
	if uint32(len(spheres)) > bp.maxObjects {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyObjects, len(spheres), bp.maxObjects)
	}
	n := uint32(len(spheres))

	bp.device.write(bp.spheres, wgpu.ToBytes(spheres))
	bp.device.write(bp.count, wgpu.ToBytes([]uint32{0}))
	bp.device.write(bp.params, wgpu.ToBytes([]uint32{n, 0, 0, 0}))

	if err := bp.dispatch(n); err != nil {
		return nil, err
	}

	countData, err := bp.device.read(bp.count, 4)
	if err != nil {
		return nil, err
	}
	found := wgpu.FromBytes[uint32](countData)[0]
	if found == 0 {
		return nil, nil
	}
	kept := min(found, bp.maxPairs)

	pairData, err := bp.device.read(bp.pairs, uint64(kept)*8)
	if err != nil {
		return nil, err
	}
	pairs := make([]Pair, kept)
	copy(pairs, wgpu.FromBytes[Pair](pairData))

	if found > bp.maxPairs {
		return pairs, fmt.Errorf("%w: found %d, kept %d", ErrPairOverflow, found, kept)
	}
	return pairs, nil
}

func (bp *BroadPhase) dispatch(objectCount uint32) error {
	device := bp.device.device

	bindGroup, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "broadphase_bindgroup",
		Layout: bp.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: bp.spheres.buffer, Size: bp.spheres.size},
			{Binding: 1, Buffer: bp.pairs.buffer, Size: bp.pairs.size},
			{Binding: 2, Buffer: bp.count.buffer, Size: bp.count.size},
			{Binding: 3, Buffer: bp.params.buffer, Size: bp.params.size},
		},
	})
	if err != nil {
		return fmt.Errorf("create bind group: %w", err)
	}
	defer bindGroup.Release()

	encoder, err := device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	pass := encoder.BeginComputePass(nil)
	pass.SetPipeline(bp.pipeline)
	pass.SetBindGroup(0, bindGroup, nil)
	pass.DispatchWorkgroups((objectCount+workgroupSize-1)/workgroupSize, 1, 1)
	pass.End()
	pass.Release()

	commands, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer commands.Release()

	bp.device.queue.Submit(commands)
	return nil
}

// Release frees the buffers and pipeline. The Device stays open.
func (bp *BroadPhase) Release() {
	bp.spheres.release()
	bp.pairs.release()
	bp.count.release()
	bp.params.release()
	if bp.pipeline != nil {
		bp.pipeline.Release()
		bp.pipeline = nil
	}
	if bp.pipeLayout != nil {
		bp.pipeLayout.Release()
		bp.pipeLayout = nil
	}
	if bp.layout != nil {
		bp.layout.Release()
		bp.layout = nil
	}
	if bp.shader != nil {
		bp.shader.Release()
		bp.shader = nil
	}
}

// Stress test timing the frame loop (physics step, pose sync, behaviors)
// for growing entity counts, with body churn to catch leaked bodies.
// With -gpu the final frame's contacts are recounted by the WebGPU
// broad-phase and compared against the physics world.
//
// Profiling:
// go build ./cmd/sync_stress
// ./sync_stress -profile cpu
// go tool pprof -http=":8000" ./sync_stress cpu.pprof
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"rayforce/internal/compute"
	"rayforce/internal/logx"
	"rayforce/internal/physics"
	"rayforce/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"
)

const frameStep = float32(1.0 / 60)

// Test various entity counts
var testCounts = []int{100, 500, 1000, 2000, 5000}

// maxEntities sizes the GPU buffers for the largest count
const maxEntities = 5000

func main() {
	frames := flag.Int("frames", 120, "frames simulated per entity count")
	churn := flag.Float64("churn", 0.05, "fraction of entities destroyed and respawned each frame")
	mode := flag.String("profile", "", "profile mode: cpu, mem or empty for none")
	useGPU := flag.Bool("gpu", false, "cross-check contacts with the GPU broad-phase")
	flag.Parse()

	var bp *compute.BroadPhase
	if *useGPU {
		device, err := compute.Open()
		if err != nil {
			fmt.Fprintf(os.Stderr, "GPU: %v\n", err)
			os.Exit(2)
		}
		defer device.Release()
		fmt.Printf("GPU: %s\n", device.Info())
		bp, err = compute.NewBroadPhase(device, maxEntities, maxEntities*10)
		if err != nil {
			fmt.Fprintf(os.Stderr, "GPU: %v\n", err)
			os.Exit(2)
		}
		defer bp.Release()
	}

	var p interface{ Stop() }
	switch *mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	case "":
	default:
		fmt.Fprintf(os.Stderr, "unknown profile mode %q\n", *mode)
		os.Exit(2)
	}

	ok := true
	for _, count := range testCounts {
		if !testFrames(count, *frames, *churn, bp) {
			ok = false
		}
	}

	if p != nil {
		p.Stop()
	}
	if !ok {
		os.Exit(1)
	}
}

func testFrames(count, frames int, churn float64, bp *compute.BroadPhase) bool {
	w, err := world.New(world.DefaultConfig(), nil, logx.Nop())
	if err != nil {
		panic(fmt.Sprintf("Failed to create world: %v", err))
	}
	rng := rand.New(rand.NewSource(42)) // Consistent results

	// Spawn in a cube, size scales with count to keep density reasonable
	spawnSize := float32(50.0) + float32(count)/100.0
	spawn := func(i int) {
		pos := rl.Vector3{
			X: rng.Float32()*spawnSize - spawnSize/2,
			Y: 1 + rng.Float32()*spawnSize/2,
			Z: rng.Float32()*spawnSize - spawnSize/2,
		}
		e := w.Spawn(fmt.Sprintf("Body_%d", i), pos, "")
		if i%2 == 0 {
			e.AttachBody(physics.NewBoxGeometry(mgl32.Vec3{1, 1, 1}))
		} else {
			e.AttachBody(physics.SphereGeometry{Radius: 0.5 + rng.Float32()*0.5})
		}
	}
	for i := 0; i < count; i++ {
		spawn(i)
	}

	// Warm up
	w.Frame(frameStep)

	var stepMs, syncMs float64
	next := count
	start := time.Now()
	for f := 0; f < frames; f++ {
		for n := int(float64(count) * churn); n > 0; n-- {
			victim := w.Scene.Entities[rng.Intn(len(w.Scene.Entities))]
			w.Destroy(victim)
			spawn(next)
			next++
		}
		w.Frame(frameStep)
		stats := w.Stats()
		stepMs += stats.StepMs
		syncMs += stats.SyncMs
	}
	total := time.Since(start) / time.Duration(frames)
	stats := w.Stats()

	ok := stats.Bodies == len(w.Scene.Entities)
	fmt.Printf("%5d entities: frame %8v | step %6.2f ms | sync %6.2f ms | awake %5d | contacts %5d",
		count, total.Round(time.Microsecond), stepMs/float64(frames), syncMs/float64(frames),
		stats.Awake, stats.Contacts)
	if !ok {
		fmt.Printf(" | LEAK: %d bodies for %d entities", stats.Bodies, len(w.Scene.Entities))
	}
	fmt.Println()

	if bp != nil && !crossCheck(w, bp) {
		ok = false
	}

	w.Close()
	if released := w.Physics.BodyCount(); released != 0 {
		fmt.Printf("      close left %d bodies\n", released)
		ok = false
	}
	return ok
}

// crossCheck recounts the current contacts on the GPU.
func crossCheck(w *world.World, bp *compute.BroadPhase) bool {
	spheres, _ := compute.PackSpheres(w.Physics.BoundingSpheres())
	start := time.Now()
	pairs, err := bp.DetectPairs(spheres)
	elapsed := time.Since(start)
	if err != nil {
		fmt.Printf("      gpu: %v\n", err)
		return false
	}
	cpu := w.Physics.ActiveContacts()
	fmt.Printf("      gpu pairs %5d in %v (physics %d)\n", len(pairs), elapsed.Round(time.Microsecond), cpu)
	return len(pairs) == cpu
}

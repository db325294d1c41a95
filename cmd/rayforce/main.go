package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"rayforce/internal/assets"
	_ "rayforce/internal/behaviors"
	"rayforce/internal/camera"
	"rayforce/internal/engine"
	"rayforce/internal/logx"
	"rayforce/internal/physics"
	"rayforce/internal/render"
	"rayforce/internal/world"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const maxShots = 64

type app struct {
	cfg          world.Config
	scenePath    string
	snapshotPath string

	assets   *assets.Manager
	world    *world.World
	camera   *camera.FlyCamera
	renderer *render.Renderer
	log      logx.Logger

	paused   bool
	gravity  float32
	shots    []*engine.Entity
	shotSeq  int
	lastShot float64
}

func main() {
	configPath := flag.String("config", "assets/world.json", "world configuration file")
	manifestPath := flag.String("models", "assets/models.json", "model manifest")
	scenePath := flag.String("scene", "assets/scenes/yard.json", "scene file to load")
	snapshotPath := flag.String("snapshot", "snapshot.json", "where F5 writes the scene snapshot")
	width := flag.Int("width", 1280, "window width")
	height := flag.Int("height", 720, "window height")
	fps := flag.Int("fps", 120, "target frame rate")
	flag.Parse()

	// Change working directory to executable location for deployed builds.
	// Skip this for "go run" which puts the binary in a temp directory.
	if execPath, err := os.Executable(); err == nil {
		execDir := filepath.Dir(execPath)
		if !strings.Contains(execDir, "go-build") {
			os.Chdir(execDir)
		}
	}

	log := logx.NewTraceLogger("RayForce")

	cfg, err := world.LoadConfig(*configPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info("Config: file not found, using defaults", "path", *configPath)
		cfg = world.DefaultConfig()
	} else if err != nil {
		log.Error("Config: load failed", "err", err)
		os.Exit(1)
	}

	manager := assets.NewManager()
	if err := manager.LoadManifest(*manifestPath); err != nil {
		log.Error("Assets: manifest load failed", "err", err)
		os.Exit(1)
	}

	a := &app{
		cfg:          cfg,
		scenePath:    *scenePath,
		snapshotPath: *snapshotPath,
		assets:       manager,
		camera:       camera.New(rl.Vector3{X: 14, Y: 10, Z: 14}),
		renderer:     render.NewRenderer(),
		log:          log,
		gravity:      cfg.Gravity[1],
	}
	a.run(int32(*width), int32(*height), int32(*fps))
}

func (a *app) run(width, height, fps int32) {
	rl.SetConfigFlags(rl.FlagWindowHighdpi | rl.FlagMsaa4xHint)
	rl.InitWindow(width, height, "RayForce")
	defer rl.CloseWindow()

	rl.SetTargetFPS(fps)
	initHUDStyle()

	// Models load lazily, so the world must be built after the GL context exists
	if err := a.loadWorld(); err != nil {
		a.log.Error("World: scene load failed", "err", err)
		return
	}
	defer func() {
		a.world.Close()
		a.assets.Unload(rl.UnloadModel)
	}()

	for !rl.WindowShouldClose() {
		deltaTime := rl.GetFrameTime()

		a.camera.Update(camera.ReadInput(), deltaTime)
		a.handleKeys()

		step := deltaTime
		if a.paused {
			step = 0
		}
		a.world.Frame(step)

		rl.BeginDrawing()
		a.renderer.Draw(a.camera.GetRaylibCamera(), a.world.Batch)
		a.drawHUD()
		rl.EndDrawing()
	}
}

func (a *app) loadWorld() error {
	w, err := world.New(a.cfg, a.assets, a.log)
	if err != nil {
		return err
	}
	if err := w.LoadScene(a.scenePath); err != nil {
		w.Close()
		return err
	}
	w.SetGravity(a.gravityVector())
	a.world = w
	a.shots = nil
	return nil
}

// gravityVector combines the configured gravity with the HUD slider
func (a *app) gravityVector() rl.Vector3 {
	return rl.Vector3{X: a.cfg.Gravity[0], Y: a.gravity, Z: a.cfg.Gravity[2]}
}

func (a *app) reload() {
	a.world.Close()
	if err := a.loadWorld(); err != nil {
		a.log.Error("World: reload failed", "err", err)
		a.world = emptyWorld(a.world, a.cfg, a.assets, a.log)
	}
}

// emptyWorld builds a world with no scene to keep drawing after a failed
// load. If that fails too, closed is returned; frames on it do nothing.
func emptyWorld(closed *world.World, cfg world.Config, resolver engine.AssetResolver, log logx.Logger) *world.World {
	w, err := world.New(cfg, resolver, log)
	if err != nil {
		log.Error("World: empty world failed", "err", err)
		return closed
	}
	return w
}

func (a *app) handleKeys() {
	if rl.IsKeyPressed(rl.KeyP) {
		a.paused = !a.paused
	}
	if rl.IsKeyPressed(rl.KeyR) {
		a.reload()
	}
	if rl.IsKeyPressed(rl.KeyF5) {
		if err := a.world.SaveScene(a.snapshotPath); err != nil {
			a.log.Error("World: snapshot failed", "err", err)
		} else {
			a.log.Info("World: snapshot written", "path", a.snapshotPath)
		}
	}

	// Shoot with space (with cooldown)
	const shootCooldown = 0.15
	if rl.IsKeyDown(rl.KeySpace) && rl.GetTime()-a.lastShot >= shootCooldown {
		a.shoot()
		a.lastShot = rl.GetTime()
	}
}

// shoot launches a ball along the view direction. The oldest ball is
// destroyed once maxShots are alive.
func (a *app) shoot() {
	a.shotSeq++
	lookDir := a.camera.LookDirection()
	spawnPos := rl.Vector3Add(a.camera.Position, rl.Vector3Scale(lookDir, 2))

	name := fmt.Sprintf("Shot_%d", a.shotSeq)
	ball := a.world.Spawn(name, spawnPos, "ball")
	ball.Tags = []string{"shot"}
	ball.Mass = 2
	ball.AttachBody(physics.SphereGeometry{Radius: 0.4})
	ball.Place(spawnPos, rl.QuaternionIdentity(), rl.Vector3Scale(lookDir, 25))

	a.shots = append(a.shots, ball)
	for len(a.shots) > maxShots {
		oldest := a.shots[0]
		a.shots = a.shots[1:]
		if !oldest.Destroyed() {
			a.world.Destroy(oldest)
		}
	}
}

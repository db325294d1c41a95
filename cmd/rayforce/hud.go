package main

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// Dark theme colors
var (
	colorBgDark        = rl.NewColor(18, 18, 24, 230)
	colorBgElement     = rl.NewColor(32, 32, 44, 255)
	colorBgHover       = rl.NewColor(44, 44, 60, 255)
	colorAccent        = rl.NewColor(108, 99, 255, 255)
	colorTextPrimary   = rl.NewColor(235, 235, 245, 255)
	colorTextSecondary = rl.NewColor(170, 170, 190, 255)
	colorTextMuted     = rl.NewColor(120, 120, 140, 255)
)

const (
	hudX     = 10
	hudWidth = 250
	rowH     = 20
)

func initHUDStyle() {
	gui.SetStyle(gui.DEFAULT, gui.BACKGROUND_COLOR, gui.NewColorPropertyValue(colorBgDark))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_NORMAL, gui.NewColorPropertyValue(colorBgElement))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_FOCUSED, gui.NewColorPropertyValue(colorBgHover))
	gui.SetStyle(gui.DEFAULT, gui.BASE_COLOR_PRESSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_NORMAL, gui.NewColorPropertyValue(colorTextSecondary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_FOCUSED, gui.NewColorPropertyValue(colorTextPrimary))
	gui.SetStyle(gui.DEFAULT, gui.TEXT_COLOR_PRESSED, gui.NewColorPropertyValue(colorTextPrimary))

	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_NORMAL, gui.NewColorPropertyValue(rl.NewColor(50, 50, 65, 255)))
	gui.SetStyle(gui.DEFAULT, gui.BORDER_COLOR_FOCUSED, gui.NewColorPropertyValue(colorAccent))

	gui.SetStyle(gui.DEFAULT, gui.TEXT_SIZE, 15)
}

// drawHUD draws the stats panel and the simulation controls
func (a *app) drawHUD() {
	stats := a.world.Stats()
	drawStats := a.renderer.Stats()

	y := int32(10)
	rl.DrawRectangle(hudX-4, y-4, hudWidth, 330, colorBgDark)

	rl.DrawText("RMB to look, WASD/QE to fly, Space to shoot", hudX, y, 10, colorTextMuted)
	y += 16
	rl.DrawText("P pause, R reload, F5 snapshot", hudX, y, 10, colorTextMuted)
	y += 18
	rl.DrawFPS(hudX, y)
	y += rowH + 4

	lines := []string{
		fmt.Sprintf("Entities:  %d", stats.Entities),
		fmt.Sprintf("Bodies:    %d (%d awake)", stats.Bodies, stats.Awake),
		fmt.Sprintf("Contacts:  %d", stats.Contacts),
		fmt.Sprintf("Pushed:    %d", stats.Pushed),
		fmt.Sprintf("Drawn:     %d / %d", drawStats.Drawn, drawStats.Submitted),
		fmt.Sprintf("Step:   %.2f ms", stats.StepMs),
		fmt.Sprintf("Sync:   %.2f ms", stats.SyncMs),
		fmt.Sprintf("Update: %.2f ms", stats.UpdateMs),
		fmt.Sprintf("Draw:   %.2f ms", drawStats.DrawMs),
	}
	for _, line := range lines {
		rl.DrawText(line, hudX, y, 16, colorTextSecondary)
		y += rowH
	}
	y += 6

	pauseBounds := rl.Rectangle{X: hudX, Y: float32(y), Width: rowH, Height: rowH}
	a.paused = gui.CheckBox(pauseBounds, "Paused", a.paused)

	cullBounds := rl.Rectangle{X: hudX + 110, Y: float32(y), Width: rowH, Height: rowH}
	a.renderer.Cull = gui.CheckBox(cullBounds, "Cull", a.renderer.Cull)
	y += rowH + 8

	sliderBounds := rl.Rectangle{X: hudX + 60, Y: float32(y), Width: 120, Height: rowH}
	gravity := gui.Slider(sliderBounds, "Gravity", fmt.Sprintf("%.1f", a.gravity), a.gravity, -30, 10)
	if gravity != a.gravity {
		a.gravity = gravity
		a.world.SetGravity(a.gravityVector())
	}
}

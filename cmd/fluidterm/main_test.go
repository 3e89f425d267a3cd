package main

import (
	"image"
	"image/color"
	"testing"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/inkfield/config"
)

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func TestPaintHalfBlocks(t *testing.T) {
	screen := newSimScreen(t, 2, 1)
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})

	paint(screen, img)

	r, _, style, _ := screen.GetContent(0, 0)
	if r != '▀' {
		t.Fatalf("cell rune = %q, want '▀'", r)
	}
	fg, bg, _ := style.Decompose()
	if fg != tcell.NewRGBColor(255, 0, 0) {
		t.Errorf("foreground = %v, want the top pixel", fg)
	}
	if bg != tcell.NewRGBColor(0, 0, 255) {
		t.Errorf("background = %v, want the bottom pixel", bg)
	}
}

func TestTermFramesAndEvents(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	screen := newSimScreen(t, 20, 10)
	tm := newTerm(screen, cfg)
	defer tm.driver.Close()

	if b := tm.img.Bounds(); b.Dx() != 20 || b.Dy() != 20 {
		t.Fatalf("pixel buffer %v, want 20x20", b)
	}
	for i := 0; i < 3; i++ {
		if err := tm.frame(); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
	}
	if tm.driver.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", tm.driver.Frames())
	}
	if r, _, _, _ := screen.GetContent(19, 9); r != '▀' {
		t.Errorf("corner cell = %q, want '▀'", r)
	}

	if !tm.handle(tcell.NewEventMouse(3, 4, tcell.ButtonNone, tcell.ModNone)) {
		t.Fatal("mouse event stopped the loop")
	}
	if tm.mouseX != 3.5 || tm.mouseY != 9 {
		t.Errorf("mouse pixel = (%v,%v), want (3.5,9)", tm.mouseX, tm.mouseY)
	}

	screen.SetSize(30, 8)
	tm.handle(tcell.NewEventResize(30, 8))
	if b := tm.img.Bounds(); b.Dx() != 30 || b.Dy() != 16 {
		t.Errorf("pixel buffer %v after resize, want 30x16", b)
	}
	if err := tm.frame(); err != nil {
		t.Fatalf("frame after resize: %v", err)
	}
	if w, h := tm.driver.Field().Width(), tm.driver.Field().Height(); w != 30 || h != 16 {
		t.Errorf("field %dx%d after resize, want 30x16", w, h)
	}

	if tm.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)) {
		t.Error("escape did not stop the loop")
	}
}

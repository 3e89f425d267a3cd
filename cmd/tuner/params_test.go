package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/inkfield/config"
)

func TestYAMLFragmentLoadsBack(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg.Simulation.Decay = 0.9
	cfg.Input.LerpFactor = 0.05
	cfg.Display.Zoom = 25
	cfg.Palette = []string{"#000000", "#ff0000", "#00ff00", "#0000ff"}

	frag, err := yamlFragment(cfg)
	if err != nil {
		t.Fatalf("yamlFragment: %v", err)
	}
	path := filepath.Join(t.TempDir(), "tuned.yaml")
	if err := os.WriteFile(path, []byte(frag), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load fragment: %v", err)
	}

	if got.Simulation != cfg.Simulation {
		t.Errorf("simulation = %+v, want %+v", got.Simulation, cfg.Simulation)
	}
	if got.Input != cfg.Input {
		t.Errorf("input = %+v, want %+v", got.Input, cfg.Input)
	}
	if got.Display != cfg.Display {
		t.Errorf("display = %+v, want %+v", got.Display, cfg.Display)
	}
	for i := range cfg.Palette {
		if got.Palette[i] != cfg.Palette[i] {
			t.Errorf("palette[%d] = %s, want %s", i, got.Palette[i], cfg.Palette[i])
		}
	}
}

func TestSetSlider(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	decay := sliders[0]

	tests := []struct {
		in      float64
		want    float64
		changed bool
	}{
		{0.95, 0.95, true},
		{0.95, 0.95, false},
		{2, decay.Max, true},
		{-1, decay.Min, true},
	}
	for _, tc := range tests {
		if got := setSlider(cfg, decay, tc.in); got != tc.changed {
			t.Errorf("setSlider(%v) changed = %v, want %v", tc.in, got, tc.changed)
		}
		if cfg.Simulation.Decay != tc.want {
			t.Errorf("setSlider(%v): decay = %v, want %v", tc.in, cfg.Simulation.Decay, tc.want)
		}
	}
}

func TestSlidersCoverDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, s := range sliders {
		v := *s.Value(cfg)
		if v < s.Min || v > s.Max {
			t.Errorf("%s: default %v outside [%v, %v]", s.Label, v, s.Min, s.Max)
		}
	}
}

func TestRotateHues(t *testing.T) {
	in := []string{"#4a00e0", "#8e2de2", "#f12711", "#f5af19"}

	same, err := rotateHues(in, 0)
	if err != nil {
		t.Fatalf("rotateHues: %v", err)
	}
	for i := range in {
		if same[i] != in[i] {
			t.Errorf("rotate 0: [%d] = %s, want %s", i, same[i], in[i])
		}
	}

	turned, err := rotateHues(in, 90)
	if err != nil {
		t.Fatalf("rotateHues: %v", err)
	}
	if len(turned) != len(in) {
		t.Fatalf("got %d colours, want %d", len(turned), len(in))
	}
	if turned[0] == in[0] {
		t.Error("rotate 90 left the first colour unchanged")
	}
	if _, err := config.ParsePalette(turned); err != nil {
		t.Errorf("rotated palette does not parse: %v", err)
	}

	if _, err := rotateHues([]string{"nope"}, 10); err == nil {
		t.Error("expected error for invalid hex")
	}
}

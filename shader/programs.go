package shader

import _ "embed"

// SimulationFragment is the GLSL 330 fragment program for the simulation pass.
// It runs with raylib's default vertex shader; texture0 is the previous field.
//
//go:embed glsl/simulation.fs
var SimulationFragment string

// DisplayFragment is the GLSL 330 fragment program for the display pass.
// texture0 is the current field.
//
//go:embed glsl/display.fs
var DisplayFragment string

// Uniform names shared by the GLSL programs and the GPU backend.
const (
	UniformResolution          = "uResolution"
	UniformMouse               = "uMouse"
	UniformDecay               = "uDecay"
	UniformBrushSize           = "uBrushSize"
	UniformBrushStrength       = "uBrushStrength"
	UniformRandomPos           = "uRandomPos"
	UniformRandomBrushSize     = "uRandomBrushSize"
	UniformRandomBrushStrength = "uRandomBrushStrength"

	UniformTime      = "uTime"
	UniformColor1    = "uColor1"
	UniformColor2    = "uColor2"
	UniformColor3    = "uColor3"
	UniformColor4    = "uColor4"
	UniformWarp      = "uWarp"
	UniformTimeScale = "uTimeScale"
	UniformZoom      = "uZoom"
	UniformBrighten  = "uBrighten"
)

package rlbackend

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/inkfield/shader"
)

// simProgram is the compiled simulation shader with cached uniform locations.
type simProgram struct {
	shader           rl.Shader
	resolutionLoc    int32
	mouseLoc         int32
	decayLoc         int32
	brushSizeLoc     int32
	brushStrengthLoc int32
	autoPosLoc       int32
	autoSizeLoc      int32
	autoStrengthLoc  int32
}

// dispProgram is the compiled display shader with cached uniform locations.
type dispProgram struct {
	shader        rl.Shader
	timeLoc       int32
	resolutionLoc int32
	colorLocs     [4]int32
	warpLoc       int32
	timeScaleLoc  int32
	zoomLoc       int32
	brightenLoc   int32
}

// loadProgram compiles a fragment program against raylib's default vertex shader.
func loadProgram(name, fragment string) (rl.Shader, error) {
	sh := rl.LoadShaderFromMemory("", fragment)
	if !rl.IsShaderValid(sh) {
		return sh, fmt.Errorf("compile %s program", name)
	}
	return sh, nil
}

func loadSimProgram() (simProgram, error) {
	sh, err := loadProgram("simulation", shader.SimulationFragment)
	if err != nil {
		return simProgram{}, err
	}
	return simProgram{
		shader:           sh,
		resolutionLoc:    rl.GetShaderLocation(sh, shader.UniformResolution),
		mouseLoc:         rl.GetShaderLocation(sh, shader.UniformMouse),
		decayLoc:         rl.GetShaderLocation(sh, shader.UniformDecay),
		brushSizeLoc:     rl.GetShaderLocation(sh, shader.UniformBrushSize),
		brushStrengthLoc: rl.GetShaderLocation(sh, shader.UniformBrushStrength),
		autoPosLoc:       rl.GetShaderLocation(sh, shader.UniformRandomPos),
		autoSizeLoc:      rl.GetShaderLocation(sh, shader.UniformRandomBrushSize),
		autoStrengthLoc:  rl.GetShaderLocation(sh, shader.UniformRandomBrushStrength),
	}, nil
}

func loadDispProgram() (dispProgram, error) {
	sh, err := loadProgram("display", shader.DisplayFragment)
	if err != nil {
		return dispProgram{}, err
	}
	return dispProgram{
		shader:        sh,
		timeLoc:       rl.GetShaderLocation(sh, shader.UniformTime),
		resolutionLoc: rl.GetShaderLocation(sh, shader.UniformResolution),
		colorLocs: [4]int32{
			rl.GetShaderLocation(sh, shader.UniformColor1),
			rl.GetShaderLocation(sh, shader.UniformColor2),
			rl.GetShaderLocation(sh, shader.UniformColor3),
			rl.GetShaderLocation(sh, shader.UniformColor4),
		},
		warpLoc:      rl.GetShaderLocation(sh, shader.UniformWarp),
		timeScaleLoc: rl.GetShaderLocation(sh, shader.UniformTimeScale),
		zoomLoc:      rl.GetShaderLocation(sh, shader.UniformZoom),
		brightenLoc:  rl.GetShaderLocation(sh, shader.UniformBrighten),
	}, nil
}

func setFloat(sh rl.Shader, loc int32, v float32) {
	rl.SetShaderValue(sh, loc, []float32{v}, rl.ShaderUniformFloat)
}

func setVec2(sh rl.Shader, loc int32, v shader.Vec2) {
	rl.SetShaderValue(sh, loc, []float32{v.X, v.Y}, rl.ShaderUniformVec2)
}

func setColor(sh rl.Shader, loc int32, c shader.Color) {
	rl.SetShaderValue(sh, loc, []float32{c.R, c.G, c.B}, rl.ShaderUniformVec3)
}

func (p *simProgram) apply(u shader.SimulationUniforms) {
	setVec2(p.shader, p.resolutionLoc, u.Resolution)
	setFloat(p.shader, p.decayLoc, u.Decay)
	setVec2(p.shader, p.mouseLoc, u.Pointer.Pos)
	setFloat(p.shader, p.brushSizeLoc, u.Pointer.Radius)
	setFloat(p.shader, p.brushStrengthLoc, u.Pointer.Strength)
	setVec2(p.shader, p.autoPosLoc, u.Auto.Pos)
	setFloat(p.shader, p.autoSizeLoc, u.Auto.Radius)
	setFloat(p.shader, p.autoStrengthLoc, u.Auto.Strength)
}

func (p *dispProgram) apply(u shader.DisplayUniforms) {
	setFloat(p.shader, p.timeLoc, u.Time)
	setVec2(p.shader, p.resolutionLoc, u.Resolution)
	for i, loc := range p.colorLocs {
		setColor(p.shader, loc, u.Palette[i])
	}
	setFloat(p.shader, p.warpLoc, u.Params.Warp)
	setFloat(p.shader, p.timeScaleLoc, u.Params.TimeScale)
	setFloat(p.shader, p.zoomLoc, u.Params.Zoom)
	setFloat(p.shader, p.brightenLoc, u.Params.Brighten)
}

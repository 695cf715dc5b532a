package engine

// uniformSetter sets one effect specific uniform on the bound program.
type uniformSetter func(e *Engine, ratio float32)

func bgColor(e *Engine, _ float32) {
	e.renderer.SetVec4(e.session.program, "bgcolor", e.config.BackgroundColor())
}

func squares(n float32) uniformSetter {
	return func(e *Engine, ratio float32) {
		e.renderer.SetVec2(e.session.program, "size", [2]float32{ratio * n, n})
	}
}

func dividerWidth(e *Engine, ratio float32) {
	e.renderer.SetFloat(e.session.program, "dividerWidth", 0.05/ratio)
}

// randomDirection is a vector with both components uniform in [-1, 1].
func randomDirection(e *Engine, _ float32) {
	e.renderer.SetVec2(e.session.program, "direction", [2]float32{
		e.rng.Float32()*2 - 1,
		e.rng.Float32()*2 - 1,
	})
}

// axisDirection picks x in [0, 1]; y is 0 only
// when x is exactly 1.
func axisDirection(e *Engine, _ float32) {
	x := e.rng.Float32()
	y := float32(1)
	if x == 1 {
		y = 0
	}
	e.renderer.SetVec2(e.session.program, "direction", [2]float32{x, y})
}

func meltDirection(e *Engine, _ float32) {
	e.renderer.SetInt(e.session.program, "direction", int32(e.rng.IntN(2)))
}

// effectUniforms lists the extra uniforms each effect expects beyond
// from, to, progress and ratio.
var effectUniforms = map[string][]uniformSetter{
	"circlecrop":         {bgColor},
	"gridflip":           {bgColor, squares(4), dividerWidth},
	"randomsquares":      {squares(10)},
	"squareswire":        {squares(10), randomDirection},
	"directionalwarp":    {randomDirection},
	"directionalwipe":    {randomDirection},
	"directional_easing": {axisDirection},
	"directional":        {axisDirection},
	"luminance_melt":     {meltDirection},
}

func (e *Engine) applyUniforms(effect string, ratio float32) {
	for _, set := range effectUniforms[effect] {
		set(e, ratio)
	}
}

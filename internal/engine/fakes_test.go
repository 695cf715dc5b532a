package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper/internal/catalog"
	"github.com/matjam/glpaper/internal/render"
	"github.com/matjam/glpaper/internal/types"
	"github.com/stretchr/testify/require"
)

type fakeRenderer struct {
	width, height int

	lastID   uint32
	programs map[render.Program]string
	uniforms map[render.Program]map[string]any
	textures map[render.Texture]string
	used     render.Program
	bound    map[int]render.Texture

	deletedPrograms []render.Program
	deletedTextures []render.Texture
	loads           []string

	failCompile func(fragment string) bool
	failLoad    map[string]bool

	clears, draws, presents int
}

func newFakeRenderer() *fakeRenderer {
	return &fakeRenderer{
		width:    1920,
		height:   1080,
		programs: map[render.Program]string{},
		uniforms: map[render.Program]map[string]any{},
		textures: map[render.Texture]string{},
		bound:    map[int]render.Texture{},
		failLoad: map[string]bool{},
	}
}

func (r *fakeRenderer) Compile(_, fragment string) (render.Program, error) {
	if r.failCompile != nil && r.failCompile(fragment) {
		return 0, fmt.Errorf("%w: fake", render.ErrCompile)
	}
	r.lastID++
	p := render.Program(r.lastID)
	r.programs[p] = fragment
	r.uniforms[p] = map[string]any{}
	return p, nil
}

func (r *fakeRenderer) UseProgram(p render.Program) { r.used = p }

func (r *fakeRenderer) DeleteProgram(p render.Program) {
	r.deletedPrograms = append(r.deletedPrograms, p)
	delete(r.programs, p)
}

func (r *fakeRenderer) set(p render.Program, name string, v any) {
	if r.uniforms[p] == nil {
		r.uniforms[p] = map[string]any{}
	}
	r.uniforms[p][name] = v
}

func (r *fakeRenderer) SetInt(p render.Program, name string, v int32) { r.set(p, name, v) }
func (r *fakeRenderer) SetFloat(p render.Program, name string, v float32) { r.set(p, name, v) }
func (r *fakeRenderer) SetVec2(p render.Program, name string, v [2]float32) { r.set(p, name, v) }
func (r *fakeRenderer) SetVec4(p render.Program, name string, v [4]float32) { r.set(p, name, v) }

func (r *fakeRenderer) LoadTexture(path string) (render.Texture, error) {
	r.loads = append(r.loads, path)
	if r.failLoad[path] {
		return 0, errors.New("fake decode error")
	}
	r.lastID++
	t := render.Texture(r.lastID)
	r.textures[t] = path
	return t, nil
}

func (r *fakeRenderer) DeleteTexture(t render.Texture) {
	r.deletedTextures = append(r.deletedTextures, t)
	delete(r.textures, t)
}

func (r *fakeRenderer) Bind(t render.Texture, unit int) { r.bound[unit] = t }
func (r *fakeRenderer) Clear(types.Color) { r.clears++ }
func (r *fakeRenderer) Draw() { r.draws++ }
func (r *fakeRenderer) Present() { r.presents++ }
func (r *fakeRenderer) Size() (int, int) { return r.width, r.height }
func (r *fakeRenderer) Cleanup() {}

// uniform returns the value last set on the program in use.
func (r *fakeRenderer) uniform(name string) any {
	return r.uniforms[r.used][name]
}

type fakeConfig struct {
	bg          types.Color
	transitions []string
	transition  time.Duration
	display     time.Duration
	dir         string

	reloads  int
	onReload func(c *fakeConfig) error
}

func newFakeConfig(dir string) *fakeConfig {
	return &fakeConfig{
		bg:         types.DefaultBackground,
		transition: time.Second,
		display:    time.Hour,
		dir:        dir,
	}
}

func (c *fakeConfig) BackgroundColor() types.Color { return c.bg }
func (c *fakeConfig) EnabledTransitions() []string { return c.transitions }
func (c *fakeConfig) TransitionDuration() time.Duration { return c.transition }
func (c *fakeConfig) DisplayDuration() time.Duration { return c.display }
func (c *fakeConfig) WallpaperDirectory() string { return c.dir }

func (c *fakeConfig) Reload(overwrite bool) error {
	c.reloads++
	if c.onReload != nil {
		return c.onReload(c)
	}
	return nil
}

type fakeCatalog map[string][]string

func (c fakeCatalog) List(dir string) ([]string, error) {
	paths := c[dir]
	if len(paths) < catalog.MinImages {
		return nil, catalog.ErrTooFewImages
	}
	return append([]string(nil), paths...), nil
}

type fakeCommands struct {
	queue []types.Command
}

func (c *fakeCommands) TryReceive() types.Command {
	if len(c.queue) == 0 {
		return types.Command{}
	}
	cmd := c.queue[0]
	c.queue = c.queue[1:]
	return cmd
}

func (c *fakeCommands) push(t types.CommandType) {
	c.queue = append(c.queue, types.Command{Type: t})
}

type fakeClock struct {
	t       time.Time
	sleeps  int
	onSleep func()
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) {
	c.sleeps++
	c.t = c.t.Add(d)
	if c.onSleep != nil {
		c.onSleep()
	}
}

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

type harness struct {
	engine   *Engine
	renderer *fakeRenderer
	config   *fakeConfig
	catalog  fakeCatalog
	commands *fakeCommands
	clock    *fakeClock
	logs     *bytes.Buffer
}

var abc = []string{"/walls/a.png", "/walls/b.png", "/walls/c.png"}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()

	h := &harness{
		renderer: newFakeRenderer(),
		config:   newFakeConfig("/walls"),
		catalog:  fakeCatalog{"/walls": abc},
		commands: &fakeCommands{},
		clock:    &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		logs:     &bytes.Buffer{},
	}

	base := []Option{
		WithCatalog(h.catalog),
		WithClock(h.clock.now, h.clock.sleep),
		WithLogger(log.New(h.logs)),
		WithRand(rand.New(rand.NewPCG(1, 2))),
	}
	e, err := New(h.renderer, h.config, h.commands, append(base, opts...)...)
	require.NoError(t, err)
	h.engine = e
	return h
}

// boot does what Run does before its loop.
func (h *harness) boot(t *testing.T) {
	t.Helper()
	require.NoError(t, h.engine.setupTransition())
	h.engine.displayStart = h.clock.now()
}

func (h *harness) fragment() string {
	return h.renderer.programs[h.renderer.used]
}

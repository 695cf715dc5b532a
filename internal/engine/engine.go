// Package engine runs the wallpaper transition state machine: it shows an
// image, waits for the display duration or a command, then animates to the
// next image through a randomly chosen transition shader.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper/internal/catalog"
	"github.com/matjam/glpaper/internal/render"
	"github.com/matjam/glpaper/internal/transitions"
	"github.com/matjam/glpaper/internal/types"
)

// PollInterval is how long the display loop sleeps when no command is
// waiting.
const PollInterval = 100 * time.Millisecond

var (
	ErrStartup    = errors.New("startup failed")
	ErrNoFallback = errors.New("fallback transition unavailable")
)

// Config is the part of the configuration the engine reads. Values are
// read again on every use so a reload takes effect immediately.
type Config interface {
	BackgroundColor() types.Color
	EnabledTransitions() []string
	TransitionDuration() time.Duration
	DisplayDuration() time.Duration
	WallpaperDirectory() string
	Reload(overwrite bool) error
}

// Catalog lists the valid images of a directory and fails when there are
// fewer than two.
type Catalog interface {
	List(dir string) ([]string, error)
}

// Effects resolves transition names to GLSL bodies.
type Effects interface {
	Lookup(name string) (string, error)
	Names() []string
}

// CommandChannel is a non-blocking inbox; TryReceive returns
// types.CommandNone when nothing is pending.
type CommandChannel interface {
	TryReceive() types.Command
}

type State int

const (
	StateBootstrapping State = iota
	StateDisplaying
	StateAnimating
)

func (s State) String() string {
	switch s {
	case StateBootstrapping:
		return "bootstrapping"
	case StateDisplaying:
		return "displaying"
	case StateAnimating:
		return "animating"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// boundImage is a wallpaper uploaded to the GPU.
type boundImage struct {
	path    string
	texture render.Texture
}

// session is the transition currently prepared or running.
type session struct {
	effect  string
	program render.Program
	start   time.Time
	end     time.Time
}

// progress is the clamped fraction of the transition elapsed at now.
func (s *session) progress(now time.Time) float32 {
	total := s.end.Sub(s.start)
	if total <= 0 {
		return 1
	}
	t := float64(now.Sub(s.start)) / float64(total)
	return float32(min(max(t, 0), 1))
}

type Engine struct {
	renderer render.Renderer
	config   Config
	catalog  Catalog
	effects  Effects
	commands CommandChannel
	logger   *log.Logger
	rng      *rand.Rand
	now      func() time.Time
	sleep    func(ctx context.Context, d time.Duration)
	observer func(Status)

	wallpapers   []string
	current      *boundImage
	next         *boundImage
	session      *session
	state        State
	displayStart time.Time
}

// Status describes what is on screen.
type Status struct {
	State      string `json:"state"`
	Wallpaper  string `json:"wallpaper"`
	Next       string `json:"next"`
	Transition string `json:"transition"`
	Wallpapers int    `json:"wallpapers"`
}

type Option func(*Engine)

func WithCatalog(c Catalog) Option {
	return func(e *Engine) { e.catalog = c }
}

func WithEffects(fx Effects) Option {
	return func(e *Engine) { e.effects = fx }
}

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock replaces the wall clock and the poll sleep.
func WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration)) Option {
	return func(e *Engine) {
		e.now = now
		e.sleep = sleep
	}
}

// WithObserver registers a callback invoked on every state change and
// whenever a new transition is prepared.
func WithObserver(fn func(Status)) Option {
	return func(e *Engine) { e.observer = fn }
}

// New validates the collaborators and builds the initial wallpaper set.
// Every error wraps ErrStartup.
func New(r render.Renderer, cfg Config, commands CommandChannel, opts ...Option) (*Engine, error) {
	e := &Engine{
		renderer: r,
		config:   cfg,
		commands: commands,
		logger:   log.Default(),
		rng:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		now:      time.Now,
		sleep:    sleepContext,
		state:    StateBootstrapping,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.catalog == nil {
		e.catalog = catalog.New(e.logger)
	}
	if e.effects == nil {
		e.effects = transitions.Default()
	}

	if r == nil {
		return nil, fmt.Errorf("%w: no rendering context", ErrStartup)
	}
	if cfg == nil || cfg.WallpaperDirectory() == "" {
		return nil, fmt.Errorf("%w: wallpaper directory was not provided", ErrStartup)
	}
	if commands == nil {
		return nil, fmt.Errorf("%w: no command channel", ErrStartup)
	}

	wallpapers, err := e.catalog.List(cfg.WallpaperDirectory())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStartup, err)
	}
	e.wallpapers = wallpapers

	return e, nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Run prepares the first transition and then loops until ctx is
// cancelled. Only fatal errors are returned.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Info("Starting wallpaper engine...")
	defer e.release()

	if err := e.setupTransition(); err != nil {
		return err
	}
	e.displayStart = e.now()

	for ctx.Err() == nil {
		if err := e.Step(ctx); err != nil {
			return err
		}
	}

	e.logger.Info("Wallpaper engine stopped.")
	return nil
}

// Step runs one iteration of the main loop: one animation frame, or one
// wait for the end of the display period.
func (e *Engine) Step(ctx context.Context) error {
	e.renderer.Clear(e.config.BackgroundColor())

	switch e.state {
	case StateAnimating:
		t := e.session.progress(e.now())
		e.renderer.SetFloat(e.session.program, "progress", t)

		if t >= 1 {
			e.state = StateDisplaying
			e.displayStart = e.now()
			// prepare the following transition while the new image is
			// shown; this also publishes the new state
			if err := e.setupTransition(); err != nil {
				return err
			}
		}

	case StateDisplaying:
		if err := e.awaitTrigger(ctx); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
		e.startTransition()
		// the next frame draws with the new progress
		return nil

	case StateBootstrapping:
		e.state = StateDisplaying
		e.notify()
	}

	e.renderer.Draw()
	e.renderer.Present()
	return nil
}

// awaitTrigger polls for commands until the display duration has elapsed,
// a command asks for a transition, or ctx is cancelled.
func (e *Engine) awaitTrigger(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		switch cmd := e.commands.TryReceive(); cmd.Type {
		case types.CommandNone:
			e.sleep(ctx, PollInterval)
		case types.CommandNext:
			e.logger.Info("Received next command")
			return nil
		case types.CommandReload:
			e.logger.Info("Received reload command")
			return e.reload()
		default:
			e.logger.Debugf("Ignoring command %q", cmd.Type)
		}

		if e.now().Sub(e.displayStart) >= e.config.DisplayDuration() {
			return nil
		}
	}
}

// reload re-reads the configuration and the wallpaper directory and sets up
// a fresh transition, promoting the pre-loaded next image like any other
// setup. A broken config or directory keeps the previous settings.
func (e *Engine) reload() error {
	if err := e.config.Reload(true); err != nil {
		e.logger.Errorf("Failed to reload config: %v", err)
	} else if wallpapers, err := e.catalog.List(e.config.WallpaperDirectory()); err != nil {
		e.logger.Errorf("Failed to reload wallpapers: %v", err)
	} else {
		e.wallpapers = wallpapers
		e.logger.Infof("Reloaded %d wallpapers", len(wallpapers))
	}

	return e.setupTransition()
}

func (e *Engine) startTransition() {
	now := e.now()
	e.session.start = now
	e.session.end = now.Add(e.config.TransitionDuration())
	e.state = StateAnimating
	e.logger.Infof("Transition %s: %s", e.session.effect, e.next.path)
	e.notify()
}

// setupTransition compiles a randomly chosen effect, sets its uniforms and
// binds the from/to images. Once an image is showing, the pre-loaded next
// image becomes the current one.
func (e *Engine) setupTransition() error {
	effect := e.pickEffect()

	program, effect, err := e.buildProgram(effect)
	if err != nil {
		return err
	}

	if e.session != nil {
		e.renderer.DeleteProgram(e.session.program)
	}
	e.session = &session{effect: effect, program: program}

	e.renderer.UseProgram(program)
	ratio := e.ratio()
	e.renderer.SetFloat(program, "ratio", float32(ratio))
	e.renderer.SetFloat(program, "progress", 0)

	e.applyUniforms(effect, float32(ratio))

	if err := e.advanceImages(); err != nil {
		return err
	}

	e.renderer.Bind(e.current.texture, 0)
	e.renderer.SetInt(program, "from", 0)
	e.renderer.Bind(e.next.texture, 1)
	e.renderer.SetInt(program, "to", 1)

	e.notify()
	return nil
}

// notify publishes the current status to the observer.
func (e *Engine) notify() {
	if e.observer != nil {
		e.observer(e.Status())
	}
}

// ratio is width/height truncated to an integer. Unlike a plain integer
// division it never goes below 1: portrait screens would otherwise give
// gridflip a zero sized grid and a division by zero in dividerWidth.
func (e *Engine) ratio() int {
	w, h := e.renderer.Size()
	if h <= 0 {
		return 1
	}
	return max(w/h, 1)
}

// pickEffect draws uniformly from the enabled transitions, or from every
// registered one when none are enabled.
func (e *Engine) pickEffect() string {
	names := e.config.EnabledTransitions()
	if len(names) == 0 {
		names = e.effects.Names()
	}
	if len(names) == 0 {
		return transitions.Fallback
	}
	return names[e.rng.IntN(len(names))]
}

// buildProgram compiles name, falling back to fade once if it is unknown or
// does not compile. A broken fade is fatal.
func (e *Engine) buildProgram(name string) (render.Program, string, error) {
	candidates := []string{name}
	if name != transitions.Fallback {
		candidates = append(candidates, transitions.Fallback)
	}

	var lastErr error
	for _, candidate := range candidates {
		body, err := e.effects.Lookup(candidate)
		if err != nil {
			e.logger.Errorf("Failed to find transition '%s', falling back to %s", candidate, transitions.Fallback)
			lastErr = err
			continue
		}

		program, err := e.renderer.Compile(transitions.VertexSource, transitions.Compose(body))
		if err != nil {
			e.logger.Errorf("Failed to compile transition '%s', falling back to %s: %v", candidate, transitions.Fallback, err)
			lastErr = err
			continue
		}

		return program, candidate, nil
	}

	return 0, "", fmt.Errorf("%w: %w", ErrNoFallback, lastErr)
}

func (e *Engine) advanceImages() error {
	switch {
	case e.current == nil:
		current, err := e.loadImage()
		if err != nil {
			return err
		}
		e.current = current

		next, err := e.loadImage()
		if err != nil {
			return err
		}
		e.next = next

	default:
		e.renderer.DeleteTexture(e.current.texture)
		e.current = e.next
		e.next = nil

		next, err := e.loadImage()
		if err != nil {
			return err
		}
		e.next = next
	}
	return nil
}

// pickNextPath samples a wallpaper uniformly. Landing on the current image
// moves one step forward in the list instead, wrapping at the end.
func (e *Engine) pickNextPath() string {
	i := e.rng.IntN(len(e.wallpapers))
	if e.current != nil && e.wallpapers[i] == e.current.path {
		i = (i + 1) % len(e.wallpapers)
	}
	return e.wallpapers[i]
}

// loadImage uploads a freshly picked wallpaper. Images that fail to load
// are skipped in list order; it only fails once every candidate has.
func (e *Engine) loadImage() (*boundImage, error) {
	path := e.pickNextPath()
	start := indexOf(e.wallpapers, path)

	var lastErr error
	for i := range len(e.wallpapers) {
		candidate := e.wallpapers[(start+i)%len(e.wallpapers)]
		if e.current != nil && candidate == e.current.path {
			continue
		}

		tex, err := e.renderer.LoadTexture(candidate)
		if err != nil {
			e.logger.Warnf("Failed to load %v: %v", candidate, err)
			lastErr = err
			continue
		}
		return &boundImage{path: candidate, texture: tex}, nil
	}

	return nil, fmt.Errorf("no loadable wallpaper: %w", lastErr)
}

func indexOf(paths []string, path string) int {
	for i, p := range paths {
		if p == path {
			return i
		}
	}
	return 0
}

// Status reports the current state. It must be called from the engine's
// thread; use WithObserver to follow changes from elsewhere.
func (e *Engine) Status() Status {
	s := Status{
		State:      e.state.String(),
		Wallpapers: len(e.wallpapers),
	}
	if e.current != nil {
		s.Wallpaper = e.current.path
	}
	if e.next != nil {
		s.Next = e.next.path
	}
	if e.session != nil {
		s.Transition = e.session.effect
	}
	return s
}

func (e *Engine) State() State {
	return e.state
}

// release frees the GPU objects the engine created.
func (e *Engine) release() {
	if e.session != nil {
		e.renderer.DeleteProgram(e.session.program)
		e.session = nil
	}
	if e.current != nil {
		e.renderer.DeleteTexture(e.current.texture)
		e.current = nil
	}
	if e.next != nil {
		e.renderer.DeleteTexture(e.next.texture)
		e.next = nil
	}
}

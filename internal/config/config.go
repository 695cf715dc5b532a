// Package config resolves glpaper's settings from defaults, command line
// flags and the TOML config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/matjam/glpaper/internal/types"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Keys shared by the command line flags and the config file.
const (
	KeyConfig      = "config"
	KeyDirectory   = "directory"
	KeyBGColor     = "bg-color"
	KeyTransitions = "transitions"
	KeyDuration    = "duration"
	KeyMinutes     = "minutes"
)

const (
	DefaultTransitionDuration = 3000 * time.Millisecond
	DefaultDisplayDuration    = 120 * time.Minute
)

var ErrNoDirectory = errors.New("wallpaper directory was not provided")

// Settings is a snapshot of the resolved configuration.
type Settings struct {
	Directory          string        `json:"directory"`
	BackgroundColor    types.Color   `json:"bg_color"`
	Transitions        []string      `json:"transitions"`
	TransitionDuration time.Duration `json:"transition_duration"`
	DisplayDuration    time.Duration `json:"display_duration"`
}

// fields explicitly given on the command line
type overrides struct {
	directory   bool
	bgColor     bool
	transitions bool
	duration    bool
	minutes     bool
}

type Provider struct {
	mu       sync.RWMutex
	path     string
	settings Settings
	set      overrides
	logger   *log.Logger
}

type Option func(*Provider)

func WithLogger(logger *log.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

// WithConfigFile overrides the config file location.
func WithConfigFile(path string) Option {
	return func(p *Provider) {
		p.path = path
	}
}

// New resolves the initial configuration. Values set in flags win over the
// config file; flags is usually a viper instance bound to the command's
// pflags, so IsSet only reports flags the user actually passed.
func New(flags *viper.Viper, opts ...Option) (*Provider, error) {
	p := &Provider{
		settings: Settings{
			BackgroundColor:    types.DefaultBackground,
			TransitionDuration: DefaultTransitionDuration,
			DisplayDuration:    DefaultDisplayDuration,
		},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if flags == nil {
		flags = viper.New()
	}

	if p.path == "" && flags.IsSet(KeyConfig) {
		path := CanonicalPath(flags.GetString(KeyConfig))
		if _, err := os.Stat(path); err == nil {
			p.path = path
		} else {
			p.logger.Warnf("Config file %v does not exist, using the default location", path)
		}
	}
	if p.path == "" {
		p.path = DefaultPath()
	}

	p.applyFlags(flags)

	if err := p.load(false); err != nil {
		return nil, err
	}

	return p, nil
}

// DefaultPath returns $XDG_CONFIG_HOME/glpaper/glpaper.toml, falling back
// to ~/.config.
func DefaultPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, "glpaper", "glpaper.toml")
}

func (p *Provider) applyFlags(flags *viper.Viper) {
	if flags.IsSet(KeyDirectory) {
		if dir, ok := p.existingDirectory(flags.GetString(KeyDirectory)); ok {
			p.settings.Directory = dir
			p.set.directory = true
		}
	}

	if flags.IsSet(KeyBGColor) {
		color, err := ParseColor(flags.Get(KeyBGColor))
		if err != nil {
			p.logger.Warnf("Invalid bg-color given, must be in RGBA format ie. --bg-color=0.0,0.0,0.0,1.0: %v", err)
		} else {
			p.settings.BackgroundColor = color
			p.set.bgColor = true
		}
	}

	if flags.IsSet(KeyTransitions) {
		p.settings.Transitions = cleanNames(flags.GetStringSlice(KeyTransitions))
		p.set.transitions = len(p.settings.Transitions) > 0
	}

	if flags.IsSet(KeyDuration) {
		p.settings.TransitionDuration = time.Duration(flags.GetInt(KeyDuration)) * time.Millisecond
		p.set.duration = true
	}

	if flags.IsSet(KeyMinutes) {
		p.settings.DisplayDuration = time.Duration(flags.GetInt(KeyMinutes)) * time.Minute
		p.set.minutes = true
	}
}

// Reload re-reads the config file. With overwrite every field the file
// defines replaces the current value, including ones given on the command
// line; without it only fields the command line left alone are merged.
func (p *Provider) Reload(overwrite bool) error {
	return p.load(overwrite)
}

func (p *Provider) load(overwrite bool) error {
	file := viper.New()
	file.SetConfigFile(p.path)
	file.SetConfigType("toml")

	if err := file.ReadInConfig(); err != nil {
		if !errors.Is(err, os.ErrNotExist) || overwrite {
			return fmt.Errorf("reading config file %v: %w", p.path, err)
		}
		p.logger.Warnf("Config file %v not found, using defaults", p.path)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	s := p.settings

	if (overwrite || s.Directory == "") && file.IsSet(KeyDirectory) {
		if dir, ok := p.existingDirectory(file.GetString(KeyDirectory)); ok {
			s.Directory = dir
		}
	}

	if (overwrite || !p.set.bgColor) && file.IsSet(KeyBGColor) {
		color, err := ParseColor(file.Get(KeyBGColor))
		if err != nil {
			p.logger.Warnf("Invalid bg-color in config, must be in RGBA format ie. bg-color = [0.0, 0.0, 0.0, 1.0]: %v", err)
		} else {
			s.BackgroundColor = color
		}
	}

	if (overwrite || !p.set.transitions) && file.IsSet(KeyTransitions) {
		s.Transitions = cleanNames(file.GetStringSlice(KeyTransitions))
	}

	if (overwrite || !p.set.duration) && file.IsSet(KeyDuration) {
		ms, err := cast.ToIntE(file.Get(KeyDuration))
		if err != nil {
			p.logger.Warnf("Invalid duration in config: %v", err)
		} else {
			s.TransitionDuration = time.Duration(ms) * time.Millisecond
		}
	}

	if (overwrite || !p.set.minutes) && file.IsSet(KeyMinutes) {
		minutes, err := cast.ToIntE(file.Get(KeyMinutes))
		if err != nil {
			p.logger.Warnf("Invalid minutes in config: %v", err)
		} else {
			s.DisplayDuration = time.Duration(minutes) * time.Minute
		}
	}

	if s.Directory == "" {
		return ErrNoDirectory
	}

	p.settings = s
	return nil
}

func (p *Provider) existingDirectory(path string) (string, bool) {
	dir := CanonicalPath(path)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		p.logger.Warnf("Wallpaper directory %v does not exist", dir)
		return "", false
	}
	return dir, true
}

// ParseColor accepts four RGBA components in the 0-1 range, either as a
// list or as a comma separated string.
func ParseColor(raw any) (types.Color, error) {
	var parts []any
	switch v := raw.(type) {
	case string:
		for _, s := range strings.Split(strings.Trim(v, "[] "), ",") {
			parts = append(parts, strings.TrimSpace(s))
		}
	case []string:
		for _, s := range v {
			parts = append(parts, s)
		}
	case []float64:
		for _, f := range v {
			parts = append(parts, f)
		}
	case []float32:
		for _, f := range v {
			parts = append(parts, f)
		}
	case []any:
		parts = v
	default:
		return types.Color{}, fmt.Errorf("unsupported color value %T", raw)
	}

	if len(parts) != 4 {
		return types.Color{}, fmt.Errorf("expected 4 components, got %d", len(parts))
	}

	var c types.Color
	for i, part := range parts {
		f, err := cast.ToFloat64E(part)
		if err != nil {
			return types.Color{}, fmt.Errorf("component %d: %w", i, err)
		}
		if f < 0 || f > 1 {
			return types.Color{}, fmt.Errorf("component %d out of range: %v", i, f)
		}
		c[i] = float32(f)
	}
	return c, nil
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" && !slices.Contains(out, name) {
			out = append(out, name)
		}
	}
	return out
}

// CanonicalPath expands a leading ~ to $HOME.
func CanonicalPath(path string) string {
	if path == "" {
		return ""
	}

	if path == "~" {
		return os.Getenv("HOME")
	}

	if strings.HasPrefix(path, "~/") {
		homeDir := os.Getenv("HOME")
		return strings.Replace(path, "~", homeDir, 1)
	}

	return path
}

func (p *Provider) ConfigFileUsed() string {
	return p.path
}

func (p *Provider) Snapshot() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s := p.settings
	s.Transitions = slices.Clone(s.Transitions)
	return s
}

func (p *Provider) BackgroundColor() types.Color {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings.BackgroundColor
}

func (p *Provider) EnabledTransitions() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Clone(p.settings.Transitions)
}

func (p *Provider) TransitionDuration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings.TransitionDuration
}

func (p *Provider) DisplayDuration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings.DisplayDuration
}

func (p *Provider) WallpaperDirectory() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.settings.Directory
}

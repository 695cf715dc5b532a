// Package transitions holds the GLSL transition effects and the shader
// template they are composed into.
package transitions

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"
)

// Fallback is the effect used whenever another one cannot be found or
// compiled. Every registry must contain it.
const Fallback = "fade"

var ErrNotFound = errors.New("transition not found")

//go:embed glsl/*.glsl
var sources embed.FS

// Registry maps effect names to the GLSL source of their
// `vec4 transition(vec2 uv)` function. It is read-only once built.
type Registry struct {
	effects map[string]string
	names   []string
}

// New builds a registry from a name to source map.
func New(effects map[string]string) (*Registry, error) {
	if _, ok := effects[Fallback]; !ok {
		return nil, fmt.Errorf("registry is missing the %q transition", Fallback)
	}

	r := &Registry{
		effects: make(map[string]string, len(effects)),
		names:   make([]string, 0, len(effects)),
	}
	for name, src := range effects {
		r.effects[name] = src
		r.names = append(r.names, name)
	}
	slices.Sort(r.names)

	return r, nil
}

// Load builds a registry from every *.glsl file in dir of fsys, naming each
// effect after its file name without the extension.
func Load(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("reading transitions: %w", err)
	}

	effects := make(map[string]string, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".glsl" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading transition %s: %w", entry.Name(), err)
		}
		effects[strings.TrimSuffix(entry.Name(), ".glsl")] = string(data)
	}

	return New(effects)
}

// Default returns the registry of the embedded effects.
var Default = sync.OnceValue(func() *Registry {
	r, err := Load(sources, "glsl")
	if err != nil {
		// the embedded files are part of the binary
		panic(err)
	}
	return r
})

func (r *Registry) Lookup(name string) (string, error) {
	src, ok := r.effects[name]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return src, nil
}

// Names returns the registered effect names in sorted order.
func (r *Registry) Names() []string {
	return slices.Clone(r.names)
}

func (r *Registry) Has(name string) bool {
	_, ok := r.effects[name]
	return ok
}

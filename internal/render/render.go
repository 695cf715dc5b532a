// Package render defines what the transition engine needs from a GPU
// backend.
package render

import (
	"errors"

	"github.com/matjam/glpaper/internal/types"
)

var ErrCompile = errors.New("shader compilation failed")

// Program is a linked shader program handle.
type Program uint32

// Texture is an uploaded image handle.
type Texture uint32

// Renderer compiles transition programs, uploads images and draws the
// fullscreen quad. All methods must be called from the thread that owns
// the rendering context.
type Renderer interface {
	Compile(vertexSrc, fragmentSrc string) (Program, error) // Compile and link, errors wrap ErrCompile
	UseProgram(p Program)
	DeleteProgram(p Program)

	SetInt(p Program, name string, v int32)
	SetFloat(p Program, name string, v float32)
	SetVec2(p Program, name string, v [2]float32)
	SetVec4(p Program, name string, v [4]float32)

	LoadTexture(path string) (Texture, error) // Decode an image file and upload it
	DeleteTexture(t Texture)
	Bind(t Texture, unit int)

	Clear(c types.Color)
	Draw()    // Draw the fullscreen quad with the current program
	Present() // Swap buffers
	Size() (int, int)
	Cleanup() // Release the window and context
}

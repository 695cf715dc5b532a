package glrender

/*
#cgo LDFLAGS: -lX11 -lXfixes
#include <X11/Xlib.h>
#include <X11/Xatom.h>
#include <X11/Xutil.h>
#include <X11/extensions/Xfixes.h>
#include <X11/extensions/shapeconst.h>
#include <stdlib.h>

static void set_window_override_redirect(Display* display, Window win) {
    XSetWindowAttributes attrs;
    attrs.override_redirect = True;
    XChangeWindowAttributes(display, win, CWOverrideRedirect, &attrs);
}

static void set_net_wm_window_type_desktop(Display* display, Window win) {
    Atom net_wm_window_type = XInternAtom(display, "_NET_WM_WINDOW_TYPE", False);
    Atom net_wm_window_type_desktop = XInternAtom(display, "_NET_WM_WINDOW_TYPE_DESKTOP", False);
    XChangeProperty(display, win, net_wm_window_type, XA_ATOM, 32, PropModeReplace, (unsigned char *)&net_wm_window_type_desktop, 1);
}

// An empty input region lets every click fall through to the windows below.
static void set_input_passthrough(Display* display, Window win) {
    XserverRegion region = XFixesCreateRegion(display, NULL, 0);
    XFixesSetWindowShapeRegion(display, win, ShapeInput, 0, 0, region);
    XFixesDestroyRegion(display, region);
}

static void map_lowered(Display* display, Window win) {
    XMapWindow(display, win);
    XLowerWindow(display, win);
    XFlush(display);
}
*/
import "C"

import (
	"fmt"
	"image"
	"os"
	"runtime"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/go-gl/gl/v3.3-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/matjam/glpaper/internal/render"
	"github.com/matjam/glpaper/internal/types"
)

// GLRenderer draws into an undecorated, click-through desktop window that
// covers the primary monitor and sits below every other window.
type GLRenderer struct {
	win     *glfw.Window
	display *C.Display // separate Xlib connection used for the window hints
	width   int
	height  int

	vao uint32
	vbo uint32
}

var _ render.Renderer = (*GLRenderer)(nil)

// NewRenderer creates the window and a GL 3.3 core context and makes it
// current on the calling OS thread.
func NewRenderer() (*GLRenderer, error) {
	runtime.LockOSThread() // Required: OpenGL contexts must be accessed from a single OS thread

	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init failed: %w", err)
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 3)
	glfw.WindowHint(glfw.ContextVersionMinor, 3)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.Decorated, glfw.False)
	glfw.WindowHint(glfw.Focused, glfw.False)
	glfw.WindowHint(glfw.Floating, glfw.False)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	glfw.WindowHint(glfw.Visible, glfw.False) // mapped by hand once the hints are set

	monitor := glfw.GetPrimaryMonitor()
	if monitor == nil {
		glfw.Terminate()
		return nil, fmt.Errorf("no monitor found")
	}
	vidMode := monitor.GetVideoMode()

	win, err := glfw.CreateWindow(vidMode.Width, vidMode.Height, "glpaper", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window failed: %w", err)
	}

	display := C.XOpenDisplay(nil)
	if display == nil {
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("unable to open X11 display")
	}
	displayWindow := C.Window(win.GetX11Window())
	C.set_window_override_redirect(display, displayWindow)
	C.set_net_wm_window_type_desktop(display, displayWindow)
	C.set_input_passthrough(display, displayWindow)
	C.map_lowered(display, displayWindow)

	win.MakeContextCurrent()

	if err := gl.Init(); err != nil {
		C.XCloseDisplay(display)
		win.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init failed: %w", err)
	}

	// adaptive vsync where the driver has it
	if glfw.ExtensionSupported("GLX_EXT_swap_control_tear") {
		glfw.SwapInterval(-1)
	} else {
		glfw.SwapInterval(1)
	}

	width, height := win.GetFramebufferSize()
	gl.Viewport(0, 0, int32(width), int32(height))

	r := &GLRenderer{
		win:     win,
		display: display,
		width:   width,
		height:  height,
	}
	r.setupQuad()

	log.Debugf("OpenGL %v, %vx%v", gl.GoStr(gl.GetString(gl.VERSION)), width, height)
	return r, nil
}

func (r *GLRenderer) setupQuad() {
	vertices := []float32{
		-1.0, -1.0,
		-1.0, 1.0,
		1.0, -1.0,
		1.0, 1.0,
	}

	gl.GenVertexArrays(1, &r.vao)
	gl.BindVertexArray(r.vao)

	gl.GenBuffers(1, &r.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	// position is layout(location = 0) in the vertex shader
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 0, gl.PtrOffset(0))
}

func (r *GLRenderer) Size() (int, int) {
	return r.width, r.height
}

func (r *GLRenderer) Compile(vertexSrc, fragmentSrc string) (render.Program, error) {
	vertexShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertexShader)

	fragmentShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER)
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragmentShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: link: %s", render.ErrCompile, strings.TrimRight(infoLog, "\x00"))
	}

	return render.Program(program), nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)

		shaderTypeStr := "vertex"
		if shaderType == gl.FRAGMENT_SHADER {
			shaderTypeStr = "fragment"
		}
		return 0, fmt.Errorf("%w: %s: %s", render.ErrCompile, shaderTypeStr, strings.TrimRight(infoLog, "\x00"))
	}
	return shader, nil
}

func (r *GLRenderer) UseProgram(p render.Program) {
	gl.UseProgram(uint32(p))
}

func (r *GLRenderer) DeleteProgram(p render.Program) {
	if p != 0 {
		gl.DeleteProgram(uint32(p))
	}
}

func uniform(p render.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00"))
}

func (r *GLRenderer) SetInt(p render.Program, name string, v int32) {
	gl.Uniform1i(uniform(p, name), v)
}

func (r *GLRenderer) SetFloat(p render.Program, name string, v float32) {
	gl.Uniform1f(uniform(p, name), v)
}

func (r *GLRenderer) SetVec2(p render.Program, name string, v [2]float32) {
	gl.Uniform2f(uniform(p, name), v[0], v[1])
}

func (r *GLRenderer) SetVec4(p render.Program, name string, v [4]float32) {
	gl.Uniform4f(uniform(p, name), v[0], v[1], v[2], v[3])
}

// LoadTexture decodes the image at path and uploads it bottom row first,
// which is the order GL samples in.
func (r *GLRenderer) LoadTexture(path string) (render.Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open image %v: %w", path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return 0, fmt.Errorf("failed to decode image %v: %w", path, err)
	}
	rgba := render.FlipVertical(img)

	var tex uint32
	gl.GenTextures(1, &tex)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, tex)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(rgba.Rect.Dx()), int32(rgba.Rect.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	return render.Texture(tex), nil
}

func (r *GLRenderer) DeleteTexture(t render.Texture) {
	if t != 0 {
		id := uint32(t)
		gl.DeleteTextures(1, &id)
	}
}

func (r *GLRenderer) Bind(t render.Texture, unit int) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (r *GLRenderer) Clear(c types.Color) {
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT)
}

func (r *GLRenderer) Draw() {
	gl.BindVertexArray(r.vao)
	gl.DrawArrays(gl.TRIANGLE_STRIP, 0, 4)
}

func (r *GLRenderer) Present() {
	r.win.SwapBuffers()
	glfw.PollEvents()
}

func (r *GLRenderer) Cleanup() {
	if r.vbo != 0 {
		gl.DeleteBuffers(1, &r.vbo)
	}
	if r.vao != 0 {
		gl.DeleteVertexArrays(1, &r.vao)
	}
	if r.display != nil {
		C.XCloseDisplay(r.display)
		r.display = nil
	}
	if r.win != nil {
		r.win.Destroy()
		r.win = nil
	}
	glfw.Terminate()
}

package transitions

import "strings"

// VertexSource draws a fullscreen quad from attribute 0 and hands the
// fragment stage uv coordinates in the 0-1 range.
const VertexSource = `#version 330 core
layout (location = 0) in vec2 position;
out vec2 uv;
void main(void) {
  gl_Position = vec4(position, 0.0, 1.0);
  uv = position * 0.5 + 0.5;
}
`

const bodyMarker = "{{transition}}"

const fragmentTemplate = `#version 330 core
in vec2 uv;
out vec4 FragColor;
uniform sampler2D from;
uniform sampler2D to;
uniform float progress;
uniform float ratio;

vec4 getFromColor(vec2 _uv) {
  return texture(from, _uv);
}

vec4 getToColor(vec2 _uv) {
  return texture(to, _uv);
}

` + bodyMarker + `

void main() {
  FragColor = transition(uv);
}
`

// Compose returns the complete fragment shader for an effect body.
func Compose(body string) string {
	return strings.Replace(fragmentTemplate, bodyMarker, body, 1)
}

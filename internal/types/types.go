package types

import "fmt"

// Color is an RGBA color with components in the 0-1 range.
type Color [4]float32

var DefaultBackground = Color{0.08, 0.08, 0.08, 1.0}

func (c Color) String() string {
	return fmt.Sprintf("%.2f,%.2f,%.2f,%.2f", c[0], c[1], c[2], c[3])
}

type CommandType string

const (
	CommandNone   CommandType = ""
	CommandNext   CommandType = "next"
	CommandReload CommandType = "reload"
	CommandStop   CommandType = "stop"
	CommandStatus CommandType = "status"
)

type Command struct {
	Type CommandType `json:"type"`
}

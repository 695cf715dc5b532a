package glpaper

import _ "embed"

//go:embed VERSION
var Version string

//go:embed glpaper.toml
var DefaultConfig string

// Package configs provides the embedded configuration template for
// visualoom. The template is embedded at build time so `visualoom
// config init` works in every distribution, source or binary.
package configs

import _ "embed"

// ConfigTemplate is written by `visualoom config init` to
// ~/.config/visualoom/config.yaml. Every value shown is the default;
// uncomment to override.
//
//go:embed config.example.yaml
var ConfigTemplate string

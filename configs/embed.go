// Package configs holds the embedded configuration data for the group chat.
// The files are loaded once at startup and treated as read-only afterwards.
package configs

import _ "embed"

//go:embed personas.yaml
var Personas []byte

//go:embed relationships.yaml
var Relationships []byte

//go:embed secrets.yaml
var Secrets []byte

//go:embed topics.yaml
var Topics []byte

//go:embed soul.yaml
var Soul []byte

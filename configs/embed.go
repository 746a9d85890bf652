// Package configs provides embedded configuration templates for pagemark.
//
// Templates are embedded at build time so `pagemark config init` works from
// source builds and binary releases alike.
//
// Template files:
//   - user-config.example.yaml: machine-wide defaults (~/.config/pagemark/config.yaml)
//   - project-config.example.yaml: per-directory settings (.pagemark.yaml)
package configs

import _ "embed"

// UserConfigTemplate is written by `pagemark config init`.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is written by `pagemark config init --project`.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string

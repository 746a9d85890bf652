// Package logging configures structured logging for pagemark.
//
// Without --debug, logs go to stderr as text at the configured level. With
// --debug, JSON logs are also written to ~/.pagemark/logs/pagemark.log with
// size-based rotation.
package logging

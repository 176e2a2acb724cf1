// Package component defines the lifecycle interfaces shared by voicemap's
// infrastructure pieces: the HTTP server and the recording storage.
//
// Components are registered with the bootstrap package, started in
// registration order and stopped in reverse.
//
// # Interfaces
//
//   - Component: lifecycle (Start/Stop) and health reporting
//   - Describable: one-line startup summary descriptions
//   - RouteProvider: HTTP routes for the startup summary
package component

// Package server implements the core of the chat service: the session
// registry and broadcast hub, the per-connection lifecycle controller, and
// the TCP and WebSocket front ends that feed connections into it.
//
// The implementation is organized into specialized files for configuration,
// the hub, sessions, transports, and HTTP plumbing to keep the codebase
// maintainable and testable as the project grows.
package server

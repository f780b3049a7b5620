// Package session provides the orchestration layer between the panel
// protocol and the capture, storage, and speech provider components.
// It owns the process-wide credential state and performs one operation
// per inbound panel command.
package session

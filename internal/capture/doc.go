// Package capture manages the lifecycle of the single active recording.
// It accumulates streamed PCM chunks from a pluggable input source in
// arrival order and finalizes stopped captures into stored WAV recordings.
package capture

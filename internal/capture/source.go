package capture

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
)

// Source abstracts the platform audio input. Start opens the input at the
// given sample rate and returns a channel of raw PCM chunks in capture
// order; the channel is closed when the input ends. Stop halts the input.
type Source interface {
	Start(sampleRate int) (<-chan []byte, error)
	Stop() error
}

// readChunkSize is the size of reads from the recorder's stdout.
const readChunkSize = 4096

// RecorderSource captures microphone audio by spawning a command-line
// recorder (sox or arecord) and draining raw PCM from its stdout.
type RecorderSource struct {
	command string

	cmd *exec.Cmd
	mu  sync.Mutex
}

// NewRecorderSource creates a source backed by the given recorder binary
func NewRecorderSource(command string) *RecorderSource {
	return &RecorderSource{command: command}
}

// recorderArgs builds the argument list for the configured recorder binary.
// Output is always raw signed 16-bit little-endian mono PCM on stdout.
func recorderArgs(command string, sampleRate int) []string {
	switch command {
	case "arecord":
		return []string{
			"-q",
			"-f", "S16_LE",
			"-r", fmt.Sprintf("%d", sampleRate),
			"-c", "1",
			"-t", "raw",
		}
	default: // sox and compatible front-ends
		return []string{
			"-q",
			"-d",
			"-t", "raw",
			"-r", fmt.Sprintf("%d", sampleRate),
			"-c", "1",
			"-b", "16",
			"-e", "signed-integer",
			"-",
		}
	}
}

// Start spawns the recorder process and begins draining its stdout.
// A missing recorder binary is reported as ErrDeviceUnavailable so the
// caller can tell the user to install it.
func (r *RecorderSource) Start(sampleRate int) (<-chan []byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return nil, fmt.Errorf("recorder source already started")
	}

	cmd := exec.Command(r.command, recorderArgs(r.command, sampleRate)...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open recorder stdout: %w", err)
	}

	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("recorder command %q not installed: %w", r.command, ErrDeviceUnavailable)
		}
		return nil, fmt.Errorf("failed to start recorder %q: %w", r.command, err)
	}

	r.cmd = cmd

	chunks := make(chan []byte, 64)
	go drainPCM(stdout, chunks)

	return chunks, nil
}

// drainPCM reads raw PCM from the recorder's stdout until it closes,
// forwarding each read as one chunk. Closes the chunk channel on exit.
func drainPCM(stdout io.Reader, chunks chan<- []byte) {
	defer close(chunks)

	for {
		buf := make([]byte, readChunkSize)
		n, err := stdout.Read(buf)
		if n > 0 {
			chunks <- buf[:n]
		}
		if err != nil {
			return
		}
	}
}

// Stop terminates the recorder process. The stdout drain goroutine sees
// EOF and closes the chunk channel.
func (r *RecorderSource) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return nil
	}

	cmd := r.cmd
	r.cmd = nil

	if cmd.Process != nil {
		_ = cmd.Process.Kill()
	}

	// The recorder is killed, so a non-zero exit is expected here
	_ = cmd.Wait()

	return nil
}

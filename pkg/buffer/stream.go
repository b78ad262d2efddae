package buffer

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	_ io.Reader = (*Stream)(nil)
	_ io.Writer = (*Stream)(nil)
	_ io.Closer = (*Stream)(nil)
	_ io.Seeker = (*Stream)(nil)
)

// Stream is a byte stream backed by a BlockBuffer. It bridges push-style
// producers to pull-style consumers: one goroutine writes, another reads,
// and the fixed capacity bounds memory use however large the transfer is.
//
// Beyond the buffer operations, Stream reports its read position and carries
// an optional estimated total length. The estimate is purely informational,
// for progress display; it has no effect on blocking or end-of-stream
// detection.
type Stream struct {
	*BlockBuffer[byte]

	estMu  sync.Mutex
	estLen int64
}

// NewStream creates a Stream with the specified buffer capacity.
// Capacities below 1 are raised to 1. The estimated length starts at -1
// (unknown).
func NewStream(capacity int) *Stream {
	return &Stream{
		BlockBuffer: BlockN[byte](capacity),
		estLen:      -1,
	}
}

// Position returns the stream's read position: the total number of bytes
// consumed so far.
func (s *Stream) Position() int64 {
	return s.TotalRead()
}

// Seek always fails wrapping errors.ErrUnsupported; the stream is not
// seekable.
func (s *Stream) Seek(offset int64, whence int) (int64, error) {
	return 0, fmt.Errorf("buffer: seek on stream: %w", errors.ErrUnsupported)
}

// SetEstimatedLength records a hint for the total size of the stream, or -1
// for unknown. The hint is independent of the bytes actually transferred.
func (s *Stream) SetEstimatedLength(n int64) {
	s.estMu.Lock()
	s.estLen = n
	s.estMu.Unlock()
}

// EstimatedLength returns the estimated total size of the stream, or -1 when
// unknown.
func (s *Stream) EstimatedLength() int64 {
	s.estMu.Lock()
	defer s.estMu.Unlock()
	return s.estLen
}

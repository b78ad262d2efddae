// Package buffer provides a bounded, blocking circular buffer for bridging
// one producer goroutine to one consumer goroutine.
//
// The core type is BlockBuffer: a fixed-capacity circular buffer that blocks
// writers when full and readers when empty, giving predictable memory usage
// and natural backpressure. Data is read in exactly the order it was
// written; a write larger than the capacity becomes visible to the reader
// incrementally as space frees up.
//
// Shutdown is split into three distinct operations:
//
//   - CloseWrite: graceful end-of-stream. No more writes are accepted,
//     buffered data stays readable, then reads return io.EOF.
//   - CloseWithError: like CloseWrite, but relays an error to the reader,
//     which observes it exactly as if it came from the underlying source.
//   - Close: hard teardown from either side. Every blocked and future
//     operation fails with ErrClosed.
//
// ReadContext and WriteContext add cancellation: a blocked call unblocks
// promptly when the context is cancelled or its deadline passes.
//
// Stream wraps a byte BlockBuffer with stream niceties: a read position,
// a rejected Seek, and an estimated-length hint for progress display.
//
// Example usage:
//
//	s := buffer.NewStream(4096)
//
//	go func() {
//		defer s.CloseWrite()
//		for chunk := range produce() {
//			if _, err := s.Write(chunk); err != nil {
//				return
//			}
//		}
//	}()
//
//	data, err := io.ReadAll(s)
//
// The buffer supports exactly one producer and one consumer at a time;
// multiple concurrent writers or readers are outside its contract.
package buffer

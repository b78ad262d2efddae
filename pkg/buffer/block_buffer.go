package buffer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
)

// ErrClosed is returned by all operations on a buffer that has been closed
// with Close. Unlike CloseWrite, which only ends the stream, Close tears the
// buffer down for both sides permanently.
var ErrClosed = errors.New("buffer: closed")

// ErrIteratorDone is returned by Next when iteration is complete.
var ErrIteratorDone = errors.New("iterator done")

// BlockBuffer is a fixed-capacity circular buffer that implements io.Reader
// and io.Writer interfaces. It blocks when full or empty, providing
// predictable memory usage and backpressure between a producer and a
// consumer.
//
// The buffer tracks the valid region with a start index and a length, both
// guarded by a single mutex with two condition variables: dataAvail wakes
// readers blocked on an empty buffer, spaceAvail wakes writers blocked on a
// full one. Wrap-around is handled by copying one contiguous segment per
// pass, so no scratch buffer is ever needed.
//
// Exactly one goroutine may write and one may read at a time. Concurrent
// writers or concurrent readers are not supported.
type BlockBuffer[T any] struct {
	dataAvail  *sync.Cond
	spaceAvail *sync.Cond

	mu         sync.Mutex
	buf        []T
	start      int // index of first unconsumed element, in [0, cap)
	length     int // unconsumed element count, in [0, cap]
	readTotal  int64
	writeTotal int64
	closeWrite bool
	relayErr   error
	closed     bool
}

// Block creates a new BlockBuffer using the provided slice as the underlying
// storage. The capacity is the length of the slice; a nil or empty slice is
// replaced with a single-element one.
func Block[T any](buf []T) *BlockBuffer[T] {
	if len(buf) == 0 {
		buf = make([]T, 1)
	}
	v := &BlockBuffer[T]{
		buf: buf,
	}
	v.dataAvail = sync.NewCond(&v.mu)
	v.spaceAvail = sync.NewCond(&v.mu)
	return v
}

// BlockN creates a new BlockBuffer with the specified capacity.
// Capacities below 1 are raised to 1.
func BlockN[T any](size int) *BlockBuffer[T] {
	if size < 1 {
		size = 1
	}
	return Block(make([]T, size))
}

// Write writes data from the provided slice to the buffer.
//
// This method implements the io.Writer interface. It blocks whenever the
// buffer is full and resumes as the reader drains it, so a write larger than
// the capacity completes in several passes while the reader observes the
// data incrementally. Element order is preserved across passes.
//
// Returns the number of elements written and any error encountered:
// ErrClosed after Close, io.ErrClosedPipe after CloseWrite or
// CloseWithError.
func (bb *BlockBuffer[T]) Write(p []T) (int, error) {
	return bb.write(nil, p)
}

// WriteContext is Write with cancellation. A blocked write unblocks promptly
// when ctx is cancelled or its deadline passes, returning elements written so
// far together with ctx.Err().
func (bb *BlockBuffer[T]) WriteContext(ctx context.Context, p []T) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	stop := context.AfterFunc(ctx, bb.wakeAll)
	defer stop()
	return bb.write(ctx, p)
}

func (bb *BlockBuffer[T]) write(ctx context.Context, p []T) (int, error) {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	wn := 0
	for len(p) > 0 {
		if err := bb.waitWritableLocked(ctx); err != nil {
			return wn, err
		}

		// Contiguous free segment starting at the write position. When the
		// buffer drains completely the start index snaps back to 0 so the
		// whole storage is one segment again.
		if bb.length == 0 {
			bb.start = 0
		}
		writePos := bb.start + bb.length
		if writePos >= len(bb.buf) {
			writePos -= len(bb.buf)
		}
		free := len(bb.buf) - bb.length
		contig := len(bb.buf) - writePos
		if contig > free {
			contig = free
		}
		if contig > len(p) {
			contig = len(p)
		}

		n := copy(bb.buf[writePos:writePos+contig], p)
		bb.length += n
		bb.writeTotal += int64(n)
		p = p[n:]
		wn += n
		bb.dataAvail.Signal()
	}
	return wn, nil
}

// Read reads data from the buffer into the provided slice.
//
// This method implements the io.Reader interface. It blocks until at least
// one element is available or the stream ends, then copies as much buffered
// data as fits, crossing the physical wrap point in two segments when
// necessary.
//
// Order of observations: ErrClosed after Close, then any error set with
// CloseWithError (surfaced on this and every subsequent call), then io.EOF
// once CloseWrite has been called and the buffer is drained.
func (bb *BlockBuffer[T]) Read(p []T) (int, error) {
	return bb.read(nil, p)
}

// ReadContext is Read with cancellation. A blocked read unblocks promptly
// when ctx is cancelled or its deadline passes, returning ctx.Err().
func (bb *BlockBuffer[T]) ReadContext(ctx context.Context, p []T) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	stop := context.AfterFunc(ctx, bb.wakeAll)
	defer stop()
	return bb.read(ctx, p)
}

func (bb *BlockBuffer[T]) read(ctx context.Context, p []T) (int, error) {
	bb.mu.Lock()
	defer bb.mu.Unlock()

	if err := bb.waitReadableLocked(ctx); err != nil {
		return 0, err
	}

	n := 0
	for n < len(p) && bb.length > 0 {
		contig := len(bb.buf) - bb.start
		if contig > bb.length {
			contig = bb.length
		}
		c := copy(p[n:], bb.buf[bb.start:bb.start+contig])
		bb.start += c
		if bb.start == len(bb.buf) {
			bb.start = 0
		}
		bb.length -= c
		n += c
	}
	bb.readTotal += int64(n)
	bb.spaceAvail.Signal()
	return n, nil
}

// waitWritableLocked blocks until the buffer has free space, re-checking the
// terminal flags after every wakeup.
func (bb *BlockBuffer[T]) waitWritableLocked(ctx context.Context) error {
	for {
		if bb.closed {
			return ErrClosed
		}
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if bb.relayErr != nil {
			return fmt.Errorf("buffer: write to closed buffer: %w", bb.relayErr)
		}
		if bb.closeWrite {
			return fmt.Errorf("buffer: write to closed buffer: %w", io.ErrClosedPipe)
		}
		if bb.length < len(bb.buf) {
			return nil
		}
		bb.spaceAvail.Wait()
	}
}

// waitReadableLocked blocks until data is available, re-checking the terminal
// flags after every wakeup. An error relayed with CloseWithError preempts
// buffered data.
func (bb *BlockBuffer[T]) waitReadableLocked(ctx context.Context) error {
	for {
		if bb.closed {
			return ErrClosed
		}
		if ctx != nil {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if bb.relayErr != nil {
			return fmt.Errorf("buffer: read from closed buffer: %w", bb.relayErr)
		}
		if bb.length > 0 {
			return nil
		}
		if bb.closeWrite {
			return io.EOF
		}
		bb.dataAvail.Wait()
	}
}

func (bb *BlockBuffer[T]) wakeAll() {
	bb.mu.Lock()
	bb.dataAvail.Broadcast()
	bb.spaceAvail.Broadcast()
	bb.mu.Unlock()
}

// Discard removes and discards up to n elements from the buffer without
// reading them. Discarded elements count as read for the purposes of the
// running totals. If n exceeds the available elements, all buffered data is
// discarded.
func (bb *BlockBuffer[T]) Discard(n int) error {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if bb.closed {
		return ErrClosed
	}
	if bb.relayErr != nil {
		return fmt.Errorf("buffer: skip from closed buffer: %w", bb.relayErr)
	}
	if n > bb.length {
		n = bb.length
	}
	if n < 0 {
		n = 0
	}
	bb.start = (bb.start + n) % len(bb.buf)
	bb.length -= n
	bb.readTotal += int64(n)
	bb.spaceAvail.Signal()
	return nil
}

// Add adds a single element to the buffer, blocking while the buffer is
// full. It is the single-element counterpart of Write.
func (bb *BlockBuffer[T]) Add(v T) error {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if err := bb.waitWritableLocked(nil); err != nil {
		return err
	}
	if bb.length == 0 {
		bb.start = 0
	}
	writePos := bb.start + bb.length
	if writePos >= len(bb.buf) {
		writePos -= len(bb.buf)
	}
	bb.buf[writePos] = v
	bb.length++
	bb.writeTotal++
	bb.dataAvail.Signal()
	return nil
}

// Next reads and returns the next element from the buffer, blocking while
// the buffer is empty. Returns ErrIteratorDone once the write side has been
// closed and all data consumed.
func (bb *BlockBuffer[T]) Next() (v T, err error) {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if err = bb.waitReadableLocked(nil); err != nil {
		if errors.Is(err, io.EOF) {
			err = ErrIteratorDone
		}
		return
	}
	v = bb.buf[bb.start]
	bb.start++
	if bb.start == len(bb.buf) {
		bb.start = 0
	}
	bb.length--
	bb.readTotal++
	bb.spaceAvail.Signal()
	return v, nil
}

// CloseWrite closes the write side of the buffer, preventing further writes.
//
// Buffered data remains readable; once it is drained, subsequent reads
// return io.EOF. Calling CloseWrite again, or after Close, is a no-op.
func (bb *BlockBuffer[T]) CloseWrite() error {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if bb.closed || bb.closeWrite {
		return nil
	}
	bb.closeWrite = true
	bb.dataAvail.Broadcast()
	bb.spaceAvail.Broadcast()
	return nil
}

// CloseWithError closes the write side of the buffer and relays err to the
// read side: a blocked reader unblocks immediately and every subsequent read
// observes err, exactly as if it came from the true data source. A nil err
// is replaced with io.ErrClosedPipe. The first relayed error wins; calls
// after Close are no-ops.
func (bb *BlockBuffer[T]) CloseWithError(err error) error {
	if err == nil {
		err = io.ErrClosedPipe
	}
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if bb.closed || bb.relayErr != nil {
		return nil
	}
	bb.relayErr = err
	bb.closeWrite = true
	bb.dataAvail.Broadcast()
	bb.spaceAvail.Broadcast()
	return nil
}

// Close tears the buffer down for both sides.
//
// All goroutines blocked in Read, Write, Add or Next wake up and fail with
// ErrClosed, as does every subsequent operation. Close is idempotent and may
// be called from either side.
//
// This method implements the io.Closer interface.
func (bb *BlockBuffer[T]) Close() error {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if bb.closed {
		return nil
	}
	bb.closed = true
	bb.dataAvail.Broadcast()
	bb.spaceAvail.Broadcast()
	return nil
}

// Error returns the error relayed with CloseWithError, ErrClosed if the
// buffer has been closed, or nil.
func (bb *BlockBuffer[T]) Error() error {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if bb.relayErr != nil {
		return bb.relayErr
	}
	if bb.closed {
		return ErrClosed
	}
	return nil
}

// Reset discards all buffered data. The discarded elements count as read, so
// the running totals stay monotonic. Reset does not reopen a closed buffer
// and is a no-op after Close.
func (bb *BlockBuffer[T]) Reset() {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	if bb.closed {
		return
	}
	bb.readTotal += int64(bb.length)
	bb.start = 0
	bb.length = 0
	bb.spaceAvail.Broadcast()
}

// Len returns the number of unconsumed elements currently in the buffer,
// always between 0 and Cap.
func (bb *BlockBuffer[T]) Len() int {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	return bb.length
}

// Cap returns the fixed capacity of the buffer.
func (bb *BlockBuffer[T]) Cap() int {
	return len(bb.buf)
}

// TotalRead returns the total number of elements consumed from the buffer
// since creation. The counter is monotonic and never resets.
func (bb *BlockBuffer[T]) TotalRead() int64 {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	return bb.readTotal
}

// TotalWritten returns the total number of elements written to the buffer
// since creation. The counter is monotonic and stops increasing once the
// write side is closed.
func (bb *BlockBuffer[T]) TotalWritten() int64 {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	return bb.writeTotal
}

// Snapshot returns a copy of all unconsumed elements in logical order,
// without consuming them.
func (bb *BlockBuffer[T]) Snapshot() []T {
	bb.mu.Lock()
	defer bb.mu.Unlock()
	out := make([]T, bb.length)
	contig := len(bb.buf) - bb.start
	if contig > bb.length {
		contig = bb.length
	}
	n := copy(out, bb.buf[bb.start:bb.start+contig])
	copy(out[n:], bb.buf[:bb.length-n])
	return out
}

package buffer

import (
	"bytes"
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"strconv"
	"testing"
	"time"
)

func TestBlockBuffer(t *testing.T) {
	t.Run("size=1", func(t *testing.T) {
		rb := BlockN[int](1)
		done := make(chan struct{})
		producerErr := make(chan error, 1)
		go func() {
			n, err := rb.Write([]int{1, 2, 3})
			if err != nil {
				producerErr <- fmt.Errorf("write [1,2,3] with error: %w", err)
				return
			}
			if n != 3 {
				producerErr <- fmt.Errorf("write [1,2,3] with n=%d", n)
				return
			}

			<-done

			if _, err := rb.Write([]int{4}); err == nil {
				producerErr <- errors.New("write [4] expected error, but got nil")
				return
			}

			if err := rb.Add(5); err == nil {
				producerErr <- errors.New("add 5 expected error, but got nil")
				return
			}

			producerErr <- nil
		}()

		var got [1]int
		n, err := rb.Read(got[:])
		if err != nil {
			t.Errorf("read with error: %v", err)
		}
		if n != 1 {
			t.Errorf("read with n=%d", n)
		}
		if got != [1]int{1} {
			t.Errorf("got=%v", got)
		}
		v, err := rb.Next()
		if err != nil {
			t.Errorf("next with error: %v", err)
		}
		if v != 2 {
			t.Errorf("next with v=%d", v)
		}
		n, err = rb.Read(got[:])
		if err != nil {
			t.Errorf("read with error: %v", err)
		}
		if n != 1 {
			t.Errorf("read with n=%d", n)
		}
		if got != [1]int{3} {
			t.Errorf("got=%v", got)
		}
		if err := rb.CloseWrite(); err != nil {
			t.Errorf("close write with error: %v", err)
		}
		close(done)
		if err := <-producerErr; err != nil {
			t.Fatal(err)
		}
		if _, err := rb.Read(got[:]); !errors.Is(err, io.EOF) {
			t.Errorf("read after close write: %v", err)
		}
	})

	t.Run("size=2", func(t *testing.T) {
		rb := BlockN[int](2)
		done := make(chan struct{})
		producerErr := make(chan error, 1)
		go func() {
			n, err := rb.Write([]int{1, 2, 3, 4})
			if err != nil {
				producerErr <- fmt.Errorf("write [1,2,3,4] with error: %w", err)
				return
			}
			if n != 4 {
				producerErr <- fmt.Errorf("write [1,2,3,4] with n=%d", n)
				return
			}

			<-done

			if _, err := rb.Write([]int{5}); err == nil {
				producerErr <- errors.New("write [5] expected error, but got nil")
				return
			}

			producerErr <- nil
		}()

		var got [2]int
		n, err := rb.Read(got[:])
		if err != nil {
			t.Errorf("read with error: %v", err)
		}
		if n != 2 {
			t.Errorf("read with n=%d", n)
		}
		if got != [2]int{1, 2} {
			t.Errorf("got=%v", got)
		}
		v, err := rb.Next()
		if err != nil {
			t.Errorf("next with error: %v", err)
		}
		if v != 3 {
			t.Errorf("next with v=%d", v)
		}
		got = [2]int{}
		n, err = rb.Read(got[:])
		if err != nil {
			t.Errorf("read with error: %v", err)
		}
		if n != 1 {
			t.Errorf("read with n=%d", n)
		}
		if got != [2]int{4} {
			t.Errorf("got=%v", got)
		}
		if err := rb.CloseWrite(); err != nil {
			t.Errorf("close write with error: %v", err)
		}
		close(done)
		if err := <-producerErr; err != nil {
			t.Fatal(err)
		}
	})

	for i := 1; i <= 4096; i *= 2 {
		sz := i
		t.Run("large.size="+strconv.Itoa(i), func(t *testing.T) {
			rb := BlockN[byte](sz)

			data := make([]byte, 10240)
			rand.Read(data)
			go func() {
				for i := 0; i < len(data); {
					randLen := int(data[i]) + 537
					if i+randLen > len(data) {
						randLen = len(data) - i
					}
					n, err := rb.Write(data[i : i+randLen])
					if err != nil {
						rb.CloseWithError(err)
						return
					}
					if n != randLen {
						rb.CloseWithError(fmt.Errorf("write with n=%d", n))
						return
					}
					i += randLen
				}
				rb.CloseWrite()
			}()

			buf := make([]byte, 537)
			ptr := 0
			for {
				n, err := rb.Read(buf)
				if err != nil {
					if errors.Is(err, io.EOF) {
						break
					}
					t.Fatalf("read with error: %v", err)
				}
				if n == 0 {
					t.Fatal("read with n=0")
				}
				if rb.Len() > sz {
					t.Fatalf("len=%d exceeds capacity %d", rb.Len(), sz)
				}
				if !bytes.Equal(buf[:n], data[ptr:ptr+n]) {
					t.Fatalf("read with data not equal")
				}
				ptr += n
			}
			if ptr != len(data) {
				t.Fatalf("read %d bytes, want %d", ptr, len(data))
			}
		})
	}
}

// Writing and reading in a pattern that crosses the physical end of the
// storage must yield the same sequence as an unbounded queue.
func TestBlockBufferWrapAround(t *testing.T) {
	rb := BlockN[byte](8)

	if _, err := rb.Write([]byte{1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := make([]byte, 3)
	if n, err := rb.Read(got); err != nil || n != 3 {
		t.Fatalf("read: n=%d err=%v", n, err)
	}
	if !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("got=%v", got)
	}
	// This write wraps past the end of the 8-byte storage.
	if _, err := rb.Write([]byte{6, 7, 8, 9, 10}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got = make([]byte, 7)
	if n, err := rb.Read(got); err != nil || n != 7 {
		t.Fatalf("read: n=%d err=%v", n, err)
	}
	if !bytes.Equal(got, []byte{4, 5, 6, 7, 8, 9, 10}) {
		t.Errorf("got=%v", got)
	}
}

// Capacity 4, one write of 6 bytes spanning two internal passes, reads of 2
// until EOF.
func TestBlockBufferWriteLargerThanCapacity(t *testing.T) {
	rb := BlockN[byte](4)
	producerErr := make(chan error, 1)
	go func() {
		n, err := rb.Write([]byte{1, 2, 3, 4, 5, 6})
		if err != nil {
			producerErr <- fmt.Errorf("write with error: %w", err)
			return
		}
		if n != 6 {
			producerErr <- fmt.Errorf("write with n=%d", n)
			return
		}
		producerErr <- rb.CloseWrite()
	}()

	var out []byte
	buf := make([]byte, 2)
	for {
		n, err := rb.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			t.Fatalf("read with error: %v", err)
		}
		out = append(out, buf[:n]...)
	}
	if !bytes.Equal(out, []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("out=%v", out)
	}
	if err := <-producerErr; err != nil {
		t.Fatal(err)
	}
}

// Minimum capacity: a single byte flows through and the read does not block
// waiting to fill its whole output buffer.
func TestBlockBufferMinCapacity(t *testing.T) {
	rb := BlockN[byte](1)
	if _, err := rb.Write([]byte{42}); err != nil {
		t.Fatalf("write: %v", err)
	}
	got := make([]byte, 10)
	n, err := rb.Read(got)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if n != 1 || got[0] != 42 {
		t.Errorf("read: n=%d got[0]=%d", n, got[0])
	}
}

func TestBlockBufferRelayError(t *testing.T) {
	relayed := errors.New("upstream exploded")

	t.Run("unblocks reader", func(t *testing.T) {
		rb := BlockN[byte](4)
		readErr := make(chan error, 1)
		go func() {
			_, err := rb.Read(make([]byte, 4))
			readErr <- err
		}()

		time.Sleep(10 * time.Millisecond)
		rb.CloseWithError(relayed)

		if err := <-readErr; !errors.Is(err, relayed) {
			t.Errorf("read with error: %v", err)
		}
		// The error keeps surfacing on subsequent calls.
		if _, err := rb.Read(make([]byte, 4)); !errors.Is(err, relayed) {
			t.Errorf("second read with error: %v", err)
		}
		if !errors.Is(rb.Error(), relayed) {
			t.Errorf("error: %v", rb.Error())
		}
	})

	t.Run("preempts buffered data", func(t *testing.T) {
		rb := BlockN[byte](4)
		rb.Write([]byte{1, 2})
		rb.CloseWithError(relayed)
		if _, err := rb.Read(make([]byte, 4)); !errors.Is(err, relayed) {
			t.Errorf("read with error: %v", err)
		}
	})

	t.Run("nil maps to closed pipe", func(t *testing.T) {
		rb := BlockN[byte](4)
		rb.CloseWithError(nil)
		if _, err := rb.Read(make([]byte, 4)); !errors.Is(err, io.ErrClosedPipe) {
			t.Errorf("read with error: %v", err)
		}
	})
}

func TestBlockBufferCloseUnblocks(t *testing.T) {
	t.Run("reader", func(t *testing.T) {
		rb := BlockN[byte](4)
		readErr := make(chan error, 1)
		go func() {
			_, err := rb.Read(make([]byte, 4))
			readErr <- err
		}()

		time.Sleep(10 * time.Millisecond)
		rb.Close()

		if err := <-readErr; !errors.Is(err, ErrClosed) {
			t.Errorf("read with error: %v", err)
		}
	})

	t.Run("writer", func(t *testing.T) {
		rb := BlockN[byte](2)
		if _, err := rb.Write([]byte{1, 2}); err != nil {
			t.Fatalf("write: %v", err)
		}
		writeErr := make(chan error, 1)
		go func() {
			_, err := rb.Write([]byte{3})
			writeErr <- err
		}()

		time.Sleep(10 * time.Millisecond)
		rb.Close()

		if err := <-writeErr; !errors.Is(err, ErrClosed) {
			t.Errorf("write with error: %v", err)
		}
		// Everything fails after close, idempotently.
		if err := rb.Close(); err != nil {
			t.Errorf("second close: %v", err)
		}
		if _, err := rb.Read(make([]byte, 1)); !errors.Is(err, ErrClosed) {
			t.Errorf("read after close: %v", err)
		}
		if err := rb.CloseWrite(); err != nil {
			t.Errorf("close write after close: %v", err)
		}
		if err := rb.CloseWithError(errors.New("late")); err != nil {
			t.Errorf("close with error after close: %v", err)
		}
	})
}

func TestBlockBufferContext(t *testing.T) {
	t.Run("read canceled", func(t *testing.T) {
		rb := BlockN[byte](4)
		ctx, cancel := context.WithCancel(context.Background())
		readErr := make(chan error, 1)
		go func() {
			_, err := rb.ReadContext(ctx, make([]byte, 4))
			readErr <- err
		}()

		time.Sleep(10 * time.Millisecond)
		cancel()

		if err := <-readErr; !errors.Is(err, context.Canceled) {
			t.Errorf("read with error: %v", err)
		}
		// The buffer itself stays usable.
		if _, err := rb.Write([]byte{1}); err != nil {
			t.Errorf("write after cancel: %v", err)
		}
		if n, err := rb.Read(make([]byte, 1)); err != nil || n != 1 {
			t.Errorf("read after cancel: n=%d err=%v", n, err)
		}
	})

	t.Run("write deadline", func(t *testing.T) {
		rb := BlockN[byte](1)
		if _, err := rb.Write([]byte{1}); err != nil {
			t.Fatalf("write: %v", err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if _, err := rb.WriteContext(ctx, []byte{2}); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("write with error: %v", err)
		}
	})

	t.Run("already canceled", func(t *testing.T) {
		rb := BlockN[byte](1)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := rb.ReadContext(ctx, make([]byte, 1)); !errors.Is(err, context.Canceled) {
			t.Errorf("read with error: %v", err)
		}
		if _, err := rb.WriteContext(ctx, []byte{1}); !errors.Is(err, context.Canceled) {
			t.Errorf("write with error: %v", err)
		}
	})
}

func TestBlockBufferTotals(t *testing.T) {
	rb := BlockN[byte](4)

	check := func(read, written int64) {
		t.Helper()
		if rb.TotalRead() != read {
			t.Errorf("total read=%d, want %d", rb.TotalRead(), read)
		}
		if rb.TotalWritten() != written {
			t.Errorf("total written=%d, want %d", rb.TotalWritten(), written)
		}
		if got := rb.TotalWritten() - rb.TotalRead(); got != int64(rb.Len()) {
			t.Errorf("written-read=%d, len=%d", got, rb.Len())
		}
	}

	check(0, 0)
	rb.Write([]byte{1, 2, 3})
	check(0, 3)
	rb.Read(make([]byte, 2))
	check(2, 3)
	if err := rb.Discard(5); err != nil {
		t.Fatalf("discard: %v", err)
	}
	check(3, 3)
	rb.Write([]byte{4, 5})
	check(3, 5)
	rb.Reset()
	check(5, 5)
	if rb.Len() != 0 {
		t.Errorf("len=%d after reset", rb.Len())
	}
}

func TestBlockBufferSnapshot(t *testing.T) {
	rb := BlockN[byte](4)
	rb.Write([]byte{1, 2, 3})
	rb.Read(make([]byte, 2))
	rb.Write([]byte{4, 5, 6}) // wraps
	got := rb.Snapshot()
	if !bytes.Equal(got, []byte{3, 4, 5, 6}) {
		t.Errorf("snapshot=%v", got)
	}
	if rb.Len() != 4 {
		t.Errorf("len=%d after snapshot", rb.Len())
	}
}

func BenchmarkBlockBuffer(b *testing.B) {
	rb := BlockN[byte](4096)
	data := make([]byte, 102400)
	rand.Read(data)
	go func() {
		for i := 0; i < len(data); {
			randLen := int(data[i]) + 537
			if i+randLen > len(data) {
				randLen = len(data) - i
			}
			n, err := rb.Write(data[i : i+randLen])
			if err != nil {
				b.Errorf("write with error: %v", err)
			}
			if n != randLen {
				b.Errorf("write with n=%d", n)
			}
			i += randLen
		}
		rb.CloseWrite()
	}()

	buf := make([]byte, 537)
	ptr := 0
	for {
		n, err := rb.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			b.Fatalf("read with error: %v", err)
		}
		if n == 0 {
			b.Fatal("read with n=0")
		}
		if !bytes.Equal(buf[:n], data[ptr:ptr+n]) {
			b.Fatalf("read with data not equal")
		}
		ptr += n
	}
}

package iox

import "io"

// ProgressFunc receives the number of bytes transferred so far and the
// estimated total, or -1 when the total is unknown.
type ProgressFunc func(transferred, total int64)

// ProgressReader wraps an io.Reader and reports transfer progress.
type ProgressReader struct {
	r        io.Reader
	fn       ProgressFunc
	total    int64
	interval int64

	transferred int64
	lastReport  int64
}

// NewProgressReader wraps r with progress reporting. total is the estimated
// stream size (-1 for unknown) and interval is the minimum number of bytes
// between callbacks; an interval below 1 reports on every read.
func NewProgressReader(r io.Reader, total, interval int64, fn ProgressFunc) *ProgressReader {
	if interval < 1 {
		interval = 1
	}
	return &ProgressReader{r: r, fn: fn, total: total, interval: interval}
}

// Read implements io.Reader.
func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.transferred += int64(n)
		if p.transferred-p.lastReport >= p.interval || err != nil {
			p.lastReport = p.transferred
			p.fn(p.transferred, p.total)
		}
	}
	if err == io.EOF && p.lastReport != p.transferred {
		// Final report so the caller sees the complete count.
		p.lastReport = p.transferred
		p.fn(p.transferred, p.total)
	}
	return n, err
}

// Transferred returns the number of bytes read through the wrapper so far.
func (p *ProgressReader) Transferred() int64 {
	return p.transferred
}

// ProgressWriter wraps an io.Writer and reports transfer progress.
type ProgressWriter struct {
	w        io.Writer
	fn       ProgressFunc
	total    int64
	interval int64

	transferred int64
	lastReport  int64
}

// NewProgressWriter wraps w with progress reporting. Parameters match
// NewProgressReader.
func NewProgressWriter(w io.Writer, total, interval int64, fn ProgressFunc) *ProgressWriter {
	if interval < 1 {
		interval = 1
	}
	return &ProgressWriter{w: w, fn: fn, total: total, interval: interval}
}

// Write implements io.Writer.
func (p *ProgressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if n > 0 {
		p.transferred += int64(n)
		if p.transferred-p.lastReport >= p.interval || err != nil {
			p.lastReport = p.transferred
			p.fn(p.transferred, p.total)
		}
	}
	return n, err
}

// Transferred returns the number of bytes written through the wrapper so far.
func (p *ProgressWriter) Transferred() int64 {
	return p.transferred
}

// Flush forces a final progress report regardless of the interval.
func (p *ProgressWriter) Flush() {
	if p.lastReport != p.transferred {
		p.lastReport = p.transferred
		p.fn(p.transferred, p.total)
	}
}

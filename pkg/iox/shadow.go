package iox

import "io"

// ShadowReader reads from an underlying reader while writing everything it
// reads to a shadow writer, like io.TeeReader but with a running byte count.
// A short or failed shadow write surfaces as the read error.
type ShadowReader struct {
	r      io.Reader
	shadow io.Writer
	copied int64
}

// NewShadowReader wraps r so all data read is also written to shadow.
func NewShadowReader(r io.Reader, shadow io.Writer) *ShadowReader {
	return &ShadowReader{r: r, shadow: shadow}
}

// Read implements io.Reader.
func (s *ShadowReader) Read(b []byte) (int, error) {
	n, err := s.r.Read(b)
	if n > 0 {
		wn, werr := s.shadow.Write(b[:n])
		s.copied += int64(wn)
		if werr != nil {
			return n, werr
		}
		if wn != n {
			return n, io.ErrShortWrite
		}
	}
	return n, err
}

// Copied returns the number of bytes written to the shadow so far.
func (s *ShadowReader) Copied() int64 {
	return s.copied
}

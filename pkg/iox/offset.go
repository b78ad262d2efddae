package iox

import "io"

// OffsetReader skips the first offset bytes of an underlying reader, then
// passes reads through unchanged. The skip happens lazily on the first Read.
type OffsetReader struct {
	r       io.Reader
	offset  int64
	skipped bool
	pos     int64
}

// NewOffsetReader wraps r so the first offset bytes are discarded.
// Negative offsets are treated as zero.
func NewOffsetReader(r io.Reader, offset int64) *OffsetReader {
	if offset < 0 {
		offset = 0
	}
	return &OffsetReader{r: r, offset: offset}
}

// Read implements io.Reader.
func (o *OffsetReader) Read(b []byte) (int, error) {
	if !o.skipped {
		o.skipped = true
		if _, err := io.CopyN(io.Discard, o.r, o.offset); err != nil {
			if err == io.EOF {
				return 0, io.EOF
			}
			return 0, err
		}
	}
	n, err := o.r.Read(b)
	o.pos += int64(n)
	return n, err
}

// Position returns the number of bytes read past the offset.
func (o *OffsetReader) Position() int64 {
	return o.pos
}

package buffer

var (
	_ BytesBuffer = (*BlockBuffer[byte])(nil)
	_ BytesBuffer = (*Stream)(nil)
)

// BytesBuffer defines the interface for a buffer that can be read and
// written to. It provides a common abstraction over byte buffer
// implementations. All implementations are safe for one concurrent reader
// and one concurrent writer.
type BytesBuffer interface {
	Write(p []byte) (n int, err error)
	Read(p []byte) (n int, err error)
	Discard(n int) (err error)
	Close() error
	CloseWrite() error
	CloseWithError(err error) error
	Error() error
	Reset()
	Len() int
	Cap() int
}

// Bytes16KB creates a new BlockBuffer with 16KB capacity.
func Bytes16KB() *BlockBuffer[byte] {
	return BlockN[byte](1 << 14)
}

// Bytes4KB creates a new BlockBuffer with 4KB capacity.
func Bytes4KB() *BlockBuffer[byte] {
	return BlockN[byte](1 << 12)
}

// Bytes1KB creates a new BlockBuffer with 1KB capacity.
func Bytes1KB() *BlockBuffer[byte] {
	return BlockN[byte](1 << 10)
}

// Bytes256B creates a new BlockBuffer with 256 bytes capacity.
func Bytes256B() *BlockBuffer[byte] {
	return BlockN[byte](1 << 8)
}

// Stream4KB creates a new Stream with 4KB buffer capacity.
func Stream4KB() *Stream {
	return NewStream(1 << 12)
}

// Stream64KB creates a new Stream with 64KB buffer capacity.
func Stream64KB() *Stream {
	return NewStream(1 << 16)
}

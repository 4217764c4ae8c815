package adts

import "fmt"

// SyncWordError indicates that a buffer did not start with the required
// sequence of 12 '1'-bits (0xFFF). The value carries the 12 bits that were
// observed instead.
type SyncWordError uint16

func (e SyncWordError) Error() string {
	return fmt.Sprintf("bad sync word: expected 0xfff, got %#03x", uint16(e))
}

// FrameLengthError indicates that the frame_length header field declared
// fewer bytes than the header itself occupies.
type FrameLengthError struct {
	Minimum int // header length implied by the protection flag (7 or 9)
	Actual  int // declared frame_length
}

func (e FrameLengthError) Error() string {
	return fmt.Sprintf("bad frame length: %d is smaller than the %d-byte header", e.Actual, e.Minimum)
}

// NotEnoughDataError indicates that the buffer is too short to hold the
// complete header. It is resolved by accumulating more bytes and is never
// surfaced to a Consumer.
type NotEnoughDataError struct {
	Expected int
	Actual   int
}

func (e NotEnoughDataError) Error() string {
	return fmt.Sprintf("not enough data: expected %d bytes, got %d", e.Expected, e.Actual)
}

// PayloadError indicates that the buffer backing a header is shorter than the
// declared frame_length, so the payload bytes are not all available. A header
// can be valid while its payload is not yet fully present.
type PayloadError struct {
	Expected int
	Actual   int
}

func (e PayloadError) Error() string {
	return fmt.Sprintf("payload not available: frame length %d exceeds buffer of %d bytes", e.Expected, e.Actual)
}

package adts

import "fmt"

// configSize is the number of leading header bytes that make up a stream's
// configuration fingerprint.
const configSize = 3

// Consumer receives notifications from a Parser as frames are decoded.
// Implementations are supplied by the embedding application; the parser never
// retains payload bytes beyond the callback invocation.
type Consumer interface {
	// NewConfig is called whenever the stream configuration differs from the
	// previously seen one, normally once at stream start.
	NewConfig(version MPEGVersion, protection Protection, profile Profile,
		frequency SamplingFrequency, privateBit uint8,
		channels ChannelConfiguration, originality Originality, home uint8)

	// Payload is called once per successfully decoded frame, in stream order.
	// The payload slice is only valid for the duration of the call.
	Payload(bufferFullness uint16, blockCount uint8, payload []byte)

	// Error is called once when a frame fails to decode with SyncWordError or
	// FrameLengthError. The parser then ignores further input until Start is
	// called.
	Error(err error)
}

type parserState int

const (
	// stateReady means no bytes are pending; the next push scans from a frame
	// boundary.
	stateReady parserState = iota
	// stateIncomplete means a partial frame is buffered, waiting for more
	// bytes before decoding can be re-attempted.
	stateIncomplete
	// stateFaulted means a decode error was reported; input is ignored until
	// an explicit Start.
	stateFaulted
)

// Parser is an incremental ADTS stream parser. Bytes are fed in with Push in
// arrival order, in chunks of any size; the parser reassembles frames that
// span chunk boundaries and drives the Consumer with configuration, payload
// and error notifications. The sequence and content of notifications depend
// only on the byte stream, never on how it was chunked.
//
// A Parser buffers at most one partial frame (a frame length is a 13-bit
// field, so at most 8191 bytes). It is not safe for concurrent use; create
// one Parser per logical stream.
type Parser struct {
	consumer Consumer
	state    parserState

	// config is the fingerprint of the last frame for which NewConfig fired.
	// A valid header always begins with the sync pattern, so the zero value
	// can never match a real frame and the first frame always notifies.
	config [configSize]byte

	// partial accumulates the bytes of an incomplete frame across pushes, and
	// desired is the total byte count needed before decoding is re-attempted
	// (0 while nothing is buffered).
	partial []byte
	desired int
}

// NewParser creates a parser for one logical stream, delivering to consumer.
func NewParser(consumer Consumer) *Parser {
	return &Parser{consumer: consumer}
}

// Start resets the parser to a frame boundary. It clears a fault, discards
// any buffered partial frame, and is a no-op when the parser is already at a
// boundary. The configuration fingerprint is retained, so an unchanged
// configuration does not re-notify after a reset.
func (p *Parser) Start() {
	p.state = stateReady
	p.partial = p.partial[:0]
	p.desired = 0
}

// Push feeds the next chunk of the byte stream to the parser. It consumes or
// buffers the whole chunk before returning and never blocks waiting for more
// data. After a decode error has been reported, Push is a no-op until Start
// is called.
func (p *Parser) Push(chunk []byte) {
	switch p.state {
	case stateFaulted:
		return
	case stateIncomplete:
		chunk = p.fill(chunk)
		if p.state != stateReady {
			return
		}
	}
	p.scan(chunk)
}

// scan processes chunk from a frame boundary, emitting every complete frame
// it contains and buffering any trailing partial frame.
func (p *Parser) scan(chunk []byte) {
	for len(chunk) > 0 {
		h, err := ParseHeader(chunk)
		if err != nil {
			switch e := err.(type) {
			case NotEnoughDataError:
				p.stash(chunk, e.Expected)
			default:
				p.fault(err)
			}
			return
		}
		frameLen := int(h.FrameLength())
		if frameLen > len(chunk) {
			p.stash(chunk, frameLen)
			return
		}
		p.emit(h)
		chunk = chunk[frameLen:]
	}
}

// fill appends bytes from chunk to the partial frame until it reaches the
// desired length, then re-attempts the decode. The desired length can grow
// more than once: first to the full header size, then to the declared frame
// length. On completing a frame it returns the unconsumed remainder of chunk
// with the parser back in the ready state; otherwise it returns nil.
func (p *Parser) fill(chunk []byte) []byte {
	for {
		need := p.desired - len(p.partial)
		if need > len(chunk) {
			p.partial = append(p.partial, chunk...)
			return nil
		}
		p.partial = append(p.partial, chunk[:need]...)
		chunk = chunk[need:]

		h, err := ParseHeader(p.partial)
		if err != nil {
			switch e := err.(type) {
			case NotEnoughDataError:
				// The header itself was still incomplete on the first pass;
				// the true frame length is not knowable yet.
				p.desired = e.Expected
				continue
			default:
				p.fault(err)
				return nil
			}
		}
		if frameLen := int(h.FrameLength()); frameLen > len(p.partial) {
			p.desired = frameLen
			continue
		}

		p.emit(h)
		p.partial = p.partial[:0]
		p.desired = 0
		p.state = stateReady
		return chunk
	}
}

// stash copies the unconsumed tail of a chunk into the partial buffer and
// records how many bytes are needed before the next decode attempt.
func (p *Parser) stash(tail []byte, desired int) {
	p.partial = append(p.partial[:0], tail...)
	p.desired = desired
	p.state = stateIncomplete
}

// emit delivers the notifications for one fully buffered frame.
func (p *Parser) emit(h Header) {
	if fp := h.fingerprint(); fp != p.config {
		p.config = fp
		p.consumer.NewConfig(h.MPEGVersion(), h.Protection(), h.Profile(),
			h.SamplingFrequency(), h.PrivateBit(), h.ChannelConfiguration(),
			h.Originality(), h.Home())
	}
	payload, err := h.Payload()
	if err != nil {
		// emit is only called once the buffer is known to cover the declared
		// frame length, so this cannot happen on any input.
		panic(fmt.Sprintf("adts: payload unavailable for complete frame: %v", err))
	}
	p.consumer.Payload(h.BufferFullness(), h.BlockCount(), payload)
}

// fault reports a decode error and stops the parser. Remaining bytes are
// discarded: the format has no in-band marker that reliably distinguishes a
// header from payload bytes, so scanning forward for the next frame is not
// attempted. The caller must Start the parser to process further input.
func (p *Parser) fault(err error) {
	p.partial = p.partial[:0]
	p.desired = 0
	p.state = stateFaulted
	p.consumer.Error(err)
}

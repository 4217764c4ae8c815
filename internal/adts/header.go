package adts

import (
	"encoding/binary"
	"fmt"
)

const (
	// fixedHeaderSize is the size of an ADTS header without the optional CRC.
	fixedHeaderSize = 7
	// crcSize is the size of the optional CRC field following the fixed header.
	crcSize = 2

	// syncWord is the 12-bit pattern that starts every ADTS frame header.
	syncWord = 0xFFF
)

// MPEGVersion identifies which MPEG audio standard the stream follows.
type MPEGVersion uint8

const (
	MPEG4 MPEGVersion = iota
	MPEG2
)

func (v MPEGVersion) String() string {
	switch v {
	case MPEG4:
		return "MPEG-4"
	case MPEG2:
		return "MPEG-2"
	default:
		return fmt.Sprintf("MPEGVersion(%d)", uint8(v))
	}
}

// Protection indicates whether the header carries a 16-bit CRC. It determines
// the header length: 7 bytes without a CRC, 9 bytes with one.
type Protection uint8

const (
	CRCPresent Protection = iota
	CRCAbsent
)

func (p Protection) String() string {
	switch p {
	case CRCPresent:
		return "CRC present"
	case CRCAbsent:
		return "CRC absent"
	default:
		return fmt.Sprintf("Protection(%d)", uint8(p))
	}
}

// Profile is the AAC audio object type carried in the frame payload.
type Profile uint8

const (
	ProfileMain Profile = iota
	ProfileLC
	ProfileSSR
	ProfileLTP
)

func (p Profile) String() string {
	switch p {
	case ProfileMain:
		return "AAC Main"
	case ProfileLC:
		return "AAC LC"
	case ProfileSSR:
		return "AAC SSR"
	case ProfileLTP:
		return "AAC LTP"
	default:
		return fmt.Sprintf("Profile(%d)", uint8(p))
	}
}

// SamplingFrequency is the 4-bit sampling-frequency index. Values 0x0 through
// 0xB map to defined rates; 0xC through 0xF are reserved and have no defined
// rate, which is not a decoding error.
type SamplingFrequency uint8

// Rate table per ISO/IEC 13818-7, indexed by the 4-bit code.
var samplingRates = [...]int{
	96000, 88200, 64000, 48000, 44100, 32000,
	24000, 22050, 16000, 12000, 11025, 8000,
}

// Freq returns the sampling rate in Hz, or ok=false for the reserved codes
// 0xC-0xF.
func (s SamplingFrequency) Freq() (rate int, ok bool) {
	if int(s) < len(samplingRates) {
		return samplingRates[s], true
	}
	return 0, false
}

func (s SamplingFrequency) String() string {
	if rate, ok := s.Freq(); ok {
		return fmt.Sprintf("%d Hz", rate)
	}
	return fmt.Sprintf("reserved(%#x)", uint8(s))
}

// ChannelConfiguration is the 3-bit channel layout code.
type ChannelConfiguration uint8

const (
	// ChannelConfigObjectSpecific defers the channel layout to the payload's
	// own object-type-specific configuration.
	ChannelConfigObjectSpecific ChannelConfiguration = iota
	ChannelConfigMono
	ChannelConfigStereo
	ChannelConfigThree
	ChannelConfigFour
	ChannelConfigFive
	ChannelConfigFiveOne
	ChannelConfigSevenOne
)

func (c ChannelConfiguration) String() string {
	switch c {
	case ChannelConfigObjectSpecific:
		return "object-specific"
	case ChannelConfigMono:
		return "mono"
	case ChannelConfigStereo:
		return "stereo"
	case ChannelConfigThree:
		return "3.0"
	case ChannelConfigFour:
		return "4.0"
	case ChannelConfigFive:
		return "5.0"
	case ChannelConfigFiveOne:
		return "5.1"
	case ChannelConfigSevenOne:
		return "7.1"
	default:
		return fmt.Sprintf("ChannelConfiguration(%d)", uint8(c))
	}
}

// Originality indicates whether the stream is marked as an original or a copy.
type Originality uint8

const (
	Original Originality = iota
	Copy
)

func (o Originality) String() string {
	switch o {
	case Original:
		return "original"
	case Copy:
		return "copy"
	default:
		return fmt.Sprintf("Originality(%d)", uint8(o))
	}
}

// CopyrightIDStart indicates whether this frame carries the first bit of the
// in-band copyright identifier.
type CopyrightIDStart uint8

const (
	CopyrightIDOther CopyrightIDStart = iota
	CopyrightIDStartHere
)

func (c CopyrightIDStart) String() string {
	switch c {
	case CopyrightIDStartHere:
		return "start"
	case CopyrightIDOther:
		return "other"
	default:
		return fmt.Sprintf("CopyrightIDStart(%d)", uint8(c))
	}
}

// Header is a zero-copy, read-only view over one ADTS frame header within a
// caller-owned buffer. Construction validates the sync word and frame length;
// every accessor recomputes its field from the underlying bytes and cannot
// fail once ParseHeader has succeeded. The Header borrows the buffer and is
// only valid while the buffer is.
type Header struct {
	buf []byte
}

// ParseHeader validates and wraps the ADTS header at the start of buf.
//
// It returns NotEnoughDataError if buf is shorter than the header (7 bytes,
// or 9 when the CRC-present flag in byte 1 is set), SyncWordError if the
// first 12 bits are not 0xFFF, and FrameLengthError if the declared
// frame_length is smaller than the header itself. Success does not imply the
// whole declared frame is present in buf; see Payload.
func ParseHeader(buf []byte) (Header, error) {
	if err := checkLen(fixedHeaderSize, len(buf)); err != nil {
		return Header{}, err
	}
	h := Header{buf: buf}
	if sw := h.syncWord(); sw != syncWord {
		return Header{}, SyncWordError(sw)
	}
	if h.Protection() == CRCPresent {
		if err := checkLen(fixedHeaderSize+crcSize, len(buf)); err != nil {
			return Header{}, err
		}
	}
	if min := h.HeaderLength(); int(h.FrameLength()) < min {
		return Header{}, FrameLengthError{Minimum: min, Actual: int(h.FrameLength())}
	}
	return h, nil
}

func checkLen(expected, actual int) error {
	if actual < expected {
		return NotEnoughDataError{Expected: expected, Actual: actual}
	}
	return nil
}

func (h Header) syncWord() uint16 {
	return uint16(h.buf[0])<<4 | uint16(h.buf[1]>>4)
}

// MPEGVersion reports the standard (MPEG-2 or MPEG-4) the stream follows.
func (h Header) MPEGVersion() MPEGVersion {
	if h.buf[1]&0b0000_1000 != 0 {
		return MPEG2
	}
	return MPEG4
}

// Protection reports whether a 16-bit CRC follows the fixed header.
func (h Header) Protection() Protection {
	if h.buf[1]&0b0000_0001 != 0 {
		return CRCAbsent
	}
	return CRCPresent
}

// Profile reports the AAC object type of the payload.
func (h Header) Profile() Profile {
	return Profile(h.buf[2] >> 6)
}

// SamplingFrequency reports the 4-bit sampling-frequency index.
func (h Header) SamplingFrequency() SamplingFrequency {
	return SamplingFrequency(h.buf[2] >> 2 & 0b1111)
}

// PrivateBit reports the private bit, either 1 or 0. Its meaning is
// application-defined; it is passed through undisturbed.
func (h Header) PrivateBit() uint8 {
	return h.buf[2] >> 1 & 1
}

// ChannelConfiguration reports the 3-bit channel layout code, which spans the
// boundary of header bytes 2 and 3.
func (h Header) ChannelConfiguration() ChannelConfiguration {
	return ChannelConfiguration(h.buf[2]<<2&0b100 | h.buf[3]>>6)
}

// Originality reports whether the stream is marked original or copy.
func (h Header) Originality() Originality {
	if h.buf[3]&0b0010_0000 != 0 {
		return Copy
	}
	return Original
}

// Home reports the home bit, either 1 or 0.
func (h Header) Home() uint8 {
	return h.buf[3] >> 4 & 1
}

// CopyrightIDBit reports one bit of the in-band copyright identifier, either
// 1 or 0.
func (h Header) CopyrightIDBit() uint8 {
	return h.buf[3] >> 3 & 1
}

// CopyrightIDStart reports whether this frame carries the first copyright
// identifier bit.
func (h Header) CopyrightIDStart() CopyrightIDStart {
	if h.buf[3]&0b0000_0100 != 0 {
		return CopyrightIDStartHere
	}
	return CopyrightIDOther
}

// FrameLength reports the total length of this frame in bytes, including the
// header, optional CRC and payload. It is a 13-bit field, so at most 8191.
func (h Header) FrameLength() uint16 {
	return uint16(h.buf[3]&0b11)<<11 | uint16(h.buf[4])<<3 | uint16(h.buf[5])>>5
}

// HeaderLength reports the header size in bytes: 9 when a CRC is present,
// otherwise 7.
func (h Header) HeaderLength() int {
	if h.Protection() == CRCPresent {
		return fixedHeaderSize + crcSize
	}
	return fixedHeaderSize
}

// PayloadLength reports the declared payload size: frame length minus header
// length. ParseHeader rejects headers where this would be negative.
func (h Header) PayloadLength() int {
	return int(h.FrameLength()) - h.HeaderLength()
}

// BufferFullness reports the 11-bit transmission buffer fullness field.
func (h Header) BufferFullness() uint16 {
	return uint16(h.buf[5]&0b0001_1111)<<6 | uint16(h.buf[6])>>2
}

// BlockCount reports the number of raw data blocks in the frame, between 1
// and 4 inclusive. The wire encoding stores block count minus one; this
// method returns the actual count. Most streams carry a single block per
// frame.
func (h Header) BlockCount() uint8 {
	return h.buf[6]&0b11 + 1
}

// CRC returns the 16-bit CRC field and ok=true when the protection flag
// indicates one is present. The value is decoded but never verified against
// the payload.
func (h Header) CRC() (crc uint16, ok bool) {
	if h.Protection() != CRCPresent {
		return 0, false
	}
	return binary.BigEndian.Uint16(h.buf[fixedHeaderSize : fixedHeaderSize+crcSize]), true
}

// Payload returns the payload bytes of this frame as a sub-slice of the
// buffer the Header was parsed from. It returns PayloadError when the buffer
// is shorter than the declared frame length, which is distinct from header
// validity: a header can parse successfully before its payload has fully
// arrived.
func (h Header) Payload() ([]byte, error) {
	frameLen := int(h.FrameLength())
	if len(h.buf) < frameLen {
		return nil, PayloadError{Expected: frameLen, Actual: len(h.buf)}
	}
	return h.buf[h.HeaderLength():frameLen], nil
}

// fingerprint returns the first three header bytes, which cover the version,
// protection, profile, sampling index, private bit and the leading channel
// configuration bit. Frames whose fingerprints match are considered to share
// one stream configuration.
func (h Header) fingerprint() [configSize]byte {
	var fp [configSize]byte
	copy(fp[:], h.buf[:configSize])
	return fp
}

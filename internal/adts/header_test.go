package adts

import (
	"bytes"
	"errors"
	"testing"
)

// frameNoCRC is a complete 8-byte frame: MPEG-4, CRC absent, AAC Main,
// 48000 Hz, private bit 1, stereo, copy, copyright id start, frame_length 8,
// buffer fullness 123, one raw data block, one payload byte.
var frameNoCRC = []byte{
	0xFF,       // sync[11:4]
	0xF1,       // sync[3:0], version=0 (MPEG-4), layer=00, protection_absent=1
	0x0E,       // profile=00 (Main), sampling_freq_index=0011 (48000), private=1, channel high bit=0
	0xA4,       // channel low bits=10 (stereo), original_copy=1, home=0, copyright_id_bit=0, copyright_id_start=1, frame_length[12:11]=00
	0x01,       // frame_length[10:3]
	0x01,       // frame_length[2:0]=000, buffer_fullness[10:6]=00001
	0xEC,       // buffer_fullness[5:0]=111011, raw data blocks=00 (1 block)
	0b10000001, // payload
}

// frameCRC is a complete 10-byte frame with a CRC: header 9 bytes, CRC
// 0xABCD, frame_length 10, one payload byte.
var frameCRC = []byte{
	0xFF,       // sync[11:4]
	0xF0,       // sync[3:0], version=0, layer=00, protection_absent=0
	0x0E,       // profile=00, sampling_freq_index=0011, private=1, channel high bit=0
	0xA4,       // channel low bits=10, original_copy=1, home=0, copyright_id_bit=0, copyright_id_start=1, frame_length[12:11]=00
	0x01,       // frame_length[10:3]
	0x40,       // frame_length[2:0]=010 (total 10), buffer_fullness[10:6]=00000
	0x00,       // buffer_fullness[5:0]=000000, raw data blocks=00
	0xAB, 0xCD, // CRC
	0x77, // payload
}

func TestParseHeaderFields(t *testing.T) {
	h, err := ParseHeader(frameNoCRC)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}

	if got := h.MPEGVersion(); got != MPEG4 {
		t.Errorf("MPEGVersion: expected %v, got %v", MPEG4, got)
	}
	if got := h.Protection(); got != CRCAbsent {
		t.Errorf("Protection: expected %v, got %v", CRCAbsent, got)
	}
	if got := h.Profile(); got != ProfileMain {
		t.Errorf("Profile: expected %v, got %v", ProfileMain, got)
	}
	if got := h.SamplingFrequency(); got != 0x3 {
		t.Errorf("SamplingFrequency: expected index 0x3, got %#x", uint8(got))
	}
	if rate, ok := h.SamplingFrequency().Freq(); !ok || rate != 48000 {
		t.Errorf("Freq: expected 48000, ok=true, got %d, ok=%v", rate, ok)
	}
	if got := h.PrivateBit(); got != 1 {
		t.Errorf("PrivateBit: expected 1, got %d", got)
	}
	if got := h.ChannelConfiguration(); got != ChannelConfigStereo {
		t.Errorf("ChannelConfiguration: expected %v, got %v", ChannelConfigStereo, got)
	}
	if got := h.Originality(); got != Copy {
		t.Errorf("Originality: expected %v, got %v", Copy, got)
	}
	if got := h.Home(); got != 0 {
		t.Errorf("Home: expected 0, got %d", got)
	}
	if got := h.CopyrightIDBit(); got != 0 {
		t.Errorf("CopyrightIDBit: expected 0, got %d", got)
	}
	if got := h.CopyrightIDStart(); got != CopyrightIDStartHere {
		t.Errorf("CopyrightIDStart: expected %v, got %v", CopyrightIDStartHere, got)
	}
	if got := h.FrameLength(); got != 8 {
		t.Errorf("FrameLength: expected 8, got %d", got)
	}
	if got := h.HeaderLength(); got != 7 {
		t.Errorf("HeaderLength: expected 7, got %d", got)
	}
	if got := h.PayloadLength(); got != 1 {
		t.Errorf("PayloadLength: expected 1, got %d", got)
	}
	if got := h.BufferFullness(); got != 123 {
		t.Errorf("BufferFullness: expected 123, got %d", got)
	}
	if got := h.BlockCount(); got != 1 {
		t.Errorf("BlockCount: expected 1, got %d", got)
	}
	if _, ok := h.CRC(); ok {
		t.Error("CRC: expected none for a protection-absent header")
	}

	payload, err := h.Payload()
	if err != nil {
		t.Fatalf("Payload failed: %v", err)
	}
	if !bytes.Equal(payload, []byte{0b10000001}) {
		t.Errorf("Payload: expected [0x81], got %x", payload)
	}
}

func TestParseHeaderCRC(t *testing.T) {
	h, err := ParseHeader(frameCRC)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}

	if got := h.Protection(); got != CRCPresent {
		t.Errorf("Protection: expected %v, got %v", CRCPresent, got)
	}
	if got := h.HeaderLength(); got != 9 {
		t.Errorf("HeaderLength: expected 9, got %d", got)
	}
	if got := h.FrameLength(); got != 10 {
		t.Errorf("FrameLength: expected 10, got %d", got)
	}
	crc, ok := h.CRC()
	if !ok || crc != 0xABCD {
		t.Errorf("CRC: expected 0xabcd, ok=true, got %#x, ok=%v", crc, ok)
	}

	payload, err := h.Payload()
	if err != nil {
		t.Fatalf("Payload failed: %v", err)
	}
	if !bytes.Equal(payload, []byte{0x77}) {
		t.Errorf("Payload: expected [0x77], got %x", payload)
	}
}

func TestParseHeaderErrors(t *testing.T) {
	// A header declaring frame_length 3, smaller than its own 7 bytes.
	badLength := []byte{
		0xFF, 0xF1, 0x0E, 0xA4,
		0x00, // frame_length[10:3]=00000000
		0x60, // frame_length[2:0]=011 (total 3)
		0xEC,
	}

	tests := []struct {
		name     string
		data     []byte
		expected error
	}{
		{
			name:     "empty buffer",
			data:     nil,
			expected: NotEnoughDataError{Expected: 7, Actual: 0},
		},
		{
			name:     "truncated fixed header",
			data:     frameNoCRC[:5],
			expected: NotEnoughDataError{Expected: 7, Actual: 5},
		},
		{
			name:     "truncated crc",
			data:     frameCRC[:8],
			expected: NotEnoughDataError{Expected: 9, Actual: 8},
		},
		{
			name:     "bad sync word",
			data:     []byte{0x12, 0x34, 0x0E, 0xA4, 0x01, 0x01, 0xEC},
			expected: SyncWordError(0x123),
		},
		{
			name:     "frame length smaller than header",
			data:     badLength,
			expected: FrameLengthError{Minimum: 7, Actual: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.data)
			if err == nil {
				t.Fatal("Expected error but got none")
			}
			if err != tt.expected {
				t.Errorf("Expected error %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestReservedSamplingFrequency(t *testing.T) {
	// sampling_freq_index 0xC is a reserved code: the header is still valid,
	// but no rate is defined for it.
	frame := append([]byte(nil), frameNoCRC...)
	frame[2] = 0x32 // profile=00, sampling_freq_index=1100, private=1, channel high bit=0

	h, err := ParseHeader(frame)
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}
	if got := h.SamplingFrequency(); got != 0xC {
		t.Fatalf("SamplingFrequency: expected index 0xc, got %#x", uint8(got))
	}
	if rate, ok := h.SamplingFrequency().Freq(); ok {
		t.Errorf("Freq: expected no defined rate for reserved index, got %d", rate)
	}
}

func TestPayloadNotYetAvailable(t *testing.T) {
	// The header alone parses, but the declared frame extends past the buffer.
	h, err := ParseHeader(frameNoCRC[:7])
	if err != nil {
		t.Fatalf("ParseHeader failed: %v", err)
	}

	_, err = h.Payload()
	var perr PayloadError
	if !errors.As(err, &perr) {
		t.Fatalf("Expected PayloadError, got %v", err)
	}
	if perr.Expected != 8 || perr.Actual != 7 {
		t.Errorf("Expected PayloadError{Expected:8, Actual:7}, got %+v", perr)
	}
}

// Package adts implements parsing of the Audio Data Transport Stream framing
// format used to carry encoded AAC audio. It provides zero-copy header
// decoding over caller-owned buffers and an incremental streaming parser that
// reassembles frames split across arbitrarily sized chunks.
package adts

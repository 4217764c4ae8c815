// Command adtsdump reads a file containing an ADTS byte stream and prints
// the decoded fields and a hex dump of each frame payload.
package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/skypro1111/adts-stream-service/internal/adts"
)

// readChunkSize is the size of each read from the input file. A frame can be
// at most 8191 bytes, so every read spans many frames; the parser carries any
// trailing partial frame into the next chunk itself.
const readChunkSize = 1024 * 1024

// dumpConsumer prints every notification to stdout.
type dumpConsumer struct {
	frameCount int
}

func (d *dumpConsumer) NewConfig(version adts.MPEGVersion, protection adts.Protection,
	profile adts.Profile, frequency adts.SamplingFrequency, privateBit uint8,
	channels adts.ChannelConfiguration, originality adts.Originality, home uint8) {
	fmt.Println("New ADTS configuration found")
	fmt.Printf("%v %v %v %v private_bit=%d %v %v home=%d\n",
		version, protection, profile, frequency, privateBit, channels, originality, home)
}

func (d *dumpConsumer) Payload(bufferFullness uint16, blockCount uint8, payload []byte) {
	fmt.Printf("ADTS frame buffer_fullness=%d blocks=%d\n", bufferFullness, blockCount)
	fmt.Print(hex.Dump(payload))
	d.frameCount++
}

func (d *dumpConsumer) Error(err error) {
	fmt.Printf("Error: %v\n", err)
}

func run(r io.Reader) error {
	consumer := &dumpConsumer{}
	parser := adts.NewParser(consumer)
	buf := make([]byte, readChunkSize)
	byteCount := 0

	for {
		n, err := r.Read(buf)
		if n > 0 {
			parser.Push(buf[:n])
			byteCount += n
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}

	fmt.Printf("Processed %d bytes, %d ADTS frames\n", byteCount, consumer.frameCount)
	return nil
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "usage: %s <file>\n", os.Args[0])
		os.Exit(2)
	}
	name := os.Args[1]

	f, err := os.Open(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open %s: %v\n", name, err)
		os.Exit(1)
	}
	defer f.Close()

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "error reading %s: %v\n", name, err)
		os.Exit(1)
	}
}

package picture

import (
	"encoding/binary"
	"strings"

	"github.com/bodgit/iffpicture/iff"
)

// Metadata holds the optional text and geometry chunks commonly found
// alongside the image data. Missing chunks leave zero values.
type Metadata struct {
	Annotations []string
	Author      string
	Copyright   string

	// Hotspot coordinates from a GRAB chunk.
	GrabX, GrabY int16
	HasGrab      bool

	// Dots per inch from a DPI chunk.
	DPIX, DPIY uint16
	HasDPI     bool
}

func chunkString(data []byte) string {
	return strings.TrimRight(string(data), "\x00")
}

func parseMetadata(f *iff.Form) Metadata {
	var m Metadata

	for _, anno := range f.Chunks(iff.FourCCANNO) {
		m.Annotations = append(m.Annotations, chunkString(anno))
	}
	if auth := f.Chunk(iff.FourCCAUTH); auth != nil {
		m.Author = chunkString(auth)
	}
	if c := f.Chunk(iff.FourCCCOPY); c != nil {
		m.Copyright = chunkString(c)
	}
	if grab := f.Chunk(iff.FourCCGRAB); len(grab) >= 4 {
		m.GrabX = int16(binary.BigEndian.Uint16(grab[0:2]))
		m.GrabY = int16(binary.BigEndian.Uint16(grab[2:4]))
		m.HasGrab = true
	}
	if dpi := f.Chunk(iff.FourCCDPI); len(dpi) >= 4 {
		m.DPIX = binary.BigEndian.Uint16(dpi[0:2])
		m.DPIY = binary.BigEndian.Uint16(dpi[2:4])
		m.HasDPI = true
	}

	return m
}

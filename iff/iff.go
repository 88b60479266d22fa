/*
Package iff implements reading of IFF-85 (EA Interchange File Format)
containers.

An IFF file is a FORM chunk whose payload starts with a four character
form type followed by a sequence of chunks. Each chunk has a four
character identifier and a big-endian 32-bit payload length; payloads
are padded to even byte boundaries. This package only walks the chunk
framing, it does not interpret any payload.
*/
package iff

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// FourCC is a four character chunk or form type identifier.
type FourCC uint32

// Container and chunk identifiers used by IFF picture files.
const (
	FourCCFORM FourCC = 0x464f524d // "FORM"
	FourCCBMHD FourCC = 0x424d4844 // "BMHD"
	FourCCCMAP FourCC = 0x434d4150 // "CMAP"
	FourCCCAMG FourCC = 0x43414d47 // "CAMG"
	FourCCBODY FourCC = 0x424f4459 // "BODY"
	FourCCABIT FourCC = 0x41424954 // "ABIT"
	FourCCANNO FourCC = 0x414e4e4f // "ANNO"
	FourCCAUTH FourCC = 0x41555448 // "AUTH"
	FourCCCOPY FourCC = 0x28632920 // "(c) "
	FourCCGRAB FourCC = 0x47524142 // "GRAB"
	FourCCDPI  FourCC = 0x44504920 // "DPI "
	FourCCFXHD FourCC = 0x46584844 // "FXHD"
)

// Form type identifiers for the supported picture variants.
const (
	FormILBM FourCC = 0x494c424d // "ILBM"
	FormPBM  FourCC = 0x50424d20 // "PBM "
	FormRGBN FourCC = 0x5247424e // "RGBN"
	FormRGB8 FourCC = 0x52474238 // "RGB8"
	FormDEEP FourCC = 0x44454550 // "DEEP"
	FormACBM FourCC = 0x4143424d // "ACBM"
	FormFAXX FourCC = 0x46415858 // "FAXX"
)

// String returns the identifier as its four character text form.
func (id FourCC) String() string {
	b := []byte{byte(id >> 24), byte(id >> 16), byte(id >> 8), byte(id)}
	for _, c := range b {
		if c < 0x20 || c > 0x7e {
			return fmt.Sprintf("0x%08x", uint32(id))
		}
	}
	return string(b)
}

const (
	// headerSize is the size of a chunk header: FourCC plus length.
	headerSize = 8
	// formTypeSize is the size of the form type following a FORM header.
	formTypeSize = 4
)

var (
	errShortHeader = errors.New("iff: truncated chunk header")
	errNotForm     = errors.New("iff: not a FORM container")
)

// Chunk is a single chunk within a FORM. Data aliases the buffer the
// Form was parsed from.
type Chunk struct {
	ID   FourCC
	Data []byte
}

// Form is a parsed FORM container: the form type and its chunks in file
// order.
type Form struct {
	Type   FourCC
	chunks []Chunk
}

// readChunk reads one chunk starting at data and returns it along with
// the number of bytes consumed, including the pad byte if the payload
// length is odd.
func readChunk(data []byte) (Chunk, int, error) {
	if len(data) < headerSize {
		return Chunk{}, 0, errShortHeader
	}
	id := FourCC(binary.BigEndian.Uint32(data[0:4]))
	size := binary.BigEndian.Uint32(data[4:8])
	end := headerSize + int(size)
	if end < headerSize || end > len(data) {
		return Chunk{}, 0, fmt.Errorf("iff: chunk %s payload truncated: need %d bytes, have %d", id, end, len(data))
	}
	c := Chunk{
		ID:   id,
		Data: data[headerSize:end],
	}
	if size%2 != 0 && end < len(data) {
		end++
	}
	return c, end, nil
}

// Parse parses a complete FORM container from data. The returned Form
// aliases data; the caller must not mutate it while the Form is in use.
func Parse(data []byte) (*Form, error) {
	c, _, err := readChunk(data)
	if err != nil {
		return nil, err
	}
	if c.ID != FourCCFORM {
		return nil, errNotForm
	}
	if len(c.Data) < formTypeSize {
		return nil, errors.New("iff: FORM payload too short for form type")
	}

	f := &Form{
		Type: FourCC(binary.BigEndian.Uint32(c.Data[0:4])),
	}

	rest := c.Data[formTypeSize:]
	for len(rest) > 0 {
		chunk, n, err := readChunk(rest)
		if err != nil {
			return nil, err
		}
		f.chunks = append(f.chunks, chunk)
		rest = rest[n:]
	}

	return f, nil
}

// Chunk returns the payload of the first chunk with the given
// identifier, or nil if the FORM contains no such chunk.
func (f *Form) Chunk(id FourCC) []byte {
	for _, c := range f.chunks {
		if c.ID == id {
			return c.Data
		}
	}
	return nil
}

// Chunks returns every chunk with the given identifier in file order.
func (f *Form) Chunks(id FourCC) [][]byte {
	var out [][]byte
	for _, c := range f.chunks {
		if c.ID == id {
			out = append(out, c.Data)
		}
	}
	return out
}

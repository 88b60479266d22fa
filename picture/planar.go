package picture

// Bitplane reconstruction. Bitplane rows store pixels MSB first and
// are padded to a whole number of 16-bit words; reconstruction ors bit
// p of each pixel in from bit (7 - x%8) of byte x/8 of plane p's row.

// bodyReader consumes an image payload row by row, transparently
// expanding ByteRun1 rows when the header says the body is compressed.
type bodyReader struct {
	data       []byte
	pos        int
	compressed bool
}

func newBodyReader(data []byte, compression uint8) *bodyReader {
	return &bodyReader{
		data:       data,
		compressed: compression == CompressByteRun1,
	}
}

// row fills dst with the next len(dst) decoded bytes.
func (br *bodyReader) row(dst []byte) error {
	if br.compressed {
		pos, err := unpackByteRun1(br.data, br.pos, dst)
		br.pos = pos
		return err
	}
	if br.pos+len(dst) > len(br.data) {
		return badFile("body truncated: need %d bytes, have %d", br.pos+len(dst), len(br.data))
	}
	copy(dst, br.data[br.pos:br.pos+len(dst)])
	br.pos += len(dst)
	return nil
}

// spreadPlaneRow ors bit plane of each pixel in out from the packed
// plane row. Row padding bits beyond width are skipped, not
// interpreted as pixels.
func spreadPlaneRow(row []byte, plane uint, out []uint8) {
	for x := range out {
		if row[x>>3]&(0x80>>uint(x&7)) != 0 {
			out[x] |= 1 << plane
		}
	}
}

// planeBit reports the single bit for pixel x of a packed plane row.
func planeBit(row []byte, x int) uint8 {
	if row[x>>3]&(0x80>>uint(x&7)) != 0 {
		return 1
	}
	return 0
}

// interleavedRow reconstructs one row of per-pixel index values from
// nPlanes consecutive plane rows (the ILBM layout). planeBuf must be
// rowBytes(width) long and indices width long; indices is cleared
// first. An optional extra mask plane is handled by the caller.
func interleavedRow(br *bodyReader, nPlanes int, planeBuf []byte, indices []uint8) error {
	for i := range indices {
		indices[i] = 0
	}
	for plane := 0; plane < nPlanes; plane++ {
		if err := br.row(planeBuf); err != nil {
			return err
		}
		spreadPlaneRow(planeBuf, uint(plane), indices)
	}
	return nil
}

// contiguousPlanes reconstructs per-pixel index values for a whole
// image stored as one contiguous bitmap per plane (the ACBM ABIT
// layout). The returned buffer is width*height indices, row-major.
func contiguousPlanes(data []byte, width, height, nPlanes int) ([]uint8, error) {
	rb := rowBytes(uint16(width))
	planeSize := rb * height
	if len(data) < planeSize*nPlanes {
		return nil, badFile("ABIT truncated: need %d bytes, have %d", planeSize*nPlanes, len(data))
	}

	indices := make([]uint8, width*height)
	for plane := 0; plane < nPlanes; plane++ {
		for y := 0; y < height; y++ {
			row := data[plane*planeSize+y*rb:]
			spreadPlaneRow(row[:rb], uint(plane), indices[y*width:(y+1)*width])
		}
	}
	return indices, nil
}

package picture

// Facsimile line decompression for FAXX bodies: ITU-T T.4 Modified
// Huffman (1-D run-length coding) and Modified READ / MMR (2-D coding
// predicted from the previous line). Lines decode strictly in order;
// the previous line's pixels are the reference for 2-D modes, so rows
// cannot be decoded in parallel. Decoded rows are 1 bit per pixel,
// MSB first, with set bits meaning white.

// faxCoding selects the line coding scheme.
type faxCoding int

const (
	faxMH  faxCoding = iota // 1-D Modified Huffman
	faxMMR                  // 2-D Modified READ (G4)
)

// bitReader walks a fax bitstream MSB first.
type bitReader struct {
	data []byte
	pos  int // bit position
}

func (r *bitReader) size() int {
	return len(r.data) << 3
}

func (r *bitReader) empty() bool {
	return r.pos >= r.size()
}

func (r *bitReader) next() bool {
	bit := r.data[r.pos>>3]&(0x80>>uint(r.pos&7)) != 0
	r.pos++
	return bit
}

// skipEOL consumes an end-of-line code (eleven 0 bits then a 1) if one
// starts at the current position, and rewinds otherwise. Coded lines
// may or may not carry EOLs; both must decode.
func (r *bitReader) skipEOL() {
	start := r.pos
	zeros := 0
	for !r.empty() {
		if r.next() {
			if zeros < 11 {
				r.pos = start
			}
			return
		}
		zeros++
	}
	r.pos = start
}

// readRun decodes one Huffman run code from the stream using the
// white or black code table. Returns -1 on an unrecognized code word.
func (r *bitReader) readRun(table []byte) int {
	code := uint32(0)
	off := 0
	for {
		if r.empty() {
			return -1
		}
		code <<= 1
		if r.next() {
			code |= 1
		}

		n := table[off]
		if n == 0xff {
			return -1
		}
		off++
		for end := off + int(n)*3; off < end; off += 3 {
			// Compare the full accumulated code word, not just its low
			// byte, so long corrupt codes cannot alias a short entry.
			if uint32(table[off]) == code {
				return int(table[off+1]) | int(table[off+2])<<8
			}
		}
	}
}

// readRunLength accumulates make-up codes (runs of 64 or more) until a
// terminating code below 64.
func (r *bitReader) readRunLength(white bool) int {
	table := faxBlackRuns
	if white {
		table = faxWhiteRuns
	}
	total := 0
	for {
		run := r.readRun(table)
		if run < 0 {
			return -1
		}
		total += run
		if run < 64 {
			return total
		}
	}
}

// faxRow operations on packed 1bpp rows (set bit = white).

func faxFillWhite(row []byte) {
	for i := range row {
		row[i] = 0xff
	}
}

// faxFillBlack clears [start, end) to black.
func faxFillBlack(row []byte, width, start, end int) {
	if start < 0 {
		start = 0
	}
	if end > width {
		end = width
	}
	for x := start; x < end; x++ {
		row[x>>3] &^= 0x80 >> uint(x&7)
	}
}

func faxBit(row []byte, x int) bool {
	return row[x>>3]&(0x80>>uint(x&7)) != 0
}

// findTransition returns the position of the first pixel at or after
// start whose color matches white, or width if there is none.
func findTransition(row []byte, width, start int, white bool) int {
	for x := start; x < width; x++ {
		if faxBit(row, x) == white {
			return x
		}
	}
	return width
}

// findB1B2 locates the first changing element on the reference line to
// the right of a0 with color opposite a0's (b1), and the next changing
// element after that (b2).
func findB1B2(ref []byte, width, a0 int, a0White bool) (b1, b2 int) {
	first := a0 < 0 || faxBit(ref, a0)
	b1 = findTransition(ref, width, a0+1, !first)
	if b1 >= width {
		return width, width
	}
	if first == !a0White {
		b1 = findTransition(ref, width, b1+1, first)
		first = !first
	}
	if b1 >= width {
		return width, width
	}
	b2 = findTransition(ref, width, b1+1, first)
	return b1, b2
}

// decodeMHLine decodes one 1-D coded line of alternating white/black
// runs into row.
func (r *bitReader) decodeMHLine(row []byte, width int) error {
	faxFillWhite(row)
	white := true
	pos := 0
	for pos < width {
		run := r.readRunLength(white)
		if run < 0 {
			return badFile("bad fax code word at pixel %d", pos)
		}
		if !white {
			faxFillBlack(row, width, pos, pos+run)
		}
		pos += run
		white = !white
	}
	if pos > width {
		return badFile("fax run overruns line by %d pixels", pos-width)
	}
	return nil
}

// decodeMMRLine decodes one 2-D coded line against the reference line.
func (r *bitReader) decodeMMRLine(row, ref []byte, width int) error {
	faxFillWhite(row)

	a0 := -1
	a0White := true
	for {
		if r.empty() {
			return badFile("fax stream exhausted mid-line")
		}

		b1, b2 := findB1B2(ref, width, a0, a0White)

		var delta int
		switch {
		case r.next():
			// V(0)
			delta = 0
		default:
			if r.empty() {
				return badFile("fax stream exhausted mid-line")
			}
			bit1 := r.next()
			if r.empty() {
				return badFile("fax stream exhausted mid-line")
			}
			bit2 := r.next()
			switch {
			case bit1:
				// VR(1) / VL(1)
				delta = 1
				if !bit2 {
					delta = -1
				}
			case bit2:
				// Horizontal: two explicit runs from a0.
				run1 := r.readRunLength(a0White)
				if run1 < 0 {
					return badFile("bad fax code word in horizontal mode")
				}
				if a0 < 0 {
					run1++
				}
				a1 := a0 + run1
				if !a0White {
					faxFillBlack(row, width, a0, a1)
				}
				run2 := r.readRunLength(!a0White)
				if run2 < 0 {
					return badFile("bad fax code word in horizontal mode")
				}
				a2 := a1 + run2
				if a0White {
					faxFillBlack(row, width, a1, a2)
				}
				a0 = a2
				if a0 < width {
					continue
				}
				return nil
			default:
				if r.empty() {
					return badFile("fax stream exhausted mid-line")
				}
				if r.next() {
					// Pass: color continues through b2.
					if !a0White {
						faxFillBlack(row, width, a0, b2)
					}
					if b2 >= width {
						return nil
					}
					a0 = b2
					continue
				}
				if r.empty() {
					return badFile("fax stream exhausted mid-line")
				}
				bit4 := r.next()
				if r.empty() {
					return badFile("fax stream exhausted mid-line")
				}
				bit5 := r.next()
				switch {
				case bit4:
					delta = 2
					if !bit5 {
						delta = -2
					}
				case bit5:
					if r.empty() {
						return badFile("fax stream exhausted mid-line")
					}
					delta = 3
					if !r.next() {
						delta = -3
					}
				default:
					return badFile("unrecognized fax mode code")
				}
			}
		}

		a1 := b1 + delta
		if !a0White {
			faxFillBlack(row, width, a0, a1)
		}
		if a1 >= width {
			return nil
		}
		if a0 >= a1 {
			return badFile("fax changing elements not monotonic")
		}
		a0 = a1
		a0White = !a0White
	}
}

// decodeFax expands a fax-coded body into height packed 1bpp rows of
// width pixels each. A corrupt code word aborts decoding with the
// failing line's index in the error.
func decodeFax(body []byte, width, height int, coding faxCoding) ([][]byte, error) {
	rb := (width + 7) / 8
	r := &bitReader{data: body}

	ref := make([]byte, rb)
	faxFillWhite(ref)

	rows := make([][]byte, height)
	for y := 0; y < height; y++ {
		rows[y] = make([]byte, rb)
		r.skipEOL()

		var err error
		switch coding {
		case faxMH:
			err = r.decodeMHLine(rows[y], width)
		case faxMMR:
			err = r.decodeMMRLine(rows[y], ref, width)
		}
		if err != nil {
			return nil, badFile("fax line %d: %v", y, err)
		}
		copy(ref, rows[y])
	}
	return rows, nil
}

// faxRawRows splits an uncompressed facsimile body into word aligned
// packed 1bpp rows.
func faxRawRows(body []byte, width, height int) ([][]byte, error) {
	stride := ((width + 15) >> 4) << 1
	if len(body) < stride*height {
		return nil, badFile("fax body truncated: %d bytes for %dx%d", len(body), width, height)
	}

	rows := make([][]byte, height)
	for y := 0; y < height; y++ {
		rows[y] = body[y*stride : (y+1)*stride]
	}
	return rows, nil
}

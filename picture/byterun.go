package picture

// ByteRun1 run-length coding, as used by BODY chunks when
// BMHD.compression is 1. The stream is a sequence of control bytes: n
// in 0..127 copies the next n+1 literal bytes, n in 129..255 repeats
// the next byte 257-n times, and 128 is a no-op.

// unpackByteRun1 decompresses exactly len(dst) bytes from src starting
// at pos and returns the position of the first unconsumed byte. A run
// crossing the end of dst, or src running dry first, is a BadFile
// error; the expected length is authoritative.
func unpackByteRun1(src []byte, pos int, dst []byte) (int, error) {
	out := 0
	for out < len(dst) {
		if pos >= len(src) {
			return pos, badFile("ByteRun1 stream truncated at byte %d of %d", out, len(dst))
		}
		code := src[pos]
		pos++

		switch {
		case code <= 127:
			n := int(code) + 1
			if out+n > len(dst) {
				return pos, badFile("ByteRun1 literal run overruns row by %d bytes", out+n-len(dst))
			}
			if pos+n > len(src) {
				return pos, badFile("ByteRun1 stream truncated inside literal run")
			}
			copy(dst[out:out+n], src[pos:pos+n])
			pos += n
			out += n
		case code != 128:
			n := 257 - int(code)
			if out+n > len(dst) {
				return pos, badFile("ByteRun1 repeat run overruns row by %d bytes", out+n-len(dst))
			}
			if pos >= len(src) {
				return pos, badFile("ByteRun1 stream truncated before repeat value")
			}
			v := src[pos]
			pos++
			for i := 0; i < n; i++ {
				dst[out+i] = v
			}
			out += n
		}
		// code 128 is a no-op.
	}
	return pos, nil
}

// packByteRun1 compresses src and appends the result to dst. Runs of
// three or more equal bytes become repeat runs; everything else is
// emitted as literals of at most 128 bytes.
func packByteRun1(dst, src []byte) []byte {
	const maxRun = 128

	for len(src) > 0 {
		// Measure the run of equal bytes at the front.
		run := 1
		for run < len(src) && run < maxRun && src[run] == src[0] {
			run++
		}
		if run >= 3 {
			dst = append(dst, byte(257-run), src[0])
			src = src[run:]
			continue
		}

		// Collect literals until the next run of three.
		lit := run
		for lit < len(src) && lit < maxRun {
			if lit+2 < len(src) && src[lit] == src[lit+1] && src[lit] == src[lit+2] {
				break
			}
			lit++
		}
		dst = append(dst, byte(lit-1))
		dst = append(dst, src[:lit]...)
		src = src[lit:]
	}
	return dst
}

package mnemonic

import "fmt"

// wordMask keeps the low wordBits bits of a value.
const wordMask = 1<<wordBits - 1

// bitPacker accumulates 11-bit values MSB first into a byte buffer.
// The final partial byte is left-aligned with zero low bits.
type bitPacker struct {
	buf      []byte
	pending  uint16 // bits of the partial byte, right-aligned
	unused   uint8  // free bits in the partial byte; 8 when there is none
	finished bool
}

// newBitPacker returns a packer sized for wordCount values.
// Callers validate the word count first, so an oversized count is a bug.
func newBitPacker(wordCount int) *bitPacker {
	if wordCount < 0 || wordCount > MaxWords {
		panic(fmt.Sprintf("mnemonic: bit packer sized for %d words, max %d", wordCount, MaxWords))
	}
	return &bitPacker{
		buf:    make([]byte, 0, (wordBits*wordCount+7)/8+1),
		unused: 8,
	}
}

// write11 appends the low 11 bits of v.
func (p *bitPacker) write11(v uint16) {
	if p.finished {
		panic("mnemonic: write to finished bit packer")
	}
	v &= wordMask
	remaining := uint8(wordBits)

	// Complete the partial byte. remaining is always larger than unused here.
	if p.unused < 8 {
		excess := remaining - p.unused
		p.pending = p.pending<<p.unused | (v>>excess)&lowBits(p.unused)
		p.buf = append(p.buf, byte(p.pending))
		remaining = excess
		p.pending = 0
		p.unused = 8
	}

	for remaining >= 8 {
		remaining -= 8
		p.buf = append(p.buf, byte(v>>remaining))
	}

	if remaining > 0 {
		p.pending = p.pending<<remaining | v&lowBits(remaining)
		p.unused -= remaining
	}
}

// finish flushes the partial byte, if any, into the high bits of a final byte.
func (p *bitPacker) finish() {
	if p.finished {
		panic("mnemonic: bit packer finished twice")
	}
	if p.unused != 8 {
		p.buf = append(p.buf, byte(p.pending<<p.unused))
		p.pending = 0
		p.unused = 8
	}
	p.finished = true
}

// bytes returns the packed buffer. Only valid after finish.
func (p *bitPacker) bytes() []byte {
	return p.buf
}

// bitUnpacker reads successive 11-bit big-endian values from a byte slice.
type bitUnpacker struct {
	buf []byte
	pos int // cursor, in bits
}

func newBitUnpacker(buf []byte) *bitUnpacker {
	return &bitUnpacker{buf: buf}
}

// read11 returns the next 11 bits and advances the cursor.
// Reading past the end of the buffer panics; it is never zero-padded.
func (u *bitUnpacker) read11() uint16 {
	if u.bitsLeft() < wordBits {
		panic(fmt.Sprintf("mnemonic: read of bits [%d,%d) past %d-byte buffer", u.pos, u.pos+wordBits, len(u.buf)))
	}

	// An 11-bit group touches at most three bytes.
	first := u.pos / 8
	var window uint32
	for i := 0; i < 3; i++ {
		window <<= 8
		if first+i < len(u.buf) {
			window |= uint32(u.buf[first+i])
		}
	}
	shift := 24 - wordBits - u.pos%8

	u.pos += wordBits
	return uint16(window>>shift) & wordMask
}

// bitsLeft returns the number of unread bits.
func (u *bitUnpacker) bitsLeft() int {
	return len(u.buf)*8 - u.pos
}

func lowBits(n uint8) uint16 {
	return 1<<n - 1
}

// Package bitstream reads and writes little-endian, LSB-first bit streams.
//
// Reader keeps a 64-bit lookahead word. When fewer than eight bytes remain,
// the tail is loaded into the high end of the word so that the position
// cursor still runs up to 64 and BitsRemaining stays exact.
package bitstream

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

const wordBits = 64

type Reader struct {
	data    []byte
	current uint64
	pos     uint
}

func NewReader(data []byte) *Reader {
	r := &Reader{data: data, pos: wordBits}
	if len(data) > 0 {
		r.refill()
	}
	return r
}

// IsEmpty reports whether every bit has been consumed.
func (r *Reader) IsEmpty() bool {
	return len(r.data) == 0 && r.pos == wordBits
}

func (r *Reader) BitsRemaining() int {
	return int(wordBits-r.pos) + 8*len(r.data)
}

func (r *Reader) HasBits(n int) bool {
	return r.BitsRemaining() >= n
}

// refill loads the next word. Callers guarantee the current word is spent.
func (r *Reader) refill() {
	if len(r.data) >= 8 {
		r.current = binary.LittleEndian.Uint64(r.data)
		r.data = r.data[8:]
		r.pos = 0
		return
	}
	if len(r.data) == 0 {
		panic("bitstream: read past end of data")
	}
	var buf [8]byte
	n := len(r.data)
	copy(buf[8-n:], r.data)
	r.current = binary.LittleEndian.Uint64(buf[:])
	r.data = r.data[:0]
	r.pos = uint(wordBits - n*8)
}

func mask(n uint) uint64 {
	if n >= wordBits {
		return math.MaxUint64
	}
	return (uint64(1) << n) - 1
}

func (r *Reader) readBits(n uint) uint64 {
	if n == 0 {
		return 0
	}
	avail := wordBits - r.pos
	if avail >= n {
		res := (r.current >> r.pos) & mask(n)
		r.pos += n
		if r.pos == wordBits && len(r.data) > 0 {
			r.refill()
		}
		return res
	}

	var res uint64
	got := uint(0)
	if avail > 0 {
		res = r.current >> r.pos
		got = avail
	}
	r.refill()
	rest := n - got
	res |= ((r.current >> r.pos) & mask(rest)) << got
	r.pos += rest
	if r.pos == wordBits && len(r.data) > 0 {
		r.refill()
	}
	return res
}

func (r *Reader) ReadBit() (bool, bool) {
	if r.IsEmpty() {
		return false, false
	}
	return r.readBits(1) == 1, true
}

func (r *Reader) MustReadBit() bool {
	if r.IsEmpty() {
		panic("bitstream: MustReadBit on empty reader")
	}
	return r.readBits(1) == 1
}

// ReadBits reads n (at most 64) bits as an unsigned integer.
func (r *Reader) ReadBits(n int) (uint64, bool) {
	if n < 0 || n > wordBits {
		panic(fmt.Sprintf("bitstream: invalid bit count %d", n))
	}
	if !r.HasBits(n) {
		return 0, false
	}
	return r.readBits(uint(n)), true
}

func (r *Reader) MustReadBits(n int) uint64 {
	v, ok := r.ReadBits(n)
	if !ok {
		panic(fmt.Sprintf("bitstream: need %d bits, have %d", n, r.BitsRemaining()))
	}
	return v
}

func (r *Reader) ReadU8() (uint8, bool) {
	v, ok := r.ReadBits(8)
	return uint8(v), ok
}

func (r *Reader) ReadI8() (int8, bool) {
	v, ok := r.ReadBits(8)
	return int8(v), ok
}

func (r *Reader) ReadU16() (uint16, bool) {
	v, ok := r.ReadBits(16)
	return uint16(v), ok
}

func (r *Reader) ReadI16() (int16, bool) {
	v, ok := r.ReadBits(16)
	return int16(v), ok
}

func (r *Reader) ReadU32() (uint32, bool) {
	v, ok := r.ReadBits(32)
	return uint32(v), ok
}

func (r *Reader) ReadI32() (int32, bool) {
	v, ok := r.ReadBits(32)
	return int32(v), ok
}

func (r *Reader) ReadU64() (uint64, bool) {
	return r.ReadBits(64)
}

func (r *Reader) ReadI64() (int64, bool) {
	v, ok := r.ReadBits(64)
	return int64(v), ok
}

func (r *Reader) ReadF32() (float32, bool) {
	v, ok := r.ReadBits(32)
	return math.Float32frombits(uint32(v)), ok
}

func (r *Reader) MustReadU8() uint8   { return uint8(r.MustReadBits(8)) }
func (r *Reader) MustReadU32() uint32 { return uint32(r.MustReadBits(32)) }
func (r *Reader) MustReadI32() int32  { return int32(r.MustReadBits(32)) }
func (r *Reader) MustReadF32() float32 {
	return math.Float32frombits(uint32(r.MustReadBits(32)))
}

// BoundedWidth is the bit width used to encode values below max,
// ceil(log2(max)). It is zero for max <= 1.
func BoundedWidth(max uint64) int {
	if max <= 1 {
		return 0
	}
	return bits.Len64(max - 1)
}

// ReadBoundedValue decodes a value in [0, max) written with width
// BoundedWidth(max). The top bit is only present on the wire when setting
// it would still yield a value below max.
func (r *Reader) ReadBoundedValue(width int, max uint64) (uint64, bool) {
	if width == 0 {
		return 0, true
	}
	low, ok := r.ReadBits(width - 1)
	if !ok {
		return 0, false
	}
	high := low + (uint64(1) << (width - 1))
	if high >= max {
		return low, true
	}
	bit, ok := r.ReadBit()
	if !ok {
		return 0, false
	}
	if bit {
		return high, true
	}
	return low, true
}

// MustReadBoundedValue is the unchecked form of ReadBoundedValue. Callers
// must have verified at least width bits are available.
func (r *Reader) MustReadBoundedValue(width int, max uint64) uint64 {
	v, ok := r.ReadBoundedValue(width, max)
	if !ok {
		panic(fmt.Sprintf("bitstream: bounded read of width %d past end", width))
	}
	return v
}

// ReadBytes reads n whole bytes starting at the current bit position,
// which need not be byte aligned.
func (r *Reader) ReadBytes(n int) ([]byte, bool) {
	if n < 0 || !r.HasBits(n*8) {
		return nil, false
	}
	out := make([]byte, n)
	for i := range out {
		out[i] = byte(r.readBits(8))
	}
	return out, true
}

// SkipBits discards n bits.
func (r *Reader) SkipBits(n int) bool {
	if !r.HasBits(n) {
		return false
	}
	for n > 0 {
		step := n
		if step > wordBits {
			step = wordBits
		}
		r.readBits(uint(step))
		n -= step
	}
	return true
}

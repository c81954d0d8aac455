package bitstream

import "math"

// Writer produces streams Reader can consume. The zero value is ready to use.
type Writer struct {
	buf  []byte
	nbit int
}

func (w *Writer) Len() int { return w.nbit }

func (w *Writer) WriteBit(b bool) {
	if w.nbit%8 == 0 {
		w.buf = append(w.buf, 0)
	}
	if b {
		w.buf[w.nbit/8] |= 1 << (w.nbit % 8)
	}
	w.nbit++
}

// WriteBits writes the low n bits of v, least significant first.
func (w *Writer) WriteBits(v uint64, n int) {
	for i := 0; i < n; i++ {
		w.WriteBit(v&(uint64(1)<<i) != 0)
	}
}

func (w *Writer) WriteU8(v uint8)   { w.WriteBits(uint64(v), 8) }
func (w *Writer) WriteU16(v uint16) { w.WriteBits(uint64(v), 16) }
func (w *Writer) WriteU32(v uint32) { w.WriteBits(uint64(v), 32) }
func (w *Writer) WriteI32(v int32)  { w.WriteBits(uint64(uint32(v)), 32) }
func (w *Writer) WriteU64(v uint64) { w.WriteBits(v, 64) }
func (w *Writer) WriteF32(v float32) {
	w.WriteBits(uint64(math.Float32bits(v)), 32)
}

func (w *Writer) WriteBytes(b []byte) {
	for _, c := range b {
		w.WriteU8(c)
	}
}

// WriteBoundedValue encodes v < max so that ReadBoundedValue with the same
// max returns v.
func (w *Writer) WriteBoundedValue(v, max uint64) {
	width := BoundedWidth(max)
	if width == 0 {
		return
	}
	top := uint64(1) << (width - 1)
	low := v &^ top
	w.WriteBits(low, width-1)
	if low+top < max {
		w.WriteBit(v&top != 0)
	}
}

// Bytes returns the written stream, zero padded to a whole byte.
func (w *Writer) Bytes() []byte {
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return out
}

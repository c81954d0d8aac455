package attributes

import (
	"math"

	"rlreplay.dev/internal/bitstream"
)

type Vector3i struct {
	X, Y, Z int32
}

type Vector3f struct {
	X, Y, Z float32
}

type Quaternion struct {
	X, Y, Z, W float32
}

// Rotation is the spawn-time rotation; absent components are nil.
type Rotation struct {
	Yaw   *int8
	Pitch *int8
	Roll  *int8
}

// DecodeVector3i reads a packed integer vector. The per-component width is
// itself bounded-encoded.
func DecodeVector3i(r *bitstream.Reader, netVersion int32) (Vector3i, bool) {
	maxBits := uint64(20)
	if netVersion >= 7 {
		maxBits = 22
	}
	sizeBits, ok := r.ReadBoundedValue(bitstream.BoundedWidth(maxBits), maxBits)
	if !ok {
		return Vector3i{}, false
	}
	bias := int64(1) << (sizeBits + 1)
	limit := int(sizeBits + 2)

	var c [3]int32
	for i := range c {
		v, ok := r.ReadBits(limit)
		if !ok {
			return Vector3i{}, false
		}
		c[i] = int32(int64(v) - bias)
	}
	return Vector3i{X: c[0], Y: c[1], Z: c[2]}, true
}

// DecodeVector3f reads a packed vector in hundredths.
func DecodeVector3f(r *bitstream.Reader, netVersion int32) (Vector3f, bool) {
	v, ok := DecodeVector3i(r, netVersion)
	if !ok {
		return Vector3f{}, false
	}
	return Vector3f{X: float32(v.X) / 100, Y: float32(v.Y) / 100, Z: float32(v.Z) / 100}, true
}

const (
	quatComponentBits = 18
	quatMaxValue      = 0.7071067811865476
)

func unpackQuatComponent(v uint64) float32 {
	maxValue := float64((uint64(1) << quatComponentBits) - 1)
	posRange := float64(v) / maxValue
	return float32((posRange - 0.5) * 2 * quatMaxValue)
}

// DecodeQuaternion reads a smallest-three compressed quaternion: the index of
// the largest component followed by the three others.
func DecodeQuaternion(r *bitstream.Reader) (Quaternion, bool) {
	largest, ok := r.ReadBits(2)
	if !ok {
		return Quaternion{}, false
	}
	var c [3]float32
	for i := range c {
		v, ok := r.ReadBits(quatComponentBits)
		if !ok {
			return Quaternion{}, false
		}
		c[i] = unpackQuatComponent(v)
	}
	sum := 1 - float64(c[0]*c[0]+c[1]*c[1]+c[2]*c[2])
	if sum < 0 {
		sum = 0
	}
	extra := float32(math.Sqrt(sum))
	switch largest {
	case 0:
		return Quaternion{X: extra, Y: c[0], Z: c[1], W: c[2]}, true
	case 1:
		return Quaternion{X: c[0], Y: extra, Z: c[1], W: c[2]}, true
	case 2:
		return Quaternion{X: c[0], Y: c[1], Z: extra, W: c[2]}, true
	default:
		return Quaternion{X: c[0], Y: c[1], Z: c[2], W: extra}, true
	}
}

func readOptionalI8(r *bitstream.Reader) (*int8, bool) {
	present, ok := r.ReadBit()
	if !ok {
		return nil, false
	}
	if !present {
		return nil, true
	}
	v, ok := r.ReadI8()
	if !ok {
		return nil, false
	}
	return &v, true
}

func DecodeRotation(r *bitstream.Reader) (Rotation, bool) {
	yaw, ok := readOptionalI8(r)
	if !ok {
		return Rotation{}, false
	}
	pitch, ok := readOptionalI8(r)
	if !ok {
		return Rotation{}, false
	}
	roll, ok := readOptionalI8(r)
	if !ok {
		return Rotation{}, false
	}
	return Rotation{Yaw: yaw, Pitch: pitch, Roll: roll}, true
}

// EncodeVector3i is the inverse of DecodeVector3i, used to build fixtures.
func EncodeVector3i(w *bitstream.Writer, v Vector3i, netVersion int32) {
	maxBits := uint64(20)
	if netVersion >= 7 {
		maxBits = 22
	}
	need := uint64(1)
	for _, c := range []int32{v.X, v.Y, v.Z} {
		for need+1 < maxBits && (int64(c) < -(int64(1)<<(need+1)) || int64(c) >= int64(1)<<(need+1)) {
			need++
		}
	}
	w.WriteBoundedValue(need, maxBits)
	bias := int64(1) << (need + 1)
	for _, c := range []int32{v.X, v.Y, v.Z} {
		w.WriteBits(uint64(int64(c)+bias), int(need+2))
	}
}

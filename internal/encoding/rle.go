// Package encoding packs per-tick state vectors for the tick stream.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeStates run-length encodes a state vector (for example one damage
// byte per dropshot tile) into base64 of uvarint (state, run) pairs.
func EncodeStates(states []uint8) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	for i := 0; i < len(states); {
		s := states[i]
		run := 1
		for i+run < len(states) && states[i+run] == s {
			run++
		}
		n := binary.PutUvarint(tmp[:], uint64(s))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])
		i += run
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeStates reverses EncodeStates. limit caps the decoded length.
func DecodeStates(b64 string, limit int) ([]uint8, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint8
	for i := 0; i < len(raw); {
		s, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if s > 0xFF {
			return nil, fmt.Errorf("state too large: %d", s)
		}
		if run == 0 || uint64(len(out))+run > uint64(limit) {
			return nil, fmt.Errorf("run of %d exceeds limit %d", run, limit)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint8(s))
		}
	}
	return out, nil
}

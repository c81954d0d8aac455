package encoding

import "testing"

func TestStates_RoundTrip(t *testing.T) {
	in := make([]uint8, 0, 140)
	in = append(in, 1, 1, 1, 2, 2, 3)
	for i := 0; i < 120; i++ {
		in = append(in, 0)
	}
	in = append(in, 9, 10, 10, 10)

	enc := EncodeStates(in)
	out, err := DecodeStates(enc, len(in))
	if err != nil {
		t.Fatalf("DecodeStates: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("len mismatch: got %d want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, out[i], in[i])
		}
	}
}

func TestDecodeStates_Limit(t *testing.T) {
	enc := EncodeStates(make([]uint8, 200))
	if _, err := DecodeStates(enc, 140); err == nil {
		t.Fatalf("expected limit error")
	}
}

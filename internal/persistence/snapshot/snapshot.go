package snapshot

import (
	"bufio"
	"encoding/gob"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"rlreplay.dev/internal/frames"
)

// Version of the timeline layout written by WriteTimeline.
const Version = 1

type Header struct {
	Version  int    `json:"version"`
	ReplayID string `json:"replay_id"`
	Frames   int    `json:"frames"`
}

// TimelineV1 is a decoded replay at rest.
type TimelineV1 struct {
	Header Header       `json:"header"`
	Data   *frames.Data `json:"data"`
}

func NewTimeline(replayID string, d *frames.Data) TimelineV1 {
	return TimelineV1{
		Header: Header{Version: Version, ReplayID: replayID, Frames: d.Len()},
		Data:   d,
	}
}

// WriteTimeline stores tl as a zstd stream: one JSON header line followed
// by the gob encoding of the whole timeline.
func WriteTimeline(path string, tl TimelineV1) (err error) {
	if tl.Data == nil {
		return fmt.Errorf("timeline %q has no data", tl.Header.ReplayID)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return err
	}
	bw := bufio.NewWriterSize(enc, 256*1024)

	hb, _ := json.Marshal(tl.Header)
	if _, err := bw.Write(hb); err != nil {
		return err
	}
	if err := bw.WriteByte('\n'); err != nil {
		return err
	}
	if err := gob.NewEncoder(bw).Encode(&tl); err != nil {
		return fmt.Errorf("gob encode: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return err
	}
	return enc.Close()
}

func ReadTimeline(path string) (TimelineV1, error) {
	var tl TimelineV1
	f, err := os.Open(path)
	if err != nil {
		return tl, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return tl, err
	}
	defer dec.Close()

	br := bufio.NewReaderSize(dec, 256*1024)

	var h Header
	line, err := br.ReadBytes('\n')
	if err != nil {
		return tl, fmt.Errorf("header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return tl, fmt.Errorf("header: %w", err)
	}
	if h.Version != Version {
		return tl, fmt.Errorf("unsupported timeline version %d", h.Version)
	}

	if err := gob.NewDecoder(br).Decode(&tl); err != nil {
		return tl, fmt.Errorf("gob decode: %w", err)
	}
	return tl, nil
}

// ReadHeader reads only the header line of a timeline.
func ReadHeader(path string) (Header, error) {
	var h Header
	f, err := os.Open(path)
	if err != nil {
		return h, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return h, err
	}
	defer dec.Close()

	line, err := bufio.NewReader(dec).ReadBytes('\n')
	if err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	if err := json.Unmarshal(line, &h); err != nil {
		return h, fmt.Errorf("header: %w", err)
	}
	return h, nil
}

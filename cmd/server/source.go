package main

import (
	"fmt"

	"rlreplay.dev/internal/frames"
	"rlreplay.dev/internal/persistence/bundle"
	"rlreplay.dev/internal/persistence/snapshot"
	"rlreplay.dev/internal/replay"
	"rlreplay.dev/internal/tuning"
)

type source struct {
	ID      string
	Data    *frames.Data
	Summary replay.Summary
}

// loadSource decodes bundlePath, or reloads a timeline written earlier.
func loadSource(bundlePath, timelinePath string, tune tuning.Tuning) (*source, error) {
	if timelinePath != "" {
		tl, err := snapshot.ReadTimeline(timelinePath)
		if err != nil {
			return nil, err
		}
		return newSource(tl.Header.ReplayID, tl.Data), nil
	}
	b, err := bundle.Load(bundlePath)
	if err != nil {
		return nil, err
	}
	in, err := b.Input(tune)
	if err != nil {
		return nil, err
	}
	d, err := replay.Decode(in)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", b.ID(), err)
	}
	return newSource(b.ID(), d), nil
}

func newSource(id string, d *frames.Data) *source {
	return &source{ID: id, Data: d, Summary: replay.Summarize(d)}
}

// Package bundle reads and writes session bundles: a YAML manifest with
// the tables a decode pass needs, next to the raw network payload.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/klauspost/compress/zstd"
	"gopkg.in/yaml.v3"

	"rlreplay.dev/internal/attributes"
	"rlreplay.dev/internal/network"
	"rlreplay.dev/internal/replay"
	"rlreplay.dev/internal/tuning"
)

type Manifest struct {
	ID          string             `yaml:"id,omitempty"`
	Version     attributes.Version `yaml:"version"`
	LAN         bool               `yaml:"lan,omitempty"`
	Frames      int                `yaml:"frames"`
	MaxChannels uint32             `yaml:"max_channels,omitempty"`
	GoalFrames  []int              `yaml:"goal_frames,omitempty"`
	Objects     []string           `yaml:"objects"`
	// Spawns maps object ids to their spawn classification; absent ids
	// spawn without a trajectory.
	Spawns  map[int]string `yaml:"spawns,omitempty"`
	Classes []ClassSpec    `yaml:"classes"`
	// Payload is relative to the manifest unless absolute. A .zst suffix
	// marks a zstd-compressed payload.
	Payload string `yaml:"payload"`
}

type ClassSpec struct {
	Object     int32           `yaml:"object"`
	MaxPropID  uint32          `yaml:"max_prop_id"`
	Attributes []AttributeSpec `yaml:"attributes"`
}

type AttributeSpec struct {
	Stream int32  `yaml:"stream"`
	Object int32  `yaml:"object"`
	Type   string `yaml:"type"`
}

type Bundle struct {
	Path     string
	Manifest Manifest
	Payload  []byte
}

// ID names the replay: the manifest id, or the manifest file name without
// its extensions.
func (b *Bundle) ID() string {
	if b.Manifest.ID != "" {
		return b.Manifest.ID
	}
	base := filepath.Base(b.Path)
	if i := strings.IndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	return base
}

func Load(path string) (*Bundle, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	payloadPath := m.Payload
	if !filepath.IsAbs(payloadPath) {
		payloadPath = filepath.Join(filepath.Dir(path), payloadPath)
	}
	payload, err := readPayload(payloadPath)
	if err != nil {
		return nil, fmt.Errorf("%s: payload: %w", path, err)
	}
	return &Bundle{Path: path, Manifest: m, Payload: payload}, nil
}

func readPayload(path string) ([]byte, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(path, ".zst") {
		return b, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(b, nil)
}

func (m *Manifest) Validate() error {
	if m.Frames < 0 {
		return fmt.Errorf("frames must not be negative")
	}
	if m.Payload == "" {
		return fmt.Errorf("payload is required")
	}
	if len(m.Objects) == 0 {
		return fmt.Errorf("objects is empty")
	}
	n := int32(len(m.Objects))
	for id, s := range m.Spawns {
		if id < 0 || int32(id) >= n {
			return fmt.Errorf("spawns: object %d out of range", id)
		}
		if _, ok := network.ParseSpawnTrajectory(s); !ok {
			return fmt.Errorf("spawns: object %d: unknown kind %q", id, s)
		}
	}
	seen := map[int32]bool{}
	for _, c := range m.Classes {
		if c.Object < 0 || c.Object >= n {
			return fmt.Errorf("classes: object %d out of range", c.Object)
		}
		if seen[c.Object] {
			return fmt.Errorf("classes: object %d listed twice", c.Object)
		}
		seen[c.Object] = true
		streams := map[int32]bool{}
		for _, a := range c.Attributes {
			if a.Object < 0 || a.Object >= n {
				return fmt.Errorf("class %d: attribute object %d out of range", c.Object, a.Object)
			}
			if a.Stream < 0 || uint32(a.Stream) > c.MaxPropID {
				return fmt.Errorf("class %d: stream %d above max_prop_id %d", c.Object, a.Stream, c.MaxPropID)
			}
			if streams[a.Stream] {
				return fmt.Errorf("class %d: stream %d listed twice", c.Object, a.Stream)
			}
			streams[a.Stream] = true
			if _, err := attributes.ParseTag(a.Type); err != nil {
				return fmt.Errorf("class %d stream %d: %w", c.Object, a.Stream, err)
			}
		}
	}
	return nil
}

// Input builds the decode pass input. The protocol cutoffs and the
// default channel count come from t.
func (b *Bundle) Input(t tuning.Tuning) (replay.Input, error) {
	m := b.Manifest
	maxChannels := m.MaxChannels
	if maxChannels == 0 {
		maxChannels = t.Protocol.DefaultMaxChannels
	}
	params := network.NewParams(m.Version, maxChannels,
		t.Protocol.HasNameID(m.Version, m.LAN),
		t.Protocol.HasTrailer(m.Version))

	spawns := make([]network.SpawnTrajectory, len(m.Objects))
	for id, s := range m.Spawns {
		spawns[id], _ = network.ParseSpawnTrajectory(s)
	}

	cache := make(map[network.ObjectID]*network.CacheInfo, len(m.Classes))
	for _, c := range m.Classes {
		attrs := make(map[network.StreamID]network.ObjectAttribute, len(c.Attributes))
		for _, a := range c.Attributes {
			tag, err := attributes.ParseTag(a.Type)
			if err != nil {
				return replay.Input{}, err
			}
			attrs[network.StreamID(a.Stream)] = network.ObjectAttribute{Tag: tag, ObjectID: network.ObjectID(a.Object)}
		}
		cache[network.ObjectID(c.Object)] = network.NewCacheInfo(c.MaxPropID, attrs)
	}

	return replay.Input{
		Payload:     b.Payload,
		Params:      params,
		Objects:     m.Objects,
		Spawns:      spawns,
		Cache:       cache,
		TotalFrames: m.Frames,
		GoalFrames:  m.GoalFrames,
		Tuning:      t,
	}, nil
}

// Write stores in as a bundle at path with the payload next to it,
// zstd-compressed when compress is set.
func Write(path, id string, in replay.Input, lan, compress bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	payloadName := base + ".bin"
	payload := in.Payload
	if compress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return err
		}
		payload = enc.EncodeAll(payload, nil)
		_ = enc.Close()
		payloadName += ".zst"
	}

	m := Manifest{
		ID:          id,
		Version:     in.Params.Version,
		LAN:         lan,
		Frames:      in.TotalFrames,
		MaxChannels: in.Params.MaxChannels,
		GoalFrames:  in.GoalFrames,
		Objects:     in.Objects,
		Spawns:      map[int]string{},
		Payload:     payloadName,
	}
	for obj, s := range in.Spawns {
		if s != network.SpawnNone {
			m.Spawns[obj] = s.String()
		}
	}
	objs := make([]network.ObjectID, 0, len(in.Cache))
	for obj := range in.Cache {
		objs = append(objs, obj)
	}
	sort.Slice(objs, func(i, j int) bool { return objs[i] < objs[j] })
	for _, obj := range objs {
		ci := in.Cache[obj]
		c := ClassSpec{Object: int32(obj), MaxPropID: ci.MaxPropID}
		streams := make([]network.StreamID, 0, len(ci.Attributes))
		for s := range ci.Attributes {
			streams = append(streams, s)
		}
		sort.Slice(streams, func(i, j int) bool { return streams[i] < streams[j] })
		for _, s := range streams {
			a := ci.Attributes[s]
			c.Attributes = append(c.Attributes, AttributeSpec{Stream: int32(s), Object: int32(a.ObjectID), Type: a.Tag.String()})
		}
		m.Classes = append(m.Classes, c)
	}

	raw, err := yaml.Marshal(&m)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(filepath.Dir(path), payloadName), payload, 0o644); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o644)
}

package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"rlreplay.dev/internal/attributes"
)

type Tuning struct {
	Protocol Protocol `yaml:"protocol" json:"protocol"`
	Boost    Boost    `yaml:"boost" json:"boost"`
	Rumble   Rumble   `yaml:"rumble" json:"rumble"`
}

type Protocol struct {
	// New-actor records carry a name id from this version on, except on LAN.
	NameIDMinVersion attributes.Version `yaml:"name_id_min_version" json:"name_id_min_version"`
	// A u32 trailer follows the last frame from this version on.
	TrailerMinVersion  attributes.Version `yaml:"trailer_min_version" json:"trailer_min_version"`
	DefaultMaxChannels uint32             `yaml:"default_max_channels" json:"default_max_channels"`
}

type Boost struct {
	UnitsPerSecond float32 `yaml:"units_per_second" json:"units_per_second"`
	Correction     float32 `yaml:"correction" json:"correction"`
	// Pickups are only detected when the previous amount is below this.
	PickupCeiling float32 `yaml:"pickup_ceiling" json:"pickup_ceiling"`
}

// PerSecond is the drain rate applied while boosting.
func (b Boost) PerSecond() float32 {
	if b.Correction == 0 {
		return b.UnitsPerSecond
	}
	return b.UnitsPerSecond / b.Correction
}

type Rumble struct {
	// FreezeItem can be deleted while active without a deactivation update.
	FreezeItem string `yaml:"freeze_item" json:"freeze_item"`
}

func Defaults() Tuning {
	return Tuning{
		Protocol: Protocol{
			NameIDMinVersion:   attributes.Version{Engine: 868, Licensee: 14, Net: 0},
			TrailerMinVersion:  attributes.Version{Engine: 868, Licensee: 24, Net: 10},
			DefaultMaxChannels: 1023,
		},
		Boost: Boost{
			UnitsPerSecond: 80,
			Correction:     0.93,
			PickupCeiling:  255,
		},
		Rumble: Rumble{
			FreezeItem: "BallFreeze",
		},
	}
}

// HasNameID reports whether new-actor records of a replay carry a name id.
func (p Protocol) HasNameID(v attributes.Version, lan bool) bool {
	return v.AtLeast(p.NameIDMinVersion) && !lan
}

func (p Protocol) HasTrailer(v attributes.Version) bool {
	return v.AtLeast(p.TrailerMinVersion)
}

// Load reads a tuning file. Fields absent from the file keep their defaults.
func Load(path string) (Tuning, error) {
	t := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	if t.Boost.UnitsPerSecond <= 0 {
		return t, fmt.Errorf("tuning.yaml: boost.units_per_second must be positive")
	}
	if t.Boost.Correction <= 0 {
		return t, fmt.Errorf("tuning.yaml: boost.correction must be positive")
	}
	if t.Boost.PickupCeiling <= 0 {
		return t, fmt.Errorf("tuning.yaml: boost.pickup_ceiling must be positive")
	}
	if t.Protocol.DefaultMaxChannels < 2 {
		return t, fmt.Errorf("tuning.yaml: protocol.default_max_channels must be at least 2")
	}
	return t, nil
}

// LoadOrDefaults loads path when set, otherwise returns Defaults.
func LoadOrDefaults(path string) (Tuning, error) {
	if path == "" {
		return Defaults(), nil
	}
	return Load(path)
}

package attributes

import (
	"fmt"
	"strconv"

	"rlreplay.dev/internal/bitstream"
)

type Platform uint8

const (
	PlatformSplitScreen Platform = 0
	PlatformSteam       Platform = 1
	PlatformPlayStation Platform = 2
	PlatformXbox        Platform = 4
	PlatformQQ          Platform = 5
	PlatformSwitch      Platform = 6
	PlatformPsyNet      Platform = 7
	PlatformEpic        Platform = 11
)

func (p Platform) String() string {
	switch p {
	case PlatformSplitScreen:
		return "splitscreen"
	case PlatformSteam:
		return "steam"
	case PlatformPlayStation:
		return "ps"
	case PlatformXbox:
		return "xbox"
	case PlatformQQ:
		return "qq"
	case PlatformSwitch:
		return "switch"
	case PlatformPsyNet:
		return "psynet"
	case PlatformEpic:
		return "epic"
	}
	return "platform" + strconv.Itoa(int(p))
}

// RemoteID identifies a player account on one platform.
type RemoteID struct {
	Platform Platform
	OnlineID uint64
	// Name is set instead of OnlineID for Epic ids and PlayStation names.
	Name string
}

// String is the platform-agnostic key used for player identity and party
// grouping: the bare online id, for example "76561198000000000". Epic ids
// are already strings and are returned as is.
func (id RemoteID) String() string {
	if id.Platform == PlatformEpic {
		return id.Name
	}
	return strconv.FormatUint(id.OnlineID, 10)
}

func decodeRemoteID(r *bitstream.Reader, system uint8, netVersion int32) (RemoteID, error) {
	id := RemoteID{Platform: Platform(system)}
	switch id.Platform {
	case PlatformSplitScreen:
		v, ok := r.ReadBits(24)
		if !ok {
			return id, fmt.Errorf("splitscreen id: %w", ErrTruncated)
		}
		id.OnlineID = v
	case PlatformSteam, PlatformXbox, PlatformQQ:
		v, ok := r.ReadU64()
		if !ok {
			return id, fmt.Errorf("%s id: %w", id.Platform, ErrTruncated)
		}
		id.OnlineID = v
	case PlatformSwitch:
		v, ok := r.ReadU64()
		if !ok || !r.SkipBits(24*8) {
			return id, fmt.Errorf("switch id: %w", ErrTruncated)
		}
		id.OnlineID = v
	case PlatformPsyNet:
		v, ok := r.ReadU64()
		if !ok {
			return id, fmt.Errorf("psynet id: %w", ErrTruncated)
		}
		if netVersion < 10 && !r.SkipBits(24*8) {
			return id, fmt.Errorf("psynet id: %w", ErrTruncated)
		}
		id.OnlineID = v
	case PlatformPlayStation:
		name, ok := r.ReadBytes(16)
		if !ok {
			return id, fmt.Errorf("ps name: %w", ErrTruncated)
		}
		skip := 8
		if netVersion >= 1 {
			skip = 16
		}
		if !r.SkipBits(skip * 8) {
			return id, fmt.Errorf("ps id: %w", ErrTruncated)
		}
		v, ok := r.ReadU64()
		if !ok {
			return id, fmt.Errorf("ps id: %w", ErrTruncated)
		}
		id.Name = trimNul(string(name))
		id.OnlineID = v
	case PlatformEpic:
		s, err := decodeString(r)
		if err != nil {
			return id, fmt.Errorf("epic id: %w", err)
		}
		id.Name = s
	default:
		return id, fmt.Errorf("remote id system %d: %w", system, ErrUnimplemented)
	}
	return id, nil
}

func decodeUniqueID(r *bitstream.Reader, netVersion int32) (UniqueID, error) {
	system, ok := r.ReadU8()
	if !ok {
		return UniqueID{}, fmt.Errorf("unique id system: %w", ErrTruncated)
	}
	return decodeUniqueIDBody(r, system, netVersion)
}

func decodeUniqueIDBody(r *bitstream.Reader, system uint8, netVersion int32) (UniqueID, error) {
	remote, err := decodeRemoteID(r, system, netVersion)
	if err != nil {
		return UniqueID{}, err
	}
	local, ok := r.ReadU8()
	if !ok {
		return UniqueID{}, fmt.Errorf("unique id local: %w", ErrTruncated)
	}
	return UniqueID{System: system, Remote: remote, LocalID: local}, nil
}

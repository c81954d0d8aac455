package network

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Frame error kinds. Match with errors.Is against a *FrameError or
// *DecodeError.
var (
	ErrNotEnoughData      = errors.New("not enough data")
	ErrTimeOutOfRange     = errors.New("time out of range")
	ErrDeltaOutOfRange    = errors.New("delta out of range")
	ErrObjectIDOutOfRange = errors.New("object id out of range")
	ErrMissingActor       = errors.New("missing actor")
	ErrMissingCache       = errors.New("missing cache")
	ErrMissingAttribute   = errors.New("missing attribute")
	ErrAttribute          = errors.New("attribute decode failed")
)

type FrameError struct {
	Kind error
	// What names the field that could not be read for ErrNotEnoughData.
	What     string
	Time     float32
	Delta    float32
	Actor    ActorID
	Object   ObjectID
	Stream   StreamID
	ParentID ObjectID
	Err      error
}

func (e *FrameError) Error() string {
	switch e.Kind {
	case ErrNotEnoughData:
		return fmt.Sprintf("not enough data to decode %s", e.What)
	case ErrTimeOutOfRange:
		return fmt.Sprintf("time is out of range: %v", e.Time)
	case ErrDeltaOutOfRange:
		return fmt.Sprintf("delta is out of range: %v", e.Delta)
	case ErrObjectIDOutOfRange:
		return fmt.Sprintf("new actor %d has object id %d out of range", e.Actor, e.Object)
	case ErrMissingActor:
		return fmt.Sprintf("attribute update for unknown actor %d", e.Actor)
	case ErrMissingCache:
		return fmt.Sprintf("actor %d of object %d has no attribute cache", e.Actor, e.Object)
	case ErrMissingAttribute:
		return fmt.Sprintf("actor %d of object %d has no attribute for stream %d", e.Actor, e.Object, e.Stream)
	case ErrAttribute:
		return fmt.Sprintf("actor %d of object %d stream %d (attribute object %d): %v", e.Actor, e.Object, e.Stream, e.ParentID, e.Err)
	}
	return fmt.Sprintf("frame error: %v", e.Kind)
}

func (e *FrameError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// FrameContext is a diagnostic snapshot taken when a frame fails to decode.
type FrameContext struct {
	Objects          []string
	ObjectAttributes map[ObjectID]map[StreamID]ObjectID
	Actors           map[ActorID]ObjectID
	NewActors        []NewActor
	DeletedActors    []ActorID
	Updated          []UpdatedAttribute
}

func (c *FrameContext) objectName(id ObjectID) string {
	if id >= 0 && int(id) < len(c.Objects) {
		return c.Objects[id]
	}
	return fmt.Sprintf("<object %d>", id)
}

// Summary renders the live actors and the partial frame with object names.
func (c *FrameContext) Summary() string {
	var b strings.Builder
	ids := make([]int, 0, len(c.Actors))
	for id := range c.Actors {
		ids = append(ids, int(id))
	}
	sort.Ints(ids)
	fmt.Fprintf(&b, "%d live actors\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&b, "  actor %d: %s\n", id, c.objectName(c.Actors[ActorID(id)]))
	}
	fmt.Fprintf(&b, "partial frame: %d new, %d deleted, %d updated\n", len(c.NewActors), len(c.DeletedActors), len(c.Updated))
	for _, a := range c.NewActors {
		fmt.Fprintf(&b, "  new %d: %s\n", a.ActorID, c.objectName(a.ObjectID))
	}
	for _, u := range c.Updated {
		fmt.Fprintf(&b, "  update %d: %s\n", u.ActorID, c.objectName(u.ObjectID))
	}
	return b.String()
}

// DecodeError is the failure of a whole decode pass.
type DecodeError struct {
	Frame   int
	Err     *FrameError
	Context *FrameContext
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("frame %d: %v", e.Frame, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

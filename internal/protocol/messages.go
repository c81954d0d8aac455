package protocol

import (
	"fmt"

	"rlreplay.dev/internal/frames"
)

// WELCOME (server -> client), sent once on connect.
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	ReplayID        string `json:"replay_id"`
	Frames          int    `json:"frames"`
}

// SUBSCRIBE (client -> server) asks for ticks [FromFrame, ToFrame) every
// Stride ticks. ToFrame 0 means the end of the replay; Stride 0 means 1.
// A new SUBSCRIBE replaces the one in flight.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	FromFrame       int    `json:"from_frame"`
	ToFrame         int    `json:"to_frame,omitempty"`
	Stride          int    `json:"stride,omitempty"`
}

// Range resolves the subscription against a replay of n ticks.
func (m SubscribeMsg) Range(n int) (from, to, stride int, err error) {
	from, to, stride = m.FromFrame, m.ToFrame, m.Stride
	if to == 0 {
		to = n
	}
	if stride == 0 {
		stride = 1
	}
	switch {
	case stride < 0:
		return 0, 0, 0, fmt.Errorf("stride %d is negative", stride)
	case from < 0 || from > n:
		return 0, 0, 0, fmt.Errorf("from_frame %d outside [0, %d]", from, n)
	case to < from || to > n:
		return 0, 0, 0, fmt.Errorf("to_frame %d outside [%d, %d]", to, from, n)
	}
	return from, to, stride, nil
}

// TICK (server -> client)
type TickMsg struct {
	Type string          `json:"type"`
	Tick frames.TickView `json:"tick"`
}

// DONE (server -> client) ends a subscription.
type DoneMsg struct {
	Type string `json:"type"`
	Sent int    `json:"sent"`
}

// ERROR (server -> client)
type ErrorMsg struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

func NewError(code, msg string) ErrorMsg {
	return ErrorMsg{Type: TypeError, Code: code, Message: msg}
}

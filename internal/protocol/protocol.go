package protocol

import (
	"encoding/json"

	"marsim/internal/sim/mars"
)

const Version = "1.0"

// Message types.
const (
	TypeSubscribe = "SUBSCRIBE"
	TypeWelcome   = "WELCOME"
	TypeTurn      = "TURN"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}

// SubscribeMsg is the observer handshake. The feed is read-only; there is no
// inbound action surface.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// WelcomeMsg answers a SUBSCRIBE with the world parameters.
type WelcomeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	GridWidth       int    `json:"grid_width"`
	GridHeight      int    `json:"grid_height"`
	Seed            int64  `json:"seed"`
	Turn            uint64 `json:"turn"`
}

// TurnMsg is one frame of the feed: the full agent state after a turn.
type TurnMsg struct {
	Type            string            `json:"type"`
	ProtocolVersion string            `json:"protocol_version"`
	Turn            uint64            `json:"turn"`
	Agents          []mars.AgentState `json:"agents"`
	Stats           mars.TurnStats    `json:"stats"`
}

// NewTurnMsg builds a TURN frame from a completed turn.
func NewTurnMsg(turn uint64, agents []mars.AgentState, stats mars.TurnStats) TurnMsg {
	return TurnMsg{
		Type:            TypeTurn,
		ProtocolVersion: Version,
		Turn:            turn,
		Agents:          agents,
		Stats:           stats,
	}
}

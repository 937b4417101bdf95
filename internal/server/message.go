package server

import (
	"encoding/json"
	"time"
)

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeAuth       MessageType = "auth"
	MessageTypeStartRound MessageType = "start_round"
	MessageTypeAction     MessageType = "action"
	MessageTypeInsurance  MessageType = "insurance"
	MessageTypeGetState   MessageType = "get_state"

	// Server to client messages
	MessageTypeAuthResponse  MessageType = "auth_response"
	MessageTypeError         MessageType = "error"
	MessageTypeState         MessageType = "state"
	MessageTypePlayerTimeout MessageType = "player_timeout"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message represents the base WebSocket message structure. Round
// events are forwarded with their event type string as the message
// type, alongside the protocol messages above.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type AuthData struct {
	PlayerName string `json:"playerName"`
}

type StartRoundData struct {
	Bet int `json:"bet"`
}

type ActionData struct {
	Action string `json:"action"` // hit, stand, double, split, surrender
}

type InsuranceData struct {
	Accept bool `json:"accept"`
	Amount int  `json:"amount,omitempty"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// HandState is one player hand in a state snapshot.
type HandState struct {
	Cards  []string `json:"cards"`
	Value  int      `json:"value"`
	Soft   bool     `json:"soft"`
	Bet    int      `json:"bet"`
	Active bool     `json:"active"`
}

// StateData is a full table snapshot, sent on request and after every
// phase change. The dealer's hole card is omitted until the engine
// reveals it.
type StateData struct {
	Phase          string      `json:"phase"`
	Bankroll       string      `json:"bankroll"`
	MinimumBet     int         `json:"minimumBet"`
	Hands          []HandState `json:"hands,omitempty"`
	ActiveHand     int         `json:"activeHand"`
	DealerCards    []string    `json:"dealerCards,omitempty"`
	DealerValue    int         `json:"dealerValue,omitempty"`
	HoleCardHidden bool        `json:"holeCardHidden"`
	CanDouble      bool        `json:"canDouble"`
	CanSplit       bool        `json:"canSplit"`
	CanSurrender   bool        `json:"canSurrender"`
	CardsRemaining int         `json:"cardsRemaining"`
	RoundsPlayed   int         `json:"roundsPlayed"`
}

// PlayerTimeoutData reports the action taken on the player's behalf.
type PlayerTimeoutData struct {
	AutoAction string `json:"autoAction"`
}

package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/game"
)

// MessageType identifies a websocket message
type MessageType string

// Client → Server message types
const (
	MessageTypeStart     MessageType = "start"
	MessageTypeHit       MessageType = "hit"
	MessageTypeStand     MessageType = "stand"
	MessageTypeDouble    MessageType = "double"
	MessageTypeSplit     MessageType = "split"
	MessageTypeSurrender MessageType = "surrender"
	MessageTypeInsurance MessageType = "insurance"
	MessageTypeReset     MessageType = "reset"
	MessageTypeTraining  MessageType = "training"
	MessageTypeGetState  MessageType = "get_state"
)

// Server → Client message types
const (
	MessageTypeState MessageType = "state"
	MessageTypeEvent MessageType = "event"
	MessageTypeError MessageType = "error"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
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

type StartData struct {
	Bet int `json:"bet"`
}

type InsuranceData struct {
	Accept bool `json:"accept"`
}

type TrainingData struct {
	Enabled bool `json:"enabled"`
}

// Server → Client Messages

type StateData struct {
	UserID string     `json:"userId"`
	State  game.State `json:"state"`
}

type EventData struct {
	Type    game.EventType `json:"type"`
	Payload game.GameEvent `json:"payload"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes sent to clients
const (
	ErrCodeInvalidMessage    = "invalid_message"
	ErrCodeUnknownType       = "unknown_type"
	ErrCodeActionUnavailable = "action_unavailable"
	ErrCodeInvalidBet        = "invalid_bet"
)

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
)

// Connection represents a WebSocket connection to a client. The engine is
// only touched from the read pump.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	engine    *game.Engine
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
	done      chan struct{} // closed once the read pump stops touching the engine
}

// NewConnection creates a new connection wrapper and subscribes it to the
// engine's events.
func NewConnection(conn *websocket.Conn, logger *log.Logger, engine *game.Engine) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	c := &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		engine: engine,
		logger: logger.WithPrefix("conn").With("user", engine.UserID()),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	engine.Subscribe(c)
	return c
}

// UserID returns the account this connection plays for.
func (c *Connection) UserID() string {
	return c.engine.UserID()
}

// Done is closed after the read pump exits and the connection has
// unsubscribed from its engine.
func (c *Connection) Done() <-chan struct{} {
	return c.done
}

// Start begins handling the connection
func (c *Connection) Start() {
	c.sendState()
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed during shutdown
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close() // Ignore close errors
		return ErrConnectionClosed
	}
}

// OnEvent forwards engine events to the client.
func (c *Connection) OnEvent(event game.GameEvent) {
	c.sendMessage(MessageTypeEvent, EventData{Type: event.EventType(), Payload: event})
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer close(c.done)
	defer c.engine.Unsubscribe(c)
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Session aborted", "error", r)
		}
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage applies a client message to the engine and replies with the
// resulting state. Events raised along the way are sent first.
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeStart:
		var data StartData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(ErrCodeInvalidMessage, "Failed to parse start data")
			return
		}
		if c.engine.Phase() != game.PhaseIdle {
			c.sendError(ErrCodeActionUnavailable, "Round already in progress")
			return
		}
		rules := c.engine.Rules()
		if data.Bet < rules.MinBet || data.Bet > c.engine.Balance() {
			c.sendError(ErrCodeInvalidBet, fmt.Sprintf("Bet must be between %d and %d", rules.MinBet, c.engine.Balance()))
			return
		}
		c.engine.StartGame(data.Bet)

	case MessageTypeHit, MessageTypeStand, MessageTypeDouble, MessageTypeSplit, MessageTypeSurrender:
		action := strategy.Action(msg.Type)
		if !slices.Contains(c.engine.Available(), action) {
			c.sendError(ErrCodeActionUnavailable, fmt.Sprintf("Cannot %s now", action))
			return
		}
		c.applyAction(action)

	case MessageTypeInsurance:
		var data InsuranceData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(ErrCodeInvalidMessage, "Failed to parse insurance data")
			return
		}
		if c.engine.Phase() != game.PhaseInsuranceOffer {
			c.sendError(ErrCodeActionUnavailable, "No insurance offer")
			return
		}
		c.engine.RespondToInsurance(data.Accept)

	case MessageTypeReset:
		if c.engine.Phase() != game.PhaseIdle {
			c.sendError(ErrCodeActionUnavailable, "Round in progress")
			return
		}
		c.engine.ResetBankroll()

	case MessageTypeTraining:
		var data TrainingData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(ErrCodeInvalidMessage, "Failed to parse training data")
			return
		}
		c.engine.SetTraining(data.Enabled)

	case MessageTypeGetState:

	default:
		c.sendError(ErrCodeUnknownType, fmt.Sprintf("Unknown message type: %s", msg.Type))
		return
	}

	c.sendState()
}

func (c *Connection) applyAction(action strategy.Action) {
	switch action {
	case strategy.Hit:
		c.engine.Hit()
	case strategy.Stand:
		c.engine.Stand()
	case strategy.Double:
		c.engine.Double()
	case strategy.Split:
		c.engine.Split()
	case strategy.Surrender:
		c.engine.Surrender()
	}
}

func (c *Connection) sendState() {
	c.sendMessage(MessageTypeState, StateData{UserID: c.engine.UserID(), State: c.engine.State()})
}

func (c *Connection) sendError(code, message string) {
	c.sendMessage(MessageTypeError, ErrorData{Code: code, Message: message})
}

func (c *Connection) sendMessage(messageType MessageType, data any) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		c.logger.Error("Failed to encode message", "type", messageType, "error", err)
		return
	}
	_ = c.SendMessage(msg) // Send failures close the connection
}

// Package voice connects the assistant to an external speech bridge
// over WebSocket. The bridge owns the microphone and the speakers; we
// receive finished transcripts and send back text to be spoken.
package voice

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// BridgeEvent is one message from the speech bridge.
type BridgeEvent struct {
	Type       string  `json:"type"`
	Text       string  `json:"text,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	Language   string  `json:"language,omitempty"`
}

// outboundMessage is one message to the speech bridge.
type outboundMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// BridgeConfig holds configuration for the speech bridge client.
type BridgeConfig struct {
	// Endpoint is the WebSocket endpoint of the bridge
	Endpoint string

	// ReconnectWait is the initial wait time before reconnecting
	ReconnectWait time.Duration

	// MaxReconnects is the maximum number of reconnection attempts (0 = unlimited)
	MaxReconnects int

	// PingInterval is the interval between ping messages
	PingInterval time.Duration
}

// DefaultBridgeConfig returns production defaults for the bridge
// client.
func DefaultBridgeConfig() BridgeConfig {
	return BridgeConfig{
		Endpoint:      "ws://127.0.0.1:8765/ws/speech",
		ReconnectWait: 1 * time.Second,
		MaxReconnects: 10,
		PingInterval:  30 * time.Second,
	}
}

// Bridge is the WebSocket client for the speech bridge.
type Bridge struct {
	mu           sync.RWMutex
	config       BridgeConfig
	conn         *websocket.Conn
	running      bool
	reconnecting bool
	ctx          context.Context
	cancel       context.CancelFunc

	// OnTranscript is called with each finished utterance transcript.
	OnTranscript func(text string)
	// OnError is called when the connection is lost for good.
	OnError func(err error)
}

// NewBridge creates a bridge client with the given configuration.
func NewBridge(config BridgeConfig) *Bridge {
	if config.Endpoint == "" {
		config = DefaultBridgeConfig()
	}
	if config.PingInterval == 0 {
		config.PingInterval = 30 * time.Second
	}
	if config.ReconnectWait == 0 {
		config.ReconnectWait = 1 * time.Second
	}
	return &Bridge{config: config}
}

// Connect establishes the WebSocket connection to the bridge.
func (b *Bridge) Connect(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return fmt.Errorf("voice bridge: already connected")
	}

	b.ctx, b.cancel = context.WithCancel(ctx)

	dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}

	log.Debug().Str("endpoint", b.config.Endpoint).Msg("[Voice] Connecting to speech bridge")
	conn, _, err := dialer.DialContext(ctx, b.config.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("voice bridge: connect: %w", err)
	}

	b.conn = conn
	b.running = true

	go b.listen()
	go b.pingLoop()

	log.Info().Str("endpoint", b.config.Endpoint).Msg("[Voice] Speech bridge connected")
	return nil
}

// listen reads and dispatches events from the bridge.
func (b *Bridge) listen() {
	for {
		b.mu.RLock()
		conn := b.conn
		running := b.running
		ctx := b.ctx
		b.mu.RUnlock()

		if !running || conn == nil {
			return
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		messageType, message, err := conn.ReadMessage()
		if err != nil {
			b.mu.RLock()
			stillRunning := b.running
			b.mu.RUnlock()
			if !stillRunning {
				return
			}
			log.Error().Err(err).Msg("[Voice] Read failed")
			go b.reconnect(ctx)
			return
		}

		if messageType != websocket.TextMessage {
			continue
		}

		var event BridgeEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Error().Err(err).Str("message", string(message)).Msg("[Voice] Bad event")
			continue
		}

		b.handleEvent(event)
	}
}

func (b *Bridge) handleEvent(event BridgeEvent) {
	switch event.Type {
	case "transcript":
		log.Debug().
			Str("text", event.Text).
			Float64("confidence", event.Confidence).
			Msg("[Voice] Transcript received")
		if b.OnTranscript != nil && event.Text != "" {
			b.OnTranscript(event.Text)
		}
	case "error":
		log.Error().Str("text", event.Text).Msg("[Voice] Bridge reported error")
	default:
		log.Debug().Str("type", event.Type).Msg("[Voice] Ignoring event")
	}
}

// Speak sends text to be spoken by the bridge.
func (b *Bridge) Speak(text string) error {
	return b.send(outboundMessage{Type: "speak", Text: text})
}

// Status sends a short status line the bridge may display or announce.
func (b *Bridge) Status(text string) error {
	return b.send(outboundMessage{Type: "status", Text: text})
}

func (b *Bridge) send(msg outboundMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running || b.conn == nil {
		return fmt.Errorf("voice bridge: not connected")
	}
	if err := b.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("voice bridge: send %s: %w", msg.Type, err)
	}
	return nil
}

// pingLoop keeps the connection alive.
func (b *Bridge) pingLoop() {
	ticker := time.NewTicker(b.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-b.ctx.Done():
			return
		case <-ticker.C:
			b.mu.Lock()
			conn := b.conn
			running := b.running
			var err error
			if running && conn != nil {
				err = conn.WriteMessage(websocket.PingMessage, nil)
			}
			b.mu.Unlock()

			if !running || conn == nil {
				return
			}
			if err != nil {
				log.Debug().Err(err).Msg("[Voice] Ping failed")
				return
			}
		}
	}
}

// reconnect re-dials the bridge with exponential backoff.
func (b *Bridge) reconnect(ctx context.Context) {
	b.mu.Lock()
	if b.reconnecting {
		b.mu.Unlock()
		return
	}
	b.reconnecting = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.reconnecting = false
		b.mu.Unlock()
	}()

	wait := b.config.ReconnectWait
	attempts := 0

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if b.config.MaxReconnects > 0 && attempts >= b.config.MaxReconnects {
			err := fmt.Errorf("voice bridge: max reconnection attempts (%d) exceeded", b.config.MaxReconnects)
			log.Error().Err(err).Msg("[Voice] Giving up reconnection")
			if b.OnError != nil {
				b.OnError(err)
			}
			b.mu.Lock()
			b.running = false
			b.mu.Unlock()
			return
		}

		attempts++
		log.Info().Int("attempt", attempts).Dur("wait", wait).Msg("[Voice] Reconnecting")

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}

		dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
		conn, _, err := dialer.DialContext(ctx, b.config.Endpoint, nil)
		if err != nil {
			log.Error().Err(err).Int("attempt", attempts).Msg("[Voice] Reconnection failed")
			wait = wait * 2
			if wait > 30*time.Second {
				wait = 30 * time.Second
			}
			continue
		}

		b.mu.Lock()
		if b.conn != nil {
			b.conn.Close()
		}
		b.conn = conn
		b.running = true
		b.mu.Unlock()

		log.Info().Int("attempts", attempts).Msg("[Voice] Reconnected")
		go b.listen()
		go b.pingLoop()
		return
	}
}

// Close shuts the bridge client down.
func (b *Bridge) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.running {
		return nil
	}
	b.running = false

	if b.cancel != nil {
		b.cancel()
	}
	if b.conn != nil {
		err := b.conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
		if err != nil {
			log.Debug().Err(err).Msg("[Voice] Error sending close message")
		}
		if err := b.conn.Close(); err != nil {
			return fmt.Errorf("voice bridge: close: %w", err)
		}
		b.conn = nil
	}

	log.Info().Msg("[Voice] Speech bridge closed")
	return nil
}

// IsConnected reports whether the bridge connection is up.
func (b *Bridge) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.running && b.conn != nil
}

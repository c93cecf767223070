package binance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/models"
)

const (
	DefaultStreamURL = "wss://stream.binance.com:9443"

	reconnectMin = time.Second
	reconnectMax = time.Minute
	readTimeout  = 90 * time.Second // Binance pings every ~20s
)

// Stream subscribes to combined miniTicker streams and delivers price ticks.
// The connection is re-dialed with backoff until the context is cancelled.
type Stream struct {
	streamURL string
	logger    *common.Logger
}

var _ interfaces.TickStream = (*Stream)(nil)

// StreamOption configures the stream
type StreamOption func(*Stream)

// WithStreamURL sets the stream base URL
func WithStreamURL(streamURL string) StreamOption {
	return func(s *Stream) {
		s.streamURL = strings.TrimRight(streamURL, "/")
	}
}

// WithStreamLogger sets the logger
func WithStreamLogger(logger *common.Logger) StreamOption {
	return func(s *Stream) {
		s.logger = logger
	}
}

// NewStream creates a tick stream client.
func NewStream(opts ...StreamOption) *Stream {
	s := &Stream{
		streamURL: DefaultStreamURL,
		logger:    common.NewSilentLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// combinedFrame is the envelope of a combined-stream message.
type combinedFrame struct {
	Stream string `json:"stream"`
	Data   struct {
		EventType string      `json:"e"`
		EventTime int64       `json:"E"`
		Symbol    string      `json:"s"`
		Close     flexFloat64 `json:"c"`
	} `json:"data"`
}

// Subscribe streams ticks for the given exchange pairs until ctx is
// cancelled. The callback runs on the stream's reader goroutine; it must not
// block.
func (s *Stream) Subscribe(ctx context.Context, symbols []string, fn func(models.PriceTick)) error {
	if len(symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}

	streams := make([]string, len(symbols))
	for i, sym := range symbols {
		streams[i] = strings.ToLower(sym) + "@miniTicker"
	}
	endpoint := s.streamURL + "/stream?streams=" + strings.Join(streams, "/")

	backoff := reconnectMin
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.run(ctx, endpoint, fn)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("Stream disconnected, reconnecting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

// run dials once and reads frames until the connection drops or ctx ends.
func (s *Stream) run(ctx context.Context, endpoint string, fn func(models.PriceTick)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to dial stream: %w", err)
	}
	defer conn.Close()

	s.logger.Info().Str("url", endpoint).Msg("Stream connected")

	// Close the connection when the context ends so ReadJSON unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		var frame combinedFrame
		if err := conn.ReadJSON(&frame); err != nil {
			return fmt.Errorf("stream read failed: %w", err)
		}
		if frame.Data.Symbol == "" {
			continue
		}

		fn(models.PriceTick{
			Symbol:    frame.Data.Symbol,
			Price:     float64(frame.Data.Close),
			Timestamp: time.UnixMilli(frame.Data.EventTime),
		})
	}
}

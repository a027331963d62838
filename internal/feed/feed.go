package feed

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cryptocheckout/internal/logger"
	"cryptocheckout/internal/models"
)

// Frame is one inbound message from the live status feed: a status code plus
// whatever extra order fields the server chose to push.
type Frame struct {
	Status models.PaymentStatus
	Fields map[string]json.RawMessage
}

// Listener holds one websocket subscription to the status feed of a single
// order. There is no reconnection: a broken feed stays broken and the frames
// channel closes.
type Listener struct {
	identifier string
	conn       *websocket.Conn
	frames     chan Frame
	done       chan struct{}
	closeOnce  sync.Once
}

// Dial opens the feed for an order identifier and starts the read loop.
func Dial(ctx context.Context, feedURL, identifier string) (*Listener, error) {
	endpoint := strings.TrimRight(feedURL, "/") + "/" + identifier
	dialer := websocket.Dialer{}
	conn, _, err := dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}

	l := &Listener{
		identifier: identifier,
		conn:       conn,
		frames:     make(chan Frame, 8),
		done:       make(chan struct{}),
	}
	go l.run()
	return l, nil
}

// Frames delivers inbound messages. The channel closes when the connection
// drops or Close is called; nothing is delivered afterwards.
func (l *Listener) Frames() <-chan Frame {
	return l.frames
}

func (l *Listener) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
		_ = l.conn.Close()
	})
}

func (l *Listener) run() {
	defer close(l.frames)
	for {
		_, msg, err := l.conn.ReadMessage()
		if err != nil {
			logger.Log.Debug("feed closed",
				zap.String("order", l.identifier),
				zap.Error(err))
			l.Close()
			return
		}

		frame, err := ParseFrame(msg)
		if err != nil {
			logger.Log.Warn("feed frame unparseable",
				zap.String("order", l.identifier),
				zap.Error(err))
			continue
		}
		select {
		case l.frames <- frame:
		case <-l.done:
			return
		}
	}
}

// ParseFrame decodes a feed message. The only required field is status; all
// other fields ride along untouched for the shallow merge.
func ParseFrame(msg []byte) (Frame, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(msg, &fields); err != nil {
		return Frame{}, err
	}

	frame := Frame{Fields: fields}
	if raw, ok := fields["status"]; ok {
		var s models.PaymentStatus
		if err := json.Unmarshal(raw, &s); err == nil {
			frame.Status = s
		}
	}
	return frame, nil
}

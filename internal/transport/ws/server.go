package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"rlreplay.dev/internal/frames"
	"rlreplay.dev/internal/protocol"
)

// Source is a decoded replay that can be projected tick by tick.
// *frames.Data satisfies it.
type Source interface {
	Len() int
	Tick(tick int) frames.TickView
}

type Server struct {
	replayID string
	src      Source
	log      zerolog.Logger

	upgrader websocket.Upgrader
}

func NewServer(replayID string, src Source, logger zerolog.Logger) *Server {
	return &Server{
		replayID: replayID,
		src:      src,
		log:      logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

const outQueue = 64

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		log := s.log.With().Str("remote", r.RemoteAddr).Logger()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		out := newOutbox(outQueue)
		var writer sync.WaitGroup
		writer.Add(1)
		// Writer goroutine.
		go func() {
			defer writer.Done()
			for {
				v, ok := out.next(ctx)
				if !ok {
					return
				}
				if err := writeJSON(conn, v); err != nil {
					cancel()
					return
				}
			}
		}()

		send := func(ctx context.Context, v any) bool {
			return out.push(ctx, 0, v)
		}
		send(ctx, protocol.WelcomeMsg{
			Type:            protocol.TypeWelcome,
			ProtocolVersion: protocol.Version,
			ReplayID:        s.replayID,
			Frames:          s.src.Len(),
		})

		var (
			stream     context.CancelFunc = func() {}
			streamDone sync.WaitGroup
		)
		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil {
				send(ctx, protocol.NewError(protocol.ErrProtoBadRequest, "malformed message"))
				continue
			}
			if base.Type != protocol.TypeSubscribe {
				send(ctx, protocol.NewError(protocol.ErrProtoBadRequest, "unexpected message type "+base.Type))
				continue
			}
			var sub protocol.SubscribeMsg
			if err := json.Unmarshal(msg, &sub); err != nil {
				send(ctx, protocol.NewError(protocol.ErrBadRequest, err.Error()))
				continue
			}
			if sub.ProtocolVersion != protocol.Version {
				send(ctx, protocol.NewError(protocol.ErrProtoVersion, "bad protocol_version"))
				continue
			}
			from, to, stride, err := sub.Range(s.src.Len())
			if err != nil {
				send(ctx, protocol.NewError(protocol.ErrOutOfRange, err.Error()))
				continue
			}

			stream()
			streamDone.Wait()
			gen := out.advance()
			var sctx context.Context
			sctx, stream = context.WithCancel(ctx)
			log.Debug().Int("from", from).Int("to", to).Int("stride", stride).Uint64("gen", gen).Msg("subscribe")
			streamDone.Add(1)
			go func() {
				defer streamDone.Done()
				s.stream(sctx, func(ctx context.Context, v any) bool {
					return out.push(ctx, gen, v)
				}, from, to, stride)
			}()
		}

		stream()
		cancel()
		streamDone.Wait()
		writer.Wait()
		log.Debug().Msg("connection closed")
	}
}

// stream queues the ticks of one subscription followed by DONE. A
// cancelled subscription sends nothing further.
func (s *Server) stream(ctx context.Context, send func(context.Context, any) bool, from, to, stride int) {
	sent := 0
	for t := from; t < to; t += stride {
		if !send(ctx, protocol.TickMsg{Type: protocol.TypeTick, Tick: s.src.Tick(t)}) {
			return
		}
		sent++
	}
	send(ctx, protocol.DoneMsg{Type: protocol.TypeDone, Sent: sent})
}

type envelope struct {
	gen uint64
	v   any
}

// outbox is a connection's bounded send queue. Messages pushed by a
// subscription carry its generation; once a newer subscription starts,
// older ones still queued are dropped instead of written. Generation 0 is
// never stale.
type outbox struct {
	ch  chan envelope
	gen atomic.Uint64
}

func newOutbox(size int) *outbox {
	return &outbox{ch: make(chan envelope, size)}
}

// advance starts a new subscription generation and returns it.
func (o *outbox) advance() uint64 { return o.gen.Add(1) }

func (o *outbox) push(ctx context.Context, gen uint64, v any) bool {
	select {
	case o.ch <- envelope{gen: gen, v: v}:
		return true
	case <-ctx.Done():
		return false
	}
}

// next blocks for the next message that is still current.
func (o *outbox) next(ctx context.Context) (any, bool) {
	for {
		select {
		case <-ctx.Done():
			return nil, false
		case e := <-o.ch:
			if e.gen != 0 && e.gen != o.gen.Load() {
				continue
			}
			return e.v, true
		}
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}

package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/romnet/lobbyd/internal/app"
	"github.com/romnet/lobbyd/internal/protocol"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Controller terminates the two websocket endpoints: the anonymous pairing
// endpoint and the authenticated session endpoint.
type Controller struct {
	coord      *app.Coordinator
	readLimit  int64
	pingPeriod time.Duration
	limiter    *FrameRateLimiter
}

func NewController(coord *app.Coordinator, readLimit int64, pingPeriod time.Duration) *Controller {
	return &Controller{
		coord:      coord,
		readLimit:  readLimit,
		pingPeriod: pingPeriod,
		limiter:    NewFrameRateLimiter(30, time.Second),
	}
}

// HandlePairing serves an anonymous connection: it gets a pairing code on
// open and may request the login URL with START AUTH until the code expires
// or is confirmed.
func (ctl *Controller) HandlePairing(ctx context.Context, c *gin.Context) {
	wc, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("pairing upgrade")
		return
	}
	wc.SetReadLimit(ctl.readLimit)

	conn := newConn(wc)
	code := ctl.coord.OpenPairing(conn)

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		conn.writePump(ctx, ctl.pingPeriod)
		conn.Close()
	}()
	go ctl.pairingReadLoop(ctx, cancel, code, conn)
}

func (ctl *Controller) pairingReadLoop(ctx context.Context, cancel context.CancelFunc, code string, conn *Conn) {
	defer func() {
		cancel()
		conn.Close()
		ctl.coord.PairingClosed(code, conn)
		log.Info().Str("module", "ws").Str("code", code).Msg("pairing connection closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := conn.conn.ReadMessage()
			if err != nil {
				return
			}
			f, err := protocol.ParseInbound(string(data))
			if err != nil {
				continue
			}
			// The pairing endpoint speaks a single verb.
			if _, ok := f.(protocol.StartAuth); ok {
				ctl.coord.RequestAuth(code)
			}
		}
	}
}

// HandleSession serves an authenticated client reconnecting under its
// identity id. The coordinator refuses ids it has never authenticated.
func (ctl *Controller) HandleSession(ctx context.Context, c *gin.Context) {
	id := c.Param("id")

	wc, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "ws").Msg("session upgrade")
		return
	}
	wc.SetReadLimit(ctl.readLimit)

	conn := newConn(wc)
	if err := ctl.coord.AttachSession(id, conn); err != nil {
		log.Warn().Err(err).Str("module", "ws").Str("identity", id).Msg("session refused")
		_ = wc.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, err.Error()),
			time.Now().Add(time.Second),
		)
		conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		conn.writePump(ctx, ctl.pingPeriod)
		conn.Close()
	}()
	go ctl.sessionReadLoop(ctx, cancel, id, conn)
}

func (ctl *Controller) sessionReadLoop(ctx context.Context, cancel context.CancelFunc, id string, conn *Conn) {
	defer func() {
		cancel()
		conn.Close()
		ctl.limiter.Forget(id)
		ctl.coord.IdentityClosed(id, conn)
		log.Info().Str("module", "ws").Str("identity", id).Msg("session connection closed")
	}()

	for {
		select {
		case <-ctx.Done():
			return
		default:
			_, data, err := conn.conn.ReadMessage()
			if err != nil {
				return
			}
			if !ctl.limiter.Allow(id) {
				log.Warn().Str("module", "ws").Str("identity", id).Msg("frame rate exceeded, dropped")
				continue
			}
			ctl.coord.HandleFrame(id, string(data))
		}
	}
}

package fastview

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 1 * time.Second
	// Largest message accepted from the page; it only sends control frames.
	maxMessageSize = 512
	// Updates arriving faster than this are dropped; they are idempotent.
	pubResolution  = time.Millisecond * 100
	pingResolution = time.Millisecond * 200
	// Number of lost pings tolerated before the peer is considered gone.
	pongWait = pingResolution * 4
)

var upgrader = websocket.Upgrader{}

// Client publishes updates one way to a page over a websocket. Each update
// must describe the page state fully, so that any intervening update can be
// dropped when updates arrive faster than pubResolution.
type Client[T any] struct {
	updates <-chan T
	ws      *websock
	rootCtx context.Context
}

// NewClient upgrades the request to a websocket publishing @updates.
func NewClient[T any](
	updates <-chan T,
	w http.ResponseWriter,
	r *http.Request,
) (*Client[T], error) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, fmt.Errorf("upgrade: %w", err)
	}
	ws.SetReadLimit(maxMessageSize)

	return &Client[T]{
		updates: updates,
		ws:      newWebSocket(ws),
		rootCtx: r.Context(),
	}, nil
}

// Sync runs the reader, the ping-pong liveness check and the publisher until
// the page goes away or one of them fails. A normal disconnect returns nil.
func (cli *Client[T]) Sync() error {
	defer cli.ws.Close()

	group, groupCtx := errgroup.WithContext(cli.rootCtx)
	group.Go(func() error {
		return cli.readMessages(groupCtx)
	})
	group.Go(func() error {
		return cli.pingPong(groupCtx)
	})
	group.Go(func() error {
		return cli.publish(groupCtx)
	})
	// A blocked ReadMessage only returns on a frame or a deadline.
	go func() {
		<-groupCtx.Done()
		_ = cli.ws.Conn().SetReadDeadline(time.Now())
	}()

	err := group.Wait()
	if cli.rootCtx.Err() != nil {
		return nil
	}
	if err != nil && !isClosure(err) && !errors.Is(err, errUpdatesClosed) {
		return err
	}
	return nil
}

var ErrPongDeadlineExceeded = errors.New("client disconnect, pong deadline exceeded")

// pingPong requires readMessages to be running, since pong handlers are
// only invoked from a read.
func (cli *Client[T]) pingPong(ctx context.Context) error {
	pong := make(chan struct{}, 1)
	cli.ws.Conn().SetPongHandler(func(_ string) error {
		select {
		case pong <- struct{}{}:
		default:
		}
		return nil
	})

	pinger := channerics.NewTicker(ctx.Done(), pingResolution)
	lastPong := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-pinger:
			if time.Since(lastPong) > pongWait {
				return ErrPongDeadlineExceeded
			}
			if err := cli.ping(ctx); err != nil {
				return err
			}
		case <-pong:
			lastPong = time.Now()
		}
	}
}

func (cli *Client[T]) ping(ctx context.Context) error {
	return cli.ws.Write(ctx, func(ws *websocket.Conn) error {
		err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
		if isError(err) {
			return fmt.Errorf("ping failed: %w", err)
		}
		return err
	})
}

// readMessages drains the page's messages. Read errors are permanent, so any
// error tears the client down.
func (cli *Client[T]) readMessages(ctx context.Context) error {
	for {
		err := cli.ws.Read(ctx, func(ws *websocket.Conn) (readErr error) {
			_, _, readErr = ws.ReadMessage()
			return
		})
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// errUpdatesClosed stops the group when the update source is closed.
var errUpdatesClosed = errors.New("updates closed")

func (cli *Client[T]) publish(ctx context.Context) error {
	lastSync := time.Time{}
	for update := range channerics.OrDone(ctx.Done(), cli.updates) {
		if time.Since(lastSync) < pubResolution {
			continue
		}
		lastSync = time.Now()

		err := cli.ws.Write(ctx, func(ws *websocket.Conn) error {
			if err := ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return fmt.Errorf("failed to set deadline: %w", err)
			}
			if err := ws.WriteJSON(update); isError(err) {
				return fmt.Errorf("publish failed: %w", err)
			} else if err != nil {
				return err
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	if ctx.Err() != nil {
		return nil
	}
	return errUpdatesClosed
}

func isError(err error) bool {
	return err != nil && websocket.IsUnexpectedCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

func isClosure(err error) bool {
	return err != nil && websocket.IsCloseError(
		err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway)
}

// ErrSockCongestion means too many waiters queued on one socket operation.
var ErrSockCongestion = errors.New("sock op failed due to congestion")

const (
	sockOpWait       = time.Second
	closeGracePeriod = time.Second
)

// websock serializes reads and writes: a gorilla connection supports one
// concurrent reader and one concurrent writer.
type websock struct {
	readSem  chan struct{}
	writeSem chan struct{}
	ws       *websocket.Conn
}

func newWebSocket(ws *websocket.Conn) *websock {
	return &websock{
		readSem:  make(chan struct{}, 1),
		writeSem: make(chan struct{}, 1),
		ws:       ws,
	}
}

// Conn is for setup only, e.g. adding handlers before any op runs.
func (sock *websock) Conn() *websocket.Conn {
	return sock.ws
}

// Close sends a close frame and closes the connection. The underlying close
// unblocks a pending reader, so only the write semaphore is taken.
func (sock *websock) Close() {
	sock.writeSem <- struct{}{}
	defer func() { <-sock.writeSem }()

	_ = sock.ws.SetWriteDeadline(time.Now().Add(writeWait))
	_ = sock.ws.WriteMessage(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	time.Sleep(closeGracePeriod)
	if err := sock.ws.Close(); err != nil {
		log.WithError(err).Debug("websocket close")
	}
}

func (sock *websock) Read(
	ctx context.Context,
	readFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.readSem <- struct{}{}:
		defer func() { <-sock.readSem }()
		return readFn(sock.ws)
	}
}

func (sock *websock) Write(
	ctx context.Context,
	writeFn func(*websocket.Conn) error,
) error {
	select {
	case <-ctx.Done():
		return nil
	case sock.writeSem <- struct{}{}:
		defer func() { <-sock.writeSem }()
		return writeFn(sock.ws)
	case <-time.After(sockOpWait):
		return ErrSockCongestion
	}
}

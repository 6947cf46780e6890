// Package radiator speaks the Radiator management protocol: a single TCP
// connection carrying NUL-terminated frames, commands answered in order,
// interleaved with asynchronous LOG frames.
package radiator

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/KOMKZ/radiator-exporter/config"
	"github.com/KOMKZ/radiator-exporter/logger"
	"github.com/KOMKZ/radiator-exporter/retry"
)

// Querier issues one management command and returns the raw response frame.
type Querier interface {
	Query(ctx context.Context, command []byte) ([]byte, error)
}

// deliveryBacklog bounds the delivery channel. Commands are strictly
// sequential and LOG frames are filtered out before delivery, so in
// practice at most one frame per connection epoch is ever in flight.
const deliveryBacklog = 1024

// readerHandoff passes a freshly logged-in connection's read half to the
// reader goroutine.
type readerHandoff struct {
	br    *bufio.Reader
	epoch uint64
}

// deliveredFrame is one response frame tagged with the epoch of the
// connection it arrived on. closed marks the end of that connection
// instead of a payload.
type deliveredFrame struct {
	epoch   uint64
	payload []byte
	closed  bool
}

// Client multiplexes management commands over one TCP connection. All
// commands serialize on an internal lock held across the write and the
// matching response, so responses correlate to commands by order alone.
type Client struct {
	cfg config.RadiatorConfig
	log *logger.ModuleLogger

	mu     sync.Mutex
	conn   net.Conn
	epoch  uint64
	closed bool

	handoff  chan readerHandoff
	delivery chan deliveredFrame
}

// NewClient creates a client and starts its reader goroutine. No
// connection is made until Connect or the first Query.
func NewClient(cfg config.RadiatorConfig) *Client {
	c := &Client{
		cfg:      cfg,
		log:      logger.GetLogger("radiator"),
		handoff:  make(chan readerHandoff),
		delivery: make(chan deliveredFrame, deliveryBacklog),
	}
	go c.readLoop()
	return c
}

func (c *Client) addr() string {
	return net.JoinHostPort(c.cfg.Target, strconv.Itoa(c.cfg.MgmtPort))
}

// Connect establishes the TCP connection and performs the login
// handshake. Calling it on a connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	if c.conn != nil {
		return nil
	}
	return c.connectLocked(ctx)
}

// connectLocked dials, logs in, and hands the read half to the reader
// under a fresh epoch. Callers hold c.mu.
func (c *Client) connectLocked(ctx context.Context) error {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, "tcp", c.addr())
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.addr(), err)
	}

	if c.cfg.CommandTimeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.cfg.CommandTimeout))
	}

	login := fmt.Sprintf("BINARY\r\nLOGIN %s %s\x00", c.cfg.Username, c.cfg.Password)
	if _, err := conn.Write([]byte(login)); err != nil {
		conn.Close()
		return fmt.Errorf("send login: %w", err)
	}

	br := bufio.NewReader(conn)
	resp, err := readFrame(br)
	if err != nil {
		conn.Close()
		return fmt.Errorf("read login response: %w", err)
	}

	switch {
	case bytes.Equal(resp, []byte("LOGGEDIN")):
		// fall through
	case bytes.Equal(resp, []byte("BADLOGIN")):
		conn.Close()
		return ErrInvalidCredentials
	default:
		conn.Close()
		unexpected := &UnexpectedLoginResponseError{Response: resp}
		c.log.Error("login response was neither LOGGEDIN nor BADLOGIN",
			zap.String("dump", unexpected.Dump()))
		return unexpected
	}

	_ = conn.SetDeadline(time.Time{})

	c.conn = conn
	c.epoch++
	c.handoff <- readerHandoff{br: br, epoch: c.epoch}

	c.log.Info("connected to management port",
		zap.String("addr", c.addr()),
		zap.Uint64("epoch", c.epoch))
	return nil
}

// writeFrame sends one framed command. The command timeout bounds the
// write as well: a peer that stops draining its receive buffer must not
// stall the scrape indefinitely.
func (c *Client) writeFrame(conn net.Conn, framed []byte) error {
	if c.cfg.CommandTimeout > 0 {
		_ = conn.SetWriteDeadline(time.Now().Add(c.cfg.CommandTimeout))
		defer conn.SetWriteDeadline(time.Time{})
	}
	_, err := conn.Write(framed)
	return err
}

// teardownLocked drops the current connection so any response still in
// flight dies with its socket. Callers hold c.mu.
func (c *Client) teardownLocked() {
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
}

// Query sends one command and returns the raw response frame. A
// connection lost while awaiting the response is retried up to three
// attempts in total; any other failure is returned as is. Because a lost
// connection leaves it unknown whether the server processed the command,
// only idempotent read commands belong here.
func (c *Client) Query(ctx context.Context, command []byte) ([]byte, error) {
	return retry.DoWithData(ctx, func() ([]byte, error) {
		return c.communicate(ctx, command)
	},
		retry.MaxAttempts(3),
		retry.Backoff(retry.NoBackoff()),
		retry.Condition(retry.RetryOnError(ErrReaderGone)),
		retry.OnRetry(func(attempt int, err error) {
			c.log.Warn("connection lost mid-command, retrying",
				zap.Int("attempt", attempt),
				zap.ByteString("command", command))
		}),
	)
}

// communicate performs one write/response exchange under the lock. The
// command must not contain a NUL byte; that is the frame terminator and a
// command containing one is a programming fault.
func (c *Client) communicate(ctx context.Context, command []byte) ([]byte, error) {
	if bytes.IndexByte(command, 0) >= 0 {
		panic("radiator: command contains NUL byte")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClientClosed
	}
	if c.conn == nil {
		if err := c.connectLocked(ctx); err != nil {
			return nil, err
		}
	}

	framed := make([]byte, 0, len(command)+1)
	framed = append(framed, command...)
	framed = append(framed, 0)

	if err := c.writeFrame(c.conn, framed); err != nil {
		c.log.Warn("write failed, reconnecting once",
			zap.ByteString("command", command), zap.Error(err))
		c.teardownLocked()
		if err := c.connectLocked(ctx); err != nil {
			return nil, err
		}
		if err := c.writeFrame(c.conn, framed); err != nil {
			c.teardownLocked()
			return nil, fmt.Errorf("write after reconnect: %w", err)
		}
	}

	var expiry <-chan time.Time
	if c.cfg.CommandTimeout > 0 {
		t := time.NewTimer(c.cfg.CommandTimeout)
		defer t.Stop()
		expiry = t.C
	}

	for {
		select {
		case f, ok := <-c.delivery:
			if !ok {
				return nil, ErrReaderGone
			}
			if f.epoch < c.epoch {
				// Leftover from a connection we already dropped.
				continue
			}
			if f.closed {
				c.teardownLocked()
				return nil, ErrReaderGone
			}
			return f.payload, nil
		case <-expiry:
			c.log.Warn("no response within the command timeout, dropping connection",
				zap.ByteString("command", command),
				zap.Duration("timeout", c.cfg.CommandTimeout))
			c.teardownLocked()
			return nil, fmt.Errorf("command timed out after %v", c.cfg.CommandTimeout)
		case <-ctx.Done():
			c.teardownLocked()
			return nil, ctx.Err()
		}
	}
}

// Close shuts the client down. The reader goroutine exits once the
// handoff channel closes.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.teardownLocked()
	close(c.handoff)
	return nil
}

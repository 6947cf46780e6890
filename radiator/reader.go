package radiator

import (
	"bufio"
	"bytes"

	"go.uber.org/zap"
)

// logPrefix marks asynchronous log frames the server pushes on its own.
var logPrefix = []byte("LOG ")

// readLoop is the perpetual reader. Each handoff carries the read half of
// one logged-in connection; frames are forwarded in arrival order, tagged
// with that connection's epoch. A read error ends the connection with a
// closed sentinel and the loop waits for the next handoff. The loop exits
// when the handoff channel closes, closing delivery behind it.
func (c *Client) readLoop() {
	defer close(c.delivery)

	for h := range c.handoff {
		for {
			payload, err := readFrame(h.br)
			if err != nil {
				c.log.Debug("connection ended",
					zap.Uint64("epoch", h.epoch), zap.Error(err))
				c.delivery <- deliveredFrame{epoch: h.epoch, closed: true}
				break
			}
			if bytes.HasPrefix(payload, logPrefix) {
				c.log.Debug("server log line",
					zap.ByteString("line", payload[len(logPrefix):]))
				continue
			}
			c.delivery <- deliveredFrame{epoch: h.epoch, payload: payload}
		}
	}
}

// readFrame reads one NUL-terminated frame and strips the terminator.
// A partial frame cut off by EOF is reported as the read error.
func readFrame(br *bufio.Reader) ([]byte, error) {
	data, err := br.ReadBytes(0)
	if err != nil {
		return nil, err
	}
	return data[:len(data)-1], nil
}

// Package testutil provides test doubles shared by the exporter's
// integration tests.
package testutil

import (
	"bufio"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
)

// MgmtServer is a scriptable fake of Radiator's management port. It
// performs the login handshake and answers commands from a response
// table; commands without an entry get a bare NOSUCHOBJECT frame, the
// way the real server ends an enumeration.
type MgmtServer struct {
	Username string
	Password string

	ln net.Listener
	wg sync.WaitGroup

	mu        sync.Mutex
	responses map[string]string
	commands  []string
}

// NewMgmtServer starts a fake management server on a random loopback
// port. It is torn down via t.Cleanup.
func NewMgmtServer(t *testing.T) *MgmtServer {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	s := &MgmtServer{
		Username:  "monitor",
		Password:  "secret",
		ln:        ln,
		responses: make(map[string]string),
	}

	s.wg.Add(1)
	go s.acceptLoop()

	t.Cleanup(func() {
		ln.Close()
		s.wg.Wait()
	})
	return s
}

// Port returns the TCP port the fake server listens on.
func (s *MgmtServer) Port() int {
	return s.ln.Addr().(*net.TCPAddr).Port
}

// Respond scripts the payload returned for one exact command.
func (s *MgmtServer) Respond(command, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.responses[command] = payload
}

// Commands returns every command received so far, in order.
func (s *MgmtServer) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

func (s *MgmtServer) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			return
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer conn.Close()
			s.serve(conn)
		}()
	}
}

func (s *MgmtServer) serve(conn net.Conn) {
	br := bufio.NewReader(conn)

	login, err := readFrame(br)
	if err != nil {
		return
	}
	expected := fmt.Sprintf("BINARY\r\nLOGIN %s %s", s.Username, s.Password)
	if login != expected {
		conn.Write([]byte("BADLOGIN\x00"))
		return
	}
	if _, err := conn.Write([]byte("LOGGEDIN\x00")); err != nil {
		return
	}

	for {
		cmd, err := readFrame(br)
		if err != nil {
			return
		}

		s.mu.Lock()
		s.commands = append(s.commands, cmd)
		payload, ok := s.responses[cmd]
		s.mu.Unlock()

		if !ok {
			// No echoed command line on the terminator frame.
			if _, err := conn.Write([]byte("NOSUCHOBJECT\x00")); err != nil {
				return
			}
			continue
		}
		if _, err := fmt.Fprintf(conn, "%s\n%s\x00", cmd, payload); err != nil {
			return
		}
	}
}

func readFrame(br *bufio.Reader) (string, error) {
	data, err := br.ReadString(0)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(data, "\x00"), nil
}

package smtp

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeServer accepts one SMTP session and records the DATA payload.
type fakeServer struct {
	ln   net.Listener
	mu   sync.Mutex
	data string
	rcpt string
	done chan struct{}
}

func startFakeServer(t *testing.T) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeServer{ln: ln, done: make(chan struct{})}
	t.Cleanup(func() { _ = ln.Close() })
	go s.serve()
	return s
}

func (s *fakeServer) serve() {
	defer close(s.done)
	conn, err := s.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	reply("220 fake ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 fake")
		case strings.HasPrefix(cmd, "MAIL FROM"):
			reply("250 ok")
		case strings.HasPrefix(cmd, "RCPT TO"):
			s.mu.Lock()
			s.rcpt = strings.TrimSpace(line)
			s.mu.Unlock()
			reply("250 ok")
		case cmd == "DATA":
			reply("354 go ahead")
			var b strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			s.mu.Lock()
			s.data = b.String()
			s.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("502 unsupported")
		}
	}
}

func newTestMailer(addr string, timeout time.Duration) *mailer {
	host, port, _ := net.SplitHostPort(addr)
	return &mailer{host: host, port: port, from: "noreply@example.com", timeout: timeout}
}

func TestSendEmail_DeliversMessage(t *testing.T) {
	srv := startFakeServer(t)
	m := newTestMailer(srv.ln.Addr().String(), 5*time.Second)

	err := m.SendEmail(context.Background(), "ann@example.com", "Confirmation code", "Your code is 482913")
	require.NoError(t, err)
	<-srv.done

	srv.mu.Lock()
	defer srv.mu.Unlock()
	assert.Contains(t, srv.rcpt, "ann@example.com")
	assert.Contains(t, srv.data, "Subject: Confirmation code\r\n")
	assert.Contains(t, srv.data, "Your code is 482913")
}

func TestSendEmail_UnreachableServerFails(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	m := newTestMailer(addr, time.Second)
	err = m.SendEmail(context.Background(), "ann@example.com", "s", "b")
	assert.ErrorContains(t, err, "smtp dial")
}

func TestSendEmail_SilentServerTimesOut(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })
	go func() {
		conn, err := ln.Accept()
		if err == nil {
			defer conn.Close()
			time.Sleep(2 * time.Second)
		}
	}()

	m := newTestMailer(ln.Addr().String(), 200*time.Millisecond)
	start := time.Now()
	err = m.SendEmail(context.Background(), "ann@example.com", "s", "b")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestBuildMessage_NormalizesLineEndings(t *testing.T) {
	msg := string(buildMessage("a@x", "b@y", "Hi", "line1\nline2"))
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nline1\r\nline2"))
}

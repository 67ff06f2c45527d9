package clients_test

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

	"ticketsale/internal/infrastructure/clients"
)

// smtpServer speaks just enough SMTP for gomail.
type smtpServer struct {
	listener net.Listener

	mu          sync.Mutex
	connections int
	messages    []string
}

func startSMTPServer(t *testing.T) *smtpServer {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	s := &smtpServer{listener: l}
	go s.serve()
	t.Cleanup(func() { _ = l.Close() })
	return s
}

func (s *smtpServer) port() int {
	return s.listener.Addr().(*net.TCPAddr).Port
}

func (s *smtpServer) serve() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}
		s.mu.Lock()
		s.connections++
		s.mu.Unlock()
		go s.handle(conn)
	}
}

func (s *smtpServer) handle(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	reply := func(line string) { _, _ = conn.Write([]byte(line + "\r\n")) }

	reply("220 localhost ESMTP")
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 localhost")
		case cmd == "DATA":
			reply("354 end with <CR><LF>.<CR><LF>")
			var body strings.Builder
			for {
				l, err := r.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				body.WriteString(l)
			}
			s.mu.Lock()
			s.messages = append(s.messages, body.String())
			s.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 ok")
		}
	}
}

func (s *smtpServer) stats() (int, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connections, append([]string(nil), s.messages...)
}

func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}

func TestMailer_Send_reusesConnection(t *testing.T) {
	server := startSMTPServer(t)
	m := clients.NewMailer(clients.MailerConfig{
		Host: "127.0.0.1",
		Port: server.port(),
		From: "tickets@example.com",
	})
	t.Cleanup(func() { _ = m.Close() })

	ctx := context.Background()
	id, err := m.Send(ctx, "ada@example.com", "Your tickets", "<p>hello</p>")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "<") && strings.HasSuffix(id, "@127.0.0.1>"))

	_, err = m.Send(ctx, "obi@example.com", "Reminder", "<p>again</p>")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		_, msgs := server.stats()
		return len(msgs) == 2
	}, time.Second, 10*time.Millisecond)

	connections, msgs := server.stats()
	assert.Equal(t, 1, connections)
	assert.Contains(t, msgs[0], "Subject: Your tickets")
	assert.Contains(t, msgs[0], "Message-ID: "+id)
	assert.Contains(t, msgs[1], "To: obi@example.com")
}

func TestMailer_Verify_fallsBack(t *testing.T) {
	server := startSMTPServer(t)
	m := clients.NewMailer(clients.MailerConfig{
		Host: "127.0.0.1",
		Port: closedPort(t),
		From: "tickets@example.com",
		Fallbacks: []clients.SMTPTransport{
			{Name: "unreachable", Host: "127.0.0.1", Port: closedPort(t)},
			{Name: "local", Host: "127.0.0.1", Port: server.port()},
		},
	})
	t.Cleanup(func() { _ = m.Close() })

	require.NoError(t, m.Verify(context.Background()))
	assert.Equal(t, "local", m.Transport().Name)

	_, err := m.Send(context.Background(), "ada@example.com", "Test", "<p>ok</p>")
	require.NoError(t, err)

	connections, _ := server.stats()
	assert.Equal(t, 1, connections, "verified connection is reused for sending")
}

func TestMailer_Verify_allFail(t *testing.T) {
	m := clients.NewMailer(clients.MailerConfig{
		Host:      "127.0.0.1",
		Port:      closedPort(t),
		Fallbacks: []clients.SMTPTransport{{Name: "unreachable", Host: "127.0.0.1", Port: closedPort(t)}},
	})

	err := m.Verify(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all email transports failed")
	assert.Contains(t, err.Error(), "unreachable")
}

func TestMailer_Send_givesUpWaitingForStuckSend(t *testing.T) {
	// accepts connections but never greets, so the first send hangs in gomail
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	accepted := make(chan net.Conn, 4)
	go func() {
		for {
			conn, err := l.Accept()
			if err != nil {
				return
			}
			accepted <- conn
		}
	}()
	t.Cleanup(func() {
		_ = l.Close()
		for {
			select {
			case conn := <-accepted:
				_ = conn.Close()
			default:
				return
			}
		}
	})

	m := clients.NewMailer(clients.MailerConfig{
		Host: "127.0.0.1",
		Port: l.Addr().(*net.TCPAddr).Port,
		From: "tickets@example.com",
	})

	go func() {
		_, _ = m.Send(context.Background(), "ada@example.com", "Stuck", "<p>stuck</p>")
	}()

	var stuck net.Conn
	select {
	case stuck = <-accepted:
	case <-time.After(5 * time.Second):
		t.Fatal("first send never connected")
	}
	t.Cleanup(func() { _ = stuck.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = m.Send(ctx, "obi@example.com", "Waiting", "<p>waiting</p>")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}

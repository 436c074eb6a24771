package smtpclient_test

import (
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mailscope/mxprobe/internal/smtpclient"
)

// fakeSMTPServer simulates an SMTP server on one end of a net.Pipe.
func fakeSMTPServer(server net.Conn, banner string, responses map[string]string) {
	defer func() { _ = server.Close() }()

	_, _ = fmt.Fprintf(server, "%s\r\n", banner)

	buf := make([]byte, 4096)
	for {
		n, err := server.Read(buf)
		if err != nil {
			return
		}
		cmd := string(buf[:n])

		for prefix, resp := range responses {
			if len(cmd) >= len(prefix) && cmd[:len(prefix)] == prefix {
				_, _ = fmt.Fprintf(server, "%s\r\n", resp)
				break
			}
		}

		if len(cmd) >= 4 && cmd[:4] == "QUIT" {
			_, _ = fmt.Fprintf(server, "221 Bye\r\n")
			return
		}
	}
}

func newTestClient(t *testing.T, banner string, responses map[string]string) *smtpclient.Client {
	t.Helper()
	c, err := smtpclient.New(smtpclient.Config{
		HeloDomain: "probe.test",
		MailFrom:   "validator@example.com",
		Port:       "25",
		Timeout:    2 * time.Second,
		Dial: func(network, address string, timeout time.Duration) (net.Conn, error) {
			client, server := net.Pipe()
			go fakeSMTPServer(server, banner, responses)
			return client, nil
		},
	})
	require.NoError(t, err)
	return c
}

func TestClient_AcceptedRecipient(t *testing.T) {
	c := newTestClient(t, "220 mx.example.com ESMTP", map[string]string{
		"EHLO": "250 OK", "MAIL FROM": "250 OK", "RCPT TO": "250 Accepted",
	})

	code, msg, err := c.Rcpt("mx.example.com", "user@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 250, code)
	assert.Contains(t, msg, "Accepted")
}

func TestClient_RejectedRecipient(t *testing.T) {
	c := newTestClient(t, "220 mx.example.com ESMTP", map[string]string{
		"EHLO": "250 OK", "MAIL FROM": "250 OK", "RCPT TO": "550 User not found",
	})

	code, msg, err := c.Rcpt("mx.example.com", "ghost@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 550, code)
	assert.Contains(t, msg, "User not found")
}

func TestClient_HeloFallback(t *testing.T) {
	c := newTestClient(t, "220 old.example.com SMTP", map[string]string{
		"EHLO": "502 command not implemented",
		"HELO": "250 old.example.com",
		"MAIL FROM": "250 OK", "RCPT TO": "250 OK",
	})

	code, _, err := c.Rcpt("old.example.com", "user@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 250, code)
}

func TestClient_SenderRefused(t *testing.T) {
	c := newTestClient(t, "220 mx.example.com ESMTP", map[string]string{
		"EHLO": "250 OK", "MAIL FROM": "550 policy rejection",
	})

	_, _, err := c.Rcpt("mx.example.com", "user@example.com")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "sender rejected")
}

func TestClient_BannerRefused(t *testing.T) {
	c := newTestClient(t, "554 go away", nil)

	_, _, err := c.Rcpt("mx.example.com", "user@example.com")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "greeting")
}

func TestClient_MultilineResponse(t *testing.T) {
	c := newTestClient(t, "220 mx.example.com ESMTP", map[string]string{
		"EHLO": "250-mx.example.com\r\n250-SIZE 35882577\r\n250 SMTPUTF8",
		"MAIL FROM": "250 OK", "RCPT TO": "250 OK",
	})

	code, _, err := c.Rcpt("mx.example.com", "user@example.com")
	assert.NoError(t, err)
	assert.Equal(t, 250, code)
}

func TestClient_ConnectError(t *testing.T) {
	c, err := smtpclient.New(smtpclient.Config{
		HeloDomain: "probe.test",
		MailFrom:   "validator@example.com",
		Timeout:    time.Second,
		Dial: func(network, address string, timeout time.Duration) (net.Conn, error) {
			return nil, fmt.Errorf("connection refused")
		},
	})
	require.NoError(t, err)

	_, _, err = c.Rcpt("mx.example.com", "user@example.com")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connect to mx.example.com:25")
}

func TestClient_BadProxyAddress(t *testing.T) {
	_, err := smtpclient.New(smtpclient.Config{
		HeloDomain: "probe.test",
		MailFrom:   "validator@example.com",
		ProxyAddr:  "not a proxy address",
	})
	// SOCKS5 dialer construction is lazy about addresses; only a
	// clearly unusable network errors here. Either way New must not
	// panic and a usable client or an error must come back.
	if err != nil {
		assert.Contains(t, err.Error(), "SOCKS5")
	}
}

// Package smtpclient performs single, non-delivering SMTP transactions
// (banner, EHLO/HELO, MAIL FROM, RCPT TO) against one mail exchanger.
// Each transaction owns its connection exclusively and closes it on
// every exit path; nothing is pooled or reused between probes.
package smtpclient

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// DialFunc is injectable for testing. Defaults to net.DialTimeout.
type DialFunc func(network, address string, timeout time.Duration) (net.Conn, error)

// Config configures the probe client.
type Config struct {
	// HeloDomain is the domain sent in the EHLO/HELO command.
	HeloDomain string
	// MailFrom is the fixed, neutral placeholder sender. Never an
	// operator address: a probe must not invite backscatter.
	MailFrom string
	// Port is the SMTP port, default "25".
	Port string
	// Timeout bounds the TCP connect and each individual command
	// round-trip. The deadline is re-armed before every step.
	Timeout time.Duration
	// ProxyAddr optionally routes probes through a SOCKS5 proxy
	// (host:port). ProxyUser/ProxyPassword are used when both are set.
	ProxyAddr     string
	ProxyUser     string
	ProxyPassword string
	// Dial overrides the dialer (tests). Ignored when ProxyAddr is set.
	Dial DialFunc
}

// Client runs probe transactions.
type Client struct {
	cfg  Config
	dial DialFunc
}

// New creates a probe client. It fails only if the SOCKS5 dialer
// cannot be constructed from the proxy configuration.
func New(cfg Config) (*Client, error) {
	if cfg.Port == "" {
		cfg.Port = "25"
	}
	dial := cfg.Dial
	if cfg.ProxyAddr != "" {
		var auth *proxy.Auth
		if cfg.ProxyUser != "" && cfg.ProxyPassword != "" {
			auth = &proxy.Auth{User: cfg.ProxyUser, Password: cfg.ProxyPassword}
		}
		d, err := proxy.SOCKS5("tcp", cfg.ProxyAddr, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("smtpclient: build SOCKS5 dialer: %w", err)
		}
		dial = func(network, address string, timeout time.Duration) (net.Conn, error) {
			if cd, ok := d.(proxy.ContextDialer); ok {
				ctx, cancel := context.WithTimeout(context.Background(), timeout)
				defer cancel()
				return cd.DialContext(ctx, network, address)
			}
			return d.Dial(network, address)
		}
	}
	if dial == nil {
		dial = net.DialTimeout
	}
	return &Client{cfg: cfg, dial: dial}, nil
}

// Rcpt performs one probe transaction against mxHost and returns the
// RCPT TO reply code and text. A non-nil error means the host gave no
// usable recipient answer (connect/handshake/protocol/timeout failure,
// or the sender was refused); the caller treats that as "try the next
// host". The connection is closed before Rcpt returns, on every path.
func (c *Client) Rcpt(mxHost, email string) (code int, msg string, err error) {
	address := net.JoinHostPort(mxHost, c.cfg.Port)
	netConn, err := c.dial("tcp", address, c.cfg.Timeout)
	if err != nil {
		return 0, "", fmt.Errorf("connect to %s: %w", address, err)
	}
	conn := &conn{
		netConn: netConn,
		reader:  bufio.NewReader(netConn),
		writer:  bufio.NewWriter(netConn),
		timeout: c.cfg.Timeout,
	}
	defer conn.quitAndClose()

	// Banner
	code, msg, err = conn.read()
	if err != nil {
		return 0, "", fmt.Errorf("read banner: %w", err)
	}
	if code < 200 || code >= 300 {
		return 0, "", fmt.Errorf("server greeting refused: %d %s", code, msg)
	}

	// EHLO, falling back to HELO for old servers
	code, msg, err = conn.command(fmt.Sprintf("EHLO %s\r\n", c.cfg.HeloDomain))
	if err != nil {
		return 0, "", fmt.Errorf("EHLO failed: %w", err)
	}
	if code >= 400 {
		code, msg, err = conn.command(fmt.Sprintf("HELO %s\r\n", c.cfg.HeloDomain))
		if err != nil {
			return 0, "", fmt.Errorf("HELO failed: %w", err)
		}
		if code >= 400 {
			return 0, "", fmt.Errorf("HELO rejected: %d %s", code, msg)
		}
	}

	// MAIL FROM with the neutral placeholder sender
	code, msg, err = conn.command(fmt.Sprintf("MAIL FROM:<%s>\r\n", c.cfg.MailFrom))
	if err != nil {
		return 0, "", fmt.Errorf("MAIL FROM failed: %w", err)
	}
	if code < 200 || code >= 300 {
		return 0, "", fmt.Errorf("sender rejected: %d %s", code, msg)
	}

	// RCPT TO is the answer we came for; any obtained code is returned
	// to the caller for interpretation.
	code, msg, err = conn.command(fmt.Sprintf("RCPT TO:<%s>\r\n", email))
	if err != nil {
		return 0, "", fmt.Errorf("RCPT TO failed: %w", err)
	}
	return code, msg, nil
}

type conn struct {
	netConn net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	timeout time.Duration
}

// command sends one SMTP command and reads the response, re-arming the
// deadline so the timeout bounds this step alone.
func (c *conn) command(cmd string) (int, string, error) {
	if err := c.netConn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, "", fmt.Errorf("set deadline: %w", err)
	}
	if _, err := c.writer.WriteString(cmd); err != nil {
		return 0, "", err
	}
	if err := c.writer.Flush(); err != nil {
		return 0, "", err
	}
	return readResponse(c.reader)
}

// read reads a response without sending anything (the banner).
func (c *conn) read() (int, string, error) {
	if err := c.netConn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, "", fmt.Errorf("set deadline: %w", err)
	}
	return readResponse(c.reader)
}

// quitAndClose sends a best-effort QUIT and closes the connection.
func (c *conn) quitAndClose() {
	_ = c.netConn.SetDeadline(time.Now().Add(2 * time.Second))
	_, _ = c.writer.WriteString("QUIT\r\n")
	_ = c.writer.Flush()
	_ = c.netConn.Close()
}

// readResponse reads a (possibly multi-line) SMTP response.
func readResponse(r *bufio.Reader) (code int, full string, err error) {
	var lines []string
	for {
		line, readErr := r.ReadString('\n')
		if readErr != nil {
			return 0, "", fmt.Errorf("read SMTP response: %w", readErr)
		}
		line = strings.TrimRight(line, "\r\n")
		if len(line) < 3 {
			return 0, "", errors.New("SMTP response line too short")
		}
		lines = append(lines, line)
		// If the 4th character is not '-', this is the last line
		if len(line) < 4 || line[3] != '-' {
			break
		}
	}

	lastLine := lines[len(lines)-1]
	if _, err := fmt.Sscanf(lastLine[:3], "%d", &code); err != nil {
		return 0, "", fmt.Errorf("invalid SMTP response code %q: %w", lastLine[:3], err)
	}
	return code, strings.Join(lines, " | "), nil
}

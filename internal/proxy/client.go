package proxy

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

const (
	// DefaultTimeout bounds a whole HTTP exchange.
	DefaultTimeout = 30 * time.Second

	// maxRedirects stops redirect loops.
	maxRedirects = 10

	checkProxyTimeout = 2 * time.Second
)

// Client hands out HTTP clients for the primary fetch strategy.
// Zero proxy address means direct connections.
type Client struct {
	proxyAddress string
	auth         *proxy.Auth
	dialer       proxy.ContextDialer
	timeout      time.Duration
}

// Option configures a Client.
type Option func(*Client) error

// WithProxyAddress routes connections through the SOCKS5 proxy at addr,
// given as "host:port" or "user:password@host:port".
func WithProxyAddress(addr string) Option {
	return func(c *Client) error {
		if addr == "" {
			return nil
		}
		hostPort, auth, err := parseProxyAddress(addr)
		if err != nil {
			return err
		}
		d, err := proxy.SOCKS5("tcp", hostPort, auth, proxy.Direct)
		if err != nil {
			return fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
		}
		cd, ok := d.(proxy.ContextDialer)
		if !ok {
			return fmt.Errorf("SOCKS5 dialer for %s does not support contexts", hostPort)
		}
		c.proxyAddress = hostPort
		c.auth = auth
		c.dialer = cd
		return nil
	}
}

// WithTimeout sets the per-request timeout of created HTTP clients.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d > 0 {
			c.timeout = d
		}
		return nil
	}
}

// NewClient creates a Client. It does not contact the proxy; use
// CheckConnection for that.
func NewClient(opts ...Option) (*Client, error) {
	c := &Client{timeout: DefaultTimeout}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// parseProxyAddress splits optional credentials off addr and validates the
// remaining host:port.
func parseProxyAddress(addr string) (string, *proxy.Auth, error) {
	var auth *proxy.Auth
	hostPort := addr
	if at := strings.LastIndex(addr, "@"); at >= 0 {
		user, password, ok := strings.Cut(addr[:at], ":")
		if !ok || user == "" {
			return "", nil, ErrInvalidProxyAddress
		}
		auth = &proxy.Auth{User: user, Password: password}
		hostPort = addr[at+1:]
	}

	host, port, err := net.SplitHostPort(hostPort)
	if err != nil || host == "" {
		return "", nil, ErrInvalidProxyAddress
	}
	n, err := strconv.Atoi(port)
	if err != nil || n < 1 || n > 65535 {
		return "", nil, ErrInvalidProxyAddress
	}
	return hostPort, auth, nil
}

// ProxyAddress returns the proxy host:port, or "" for direct connections.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// NewHTTPClient returns an HTTP client with a cookie jar and a redirect cap.
func (c *Client) NewHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if c.dialer != nil {
		transport.Proxy = nil
		transport.DialContext = c.dialer.DialContext
		// Each connection is a proxy circuit; keep the idle pool small.
		transport.MaxIdleConns = 10
		transport.MaxIdleConnsPerHost = 2
		transport.IdleConnTimeout = 30 * time.Second
	}

	jar, _ := cookiejar.New(nil) //nolint:errcheck // cookiejar.New only fails with invalid options

	return &http.Client{
		Transport: transport,
		Timeout:   c.timeout,
		Jar:       jar,
		CheckRedirect: func(_ *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

// HTTPClientWithConfig returns NewHTTPClient with cookie and headers set on
// every request, including redirects.
func (c *Client) HTTPClientWithConfig(cookie string, headers map[string]string) *http.Client {
	client := c.NewHTTPClient()
	if cookie == "" && len(headers) == 0 {
		return client
	}
	client.Transport = &headerInjectingTransport{
		base:    client.Transport,
		cookie:  cookie,
		headers: headers,
	}
	return client
}

type headerInjectingTransport struct {
	base    http.RoundTripper
	cookie  string
	headers map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())

	if t.cookie != "" {
		if existing := clone.Header.Get("Cookie"); existing != "" {
			clone.Header.Set("Cookie", existing+"; "+t.cookie)
		} else {
			clone.Header.Set("Cookie", t.cookie)
		}
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}

// SOCKS5 greeting constants.
const (
	socks5Version      = 0x05
	socks5AuthNone     = 0x00
	socks5AuthPassword = 0x02
)

// CheckConnection performs a SOCKS5 method negotiation with the proxy to
// confirm it is reachable and speaks SOCKS5. It returns ErrNoProxy on a
// direct client.
func (c *Client) CheckConnection(ctx context.Context) error {
	if c.proxyAddress == "" {
		return ErrNoProxy
	}

	ctx, cancel := context.WithTimeout(ctx, checkProxyTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.proxyAddress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: %s", ErrProxyTimeout, c.proxyAddress)
		}
		return fmt.Errorf("%w: %s: %w", ErrProxyCannotConnect, c.proxyAddress, err)
	}
	defer conn.Close()

	deadline, _ := ctx.Deadline()
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)
	}

	method := byte(socks5AuthNone)
	if c.auth != nil {
		method = socks5AuthPassword
	}
	if _, err := conn.Write([]byte{socks5Version, 0x01, method}); err != nil {
		return fmt.Errorf("%w: %w", ErrProxyCannotConnect, err)
	}

	resp := make([]byte, 2)
	if _, err := io.ReadFull(conn, resp); err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return fmt.Errorf("%w: %s", ErrProxyTimeout, c.proxyAddress)
		}
		return fmt.Errorf("%w: %s", ErrProxyNotSOCKS5, c.proxyAddress)
	}
	if resp[0] != socks5Version {
		return fmt.Errorf("%w: %s", ErrProxyNotSOCKS5, c.proxyAddress)
	}
	if resp[1] != method {
		return fmt.Errorf("%w: %s", ErrProxyAuthRejected, c.proxyAddress)
	}
	return nil
}

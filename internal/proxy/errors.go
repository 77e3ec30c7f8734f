package proxy

import "errors"

var (
	// ErrInvalidProxyAddress is returned for an address that is not
	// "host:port" or "user:password@host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address: expected [user:password@]host:port")

	// ErrNoProxy is returned by CheckConnection on a direct client.
	ErrNoProxy = errors.New("client is not using a proxy")

	// ErrProxyNotSOCKS5 is returned when the proxy answers but not as SOCKS5.
	ErrProxyNotSOCKS5 = errors.New("proxy is not a SOCKS5 proxy")

	// ErrProxyCannotConnect is returned when the proxy cannot be reached.
	ErrProxyCannotConnect = errors.New("cannot connect to proxy")

	// ErrProxyTimeout is returned when the proxy does not answer in time.
	ErrProxyTimeout = errors.New("timeout connecting to proxy")

	// ErrProxyAuthRejected is returned when the proxy refuses every offered
	// authentication method.
	ErrProxyAuthRejected = errors.New("proxy rejected authentication methods")

	// ErrTorNotRunning is returned when a client is requested from an
	// EmbeddedTor that was not started.
	ErrTorNotRunning = errors.New("embedded Tor daemon is not running")
)

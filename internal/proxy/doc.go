// Package proxy builds the HTTP clients used by the primary fetch strategy.
//
// A Client either dials directly or routes every connection through a SOCKS5
// proxy (golang.org/x/net/proxy). EmbeddedTor starts a private Tor daemon
// with tornago and hands its SOCKS address to a Client, for sites that are
// only reachable, or only reachable without blocking, over Tor.
//
// Per-site cookies and headers from the .mdcrawl file are injected by a
// round tripper so redirects carry them too.
package proxy

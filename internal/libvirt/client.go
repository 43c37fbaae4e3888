package libvirt

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/digitalocean/go-libvirt"
	"github.com/digitalocean/go-libvirt/socket"
	"github.com/digitalocean/go-libvirt/socket/dialers"
)

const (
	// DefaultURI is used when no connection URI is given.
	DefaultURI = "qemu:///system"

	// DefaultSocket is the libvirtd socket for system URIs.
	DefaultSocket = "/var/run/libvirt/libvirt-sock"

	// DefaultTCPPort is the libvirtd listen port for the tcp transport.
	DefaultTCPPort = "16509"

	// DefaultTimeout bounds dialing the daemon.
	DefaultTimeout = 5 * time.Second
)

// ErrUnsupportedTransport is returned for URIs whose transport cannot be
// dialed (e.g. qemu+ssh://).
var ErrUnsupportedTransport = errors.New("unsupported transport")

// Client wraps a go-libvirt connection opened against one URI.
type Client struct {
	libvirt *libvirt.Libvirt
	uri     string
}

// endpoint is a parsed connection URI.
type endpoint struct {
	dialer socket.Dialer
	// target is the URI the daemon opens on our behalf, with the transport
	// and client-side parameters stripped.
	target libvirt.ConnectURI
	// addr names what was dialed, for error messages.
	addr string
}

// parseURI maps a libvirt connection URI onto a dialer.
//
//	qemu:///system                     -> local socket
//	qemu+unix:///system?socket=/path   -> local socket at /path
//	qemu+tcp://host[:port]/system      -> TCP, default port 16509
func parseURI(uri string, timeout time.Duration) (endpoint, error) {
	if uri == "" {
		uri = DefaultURI
	}
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	u, err := url.Parse(uri)
	if err != nil {
		return endpoint{}, fmt.Errorf("invalid URI %q: %w", uri, err)
	}
	if u.Scheme == "" {
		return endpoint{}, fmt.Errorf("invalid URI %q: missing driver scheme", uri)
	}

	driver, transport, _ := strings.Cut(u.Scheme, "+")
	path := u.Path
	if path == "" {
		path = "/"
	}
	target := libvirt.ConnectURI(driver + "://" + path)

	switch transport {
	case "", "unix":
		if u.Host != "" && transport == "" {
			return endpoint{}, fmt.Errorf("%w: %q names a remote host without a transport", ErrUnsupportedTransport, uri)
		}
		sock := u.Query().Get("socket")
		if sock == "" {
			sock = DefaultSocket
		}
		return endpoint{
			dialer: dialers.NewLocal(
				dialers.WithSocket(sock),
				dialers.WithLocalTimeout(timeout),
			),
			target: target,
			addr:   sock,
		}, nil

	case "tcp":
		host, port := u.Hostname(), u.Port()
		if host == "" {
			return endpoint{}, fmt.Errorf("invalid URI %q: tcp transport requires a host", uri)
		}
		if port == "" {
			port = DefaultTCPPort
		}
		return endpoint{
			dialer: dialers.NewRemote(
				host,
				dialers.UsePort(port),
				dialers.WithRemoteTimeout(timeout),
			),
			target: target,
			addr:   net.JoinHostPort(host, port),
		}, nil

	default:
		return endpoint{}, fmt.Errorf("%w: %s", ErrUnsupportedTransport, transport)
	}
}

// Connect establishes a connection to the libvirt daemon serving uri.
// It returns a Client that must be closed via Close() when done.
//
// If uri is empty, defaults to qemu:///system.
// If timeout is zero, defaults to 5 seconds.
func Connect(uri string, timeout time.Duration) (*Client, error) {
	ep, err := parseURI(uri, timeout)
	if err != nil {
		return nil, err
	}

	l := libvirt.NewWithDialer(ep.dialer)
	if err := l.ConnectToURI(ep.target); err != nil {
		return nil, fmt.Errorf("failed to connect to libvirt at %s: %w", ep.addr, err)
	}

	return &Client{libvirt: l, uri: string(ep.target)}, nil
}

// ConnectWithContext establishes a connection with context support for cancellation.
func ConnectWithContext(ctx context.Context, uri string, timeout time.Duration) (*Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("connection cancelled: %w", err)
	}

	type result struct {
		client *Client
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		c, err := Connect(uri, timeout)
		resultCh <- result{client: c, err: err}
	}()

	select {
	case <-ctx.Done():
		// Don't leak a connection that completes after we gave up.
		go func() {
			if res := <-resultCh; res.client != nil {
				_ = res.client.Close()
			}
		}()
		return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
	case res := <-resultCh:
		return res.client, res.err
	}
}

// Close closes the libvirt connection and releases resources.
// It is safe to call Close multiple times.
func (c *Client) Close() error {
	if c.libvirt == nil {
		return nil
	}

	l := c.libvirt
	c.libvirt = nil
	if err := l.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect from libvirt: %w", err)
	}

	return nil
}

// Libvirt returns the underlying go-libvirt client for direct API access.
func (c *Client) Libvirt() *libvirt.Libvirt {
	return c.libvirt
}

// URI returns the URI the daemon opened.
func (c *Client) URI() string {
	return c.uri
}

// Ping verifies the connection is still alive by calling a simple libvirt API.
func (c *Client) Ping() error {
	if c.libvirt == nil {
		return fmt.Errorf("client not connected")
	}

	if _, err := c.libvirt.ConnectGetLibVersion(); err != nil {
		return fmt.Errorf("libvirt connection is dead: %w", err)
	}

	return nil
}

// Kind returns the lowercased hypervisor driver name, e.g. "qemu", "lxc" or
// "test".
func (c *Client) Kind() (string, error) {
	if c.libvirt == nil {
		return "", fmt.Errorf("client not connected")
	}

	kind, err := c.libvirt.ConnectGetType()
	if err != nil {
		return "", fmt.Errorf("failed to get hypervisor type: %w", err)
	}

	return strings.ToLower(kind), nil
}

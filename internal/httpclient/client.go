package httpclient

import (
	"net"
	"net/http"
	"time"
)

// NewClient returns a client tuned for repeated GETs against many hosts.
// The timeout bounds dialing, the TLS handshake and the wait for response
// headers; body transfer is not bounded so that elapsed time covers the
// full download. No overall client.Timeout is set.
func NewClient(timeout time.Duration) *http.Client {
	if timeout < 0 {
		timeout = 0
	}

	dialTimeout := 30 * time.Second
	tlsTimeout := 10 * time.Second
	if timeout > 0 {
		dialTimeout = min(dialTimeout, timeout)
		tlsTimeout = min(tlsTimeout, timeout)
	}

	dialer := &net.Dialer{
		Timeout:   dialTimeout,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          256,
		MaxIdleConnsPerHost:   32,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   tlsTimeout,
		ResponseHeaderTimeout: timeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{Transport: transport}
}

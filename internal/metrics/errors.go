package metrics

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"os"
	"strings"
	"syscall"
)

// Error kind labels used in reports and the dashboard.
const (
	ErrorKindTimeout   = "Timeout"
	ErrorKindCanceled  = "Canceled"
	ErrorKindRefused   = "Connection refused"
	ErrorKindReset     = "Connection reset"
	ErrorKindDNS       = "DNS failure"
	ErrorKindTLS       = "TLS failure"
	ErrorKindNetwork   = "Network error"
	ErrorKindUnknown   = "Unknown error"
	ErrorKindBodyRead  = "Body read error"
	errBodyReadMessage = "read body"
)

// ErrorKind returns a human-friendly label for a transport error.
func ErrorKind(err error) string {
	if err == nil {
		return ErrorKindUnknown
	}

	if errors.Is(err, context.Canceled) {
		return ErrorKindCanceled
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, os.ErrDeadlineExceeded) {
		return ErrorKindTimeout
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return ErrorKindTimeout
		}
		return ErrorKindDNS
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return ErrorKindRefused
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return ErrorKindReset
	}

	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostnameErr x509.HostnameError
	var recordErr tls.RecordHeaderError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostnameErr) || errors.As(err, &recordErr) {
		return ErrorKindTLS
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return ErrorKindTimeout
		}
		return ErrorKindNetwork
	}

	if strings.HasPrefix(err.Error(), errBodyReadMessage) {
		return ErrorKindBodyRead
	}

	return ErrorKindUnknown
}

package audit

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"time"
)

// tlsFetcher is the production CertFetcher: it completes a TLS handshake on
// port 443 and reads the leaf certificate expiry.
type tlsFetcher struct {
	timeout time.Duration
}

func (f *tlsFetcher) FetchNotAfter(ctx context.Context, host string) (time.Time, error) {
	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: f.timeout},
		Config:    &tls.Config{ServerName: host},
	}

	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, "443"))
	if err != nil {
		if isHandshakeFailure(err) {
			return time.Time{}, &HandshakeError{Err: err}
		}
		return time.Time{}, err
	}
	defer conn.Close()

	state := conn.(*tls.Conn).ConnectionState()
	if len(state.PeerCertificates) == 0 {
		return time.Time{}, &HandshakeError{Err: errNoPeerCert}
	}
	return state.PeerCertificates[0].NotAfter, nil
}

var errNoPeerCert = &certError{"no peer certificate presented"}

type certError struct{ msg string }

func (e *certError) Error() string { return e.msg }

// isHandshakeFailure distinguishes certificate and protocol problems from
// plain connectivity failures.
func isHandshakeFailure(err error) bool {
	var (
		unknownAuthority x509.UnknownAuthorityError
		hostnameErr      x509.HostnameError
		certInvalid      x509.CertificateInvalidError
		recordHeader     tls.RecordHeaderError
		certVerify       *tls.CertificateVerificationError
	)
	switch {
	case errors.As(err, &unknownAuthority),
		errors.As(err, &hostnameErr),
		errors.As(err, &certInvalid),
		errors.As(err, &recordHeader),
		errors.As(err, &certVerify):
		return true
	}
	return false
}

package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"syscall"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/net/html/charset"

	"github.com/seo-optimizer/seoscore/config"
	"github.com/seo-optimizer/seoscore/errs"
)

var errTooManyRedirects = errors.New("too many redirects")

// HTTPFetcher is the static stage: one GET with browser-like headers.
type HTTPFetcher struct {
	client       *http.Client
	userAgent    string
	maxBodyBytes int64
}

// NewHTTPFetcher builds the static fetcher from cfg. With Fingerprint set,
// TLS is dialed with a Chrome ClientHello (ALPN limited to http/1.1 since
// the transport only speaks HTTP/1 over a utls connection).
func NewHTTPFetcher(cfg config.FetchConfig) *HTTPFetcher {
	var transport *http.Transport
	if cfg.Fingerprint {
		transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialTLSContext:        dialChromeTLS,
			ForceAttemptHTTP2:     false,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			ResponseHeaderTimeout: cfg.Timeout,
		}
	} else {
		transport = http.DefaultTransport.(*http.Transport).Clone()
	}

	maxRedirects := cfg.MaxRedirects
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}
	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = 10 << 20
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return errTooManyRedirects
				}
				return nil
			},
		},
		userAgent:    userAgent,
		maxBodyBytes: maxBody,
	}
}

// chromeSpec returns a fresh Chrome ClientHello spec with ALPN forced to
// http/1.1. Each connection gets its own copy.
func chromeSpec() (*tls.ClientHelloSpec, error) {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return nil, err
	}
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	return &spec, nil
}

func dialChromeTLS(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	spec, err := chromeSpec()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("build tls spec: %w", err)
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}

// FetchStatic GETs url and returns the body decoded to UTF-8. Any non-2xx
// response is an error.
func (f *HTTPFetcher) FetchStatic(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errs.Network(errs.ReasonNone, "could not build request", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errs.HTTPStatus(resp.StatusCode)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, f.maxBodyBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", errs.Network(errs.ReasonNone, "could not decode response body", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", classify(err)
	}
	return string(data), nil
}

// classify maps a transport error onto the network failure taxonomy.
func classify(err error) *errs.Error {
	var dnsErr *net.DNSError
	var netErr net.Error
	switch {
	case errors.Is(err, errTooManyRedirects):
		return errs.Network(errs.ReasonTooManyRedirects, "too many redirects", err)
	case errors.As(err, &dnsErr):
		return errs.Network(errs.ReasonHostNotFound, "host not found", err)
	case errors.Is(err, syscall.ECONNREFUSED):
		return errs.Network(errs.ReasonConnectionRefused, "connection refused", err)
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		return errs.Network(errs.ReasonTimeout, "request timed out", err)
	case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, syscall.ECONNRESET):
		return errs.Network(errs.ReasonNoResponse, "no response received from server", err)
	default:
		return errs.Network(errs.ReasonNone, "request failed", err)
	}
}

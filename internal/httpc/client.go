// Package httpc provides HTTP clients with sensible defaults.
// Use these instead of http.DefaultClient to ensure dial timeouts are set.
package httpc

import (
	"net"
	"net/http"
	"time"
)

// Default timeouts for HTTP operations.
const (
	DefaultConnectTimeout        = 10 * time.Second
	DefaultResponseHeaderTimeout = 10 * time.Second
	DefaultKeepAlive             = 30 * time.Second
)

// NewStreamClient creates a client for long-lived streaming responses such as
// multipart MJPEG. There is no overall request timeout because the body never
// ends; connect and response-header phases are bounded instead.
func NewStreamClient(connectTimeout time.Duration) *http.Client {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   connectTimeout,
				KeepAlive: DefaultKeepAlive,
			}).DialContext,
			ResponseHeaderTimeout: DefaultResponseHeaderTimeout,
			MaxIdleConnsPerHost:   1,
			DisableCompression:    true,
		},
	}
}

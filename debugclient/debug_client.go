// Package debugclient provides a wrapper of HTTP client printing all
// requests as curl commands and all responses as raw HTTP dumps.
// Wrap the client used by restcall.HTTPBackend with it to see what
// goes over the wire:
//
//	backend := restcall.NewHTTPBackend(baseURL,
//		restcall.CustomClient(debugclient.New(http.DefaultClient, os.Stderr)))
package debugclient

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httputil"
	"sync/atomic"

	"moul.io/http2curl"
)

// HttpClient is the interface of *http.Client needed by the wrapper.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

// Client wraps an HttpClient and logs every exchange. Exchanges are
// numbered so that concurrent requests can be told apart in the log.
type Client struct {
	impl HttpClient
	log  io.Writer
	n    atomic.Uint64
}

// New creates the wrapper, logging to log.
func New(impl HttpClient, log io.Writer) *Client {
	return &Client{
		impl: impl,
		log:  log,
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	n := c.n.Add(1)

	curl, err := http2curl.GetCurlCommand(req)
	if err != nil {
		return nil, fmt.Errorf("http2curl.GetCurlCommand failed for request %d: %w", n, err)
	}
	if _, err := fmt.Fprintf(c.log, "=== request %d ===\n$ %s\n=== end of request %d ===\n", n, curl, n); err != nil {
		return nil, fmt.Errorf("failed to log request %d: %w", n, err)
	}

	res, err := c.impl.Do(req)
	if err != nil {
		return nil, err
	}

	resDump, err := httputil.DumpResponse(res, true)
	if err != nil {
		return nil, fmt.Errorf("httputil.DumpResponse failed for response %d: %w", n, err)
	}
	if _, err := fmt.Fprintf(c.log, "=== response %d ===\n%s\n=== end of response %d ===\n", n, string(resDump), n); err != nil {
		return nil, fmt.Errorf("failed to log response %d: %w", n, err)
	}

	return res, nil
}

func (c *Client) CloseIdleConnections() {
	c.impl.CloseIdleConnections()
}

// Package closingclient provides a wrapper of HTTP client whose Close
// method cancels all requests in flight and waits for them to return.
// Wrap the client used by restcall.HTTPBackend with it to get clean
// shutdown: no request outlives the client.
package closingclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
)

// HttpClient is the interface of *http.Client needed by the wrapper.
type HttpClient interface {
	Do(req *http.Request) (*http.Response, error)
	CloseIdleConnections()
}

// ClosingClient tracks requests in flight and cancels them on Close.
type ClosingClient struct {
	impl HttpClient

	mu         sync.Mutex
	closing    bool
	cancels    map[uint64]func()
	nextCancel uint64

	wg sync.WaitGroup
}

// New creates the wrapper around impl.
func New(impl HttpClient) *ClosingClient {
	return &ClosingClient{
		impl:    impl,
		cancels: make(map[uint64]func()),
	}
}

func (c *ClosingClient) Do(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithCancel(req.Context())

	c.mu.Lock()
	if c.closing {
		c.mu.Unlock()
		cancel()
		return nil, fmt.Errorf("client is closing")
	}

	// Add(1) and Wait() must not run in parallel, so Add(1) is done
	// under the mutex protecting c.closing.
	c.wg.Add(1)
	defer c.wg.Done()

	key := c.nextCancel
	c.nextCancel++
	c.cancels[key] = cancel
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.cancels, key)
	}()

	return c.impl.Do(req.Clone(ctx))
}

func (c *ClosingClient) CloseIdleConnections() {
	c.impl.CloseIdleConnections()
}

// Close cancels requests in flight, waits for them to return and
// closes the underlying client, if it is an io.Closer.
func (c *ClosingClient) Close() error {
	c.mu.Lock()
	if !c.closing {
		c.closing = true
		for _, cancel := range c.cancels {
			cancel()
		}
		c.cancels = nil
	}
	c.mu.Unlock()

	c.wg.Wait()
	c.impl.CloseIdleConnections()

	if closer, ok := c.impl.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

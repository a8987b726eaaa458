package store

import (
	"context"
	"sync"
)

// OpenFunc opens a Gateway. Handle calls it on first use.
type OpenFunc func(ctx context.Context) (*Gateway, error)

// Handle owns a lazily opened Gateway. The first successful Get opens it and
// later calls reuse it; a failed open is retried on the next Get.
type Handle struct {
	mu   sync.Mutex
	open OpenFunc
	g    *Gateway
}

func NewHandle(open OpenFunc) *Handle {
	return &Handle{open: open}
}

// Get returns the shared Gateway, opening it if needed.
func (h *Handle) Get(ctx context.Context) (*Gateway, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.g != nil {
		return h.g, nil
	}
	g, err := h.open(ctx)
	if err != nil {
		return nil, err
	}
	h.g = g
	return g, nil
}

// Close closes the Gateway if it was opened. The Handle can be reused; the
// next Get opens a new Gateway.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.g == nil {
		return nil
	}
	err := h.g.Close()
	h.g = nil
	return err
}

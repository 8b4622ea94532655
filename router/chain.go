package router

import (
	"net/http"
)

// Chain builds a handler from a base handler and middlewares.
type Chain struct {
	handler     http.Handler
	middlewares []func(http.Handler) http.Handler
}

// NewChain creates a Chain around h. It panics if h is nil.
func NewChain(h http.Handler) *Chain {
	if h == nil {
		panic("chain handler cannot be nil")
	}
	return &Chain{handler: h}
}

// WithMiddleware adds middlewares. The first one given is the outermost and
// runs first, across calls as well:
//
//	NewChain(h).WithMiddleware(mw1, mw2).WithMiddleware(mw3)
//
// runs mw1, mw2, mw3, then h.
func (c *Chain) WithMiddleware(middlewares ...func(http.Handler) http.Handler) *Chain {
	c.middlewares = append(c.middlewares, middlewares...)
	return c
}

// Handler returns the composed handler.
func (c *Chain) Handler() http.Handler {
	handler := c.handler
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		handler = c.middlewares[i](handler)
	}
	return handler
}

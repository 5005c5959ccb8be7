package router

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It can enrich the context (for
// example with the authenticated user id) or reject the request by returning
// an error.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

type Router struct {
	Inner gin.IRouter

	ctx         context.Context
	middlewares []MiddlewareFunc
}

// New creates a router on top of a base context carrying the configs, logger,
// database, and token engine every request needs.
func New(ctx context.Context) *Router {
	return &Router{Inner: gin.New(), ctx: ctx}
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.Inner.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}

func (r *Router) Use(middleware MiddlewareFunc) {
	r.middlewares = append(r.middlewares, middleware)
}

func (r *Router) Group(pattern string) *Router {
	middlewares := make([]MiddlewareFunc, len(r.middlewares))
	copy(middlewares, r.middlewares)

	return &Router{
		Inner:       r.Inner.Group(pattern),
		ctx:         r.ctx,
		middlewares: middlewares,
	}
}

func (r *Router) Handler() http.Handler {
	return r.Inner.(*gin.Engine)
}

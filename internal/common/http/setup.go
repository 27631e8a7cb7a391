package http

import (
	"net/http"

	"github.com/AlibekovAA/snapfeed/internal/common/httpmetrics"
	"github.com/AlibekovAA/snapfeed/internal/common/logger"
)

type Middleware func(http.Handler) http.Handler

// Chain wraps h so that the first middleware listed runs first.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// BuildBaseHandler applies the middleware shared by every route. extra runs
// after request metrics are recorded, so rejected requests are still counted.
func BuildBaseHandler(appName string, log *logger.Logger, maxRequestBytes int64, handler http.Handler, extra ...Middleware) http.Handler {
	collector := httpmetrics.New(appName)

	chain := []Middleware{
		SecurityHeadersMiddleware,
		ContentSecurityPolicyMiddleware(""),
		TraceIDMiddleware,
		RecoveryMiddleware(log),
		MaxRequestSizeMiddleware(maxRequestBytes),
		collector.Wrap,
	}
	chain = append(chain, extra...)

	return Chain(handler, chain...)
}

package cmd

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// tracedHandler wraps h so that W3C trace context and baggage sent by callers
// end up in the request context. No exporter is configured here; spans stay
// non-recording unless a tracer provider is installed.
func tracedHandler(h http.Handler, operation string) http.Handler {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return otelhttp.NewHandler(h, operation)
}

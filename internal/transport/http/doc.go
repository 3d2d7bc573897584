// Package http is the presentation adapter over the positioning pipeline:
// thin chi handlers that validate request parameters, call the services, and
// render the metrics contract as JSON. Errors leave this layer as RFC 7807
// problem documents; computation stays in the services and the metrics
// engine.
package http

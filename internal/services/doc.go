// Package services contains the application services that orchestrate the
// open interest pipeline for the HTTP layer: resolving the target trading
// day, assembling snapshot windows, and running the metrics engine. Handlers
// stay thin; all pipeline sequencing lives here.
package services

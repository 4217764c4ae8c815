// Package server implements the TCP ingest server for ADTS byte streams and
// the HTTP API endpoints. Each ingest connection is handled as one logical
// stream and routed to its own session; the HTTP server provides
// monitoring/management endpoints and the Prometheus metrics handler.
package server

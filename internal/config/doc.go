// Package config provides configuration loading and validation for the ADTS
// stream service. It handles YAML-based configuration with struct validation
// for the TCP ingest server, HTTP API, stream sessions, and logging.
package config

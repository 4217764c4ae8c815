// Package stream provides stream session management and lifecycle handling.
// Each ingest connection gets one session owning one ADTS parser; the manager
// tracks concurrent sessions and cleans up streams that go idle.
package stream

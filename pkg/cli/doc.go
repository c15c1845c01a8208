// Package cli provides terminal helpers shared by the sensai commands:
// result output in YAML, JSON, table or raw form with optional jq
// filtering, request file loading, log capture and a bordered live frame.
package cli

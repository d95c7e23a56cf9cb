// Package diagnostics probes the service's dependencies: database
// connectivity and sync table schemas, the report bucket, and both upstream
// inventory endpoints. Exposed as GET /diagnostics for operators and
// readiness checks.
package diagnostics

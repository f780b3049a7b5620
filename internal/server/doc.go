// Package server implements the HTTP server exposing the panel WebSocket
// endpoint and monitoring/management endpoints for health, configuration,
// statistics and Prometheus metrics.
package server

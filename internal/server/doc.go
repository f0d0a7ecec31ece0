// Package server exposes the micro path and history state multiplexer over
// HTTP so server-rendered hosts and gateways compute the same shared URL
// the in-page runtime would.
//
// Ownership boundary:
// - JSON request/response shapes
// - app registry endpoints
// - health, readiness and metrics endpoints
//
// The service holds no URL or history state between requests; every call
// carries its own snapshot.
package server

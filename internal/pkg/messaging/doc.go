// Package messaging provides a broker-agnostic API for publishing and
// consuming messages.
//
// Use-case code depends on the Messaging interface only. Two drivers ship:
// NATS for multi-replica deployments and an in-process Memory broker for a
// single replica and for tests.
package messaging

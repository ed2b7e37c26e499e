// Package kioskAuth provides an OTP-based identity verification and token
// lifecycle engine for citizen-services kiosk platforms: one-time codes
// delivered out of band, JWT access tokens, rotating JWT refresh tokens,
// Redis-backed challenge state, and an async audit trail.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// kioskAuth is the public surface. It exposes [Engine], [Builder], [Config],
// provider interfaces ([AccountProvider], [ProfileProvider], [Notifier]), and
// value types (OTPResult, LoginResult, MetricsSnapshot, etc.). Challenge
// encoding, rate limiting, and audit dispatch are implementation details and
// never exported.
//
// # What this package must NOT do
//
//   - Expose Redis clients, challenge records, or encoding details in its
//     public API.
//   - Store account or profile data itself; durable records live behind the
//     provider interfaces.
//   - Block a request on notification delivery or audit persistence.
//
// # Performance contract
//
// ValidateAccess is the hot path. It verifies the JWT signature only and must
// not touch Redis or the account provider. VerifyOTP and Refresh are allowed
// the Redis and provider round-trips they need; challenge consumption is a
// single optimistic transaction.
package kioskAuth

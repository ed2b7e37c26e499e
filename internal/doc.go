// Package internal contains helper utilities that are intentionally private
// to kioskAuth, including secure OTP code generation and digest helpers.
//
// # Sub-packages
//
//   - rate — Redis-backed fixed-window rate limit primitives
//
// # What this package must NOT do
//
//   - Export types that appear in the public kioskAuth API.
//   - Be imported by any package outside the kioskAuth module.
package internal

// Package identity derives request identity from externally issued access tokens.
//
// Tokens are signed by a separate auth service using a shared symmetric
// secret. This package only verifies them; it never issues or rotates
// credentials.
package identity

// userIDLength is the fixed identifier length the auth service issues.
// Tokens carrying any other length are rejected even when the signature
// is valid.
const userIDLength = 16

// Principal is the minimal identity derived from a verified token.
// It is constructed fresh per request and never persisted.
type Principal struct {
	ID            string
	Permissions   []string
	Authenticated bool
}

package identity

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// signingAlgorithm is the only algorithm accepted from the auth service.
const signingAlgorithm = "HS256"

// State distinguishes the three verification outcomes.
type State int

const (
	// StateAbsent means no credential was supplied. The request may still
	// proceed anonymously; endpoints decide whether that is acceptable.
	StateAbsent State = iota
	// StateRejected means a credential was supplied but failed verification.
	StateRejected
	// StateAuthenticated means the credential verified and Principal is set.
	StateAuthenticated
)

// Result is the outcome of verifying a raw credential. Callers must handle
// all three states; absence is deliberately not an error.
type Result struct {
	State     State
	Principal Principal
	Reason    string
}

// accessClaims mirrors the claim set issued by the external auth service.
type accessClaims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"userId"`
	Permissions []string `json:"permissions"`
}

// Verifier validates externally issued access tokens against a shared secret.
// It holds no package-level state; secret and clock are injected so tests can
// substitute both without touching the environment.
type Verifier struct {
	secret []byte
	now    func() time.Time
}

// NewVerifier constructs a Verifier. A nil now defaults to time.Now.
func NewVerifier(secret []byte, now func() time.Time) *Verifier {
	if now == nil {
		now = time.Now
	}
	return &Verifier{secret: secret, now: now}
}

// Verify resolves a raw token string to an identity Result. It is a pure
// function of the token, the shared secret, and the injected clock.
func (v *Verifier) Verify(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{State: StateAbsent}
	}

	var claims accessClaims
	_, err := v.parse(raw, &claims)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Result{State: StateRejected, Reason: "token expired"}
		}
		// Unsigned, mis-signed, wrong-algorithm and corrupt tokens all land
		// here and are indistinguishable to the caller.
		return Result{State: StateRejected, Reason: "invalid token"}
	}

	if len(claims.UserID) != userIDLength {
		return Result{State: StateRejected, Reason: "invalid token payload"}
	}

	permissions := claims.Permissions
	if permissions == nil {
		permissions = []string{}
	}

	return Result{
		State: StateAuthenticated,
		Principal: Principal{
			ID:            claims.UserID,
			Permissions:   permissions,
			Authenticated: true,
		},
	}
}

func (v *Verifier) parse(raw string, claims *accessClaims) (*jwt.Token, error) {
	return jwt.ParseWithClaims(raw, claims,
		func(token *jwt.Token) (any, error) {
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{signingAlgorithm}),
		jwt.WithTimeFunc(v.now),
	)
}

package gateway

import (
	"context"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"VConnct/logger"
	errs "VConnct/tools/errs"
	"VConnct/tools/security"
)

// SessionCookieName is the cookie the browser sets during REST login; the
// socket handshake reuses it.
const SessionCookieName = "jwt"

// Each rejection reason is distinct so clients and logs can tell them apart.
// The Msg field is the only thing a rejected client ever sees.
var (
	ErrNoToken      = errs.NewCodeError(40101, "Unauthorized: No Token Provided")
	ErrInvalidToken = errs.NewCodeError(40102, "Unauthorized: Invalid Token")
	ErrTokenExpired = errs.NewCodeError(40103, "Unauthorized: Token Expired")
	ErrUserNotFound = errs.NewCodeError(40104, "Unauthorized: User not found")
	ErrAuthFailed   = errs.NewCodeError(40105, "Unauthorized: Authentication failed")
)

// TokenFromCookie extracts the session token from a raw Cookie header value
// ("name=value; name2=value2").
func TokenFromCookie(header string) string {
	for _, part := range strings.Split(header, ";") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, SessionCookieName+"="); ok {
			return v
		}
	}
	return ""
}

// SessionValidator turns a handshake credential into a verified identity.
// Read-only; invoked once per connection attempt before the connection is
// admitted.
type SessionValidator struct {
	secret  []byte
	store   IdentityStore
	revoked TokenChecker // optional, nil skips the check
}

func NewSessionValidator(secret []byte, store IdentityStore, revoked TokenChecker) *SessionValidator {
	return &SessionValidator{secret: secret, store: store, revoked: revoked}
}

// Validate authenticates the raw Cookie header. Every failure maps onto one
// of the sentinel errors above; internal detail stays in the server log.
func (v *SessionValidator) Validate(ctx context.Context, cookieHeader string) (*Identity, error) {
	token := TokenFromCookie(cookieHeader)
	if token == "" {
		return nil, ErrNoToken
	}

	claims, err := security.Verify(v.secret, token)
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		logger.Debugf("[gateway] token verify failed: %v", err)
		return nil, ErrInvalidToken
	}

	if v.revoked != nil {
		dead, err := v.revoked.IsRevoked(ctx, security.HashToken(token))
		if err != nil {
			// revocation is best-effort; fail open but leave a trace
			logger.Warnf("[gateway] revocation check failed: %v", err)
		} else if dead {
			return nil, ErrInvalidToken
		}
	}

	ident, err := v.store.FindIdentityByID(ctx, claims.UserID())
	if err != nil {
		logger.Errorf("[gateway] identity lookup failed: %v", err)
		return nil, ErrAuthFailed
	}
	if ident == nil {
		return nil, ErrUserNotFound
	}
	return ident, nil
}

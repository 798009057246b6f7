package campus

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// Fixed token lifetimes. Tokens are stateless, there is no revocation list;
// these bounds substitute for revocation.
const (
	// SessionTokenTTL bounds login sessions
	SessionTokenTTL = 30 * time.Minute
	// EmailVerificationTokenTTL bounds email verification links
	EmailVerificationTokenTTL = 24 * time.Hour
	// PasswordResetTokenTTL bounds password reset links
	PasswordResetTokenTTL = time.Hour
)

// TokenService issues and validates signed, purpose scoped tokens
type TokenService interface {
	GenerateSession(identity Identity) (string, error)
	GenerateEmailVerification(userID, email string) (string, error)
	GeneratePasswordReset(userID, email string) (string, error)
	SignClaims(claims *JWTClaims) (string, error)
	Validate(tokenString string) (AuthClaims, error)
	ValidatePurpose(tokenString string, purpose TokenPurpose) (AuthClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey []byte
	issuer     string
	audience   jwt.ClaimStrings
	logger     Logger
	now        func() time.Time
	decorator  ClaimsDecorator
}

// TokenServiceOption customizes the token service
type TokenServiceOption func(*TokenServiceImpl)

// WithClock injects a custom clock, useful to simulate expiry in tests
func WithClock(now func() time.Time) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithClaimsDecorator installs a decorator that can extend session claims
// before signing. Registered and identity claims are guarded; a decorator
// that touches them aborts the token mint.
func WithClaimsDecorator(d ClaimsDecorator) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		ts.decorator = normalizeClaimsDecorator(d)
	}
}

// NewTokenService creates a new TokenService instance. The signing key is
// process wide configuration: rotating it invalidates every outstanding token,
// which the short TTLs make acceptable.
func NewTokenService(signingKey []byte, issuer string, audience jwt.ClaimStrings, logger Logger, opts ...TokenServiceOption) TokenService {
	if logger == nil {
		logger = defLogger{}
	}

	ts := &TokenServiceImpl{
		signingKey: signingKey,
		issuer:     issuer,
		audience:   audience,
		logger:     logger,
		now:        time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// GenerateSession creates the login session token: subject is the username,
// uid and role travel alongside so the middleware can gate without a lookup.
func (ts *TokenServiceImpl) GenerateSession(identity Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	claims := ts.newClaims(PurposeSession, SessionTokenTTL)
	claims.RegisteredClaims.Subject = identity.Username()
	claims.UID = identity.ID()
	claims.UserRole = identity.Role()

	if err := ts.decorateClaims(identity, claims); err != nil {
		return "", err
	}

	return ts.SignClaims(claims)
}

// decorateClaims runs the installed decorator and verifies it left the
// immutable claims alone.
func (ts *TokenServiceImpl) decorateClaims(identity Identity, claims *JWTClaims) error {
	decorator := normalizeClaimsDecorator(ts.decorator)
	snapshot := captureImmutableClaims(claims)

	if err := decorator.Decorate(identity, claims); err != nil {
		ts.logger.Error("TokenService claims decorator failed", "error", err)
		return err
	}

	if err := snapshot.validate(claims); err != nil {
		ts.logger.Error("TokenService claims decorator mutated immutable claims", "error", err)
		return err
	}

	return nil
}

// GenerateEmailVerification creates a 24h email verification token
func (ts *TokenServiceImpl) GenerateEmailVerification(userID, email string) (string, error) {
	claims := ts.newClaims(PurposeEmailVerification, EmailVerificationTokenTTL)
	claims.RegisteredClaims.Subject = userID
	claims.UID = userID
	claims.Email = email

	return ts.SignClaims(claims)
}

// GeneratePasswordReset creates a 1h password reset token
func (ts *TokenServiceImpl) GeneratePasswordReset(userID, email string) (string, error) {
	claims := ts.newClaims(PurposePasswordReset, PasswordResetTokenTTL)
	claims.RegisteredClaims.Subject = userID
	claims.UID = userID
	claims.Email = email

	return ts.SignClaims(claims)
}

func (ts *TokenServiceImpl) newClaims(purpose TokenPurpose, ttl time.Duration) *JWTClaims {
	now := ts.now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Audience:  aud,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenPurpose: purpose,
	}

	ensureTokenID(&claims.RegisteredClaims)

	return claims
}

// SignClaims signs arbitrary JWT claims using the configured signing key.
func (ts *TokenServiceImpl) SignClaims(claims *JWTClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Validate parses and validates a token string, returning structured claims.
// Signature integrity is checked before anything else, then expiry, then
// claim structure. Callers collapse every failure kind into a single
// unauthenticated outcome; the granular error is for logging only.
func (ts *TokenServiceImpl) Validate(tokenString string) (AuthClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 3)
	parserOptions = append(parserOptions, jwt.WithTimeFunc(ts.now))
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).WithTextCode(ErrTokenMalformed.TextCode)
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrUnableToMapClaims
}

// ValidatePurpose runs Validate and then, as an independent second check,
// rejects tokens whose purpose claim does not match the expected flow. A
// password reset token is never accepted as a session token, and vice versa.
func (ts *TokenServiceImpl) ValidatePurpose(tokenString string, purpose TokenPurpose) (AuthClaims, error) {
	claims, err := ts.Validate(tokenString)
	if err != nil {
		return nil, err
	}

	if claims.Purpose() != purpose {
		ts.logger.Error("TokenService purpose mismatch", "want", purpose, "got", claims.Purpose())
		return nil, ErrTokenPurposeMismatch
	}

	return claims, nil
}

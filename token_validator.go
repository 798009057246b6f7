package campus

// TokenValidator validates tokens and extracts claims without tying callers
// to a specific signing implementation.
type TokenValidator interface {
	Validate(tokenString string) (AuthClaims, error)
}

// TokenValidatorFunc adapts a function into a TokenValidator.
type TokenValidatorFunc func(tokenString string) (AuthClaims, error)

// Validate satisfies the TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenMalformed
	}
	return f(tokenString)
}

// NewPurposeValidator binds a token service to a single token purpose. A
// validator built for the session purpose rejects reset and verification
// tokens even when their signature and expiry check out.
func NewPurposeValidator(tokens TokenService, purpose TokenPurpose) TokenValidator {
	return TokenValidatorFunc(func(tokenString string) (AuthClaims, error) {
		if tokens == nil {
			return nil, ErrTokenMalformed
		}
		return tokens.ValidatePurpose(tokenString, purpose)
	})
}

package campus

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// ErrIdentityNotFound is the error we return for non found identities
var ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
	WithTextCode("IDENTITY_NOT_FOUND").
	WithCode(errors.CodeUnauthorized)

// ErrMismatchedHashAndPassword is the single outcome for bad username/password
// pairs. "No such user" and "wrong password" both collapse into this value so
// callers cannot probe for accounts.
var ErrMismatchedHashAndPassword = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode("INVALID_CREDENTIALS").
	WithCode(errors.CodeUnauthorized)

// ErrNoEmptyString rejects empty secrets before hashing
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryBadInput).
	WithTextCode("EMPTY_PASSWORD").
	WithCode(errors.CodeBadRequest)

// ErrAccountDisabled is returned at login time for deactivated accounts.
// Already issued session tokens stay valid until they expire.
var ErrAccountDisabled = errors.New("account has been disabled", errors.CategoryAuth).
	WithTextCode("ACCOUNT_DISABLED").
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is the verification outcome for expired tokens
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithTextCode("TOKEN_EXPIRED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed covers bad signatures and structurally invalid tokens
var ErrTokenMalformed = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode("TOKEN_MALFORMED").
	WithCode(errors.CodeUnauthorized)

// ErrTokenPurposeMismatch rejects tokens presented to the wrong verification
// context, e.g. a password reset token used as a session token
var ErrTokenPurposeMismatch = errors.New("token purpose mismatch", errors.CategoryAuth).
	WithTextCode("TOKEN_PURPOSE_MISMATCH").
	WithCode(errors.CodeUnauthorized)

// ErrRoleInsufficient is the generic authorization failure for role gates
var ErrRoleInsufficient = errors.New("insufficient role for this action", errors.CategoryAuthz).
	WithTextCode("ROLE_INSUFFICIENT").
	WithCode(errors.CodeForbidden)

// ErrSelfActionForbidden blocks admins from targeting their own account for
// role changes, disabling, or deletion, regardless of role sufficiency
var ErrSelfActionForbidden = errors.New("cannot perform this action on your own account", errors.CategoryAuthz).
	WithTextCode("SELF_ACTION_FORBIDDEN").
	WithCode(errors.CodeForbidden)

// ErrGroupAccessDenied is returned when a user without membership or a
// management role tries to view a group
var ErrGroupAccessDenied = errors.New("no access to this group", errors.CategoryAuthz).
	WithTextCode("GROUP_ACCESS_DENIED").
	WithCode(errors.CodeForbidden)

// ErrLastOwnerProtected guards the structural invariant that every group keeps
// at least one owner membership
var ErrLastOwnerProtected = errors.New("group must retain at least one owner", errors.CategoryConflict).
	WithTextCode("LAST_OWNER_PROTECTED").
	WithCode(errors.CodeConflict)

// ErrDuplicateMembership maps the (user, group) unique constraint violation
var ErrDuplicateMembership = errors.New("user is already a member of this group", errors.CategoryConflict).
	WithTextCode("DUPLICATE_MEMBERSHIP").
	WithCode(errors.CodeConflict)

// ErrDuplicateAssignment maps the unique constraints on course, module, and
// enrollment assignment tables
var ErrDuplicateAssignment = errors.New("assignment already exists", errors.CategoryConflict).
	WithTextCode("DUPLICATE_ASSIGNMENT").
	WithCode(errors.CodeConflict)

// ErrImmutableClaimMutation rejects decorated tokens whose registered or
// identity claims changed between construction and signing
var ErrImmutableClaimMutation = errors.New("immutable claim mutated", errors.CategoryInternal).
	WithTextCode("IMMUTABLE_CLAIM_MUTATION").
	WithCode(errors.CodeInternal)

// ErrUnableToMapClaims unable to get claims from token
var ErrUnableToMapClaims = errors.New("unable to map claims", errors.CategoryAuth).
	WithTextCode("UNMAPPABLE_CLAIMS").
	WithCode(errors.CodeUnauthorized)

// ErrUnableToFindSession missing session in request context
var ErrUnableToFindSession = errors.New("unable to find session", errors.CategoryAuth).
	WithTextCode("SESSION_NOT_FOUND").
	WithCode(errors.CodeUnauthorized)

// ErrUnableToParseData parse error
var ErrUnableToParseData = errors.New("unable to parse data", errors.CategoryBadInput).
	WithTextCode("UNPARSEABLE_DATA").
	WithCode(errors.CodeBadRequest)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}

// IsUniqueViolation probes driver errors for unique constraint failures. The
// unique indexes on usernames, emails, and (user, group) pairs are the
// authoritative de-duplication defense; application side pre-checks only make
// the message friendlier.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || // sqlite
		strings.Contains(msg, "duplicate key value") // postgres
}

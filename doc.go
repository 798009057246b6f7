// Package campus provides the authentication and authorization backbone for
// an educational content platform: credential hashing, purpose-scoped JWT
// issuance, principal resolution, and the role policy that guards users,
// groups, courses, and modules.
//
// Tokens and purposes:
//   - TokenService signs HS256 tokens whose purpose claim binds them to one
//     flow. Session tokens authenticate requests, email verification and
//     password reset tokens drive their respective flows, and ValidatePurpose
//     rejects any crossover between them.
//   - ClaimsDecorator is invoked before tokens are signed. Decorators may
//     enrich extension fields such as metadata while protected claims (sub,
//     iss, aud, exp, role, purpose) remain immutable.
//
// Roles and policy:
//   - Every user carries exactly one system role (user, manager, admin) and
//     may hold one membership role per group (member, moderator, owner).
//   - RoleAllows and the guard helpers in policy.go enforce the access matrix,
//     self-action protection, and the rule that a group never loses its last
//     owner.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther to describe
//     login and password reset events. Sinks run best-effort (errors are
//     logged) so you can forward to a database or queue without blocking
//     authentication.
package campus

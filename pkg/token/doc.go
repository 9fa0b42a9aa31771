// Package token issues and verifies the signed credentials that carry a
// user's identity, role level and tenant codename between requests.
//
// Tokens are compact HS256 JWTs signed with a process-wide secret. They are
// stateless: there is no server-side revocation, so a refresh credential
// stays valid until it expires and overlapping valid pairs are tolerated.
package token

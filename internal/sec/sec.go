// Package sec provides the authentication and security primitives for the web
// application.
//
// # Sessions
//
// Sessions are client-held: a signed token carrying the authenticated user's ID
// is stored in a cookie. The signature (HMAC-SHA256 via JWT) makes the session
// tamper-evident, but the contents are not encrypted — sessions must never hold
// secrets.
//
// # Components
//
//   - [Sessions]: issues, clears, and resolves signed session cookies
//   - [HashPassword], [ComparePassword]: bcrypt password hashing utilities
//   - [NewSecretKey]: random key generation for initial configuration
package sec

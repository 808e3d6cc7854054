// Package auth provides user accounts, password hashing and JWT access
// tokens.
//
// Passwords are hashed with Argon2id in PHC string format. Access
// tokens are HS256 JWTs carrying the user's role, validated by
// signature only. Two roles exist: admin manages users, operator
// manages devices.
package auth

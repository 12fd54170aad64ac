// Package auth provides operator accounts for AppLight Core.
//
// It covers identity storage and credential plumbing only:
//   - Argon2id password hashing (PHC string format)
//   - JWT access tokens issued on login (HS256, uuid token/session IDs)
//   - A seeded admin account on first boot
//
// Nothing here enforces authorization: the role field is stored and
// carried in tokens, but every route accepts unauthenticated requests.
package auth

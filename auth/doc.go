// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth resolves who is calling and generates identifiers.

# Requester Identity

Every core operation takes an explicit Requester instead of reading an
ambient session. The zero value is the anonymous requester:

	r := auth.FromContext(ctx)
	if !r.Authenticated() { ... }

# Bearer Tokens

Sessions are issued by the external auth provider as HS256 JWTs whose
subject is the user id:

	token, err := auth.GenerateToken(userID, secret, time.Now())
	requester, err := auth.ValidateToken(token, secret)

# ID Generation

Random UUIDs for database records:

	id := auth.NewID()

# IP Hashing

Demo votes keep only a salted hash of the client address:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package apperr is the error taxonomy shared by the service and HTTP layers.

Every failure surfaced to a client is an *Error with one of six codes:

	NOT_FOUND     404  poll or option missing
	UNAUTHORIZED  401  no session
	FORBIDDEN     403  authenticated but not owner/voter
	VALIDATION    400  malformed or out-of-range input, first error wins
	CONFLICT      409  duplicate vote, unique-constraint violation
	INTERNAL      500  unexpected store failure

Errors that are not *Error are treated as INTERNAL and their text is never
sent to the client.
*/
package apperr

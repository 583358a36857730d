package access

import "github.com/google/uuid"

// Requester is the identity a request acts under: either a verified user
// or the anonymous principal. It is constructed per request and never
// stored.
type Requester struct {
	userID        uuid.UUID
	authenticated bool
}

func Anonymous() Requester {
	return Requester{}
}

func AuthenticatedUser(userID uuid.UUID) Requester {
	return Requester{userID: userID, authenticated: true}
}

func (r Requester) IsAnonymous() bool {
	return !r.authenticated
}

// UserID returns the verified user id; ok is false for the anonymous
// principal.
func (r Requester) UserID() (uuid.UUID, bool) {
	return r.userID, r.authenticated
}

// Is reports whether the requester is the given user. Always false for
// anonymous requesters: ownership requires an authenticated identity
// match.
func (r Requester) Is(userID uuid.UUID) bool {
	return r.authenticated && r.userID == userID
}

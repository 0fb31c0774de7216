package session

// Session is the caller identity resolved for a single request.
// It is passed explicitly to every collaborator that acts on the caller's behalf.
type Session struct {
	UserID string
	Token  string
}

package relationship

// Record is the per-user relationship document. The three fields are sets
// of uids; a uid never appears in its own record.
type Record struct {
	UID      string   `json:"uid"`
	Friends  []string `json:"friends"`
	Pending  []string `json:"pending"`  // incoming requests
	Outgoing []string `json:"outgoing"` // requests sent
}

// Field names of the relationship document.
const (
	FieldFriends  = "friends"
	FieldPending  = "pending"
	FieldOutgoing = "outgoing"
)

type ConnectionRequestPayload struct {
	TargetUserID string `json:"targetUserId"`
}

// ConnectionEntry is one hydrated entry of an incoming/outgoing request
// list or of the connections list.
type ConnectionEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

package errors

var (
	// Domain errors — surfaced by the connection/group/chat services
	ErrNotAuthenticated   = Unauthorized("caller identity missing")
	ErrSelfTarget         = InvalidArg("cannot target your own account")
	ErrMissingTarget      = InvalidArg("target user id is required")
	ErrAlreadyConnected   = AlreadyExists("users are already connected")
	ErrNoPendingRequest   = NotFound("no pending connection request from this user")
	ErrGroupNotFound      = NotFound("group not found")
	ErrChannelNotFound    = NotFound("chat channel not found")
	ErrUserNotFound       = NotFound("user not found")
	ErrNotGroupOwner      = Forbidden("only the group owner may delete the group")
	ErrNotGroupAdmin      = Forbidden("only a group admin may manage participants")
	ErrInvalidGroupName   = InvalidArg("group name cannot be empty")
	ErrInvalidParticipant = InvalidArg("participant id is required")
	ErrInvalidAction      = InvalidArg(`action must be "add" or "remove"`)
)

func ErrStoreFailure(cause error) error {
	return Wrap(CodeInternal, "document store operation failed", cause)
}

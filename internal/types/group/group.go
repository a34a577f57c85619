package group

import "time"

// Group is the group registry document. Invariant: OwnerID is always a
// member and an admin, and AdminIDs is a subset of Members.
type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"ownerId"`
	AdminIDs  []string  `json:"adminIds"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
}

// Field names of the group document.
const (
	FieldName      = "name"
	FieldOwnerID   = "ownerId"
	FieldAdminIDs  = "adminIds"
	FieldMembers   = "members"
	FieldCreatedAt = "createdAt"
)

// Member is a membership entry hydrated with profile data.
type Member struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

const (
	ActionAdd    = "add"
	ActionRemove = "remove"
)

type CreateGroupRequest struct {
	GroupName      string   `json:"groupName"`
	InitialMembers []string `json:"initialMembers"`
}

type ManageParticipantsRequest struct {
	ChatID        string `json:"chatId"`
	ParticipantID string `json:"participantId"`
	Action        string `json:"action"`
}

type AddUserRequest struct {
	UserID string `json:"userId"`
}

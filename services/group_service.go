package services

import (
	"context"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/google/uuid"

	"mentorLinkAPI/internal/store"
	"mentorLinkAPI/internal/types/chat"
	"mentorLinkAPI/internal/types/group"
	"mentorLinkAPI/internal/types/user"
	apperrors "mentorLinkAPI/pkg/errors"
	"mentorLinkAPI/utils"
)

// GroupService owns the group registry. Membership, admin state, the
// member profiles' group references and the backing chat channel are kept
// in sync; per-operation writes commit as one atomic batch, except the
// delete cascade, which is chunked (see Delete).
type GroupService struct {
	store store.Store
	users *UserService
	chats *ChatService
}

func NewGroupService(store store.Store, users *UserService, chats *ChatService) *GroupService {
	return &GroupService{store: store, users: users, chats: chats}
}

// Create registers a new group owned by ownerUID. The owner is always a
// member and the sole initial admin. Member profile references are written
// through the chunked batch writer so arbitrarily large initial rosters
// stay under the store's mutation ceiling.
func (s *GroupService) Create(ctx context.Context, ownerUID string, req *group.CreateGroupRequest) (*group.Group, error) {
	if ownerUID == "" {
		return nil, apperrors.ErrNotAuthenticated
	}
	if req.GroupName == "" {
		return nil, apperrors.ErrInvalidGroupName
	}

	members := utils.Dedupe(append([]string{ownerUID}, req.InitialMembers...))
	groupID := uuid.NewString()
	createdAt := time.Now()

	writes := make([]store.Write, 0, len(members)+1)
	writes = append(writes, store.Write{
		Collection: store.GroupsCollection,
		ID:         groupID,
		Set: map[string]any{
			group.FieldName:      req.GroupName,
			group.FieldOwnerID:   ownerUID,
			group.FieldAdminIDs:  []string{ownerUID},
			group.FieldMembers:   members,
			group.FieldCreatedAt: createdAt,
		},
	})
	for _, uid := range members {
		writes = append(writes, store.Write{
			Collection: store.UsersCollection,
			ID:         uid,
			Union:      map[string][]string{user.FieldGroups: {groupID}},
		})
	}

	if err := store.ApplyChunked(ctx, s.store, writes, store.ChunkSize); err != nil {
		log.Printf("CreateGroupChat: failed to create group %q for %s: %v", req.GroupName, ownerUID, err)
		return nil, apperrors.ErrStoreFailure(err)
	}

	if err := s.chats.InitializeGroupChannel(ctx, groupID, req.GroupName, members); err != nil {
		log.Printf("CreateGroupChat: group %s created but channel init failed: %v", groupID, err)
		return nil, err
	}

	log.Printf("CreateGroupChat: %s created group %s with %d members", ownerUID, groupID, len(members))
	return &group.Group{
		ID:        groupID,
		Name:      req.GroupName,
		OwnerID:   ownerUID,
		AdminIDs:  []string{ownerUID},
		Members:   members,
		CreatedAt: createdAt,
	}, nil
}

// Delete removes the group record, then strips the group reference from
// every former member's profile in sequential atomic chunks. Only the
// owner may delete; unauthorized callers cause no writes at all. A failure
// partway through the cascade leaves earlier chunks committed — there is
// no compensating job, the error is surfaced with the failing chunk.
func (s *GroupService) Delete(ctx context.Context, groupID, callerUID string) error {
	if callerUID == "" {
		return apperrors.ErrNotAuthenticated
	}

	g, err := s.load(ctx, groupID)
	if err != nil {
		return err
	}
	if g.OwnerID != callerUID {
		log.Printf("DeleteGroupChat: %s is not the owner of %s, rejecting", callerUID, groupID)
		return apperrors.ErrNotGroupOwner
	}

	err = s.store.Apply(ctx, store.Write{
		Collection: store.GroupsCollection,
		ID:         groupID,
		Delete:     true,
	})
	if err != nil {
		log.Printf("DeleteGroupChat: failed to delete group record %s: %v", groupID, err)
		return apperrors.ErrStoreFailure(err)
	}

	cleanup := make([]store.Write, 0, len(g.Members))
	for _, uid := range g.Members {
		cleanup = append(cleanup, store.Write{
			Collection: store.UsersCollection,
			ID:         uid,
			Remove:     map[string][]string{user.FieldGroups: {groupID}},
		})
	}

	if err := store.ApplyChunked(ctx, s.store, cleanup, store.ChunkSize); err != nil {
		log.Printf("DeleteGroupChat: member cleanup for %s incomplete: %v", groupID, err)
		return apperrors.Wrap(apperrors.CodeInternal, "group deleted but member cleanup incomplete", err)
	}

	log.Printf("DeleteGroupChat: %s deleted group %s (%d members cleaned up)", callerUID, groupID, len(g.Members))
	return nil
}

// AddParticipant adds userID to the group and returns the hydrated member
// list. Membership, the user's profile reference and the channel
// participants update in a single atomic write.
func (s *GroupService) AddParticipant(ctx context.Context, groupID, userID string) ([]group.Member, error) {
	if userID == "" {
		return nil, apperrors.ErrInvalidParticipant
	}

	g, err := s.load(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Apply(ctx, s.addWrites(groupID, userID)...); err != nil {
		log.Printf("AddUserToGroup: failed to add %s to %s: %v", userID, groupID, err)
		return nil, apperrors.ErrStoreFailure(err)
	}

	members := g.Members
	if !slices.Contains(members, userID) {
		members = append(members, userID)
	}

	log.Printf("AddUserToGroup: added %s to %s", userID, groupID)
	return s.users.HydrateMembers(ctx, members)
}

// ManageParticipants adds or removes a participant on behalf of an admin.
// Removing a participant also evicts them from adminIds; admin state and
// membership change in the same atomic write. The owner cannot be removed,
// which keeps the owner-is-member invariant intact.
func (s *GroupService) ManageParticipants(ctx context.Context, groupID, participantID, action, callerUID string) (string, error) {
	if callerUID == "" {
		return "", apperrors.ErrNotAuthenticated
	}
	if participantID == "" {
		return "", apperrors.ErrInvalidParticipant
	}
	if action != group.ActionAdd && action != group.ActionRemove {
		return "", apperrors.ErrInvalidAction
	}

	g, err := s.load(ctx, groupID)
	if err != nil {
		return "", err
	}
	if !slices.Contains(g.AdminIDs, callerUID) {
		log.Printf("ManageGroupParticipants: %s is not an admin of %s, rejecting", callerUID, groupID)
		return "", apperrors.ErrNotGroupAdmin
	}

	if action == group.ActionAdd {
		if err := s.store.Apply(ctx, s.addWrites(groupID, participantID)...); err != nil {
			log.Printf("ManageGroupParticipants: failed to add %s to %s: %v", participantID, groupID, err)
			return "", apperrors.ErrStoreFailure(err)
		}
		log.Printf("ManageGroupParticipants: %s added %s to %s", callerUID, participantID, groupID)
		return fmt.Sprintf("Participant %s added", participantID), nil
	}

	if participantID == g.OwnerID {
		return "", apperrors.Forbidden("the group owner cannot be removed")
	}

	err = s.store.Apply(ctx,
		store.Write{
			Collection: store.GroupsCollection,
			ID:         groupID,
			Remove: map[string][]string{
				group.FieldMembers:  {participantID},
				group.FieldAdminIDs: {participantID},
			},
		},
		store.Write{
			Collection: store.UsersCollection,
			ID:         participantID,
			Remove:     map[string][]string{user.FieldGroups: {groupID}},
		},
		store.Write{
			Collection: store.ChatsCollection,
			ID:         groupID,
			Remove:     map[string][]string{chat.FieldParticipants: {participantID}},
		},
	)
	if err != nil {
		log.Printf("ManageGroupParticipants: failed to remove %s from %s: %v", participantID, groupID, err)
		return "", apperrors.ErrStoreFailure(err)
	}

	log.Printf("ManageGroupParticipants: %s removed %s from %s", callerUID, participantID, groupID)
	return fmt.Sprintf("Participant %s removed", participantID), nil
}

// Get loads a group by id.
func (s *GroupService) Get(ctx context.Context, groupID string) (*group.Group, error) {
	return s.load(ctx, groupID)
}

func (s *GroupService) addWrites(groupID, userID string) []store.Write {
	return []store.Write{
		{
			Collection: store.GroupsCollection,
			ID:         groupID,
			Union:      map[string][]string{group.FieldMembers: {userID}},
		},
		{
			Collection: store.UsersCollection,
			ID:         userID,
			Union:      map[string][]string{user.FieldGroups: {groupID}},
		},
		{
			Collection: store.ChatsCollection,
			ID:         groupID,
			Union:      map[string][]string{chat.FieldParticipants: {userID}},
		},
	}
}

func (s *GroupService) load(ctx context.Context, groupID string) (*group.Group, error) {
	if groupID == "" {
		return nil, apperrors.InvalidArg("group id is required")
	}

	doc, err := s.store.Get(ctx, store.GroupsCollection, groupID)
	if err != nil {
		log.Printf("GroupService: failed to load group %s: %v", groupID, err)
		return nil, apperrors.ErrStoreFailure(err)
	}
	if doc == nil {
		return nil, apperrors.ErrGroupNotFound
	}

	return &group.Group{
		ID:        doc.ID,
		Name:      store.Str(doc.Data, group.FieldName),
		OwnerID:   store.Str(doc.Data, group.FieldOwnerID),
		AdminIDs:  store.Strings(doc.Data, group.FieldAdminIDs),
		Members:   store.Strings(doc.Data, group.FieldMembers),
		CreatedAt: store.Time(doc.Data, group.FieldCreatedAt),
	}, nil
}


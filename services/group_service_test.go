package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mentorLinkAPI/internal/store"
	"mentorLinkAPI/internal/types/chat"
	"mentorLinkAPI/internal/types/group"
	"mentorLinkAPI/internal/types/user"
	apperrors "mentorLinkAPI/pkg/errors"
)

func newGroupFixture() (*store.MemoryStore, *GroupService) {
	ms := store.NewMemoryStore()
	users := NewUserService(ms)
	chats := NewChatService(ms)
	return ms, NewGroupService(ms, users, chats)
}

func profileGroups(t *testing.T, ms *store.MemoryStore, uid string) []string {
	t.Helper()
	doc, err := ms.Get(context.Background(), store.UsersCollection, uid)
	require.NoError(t, err)
	if doc == nil {
		return nil
	}
	return store.Strings(doc.Data, user.FieldGroups)
}

func TestCreateDeduplicatesMembersAndSetsOwner(t *testing.T) {
	ms, svc := newGroupFixture()
	ctx := context.Background()

	g, err := svc.Create(ctx, "alice", &group.CreateGroupRequest{
		GroupName:      "StudyGroup",
		InitialMembers: []string{"bob", "carol", "alice", "bob"},
	})
	require.NoError(t, err)

	assert.Equal(t, "StudyGroup", g.Name)
	assert.Equal(t, "alice", g.OwnerID)
	assert.Equal(t, []string{"alice"}, g.AdminIDs)
	assert.ElementsMatch(t, []string{"alice", "bob", "carol"}, g.Members)

	for _, uid := range []string{"alice", "bob", "carol"} {
		assert.Contains(t, profileGroups(t, ms, uid), g.ID)
	}

	// The backing channel is created alongside, keyed by the group id.
	channel, err := ms.Get(ctx, store.ChatsCollection, g.ID)
	require.NoError(t, err)
	require.NotNil(t, channel)
	assert.Equal(t, string(chat.TypeGroup), store.Str(channel.Data, chat.FieldType))
	assert.ElementsMatch(t, g.Members, store.Strings(channel.Data, chat.FieldParticipants))
}

func TestCreateRequiresName(t *testing.T) {
	_, svc := newGroupFixture()

	_, err := svc.Create(context.Background(), "alice", &group.CreateGroupRequest{})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestDeleteRejectsNonOwnerWithoutWrites(t *testing.T) {
	ms, svc := newGroupFixture()
	ctx := context.Background()

	g, err := svc.Create(ctx, "alice", &group.CreateGroupRequest{
		GroupName:      "StudyGroup",
		InitialMembers: []string{"bob"},
	})
	require.NoError(t, err)

	err = svc.Delete(ctx, g.ID, "bob")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))

	// Nothing was touched: the record and every member reference survive.
	doc, err := ms.Get(ctx, store.GroupsCollection, g.ID)
	require.NoError(t, err)
	require.NotNil(t, doc)
	assert.Contains(t, profileGroups(t, ms, "bob"), g.ID)
}

func TestDeleteCascadesAcrossChunkBoundary(t *testing.T) {
	ms, svc := newGroupFixture()
	ctx := context.Background()

	members := make([]string, 0, 450)
	for i := 0; i < 450; i++ {
		members = append(members, fmt.Sprintf("member-%04d", i))
	}

	g, err := svc.Create(ctx, "alice", &group.CreateGroupRequest{
		GroupName:      "Cohort",
		InitialMembers: members,
	})
	require.NoError(t, err)
	require.Len(t, g.Members, 451)

	require.NoError(t, svc.Delete(ctx, g.ID, "alice"))

	doc, err := ms.Get(ctx, store.GroupsCollection, g.ID)
	require.NoError(t, err)
	assert.Nil(t, doc)

	for _, uid := range g.Members {
		assert.NotContains(t, profileGroups(t, ms, uid), g.ID)
	}
}

func TestDeleteMissingGroup(t *testing.T) {
	_, svc := newGroupFixture()

	err := svc.Delete(context.Background(), "ghost", "alice")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeNotFound, apperrors.CodeOf(err))
}

func TestManageParticipantsRequiresAdmin(t *testing.T) {
	_, svc := newGroupFixture()
	ctx := context.Background()

	g, err := svc.Create(ctx, "alice", &group.CreateGroupRequest{
		GroupName:      "StudyGroup",
		InitialMembers: []string{"bob", "carol"},
	})
	require.NoError(t, err)

	// carol is a member but not an admin
	_, err = svc.ManageParticipants(ctx, g.ID, "bob", group.ActionRemove, "carol")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))
}

func TestManageRemoveEvictsAdminState(t *testing.T) {
	ms, svc := newGroupFixture()
	ctx := context.Background()

	g, err := svc.Create(ctx, "alice", &group.CreateGroupRequest{
		GroupName:      "StudyGroup",
		InitialMembers: []string{"bob"},
	})
	require.NoError(t, err)

	// promote bob, then remove him
	require.NoError(t, ms.Apply(ctx, store.Write{
		Collection: store.GroupsCollection,
		ID:         g.ID,
		Union:      map[string][]string{group.FieldAdminIDs: {"bob"}},
	}))

	_, err = svc.ManageParticipants(ctx, g.ID, "bob", group.ActionRemove, "alice")
	require.NoError(t, err)

	doc, err := ms.Get(ctx, store.GroupsCollection, g.ID)
	require.NoError(t, err)
	assert.NotContains(t, store.Strings(doc.Data, group.FieldMembers), "bob")
	assert.NotContains(t, store.Strings(doc.Data, group.FieldAdminIDs), "bob")
	assert.NotContains(t, profileGroups(t, ms, "bob"), g.ID)

	channel, err := ms.Get(ctx, store.ChatsCollection, g.ID)
	require.NoError(t, err)
	assert.NotContains(t, store.Strings(channel.Data, chat.FieldParticipants), "bob")
}

func TestManageCannotRemoveOwner(t *testing.T) {
	_, svc := newGroupFixture()
	ctx := context.Background()

	g, err := svc.Create(ctx, "alice", &group.CreateGroupRequest{
		GroupName:      "StudyGroup",
		InitialMembers: []string{"bob"},
	})
	require.NoError(t, err)

	_, err = svc.ManageParticipants(ctx, g.ID, "alice", group.ActionRemove, "alice")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodePermissionDenied, apperrors.CodeOf(err))
}

func TestManageRejectsUnknownAction(t *testing.T) {
	_, svc := newGroupFixture()
	ctx := context.Background()

	g, err := svc.Create(ctx, "alice", &group.CreateGroupRequest{GroupName: "StudyGroup"})
	require.NoError(t, err)

	_, err = svc.ManageParticipants(ctx, g.ID, "bob", "ban", "alice")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidArgument, apperrors.CodeOf(err))
}

func TestAddParticipantReturnsHydratedMembers(t *testing.T) {
	ms, svc := newGroupFixture()
	ctx := context.Background()

	seedProfile(t, ms, "alice", "Alice", "")
	seedProfile(t, ms, "dave", "Dave", "https://cdn.example.com/dave.png")

	g, err := svc.Create(ctx, "alice", &group.CreateGroupRequest{GroupName: "StudyGroup"})
	require.NoError(t, err)

	members, err := svc.AddParticipant(ctx, g.ID, "dave")
	require.NoError(t, err)
	require.Len(t, members, 2)

	byID := map[string]group.Member{}
	for _, m := range members {
		byID[m.ID] = m
	}
	assert.Equal(t, "Dave", byID["dave"].Name)
	assert.Equal(t, "https://cdn.example.com/dave.png", byID["dave"].AvatarURL)

	assert.Contains(t, profileGroups(t, ms, "dave"), g.ID)

	channel, err := ms.Get(ctx, store.ChatsCollection, g.ID)
	require.NoError(t, err)
	assert.Contains(t, store.Strings(channel.Data, chat.FieldParticipants), "dave")
}

func TestAddParticipantIsIdempotent(t *testing.T) {
	_, svc := newGroupFixture()
	ctx := context.Background()

	g, err := svc.Create(ctx, "alice", &group.CreateGroupRequest{GroupName: "StudyGroup"})
	require.NoError(t, err)

	_, err = svc.AddParticipant(ctx, g.ID, "dave")
	require.NoError(t, err)
	members, err := svc.AddParticipant(ctx, g.ID, "dave")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

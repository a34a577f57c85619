package services

import (
	"context"
	"log"
	"slices"

	"mentorLinkAPI/internal/store"
	"mentorLinkAPI/internal/types/relationship"
	apperrors "mentorLinkAPI/pkg/errors"
)

// ConnectionService owns the directed-then-mutualized request state machine
// over the relationship collection. Every transition commits as one atomic
// write covering both records; there is no cross-call serialization, so two
// calls racing on the same pair resolve through the set semantics of the
// underlying writes.
type ConnectionService struct {
	store store.Store
	users *UserService
}

func NewConnectionService(store store.Store, users *UserService) *ConnectionService {
	return &ConnectionService{store: store, users: users}
}

// Send records callerUID's request towards targetUID: caller gains an
// outgoing edge, target gains a pending edge. Re-sending while the request
// is pending is an idempotent no-op. If the target has already sent the
// inverse request, the two edges are merged straight into a mutual
// friendship instead of leaving two crossed pending entries.
func (s *ConnectionService) Send(ctx context.Context, callerUID, targetUID string) error {
	if err := validatePair(callerUID, targetUID); err != nil {
		return err
	}

	rec, err := s.load(ctx, callerUID)
	if err != nil {
		return err
	}

	if slices.Contains(rec.Friends, targetUID) {
		return apperrors.ErrAlreadyConnected
	}

	if slices.Contains(rec.Pending, targetUID) {
		// Crossed requests: the target already asked us. Complete the
		// friendship in one atomic write rather than stacking a second
		// pending edge.
		log.Printf("SendConnectionRequest: crossed request between %s and %s, merging into friendship", callerUID, targetUID)
		return s.mutualize(ctx, callerUID, targetUID)
	}

	err = s.store.Apply(ctx,
		store.Write{
			Collection: store.RelationshipsCollection,
			ID:         callerUID,
			Union:      map[string][]string{relationship.FieldOutgoing: {targetUID}},
		},
		store.Write{
			Collection: store.RelationshipsCollection,
			ID:         targetUID,
			Union:      map[string][]string{relationship.FieldPending: {callerUID}},
		},
	)
	if err != nil {
		log.Printf("SendConnectionRequest: write failed for %s -> %s: %v", callerUID, targetUID, err)
		return apperrors.ErrStoreFailure(err)
	}

	log.Printf("SendConnectionRequest: %s -> %s recorded", callerUID, targetUID)
	return nil
}

// Accept turns requesterUID's pending request into a mutual friendship.
// Accepting an already-accepted request is an idempotent no-op; accepting
// when no pending entry exists is rejected, since it would manufacture a
// friendship from nothing.
func (s *ConnectionService) Accept(ctx context.Context, callerUID, requesterUID string) error {
	if err := validatePair(callerUID, requesterUID); err != nil {
		return err
	}

	rec, err := s.load(ctx, callerUID)
	if err != nil {
		return err
	}

	if slices.Contains(rec.Friends, requesterUID) {
		return nil
	}
	if !slices.Contains(rec.Pending, requesterUID) {
		return apperrors.ErrNoPendingRequest
	}

	if err := s.mutualize(ctx, callerUID, requesterUID); err != nil {
		return err
	}

	log.Printf("AcceptConnectionRequest: %s accepted %s", callerUID, requesterUID)
	return nil
}

// Decline drops requesterUID's pending request without creating any
// friendship edge. The requester's outgoing edge is removed in the same
// write, so a dismissed request never lingers in their outgoing list.
// Declining a request that does not exist is a no-op: the transition is
// pure set-difference on both records.
func (s *ConnectionService) Decline(ctx context.Context, callerUID, requesterUID string) error {
	if err := validatePair(callerUID, requesterUID); err != nil {
		return err
	}

	err := s.store.Apply(ctx,
		store.Write{
			Collection: store.RelationshipsCollection,
			ID:         callerUID,
			Remove:     map[string][]string{relationship.FieldPending: {requesterUID}},
		},
		store.Write{
			Collection: store.RelationshipsCollection,
			ID:         requesterUID,
			Remove:     map[string][]string{relationship.FieldOutgoing: {callerUID}},
		},
	)
	if err != nil {
		log.Printf("DeclineConnectionRequest: write failed for %s declining %s: %v", callerUID, requesterUID, err)
		return apperrors.ErrStoreFailure(err)
	}

	log.Printf("DeclineConnectionRequest: %s declined %s", callerUID, requesterUID)
	return nil
}

// Incoming returns the hydrated senders of the caller's pending requests.
func (s *ConnectionService) Incoming(ctx context.Context, callerUID string) ([]relationship.ConnectionEntry, error) {
	rec, err := s.load(ctx, callerUID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, rec.Pending)
}

// Outgoing returns the hydrated targets of the caller's sent requests.
func (s *ConnectionService) Outgoing(ctx context.Context, callerUID string) ([]relationship.ConnectionEntry, error) {
	rec, err := s.load(ctx, callerUID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, rec.Outgoing)
}

// Connections returns the caller's hydrated friends list.
func (s *ConnectionService) Connections(ctx context.Context, callerUID string) ([]relationship.ConnectionEntry, error) {
	rec, err := s.load(ctx, callerUID)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, rec.Friends)
}

// mutualize removes the directed request edges between a and b and adds
// each to the other's friends set, all in one atomic write.
func (s *ConnectionService) mutualize(ctx context.Context, a, b string) error {
	err := s.store.Apply(ctx,
		store.Write{
			Collection: store.RelationshipsCollection,
			ID:         a,
			Union:      map[string][]string{relationship.FieldFriends: {b}},
			Remove: map[string][]string{
				relationship.FieldPending:  {b},
				relationship.FieldOutgoing: {b},
			},
		},
		store.Write{
			Collection: store.RelationshipsCollection,
			ID:         b,
			Union:      map[string][]string{relationship.FieldFriends: {a}},
			Remove: map[string][]string{
				relationship.FieldPending:  {a},
				relationship.FieldOutgoing: {a},
			},
		},
	)
	if err != nil {
		log.Printf("ConnectionService: failed to mutualize %s and %s: %v", a, b, err)
		return apperrors.ErrStoreFailure(err)
	}
	return nil
}

// load reads a relationship record, treating an absent document as empty:
// records are created lazily by the first merge write that touches them.
func (s *ConnectionService) load(ctx context.Context, uid string) (*relationship.Record, error) {
	doc, err := s.store.Get(ctx, store.RelationshipsCollection, uid)
	if err != nil {
		log.Printf("ConnectionService: failed to load record %s: %v", uid, err)
		return nil, apperrors.ErrStoreFailure(err)
	}

	rec := &relationship.Record{UID: uid}
	if doc != nil {
		rec.Friends = store.Strings(doc.Data, relationship.FieldFriends)
		rec.Pending = store.Strings(doc.Data, relationship.FieldPending)
		rec.Outgoing = store.Strings(doc.Data, relationship.FieldOutgoing)
	}
	return rec, nil
}

func (s *ConnectionService) hydrate(ctx context.Context, uids []string) ([]relationship.ConnectionEntry, error) {
	members, err := s.users.HydrateMembers(ctx, uids)
	if err != nil {
		return nil, err
	}

	entries := make([]relationship.ConnectionEntry, len(members))
	for i, m := range members {
		entries[i] = relationship.ConnectionEntry{ID: m.ID, Name: m.Name, AvatarURL: m.AvatarURL}
	}
	return entries, nil
}

func validatePair(callerUID, targetUID string) error {
	if callerUID == "" {
		return apperrors.ErrNotAuthenticated
	}
	if targetUID == "" {
		return apperrors.ErrMissingTarget
	}
	if callerUID == targetUID {
		return apperrors.ErrSelfTarget
	}
	return nil
}

package services

import (
	"context"
	"log"

	"mentorLinkAPI/internal/store"
	"mentorLinkAPI/internal/types/group"
	"mentorLinkAPI/internal/types/user"
	apperrors "mentorLinkAPI/pkg/errors"
)

// hydratePageSize bounds each profile lookup page when resolving id lists
// to display data.
const hydratePageSize = 10

type UserService struct {
	store store.Store
}

func NewUserService(store store.Store) *UserService {
	return &UserService{store: store}
}

func (s *UserService) GetProfile(ctx context.Context, uid string) (*user.Profile, error) {
	doc, err := s.store.Get(ctx, store.UsersCollection, uid)
	if err != nil {
		log.Printf("GetProfile: failed to load profile %s: %v", uid, err)
		return nil, apperrors.ErrStoreFailure(err)
	}
	if doc == nil {
		return nil, apperrors.ErrUserNotFound
	}
	return profileFromDoc(doc), nil
}

func (s *UserService) UpdateProfile(ctx context.Context, uid string, req *user.UpdateProfileRequest) (*user.Profile, error) {
	fields := map[string]any{}
	if req.DisplayName != nil {
		fields[user.FieldDisplayName] = *req.DisplayName
	}
	if req.AvatarURL != nil {
		fields[user.FieldAvatarURL] = *req.AvatarURL
	}
	if len(fields) == 0 {
		return nil, apperrors.InvalidArg("no profile fields to update")
	}

	err := s.store.Apply(ctx, store.Write{
		Collection: store.UsersCollection,
		ID:         uid,
		Set:        fields,
	})
	if err != nil {
		log.Printf("UpdateProfile: failed to update profile %s: %v", uid, err)
		return nil, apperrors.ErrStoreFailure(err)
	}

	return s.GetProfile(ctx, uid)
}

// RegisterDevice stores the caller's current push token. A profile holds a
// single token; re-registering replaces it.
func (s *UserService) RegisterDevice(ctx context.Context, uid string, req *user.RegisterDeviceRequest) error {
	if req.Token == "" {
		return apperrors.InvalidArg("device token is required")
	}

	err := s.store.Apply(ctx, store.Write{
		Collection: store.UsersCollection,
		ID:         uid,
		Set: map[string]any{
			user.FieldFCMToken: req.Token,
			user.FieldPlatform: req.Platform,
		},
	})
	if err != nil {
		log.Printf("RegisterDevice: failed to store token for %s: %v", uid, err)
		return apperrors.ErrStoreFailure(err)
	}

	log.Printf("RegisterDevice: registered device for %s (platform=%s)", uid, req.Platform)
	return nil
}

// DisplayName resolves a uid to its display name, falling back to a
// generic literal when the profile is absent or unnamed.
func (s *UserService) DisplayName(ctx context.Context, uid string) string {
	doc, err := s.store.Get(ctx, store.UsersCollection, uid)
	if err != nil {
		log.Printf("DisplayName: failed to load profile %s: %v", uid, err)
		return user.FallbackDisplayName
	}
	if doc == nil {
		return user.FallbackDisplayName
	}
	if name := store.Str(doc.Data, user.FieldDisplayName); name != "" {
		return name
	}
	return user.FallbackDisplayName
}

// DeviceToken resolves a uid to its registered push token; "" means the
// user has no deliverable device.
func (s *UserService) DeviceToken(ctx context.Context, uid string) (string, error) {
	doc, err := s.store.Get(ctx, store.UsersCollection, uid)
	if err != nil {
		return "", apperrors.ErrStoreFailure(err)
	}
	if doc == nil {
		return "", nil
	}
	return store.Str(doc.Data, user.FieldFCMToken), nil
}

// HydrateMembers resolves a list of uids to membership entries with
// name/avatar, reading profiles in fixed-size pages. Unknown uids are kept
// with empty display data so membership stays visible.
func (s *UserService) HydrateMembers(ctx context.Context, uids []string) ([]group.Member, error) {
	members := make([]group.Member, 0, len(uids))

	for start := 0; start < len(uids); start += hydratePageSize {
		end := start + hydratePageSize
		if end > len(uids) {
			end = len(uids)
		}
		page := uids[start:end]

		docs, err := s.store.GetAll(ctx, store.UsersCollection, page)
		if err != nil {
			log.Printf("HydrateMembers: page lookup failed: %v", err)
			return nil, apperrors.ErrStoreFailure(err)
		}

		byID := make(map[string]*store.Doc, len(docs))
		for _, doc := range docs {
			byID[doc.ID] = doc
		}

		for _, uid := range page {
			member := group.Member{ID: uid}
			if doc, ok := byID[uid]; ok {
				member.Name = store.Str(doc.Data, user.FieldDisplayName)
				member.AvatarURL = store.Str(doc.Data, user.FieldAvatarURL)
			}
			members = append(members, member)
		}
	}

	return members, nil
}

func profileFromDoc(doc *store.Doc) *user.Profile {
	return &user.Profile{
		UID:         doc.ID,
		DisplayName: store.Str(doc.Data, user.FieldDisplayName),
		AvatarURL:   store.Str(doc.Data, user.FieldAvatarURL),
		FCMToken:    store.Str(doc.Data, user.FieldFCMToken),
		Platform:    store.Str(doc.Data, user.FieldPlatform),
		Groups:      store.Strings(doc.Data, user.FieldGroups),
	}
}

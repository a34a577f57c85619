package user

// Profile is the user profile document. Groups carries the group-id
// references that the group lifecycle cascade keeps in sync, and FCMToken
// is the single registered push token (cleared on dead-token failures).
type Profile struct {
	UID         string   `json:"uid"`
	DisplayName string   `json:"displayName"`
	AvatarURL   string   `json:"avatarUrl"`
	FCMToken    string   `json:"-"`
	Platform    string   `json:"-"`
	Groups      []string `json:"groups"`
}

// Field names of the profile document.
const (
	FieldDisplayName = "displayName"
	FieldAvatarURL   = "avatarUrl"
	FieldFCMToken    = "fcmToken"
	FieldPlatform    = "platform"
	FieldGroups      = "groups"
)

// FallbackDisplayName is used when a sender profile has no display name.
const FallbackDisplayName = "Someone"

type UpdateProfileRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

type RegisterDeviceRequest struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}

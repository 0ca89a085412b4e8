package models

// Status represents a user's play-progress state for a library entry.
// The set is closed: any value outside it is rejected at the edge.
type Status string

const (
	StatusWantToPlay     Status = "WANT_TO_PLAY"
	StatusOwned          Status = "OWNED"
	StatusPlaying        Status = "PLAYING"
	StatusPaused         Status = "PAUSED"
	StatusCompleted      Status = "COMPLETED"
	StatusFullCompletion Status = "FULL_COMPLETION"
	StatusAbandoned      Status = "ABANDONED"
	StatusWishlist       Status = "WISHLIST"
	StatusRevisiting     Status = "REVISITING"
)

var allStatuses = []Status{
	StatusWantToPlay,
	StatusOwned,
	StatusPlaying,
	StatusPaused,
	StatusCompleted,
	StatusFullCompletion,
	StatusAbandoned,
	StatusWishlist,
	StatusRevisiting,
}

// Valid reports whether s is a member of the closed status set.
func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// ParseStatus converts a raw status string into a Status.
// Unknown values are rejected, never coerced.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", &ValidationError{Field: "status", Message: "unknown status " + raw}
	}
	return s, nil
}

// Platform is a categorical platform tag.
type Platform string

const (
	PlatformPC          Platform = "pc"
	PlatformPlayStation Platform = "playstation"
	PlatformXbox        Platform = "xbox"
	PlatformNintendo    Platform = "nintendo"
	PlatformOther       Platform = "other"
)

// Valid reports whether p is a member of the closed platform set.
func (p Platform) Valid() bool {
	switch p {
	case PlatformPC, PlatformPlayStation, PlatformXbox, PlatformNintendo, PlatformOther:
		return true
	}
	return false
}

// ParsePlatform converts a raw platform tag into a Platform. This is a
// strict parse for stored values; free-text platform strings go through
// reconcile.ClassifyPlatform instead.
func ParsePlatform(raw string) (Platform, error) {
	p := Platform(raw)
	if !p.Valid() {
		return "", &ValidationError{Field: "platform", Message: "unknown platform " + raw}
	}
	return p, nil
}

// AcquisitionType describes how the user acquired a game.
type AcquisitionType string

const (
	AcquisitionDigital      AcquisitionType = "DIGITAL"
	AcquisitionPhysical     AcquisitionType = "PHYSICAL"
	AcquisitionSubscription AcquisitionType = "SUBSCRIPTION"
)

// Valid reports whether a is a member of the closed acquisition set.
func (a AcquisitionType) Valid() bool {
	switch a {
	case AcquisitionDigital, AcquisitionPhysical, AcquisitionSubscription:
		return true
	}
	return false
}

// ParseAcquisitionType converts a raw acquisition string into an AcquisitionType.
func ParseAcquisitionType(raw string) (AcquisitionType, error) {
	a := AcquisitionType(raw)
	if !a.Valid() {
		return "", &ValidationError{Field: "acquisition_type", Message: "unknown acquisition type " + raw}
	}
	return a, nil
}

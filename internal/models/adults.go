package models

// AdultsProfile is the adults experience summary shown on the profile page.
// Nothing in the app changes it yet, so it is never stored.
type AdultsProfile struct {
	SavedContent  []string `json:"savedContent"`
	GiftsSent     int      `json:"giftsSent"`
	GiftsReceived int      `json:"giftsReceived"`
}

// NewAdultsProfile returns the empty profile
func NewAdultsProfile() AdultsProfile {
	return AdultsProfile{SavedContent: []string{}}
}

// Clone returns a deep copy
func (p AdultsProfile) Clone() AdultsProfile {
	out := p
	out.SavedContent = append([]string{}, p.SavedContent...)
	return out
}

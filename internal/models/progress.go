package models

// KidsProgress is the gamification state of the kids experience
type KidsProgress struct {
	Level           int      `json:"level"`
	Stars           int      `json:"stars"`
	Badges          []string `json:"badges"`
	CurrentCategory *string  `json:"currentCategory"`
	DailyStreak     int      `json:"dailyStreak"`
	LastActiveDate  *string  `json:"lastActiveDate"`
}

// NewKidsProgress returns the starting progress
func NewKidsProgress() KidsProgress {
	return KidsProgress{Level: 1, Badges: []string{}}
}

// HasBadge reports whether id has been earned
func (p *KidsProgress) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy safe to hand out of the container
func (p KidsProgress) Clone() KidsProgress {
	out := p
	out.Badges = append([]string{}, p.Badges...)
	if p.CurrentCategory != nil {
		c := *p.CurrentCategory
		out.CurrentCategory = &c
	}
	if p.LastActiveDate != nil {
		d := *p.LastActiveDate
		out.LastActiveDate = &d
	}
	return out
}

// ProgressUpdate is a partial update. Nil fields are left untouched.
//
// The streak fields are absent: the streak only moves by recording activity.
// Level is never decoded from a request; only a game award sets it.
type ProgressUpdate struct {
	Level           *int     `json:"-"`
	Stars           *int     `json:"stars,omitempty"`
	Badges          []string `json:"badges,omitempty"`
	CurrentCategory *string  `json:"currentCategory,omitempty"`
}

// Apply merges u into p. Stars and level never move backwards, badges are
// only ever appended, and an empty category clears the current one.
func (p *KidsProgress) Apply(u ProgressUpdate) {
	if u.Level != nil && *u.Level >= p.Level {
		p.Level = *u.Level
	}
	if u.Stars != nil && *u.Stars >= p.Stars {
		p.Stars = *u.Stars
	}
	for _, b := range u.Badges {
		if b != "" && !p.HasBadge(b) {
			p.Badges = append(p.Badges, b)
		}
	}
	if u.CurrentCategory != nil {
		if *u.CurrentCategory == "" {
			p.CurrentCategory = nil
		} else {
			c := *u.CurrentCategory
			p.CurrentCategory = &c
		}
	}
}

// Normalize repairs values rehydrated from storage
func (p *KidsProgress) Normalize() {
	if p.Level < 1 {
		p.Level = 1
	}
	if p.Stars < 0 {
		p.Stars = 0
	}
	if p.DailyStreak < 0 {
		p.DailyStreak = 0
	}
	if p.Badges == nil {
		p.Badges = []string{}
	}
}

package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func intPtr(n int) *int       { return &n }
func strPtr(s string) *string { return &s }

func TestRoleUserType(t *testing.T) {
	tests := []struct {
		role Role
		want UserType
	}{
		{RoleParent, UserTypeParent},
		{RoleAdult, UserTypeIndividual},
		{Role("Admin"), UserTypeIndividual},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			u := &User{Role: tt.role}
			if got := u.UserType(); got != tt.want {
				t.Errorf("User.UserType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRoleFor(t *testing.T) {
	tests := []struct {
		userType UserType
		want     Role
		ok       bool
	}{
		{UserTypeParent, RoleParent, true},
		{UserTypeIndividual, RoleAdult, true},
		{UserType("admin"), "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.userType), func(t *testing.T) {
			got, ok := RoleFor(tt.userType)
			if got != tt.want || ok != tt.ok {
				t.Errorf("RoleFor() = (%v, %v), want (%v, %v)", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestUserJSONOmitsUserType(t *testing.T) {
	data, err := json.Marshal(User{ID: "u1", Role: RoleParent})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if _, ok := fields["userType"]; ok {
		t.Error("userType must not be persisted")
	}
	for _, key := range []string{"id", "name", "email", "role", "hasChildren", "language", "isFirstTime"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
}

func TestAgeBracketValid(t *testing.T) {
	tests := []struct {
		age  AgeBracket
		want bool
	}{
		{"5-7", true},
		{"8-10", true},
		{"11-12", true},
		{"13-15", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.age), func(t *testing.T) {
			if got := tt.age.Valid(); got != tt.want {
				t.Errorf("AgeBracket.Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAvatarPalette(t *testing.T) {
	if len(Avatars) != 12 {
		t.Fatalf("len(Avatars) = %d, want 12", len(Avatars))
	}
	if !IsAvatar("👧🏽") {
		t.Error("IsAvatar() should accept palette entries")
	}
	if IsAvatar("🐱") {
		t.Error("IsAvatar() should reject emoji outside the palette")
	}
}

func TestParseExperience(t *testing.T) {
	tests := []struct {
		in   string
		want Experience
		ok   bool
	}{
		{"kids", ExperienceKids, true},
		{"adults", ExperienceAdults, true},
		{"", ExperienceNone, true},
		{"teens", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseExperience(tt.in)
			if got != tt.want || ok != tt.ok {
				t.Errorf("ParseExperience(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestKidsProgressApply(t *testing.T) {
	base := func() KidsProgress {
		p := NewKidsProgress()
		p.Level = 3
		p.Stars = 40
		p.Badges = []string{"first-story"}
		p.CurrentCategory = strPtr("animals")
		return p
	}

	tests := []struct {
		name   string
		update ProgressUpdate
		check  func(t *testing.T, p KidsProgress)
	}{
		{
			name:   "empty update changes nothing",
			update: ProgressUpdate{},
			check: func(t *testing.T, p KidsProgress) {
				if !reflect.DeepEqual(p, base()) {
					t.Errorf("Apply() = %+v, want %+v", p, base())
				}
			},
		},
		{
			name:   "stars increase",
			update: ProgressUpdate{Stars: intPtr(50)},
			check: func(t *testing.T, p KidsProgress) {
				if p.Stars != 50 {
					t.Errorf("Stars = %d, want 50", p.Stars)
				}
			},
		},
		{
			name:   "stars never decrease",
			update: ProgressUpdate{Stars: intPtr(10)},
			check: func(t *testing.T, p KidsProgress) {
				if p.Stars != 40 {
					t.Errorf("Stars = %d, want 40", p.Stars)
				}
			},
		},
		{
			name:   "level never decreases",
			update: ProgressUpdate{Level: intPtr(1)},
			check: func(t *testing.T, p KidsProgress) {
				if p.Level != 3 {
					t.Errorf("Level = %d, want 3", p.Level)
				}
			},
		},
		{
			name:   "badges append without duplicates",
			update: ProgressUpdate{Badges: []string{"first-story", "ten-stars", "ten-stars"}},
			check: func(t *testing.T, p KidsProgress) {
				want := []string{"first-story", "ten-stars"}
				if !reflect.DeepEqual(p.Badges, want) {
					t.Errorf("Badges = %v, want %v", p.Badges, want)
				}
			},
		},
		{
			name:   "empty category clears",
			update: ProgressUpdate{CurrentCategory: strPtr("")},
			check: func(t *testing.T, p KidsProgress) {
				if p.CurrentCategory != nil {
					t.Errorf("CurrentCategory = %v, want nil", *p.CurrentCategory)
				}
			},
		},
		{
			name:   "negative stars ignored",
			update: ProgressUpdate{Stars: intPtr(-5)},
			check: func(t *testing.T, p KidsProgress) {
				if p.Stars != 40 {
					t.Errorf("Stars = %d, want 40", p.Stars)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base()
			p.Apply(tt.update)
			tt.check(t, p)
		})
	}
}

func TestProgressUpdateIgnoresLevelAndStreakFields(t *testing.T) {
	var u ProgressUpdate
	body := `{"stars":12,"level":9,"dailyStreak":99,"lastActiveDate":"2024-03-04"}`
	if err := json.Unmarshal([]byte(body), &u); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if u.Level != nil {
		t.Errorf("Level = %d, want nil", *u.Level)
	}
	if u.Stars == nil || *u.Stars != 12 {
		t.Errorf("Stars = %v, want 12", u.Stars)
	}
}

func TestKidsProgressCloneIsDeep(t *testing.T) {
	p := NewKidsProgress()
	p.Badges = append(p.Badges, "a")
	p.LastActiveDate = strPtr("2024-03-01")

	c := p.Clone()
	c.Badges[0] = "b"
	*c.LastActiveDate = "2024-03-02"

	if p.Badges[0] != "a" || *p.LastActiveDate != "2024-03-01" {
		t.Errorf("Clone() shares memory with original: %+v", p)
	}
}

func TestKidsProgressNormalize(t *testing.T) {
	p := KidsProgress{Level: 0, Stars: -5, DailyStreak: -1}
	p.Normalize()
	if p.Level != 1 || p.Stars != 0 || p.DailyStreak != 0 || p.Badges == nil {
		t.Errorf("Normalize() = %+v", p)
	}
}

func TestDefaultParentPreferences(t *testing.T) {
	want := ParentPreferences{ChildLanguage: "ar", AskBalegh: true, Sound: true, BedtimeStories: true}
	if got := DefaultParentPreferences(); got != want {
		t.Errorf("DefaultParentPreferences() = %+v, want %+v", got, want)
	}
}

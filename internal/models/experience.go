package models

// Experience is the audience mode the device is currently in
type Experience string

const (
	ExperienceNone   Experience = ""
	ExperienceKids   Experience = "kids"
	ExperienceAdults Experience = "adults"
)

// ParseExperience accepts "kids", "adults" or "" (unset)
func ParseExperience(s string) (Experience, bool) {
	switch e := Experience(s); e {
	case ExperienceNone, ExperienceKids, ExperienceAdults:
		return e, true
	default:
		return "", false
	}
}

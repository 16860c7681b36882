package models

// ParentPreferences are parental settings for the kids experience
type ParentPreferences struct {
	ChildLanguage  string `json:"childLanguage"`
	AskBalegh      bool   `json:"askBalegh"`
	Sound          bool   `json:"sound"`
	BedtimeStories bool   `json:"bedtimeStories"`
}

// DefaultParentPreferences returns the settings offered on first setup
func DefaultParentPreferences() ParentPreferences {
	return ParentPreferences{
		ChildLanguage:  "ar",
		AskBalegh:      true,
		Sound:          true,
		BedtimeStories: true,
	}
}

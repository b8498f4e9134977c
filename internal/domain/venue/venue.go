// Package venue provides the Venue branding entity.
package venue

// Theme holds the venue's brand colours as hex strings.
type Theme struct {
	PrimaryColor   string `yaml:"primary_color" validate:"omitempty,hexcolor"`
	SecondaryColor string `yaml:"secondary_color" validate:"omitempty,hexcolor"`
	AccentColor    string `yaml:"accent_color" validate:"omitempty,hexcolor"`
}

// Venue represents the venue running the jukebox.
type Venue struct {
	ID      string `yaml:"id"`
	Name    string `yaml:"name" validate:"required"`
	LogoURL string `yaml:"logo,omitempty" validate:"omitempty,url"`
	Theme   *Theme `yaml:"theme,omitempty"`
}

// Update describes a partial venue change. Nil fields are left untouched.
type Update struct {
	Name    *string
	LogoURL *string
	Theme   *Theme
}

// Apply returns a copy of v with the update applied.
func (v Venue) Apply(u Update) Venue {
	if u.Name != nil {
		v.Name = *u.Name
	}
	if u.LogoURL != nil {
		v.LogoURL = *u.LogoURL
	}
	if u.Theme != nil {
		theme := *u.Theme
		v.Theme = &theme
	}
	return v
}

// Package profile defines the person records shown in the quiz and the
// sources that supply them. Sources only deliver validated profiles; the
// game engine performs no further checks.
package profile

import "strings"

// Profile is a person record as returned by the profiles API.
type Profile struct {
	ID          string       `json:"id"`
	FirstName   string       `json:"firstName"`
	LastName    string       `json:"lastName"`
	Headshot    Headshot     `json:"headshot"`
	JobTitle    string       `json:"jobTitle,omitempty"`
	Slug        string       `json:"slug,omitempty"`
	Type        string       `json:"type,omitempty"`
	SocialLinks []SocialLink `json:"socialLinks,omitempty"`
}

// Headshot references the profile's photo.
type Headshot struct {
	ID       string `json:"id,omitempty"`
	URL      string `json:"url,omitempty"`
	Alt      string `json:"alt,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
	Type     string `json:"type,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// SocialLink is an external link attached to a profile. Unused by the game.
type SocialLink struct {
	Type         string `json:"type,omitempty"`
	CallToAction string `json:"callToAction,omitempty"`
	URL          string `json:"url,omitempty"`
}

// FullName returns "First Last".
func (p Profile) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Valid reports whether the profile can be used in a round: it needs a
// first name, a last name and a headshot URL.
func (p Profile) Valid() bool {
	return strings.TrimSpace(p.FirstName) != "" &&
		strings.TrimSpace(p.LastName) != "" &&
		strings.TrimSpace(p.Headshot.URL) != ""
}

// Filter returns the valid profiles in their original order.
func Filter(profiles []Profile) []Profile {
	valid := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		if p.Valid() {
			valid = append(valid, p)
		}
	}
	return valid
}

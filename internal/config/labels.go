package config

import "strings"

// Label is a predefined chanting label.
type Label struct {
	Name         string
	OriginalName string
	Tradition    string
	Symbol       string
}

// DefaultLabels are offered for quick selection. "Custom" stands for free text.
var DefaultLabels = []Label{
	{Name: "Ram", OriginalName: "राम", Tradition: "Hindu/Sanskrit", Symbol: "🙏"},
	{Name: "Radha", OriginalName: "राधा", Tradition: "Hindu/Sanskrit", Symbol: "🌸"},
	{Name: "Krishna", OriginalName: "कृष्ण", Tradition: "Hindu/Sanskrit", Symbol: "🦚"},
	{Name: "Om", OriginalName: "ॐ", Tradition: "Hindu/Sanskrit", Symbol: "🕉️"},
	{Name: "Jesus", OriginalName: "Jesus", Tradition: "Christian", Symbol: "✝️"},
	{Name: "Allah", OriginalName: "الله", Tradition: "Islamic", Symbol: "☪️"},
	{Name: "Waheguru", OriginalName: "ਵਾਹਿਗੁਰੂ", Tradition: "Sikh", Symbol: "☬"},
	{Name: "Custom", OriginalName: "Custom", Tradition: "Custom", Symbol: "✨"},
}

// LookupLabel finds a predefined label by name, case-insensitively.
func LookupLabel(name string) (Label, bool) {
	for _, l := range DefaultLabels {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Label{}, false
}

// DisplayLabel renders a session label for output. Predefined labels get their
// symbol and, when useOriginal is set, their original-script name.
func DisplayLabel(name string, useOriginal bool) string {
	l, ok := LookupLabel(name)
	if !ok {
		return name
	}
	if useOriginal {
		return l.Symbol + " " + l.OriginalName
	}
	return l.Symbol + " " + l.Name
}

// CanonicalLabel returns the predefined spelling of name, or name unchanged.
func CanonicalLabel(name string) string {
	name = strings.TrimSpace(name)
	if l, ok := LookupLabel(name); ok {
		return l.Name
	}
	return name
}

// Package store holds client session and UI state. Each slice is a pure reducer; Store
// composes them and owns the only side effect, persisting the theme.
package store

import (
	"maps"

	"rental-backend/pkg/api"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Action is anything a reducer understands. Reducers ignore actions of other slices.
type Action interface {
	action()
}

type SetUser struct{ User *api.User }
type SetCompany struct{ Company *api.Company }
type UpdateUser struct{ Patch api.UserPatch }
type ClearUser struct{}

type SetTheme struct{ Theme string }
type ToggleTheme struct{}
type UpdateSettings struct{ Settings map[string]any }

func (SetUser) action()        {}
func (SetCompany) action()     {}
func (UpdateUser) action()     {}
func (ClearUser) action()      {}
func (SetTheme) action()       {}
func (ToggleTheme) action()    {}
func (UpdateSettings) action() {}

type SessionState struct {
	User    *api.User
	Company *api.Company
}

type ThemeState struct {
	Theme    string
	Settings map[string]any
}

// ReduceSession never mutates s.
func ReduceSession(s SessionState, a Action) SessionState {
	switch a := a.(type) {
	case SetUser:
		s.User = cloneUser(a.User)
	case SetCompany:
		s.Company = cloneCompany(a.Company)
	case UpdateUser:
		if s.User == nil {
			return s
		}
		merged := a.Patch.Apply(*s.User)
		s.User = &merged
	case ClearUser:
		s.User = nil
		s.Company = nil
	}
	return s
}

// ReduceTheme never mutates s.
func ReduceTheme(s ThemeState, a Action) ThemeState {
	switch a := a.(type) {
	case SetTheme:
		s.Theme = a.Theme
	case ToggleTheme:
		s.Theme = Toggled(s.Theme)
	case UpdateSettings:
		merged := make(map[string]any, len(s.Settings)+len(a.Settings))
		maps.Copy(merged, s.Settings)
		maps.Copy(merged, a.Settings)
		s.Settings = merged
	}
	return s
}

// Toggled flips dark to light and anything else to dark.
func Toggled(theme string) string {
	if theme == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func cloneUser(u *api.User) *api.User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}

func cloneCompany(c *api.Company) *api.Company {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

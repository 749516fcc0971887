package store

import (
	"errors"
	"sync"
	"testing"

	"rental-backend/pkg/api"
	"rental-backend/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStorage logs every write so ordering can be asserted.
type recordingStorage struct {
	*storage.Memory
	mu     sync.Mutex
	writes []string
	fail   error
}

func newRecording() *recordingStorage {
	return &recordingStorage{Memory: storage.NewMemory()}
}

func (r *recordingStorage) Set(key, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail != nil {
		return r.fail
	}
	r.writes = append(r.writes, key+"="+value)
	return r.Memory.Set(key, value)
}

func strPtr(s string) *string { return &s }

func TestReduceSession(t *testing.T) {
	user := &api.User{ID: 1, Name: "Mel", Email: "mel@example.com", Tier: "basic"}
	company := &api.Company{ID: 3, Name: "Seaside", Tier: "premium"}

	s := ReduceSession(SessionState{}, SetUser{User: user})
	s = ReduceSession(s, SetCompany{Company: company})
	require.NotNil(t, s.User)
	assert.Equal(t, "Mel", s.User.Name)

	user.Name = "changed by caller"
	assert.Equal(t, "Mel", s.User.Name)

	prev := s
	s = ReduceSession(s, UpdateUser{Patch: api.UserPatch{Name: strPtr("Mel R")}})
	assert.Equal(t, "Mel R", s.User.Name)
	assert.Equal(t, "mel@example.com", s.User.Email)
	assert.Equal(t, "Mel", prev.User.Name)

	s = ReduceSession(s, ClearUser{})
	assert.Nil(t, s.User)
	assert.Nil(t, s.Company)
}

func TestReduceSession_UpdateWithoutUserIsNoop(t *testing.T) {
	s := ReduceSession(SessionState{}, UpdateUser{Patch: api.UserPatch{Name: strPtr("x")}})
	assert.Nil(t, s.User)
}

func TestReduceSession_ClearUserFromAnyState(t *testing.T) {
	states := []SessionState{
		{},
		{User: &api.User{ID: 1}},
		{Company: &api.Company{ID: 2}},
		{User: &api.User{ID: 1}, Company: &api.Company{ID: 2}},
	}
	for _, s := range states {
		got := ReduceSession(s, ClearUser{})
		assert.Equal(t, SessionState{}, got)
	}
}

func TestReduceTheme(t *testing.T) {
	s := ThemeState{Theme: ThemeLight, Settings: map[string]any{"lang": "en", "compact": false}}

	next := ReduceTheme(s, UpdateSettings{Settings: map[string]any{"compact": true}})
	assert.Equal(t, map[string]any{"lang": "en", "compact": true}, next.Settings)
	assert.Equal(t, false, s.Settings["compact"])

	assert.Equal(t, ThemeDark, ReduceTheme(s, ToggleTheme{}).Theme)
	assert.Equal(t, "solarized", ReduceTheme(s, SetTheme{Theme: "solarized"}).Theme)
	assert.Equal(t, s, ReduceTheme(s, ClearUser{}))
}

func TestStore_InitialTheme(t *testing.T) {
	assert.Equal(t, ThemeLight, New(storage.NewMemory(), nil).State().Theme.Theme)

	st := storage.NewMemory()
	require.NoError(t, st.Set(storage.ThemeKey, ThemeDark))
	assert.Equal(t, ThemeDark, New(st, nil).State().Theme.Theme)
}

func TestStore_ToggleTwicePersistsEachValueInOrder(t *testing.T) {
	st := newRecording()
	s := New(st, nil)

	require.NoError(t, s.ToggleTheme())
	assert.Equal(t, ThemeDark, s.State().Theme.Theme)
	require.NoError(t, s.ToggleTheme())
	assert.Equal(t, ThemeLight, s.State().Theme.Theme)

	assert.Equal(t, []string{"theme=dark", "theme=light"}, st.writes)
}

func TestStore_PersistsBeforeCommitting(t *testing.T) {
	st := newRecording()
	s := New(st, nil)

	var seenStored []string
	s.Subscribe(func(state State) {
		v, _ := st.Get(storage.ThemeKey)
		seenStored = append(seenStored, v)
	})
	require.NoError(t, s.SetTheme(ThemeDark))
	assert.Equal(t, []string{ThemeDark}, seenStored)

	st.fail = errors.New("disk full")
	err := s.ToggleTheme()
	require.Error(t, err)
	assert.Equal(t, ThemeDark, s.State().Theme.Theme)
	assert.Len(t, seenStored, 1)
}

func TestSelectors(t *testing.T) {
	s := New(storage.NewMemory(), nil)

	assert.False(t, IsAuthenticated(s.State()))
	_, ok := Tier(s.State())
	assert.False(t, ok)

	s.SetUser(&api.User{ID: 1})
	s.SetCompany(&api.Company{ID: 2, Tier: "premium"})
	assert.True(t, IsAuthenticated(s.State()))
	tier, ok := Tier(s.State())
	assert.True(t, ok)
	assert.Equal(t, "premium", tier)

	s.ClearUser()
	assert.False(t, IsAuthenticated(s.State()))
	_, ok = Tier(s.State())
	assert.False(t, ok)
}

func TestStore_StateIsACopy(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	s.SetUser(&api.User{ID: 1, Name: "Mel"})
	s.UpdateSettings(map[string]any{"lang": "en"})

	snap := s.State()
	snap.Session.User.Name = "mutated"
	snap.Theme.Settings["lang"] = "fr"

	assert.Equal(t, "Mel", s.State().Session.User.Name)
	assert.Equal(t, "en", s.State().Theme.Settings["lang"])
}

func TestStore_Unsubscribe(t *testing.T) {
	s := New(storage.NewMemory(), nil)
	calls := 0
	cancel := s.Subscribe(func(State) { calls++ })

	s.ClearUser()
	cancel()
	s.ClearUser()

	assert.Equal(t, 1, calls)
}

package rules

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memProfiles struct {
	list   []Profile
	active string
}

func (m *memProfiles) LoadProfiles() ([]Profile, string, error) {
	out := make([]Profile, len(m.list))
	copy(out, m.list)
	return out, m.active, nil
}

func (m *memProfiles) SaveProfiles(list []Profile, active string) error {
	m.list = make([]Profile, len(list))
	copy(m.list, list)
	m.active = active
	return nil
}

func newTestProfiles(t *testing.T) (*Profiles, *Store, *memProfiles) {
	t.Helper()
	store := NewStore(nil)
	mp := &memProfiles{}
	p := NewProfiles(mp, store)
	require.NoError(t, p.Load())
	return p, store, mp
}

func TestProfiles_LoadCreatesDefault(t *testing.T) {
	p, _, mp := newTestProfiles(t)

	list := p.List()
	require.Len(t, list, 1)
	assert.Equal(t, DefaultProfileName, list[0].Name)
	assert.Equal(t, list[0].ID, p.ActiveID())
	assert.Len(t, mp.list, 1, "default profile should be persisted")
}

func TestProfiles_CreateActivate(t *testing.T) {
	p, store, _ := newTestProfiles(t)

	work, err := p.Create(DefaultProfileName, "Work")
	require.NoError(t, err)
	assert.NotEqual(t, p.ActiveID(), work.ID)

	// Edit the store, sync into Default, then switch to Work.
	_, err = store.Update(func(d *Draft) error {
		d.Rules = d.Rules.WithFlag(StageRemoveEmojis, true)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, p.SyncActive())

	_, err = p.Activate("work")
	require.NoError(t, err)
	assert.Equal(t, work.ID, p.ActiveID())
	assert.False(t, store.Snapshot().Rules.RemoveEmojis, "Work profile was created before the edit")

	_, err = p.Activate(DefaultProfileName)
	require.NoError(t, err)
	assert.True(t, store.Snapshot().Rules.RemoveEmojis)
}

func TestProfiles_Delete(t *testing.T) {
	p, _, _ := newTestProfiles(t)

	err := p.Delete(DefaultProfileName)
	assert.True(t, errors.Is(err, ErrLastProfile))

	second, err := p.Create(DefaultProfileName, "Second")
	require.NoError(t, err)
	_, err = p.Activate(second.ID)
	require.NoError(t, err)

	require.NoError(t, p.Delete(second.ID))
	list := p.List()
	require.Len(t, list, 1)
	assert.Equal(t, list[0].ID, p.ActiveID())
}

func TestProfiles_RenameAndFind(t *testing.T) {
	p, _, _ := newTestProfiles(t)
	id := p.ActiveID()

	assert.ErrorIs(t, p.Rename(id, "  "), ErrProfileName)
	require.NoError(t, p.Rename(id[:8], "Main"))

	got, err := p.Find("MAIN")
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)

	_, err = p.Find("missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfiles_LoadRepairsActiveID(t *testing.T) {
	mp := &memProfiles{
		list:   []Profile{{ID: "a-1", Name: "A", Rules: DefaultRuleSet()}},
		active: "gone",
	}
	p := NewProfiles(mp, NewStore(nil))
	require.NoError(t, p.Load())
	assert.Equal(t, "a-1", p.ActiveID())
}

package rules

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrLastProfile     = errors.New("cannot delete the last profile")
	ErrProfileName     = errors.New("profile name must not be empty")
)

// DefaultProfileName names the profile created on first launch.
const DefaultProfileName = "Default"

// Profile is a named rule set.
type Profile struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Rules RuleSet `json:"rules"`
}

// ProfilePersister loads and saves the profile list and the active profile id.
type ProfilePersister interface {
	LoadProfiles() ([]Profile, string, error)
	SaveProfiles(profiles []Profile, activeID string) error
}

// Profiles manages named rule sets. Activating a profile publishes its rules
// through the Store.
type Profiles struct {
	mu       sync.Mutex
	list     []Profile
	activeID string
	persist  ProfilePersister
	store    *Store
}

// NewProfiles returns a manager bound to store. Call Load before use.
func NewProfiles(p ProfilePersister, store *Store) *Profiles {
	return &Profiles{persist: p, store: store}
}

// Load reads persisted profiles. With none persisted, a Default profile is
// created from the store's current rules.
func (p *Profiles) Load() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	list, active, err := p.persist.LoadProfiles()
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}
	p.list = list
	p.activeID = active

	if len(p.list) == 0 {
		p.list = []Profile{{ID: uuid.New().String(), Name: DefaultProfileName, Rules: p.store.Snapshot().Rules}}
		p.activeID = p.list[0].ID
		return p.saveLocked()
	}
	if p.indexLocked(p.activeID) < 0 {
		p.activeID = p.list[0].ID
	}
	return nil
}

// List returns a copy of all profiles.
func (p *Profiles) List() []Profile {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Profile, len(p.list))
	copy(out, p.list)
	return out
}

// ActiveID returns the id of the active profile.
func (p *Profiles) ActiveID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeID
}

// Find resolves a profile by id, id prefix or case-insensitive name.
func (p *Profiles) Find(ref string) (Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	i := p.resolveLocked(ref)
	if i < 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, ref)
	}
	return p.list[i], nil
}

// Create duplicates the profile referenced by basedOn under name.
func (p *Profiles) Create(basedOn, name string) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, ErrProfileName
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.resolveLocked(basedOn)
	if i < 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, basedOn)
	}
	np := Profile{ID: uuid.New().String(), Name: name, Rules: p.list[i].Rules.clone()}
	p.list = append(p.list, np)
	return np, p.saveLocked()
}

// Rename changes the name of a profile.
func (p *Profiles) Rename(ref, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrProfileName
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.resolveLocked(ref)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, ref)
	}
	p.list[i].Name = name
	return p.saveLocked()
}

// Delete removes a profile. The last profile cannot be deleted; deleting the
// active one activates the first remaining profile.
func (p *Profiles) Delete(ref string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.list) <= 1 {
		return ErrLastProfile
	}
	i := p.resolveLocked(ref)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, ref)
	}
	wasActive := p.list[i].ID == p.activeID
	p.list = append(p.list[:i], p.list[i+1:]...)
	if wasActive {
		p.activeID = p.list[0].ID
		if err := p.publishLocked(p.list[0].Rules); err != nil {
			return err
		}
	}
	return p.saveLocked()
}

// Activate makes the profile active and publishes its rules.
func (p *Profiles) Activate(ref string) (Profile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.resolveLocked(ref)
	if i < 0 {
		return Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, ref)
	}
	p.activeID = p.list[i].ID
	if err := p.publishLocked(p.list[i].Rules); err != nil {
		return Profile{}, err
	}
	return p.list[i], p.saveLocked()
}

// SyncActive copies the store's current rules into the active profile.
func (p *Profiles) SyncActive() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := p.indexLocked(p.activeID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, p.activeID)
	}
	p.list[i].Rules = p.store.Snapshot().Rules
	return p.saveLocked()
}

func (p *Profiles) publishLocked(rs RuleSet) error {
	_, err := p.store.Update(func(d *Draft) error {
		d.Rules = rs
		return nil
	})
	return err
}

func (p *Profiles) saveLocked() error {
	if err := p.persist.SaveProfiles(p.list, p.activeID); err != nil {
		return fmt.Errorf("failed to save profiles: %w", err)
	}
	return nil
}

func (p *Profiles) indexLocked(id string) int {
	for i, pr := range p.list {
		if pr.ID == id {
			return i
		}
	}
	return -1
}

func (p *Profiles) resolveLocked(ref string) int {
	if i := p.indexLocked(ref); i >= 0 {
		return i
	}
	match := -1
	for i, pr := range p.list {
		if strings.EqualFold(pr.Name, ref) {
			return i
		}
		if len(ref) >= 4 && strings.HasPrefix(pr.ID, ref) {
			if match >= 0 {
				return -1 // ambiguous prefix
			}
			match = i
		}
	}
	return match
}

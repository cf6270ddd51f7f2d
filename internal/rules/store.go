package rules

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Persister loads and saves the rule configuration.
type Persister interface {
	LoadRules() (RuleSet, map[StageID]RuleConfig, error)
	SaveRules(rs RuleSet, cfgs map[StageID]RuleConfig) error
}

// Draft is the mutable copy handed to Store.Update callbacks.
type Draft struct {
	Rules   RuleSet
	Configs map[StageID]RuleConfig
}

// SetMode sets the application mode of id.
func (d *Draft) SetMode(id StageID, m Mode) {
	cfg := d.config(id)
	cfg.Mode = m
	d.Configs[id] = cfg
}

// SetEnabled sets the master toggle of id.
func (d *Draft) SetEnabled(id StageID, on bool) {
	cfg := d.config(id)
	cfg.Enabled = on
	d.Configs[id] = cfg
}

func (d *Draft) config(id StageID) RuleConfig {
	if cfg, ok := d.Configs[id]; ok {
		return cfg
	}
	return DefaultConfig(id)
}

// Store publishes rule snapshots. Readers never block; writers are serialized
// and swap in a fresh snapshot after persisting it.
type Store struct {
	current atomic.Pointer[Snapshot]
	mu      sync.Mutex
	persist Persister
}

// NewStore returns a store seeded with the defaults. p may be nil.
func NewStore(p Persister) *Store {
	s := &Store{persist: p}
	s.current.Store(DefaultSnapshot())
	return s
}

// Load replaces the current snapshot with what the persister holds.
func (s *Store) Load() error {
	if s.persist == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rs, cfgs, err := s.persist.LoadRules()
	if err != nil {
		return fmt.Errorf("failed to load rules: %w", err)
	}
	s.current.Store(NewSnapshot(rs, cfgs))
	return nil
}

// Snapshot returns the currently published snapshot.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Update applies fn to a copy of the current configuration, persists it and
// publishes it. If fn or the save fails, the current snapshot is kept.
func (s *Store) Update(fn func(d *Draft) error) (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load().clone()
	d := &Draft{Rules: cur.Rules, Configs: cur.Configs()}
	if err := fn(d); err != nil {
		return cur, err
	}

	next := NewSnapshot(d.Rules, d.Configs)
	if s.persist != nil {
		if err := s.persist.SaveRules(next.Rules, next.Configs()); err != nil {
			return s.current.Load(), fmt.Errorf("failed to save rules: %w", err)
		}
	}
	s.current.Store(next)
	return next, nil
}

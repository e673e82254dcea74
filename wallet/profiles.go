package wallet

import (
	"fmt"
	"strings"
)

// Profile names one identity key in the wallet. Each profile gets its own
// BIP44 account; Index selects the key within it.
type Profile struct {
	Name    string `json:"name"`
	Account uint32 `json:"account"`
	Index   uint32 `json:"index"`
	Deleted bool   `json:"deleted"` // soft delete; the account is never reused
}

// State holds persisted profile metadata.
type State struct {
	Profiles    []Profile `json:"profiles"`
	Default     string    `json:"default"`
	NextAccount uint32    `json:"next_account"`
}

// NewState creates an empty State.
func NewState() *State {
	return &State{Profiles: []Profile{}}
}

// Validate checks the integrity of a deserialized State.
func (s *State) Validate() error {
	seen := make(map[uint32]string)
	var next uint32
	for _, p := range s.Profiles {
		if p.Account > MaxIndex || p.Index > MaxIndex {
			return fmt.Errorf("profile %q: %w", p.Name, ErrIndexOutOfRange)
		}
		if p.Account >= next {
			next = p.Account + 1
		}
		if p.Deleted {
			continue
		}
		if prev, ok := seen[p.Account]; ok {
			return fmt.Errorf("duplicate account %d: profiles %q and %q", p.Account, prev, p.Name)
		}
		seen[p.Account] = p.Name
	}
	if s.NextAccount < next {
		return fmt.Errorf("next account (%d) is less than max account + 1 (%d)", s.NextAccount, next)
	}
	if s.Default != "" {
		if _, err := s.Get(s.Default); err != nil {
			return fmt.Errorf("default profile: %w", err)
		}
	}
	return nil
}

// Create adds a profile on the next unused account. The first profile
// becomes the default.
func (s *State) Create(name string) (*Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidProfileName
	}
	if s.NextAccount > MaxIndex {
		return nil, fmt.Errorf("%w: profile limit reached", ErrIndexOutOfRange)
	}
	if _, err := s.Get(name); err == nil {
		return nil, fmt.Errorf("%w: %q", ErrProfileExists, name)
	}

	s.Profiles = append(s.Profiles, Profile{Name: name, Account: s.NextAccount})
	s.NextAccount++
	if s.Default == "" {
		s.Default = name
	}
	return &s.Profiles[len(s.Profiles)-1], nil
}

// Get returns the active profile with the given name. An empty name selects
// the default profile.
func (s *State) Get(name string) (*Profile, error) {
	if name == "" {
		name = s.Default
	}
	for i := range s.Profiles {
		if s.Profiles[i].Name == name && !s.Profiles[i].Deleted {
			return &s.Profiles[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrProfileNotFound, name)
}

// List returns all active profiles.
func (s *State) List() []Profile {
	var active []Profile
	for _, p := range s.Profiles {
		if !p.Deleted {
			active = append(active, p)
		}
	}
	return active
}

// Rename renames an active profile.
func (s *State) Rename(oldName, newName string) error {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return ErrInvalidProfileName
	}
	if _, err := s.Get(newName); err == nil {
		return fmt.Errorf("%w: %q", ErrProfileExists, newName)
	}
	p, err := s.Get(oldName)
	if err != nil {
		return err
	}
	if s.Default == p.Name {
		s.Default = newName
	}
	p.Name = newName
	return nil
}

// Delete marks a profile as deleted.
func (s *State) Delete(name string) error {
	p, err := s.Get(name)
	if err != nil {
		return err
	}
	p.Deleted = true
	if s.Default == p.Name {
		s.Default = ""
	}
	return nil
}

// ProfileKey derives the key pinned by p.
func (w *Wallet) ProfileKey(p *Profile) (*KeyPair, error) {
	return w.DeriveIdentity(p.Account, p.Index)
}

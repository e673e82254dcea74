package vault

import (
	"fmt"
	"sync"

	"github.com/bitfsorg/libibom-go/identity"
)

// Program is the capability to move funds out of custody accounts derived
// under its name. A *Program can only be obtained from RegisterProgram, and
// each name is handed out once per process.
type Program struct {
	name string
}

var (
	programsMu sync.Mutex
	programs   = make(map[string]*Program)
)

// RegisterProgram claims name and returns its capability.
func RegisterProgram(name string) (*Program, error) {
	programsMu.Lock()
	defer programsMu.Unlock()
	if name == "" {
		return nil, fmt.Errorf("%w: empty name", ErrProgramExists)
	}
	if _, ok := programs[name]; ok {
		return nil, fmt.Errorf("%w: %q", ErrProgramExists, name)
	}
	p := &Program{name: name}
	programs[name] = p
	return p, nil
}

// MustRegisterProgram is RegisterProgram for package-level initialisation.
func MustRegisterProgram(name string) *Program {
	p, err := RegisterProgram(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Name returns the program name.
func (p *Program) Name() string { return p.name }

// Address derives the custody account for seeds.
func (p *Program) Address(seeds ...[]byte) (identity.ID, error) {
	return identity.Derive(p.name, seeds...)
}

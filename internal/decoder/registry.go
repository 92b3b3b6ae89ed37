package decoder

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateOpcode = errors.New("decoder: duplicate opcode")
	ErrNilHandler      = errors.New("decoder: nil handler")
	ErrInvalidLength   = errors.New("decoder: invalid declared length")
)

// Result tells the dispatcher whether a handler is done with its command.
type Result struct {
	more int
}

// Complete closes the command.
var Complete = Result{}

// NeedMoreBytes keeps the command open for n more payload bytes. n <= 0 is
// the same as Complete.
func NeedMoreBytes(n int) Result {
	if n < 0 {
		n = 0
	}
	return Result{more: n}
}

// More returns the requested byte count and whether the command continues.
func (r Result) More() (int, bool) {
	return r.more, r.more > 0
}

// Handler interprets a complete command payload (opcode byte included).
type Handler func(env Env, cmd Command) Result

// Registration binds an opcode to its declared length and handler.
type Registration struct {
	Opcode  byte
	Name    string
	Length  int
	Handler Handler
}

// Registry is a fixed opcode table. It is never mutated after NewRegistry.
type Registry struct {
	table [256]*Registration
	count int
}

// NewRegistry validates regs and builds the table.
func NewRegistry(regs ...Registration) (*Registry, error) {
	r := &Registry{}
	for _, reg := range regs {
		if reg.Handler == nil {
			return nil, fmt.Errorf("%w: opcode 0x%02x", ErrNilHandler, reg.Opcode)
		}
		if reg.Length < 1 {
			return nil, fmt.Errorf("%w: opcode 0x%02x length %d", ErrInvalidLength, reg.Opcode, reg.Length)
		}
		if r.table[reg.Opcode] != nil {
			return nil, fmt.Errorf("%w: 0x%02x", ErrDuplicateOpcode, reg.Opcode)
		}
		item := reg
		r.table[reg.Opcode] = &item
		r.count++
	}
	return r, nil
}

// MustRegistry is NewRegistry for compiled-in tables.
func MustRegistry(regs ...Registration) *Registry {
	r, err := NewRegistry(regs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the registration for opcode.
func (r *Registry) Lookup(opcode byte) (Registration, bool) {
	item := r.table[opcode]
	if item == nil {
		return Registration{}, false
	}
	return *item, true
}

// Len returns the number of registered opcodes.
func (r *Registry) Len() int {
	return r.count
}

// List returns registrations ordered by opcode.
func (r *Registry) List() []Registration {
	out := make([]Registration, 0, r.count)
	for _, item := range r.table {
		if item != nil {
			out = append(out, *item)
		}
	}
	return out
}

var defaultRegistry = MustRegistry(builtinCommands()...)

// DefaultRegistry returns the shared table of known display commands.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

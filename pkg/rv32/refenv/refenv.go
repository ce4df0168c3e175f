// Package refenv is a reference, in-memory implementation of
// env.Environment: flat word-addressed memory, a single LR/SC
// reservation, a CSR bank backed by a map, and an optional per-step
// cost budget. It exists so the core is runnable and testable outside
// of any particular embedder; production embedders are expected to
// provide their own Environment.
package refenv

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bassosimone/rv32core/pkg/rv32/env"
)

// The following errors may be wrapped into a *env.TrapError's
// underlying cause when logged by the caller.
var (
	// ErrSegv indicates an access outside of configured memory.
	ErrSegv = errors.New("refenv: segmentation fault")

	// ErrNoCSR indicates access to a CSR index this environment does
	// not implement.
	ErrNoCSR = errors.New("refenv: no such csr")
)

// TrapEvent records one call to Trap, for tests and debugging.
type TrapEvent struct {
	Cause env.TrapCause
	Info  uint32
}

// Environment is a reference env.Environment implementation.
type Environment struct {
	Mem []uint32 // word-addressed flat memory, grounded on the teacher's VM.M

	Extensions map[env.Extension]bool
	CSRs       map[uint16]uint32
	Sqrt       env.SqrtMode

	// BudgetPerCategory maps a cost category to its per-instruction
	// charge. A category absent from the map charges 1. Budget<0
	// disables budget tracking entirely.
	BudgetPerCategory map[env.CostCategory]int64
	Budget            int64

	reservedValid bool
	reservedAddr  uint32

	Traps []TrapEvent
}

// New creates an Environment with memWords words of zeroed memory,
// every extension enabled, accurate sqrt, and no budget limit.
func New(memWords uint32) *Environment {
	return &Environment{
		Mem: make([]uint32, memWords),
		Extensions: map[env.Extension]bool{
			env.ExtM: true, env.ExtA: true, env.ExtF: true,
			env.ExtD: true, env.ExtQ: true, env.ExtC: true,
		},
		CSRs:   make(map[uint16]uint32),
		Sqrt:   env.SqrtAccurate,
		Budget: -1,
	}
}

func (e *Environment) wordIndex(addr uint32) (int, bool) {
	if addr&3 != 0 {
		return 0, false
	}
	idx := addr / 4
	if int(idx) >= len(e.Mem) {
		return 0, false
	}
	return int(idx), true
}

// ReadWord implements env.Environment.
func (e *Environment) ReadWord(addr uint32) (uint32, *env.TrapError) {
	idx, ok := e.wordIndex(addr)
	if !ok {
		return 0, env.NewTrap(env.CauseMemoryFault, addr)
	}
	return e.Mem[idx], nil
}

// WriteWord implements env.Environment.
func (e *Environment) WriteWord(addr uint32, value uint32, mask uint32) *env.TrapError {
	idx, ok := e.wordIndex(addr)
	if !ok {
		return env.NewTrap(env.CauseMemoryFault, addr)
	}
	if e.reservedValid && e.reservedAddr == addr {
		e.reservedValid = false
	}
	var byteMask uint32
	for i := uint(0); i < 4; i++ {
		if mask&(1<<i) != 0 {
			byteMask |= 0xff << (8 * i)
		}
	}
	e.Mem[idx] = (e.Mem[idx] &^ byteMask) | (value & byteMask)
	return nil
}

// LoadReservedWord implements env.Environment.
func (e *Environment) LoadReservedWord(addr uint32) (uint32, *env.TrapError) {
	v, terr := e.ReadWord(addr)
	if terr != nil {
		return 0, terr
	}
	e.reservedValid = true
	e.reservedAddr = addr
	return v, nil
}

// StoreReservedWord implements env.Environment.
func (e *Environment) StoreReservedWord(addr uint32, value uint32) (bool, *env.TrapError) {
	if !e.reservedValid || e.reservedAddr != addr {
		e.reservedValid = false
		return false, nil
	}
	if terr := e.WriteWord(addr, value, 0b1111); terr != nil {
		return false, terr
	}
	e.reservedValid = false
	return true, nil
}

// IsExtensionEnabled implements env.Environment.
func (e *Environment) IsExtensionEnabled(ext env.Extension) bool {
	return e.Extensions[ext]
}

// ReadCSR implements env.Environment.
func (e *Environment) ReadCSR(index uint16, mode env.CSRMode) (uint32, *env.TrapError) {
	v, ok := e.CSRs[index]
	if !ok {
		return 0, env.NewTrap(env.CauseCSRFault, uint32(index))
	}
	return v, nil
}

// WriteCSR implements env.Environment.
func (e *Environment) WriteCSR(index uint16, value uint32, mode env.CSRMode) *env.TrapError {
	if _, ok := e.CSRs[index]; !ok {
		return env.NewTrap(env.CauseCSRFault, uint32(index))
	}
	e.CSRs[index] = value
	return nil
}

// Charge implements env.Environment.
func (e *Environment) Charge(category env.CostCategory) *env.TrapError {
	if e.Budget < 0 {
		return nil
	}
	cost, ok := e.BudgetPerCategory[category]
	if !ok {
		cost = 1
	}
	e.Budget -= cost
	if e.Budget < 0 {
		return env.NewTrap(env.CauseBudgetExhausted, uint32(category))
	}
	return nil
}

// SqrtMode implements env.Environment.
func (e *Environment) SqrtMode(width int) env.SqrtMode {
	return e.Sqrt
}

// Trap implements env.Environment.
func (e *Environment) Trap(cause env.TrapCause, info uint32) {
	e.Traps = append(e.Traps, TrapEvent{Cause: cause, Info: info})
}

// LoadImage reads one hexadecimal word per line (an optional '#'
// comment strips the rest of the line) starting at word index 0,
// grounded on the teacher's LoadBytecode loader.
func (e *Environment) LoadImage(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	var addr uint32
	for scanner.Scan() {
		line := scanner.Text()
		if idx := strings.Index(line, "#"); idx >= 0 {
			line = line[:idx]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		value, err := strconv.ParseUint(line, 0, 32)
		if err != nil {
			return fmt.Errorf("refenv: line %q: %w", line, err)
		}
		if int(addr) >= len(e.Mem) {
			return fmt.Errorf("%w: image larger than configured memory", ErrSegv)
		}
		e.Mem[addr] = uint32(value)
		addr++
	}
	return scanner.Err()
}

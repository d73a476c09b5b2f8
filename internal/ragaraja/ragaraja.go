// Package ragaraja interprets chromosomes as programs for a circular tape
// machine. A chromosome is read as three-character codons; the active
// dialect maps each codon to an instruction and leaves unknown codons inert.
package ragaraja

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

const (
	CodonLength       = 3
	DefaultTapeLength = 50
	DefaultMaxSteps   = 1000
)

var (
	ErrUnknownVersion = errors.New("unknown ragaraja version")
	ErrUnbalancedLoop = errors.New("unbalanced loop")
)

type op int

const (
	opNop op = iota
	opRight
	opLeft
	opIncrement
	opDecrement
	opOutput
	opInput
	opLoopStart
	opLoopEnd
	opZero
	opDouble
	opHalve
	opHalt
)

var core = map[string]op{
	"001": opRight,
	"002": opLeft,
	"003": opIncrement,
	"004": opDecrement,
	"005": opOutput,
	"006": opInput,
	"007": opLoopStart,
	"008": opLoopEnd,
}

var extended = map[string]op{
	"009": opZero,
	"010": opDouble,
	"011": opHalve,
	"012": opHalt,
}

var dialects = map[string]map[string]op{
	"0":   {},
	"0.1": core,
	"1":   merge(core, extended),
}

func merge(tables ...map[string]op) map[string]op {
	out := make(map[string]op)
	for _, table := range tables {
		for k, v := range table {
			out[k] = v
		}
	}
	return out
}

var active = struct {
	mu      sync.RWMutex
	version string
}{version: "1"}

// Versions lists the known dialects.
func Versions() []string {
	out := make([]string, 0, len(dialects))
	for v := range dialects {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ActivateVersion selects the dialect used by machines created with New.
func ActivateVersion(version string) error {
	if _, ok := dialects[version]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownVersion, version)
	}
	active.mu.Lock()
	defer active.mu.Unlock()
	active.version = version
	return nil
}

func ActiveVersion() string {
	active.mu.RLock()
	defer active.mu.RUnlock()
	return active.version
}

// Machine runs programs in one dialect.
type Machine struct {
	Version    string
	TapeLength int
	MaxSteps   int
}

// New returns a machine in the active dialect. Non-positive limits fall back
// to the defaults.
func New(tapeLength, maxSteps int) Machine {
	return Machine{Version: ActiveVersion(), TapeLength: tapeLength, MaxSteps: maxSteps}
}

// Result is the machine state after a run.
type Result struct {
	Tape      []float64
	Outputs   []float64
	Steps     int
	Halted    bool
	Exhausted bool
}

// Interpret runs source with the given inputs. Inputs are consumed in order;
// reading past the end yields 0. A run stops at the end of the program, on
// halt, or after MaxSteps instructions (Exhausted).
func (m Machine) Interpret(source string, inputs []float64) (Result, error) {
	table, ok := dialects[m.Version]
	if !ok {
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownVersion, m.Version)
	}
	tapeLength := m.TapeLength
	if tapeLength <= 0 {
		tapeLength = DefaultTapeLength
	}
	maxSteps := m.MaxSteps
	if maxSteps <= 0 {
		maxSteps = DefaultMaxSteps
	}

	program := make([]op, 0, len(source)/CodonLength)
	for i := 0; i+CodonLength <= len(source); i += CodonLength {
		program = append(program, table[source[i:i+CodonLength]])
	}
	jumps, err := matchLoops(program)
	if err != nil {
		return Result{}, err
	}

	res := Result{Tape: make([]float64, tapeLength)}
	ptr, nextInput := 0, 0
	for pc := 0; pc < len(program); pc++ {
		if res.Steps >= maxSteps {
			res.Exhausted = true
			break
		}
		res.Steps++
		switch program[pc] {
		case opRight:
			ptr = (ptr + 1) % tapeLength
		case opLeft:
			ptr = (ptr - 1 + tapeLength) % tapeLength
		case opIncrement:
			res.Tape[ptr]++
		case opDecrement:
			res.Tape[ptr]--
		case opOutput:
			res.Outputs = append(res.Outputs, res.Tape[ptr])
		case opInput:
			res.Tape[ptr] = 0
			if nextInput < len(inputs) {
				res.Tape[ptr] = inputs[nextInput]
				nextInput++
			}
		case opLoopStart:
			if res.Tape[ptr] == 0 {
				pc = jumps[pc]
			}
		case opLoopEnd:
			if res.Tape[ptr] != 0 {
				pc = jumps[pc]
			}
		case opZero:
			res.Tape[ptr] = 0
		case opDouble:
			res.Tape[ptr] *= 2
		case opHalve:
			res.Tape[ptr] /= 2
		case opHalt:
			res.Halted = true
			return res, nil
		}
	}
	return res, nil
}

func matchLoops(program []op) (map[int]int, error) {
	jumps := make(map[int]int)
	var stack []int
	for i, instr := range program {
		switch instr {
		case opLoopStart:
			stack = append(stack, i)
		case opLoopEnd:
			if len(stack) == 0 {
				return nil, fmt.Errorf("%w: close at codon %d", ErrUnbalancedLoop, i)
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			jumps[open] = i
			jumps[i] = open
		}
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("%w: open at codon %d", ErrUnbalancedLoop, stack[len(stack)-1])
	}
	return jumps, nil
}

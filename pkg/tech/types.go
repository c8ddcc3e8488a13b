package tech

import (
	"errors"
	"fmt"
	"strings"
)

// Kind is a technology family.
type Kind int

// enumeration of Kind
const (
	CMOSHP Kind = iota
	CMOSLP
	FinFETHP
	TFETHomo30
)

var kindNames = [...]string{
	CMOSHP:     "cmos-hp",
	CMOSLP:     "cmos-lp",
	FinFETHP:   "finfet-hp",
	TFETHomo30: "tfet-homo30nm",
}

// Kinds returns every known technology family.
func Kinds() []Kind {
	return []Kind{CMOSHP, CMOSLP, FinFETHP, TFETHomo30}
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// ParseKind returns the family with the given name, e.g. "cmos-hp".
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, k := range Kinds() {
		if kindNames[k] == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown technology %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Node is a technology node label in nanometers.
type Node int

func (n Node) String() string {
	return fmt.Sprintf("%dnm", int(n))
}

// Sigma selects the Monte-Carlo worst-case curve used for variation.
type Sigma int

// enumeration of Sigma
const (
	Sigma1 Sigma = 1
	Sigma2 Sigma = 2
	Sigma3 Sigma = 3
)

// Valid reports whether s is one of the characterized sigma levels.
func (s Sigma) Valid() bool {
	return s >= Sigma1 && s <= Sigma3
}

// ErrInvalidVariation is returned for a sigma level or mitigation factor out of range.
var ErrInvalidVariation = errors.New("invalid variation parameters")

// RangeError reports a supply voltage outside the supported range of a node.
type RangeError struct {
	Kind Kind
	Node Node
	// Vdd is the requested voltage in mV.
	Vdd int
	// Min and Max bound the supported range in mV.
	Min, Max int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("vdd %d mV out of range [%d, %d] for %s at %s", e.Vdd, e.Min, e.Max, e.Kind, e.Node)
}

// ModelDataError reports missing or inconsistent characterization data.
type ModelDataError struct {
	Kind   Kind
	Node   Node
	Reason string
	Err    error
}

func (e *ModelDataError) Error() string {
	msg := fmt.Sprintf("model data %s/%s: %s", e.Kind, e.Node, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ModelDataError) Unwrap() error {
	return e.Err
}

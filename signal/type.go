package signal

import (
	"encoding/json"
	"fmt"

	"github.com/cortexmesh/substrate/errors"
)

// Type classifies a signal within the substrate. The set is closed:
// routing, socket registration, and the wire format all key off it.
type Type int

const (
	// TypeSensory carries raw external input entering the substrate
	TypeSensory Type = iota
	// TypeInference carries reasoning results and decisions
	TypeInference
	// TypeHealth carries telemetry and system health data
	TypeHealth
	// TypeMemory carries recall and storage traffic
	TypeMemory
	// TypeIdentity carries self-model and identity data
	TypeIdentity
)

// typeNames is the canonical wire representation for each Type.
var typeNames = map[Type]string{
	TypeSensory:   "sensory",
	TypeInference: "inference",
	TypeHealth:    "health",
	TypeMemory:    "memory",
	TypeIdentity:  "identity",
}

// String returns the wire form of the type
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsValid reports whether t is one of the closed enumeration values
func (t Type) IsValid() bool {
	_, ok := typeNames[t]
	return ok
}

// ParseType restores a Type from its wire form
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, errors.WrapInvalid(
		fmt.Errorf("unknown signal type %q", s),
		"signal", "ParseType", "type lookup")
}

// MarshalJSON encodes the type as its wire string
func (t Type) MarshalJSON() ([]byte, error) {
	if !t.IsValid() {
		return nil, errors.WrapInvalid(
			fmt.Errorf("invalid signal type %d", int(t)),
			"signal", "MarshalJSON", "type validation")
	}
	return json.Marshal(t.String())
}

// UnmarshalJSON restores the type from its wire string
func (t *Type) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.WrapInvalid(err, "signal", "UnmarshalJSON", "type decode")
	}
	parsed, err := ParseType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

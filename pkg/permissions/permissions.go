// Package permissions defines the permission bitfield type and the catalog of
// named permission flags.
//
// Bitfield values cross every serialization boundary as decimal strings, never
// as native JSON numbers: several flags sit above bit 53, past the integer
// range a JSON consumer backed by IEEE-754 doubles can represent exactly.
package permissions

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Permissions is a permission bitfield. The zero value grants nothing.
type Permissions uint64

// Has reports whether every bit in perm is set.
func (p Permissions) Has(perm Permissions) bool {
	return p&perm == perm
}

// Add returns p with the bits of perm set.
func (p Permissions) Add(perm Permissions) Permissions {
	return p | perm
}

// Remove returns p with the bits of perm cleared.
func (p Permissions) Remove(perm Permissions) Permissions {
	return p &^ perm
}

// String returns the decimal representation of the bitfield.
func (p Permissions) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

// Parse converts a decimal-string bitfield into a Permissions value.
// Negative values, non-numeric input, and values that do not fit in 64 bits
// are rejected.
func Parse(s string) (Permissions, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid permission bitfield %q: must be a non-negative decimal integer", s)
	}
	return Permissions(v), nil
}

// MarshalJSON encodes the bitfield as a decimal string.
func (p Permissions) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts either a decimal string or, for lenient clients, a
// JSON integer. Integer input above 2^53 has already lost precision in a
// JavaScript producer, but rejecting it here would not get that precision
// back, so it is parsed as-is.
func (p *Permissions) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v, perr := Parse(s)
		if perr != nil {
			return perr
		}
		*p = v
		return nil
	}
	var n uint64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid permission bitfield %s", data)
	}
	*p = Permissions(n)
	return nil
}

// Package roles validates role mutation requests before they reach the
// directory service. Validation is structural only: partial reorders,
// non-contiguous positions, and any semantically surprising-but-well-formed
// request are forwarded verbatim; the directory service is the authority on
// semantics.
package roles

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/concordhq/concord/pkg/guild"
)

// MaxIDLength bounds a syntactically valid identity. Upstream IDs are
// snowflakes (20 digits or fewer); the bound is generous so alternative
// backends with UUID identities still pass.
const MaxIDLength = 64

// reorderEntry is one element of the reorder request body. Position stays raw
// so an integer-as-string from a lenient client parses while fractional and
// non-numeric values are still rejected per entry.
type reorderEntry struct {
	Role     string          `json:"role"`
	Position json.RawMessage `json:"position"`
}

// ValidID reports whether s is syntactically a plausible identity: non-empty,
// within length bounds, no whitespace.
func ValidID(s string) bool {
	if s == "" || len(s) > MaxIDLength {
		return false
	}
	return !strings.ContainsAny(s, " \t\r\n")
}

func parsePosition(raw json.RawMessage) (int64, error) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		return num.Int64()
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strconv.ParseInt(s, 10, 64)
	}
	return 0, fmt.Errorf("position is not an integer")
}

// ParseReorder validates a raw reorder body and converts it to directory
// positions. Fail-fast: any error here happens before a single directory
// call. The body must be a JSON array; each entry needs a valid role identity
// and an integer position; positions must be distinct within the request.
func ParseReorder(raw json.RawMessage) ([]guild.RolePosition, error) {
	var entries []reorderEntry
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		// entries == nil catches JSON null, which unmarshals without error
		// but is not a sequence.
		return nil, fmt.Errorf("%w: request body must be an array of role positions", guild.ErrInvalid)
	}

	out := make([]guild.RolePosition, 0, len(entries))
	seen := make(map[int64]string, len(entries))
	for i, e := range entries {
		if !ValidID(e.Role) {
			return nil, fmt.Errorf("%w: entry %d: invalid role id %q", guild.ErrInvalid, i, e.Role)
		}
		if len(e.Position) == 0 {
			return nil, fmt.Errorf("%w: entry %d: position is required", guild.ErrInvalid, i)
		}
		pos, err := parsePosition(e.Position)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: position must be an integer, got %s", guild.ErrInvalid, i, e.Position)
		}
		if prev, dup := seen[pos]; dup {
			return nil, fmt.Errorf("%w: entry %d: position %d already used by role %s", guild.ErrInvalid, i, pos, prev)
		}
		seen[pos] = e.Role
		out = append(out, guild.RolePosition{RoleID: e.Role, Position: int(pos)})
	}
	return out, nil
}

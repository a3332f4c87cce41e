/*
PURPOSE:
  Defines the identity types shared across Benchpress.
  An Identity names a benchmark; FullName() is the stable key used for
  persistence, grouping and baseline matching.

REQUIREMENTS:
  User-specified:
  - Benchmarks are addressed by group, name and parameters.
  - The fullname must be reproducible across runs so baselines match.

  Implementation-discovered:
  - Parameters must be rendered in a deterministic order (sorted keys),
    otherwise the same benchmark produces different fullnames.

ARCHITECTURE INTEGRATION:
  - Used by: internal/engine, internal/session, internal/storage
  - Shared across boundaries; no dependencies of its own.

ERROR HANDLING:
  - None (pure data structs).

USAGE:
  id := model.Identity{Group: "codec", Name: "decode", Params: map[string]string{"size": "4k"}}
  id.FullName() // "codec/decode[size=4k]"

RELATED FILES:
  - internal/storage/schema.go
  - internal/session/session.go

MAINTENANCE:
  - Update FullName() if the persisted naming scheme changes (breaks baselines).
*/

package model

import (
	"sort"
	"strings"
)

// Version is the persisted-schema version stamped into every saved run.
const Version = "1.0.0"

// Identity names one benchmark.
type Identity struct {
	Group  string            `json:"group" yaml:"group"`
	Name   string            `json:"name" yaml:"name"`
	Params map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// FullName returns the canonical "group/name[k=v,...]" key.
// Parameter keys are sorted so the result is stable.
func (id Identity) FullName() string {
	var b strings.Builder
	if id.Group != "" {
		b.WriteString(id.Group)
		b.WriteByte('/')
	}
	b.WriteString(id.Name)
	if len(id.Params) > 0 {
		keys := make([]string, 0, len(id.Params))
		for k := range id.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('[')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(k)
			b.WriteByte('=')
			b.WriteString(id.Params[k])
		}
		b.WriteByte(']')
	}
	return b.String()
}

// ParamString renders the parameters alone ("k=v,..."), used by the
// "param" grouping mode. Empty when the benchmark has no parameters.
func (id Identity) ParamString() string {
	if len(id.Params) == 0 {
		return ""
	}
	full := id.FullName()
	open := strings.IndexByte(full, '[')
	return full[open+1 : len(full)-1]
}

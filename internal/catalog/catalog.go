// Package catalog holds the read-only metro station catalog: the canonical
// station names and the alias table that maps colloquial spellings and
// native-script transliterations back to canonical names.
//
// The catalog is immutable after construction and safe for concurrent use.
package catalog

import (
	"fmt"
	"sort"
	"strings"
)

// Alias is a single alias-to-canonical-name mapping.
type Alias struct {
	// Alias is the colloquial or transliterated form, stored lowercased.
	Alias string
	// Station is the canonical station name the alias resolves to.
	Station string
}

// Catalog is an immutable set of canonical station names plus an alias table.
type Catalog struct {
	stations  []string
	aliases   []Alias
	canonical map[string]string // lowercased canonical name -> canonical name
	byAlias   map[string]string // lowercased alias -> canonical name
}

// New builds a Catalog from canonical station names and an alias table.
// Every alias must resolve to a listed station; unknown targets are an error
// so that a typo in a data file surfaces at startup instead of silently
// producing stations no booking can ever reference.
func New(stations []string, aliases map[string]string) (*Catalog, error) {
	if len(stations) == 0 {
		return nil, fmt.Errorf("catalog: no stations given")
	}
	c := &Catalog{
		stations:  make([]string, len(stations)),
		canonical: make(map[string]string, len(stations)),
		byAlias:   make(map[string]string, len(aliases)),
	}
	copy(c.stations, stations)
	for _, s := range stations {
		c.canonical[strings.ToLower(s)] = s
	}
	for alias, target := range aliases {
		canon, ok := c.canonical[strings.ToLower(target)]
		if !ok {
			return nil, fmt.Errorf("catalog: alias %q targets unknown station %q", alias, target)
		}
		key := strings.ToLower(strings.TrimSpace(alias))
		if key == "" {
			return nil, fmt.Errorf("catalog: empty alias for station %q", target)
		}
		c.byAlias[key] = canon
		c.aliases = append(c.aliases, Alias{Alias: key, Station: canon})
	}
	// Map iteration order is random; keep the slice deterministic.
	sort.Slice(c.aliases, func(i, j int) bool { return c.aliases[i].Alias < c.aliases[j].Alias })
	return c, nil
}

// Stations returns a copy of the canonical station names in catalog order.
func (c *Catalog) Stations() []string {
	out := make([]string, len(c.stations))
	copy(out, c.stations)
	return out
}

// Aliases returns a copy of the alias table, sorted by alias.
func (c *Catalog) Aliases() []Alias {
	out := make([]Alias, len(c.aliases))
	copy(out, c.aliases)
	return out
}

// Len reports the number of canonical stations.
func (c *Catalog) Len() int { return len(c.stations) }

// Has reports whether name is a canonical station, compared case-insensitively.
func (c *Catalog) Has(name string) bool {
	_, ok := c.canonical[strings.ToLower(name)]
	return ok
}

// Resolve maps name, which may be a canonical station or an alias in any
// supported script, to its canonical form. The second return value reports
// whether the name was recognised at all.
func (c *Catalog) Resolve(name string) (string, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if canon, ok := c.canonical[key]; ok {
		return canon, true
	}
	if canon, ok := c.byAlias[key]; ok {
		return canon, true
	}
	return "", false
}

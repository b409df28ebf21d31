package cache

import (
	"sort"

	"github.com/maruel/natural"

	"cn1css/cascade"
)

// Status of element relative to previous build.
//
// ENUM(unchanged, added, modified, deleted)
type Status int

// Changes maps element names to their status.
type Changes map[string]Status

// Classify compares current checksums with previous ones.
func Classify(prev, cur map[string]string) Changes {
	res := make(Changes, len(cur))
	for name, sum := range cur {
		old, ok := prev[name]
		switch {
		case !ok:
			res[name] = StatusAdded
		case old != sum:
			res[name] = StatusModified
		default:
			res[name] = StatusUnchanged
		}
	}
	for name := range prev {
		if _, ok := cur[name]; !ok {
			res[name] = StatusDeleted
		}
	}
	return res
}

// With returns sorted names having given status.
func (c Changes) With(s Status) []string {
	var res []string
	for name, st := range c {
		if st == s {
			res = append(res, name)
		}
	}
	sort.Sort(natural.StringSlice(res))
	return res
}

// Dirty returns sorted names of present elements that must be rebuilt: added
// and modified ones plus everything deriving from them, directly or through
// other elements.
func (c Changes) Dirty(g *cascade.Graph) []string {
	dirty := map[string]bool{}
	for name, st := range c {
		if st == StatusAdded || st == StatusModified || st == StatusDeleted {
			dirty[name] = true
		}
	}
	names := g.Names()
	for changed := true; changed; {
		changed = false
		for _, name := range names {
			if dirty[name] {
				continue
			}
			for _, target := range g.Derives(name) {
				if dirty[target] {
					dirty[name], changed = true, true
					break
				}
			}
		}
	}
	var res []string
	for _, name := range names {
		if dirty[name] {
			res = append(res, name)
		}
	}
	sort.Sort(natural.StringSlice(res))
	return res
}

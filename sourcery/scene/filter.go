package scene

import (
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/sourcery/sourcery/metadata"
	"golang.org/x/exp/slices"
)

// Filter selects tagged objects. When any collision flag is set, only the
// categories whose flag is set are shown.
type Filter struct {
	Name   string
	Invert bool

	Invisible bool
	Mesh      bool
	Hull      bool
	Box       bool
	None      bool
}

func (f Filter) filtersModes() bool {
	return f.Mesh || f.Hull || f.Box || f.None
}

func (f Filter) matchName(name string) bool {
	if f.Name == "" {
		return true
	}
	pattern := "*" + strings.ToLower(f.Name) + "*"
	ok, err := filepath.Match(pattern, strings.ToLower(name))
	if err != nil {
		ok = strings.Contains(strings.ToLower(name), strings.ToLower(f.Name))
	}
	return ok != f.Invert
}

func (f Filter) matchCategory(meta *metadata.ObjectMetadata) bool {
	if !f.filtersModes() {
		return true
	}
	switch {
	case !f.Invisible && !meta.Visible:
		return false
	case !f.Mesh && meta.CollisionMode == metadata.CollisionMesh:
		return false
	case !f.Hull && meta.CollisionMode == metadata.CollisionHull:
		return false
	case !f.Box && meta.CollisionMode == metadata.CollisionBox:
		return false
	case !f.None && meta.CollisionMode == metadata.CollisionNone:
		return false
	}
	return true
}

// FilterObjects returns the sorted names of tagged objects accepted by f.
func (s *Store) FilterObjects(f Filter) []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var names []string
	for name, obj := range s.objects {
		if !obj.HasData() {
			continue
		}
		if f.matchName(name) && f.matchCategory(obj.Metadata) {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

package scene

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/sourcery/sourcery/core"
	"github.com/spaghettifunk/sourcery/sourcery/metadata"
	"golang.org/x/exp/slices"
)

type ObjectType string

const (
	ObjectTypeMesh  ObjectType = "MESH"
	ObjectTypeEmpty ObjectType = "EMPTY"
	ObjectTypeLight ObjectType = "LIGHT"
)

// Object is a scene object as seen by the exporter. Only meshes carry
// metadata.
type Object struct {
	Name            string
	Type            ObjectType
	Metadata        *metadata.ObjectMetadata
	ColorAttributes []string
}

func (o *Object) CanHaveData() bool {
	return o.Type == ObjectTypeMesh
}

func (o *Object) HasData() bool {
	return o.CanHaveData() && o.Metadata != nil && !o.Metadata.IsEmpty()
}

// Store answers metadata queries for collections and objects by name.
type Store struct {
	collections map[string]*metadata.CollectionMetadata
	objects     map[string]*Object

	mutex sync.RWMutex
}

func NewStore() *Store {
	return &Store{
		collections: make(map[string]*metadata.CollectionMetadata),
		objects:     make(map[string]*Object),
	}
}

// Collection returns the metadata attached to the named collection.
func (s *Store) Collection(name string) (*metadata.CollectionMetadata, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	c, ok := s.collections[name]
	return c, ok
}

// AttachCollection returns the collection record, creating one with
// defaults on first use.
func (s *Store) AttachCollection(name string) *metadata.CollectionMetadata {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = metadata.NewCollectionMetadata()
		s.collections[name] = c
	}
	return c
}

func (s *Store) DetachCollection(name string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	delete(s.collections, name)
}

func (s *Store) CollectionNames() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// AddObject registers an object. Meshes get a default metadata record.
func (s *Store) AddObject(name string, typ ObjectType, colorAttributes ...string) *Object {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	obj := &Object{
		Name:            name,
		Type:            typ,
		ColorAttributes: colorAttributes,
	}
	if obj.CanHaveData() {
		obj.Metadata = metadata.NewObjectMetadata()
	}
	s.objects[name] = obj
	return obj
}

func (s *Store) Object(name string) (*Object, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	obj, ok := s.objects[name]
	return obj, ok
}

// ObjectMetadata returns the record of a mesh object. Unknown objects and
// objects that cannot carry data report false.
func (s *Store) ObjectMetadata(name string) (*metadata.ObjectMetadata, bool) {
	obj, ok := s.Object(name)
	if !ok || !obj.CanHaveData() || obj.Metadata == nil {
		return nil, false
	}
	return obj.Metadata, true
}

func (s *Store) ObjectNames() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// TagObjects applies tags to every named mesh and returns the name of the
// last object tagged. Non-mesh objects are skipped; an error is returned
// only when nothing could be tagged.
func (s *Store) TagObjects(names []string, tags metadata.Tags) (string, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	last := ""
	for _, name := range names {
		obj, ok := s.objects[name]
		if !ok || !obj.CanHaveData() {
			core.LogDebug("object '%s' cannot be tagged", name)
			continue
		}
		if obj.Metadata == nil {
			obj.Metadata = metadata.NewObjectMetadata()
		}
		obj.Metadata.Tag(tags)
		last = name
	}
	if last == "" {
		return "", fmt.Errorf("%w: none of %v", core.ErrNotMesh, names)
	}
	return last, nil
}

// ClearTags resets the metadata of the named objects and reports how many
// records were reset.
func (s *Store) ClearTags(names []string) int {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	n := 0
	for _, name := range names {
		obj, ok := s.objects[name]
		if !ok || !obj.HasData() {
			continue
		}
		obj.Metadata.Reset()
		n++
	}
	return n
}

// ColorAttributes returns the source color attribute names of an object in
// mesh order.
func (s *Store) ColorAttributes(name string) []string {
	obj, ok := s.Object(name)
	if !ok {
		return nil
	}
	return obj.ColorAttributes
}

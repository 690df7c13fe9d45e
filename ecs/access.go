package ecs

import (
	"reflect"
	"sort"
)

// TypeKind distinguishes component claims from resource claims.
type TypeKind uint8

const (
	KindComponent TypeKind = iota
	KindResource
)

func (k TypeKind) String() string {
	switch k {
	case KindComponent:
		return "component"
	case KindResource:
		return "resource"
	default:
		return "unknown"
	}
}

// TypeKey identifies a component type or a resource type.
type TypeKey struct {
	Kind TypeKind
	Type reflect.Type
}

// ComponentKey returns the key for component type T.
func ComponentKey[T any]() TypeKey {
	return TypeKey{Kind: KindComponent, Type: reflect.TypeFor[T]()}
}

// ResourceKey returns the key for resource type T.
func ResourceKey[T any]() TypeKey {
	return TypeKey{Kind: KindResource, Type: reflect.TypeFor[T]()}
}

// EventKey returns the key for the event queue of T.
func EventKey[T any]() TypeKey {
	return ResourceKey[Events[T]]()
}

func (k TypeKey) String() string {
	return k.Kind.String() + " " + k.Type.String()
}

func (k TypeKey) less(other TypeKey) bool {
	if k.Kind != other.Kind {
		return k.Kind < other.Kind
	}
	if k.Type.String() != other.Type.String() {
		return k.Type.String() < other.Type.String()
	}
	return k.Type.PkgPath() < other.Type.PkgPath()
}

// AccessMode is the strength of a claim. Write implies read.
type AccessMode uint8

const (
	AccessRead AccessMode = iota + 1
	AccessWrite
)

func (m AccessMode) String() string {
	switch m {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	default:
		return "none"
	}
}

// Claim is one entry of an access descriptor.
type Claim struct {
	Key  TypeKey
	Mode AccessMode
}

func (c Claim) String() string {
	return c.Mode.String() + " " + c.Key.String()
}

// Access is a system's closed declaration of the component and resource types
// it touches. A type declared both read and write collapses to write.
type Access struct {
	claims map[TypeKey]AccessMode
}

// NewAccess creates an empty access descriptor.
func NewAccess() *Access {
	return &Access{claims: make(map[TypeKey]AccessMode)}
}

// Read adds read claims.
func (a *Access) Read(keys ...TypeKey) *Access {
	for _, key := range keys {
		a.add(key, AccessRead)
	}
	return a
}

// Write adds write claims.
func (a *Access) Write(keys ...TypeKey) *Access {
	for _, key := range keys {
		a.add(key, AccessWrite)
	}
	return a
}

func (a *Access) add(key TypeKey, mode AccessMode) {
	if a.claims == nil {
		a.claims = make(map[TypeKey]AccessMode)
	}
	if a.claims[key] < mode {
		a.claims[key] = mode
	}
}

// Mode returns the claim mode for key.
func (a *Access) Mode(key TypeKey) (AccessMode, bool) {
	if a == nil {
		return 0, false
	}
	mode, ok := a.claims[key]
	return mode, ok
}

// Allows reports whether the descriptor permits mode on key.
func (a *Access) Allows(key TypeKey, mode AccessMode) bool {
	have, ok := a.Mode(key)
	return ok && have >= mode
}

// Len returns the number of claimed keys.
func (a *Access) Len() int {
	if a == nil {
		return 0
	}
	return len(a.claims)
}

// Claims returns every claim sorted by kind then type name.
func (a *Access) Claims() []Claim {
	if a == nil {
		return nil
	}
	claims := make([]Claim, 0, len(a.claims))
	for key, mode := range a.claims {
		claims = append(claims, Claim{Key: key, Mode: mode})
	}
	sort.Slice(claims, func(i, j int) bool {
		return claims[i].Key.less(claims[j].Key)
	})
	return claims
}

// Merge adds all claims of other into a.
func (a *Access) Merge(other *Access) *Access {
	if other == nil {
		return a
	}
	for key, mode := range other.claims {
		a.add(key, mode)
	}
	return a
}

// Clone returns an independent copy.
func (a *Access) Clone() *Access {
	return NewAccess().Merge(a)
}

// Uncovered returns the claims of other that a does not permit.
func (a *Access) Uncovered(other *Access) []Claim {
	var missing []Claim
	for _, claim := range other.Claims() {
		if !a.Allows(claim.Key, claim.Mode) {
			missing = append(missing, claim)
		}
	}
	return missing
}

// Conflicts returns the keys shared with other where at least one side writes.
func (a *Access) Conflicts(other *Access) []TypeKey {
	if a == nil || other == nil {
		return nil
	}
	var keys []TypeKey
	for key, mode := range a.claims {
		otherMode, ok := other.claims[key]
		if !ok {
			continue
		}
		if mode == AccessWrite || otherMode == AccessWrite {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].less(keys[j])
	})
	return keys
}

// ConflictsWith reports whether a and other cannot share a stage.
func (a *Access) ConflictsWith(other *Access) bool {
	if a == nil || other == nil {
		return false
	}
	small, large := a, other
	if len(small.claims) > len(large.claims) {
		small, large = large, small
	}
	for key, mode := range small.claims {
		if otherMode, ok := large.claims[key]; ok && (mode == AccessWrite || otherMode == AccessWrite) {
			return true
		}
	}
	return false
}

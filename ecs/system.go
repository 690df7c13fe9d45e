package ecs

import (
	"reflect"

	"go.uber.org/zap"
)

//go:generate go run go.uber.org/mock/mockgen -destination=ecsmock/system_mock.go -package=ecsmock . System,AccessDeclarer

// System represents a behavior that operates on entities with specific components.
// User-defined systems implement this interface and declare their data access
// through parameter fields (Read, Write, Res, ResMut, Query, EventReader,
// EventWriter), by implementing AccessDeclarer, or both. Any persistent state a
// system needs lives in a resource or component, not in the scheduler.
type System interface {
	Execute(frame *UpdateFrame) error
}

// AccessDeclarer is implemented by systems that declare their access
// explicitly. When a system also has parameter fields, every field claim must
// be covered by the declaration.
type AccessDeclarer interface {
	Access() *Access
}

// Named lets a system choose its identity. Otherwise the identity is the
// system's type name.
type Named interface {
	Name() string
}

// SystemId is the stable identity of a registered system.
type SystemId string

// Condition gates a system for one frame. It must not mutate storage.
type Condition func(frame *UpdateFrame) bool

// ResourceExists is a Condition that holds while a resource of type T exists.
func ResourceExists[T any]() Condition {
	return func(frame *UpdateFrame) bool {
		return HasResource[T](frame.scheduler.storage.resources)
	}
}

// ErrorHandler receives the failures of a system.
type ErrorHandler func(err *SystemError)

// SystemFunc adapts a function and an explicit access descriptor to System.
type SystemFunc struct {
	name   string
	access *Access
	fn     func(frame *UpdateFrame) error
}

// NewSystemFunc creates a closure system. A nil access declares no claims.
func NewSystemFunc(name string, access *Access, fn func(frame *UpdateFrame) error) *SystemFunc {
	if access == nil {
		access = NewAccess()
	}
	return &SystemFunc{name: name, access: access, fn: fn}
}

func (f *SystemFunc) Name() string {
	return f.name
}

func (f *SystemFunc) Access() *Access {
	return f.access
}

func (f *SystemFunc) Execute(frame *UpdateFrame) error {
	return f.fn(frame)
}

type systemConfig struct {
	name       string
	before     []SystemId
	after      []SystemId
	conditions []Condition
	onError    []ErrorHandler
}

// SystemOption configures one registration.
type SystemOption func(*systemConfig)

// WithName overrides the system identity.
func WithName(name string) SystemOption {
	return func(c *systemConfig) {
		c.name = name
	}
}

// Before orders the system ahead of the given systems.
func Before(ids ...SystemId) SystemOption {
	return func(c *systemConfig) {
		c.before = append(c.before, ids...)
	}
}

// After orders the system behind the given systems.
func After(ids ...SystemId) SystemOption {
	return func(c *systemConfig) {
		c.after = append(c.after, ids...)
	}
}

// RunIf skips the system for frames where cond returns false. Multiple
// conditions must all hold.
func RunIf(cond Condition) SystemOption {
	return func(c *systemConfig) {
		c.conditions = append(c.conditions, cond)
	}
}

// OnError installs a handler for the system's failures.
func OnError(handler ErrorHandler) SystemOption {
	return func(c *systemConfig) {
		c.onError = append(c.onError, handler)
	}
}

// systemName derives the default identity of a system.
func systemName(system System) string {
	if named, ok := system.(Named); ok {
		return named.Name()
	}
	systemType := reflect.TypeOf(system)
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	return systemType.Name()
}

// systemEntry is everything the scheduler knows about a registered system.
type systemEntry struct {
	id     SystemId
	order  int
	system System
	// fields holds the claims of the bound parameter fields; access is the
	// effective descriptor resolved at build time.
	fields   *Access
	access   *Access
	required []reflect.Type
	config   systemConfig
	stats    systemStatsInternal
	logger   *zap.Logger
}

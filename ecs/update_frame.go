package ecs

import (
	"go.uber.org/zap"
)

// UpdateFrame is handed to each system invocation. It is only valid for the
// duration of that invocation.
type UpdateFrame struct {
	DeltaTime float64
	Frame     uint64
	Commands  *Commands

	scheduler *Scheduler
	system    *systemEntry
}

// System returns the identity of the executing system.
func (f *UpdateFrame) System() SystemId {
	if f.system == nil {
		return ""
	}
	return f.system.id
}

// Logger returns the scheduler logger annotated with the system identity.
func (f *UpdateFrame) Logger() *zap.Logger {
	if f.system != nil && f.system.logger != nil {
		return f.system.logger
	}
	return f.scheduler.logger
}

// RequestExit asks Run to stop after the current frame.
func (f *UpdateFrame) RequestExit() {
	if exit := ResourceMut[Exit](f.scheduler.storage.resources); exit != nil {
		exit.Requested = true
		return
	}
	InsertResource(f.scheduler.storage.resources, Exit{Requested: true})
}

// IsAlive reports whether e is a live entity. Liveness carries no claim.
func (f *UpdateFrame) IsAlive(e Entity) bool {
	return f.scheduler.storage.entities.IsAlive(e)
}

func (f *UpdateFrame) check(key TypeKey, mode AccessMode) {
	if f.system == nil {
		return
	}
	if !f.system.access.Allows(key, mode) {
		panic(&AccessViolationError{System: f.system.id, Claim: Claim{Key: key, Mode: mode}})
	}
}

// ComponentsOf returns the store for T for reading. The executing system must
// have declared at least read access to T; otherwise it panics with
// *AccessViolationError, which the Scheduler treats as fatal.
func ComponentsOf[T any](f *UpdateFrame) *ComponentStore[T] {
	f.check(ComponentKey[T](), AccessRead)
	return Store[T](f.scheduler.storage)
}

// ComponentsMutOf returns the store for T for writing. The executing system
// must have declared write access to T.
func ComponentsMutOf[T any](f *UpdateFrame) *ComponentStore[T] {
	f.check(ComponentKey[T](), AccessWrite)
	return Store[T](f.scheduler.storage)
}

// ResourceOf returns a copy of resource T, checked against the system's
// declared access.
func ResourceOf[T any](f *UpdateFrame) (T, bool) {
	f.check(ResourceKey[T](), AccessRead)
	return GetResource[T](f.scheduler.storage.resources)
}

// ResourceMutOf returns a pointer to resource T, checked against the system's
// declared access.
func ResourceMutOf[T any](f *UpdateFrame) *T {
	f.check(ResourceKey[T](), AccessWrite)
	return ResourceMut[T](f.scheduler.storage.resources)
}

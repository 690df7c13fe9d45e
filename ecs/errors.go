package ecs

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/rotisserie/eris"
)

// ErrConfiguration is matched (errors.Is) by every configuration error. These
// are fatal and always surface before a frame runs, or abort the frame loop.
var ErrConfiguration = eris.New("ecs configuration error")

// ErrShutdown is returned by operations on a scheduler that was shut down.
var ErrShutdown = eris.New("scheduler is shut down")

// CycleError reports explicit ordering constraints that form a cycle.
// Systems lists the cycle in edge order; the first system is repeated implicitly.
type CycleError struct {
	Systems []SystemId
}

func (e *CycleError) Error() string {
	names := make([]string, 0, len(e.Systems)+1)
	for _, id := range e.Systems {
		names = append(names, string(id))
	}
	if len(e.Systems) > 0 {
		names = append(names, string(e.Systems[0]))
	}
	return "cyclic ordering constraint: " + strings.Join(names, " -> ")
}

func (e *CycleError) Is(target error) bool { return target == ErrConfiguration }

// DuplicateSystemError reports two systems registered under one identity.
type DuplicateSystemError struct {
	System SystemId
}

func (e *DuplicateSystemError) Error() string {
	return fmt.Sprintf("duplicate system identity %q", e.System)
}

func (e *DuplicateSystemError) Is(target error) bool { return target == ErrConfiguration }

// UnknownSystemError reports an ordering constraint naming a system that is
// not registered.
type UnknownSystemError struct {
	System    SystemId
	Reference SystemId
}

func (e *UnknownSystemError) Error() string {
	return fmt.Sprintf("system %q is ordered relative to unknown system %q", e.System, e.Reference)
}

func (e *UnknownSystemError) Is(target error) bool { return target == ErrConfiguration }

// MissingResourceError reports a required resource that is absent.
type MissingResourceError struct {
	Resource reflect.Type
	Systems  []SystemId
}

func (e *MissingResourceError) Error() string {
	if len(e.Systems) == 0 {
		return fmt.Sprintf("required resource %s is missing", e.Resource)
	}
	names := make([]string, len(e.Systems))
	for i, id := range e.Systems {
		names[i] = string(id)
	}
	return fmt.Sprintf("required resource %s is missing (required by %s)", e.Resource, strings.Join(names, ", "))
}

func (e *MissingResourceError) Is(target error) bool { return target == ErrConfiguration }

// AccessViolationError reports a system touching a type outside its declared
// access, either found by the build-time cross check or at run time.
type AccessViolationError struct {
	System SystemId
	Claim  Claim
}

func (e *AccessViolationError) Error() string {
	return fmt.Sprintf("system %q uses %s without declaring it", e.System, e.Claim)
}

func (e *AccessViolationError) Is(target error) bool { return target == ErrConfiguration }

// UnregisteredComponentError reports use of a component type that was never
// registered with the ComponentRegistry.
type UnregisteredComponentError struct {
	Type reflect.Type
}

func (e *UnregisteredComponentError) Error() string {
	return "component type " + e.Type.String() + " not registered"
}

func (e *UnregisteredComponentError) Is(target error) bool { return target == ErrConfiguration }

// InvalidParamError reports a malformed system parameter field.
type InvalidParamError struct {
	System SystemId
	Field  string
	Reason string
}

func (e *InvalidParamError) Error() string {
	return fmt.Sprintf("system %q field %s: %s", e.System, e.Field, e.Reason)
}

func (e *InvalidParamError) Is(target error) bool { return target == ErrConfiguration }

// CommandError is a panic raised while applying a queued command, such as a
// Defer closure. System is the system that queued it, empty for host commands.
type CommandError struct {
	System  SystemId
	Command string
	Panic   any
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s command panicked: %v", e.Command, e.Panic)
}

// Unwrap exposes a panic value that is itself an error.
func (e *CommandError) Unwrap() error {
	if err, ok := e.Panic.(error); ok {
		return err
	}
	return nil
}

// SystemError is a runtime failure of one system invocation.
type SystemError struct {
	System SystemId
	Frame  uint64
	Err    error
}

func (e *SystemError) Error() string {
	return fmt.Sprintf("system %q failed in frame %d: %v", e.System, e.Frame, e.Err)
}

func (e *SystemError) Unwrap() error { return e.Err }

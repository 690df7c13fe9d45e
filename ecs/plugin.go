package ecs

import (
	"reflect"

	"github.com/rotisserie/eris"
)

// Plugin bundles resources and systems that are installed together.
type Plugin interface {
	Install(s *Scheduler) error
}

// PluginFunc adapts a function to Plugin.
type PluginFunc func(s *Scheduler) error

func (f PluginFunc) Install(s *Scheduler) error {
	return f(s)
}

// AddPlugins installs plugins in order, stopping at the first failure.
func (s *Scheduler) AddPlugins(plugins ...Plugin) error {
	for i, plugin := range plugins {
		if err := plugin.Install(s); err != nil {
			return eris.Wrapf(err, "install plugin %d", i)
		}
	}
	return nil
}

// InitResource inserts the zero value of T unless a T already exists.
func InitResource[T any](s *Scheduler) *T {
	return InitResourceWith(s, func() T {
		var zero T
		return zero
	})
}

// InitResourceWith inserts the value built by fn unless a T already exists.
func InitResourceWith[T any](s *Scheduler, fn func() T) *T {
	res := s.storage.resources
	if !HasResource[T](res) {
		InsertResource(res, fn())
	}
	return ResourceMut[T](res)
}

// RequireResource marks T as required: its absence fails Build and every
// frame with a MissingResourceError.
func RequireResource[T any](s *Scheduler) {
	t := reflect.TypeFor[T]()
	for _, existing := range s.required {
		if existing == t {
			return
		}
	}
	s.required = append(s.required, t)
}

package ecs

import (
	"reflect"
)

type commandKind uint8

const (
	cmdSpawn commandKind = iota
	cmdDespawn
	cmdAddComponent
	cmdRemoveComponent
	cmdInsertResource
	cmdRemoveResource
	cmdDefer
)

func (k commandKind) String() string {
	switch k {
	case cmdSpawn:
		return "spawn"
	case cmdDespawn:
		return "despawn"
	case cmdAddComponent:
		return "add_component"
	case cmdRemoveComponent:
		return "remove_component"
	case cmdInsertResource:
		return "insert_resource"
	case cmdRemoveResource:
		return "remove_resource"
	case cmdDefer:
		return "defer"
	default:
		return "unknown"
	}
}

// command is one tagged record of the buffer. Only the fields relevant to
// kind are set.
type command struct {
	kind       commandKind
	entity     Entity
	components []any
	typ        reflect.Type
	value      any
	fn         func(*Storage)
	origin     SystemId
}

// Commands is an append-only log of structural mutations produced while
// systems run. The Scheduler applies it in FIFO order after every stage, so a
// system always observes a stable storage shape for its whole invocation.
type Commands struct {
	storage  *Storage
	queue    []command
	origin   SystemId
	failures []*CommandError
}

// NewCommands creates an empty buffer targeting storage. The Scheduler owns
// one per world; standalone buffers are useful for hosts and tests.
func NewCommands(storage *Storage) *Commands {
	return &Commands{
		storage: storage,
		queue:   make([]command, 0, 64),
	}
}

// Spawn queues the creation of an entity with the given components and returns
// its identifier immediately. The entity is not alive until the next flush.
// Component types must already be registered.
func (c *Commands) Spawn(components ...any) Entity {
	for _, component := range components {
		c.checkRegistered(componentTypeOf(component))
	}
	e := c.storage.entities.Reserve()
	c.push(command{kind: cmdSpawn, entity: e, components: components})
	return e
}

// Despawn queues the destruction of e and all its components.
func (c *Commands) Despawn(e Entity) {
	c.push(command{kind: cmdDespawn, entity: e})
}

// AddComponent queues attaching component to e, overwriting an existing value.
func (c *Commands) AddComponent(e Entity, component any) {
	c.checkRegistered(componentTypeOf(component))
	c.push(command{kind: cmdAddComponent, entity: e, value: component})
}

// RemoveComponent queues detaching the component of type compType from e.
func (c *Commands) RemoveComponent(e Entity, compType reflect.Type) {
	c.push(command{kind: cmdRemoveComponent, entity: e, typ: compType})
}

// RemoveComponentOf queues detaching the component of type T from e.
func RemoveComponentOf[T any](c *Commands, e Entity) {
	c.RemoveComponent(e, reflect.TypeFor[T]())
}

// InsertResource queues inserting or replacing a resource.
func (c *Commands) InsertResource(value any) {
	if value == nil {
		panic("cannot insert nil resource")
	}
	c.push(command{kind: cmdInsertResource, value: value})
}

// RemoveResource queues removing the resource of type t.
func (c *Commands) RemoveResource(t reflect.Type) {
	c.push(command{kind: cmdRemoveResource, typ: t})
}

// Defer queues a function executed at the flush point, in order with the
// other commands.
func (c *Commands) Defer(fn func()) {
	c.push(command{kind: cmdDefer, fn: func(*Storage) { fn() }})
}

// Apply queues a function that receives the storage at the flush point.
func (c *Commands) Apply(fn func(*Storage)) {
	c.push(command{kind: cmdDefer, fn: fn})
}

// Len returns the number of pending commands.
func (c *Commands) Len() int {
	return len(c.queue)
}

func (c *Commands) push(cmd command) {
	cmd.origin = c.origin
	if !cmd.entity.IsZero() {
		c.storage.entities.pin(cmd.entity)
	}
	c.queue = append(c.queue, cmd)
}

func (c *Commands) checkRegistered(t reflect.Type) {
	if !c.storage.registry.IsRegistered(t) {
		panic(&UnregisteredComponentError{Type: t})
	}
}

// Flush applies every pending command in FIFO order and resets the buffer.
// Commands targeting stale entities are skipped; the counts of applied and
// skipped commands are returned. A command that panics is counted as skipped
// and recorded in Failures; the remaining commands still apply.
func (c *Commands) Flush() (applied, skipped int) {
	c.failures = c.failures[:0]
	// Commands queued by deferred functions are applied in the same flush.
	for i := 0; i < len(c.queue); i++ {
		cmd := c.queue[i]
		if c.applySafe(cmd) {
			applied++
		} else {
			skipped++
		}
		if !cmd.entity.IsZero() {
			c.storage.entities.unpin(cmd.entity)
		}
		c.queue[i] = command{}
	}
	c.queue = c.queue[:0]
	return applied, skipped
}

// Failures returns the commands that panicked during the last Flush.
func (c *Commands) Failures() []*CommandError {
	return c.failures
}

func (c *Commands) applySafe(cmd command) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			c.failures = append(c.failures, &CommandError{
				System:  cmd.origin,
				Command: cmd.kind.String(),
				Panic:   r,
			})
			ok = false
		}
	}()
	return c.apply(cmd)
}

func (c *Commands) apply(cmd command) bool {
	s := c.storage
	switch cmd.kind {
	case cmdSpawn:
		return s.spawnReserved(cmd.entity, cmd.components)
	case cmdDespawn:
		return s.Despawn(cmd.entity)
	case cmdAddComponent:
		return s.AddComponent(cmd.entity, cmd.value)
	case cmdRemoveComponent:
		return s.RemoveComponent(cmd.entity, cmd.typ)
	case cmdInsertResource:
		s.resources.Insert(cmd.value)
		return true
	case cmdRemoveResource:
		return s.resources.Remove(cmd.typ)
	case cmdDefer:
		cmd.fn(s)
		return true
	}
	return false
}

// discard drops pending commands without applying them, cancelling reserved
// entities.
func (c *Commands) discard() {
	for i, cmd := range c.queue {
		if cmd.kind == cmdSpawn {
			c.storage.entities.Destroy(cmd.entity)
		}
		if !cmd.entity.IsZero() {
			c.storage.entities.unpin(cmd.entity)
		}
		c.queue[i] = command{}
	}
	c.queue = c.queue[:0]
}

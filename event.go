package blocks

import "reflect"

// Event is the marker type for values that flow through a graph. Any Go
// value may be an event; routing is keyed on its runtime type, so events
// are conventionally small structs or pointers to structs.
type Event = any

// TypeKey identifies an event's runtime type for routing purposes. Two
// events route identically iff TypeKeyOf reports the same TypeKey for
// both, or one's concrete type implements the other's interface TypeKey
// (see Graph's dispatch resolution).
type TypeKey = reflect.Type

// TypeKeyOf returns the routing key for a concrete event value. It panics
// if e is nil, since a nil event has no type to route on.
func TypeKeyOf(e Event) TypeKey {
	t := reflect.TypeOf(e)
	if t == nil {
		panic("blocks: cannot route a nil event")
	}
	return t
}

// typeKeyOfType returns the TypeKey for the static type T, including
// interface types (I in NewProcessor[I, O] may be an interface). Passing
// Event itself (i.e. `any`) yields the empty interface's TypeKey, which
// every concrete type implements.
func typeKeyOfType[T any]() TypeKey {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// matchesTerminal reports whether e's concrete type is, or implements, the
// terminal TypeKey t.
func matchesTerminal(t TypeKey, e Event) bool {
	if t == nil {
		return false
	}
	et := reflect.TypeOf(e)
	if et == nil {
		return false
	}
	if et == t {
		return true
	}
	if t.Kind() == reflect.Interface {
		return et.Implements(t)
	}
	return false
}

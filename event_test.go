package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type eventA struct{ N int }
type eventB struct{ S string }

type sumEvent interface{ isSumEvent() }

func (eventA) isSumEvent() {}

func TestTypeKeyOfDistinguishesConcreteTypes(t *testing.T) {
	assert.NotEqual(t, TypeKeyOf(eventA{}), TypeKeyOf(eventB{}))
	assert.Equal(t, TypeKeyOf(eventA{N: 1}), TypeKeyOf(eventA{N: 2}))
}

func TestTypeKeyOfPanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { TypeKeyOf(nil) })
}

func TestTypeKeyOfTypeInterface(t *testing.T) {
	k := typeKeyOfType[sumEvent]()
	assert.True(t, k.Kind().String() == "interface")
	assert.True(t, TypeKeyOf(eventA{}).Implements(k))
}

func TestMatchesTerminal(t *testing.T) {
	terminal := typeKeyOfType[eventB]()
	assert.True(t, matchesTerminal(terminal, eventB{}))
	assert.False(t, matchesTerminal(terminal, eventA{}))
	assert.False(t, matchesTerminal(nil, eventA{}))
}

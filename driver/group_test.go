package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface {
	Greet() string
}

type English struct{}

func (e *English) Greet() string { return "hello" }

type French struct{}

func (f *French) Greet() string { return "bonjour" }

type mute struct{}

func TestGroupGet(t *testing.T) {
	group := NewGroup((*greeter)(nil))
	group.Register((*English)(nil))
	group.Register((*French)(nil))

	driver, ok := group.Get("French").(greeter)
	require.True(t, ok)
	assert.Equal(t, "bonjour", driver.Greet())
}

func TestGroupRegisterRejectsNonConforming(t *testing.T) {
	group := NewGroup((*greeter)(nil))
	group.Register((*mute)(nil))

	assert.Panics(t, func() { group.Get("mute") })
}

func TestGroupGetUnknownDriver(t *testing.T) {
	group := NewGroup((*greeter)(nil))

	assert.Panics(t, func() { group.Get("Martian") })
}

func TestRepository(t *testing.T) {
	group := NewGroup((*greeter)(nil))
	RegisterGroup("greeters", group)

	assert.Equal(t, group, GetGroup("greeters"))
	assert.Panics(t, func() { GetGroup("unknown") })
}

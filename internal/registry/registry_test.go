package registry

import (
	"testing"

	"github.com/nfrund/eventhub/internal/config"
	"github.com/stretchr/testify/assert"
)

type greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

func TestRegistry_SetGet(t *testing.T) {
	reg := New(&config.Config{ServerAddr: ":9999"})
	assert.Equal(t, ":9999", reg.Config().GetServerAddr())

	key := Key[greeter]("test.greeter")
	_, ok := Get(reg, key)
	assert.False(t, ok)
	assert.Panics(t, func() { MustGet(reg, key) })

	Set[greeter](reg, key, english{})
	got, ok := Get(reg, key)
	assert.True(t, ok)
	assert.Equal(t, "hello", got.Greet())
	assert.Equal(t, "hello", MustGet(reg, key).Greet())
}

func TestRegistry_TypeMismatch(t *testing.T) {
	reg := New(nil)
	Set(reg, Key[string]("shared.name"), "value")

	_, ok := Get(reg, Key[int]("shared.name"))
	assert.False(t, ok, "same name with another type is not returned")
}

package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewModules(t *testing.T) {
	modules := NewModules(Dependencies{})

	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"eventchat", "booking", "assistant"}, names)
}

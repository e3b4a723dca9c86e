package optimizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProcess_NetAndInputCost(t *testing.T) {
	p := NewProcess("make", map[string]int{"wood": 2}, map[string]int{"plank": 3, "wood": 1}, 1)
	assert.Equal(t, -1, p.Net("wood"))
	assert.Equal(t, 3, p.Net("plank"))
	assert.Equal(t, 2, p.InputCost())
}

func TestProcess_Runnable(t *testing.T) {
	p := NewProcess("buy", map[string]int{"euro": 100}, map[string]int{"item": 1}, 1)
	assert.False(t, p.Runnable(Stocks{"euro": 50}))
	assert.True(t, p.Runnable(Stocks{"euro": 100}))
}

func TestProcess_NewProcessCopiesMaps(t *testing.T) {
	needs := map[string]int{"a": 1}
	p := NewProcess("p", needs, map[string]int{"b": 1}, 1)
	needs["a"] = 99
	assert.Equal(t, 1, p.Needs()["a"])
}

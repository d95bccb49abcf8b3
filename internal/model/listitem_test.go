package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemTypeCycle(t *testing.T) {
	assert.Equal(t, TypeSelection, TypeNone.Next())
	assert.Equal(t, TypeNumber, TypeSelection.Next())
	assert.Equal(t, TypeText, TypeNumber.Next())
	assert.Equal(t, TypeNone, TypeText.Next())
}

func TestItemTypeCycleCloses(t *testing.T) {
	for _, start := range []ItemType{TypeNone, TypeSelection, TypeNumber, TypeText} {
		current := start
		for i := 0; i < 4; i++ {
			current = current.Next()
		}
		assert.Equal(t, start, current, "four steps from %s", start)
	}
}

func TestItemTypeNames(t *testing.T) {
	for _, typ := range []ItemType{TypeNone, TypeSelection, TypeNumber, TypeText} {
		parsed, err := ParseItemType(typ.String())
		require.NoError(t, err)
		assert.Equal(t, typ, parsed)
	}

	_, err := ParseItemType("checkbox")
	assert.Error(t, err)
}

func TestVersionStamps(t *testing.T) {
	a := NewVersion()
	b := NewVersion()
	assert.NotEqual(t, a, b)
	assert.NotEqual(t, VersionAbsent, a)
	assert.Len(t, a, 32)
}

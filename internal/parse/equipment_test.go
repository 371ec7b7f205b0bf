package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEquipmentTags(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected []string
	}{
		{name: "Empty string", raw: "", expected: []string{}},
		{name: "Whitespace only", raw: "   ", expected: []string{}},
		{name: "Single tag", raw: "Projector", expected: []string{"Projector"}},
		{name: "Trims around commas", raw: "Projector , Whiteboard,TV ", expected: []string{"Projector", "Whiteboard", "TV"}},
		{name: "Keeps duplicates and order", raw: "TV,Projector,TV", expected: []string{"TV", "Projector", "TV"}},
		{name: "Drops blank entries", raw: "TV,, ,Phone", expected: []string{"TV", "Phone"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, EquipmentTags(tc.raw))
		})
	}
}

func TestJoinEquipment(t *testing.T) {
	assert.Equal(t, "", JoinEquipment(nil))
	assert.Equal(t, "Projector, TV", JoinEquipment([]string{"Projector", "TV"}))
	assert.Equal(t, []string{"Projector", "TV"}, EquipmentTags(JoinEquipment([]string{"Projector", "TV"})))
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentity_FullName(t *testing.T) {
	cases := []struct {
		id   Identity
		want string
	}{
		{Identity{Name: "decode"}, "decode"},
		{Identity{Group: "codec", Name: "decode"}, "codec/decode"},
		{
			Identity{Group: "codec", Name: "decode", Params: map[string]string{"size": "4k"}},
			"codec/decode[size=4k]",
		},
		{
			// Keys render sorted regardless of map order.
			Identity{Name: "x", Params: map[string]string{"b": "2", "a": "1", "c": "3"}},
			"x[a=1,b=2,c=3]",
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.id.FullName())
	}
}

func TestIdentity_FullNameIsStable(t *testing.T) {
	id := Identity{Group: "g", Name: "n", Params: map[string]string{"z": "9", "a": "0", "m": "5"}}
	first := id.FullName()
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, id.FullName())
	}
}

func TestIdentity_ParamString(t *testing.T) {
	assert.Equal(t, "", Identity{Name: "x"}.ParamString())
	assert.Equal(t, "a=1,b=2", Identity{Name: "x", Params: map[string]string{"b": "2", "a": "1"}}.ParamString())
}

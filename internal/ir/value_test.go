package ir

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnmarshalIRValue(t *testing.T) {
	v, err := UnmarshalIRValue([]byte(`{"value":"1101","width":4,"steps":true,"bytes":["1","10"]}`))
	require.NoError(t, err)
	assert.Equal(t, IRObject{
		"value": IRString("1101"),
		"width": IRInt(4),
		"steps": IRBool(true),
		"bytes": IRArray{IRString("1"), IRString("10")},
	}, v)

	_, err = UnmarshalIRValue([]byte(`{"width":4.5}`))
	assert.Error(t, err)

	_, err = UnmarshalIRValue([]byte(`{"width":null}`))
	assert.Error(t, err)
}

func TestIRObjectJSONRoundTrip(t *testing.T) {
	obj := IRObject{"b": IRInt(2), "a": IRArray{IRString("x")}}
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":["x"],"b":2}`, string(data))

	var back IRObject
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, obj, back)
}

func TestObjectFromGo(t *testing.T) {
	type inner struct {
		Bit int `json:"bit"`
	}
	type result struct {
		Output  string   `json:"output"`
		Big     *big.Int `json:"big"`
		Missing []int    `json:"missing"`
		Cols    []inner  `json:"cols"`
		OK      bool     `json:"ok"`
	}

	huge := new(big.Int).Lsh(big.NewInt(1), 80)
	obj, err := ObjectFromGo(result{Output: "FF", Big: huge, Cols: []inner{{1}}, OK: true})
	require.NoError(t, err)

	assert.Equal(t, IRString("FF"), obj["output"])
	assert.Equal(t, IRString(huge.String()), obj["big"])
	assert.NotContains(t, obj, "missing")
	assert.Equal(t, IRArray{IRObject{"bit": IRInt(1)}}, obj["cols"])
	assert.Equal(t, IRBool(true), obj["ok"])

	_, err = ObjectFromGo([]int{1})
	assert.Error(t, err)

	_, err = ObjectFromGo(map[string]float64{"x": 0.5})
	assert.Error(t, err)
}

func TestAccessors(t *testing.T) {
	obj := IRObject{"s": IRString("x"), "n": IRInt(3), "b": IRBool(true), "l": Strings("a", "b"), "mixed": IRArray{IRInt(1)}}

	s, ok := obj.String("s")
	assert.True(t, ok)
	assert.Equal(t, "x", s)

	n, ok := obj.Int("n")
	assert.True(t, ok)
	assert.Equal(t, int64(3), n)

	_, ok = obj.Int("s")
	assert.False(t, ok)

	b, ok := obj.Bool("b")
	assert.True(t, ok && b)

	l, ok := obj.Strings("l")
	assert.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, l)

	_, ok = obj.Strings("mixed")
	assert.False(t, ok)
}

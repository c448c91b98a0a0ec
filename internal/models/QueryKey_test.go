package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryKey_Equal(t *testing.T) {
	assert.True(t, NewQueryKey("conversions").Equal(NewQueryKey("conversions")))
	assert.True(t, NewQueryKey("conversions", 7).Equal(NewQueryKey("conversions", int64(7))))
	assert.False(t, NewQueryKey("conversions").Equal(NewQueryKey("conversions", 7)))
	assert.False(t, NewQueryKey("conversions", "7").Equal(NewQueryKey("conversions", 7)))
	assert.False(t, NewQueryKey("a", "b").Equal(NewQueryKey("b", "a")))
}

func TestQueryKey_String(t *testing.T) {
	assert.Equal(t, `["conversions"]`, NewQueryKey("conversions").String())
	assert.Equal(t, `["conversions",7,true]`, NewQueryKey("conversions", 7, true).String())
}

func TestQueryKey_Validate(t *testing.T) {
	assert.NoError(t, NewQueryKey("conversions", 1, 2.5, false).Validate())
	assert.ErrorIs(t, NewQueryKey().Validate(), ErrInvalidQueryKey)
	assert.ErrorIs(t, NewQueryKey("x", []int{1}).Validate(), ErrInvalidQueryKey)
	assert.ErrorIs(t, NewQueryKey(struct{}{}).Validate(), ErrInvalidQueryKey)
}

func TestQueryKey_InvalidUTF8SegmentsStayDistinct(t *testing.T) {
	a, b := NewQueryKey("\xff"), NewQueryKey("\xfe")

	assert.NotEqual(t, a.String(), b.String())
	assert.False(t, a.Equal(b))
	assert.True(t, a.Equal(NewQueryKey("\xff")))
	assert.Equal(t, `["привет"]`, NewQueryKey("привет").String())
}

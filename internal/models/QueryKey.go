package models

import (
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"strconv"
	"strings"
)

var ErrInvalidQueryKey = errors.New("invalid query key")

// QueryKey identifies a cached query. Segments must be primitives; two
// keys are equal when their segments are equal element-wise.
type QueryKey []any

func NewQueryKey(segments ...any) QueryKey {
	return QueryKey(segments)
}

func (k QueryKey) Validate() error {
	if len(k) == 0 {
		return fmt.Errorf("%w: no segments", ErrInvalidQueryKey)
	}
	for i, s := range k {
		switch s.(type) {
		case string, bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		default:
			return fmt.Errorf("%w: segment %d has type %T", ErrInvalidQueryKey, i, s)
		}
	}
	return nil
}

// String is the canonical form used as the store's map key. Strings are
// quoted byte for byte, so distinct segments never share a form; numbers
// use their JSON form, so 7 and int64(7) are the same segment.
func (k QueryKey) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, s := range k {
		if i > 0 {
			b.WriteByte(',')
		}
		if str, ok := s.(string); ok {
			b.WriteString(strconv.Quote(str))
			continue
		}
		data, err := json.Marshal(s)
		if err != nil {
			fmt.Fprintf(&b, "%T(%v)", s, s)
			continue
		}
		b.Write(data)
	}
	b.WriteByte(']')
	return b.String()
}

func (k QueryKey) Equal(other QueryKey) bool {
	if len(k) != len(other) {
		return false
	}
	return k.String() == other.String()
}

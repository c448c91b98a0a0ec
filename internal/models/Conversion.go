package models

import (
	"errors"
	"fmt"
	"github.com/gookit/validate"
	"time"
)

var (
	ErrInvalidRecord = errors.New("invalid conversion record")
	ErrDuplicateID   = errors.New("duplicate conversion id")
)

// Conversion is one server-owned history record. The server assigns ID
// and CreatedAt; the client never mutates either.
type Conversion struct {
	ID                 int64  `json:"id" validate:"required|min:1"`
	UserID             *int64 `json:"userId"`
	OriginalText       string `json:"originalText" validate:"required"`
	TransliteratedText string `json:"transliteratedText"`
	CreatedAt          string `json:"createdAt"`
}

// CreatedTime parses CreatedAt as an ISO-8601 timestamp.
func (c *Conversion) CreatedTime() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, c.CreatedAt)
}

func (c *Conversion) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("%w: %s", ErrInvalidRecord, v.Errors.Error())
	}
	return nil
}

// ValidateConversions checks every record and the unique-id invariant.
// Order is left untouched.
func ValidateConversions(list []Conversion) error {
	seen := make(map[int64]struct{}, len(list))
	for i := range list {
		if err := list[i].Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, ok := seen[list[i].ID]; ok {
			return fmt.Errorf("%w: %d", ErrDuplicateID, list[i].ID)
		}
		seen[list[i].ID] = struct{}{}
	}
	return nil
}

// FindConversion returns a copy of the record with the given id.
func FindConversion(list []Conversion, id int64) (Conversion, bool) {
	for _, c := range list {
		if c.ID == id {
			return c, true
		}
	}
	return Conversion{}, false
}

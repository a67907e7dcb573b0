package flags

import (
	"errors"
	"time"
)

var (
	ErrNotFound   = errors.New("flag not found")
	ErrInvalidKey = errors.New("invalid flag key")
)

// Flag is a named runtime switch such as the swap kill switch
type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newFlag(key string, value bool) *Flag {
	return &Flag{Key: key, Value: value, UpdatedAt: time.Now().UTC()}
}

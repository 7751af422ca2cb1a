// Package fetch tags reads issued on behalf of a view so that a response
// arriving after a newer request for the same view can be discarded.
package fetch

import (
	"errors"
	"sync/atomic"
)

// ErrStale is returned when a response was superseded by a newer request.
var ErrStale = errors.New("response superseded by a newer request")

// Token identifies one issued request.
type Token uint64

// Tracker hands out monotonically increasing tokens. The zero value is ready to use.
type Tracker struct {
	latest atomic.Uint64
}

// Next issues a token that supersedes every token issued before it.
func (t *Tracker) Next() Token {
	return Token(t.latest.Add(1))
}

// IsLatest reports whether tok is still the most recent token.
func (t *Tracker) IsLatest(tok Token) bool {
	return uint64(tok) == t.latest.Load()
}

// Check returns ErrStale unless tok is the most recent token.
func (t *Tracker) Check(tok Token) error {
	if !t.IsLatest(tok) {
		return ErrStale
	}
	return nil
}

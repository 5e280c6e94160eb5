package ticketing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	cases := map[error]string{
		ErrInvalidScope:         KindInvalidScope,
		ErrNotFound:             KindNotFound,
		ErrAlreadyTerminal:      KindAlreadyTerminal,
		ErrDuplicateTokenNumber: KindDuplicateNumber,
		ErrEmptyQueue:           KindEmptyQueue,
		errors.New("boom"):      KindInternal,
	}
	for err, kind := range cases {
		assert.Equal(t, kind, KindOf(err), err.Error())
		assert.Equal(t, kind, KindOf(fmt.Errorf("wrapped: %w", err)), err.Error())
	}
}

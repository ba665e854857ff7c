package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSendRejectsEmptyMessage(t *testing.T) {
	s := &Service{}

	_, err := s.Send(context.Background(), "u1", "u2", "", nil, "")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

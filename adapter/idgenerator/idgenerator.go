// Package idgenerator contains the default [domain.IDGenerator] implementation,
// producing random (version 4) or time-ordered (version 7) UUIDs.
package idgenerator

import (
	"crypto/rand"
	"io"

	"github.com/google/uuid"
	"github.com/vinicius-lino-figueiredo/godm/domain"
)

// IDGenerator implements [domain.IDGenerator].
type IDGenerator struct {
	reader      io.Reader
	timeOrdered bool
}

// NewIDGenerator returns a new implementation of [domain.IDGenerator].
func NewIDGenerator(opts ...Option) domain.IDGenerator {
	i := IDGenerator{reader: rand.Reader}
	for _, opt := range opts {
		opt(&i)
	}
	return &i
}

// GenerateID implements [domain.IDGenerator].
func (i *IDGenerator) GenerateID() (uuid.UUID, error) {
	if i.timeOrdered {
		return uuid.NewV7FromReader(i.reader)
	}
	return uuid.NewRandomFromReader(i.reader)
}

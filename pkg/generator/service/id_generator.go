package service

import (
	"crypto/rand"
	"encoding/hex"
)

const (
	traceIdByteLength = 16
	spanIdByteLength  = 8
)

// IdGenerator produces the random hex identifiers that link the spans of a
// trace together. Identifiers are collision resistant, not guaranteed unique.
type IdGenerator interface {
	GenerateTraceId() string
	GenerateSpanId() string
}

type IdGeneratorImpl struct{}

func NewIdGeneratorImpl() *IdGeneratorImpl {
	return &IdGeneratorImpl{}
}

func (ig *IdGeneratorImpl) GenerateTraceId() string {
	return randomHexId(traceIdByteLength)
}

func (ig *IdGeneratorImpl) GenerateSpanId() string {
	return randomHexId(spanIdByteLength)
}

func randomHexId(byteLength int) string {
	idBytes := make([]byte, byteLength)
	_, _ = rand.Read(idBytes)
	return hex.EncodeToString(idBytes)
}

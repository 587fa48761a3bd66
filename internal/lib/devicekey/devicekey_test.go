package devicekey

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMACHash_Deterministic(t *testing.T) {
	first := MACHash("AA:BB:CC:DD:EE:FF")
	second := MACHash("AA:BB:CC:DD:EE:FF")
	assert.Equal(t, first, second)
	assert.Len(t, first, 64)

	other := MACHash("11:22:33:44:55:66")
	assert.NotEqual(t, first, other)
}

func TestMACHash_NotReversible(t *testing.T) {
	hash := MACHash("AA:BB:CC:DD:EE:FF")
	assert.NotContains(t, hash, "AA:BB")
}

func TestNewSecret(t *testing.T) {
	first := NewSecret()
	second := NewSecret()
	assert.Len(t, first, 32)
	assert.Len(t, second, 32)
	assert.NotEqual(t, first, second)
}

package weavetest

import (
	"crypto/rand"
	"encoding/binary"
	"sync/atomic"
	"testing"

	"github.com/iov-one/drip"
)

var condSeq uint64

// NewCondition returns a new unique condition. Each call returns a different
// value.
func NewCondition() drip.Condition {
	var data [8]byte
	binary.BigEndian.PutUint64(data[:], atomic.AddUint64(&condSeq, 1))
	return drip.NewCondition("test", "seq", data[:])
}

// RandomAddr returns a valid random address generated on the fly.
func RandomAddr(t testing.TB) drip.Address {
	t.Helper()
	raw := make([]byte, drip.AddressLength)
	if _, err := rand.Read(raw); err != nil {
		t.Fatalf("cannot generate a random address: %s", err)
	}
	a := drip.Address(raw)
	if err := a.Validate(); err != nil {
		t.Fatalf("generated address is not valid: %s", err)
	}
	return a
}

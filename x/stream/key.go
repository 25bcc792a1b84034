package stream

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
)

// keyLength is the size of an encoded stream key:
// payer | payee | rate | start | end.
var keyLength = 2*drip.AddressLength + 32 + 8 + 8

// StreamKey is the identity of a stream. Two streams with identical
// parameters share the key, so a payer cannot run two of them at once.
//
// StreamKey is comparable and can be used as a map key.
type StreamKey struct {
	payer string
	payee string
	// Rate is the scaled amount that accrues every second.
	Rate  uint256.Int
	Start drip.UnixTime
	End   drip.UnixTime
}

// NewStreamKey returns the identity of a stream paying rate scaled units per
// second from payer to payee during [start, end).
func NewStreamKey(payer, payee drip.Address, rate *uint256.Int, start, end drip.UnixTime) StreamKey {
	k := StreamKey{
		payer: string(payer),
		payee: string(payee),
		Start: start,
		End:   end,
	}
	if rate != nil {
		k.Rate.Set(rate)
	}
	return k
}

// Payer returns the address funding the stream.
func (k StreamKey) Payer() drip.Address {
	return drip.Address(k.payer)
}

// Payee returns the address receiving the stream.
func (k StreamKey) Payee() drip.Address {
	return drip.Address(k.payee)
}

// Validate checks the stream parameters. The rate must be positive and the
// whole face value of the stream must be representable.
func (k StreamKey) Validate() error {
	var err error
	err = errors.AppendField(err, "Payer", k.Payer().Validate())
	err = errors.AppendField(err, "Payee", k.Payee().Validate())
	if err == nil && k.payer == k.payee {
		err = errors.AppendField(err, "Payee", errors.Wrap(errors.ErrInput, "payer cannot stream to itself"))
	}
	if k.Rate.IsZero() {
		err = errors.AppendField(err, "Rate", errors.ErrAmount)
	}
	if k.Start <= 0 || k.End <= k.Start {
		err = errors.AppendField(err, "End", errors.Wrapf(ErrInvalidTimeRange, "[%d, %d)", k.Start, k.End))
	} else if _, overflow := new(uint256.Int).MulOverflow(&k.Rate, seconds(k.Start, k.End)); overflow {
		err = errors.AppendField(err, "Rate", errors.Wrap(errors.ErrOverflow, "face value"))
	}
	return err
}

// Bytes returns the binary representation of the key. Keys of the same payer
// share the prefix, so that the payer's streams can be listed.
func (k StreamKey) Bytes() []byte {
	raw := make([]byte, 0, keyLength)
	raw = append(raw, k.payer...)
	raw = append(raw, k.payee...)
	rate := k.Rate.Bytes32()
	raw = append(raw, rate[:]...)
	raw = appendTime(raw, k.Start)
	raw = appendTime(raw, k.End)
	return raw
}

// ID returns the key in a human readable form.
func (k StreamKey) ID() string {
	return strings.ToUpper(hex.EncodeToString(k.Bytes()))
}

func (k StreamKey) String() string {
	return fmt.Sprintf("%s->%s %s/s [%d, %d)", k.Payer(), k.Payee(), k.Rate.Dec(), k.Start, k.End)
}

// ParseStreamKey decodes a key created by StreamKey.Bytes.
func ParseStreamKey(raw []byte) (StreamKey, error) {
	if len(raw) != keyLength {
		return StreamKey{}, errors.Wrapf(errors.ErrInput, "stream key must be %d bytes, got %d", keyLength, len(raw))
	}
	var k StreamKey
	k.payer = string(raw[:drip.AddressLength])
	raw = raw[drip.AddressLength:]
	k.payee = string(raw[:drip.AddressLength])
	raw = raw[drip.AddressLength:]
	k.Rate.SetBytes(raw[:32])
	raw = raw[32:]
	k.Start = drip.UnixTime(binary.BigEndian.Uint64(raw[:8]))
	k.End = drip.UnixTime(binary.BigEndian.Uint64(raw[8:]))
	return k, nil
}

// ParseStreamID decodes a key returned by StreamKey.ID.
func ParseStreamID(id string) (StreamKey, error) {
	raw, err := hex.DecodeString(id)
	if err != nil {
		return StreamKey{}, errors.Wrapf(errors.ErrInput, "stream id: %s", err)
	}
	return ParseStreamKey(raw)
}

func appendTime(raw []byte, t drip.UnixTime) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(t))
	return append(raw, b[:]...)
}

// seconds returns the length of [from, to) or zero for an empty range.
func seconds(from, to drip.UnixTime) *uint256.Int {
	if to <= from {
		return new(uint256.Int)
	}
	return uint256.NewInt(uint64(to - from))
}

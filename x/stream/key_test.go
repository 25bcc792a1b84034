package stream

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/weavetest"
	"github.com/iov-one/drip/weavetest/assert"
)

func TestStreamKeyEncoding(t *testing.T) {
	payer := weavetest.NewCondition().Address()
	payee := weavetest.NewCondition().Address()
	key := NewStreamKey(payer, payee, uint256.NewInt(12345), 100, 200)

	raw := key.Bytes()
	assert.Equal(t, keyLength, len(raw))
	assert.Equal(t, []byte(payer), raw[:drip.AddressLength])

	got, err := ParseStreamKey(raw)
	assert.Nil(t, err)
	assert.Equal(t, key, got)

	got, err = ParseStreamID(key.ID())
	assert.Nil(t, err)
	assert.Equal(t, key, got)
	assert.Equal(t, payer, got.Payer())
	assert.Equal(t, payee, got.Payee())

	_, err = ParseStreamKey(raw[1:])
	assert.IsErr(t, errors.ErrInput, err)
	_, err = ParseStreamID("not hex")
	assert.IsErr(t, errors.ErrInput, err)
}

func TestStreamKeyIsComparable(t *testing.T) {
	payer := weavetest.NewCondition().Address()
	payee := weavetest.NewCondition().Address()

	seen := make(map[StreamKey]int)
	seen[NewStreamKey(payer, payee, uint256.NewInt(1), 1, 2)]++
	seen[NewStreamKey(payer.Clone(), payee.Clone(), uint256.NewInt(1), 1, 2)]++
	seen[NewStreamKey(payer, payee, uint256.NewInt(2), 1, 2)]++
	assert.Equal(t, 2, len(seen))
	assert.Equal(t, 2, seen[NewStreamKey(payer, payee, uint256.NewInt(1), 1, 2)])
}

func TestStreamKeyValidation(t *testing.T) {
	payer := weavetest.NewCondition().Address()
	payee := weavetest.NewCondition().Address()

	cases := map[string]struct {
		Key       StreamKey
		WantField string
		WantErr   *errors.Error
	}{
		"valid": {
			Key: NewStreamKey(payer, payee, uint256.NewInt(1), 1, 2),
		},
		"end equal to start": {
			Key:       NewStreamKey(payer, payee, uint256.NewInt(1), 5, 5),
			WantField: "End",
			WantErr:   ErrInvalidTimeRange,
		},
		"zero start": {
			Key:       NewStreamKey(payer, payee, uint256.NewInt(1), 0, 5),
			WantField: "End",
			WantErr:   ErrInvalidTimeRange,
		},
		"zero rate": {
			Key:       NewStreamKey(payer, payee, nil, 1, 5),
			WantField: "Rate",
			WantErr:   errors.ErrAmount,
		},
		"face value overflow": {
			Key:       NewStreamKey(payer, payee, new(uint256.Int).SetAllOne(), 1, 5),
			WantField: "Rate",
			WantErr:   errors.ErrOverflow,
		},
		"stream to itself": {
			Key:       NewStreamKey(payer, payer, uint256.NewInt(1), 1, 5),
			WantField: "Payee",
			WantErr:   errors.ErrInput,
		},
		"invalid payer": {
			Key:       NewStreamKey(drip.Address("short"), payee, uint256.NewInt(1), 1, 5),
			WantField: "Payer",
			WantErr:   errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Key.Validate()
			if tc.WantErr == nil {
				assert.Nil(t, err)
				return
			}
			assert.FieldError(t, err, tc.WantField, tc.WantErr)
		})
	}
}

// Package bech32 converts between raw payloads and their bech32 text form.
// Addresses of payers and payees are rendered this way in genesis files and
// client facing output.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/drip/errors"
)

// DefaultPrefix is the human readable part of drip addresses.
const DefaultPrefix = "drip"

// Encode returns the bech32 text of payload under the hrp prefix.
func Encode(hrp string, payload []byte) (string, error) {
	groups, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(errors.ErrInput, err.Error())
	}
	text, err := bech32.Encode(hrp, groups)
	if err != nil {
		return "", errors.Wrap(errors.ErrInput, err.Error())
	}
	return text, nil
}

// Decode splits bech32 text into its prefix and the raw payload.
func Decode(text string) (string, []byte, error) {
	hrp, groups, err := bech32.Decode(text)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "bech32: %s", err)
	}
	payload, err := bech32.ConvertBits(groups, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrapf(errors.ErrInput, "bech32 payload: %s", err)
	}
	return hrp, payload, nil
}

// DecodePrefixed decodes text and fails unless it carries the hrp prefix.
func DecodePrefixed(hrp, text string) ([]byte, error) {
	got, payload, err := Decode(text)
	if err != nil {
		return nil, err
	}
	if got != hrp {
		return nil, errors.Wrapf(errors.ErrInput, "prefix %q, want %q", got, hrp)
	}
	return payload, nil
}

package drip

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/iov-one/drip/crypto/bech32"
	"github.com/iov-one/drip/errors"
)

// AddressLength is the size of every Address. It may be changed in init,
// before any address is derived, and never afterwards.
var AddressLength = 20

// (?s) lets the data section hold newlines.
var conditionFormat = regexp.MustCompile(`(?s)^([a-zA-Z0-9_\-]{3,8})/([a-zA-Z0-9_\-]{3,8})/(.+)$`)

// Condition names who may authorize an action, in the form
// extension/type/data. A signature key is one kind of condition, the stream
// vault is another.
type Condition []byte

// NewCondition builds the extension/type/data condition.
func NewCondition(ext, typ string, data []byte) Condition {
	c := make(Condition, 0, len(ext)+len(typ)+2+len(data))
	c = append(c, ext...)
	c = append(c, '/')
	c = append(c, typ...)
	c = append(c, '/')
	return append(c, data...)
}

// Parse splits the condition into extension, type and data.
func (c Condition) Parse() (ext, typ string, data []byte, err error) {
	m := conditionFormat.FindSubmatch(c)
	if m == nil {
		return "", "", nil, errors.ErrInput.Newf("condition: %X", []byte(c))
	}
	return string(m[1]), string(m[2]), m[3], nil
}

// Validate fails unless the condition is well formed.
func (c Condition) Validate() error {
	_, _, _, err := c.Parse()
	return err
}

// Address is the digest of the condition.
func (c Condition) Address() Address {
	return NewAddress(c)
}

func (c Condition) Equals(o Condition) bool {
	return bytes.Equal(c, o)
}

// String keeps extension and type readable and hex encodes the data.
func (c Condition) String() string {
	ext, typ, data, err := c.Parse()
	if err != nil {
		return fmt.Sprintf("invalid condition %X", []byte(c))
	}
	return fmt.Sprintf("%s/%s/%X", ext, typ, data)
}

func (c Condition) MarshalJSON() ([]byte, error) {
	if c == nil {
		return json.Marshal("")
	}
	return json.Marshal(c.String())
}

func (c *Condition) UnmarshalJSON(raw []byte) error {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	return c.parseText(text)
}

func (c *Condition) parseText(text string) error {
	if text == "" {
		*c = nil
		return nil
	}
	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return errors.ErrInput.Newf("condition %q: want ext/type/data", text)
	}
	data, err := hex.DecodeString(parts[2])
	if err != nil {
		return errors.ErrInput.Newf("condition data: %s", err)
	}
	*c = NewCondition(parts[0], parts[1], data)
	return nil
}

// Address identifies an account: a payer, a payee or the stream vault. It
// is the truncated sha256 of a Condition.
type Address []byte

// NewAddress hashes data into an address. Nil stays nil.
func NewAddress(data []byte) Address {
	if data == nil {
		return nil
	}
	sum := sha256.Sum256(data)
	return Address(sum[:AddressLength])
}

func (a Address) Equals(o Address) bool {
	return bytes.Equal(a, o)
}

// Validate fails unless the address has AddressLength bytes.
func (a Address) Validate() error {
	if len(a) != AddressLength {
		return errors.ErrInput.Newf("address of %d bytes", len(a))
	}
	return nil
}

// String is the uppercase hex form, or (nil).
func (a Address) String() string {
	if len(a) == 0 {
		return "(nil)"
	}
	return strings.ToUpper(hex.EncodeToString(a))
}

// Bech32 renders the address with the hrp prefix.
func (a Address) Bech32(hrp string) (string, error) {
	return bech32.Encode(hrp, a)
}

// Clone returns a copy not sharing memory with a.
func (a Address) Clone() Address {
	if a == nil {
		return nil
	}
	return append(Address(nil), a...)
}

// MarshalJSON writes the hex form instead of base64.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.ToUpper(hex.EncodeToString(a)))
}

// UnmarshalJSON accepts plain hex or a format prefix: hex:, cond: (the
// address of a condition) or bech32:. An empty value gives a nil address.
func (a *Address) UnmarshalJSON(raw []byte) error {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	format, value := "hex", text
	if i := strings.IndexByte(text, ':'); i >= 0 {
		format, value = text[:i], text[i+1:]
	}
	if value == "" {
		*a = nil
		return nil
	}

	var addr Address
	switch format {
	case "hex":
		b, err := hex.DecodeString(value)
		if err != nil {
			return errors.Wrapf(errors.ErrInput, "hex address: %s", err)
		}
		addr = b
	case "cond":
		var c Condition
		if err := c.parseText(value); err != nil {
			return err
		}
		if err := c.Validate(); err != nil {
			return err
		}
		addr = c.Address()
	case "bech32":
		_, b, err := bech32.Decode(value)
		if err != nil {
			return err
		}
		addr = b
	default:
		return errors.ErrType.Newf("address format %q", format)
	}
	if err := addr.Validate(); err != nil {
		return err
	}
	*a = addr
	return nil
}

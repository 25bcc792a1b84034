package stream

import (
	"fmt"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/codec"
	"github.com/iov-one/drip/coin"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
)

// ConfigPkg is the name under which the configuration is stored.
const ConfigPkg = "stream"

// Funding models.
const (
	// ModelPool keeps a single balance per payer. Streams are paid while
	// the balance lasts and a payer may go into debt.
	ModelPool = "pool"

	// ModelEscrow commits the whole face value of every stream upfront.
	ModelEscrow = "escrow"
)

// Configuration of the stream extension.
type Configuration struct {
	// Owner can update the configuration.
	Owner drip.Address `json:"owner"`
	// Ticker of the only token that is streamed.
	Ticker string `json:"ticker"`
	// Decimals of the streamed token.
	Decimals uint8 `json:"decimals"`
	// Model is either pool or escrow.
	Model string `json:"model"`
	// PublicSettlement allows anybody to settle a stream for its payee.
	PublicSettlement bool `json:"public_settlement"`
}

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) GetOwner() drip.Address {
	return c.Owner
}

func (c *Configuration) Validate() error {
	var err error
	if c.Owner != nil {
		err = errors.AppendField(err, "Owner", c.Owner.Validate())
	}
	if !coin.IsCC(c.Ticker) {
		err = errors.AppendField(err, "Ticker", errors.Wrapf(errors.ErrCurrency, "%q", c.Ticker))
	}
	if c.Decimals > Precision {
		err = errors.AppendField(err, "Decimals", errors.Wrapf(errors.ErrInput, "max %d", Precision))
	}
	switch c.Model {
	case ModelPool, ModelEscrow:
	default:
		err = errors.AppendField(err, "Model", errors.Wrapf(errors.ErrInput, "unknown model %q", c.Model))
	}
	return err
}

func (c *Configuration) Marshal() ([]byte, error) {
	return codec.NewEncoder().
		Bytes(1, c.Owner).
		String(2, c.Ticker).
		Uint64(3, uint64(c.Decimals)).
		String(4, c.Model).
		Bool(5, c.PublicSettlement).
		Data(), nil
}

func (c *Configuration) Unmarshal(raw []byte) error {
	*c = Configuration{}
	d := codec.NewDecoder(raw)
	for d.More() {
		field, wire, err := d.Next()
		if err != nil {
			return err
		}
		switch field {
		case 1:
			var b []byte
			b, err = d.Bytes(wire)
			c.Owner = drip.Address(b)
		case 2:
			c.Ticker, err = d.String(wire)
		case 3:
			var v uint64
			v, err = d.Uint64(wire)
			if v > Precision {
				err = errors.Wrap(errors.ErrOverflow, "decimals")
			}
			c.Decimals = uint8(v)
		case 4:
			c.Model, err = d.String(wire)
		case 5:
			c.PublicSettlement, err = d.Bool(wire)
		default:
			err = d.Skip(wire)
		}
		if err != nil {
			return errors.Wrap(err, fmt.Sprintf("field %d", field))
		}
	}
	return nil
}

// Scaler returns the scaler for the configured token.
func (c *Configuration) Scaler() (Scaler, error) {
	return NewScaler(c.Decimals)
}

// LoadConfiguration returns the current configuration.
func LoadConfiguration(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, ConfigPkg, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

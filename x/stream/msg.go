package stream

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/gconf"
)

const (
	pathCreateStreamMsg        = "stream/create"
	pathWithdrawMsg            = "stream/withdraw"
	pathPauseStreamMsg         = "stream/pause"
	pathResumeStreamMsg        = "stream/resume"
	pathCancelStreamMsg        = "stream/cancel"
	pathModifyStreamMsg        = "stream/modify"
	pathDepositMsg             = "stream/deposit"
	pathWithdrawPayerMsg       = "stream/withdraw_payer"
	pathWithdrawPayerAllMsg    = "stream/withdraw_payer_all"
	pathUpdateConfigurationMsg = "stream/update_configuration"
)

var (
	_ drip.Msg = (*CreateStreamMsg)(nil)
	_ drip.Msg = (*WithdrawMsg)(nil)
	_ drip.Msg = (*PauseStreamMsg)(nil)
	_ drip.Msg = (*ResumeStreamMsg)(nil)
	_ drip.Msg = (*CancelStreamMsg)(nil)
	_ drip.Msg = (*ModifyStreamMsg)(nil)
	_ drip.Msg = (*DepositMsg)(nil)
	_ drip.Msg = (*WithdrawPayerMsg)(nil)
	_ drip.Msg = (*WithdrawPayerAllMsg)(nil)
	_ gconf.PatchMsg = (*UpdateConfigurationMsg)(nil)
)

// CreateStreamMsg starts a new stream. Rate is scaled, Deposit is an
// optional native amount funded before the stream is created.
type CreateStreamMsg struct {
	Payer   drip.Address  `json:"payer"`
	Payee   drip.Address  `json:"payee"`
	Rate    *uint256.Int  `json:"rate"`
	Start   drip.UnixTime `json:"start"`
	End     drip.UnixTime `json:"end"`
	Deposit *uint256.Int  `json:"deposit,omitempty"`
}

func (CreateStreamMsg) Path() string {
	return pathCreateStreamMsg
}

// Key returns the identity of the stream created by this message.
func (m *CreateStreamMsg) Key() StreamKey {
	return NewStreamKey(m.Payer, m.Payee, m.Rate, m.Start, m.End)
}

func (m *CreateStreamMsg) Validate() error {
	if m.Rate == nil {
		return errors.Field("Rate", errors.ErrEmpty, "required")
	}
	return m.Key().Validate()
}

// WithdrawMsg settles a stream to its payee.
type WithdrawMsg struct {
	StreamID string `json:"stream_id"`
}

func (WithdrawMsg) Path() string {
	return pathWithdrawMsg
}

func (m *WithdrawMsg) Validate() error {
	return validateStreamID(m.StreamID)
}

// PauseStreamMsg pauses an active stream.
type PauseStreamMsg struct {
	StreamID string `json:"stream_id"`
}

func (PauseStreamMsg) Path() string {
	return pathPauseStreamMsg
}

func (m *PauseStreamMsg) Validate() error {
	return validateStreamID(m.StreamID)
}

// ResumeStreamMsg resumes a paused stream.
type ResumeStreamMsg struct {
	StreamID string `json:"stream_id"`
}

func (ResumeStreamMsg) Path() string {
	return pathResumeStreamMsg
}

func (m *ResumeStreamMsg) Validate() error {
	return validateStreamID(m.StreamID)
}

// CancelStreamMsg settles and removes an active stream.
type CancelStreamMsg struct {
	StreamID string `json:"stream_id"`
}

func (CancelStreamMsg) Path() string {
	return pathCancelStreamMsg
}

func (m *CancelStreamMsg) Validate() error {
	return validateStreamID(m.StreamID)
}

// ModifyStreamMsg replaces an active stream with one of a different payee,
// rate or end time.
type ModifyStreamMsg struct {
	StreamID string        `json:"stream_id"`
	Payee    drip.Address  `json:"payee"`
	Rate     *uint256.Int  `json:"rate"`
	End      drip.UnixTime `json:"end"`
}

func (ModifyStreamMsg) Path() string {
	return pathModifyStreamMsg
}

func (m *ModifyStreamMsg) Validate() error {
	key, err := ParseStreamID(m.StreamID)
	if err != nil {
		return errors.Field("StreamID", err, "invalid")
	}
	if m.Rate == nil {
		return errors.Field("Rate", errors.ErrEmpty, "required")
	}
	return NewStreamKey(key.Payer(), m.Payee, m.Rate, key.Start, m.End).Validate()
}

// DepositMsg funds the payer account.
type DepositMsg struct {
	Payer  drip.Address `json:"payer"`
	Amount *uint256.Int `json:"amount"`
}

func (DepositMsg) Path() string {
	return pathDepositMsg
}

func (m *DepositMsg) Validate() error {
	return validatePayerAmount(m.Payer, m.Amount)
}

// WithdrawPayerMsg returns funds from the payer account.
type WithdrawPayerMsg struct {
	Payer  drip.Address `json:"payer"`
	Amount *uint256.Int `json:"amount"`
}

func (WithdrawPayerMsg) Path() string {
	return pathWithdrawPayerMsg
}

func (m *WithdrawPayerMsg) Validate() error {
	return validatePayerAmount(m.Payer, m.Amount)
}

// WithdrawPayerAllMsg returns all free funds from the payer account.
type WithdrawPayerAllMsg struct {
	Payer drip.Address `json:"payer"`
}

func (WithdrawPayerAllMsg) Path() string {
	return pathWithdrawPayerAllMsg
}

func (m *WithdrawPayerAllMsg) Validate() error {
	return errors.AppendField(nil, "Payer", m.Payer.Validate())
}

// UpdateConfigurationMsg patches the configuration. Zero value fields are
// left unchanged.
type UpdateConfigurationMsg struct {
	Patch *Configuration `json:"patch"`
}

func (UpdateConfigurationMsg) Path() string {
	return pathUpdateConfigurationMsg
}

func (m *UpdateConfigurationMsg) ConfigPatch() gconf.OwnedConfig {
	if m.Patch == nil {
		return nil
	}
	return m.Patch
}

func (m *UpdateConfigurationMsg) Validate() error {
	if m.Patch == nil {
		return errors.Field("Patch", errors.ErrEmpty, "required")
	}
	return nil
}

func validateStreamID(id string) error {
	if _, err := ParseStreamID(id); err != nil {
		return errors.Field("StreamID", err, "invalid")
	}
	return nil
}

func validatePayerAmount(payer drip.Address, amount *uint256.Int) error {
	err := errors.AppendField(nil, "Payer", payer.Validate())
	if amount == nil || amount.IsZero() {
		err = errors.AppendField(err, "Amount", errors.ErrAmount)
	}
	return err
}

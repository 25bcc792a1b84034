package drip

import (
	"testing"

	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/weavetest/assert"
)

type pingMsg struct {
	Value string
}

func (pingMsg) Path() string { return "test/ping" }

func (m *pingMsg) Validate() error {
	if m.Value == "" {
		return errors.Wrap(errors.ErrEmpty, "value")
	}
	return nil
}

type msgTx struct {
	msg Msg
	err error
}

func (tx msgTx) GetMsg() (Msg, error) { return tx.msg, tx.err }

func TestLoadMsg(t *testing.T) {
	var byValue pingMsg
	assert.Nil(t, LoadMsg(msgTx{msg: &pingMsg{Value: "a"}}, &byValue))
	assert.Equal(t, "a", byValue.Value)

	var byPointer *pingMsg
	assert.Nil(t, LoadMsg(msgTx{msg: &pingMsg{Value: "b"}}, &byPointer))
	assert.Equal(t, "b", byPointer.Value)

	var wrong string
	assert.IsErr(t, errors.ErrType, LoadMsg(msgTx{msg: &pingMsg{Value: "c"}}, &wrong))

	assert.IsErr(t, errors.ErrEmpty, LoadMsg(msgTx{msg: &pingMsg{}}, &byValue))
	assert.IsErr(t, errors.ErrMsg, LoadMsg(msgTx{}, &byValue))
	assert.IsErr(t, errors.ErrState, LoadMsg(msgTx{err: errors.ErrState}, &byValue))
}

func TestGetPath(t *testing.T) {
	assert.Equal(t, "test/ping", GetPath(msgTx{msg: &pingMsg{}}))
	assert.Equal(t, "(missing)", GetPath(msgTx{}))
}

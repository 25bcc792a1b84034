package gconf

import (
	"reflect"

	"github.com/iov-one/drip"
	"github.com/iov-one/drip/errors"
	"github.com/iov-one/drip/x"
)

// OwnedConfig is a configuration that names the address allowed to change
// it.
type OwnedConfig interface {
	Configuration
	GetOwner() drip.Address
}

// PatchMsg is a message carrying a partial configuration. Zero value fields
// of the patch leave the stored value unchanged.
type PatchMsg interface {
	drip.Msg
	// ConfigPatch returns the patch, or nil when the message holds none.
	ConfigPatch() OwnedConfig
}

// UpdateConfigurationHandler applies PatchMsg messages to the configuration
// stored for one package. Only the current owner may sign a patch.
type UpdateConfigurationHandler struct {
	pkg  string
	typ  reflect.Type
	auth x.Authenticator
}

var _ drip.Handler = UpdateConfigurationHandler{}

// NewUpdateConfigurationHandler returns a handler for the configuration of
// pkg. Only the type of config is used, every call loads a fresh instance.
//
// A configuration that was never stored (for example because genesis did
// not provide it) cannot be patched: there is no owner to authorize it.
func NewUpdateConfigurationHandler(pkg string, config OwnedConfig, auth x.Authenticator) UpdateConfigurationHandler {
	return UpdateConfigurationHandler{
		pkg:  pkg,
		typ:  reflect.TypeOf(config).Elem(),
		auth: auth,
	}
}

func (h UpdateConfigurationHandler) Check(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.CheckResult, error) {
	if err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.CheckResult{}, nil
}

func (h UpdateConfigurationHandler) Deliver(ctx drip.Context, db drip.KVStore, tx drip.Tx) (*drip.DeliverResult, error) {
	if err := h.apply(ctx, db, tx); err != nil {
		return nil, err
	}
	return &drip.DeliverResult{}, nil
}

func (h UpdateConfigurationHandler) apply(ctx drip.Context, db drip.KVStore, tx drip.Tx) error {
	patch, err := h.patch(tx)
	if err != nil {
		return err
	}

	current := reflect.New(h.typ).Interface().(OwnedConfig)
	if err := Load(db, h.pkg, current); err != nil {
		if errors.ErrNotFound.Is(err) {
			return errors.Wrap(errors.ErrUnauthorized, "no configuration to update")
		}
		return errors.Wrap(err, "load configuration")
	}
	owner := current.GetOwner()
	if owner == nil || !h.auth.HasAddress(ctx, owner) {
		return errors.Wrap(errors.ErrUnauthorized, "owner signature required")
	}

	merge(current, patch)
	if err := Save(db, h.pkg, current); err != nil {
		return errors.Wrap(err, "save configuration")
	}
	drip.GetLogger(ctx).Info("configuration updated", "pkg", h.pkg)
	return nil
}

// patch extracts the validated patch of the message.
func (h UpdateConfigurationHandler) patch(tx drip.Tx) (OwnedConfig, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	pm, ok := msg.(PatchMsg)
	if !ok {
		return nil, errors.WithType(errors.ErrMsg, msg)
	}
	if err := msg.Validate(); err != nil {
		return nil, err
	}
	patch := pm.ConfigPatch()
	if patch == nil {
		return nil, errors.Field("Patch", errors.ErrEmpty, "required")
	}
	if t := reflect.TypeOf(patch); t.Kind() != reflect.Ptr || t.Elem() != h.typ {
		return nil, errors.Wrapf(errors.ErrMsg, "patch of type %T", patch)
	}
	return patch, nil
}

// merge copies every non zero field of patch into dst. Both must point to
// the same struct type.
func merge(dst, patch OwnedConfig) {
	d := reflect.ValueOf(dst).Elem()
	p := reflect.ValueOf(patch).Elem()
	for i := 0; i < p.NumField(); i++ {
		f := p.Field(i)
		if reflect.DeepEqual(f.Interface(), reflect.Zero(f.Type()).Interface()) {
			continue
		}
		d.Field(i).Set(f)
	}
}

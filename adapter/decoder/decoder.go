// Package decoder contains the default [domain.Decoder] implementation.
package decoder

import (
	"fmt"
	"maps"

	"github.com/goccy/go-reflect"
	"github.com/mitchellh/mapstructure"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

// Decoder implements domain.Decoder.
type Decoder struct {
	weak bool
}

// NewDecoder returns a new implementation of domain.Decoder.
func NewDecoder(opts ...Option) domain.Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode implements domain.Decoder.
func (d *Decoder) Decode(source any, target any) error {
	if target == nil {
		return domain.ErrTargetNil
	}

	value := reflect.ValueNoEscapeOf(target)
	if value.Kind() != reflect.Ptr {
		return domain.ErrNonPointer
	}
	if value.IsNil() {
		return domain.ErrTargetNil
	}

	// documents are copied instead of decoded, so nested values keep their
	// types
	if m, ok := target.(*map[string]any); ok {
		if src, ok := structure.ToMap(source); ok {
			*m = maps.Clone(src)
			return nil
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          structure.TagName,
		Result:           target,
		WeaklyTypedInput: d.weak,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(source); err != nil {
		errDec := domain.ErrDecode{Source: source, Target: target}
		return fmt.Errorf("%w: %w", errDec, err)
	}
	return nil
}

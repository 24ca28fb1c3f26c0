// Package criteria contains the default [domain.Builder] implementation, which
// turns loosely structured query specifications into normalized criteria and
// query options.
//
// A specification is a map whose keys are either modifiers (conditions,
// fields, select, skip, offset, limit, sort and order) or conditions. Field
// names not declared in the registry are kept as given, so documents can be
// queried by fields that were never declared.
package criteria

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/godm/adapter/coder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/decoder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/key"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

// Modifier names.
const (
	ModConditions = "conditions"
	ModFields     = "fields"
	ModSelect     = "select"
	ModSkip       = "skip"
	ModOffset     = "offset"
	ModLimit      = "limit"
	ModSort       = "sort"
	ModOrder      = "order"
)

var modifiers = map[string]struct{}{
	ModConditions: {},
	ModFields:     {},
	ModSelect:     {},
	ModSkip:       {},
	ModOffset:     {},
	ModLimit:      {},
	ModSort:       {},
	ModOrder:      {},
}

// valueOperators are the operators whose operands are field values, and so are
// coerced through the key of the field.
var valueOperators = map[string]struct{}{
	domain.OpEq:  {},
	domain.OpNe:  {},
	domain.OpIn:  {},
	domain.OpNin: {},
	domain.OpGt:  {},
	domain.OpGte: {},
	domain.OpLt:  {},
	domain.OpLte: {},
	domain.OpAll: {},
}

var logicalOperators = map[string]struct{}{
	domain.OpOr:  {},
	domain.OpAnd: {},
	domain.OpNor: {},
}

// Builder implements [domain.Builder].
type Builder struct {
	registry domain.Registry
	idAlias  string
	typed    bool
	decoder  domain.Decoder
	log      zerolog.Logger
}

// NewBuilder returns a [Builder] that reads keys from reg.
func NewBuilder(reg domain.Registry, opts ...Option) *Builder {
	b := &Builder{
		registry: reg,
		idAlias:  key.IDAlias,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.decoder == nil {
		b.decoder = decoder.NewDecoder(decoder.WithWeaklyTypedInput(true))
	}
	return b
}

// Build implements [domain.Builder].
func (b *Builder) Build(spec any) (domain.Criteria, domain.QueryOptions, error) {
	raw, ok := structure.ToMap(spec)
	if !ok {
		return nil, domain.QueryOptions{}, domain.ErrInvalidSpecification{Type: typeName(spec)}
	}

	conditions := make(domain.M, len(raw))
	mods := make(domain.M)
	for k, v := range raw {
		if _, ok := modifiers[k]; ok {
			mods[k] = v
			continue
		}
		conditions[k] = v
	}

	if c := mods[ModConditions]; c != nil {
		explicit, ok := structure.ToMap(c)
		if !ok {
			return nil, domain.QueryOptions{}, domain.ErrInvalidSpecification{
				Type:  typeName(c),
				Field: ModConditions,
			}
		}
		for k, v := range explicit {
			conditions[k] = v
		}
	}

	criteria := b.criteria(conditions, true)
	opts := b.options(mods)

	b.log.Trace().
		Str("model", b.registry.Name()).
		Interface("criteria", criteria).
		Msg("criteria built")

	return criteria, opts, nil
}

func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", v)
}

// criteria builds the criteria of a condition map. The discriminator is only
// added at the top level, before the conditions, so an explicit condition on
// the discriminator field wins. A condition on the identifier field wins over
// one on its alias.
func (b *Builder) criteria(conditions domain.M, top bool) domain.Criteria {
	res := make(domain.Criteria, len(conditions)+1)
	if top {
		if field, value, ok := b.registry.Discriminator(); ok {
			res[field] = value
		}
	}
	idField := b.registry.IdentifierFieldName()
	_, hasID := conditions[idField]
	for field, value := range conditions {
		if field == b.idAlias && field != idField && hasID {
			b.log.Debug().
				Str("model", b.registry.Name()).
				Str("field", field).
				Msg("alias condition ignored in favor of identifier field")
			continue
		}
		field = b.normalizeField(field)
		if _, ok := logicalOperators[field]; ok {
			res[field] = b.logical(value)
			continue
		}
		if domain.IsOperator(field) {
			res[field] = value
			continue
		}
		k := b.lookup(field)
		if k == nil {
			b.log.Debug().
				Str("model", b.registry.Name()).
				Str("field", field).
				Msg("condition on undeclared field")
		}
		res[field] = b.value(k, value)
	}
	return res
}

func (b *Builder) normalizeField(field string) string {
	if field == b.idAlias {
		return b.registry.IdentifierFieldName()
	}
	return field
}

// logical builds each branch of $or, $and and $nor.
func (b *Builder) logical(value any) any {
	branches, ok := b.list(value)
	if !ok {
		return value
	}
	res := make([]any, len(branches))
	for n, branch := range branches {
		if m, ok := structure.ToMap(branch); ok {
			res[n] = b.criteria(m, false)
			continue
		}
		res[n] = branch
	}
	return res
}

// lookup finds the key of a field, following dotted paths through embedded
// documents.
func (b *Builder) lookup(field string) domain.Key {
	if k, ok := b.registry.Get(field); ok {
		return k
	}
	reg := b.registry
	parts := strings.Split(field, ".")
	for n, part := range parts {
		k, ok := reg.Get(part)
		if !ok {
			return nil
		}
		if n == len(parts)-1 {
			return k
		}
		emb, ok := k.Coder().(domain.EmbeddedCoder)
		if !ok {
			return nil
		}
		reg = emb.Registry()
	}
	return nil
}

func (b *Builder) child(k domain.Key, name string) domain.Key {
	if k == nil {
		return nil
	}
	emb, ok := k.Coder().(domain.EmbeddedCoder)
	if !ok {
		return nil
	}
	if child, ok := emb.Registry().Get(name); ok {
		return child
	}
	return nil
}

// value builds the condition of a plain field. Lists are wrapped in $in.
func (b *Builder) value(k domain.Key, v any) any {
	if v == nil {
		return nil
	}
	if structure.IsMap(v) {
		return b.document(k, v)
	}
	if l, ok := b.list(v); ok {
		return domain.M{domain.OpIn: b.elements(k, l, true)}
	}
	return b.scalar(k, v, true)
}

// document builds a nested condition. Operator keys keep the key of the field
// as context, other keys are looked up in embedded registries.
func (b *Builder) document(k domain.Key, v any) domain.M {
	m, _ := structure.ToMap(v)
	res := make(domain.M, len(m))
	for sub, operand := range m {
		if domain.IsOperator(sub) {
			res[sub] = b.operand(k, sub, operand)
			continue
		}
		res[sub] = b.value(b.child(k, sub), operand)
	}
	return res
}

// operand builds the operand of an operator. Lists are kept as lists.
func (b *Builder) operand(k domain.Key, op string, v any) any {
	_, coerce := valueOperators[op]
	if v == nil {
		return nil
	}
	if structure.IsMap(v) {
		return b.document(k, v)
	}
	if l, ok := b.list(v); ok {
		return b.elements(k, l, coerce)
	}
	return b.scalar(k, v, coerce)
}

func (b *Builder) list(v any) ([]any, bool) {
	if !structure.IsList(v) {
		return nil, false
	}
	return structure.ToSlice(v)
}

func (b *Builder) elements(k domain.Key, l []any, coerce bool) []any {
	res := make([]any, len(l))
	for n, e := range l {
		res[n] = b.scalar(k, e, coerce)
	}
	return res
}

func (b *Builder) scalar(k domain.Key, v any, coerce bool) any {
	if coerce && b.coerces(k) {
		res := k.Set(v)
		if res == nil && v != nil && k.Identifier() {
			b.log.Debug().
				Str("model", b.registry.Name()).
				Str("field", k.Name()).
				Interface("value", v).
				Msg("identifier could not be coerced")
		}
		return res
	}
	if t, ok := v.(time.Time); ok {
		return t.UTC()
	}
	return v
}

// coerces reports whether values compared to k are passed through it.
// Identifier keys are always coerced, other scalar keys only when typed
// conditions are enabled.
func (b *Builder) coerces(k domain.Key) bool {
	if k == nil || k.Embeddable() {
		return false
	}
	if k.Identifier() {
		return true
	}
	if !b.typed {
		return false
	}
	switch coder.TypeName(k.Coder()) {
	case coder.TagArray, coder.TagSet, coder.TagHash:
		return false
	}
	return true
}

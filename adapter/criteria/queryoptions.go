package criteria

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cast"
	"github.com/vinicius-lino-figueiredo/godm/adapter/coder"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/pkg/structure"
)

func (b *Builder) options(mods domain.M) domain.QueryOptions {
	return domain.QueryOptions{
		Fields: b.fields(first(mods, ModFields, ModSelect)),
		Skip:   b.count(first(mods, ModSkip, ModOffset)),
		Limit:  b.count(mods[ModLimit]),
		Sort:   b.sort(first(mods, ModOrder, ModSort)),
	}
}

// first returns the value of the first name set to a non-nil value.
func first(mods domain.M, names ...string) any {
	for _, name := range names {
		if v := mods[name]; v != nil {
			return v
		}
	}
	return nil
}

// fields accepts comma separated strings and nested lists of names.
func (b *Builder) fields(v any) []string {
	var res []string
	b.appendFields(&res, v)
	if len(res) == 0 {
		return nil
	}
	return res
}

func (b *Builder) appendFields(res *[]string, v any) {
	if v == nil {
		return
	}
	if l, ok := b.list(v); ok {
		for _, item := range l {
			b.appendFields(res, item)
		}
		return
	}
	s, err := cast.ToStringE(v)
	if err != nil {
		return
	}
	for field := range strings.SplitSeq(s, ",") {
		if field = strings.TrimSpace(field); field != "" {
			*res = append(*res, b.normalizeField(field))
		}
	}
}

// count decodes a non-negative integer. Invalid values and booleans become
// zero.
func (b *Builder) count(v any) int64 {
	switch v.(type) {
	case nil, bool:
		return 0
	}
	var n int64
	if err := b.decoder.Decode(v, &n); err != nil {
		i, ok := coder.Integer{}.ToWire(v).(int64)
		if !ok {
			return 0
		}
		n = i
	}
	return max(n, 0)
}

// sort accepts a prebuilt [domain.Sort], a string of "field [asc|desc]"
// segments separated by commas, a list of segments or [field, direction]
// pairs, or a map of fields to directions.
func (b *Builder) sort(v any) domain.Sort {
	var res domain.Sort
	b.appendSort(&res, v)
	if len(res) == 0 {
		return nil
	}
	return res
}

func (b *Builder) appendSort(res *domain.Sort, v any) {
	switch t := v.(type) {
	case nil:
		return
	case domain.Sort:
		for _, s := range t {
			b.appendSort(res, s)
		}
		return
	case domain.SortName:
		if t.Key = strings.TrimSpace(t.Key); t.Key != "" {
			t.Key = b.normalizeField(t.Key)
			*res = append(*res, domain.SortName{Key: t.Key, Order: direction(t.Order)})
		}
		return
	case string:
		for segment := range strings.SplitSeq(t, ",") {
			parts := strings.Fields(segment)
			if len(parts) == 0 {
				continue
			}
			var dir any
			if len(parts) > 1 {
				dir = parts[1]
			}
			*res = append(*res, domain.SortName{
				Key:   b.normalizeField(parts[0]),
				Order: direction(dir),
			})
		}
		return
	}

	if l, ok := b.list(v); ok {
		if pair, ok := b.pair(l); ok {
			*res = append(*res, pair)
			return
		}
		for _, item := range l {
			b.appendSort(res, item)
		}
		return
	}

	if m, ok := structure.ToMap(v); ok {
		for _, k := range slices.Sorted(maps.Keys(m)) {
			b.appendSort(res, domain.SortName{Key: k, Order: direction(m[k])})
		}
	}
}

// pair reads a [field, direction] list. Lists of two segments, such as
// ["name", "age desc"], are not pairs.
func (b *Builder) pair(l []any) (domain.SortName, bool) {
	if len(l) != 2 {
		return domain.SortName{}, false
	}
	field, ok := l[0].(string)
	if !ok || strings.ContainsAny(field, ", ") {
		return domain.SortName{}, false
	}
	if !isDirection(l[1]) {
		return domain.SortName{}, false
	}
	return domain.SortName{Key: b.normalizeField(field), Order: direction(l[1])}, true
}

func isDirection(v any) bool {
	if _, ok := structure.AsFloat(v); ok {
		return true
	}
	s, ok := v.(string)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending", "desc", "descending", "1", "-1":
		return true
	}
	return false
}

// direction reads a sort direction. Anything that is not descending is
// ascending.
func direction(v any) int64 {
	if n, ok := structure.AsFloat(v); ok {
		if n < 0 {
			return domain.Descending
		}
		return domain.Ascending
	}
	s, _ := v.(string)
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "-1":
		return domain.Descending
	}
	return domain.Ascending
}

package memstore

import (
	"maps"
	"regexp"

	"github.com/vinicius-lino-figueiredo/godm/domain"
)

func deepCopy(doc domain.M) domain.M {
	if doc == nil {
		return nil
	}
	res := make(domain.M, len(doc))
	for k, v := range doc {
		res[k] = deepCopyValue(v)
	}
	return res
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopy(t)
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			res[n] = deepCopyValue(item)
		}
		return res
	case []byte:
		return append([]byte(nil), t...)
	case map[string]string:
		return maps.Clone(t)
	default:
		return v
	}
}

// setPath assigns value at addr, replacing anything that is not a document
// along the way.
func setPath(doc domain.M, addr []string, value any) {
	for _, part := range addr[:len(addr)-1] {
		next, ok := doc[part].(map[string]any)
		if !ok {
			next = make(domain.M)
			doc[part] = next
		}
		doc = next
	}
	doc[addr[len(addr)-1]] = value
}

// unsetPath deletes the value at addr. Missing documents along the way leave
// doc unchanged.
func unsetPath(doc domain.M, addr []string) {
	for _, part := range addr[:len(addr)-1] {
		next, ok := doc[part].(map[string]any)
		if !ok {
			return
		}
		doc = next
	}
	delete(doc, addr[len(addr)-1])
}

func isRegex(v any) bool {
	_, ok := v.(*regexp.Regexp)
	return ok
}

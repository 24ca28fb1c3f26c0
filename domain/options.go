package domain

import "regexp"

// KeyOption configures key declaration through the functional options pattern.
type KeyOption func(*KeyOptions)

// WithDefault sets the value returned when a key is read while unset. If d is a
// func() any, it is called every time a default is needed.
func WithDefault(d any) KeyOption {
	return func(ko *KeyOptions) {
		ko.Default = d
		ko.HasDefault = true
	}
}

// WithRequired marks the key as required. Enforcement belongs to validation.
func WithRequired(r bool) KeyOption {
	return func(ko *KeyOptions) {
		ko.Required = r
	}
}

// WithUnique marks the key as unique.
func WithUnique(u bool) KeyOption {
	return func(ko *KeyOptions) {
		ko.Unique = u
	}
}

// WithNumeric marks the key as holding numeric content.
func WithNumeric(n bool) KeyOption {
	return func(ko *KeyOptions) {
		ko.Numeric = n
	}
}

// WithIndex requests an index for the key.
func WithIndex(i bool) KeyOption {
	return func(ko *KeyOptions) {
		ko.Index = i
	}
}

// WithFormat sets the pattern values of the key should match.
func WithFormat(f *regexp.Regexp) KeyOption {
	return func(ko *KeyOptions) {
		ko.Format = f
	}
}

// WithLength sets length restrictions for the key.
func WithLength(l Length) KeyOption {
	return func(ko *KeyOptions) {
		ko.Length = &l
	}
}

// WithExtra stores an option that is not interpreted by godm.
func WithExtra(name string, value any) KeyOption {
	return func(ko *KeyOptions) {
		if ko.Extra == nil {
			ko.Extra = make(map[string]any)
		}
		ko.Extra[name] = value
	}
}

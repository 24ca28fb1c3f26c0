// Package schema loads model declarations from YAML documents and builds the
// registries they describe.
//
//	models:
//	  - name: Address
//	    embedded: true
//	    keys:
//	      - {name: city, type: string}
//	  - name: User
//	    collection: users
//	    timestamps: true
//	    keys:
//	      - {name: email, type: string, unique: true, format: "^.+@.+$"}
//	      - {name: age, type: integer, default: 18}
//	      - {name: address, model: Address}
//	  - name: Admin
//	    parent: User
package schema

import (
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/vinicius-lino-figueiredo/godm/adapter/coder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/key"
	"github.com/vinicius-lino-figueiredo/godm/adapter/registry"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"gopkg.in/yaml.v3"
)

// File is the root of a schema document.
type File struct {
	Models []Model `yaml:"models" validate:"required,min=1,dive"`
}

// Model declares a model type.
type Model struct {
	Name            string `yaml:"name" validate:"required"`
	Collection      string `yaml:"collection"`
	Parent          string `yaml:"parent" validate:"omitempty,nefield=Name"`
	Embedded        bool   `yaml:"embedded"`
	Timestamps      bool   `yaml:"timestamps"`
	IdentifierField string `yaml:"identifier_field" validate:"excluded_with=Parent"`
	Keys            []Key  `yaml:"keys" validate:"dive"`
}

// Key declares a key of a model. Either Type or Model must be set, Model
// naming an embedded model.
type Key struct {
	Name     string         `yaml:"name" validate:"required"`
	Type     string         `yaml:"type" validate:"required_without=Model,excluded_with=Model"`
	Model    string         `yaml:"model"`
	Default  any            `yaml:"default"`
	Required bool           `yaml:"required"`
	Unique   bool           `yaml:"unique"`
	Numeric  bool           `yaml:"numeric"`
	Index    bool           `yaml:"index"`
	Format   string         `yaml:"format"`
	Length   *domain.Length `yaml:"length"`
	Extra    map[string]any `yaml:"extra"`
}

// Schema holds the registries built from a [File].
type Schema struct {
	registries map[string]*registry.Registry
	names      []string
}

// Load reads a YAML schema from r and builds its registries.
func Load(r io.Reader, opts ...Option) (*Schema, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return Build(f, opts...)
}

// Build validates f and builds its registries. Parents are registered before
// their subtypes, whatever their position in f.
func Build(f File, opts ...Option) (*Schema, error) {
	o := options{log: zerolog.Nop(), validate: validator.New()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := o.validate.Struct(f); err != nil {
		return nil, fmt.Errorf("validating schema: %w", err)
	}

	s := &Schema{registries: make(map[string]*registry.Registry, len(f.Models))}

	ordered, err := s.order(f.Models)
	if err != nil {
		return nil, err
	}

	for _, m := range ordered {
		if err := s.register(m, o.log); err != nil {
			return nil, err
		}
	}
	for _, m := range ordered {
		for _, k := range m.Keys {
			if err := s.declare(m.Name, k); err != nil {
				return nil, fmt.Errorf("model %s: %w", m.Name, err)
			}
		}
	}
	return s, nil
}

// order sorts models so that parents come before subtypes.
func (s *Schema) order(models []Model) ([]Model, error) {
	byName := make(map[string]Model, len(models))
	for _, m := range models {
		if _, ok := byName[m.Name]; ok {
			return nil, domain.ErrDuplicateModel{Name: m.Name}
		}
		byName[m.Name] = m
	}

	res := make([]Model, 0, len(models))
	placed := make(map[string]bool, len(models))
	var visit func(m Model, path map[string]bool) error
	visit = func(m Model, path map[string]bool) error {
		if placed[m.Name] {
			return nil
		}
		if path[m.Name] {
			return fmt.Errorf("%w: cyclic parent", domain.ErrUnknownModel{Name: m.Name})
		}
		if m.Parent != "" {
			parent, ok := byName[m.Parent]
			if !ok {
				return domain.ErrUnknownModel{Name: m.Parent}
			}
			path[m.Name] = true
			if err := visit(parent, path); err != nil {
				return err
			}
		}
		placed[m.Name] = true
		res = append(res, m)
		return nil
	}
	for _, m := range models {
		if err := visit(m, map[string]bool{}); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Schema) register(m Model, log zerolog.Logger) error {
	opts := []registry.Option{
		registry.WithCollection(m.Collection),
		registry.WithLogger(log),
	}
	// subtypes inherit both flags unless set
	if m.Timestamps {
		opts = append(opts, registry.WithTimestamps(true))
	}
	if m.Embedded {
		opts = append(opts, registry.WithEmbeddable(true))
	}
	var reg *registry.Registry
	if m.Parent == "" {
		opts = append(opts,
			registry.WithIdentifierField(m.IdentifierField),
			registry.WithIdentifierKey(!m.Embedded),
			registry.WithTimestamps(m.Timestamps),
		)
		reg = registry.New(m.Name, opts...)
	} else {
		var err error
		reg, err = s.registries[m.Parent].Subtype(m.Name, opts...)
		if err != nil {
			return err
		}
	}
	s.registries[m.Name] = reg
	s.names = append(s.names, m.Name)
	return nil
}

func (s *Schema) declare(model string, k Key) error {
	c, err := s.coder(k)
	if err != nil {
		return err
	}

	opts := []domain.KeyOption{
		domain.WithRequired(k.Required),
		domain.WithUnique(k.Unique),
		domain.WithNumeric(k.Numeric),
		domain.WithIndex(k.Index),
	}
	if k.Default != nil {
		opts = append(opts, domain.WithDefault(k.Default))
	}
	if k.Format != "" {
		re, err := regexp.Compile(k.Format)
		if err != nil {
			return fmt.Errorf("key %s: %w", k.Name, err)
		}
		opts = append(opts, domain.WithFormat(re))
	}
	if k.Length != nil {
		opts = append(opts, domain.WithLength(*k.Length))
	}
	for name, value := range k.Extra {
		opts = append(opts, domain.WithExtra(name, value))
	}

	created, err := key.NewKey(k.Name, c, opts...)
	if err != nil {
		return err
	}
	return s.registries[model].Declare(created)
}

func (s *Schema) coder(k Key) (domain.Coder, error) {
	if k.Model == "" {
		c, ok := coder.Lookup(k.Type)
		if !ok {
			return nil, domain.ErrUnknownType{Tag: k.Type}
		}
		return c, nil
	}
	reg, ok := s.registries[k.Model]
	if !ok {
		return nil, domain.ErrUnknownModel{Name: k.Model}
	}
	if !reg.Embeddable() {
		return nil, fmt.Errorf("%w: not embeddable", domain.ErrUnknownModel{Name: k.Model})
	}
	return coder.NewEmbedded(reg, nil), nil
}

// Model returns the registry of the named model.
func (s *Schema) Model(name string) (*registry.Registry, error) {
	reg, ok := s.registries[name]
	if !ok {
		return nil, domain.ErrUnknownModel{Name: name}
	}
	return reg, nil
}

// Names returns the model names, parents before subtypes.
func (s *Schema) Names() []string {
	return append([]string(nil), s.names...)
}

// IsValidationError reports whether err was caused by an invalid schema
// document.
func IsValidationError(err error) bool {
	var verr validator.ValidationErrors
	return errors.As(err, &verr)
}

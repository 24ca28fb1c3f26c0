package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dolmen-go/contextio"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/vinicius-lino-figueiredo/godm/adapter/coder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/criteria"
	"github.com/vinicius-lino-figueiredo/godm/adapter/finder"
	"github.com/vinicius-lino-figueiredo/godm/adapter/memstore"
	"github.com/vinicius-lino-figueiredo/godm/adapter/registry"
	"github.com/vinicius-lino-figueiredo/godm/adapter/repository"
	"github.com/vinicius-lino-figueiredo/godm/adapter/schema"
	"github.com/vinicius-lino-figueiredo/godm/domain"
	"github.com/vinicius-lino-figueiredo/godm/internal/logger"
)

type app struct {
	schemaPath string
	model      string
	logLevel   string
	pretty     bool
	typed      bool
	dataPath   string

	log zerolog.Logger
	out io.Writer
}

func newRootCmd(out io.Writer) *cobra.Command {
	a := &app{out: out, log: zerolog.Nop()}

	root := &cobra.Command{
		Use:           "godm",
		Short:         "Typed keys and query criteria for schemaless documents",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.New(logger.Config{
				Level:  a.logLevel,
				Pretty: a.pretty,
				Output: cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			a.log = log
			return nil
		},
	}
	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.StringVar(&a.schemaPath, "schema", "", "YAML file declaring the models")
	flags.StringVar(&a.model, "model", "", "model name")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.BoolVar(&a.pretty, "pretty", false, "human readable logs")

	build := &cobra.Command{
		Use:   "build SPEC",
		Short: "Print the criteria and options built from a JSON query specification",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runBuild,
	}
	build.Flags().BoolVar(&a.typed, "typed", false, "coerce every condition through its key")

	keys := &cobra.Command{
		Use:   "keys",
		Short: "List the keys declared for a model",
		Args:  cobra.NoArgs,
		RunE:  a.runKeys,
	}

	query := &cobra.Command{
		Use:   "query SPEC",
		Short: "Load JSON lines documents into an in-memory store and query them",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runQuery,
	}
	query.Flags().StringVar(&a.dataPath, "data", "", "JSON lines file with the documents to load (default stdin)")

	find := &cobra.Command{
		Use:   "finder NAME",
		Short: "Parse a dynamic finder name",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runFinder,
	}

	root.AddCommand(build, keys, query, find)
	return root
}

// registry returns the registry of the selected model. Without a schema, a
// bare model with only the identifier key is used.
func (a *app) registry() (*registry.Registry, error) {
	if a.schemaPath == "" {
		name := a.model
		if name == "" {
			name = "Document"
		}
		return registry.New(name, registry.WithLogger(a.log)), nil
	}

	f, err := os.Open(a.schemaPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sch, err := schema.Load(f, schema.WithLogger(a.log))
	if err != nil {
		return nil, err
	}
	if a.model == "" {
		return nil, fmt.Errorf("--model is required with --schema, one of: %s", strings.Join(sch.Names(), ", "))
	}
	return sch.Model(a.model)
}

func parseSpec(s string) (domain.M, error) {
	var spec domain.M
	if err := json.Unmarshal([]byte(s), &spec); err != nil {
		return nil, fmt.Errorf("parsing specification: %w", err)
	}
	return spec, nil
}

func (a *app) print(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (a *app) runBuild(cmd *cobra.Command, args []string) error {
	reg, err := a.registry()
	if err != nil {
		return err
	}
	spec, err := parseSpec(args[0])
	if err != nil {
		return err
	}

	b := criteria.NewBuilder(reg, criteria.WithLogger(a.log), criteria.WithTypedConditions(a.typed))
	crit, opts, err := b.Build(spec)
	if err != nil {
		return err
	}
	return a.print(map[string]any{"criteria": crit, "options": opts})
}

func (a *app) runKeys(cmd *cobra.Command, _ []string) error {
	reg, err := a.registry()
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for name, k := range reg.Keys() {
		line := []string{name, coder.TypeName(k.Coder())}
		opts := k.Options()
		if opts.Required {
			line = append(line, "required")
		}
		if opts.Unique {
			line = append(line, "unique")
		}
		if opts.Index {
			line = append(line, "index")
		}
		if def, ok := k.Default(); ok {
			line = append(line, fmt.Sprintf("default=%v", def))
		}
		if _, err := fmt.Fprintln(w, strings.Join(line, "\t")); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	reg, err := a.registry()
	if err != nil {
		return err
	}
	spec, err := parseSpec(args[0])
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	if a.dataPath != "" {
		f, err := os.Open(a.dataPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}

	store := memstore.NewStore(
		memstore.WithIdentifierField(reg.IdentifierFieldName()),
		memstore.WithLogger(a.log),
	)
	repo := repository.New(reg, store, repository.WithLogger(a.log))
	if err := repo.EnsureIndexes(ctx); err != nil {
		return err
	}

	dec := json.NewDecoder(contextio.NewReader(ctx, in))
	var loaded int
	for dec.More() {
		var raw domain.M
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("reading document %d: %w", loaded+1, err)
		}
		if _, err := repo.Load(ctx, raw); err != nil {
			return fmt.Errorf("loading document %d: %w", loaded+1, err)
		}
		loaded++
	}
	a.log.Info().Int("documents", loaded).Str("model", reg.Name()).Msg("documents loaded")

	docs, err := repo.Find(ctx, spec)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(a.out)
	for _, doc := range docs {
		if err := enc.Encode(doc.ToWire()); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) runFinder(_ *cobra.Command, args []string) error {
	req, err := finder.Parse(args[0])
	if err != nil {
		return err
	}
	return a.print(map[string]any{
		"kind":       req.Kind.String(),
		"attributes": req.Attributes,
		"bang":       req.Bang,
	})
}

// Package cfgx populates a configuration struct from several sources in a
// predictable precedence order:
// command line flags > environment variables > yaml file > struct tag defaults.
//
// Fields are addressed by their dotted struct path (e.g. "Logging.Level").
// Tags customise names and validation:
//
//	env:"NAME"       environment variable name
//	flag:"name"      flag name
//	short:"n"        additional short flag
//	yaml:"a.b"       dotted key in a yaml file
//	default:"value"  default value
//	desc:"text"      flag usage text
//	optional:"true"  allow the zero value
package cfgx

import (
	"cmp"
	"flag"
	"fmt"
	"log/slog"
	"maps"
	"os"
	"reflect"
	"runtime/debug"
	"slices"
)

const (
	tagEnv         = "env"
	tagFlag        = "flag"
	tagShort       = "short"
	tagYAML        = "yaml"
	tagDefault     = "default"
	tagDescription = "desc"
	tagOptional    = "optional"

	tagDockerSecret = "dsec"
)

// Source priorities of the built-in sources. Custom sources pick a value in
// between to run before or after them.
const (
	PriorityDefault = 0
	PriorityFile    = 25
	PriorityEnv     = 50
	PrioritySecrets = 75
	PriorityFlags   = 100
)

// Source processes the field map and applies values to the config struct.
type Source interface {
	Priority() int
	Process(map[string]ConfigField) error
}

// Options holds options for the Parse function.
type Options struct {
	// ProgramName is the name of the running program (defaults to os.Args[0]).
	ProgramName string
	// EnvPrefix is prepended, with an underscore, to derived environment variable names.
	EnvPrefix string
	// SkipFlags ignores command line flags.
	SkipFlags bool
	// SkipEnv ignores environment variables.
	SkipEnv bool
	// Args provides command line arguments (defaults to os.Args[1:]).
	Args []string
	// ErrorHandling determines how parsing errors are handled.
	ErrorHandling flag.ErrorHandling
	// Sources adds additional sources.
	Sources []Source
}

// ConfigField represents a field in the config struct.
type ConfigField struct {
	Path        string
	Value       reflect.Value
	Kind        reflect.Kind
	Name        string
	StructField reflect.StructField
	Tag         reflect.StructTag
	Description string
}

// Parse populates the struct cfg points to. Sources run from lowest to highest
// priority so later sources override earlier ones:
//
// Default values from struct tags - 0,
// Additional sources such as [YAMLFileSource] - their own priority,
// Environment variables - 50,
// Command line flags - 100
//
// Fields that are already non-zero when Parse is called are left alone.
// A top level string field named Version receives the module version from the
// build info.
func Parse(cfg any, options Options) error {
	opts := setOptions(options)

	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return handleError(opts.ErrorHandling, ErrNotPointerToStruct)
	}

	structMap := walkStruct(v.Elem(), "")

	sources := []Source{&defaultSource{priority: PriorityDefault}}
	if !opts.SkipEnv {
		sources = append(sources, &envSource{priority: PriorityEnv, prefix: opts.EnvPrefix})
	}
	if !opts.SkipFlags {
		sources = append(sources, &flagSource{priority: PriorityFlags, opts: opts})
	}
	sources = append(sources, opts.Sources...)

	if version, ok := structMap["Version"]; ok && version.Kind == reflect.String {
		version.Value.SetString(buildVersion())
	}

	slices.SortStableFunc(sources, func(a, b Source) int {
		return cmp.Compare(a.Priority(), b.Priority())
	})

	var allErrs []error
	for _, source := range sources {
		if err := source.Process(structMap); err != nil {
			allErrs = append(allErrs, err)
		}
	}
	if len(allErrs) > 0 {
		return handleError(opts.ErrorHandling, fmt.Errorf("sources: %w", &MultiError{allErrs}))
	}

	if err := validateRequired(structMap); err != nil {
		return handleError(opts.ErrorHandling, fmt.Errorf("validation: %w", err))
	}

	return nil
}

func buildVersion() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return "(devel)"
	}
	return cmp.Or(bi.Main.Version, "(devel)")
}

// walkStruct flattens v into a map keyed by dotted path, skipping fields that
// are already populated.
func walkStruct(v reflect.Value, currPath string) map[string]ConfigField {
	fields := map[string]ConfigField{}

	t := v.Type()

	for i := range v.NumField() {
		fieldVal := v.Field(i)
		structField := t.Field(i)

		if !structField.IsExported() || !fieldVal.IsZero() {
			continue
		}

		path := structField.Name
		if currPath != "" {
			path = currPath + "." + structField.Name
		}

		if fieldVal.Kind() == reflect.Struct {
			maps.Copy(fields, walkStruct(fieldVal, path))
			continue
		}

		fields[path] = ConfigField{
			Path:        path,
			Value:       fieldVal,
			Kind:        fieldVal.Kind(),
			Name:        structField.Name,
			StructField: structField,
			Tag:         structField.Tag,
			Description: cmp.Or(structField.Tag.Get(tagDescription), path),
		}
	}
	return fields
}

// validateRequired errors for every non-optional field still at its zero value.
func validateRequired(fields map[string]ConfigField) error {
	var allErrs []error

	for _, path := range slices.Sorted(maps.Keys(fields)) {
		field := fields[path]

		optVal, exists := field.Tag.Lookup(tagOptional)
		if exists && optVal != "false" {
			continue
		}

		if field.Value.IsZero() {
			allErrs = append(allErrs, fmt.Errorf("%s is required", path))
		}
	}

	if len(allErrs) > 0 {
		return &MultiError{allErrs}
	}
	return nil
}

func handleError(errHandling flag.ErrorHandling, err error) error {
	switch errHandling {
	case flag.ExitOnError:
		slog.Error("Error parsing config struct.", "error", err)
		os.Exit(1)
	case flag.PanicOnError:
		panic(err)
	}
	return err
}


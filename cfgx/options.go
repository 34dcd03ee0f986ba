package cfgx

import (
	"flag"
	"os"
)

// DefaultConfigOptions returns the default set of configuration options.
// Each option can be overridden.
func DefaultConfigOptions() Options {
	return Options{
		ProgramName:   os.Args[0],
		Args:          os.Args[1:],
		ErrorHandling: flag.ContinueOnError,
	}
}

func setOptions(options Options) Options {
	opts := DefaultConfigOptions()

	// Only override non-zero values from the provided options
	if options.ProgramName != "" {
		opts.ProgramName = options.ProgramName
	}
	if options.EnvPrefix != "" {
		opts.EnvPrefix = options.EnvPrefix
	}
	if options.SkipFlags {
		opts.SkipFlags = true
	}
	if options.SkipEnv {
		opts.SkipEnv = true
	}
	if options.Args != nil {
		opts.Args = options.Args
	}
	if options.ErrorHandling != flag.ContinueOnError {
		opts.ErrorHandling = options.ErrorHandling
	}
	opts.Sources = options.Sources

	return opts
}

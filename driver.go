// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package efmt

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
)

// Option configures a FormatText call, following the functional-options
// pattern used throughout the teacher's renderer package.
type Option func(*Options) error

// Options holds every tunable the driver and CLI expose.
type Options struct {
	MaxColumns       int
	IncludeDirs      []string
	PredefinedMacros map[string]string
	Logger           *slog.Logger
}

func defaultOptions() *Options {
	return &Options{
		MaxColumns:       100,
		PredefinedMacros: map[string]string{},
		Logger:           slog.Default(),
	}
}

func WithMaxColumns(n int) Option {
	return func(o *Options) error {
		if n <= 0 {
			return fmt.Errorf("max columns must be positive, got %d", n)
		}
		o.MaxColumns = n
		return nil
	}
}

func WithIncludeDirs(dirs ...string) Option {
	return func(o *Options) error {
		o.IncludeDirs = append(o.IncludeDirs, dirs...)
		return nil
	}
}

func WithPredefinedMacro(name, value string) Option {
	return func(o *Options) error {
		if o.PredefinedMacros == nil {
			o.PredefinedMacros = map[string]string{}
		}
		o.PredefinedMacros[name] = value
		return nil
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *Options) error {
		if l != nil {
			o.Logger = l
		}
		return nil
	}
}

// Fingerprint returns a short, stable hash of the option set affecting
// output, used as part of the cache package's key so a config change
// invalidates cached results.
func (o *Options) Fingerprint() string {
	h := sha256.New()
	fmt.Fprintf(h, "max_columns=%d\n", o.MaxColumns)
	for _, d := range o.IncludeDirs {
		fmt.Fprintf(h, "include_dir=%s\n", d)
	}
	names := make([]string, 0, len(o.PredefinedMacros))
	for name := range o.PredefinedMacros {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(h, "macro=%s=%s\n", name, o.PredefinedMacros[name])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// ResolveOptions applies opts over the defaults and returns the result,
// letting callers outside this package (notably batch) compute a
// Fingerprint without duplicating FormatText's option handling.
func ResolveOptions(opts ...Option) (*Options, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("efmt: invalid option: %w", err)
		}
	}
	return o, nil
}

// Result is what FormatText returns on success, carrying any non-fatal
// warnings (e.g. TooLong) alongside the formatted bytes.
type Result struct {
	Formatted []byte
	Warnings  []*Diagnostic
}

// FormatText parses file's contents and renders them back out in
// canonical layout. A parse failure is returned as a *multierror.Error of
// Diagnostics (see Diagnostics); an invalid option is returned as a
// plain wrapped error. Callers that need exit-code mapping should inspect
// the Diagnostics' Kind.
func FormatText(ctx context.Context, file string, input []byte, opts ...Option) (*Result, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("efmt: invalid option: %w", err)
		}
	}
	input = stripBOM(input)

	lex := NewLexer(ctx, file, input, o.Logger)
	stream := NewTokenStream(lex)
	macros := NewMacroDirectory(o.PredefinedMacros)
	parser := NewParser(file, input, stream, macros)

	module := parser.ParseModule()
	if diags := parser.Diagnostics(); len(diags) > 0 {
		return nil, diagnosticsToError(diags)
	}

	printer := NewPrinter(file, o.MaxColumns)
	FormatModule(printer, module)

	return &Result{Formatted: []byte(printer.String()), Warnings: printer.Warnings()}, nil
}

// ParseModule is the lower-level entry point used by jsonout and visit,
// exposing the CST without formatting it.
func ParseModule(ctx context.Context, file string, input []byte, opts ...Option) (*Module, []*Diagnostic, error) {
	o := defaultOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, nil, fmt.Errorf("efmt: invalid option: %w", err)
		}
	}
	input = stripBOM(input)
	lex := NewLexer(ctx, file, input, o.Logger)
	stream := NewTokenStream(lex)
	macros := NewMacroDirectory(o.PredefinedMacros)
	parser := NewParser(file, input, stream, macros)
	module := parser.ParseModule()
	return module, parser.Diagnostics(), nil
}

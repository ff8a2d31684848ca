// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/verbit/efmt"
	"github.com/verbit/efmt/batch"
	"github.com/verbit/efmt/cache"
	cachesqlite "github.com/verbit/efmt/cache/sqlite"
	"github.com/verbit/efmt/config"
	"github.com/verbit/efmt/diff"
	"github.com/verbit/efmt/discover"
	"github.com/verbit/efmt/jsonout"
	"github.com/verbit/efmt/preview"
	"github.com/spf13/afero"
)

// Exit codes, per the driver's error-kind-to-exit-code contract.
const (
	exitOK          = 0
	exitParseError  = 1
	exitFormatError = 2
	exitIOError     = 3
)

func main() {
	addFlags := func(cmd *cobra.Command) error {
		cmd.PersistentFlags().Bool("quiet", false, "log less information")
		cmd.PersistentFlags().Bool("verbose", false, "log more information")
		cmd.PersistentFlags().Bool("show-version", false, "show version")
		return nil
	}

	var cmdRoot = &cobra.Command{
		Use:   "efmt",
		Short: "Erlang source pretty-printer",
		Long:  `efmt formats Erlang source files to a canonical layout.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			log.SetFlags(log.Lshortfile)
			if show, _ := cmd.Flags().GetBool("show-version"); show {
				fmt.Printf("efmt: version %q\n", efmt.Version().Core())
			}
			return nil
		},
	}
	cmdRoot.AddCommand(cmdFormat())
	cmdRoot.AddCommand(cmdCheck())
	cmdRoot.AddCommand(cmdAstDump())
	cmdRoot.AddCommand(cmdServe())
	cmdRoot.AddCommand(cmdVersion())
	if err := addFlags(cmdRoot); err != nil {
		log.Fatal(err)
	}

	if err := cmdRoot.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(exitIOError)
	}
}

// loadConfig resolves the project config by walking up from cwd to the
// nearest .efmt.toml, falling back to config.Default() when none exists.
func loadConfig() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, _, err := config.Discover(cwd)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func driverOptions(cfg *config.Config) []efmt.Option {
	opts := []efmt.Option{efmt.WithMaxColumns(cfg.MaxColumns)}
	if len(cfg.IncludeDirs) > 0 {
		opts = append(opts, efmt.WithIncludeDirs(cfg.IncludeDirs...))
	}
	for name, val := range cfg.PredefinedMacros {
		opts = append(opts, efmt.WithPredefinedMacro(name, val))
	}
	return opts
}

func openCache(cfg *config.Config) cache.Store {
	store, err := cachesqlite.New(cachesqlite.Config{Path: cfg.CachePath})
	if err != nil {
		log.Printf("cache: %v (continuing without cache)", err)
		return cache.NullStore{}
	}
	return store
}

func resolveJobs(paths []string, excludes []string) ([]batch.Job, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	fs := afero.NewOsFs()
	var jobs []batch.Job
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			jobs = append(jobs, batch.Job{Path: p})
			continue
		}
		files, err := discover.Walk(fs, p, excludes)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			jobs = append(jobs, batch.Job{Path: f.Path})
		}
	}
	return jobs, nil
}

func cmdFormat() *cobra.Command {
	var write bool
	var showDiff bool
	cmd := &cobra.Command{
		Use:          "format [path...]",
		Short:        "format files or directories, rewriting them with --write",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, write, showDiff)
		},
	}
	cmd.Flags().BoolVarP(&write, "write", "w", false, "write result back to the source file")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "print a unified diff instead of writing")
	return cmd
}

func cmdCheck() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "check [path...]",
		Short:        "report files that are not canonically formatted, without writing",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFormat(cmd, args, false, false)
		},
	}
	return cmd
}

func runFormat(cmd *cobra.Command, args []string, write, showDiff bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return exitErr(exitIOError, err)
	}
	jobs, err := resolveJobs(args, cfg.Exclude)
	if err != nil {
		return exitErr(exitIOError, err)
	}

	store := openCache(cfg)
	defer store.Close()

	runner := &batch.Runner{
		FS:      afero.NewOsFs(),
		Store:   store,
		Write:   write,
		Workers: cfg.Workers,
		Options: driverOptions(cfg),
	}

	results, err := runner.Run(cmd.Context(), jobs)
	unformatted := 0
	parseFailed := false
	for _, res := range results {
		if res.Err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), res.Err)
			if res.ErrorCode == batch.ErrCodeParse {
				parseFailed = true
			}
			continue
		}
		if res.Changed {
			unformatted++
			if showDiff {
				orig, readErr := os.ReadFile(res.Path)
				if readErr == nil {
					text, _ := diff.Unified(orig, res.Formatted, diff.WithNames(res.Path, res.Path))
					fmt.Fprint(cmd.OutOrStdout(), text)
				}
			} else if !write {
				fmt.Fprintln(cmd.OutOrStdout(), res.Path)
			}
		}
		for _, w := range res.Warnings {
			fmt.Fprintln(cmd.ErrOrStderr(), w.String())
		}
	}
	if err != nil {
		return exitErr(exitIOError, err)
	}
	if parseFailed {
		return exitErr(exitParseError, fmt.Errorf("one or more files failed to parse"))
	}
	if !write && unformatted > 0 {
		return exitErr(exitFormatError, fmt.Errorf("%d file(s) not canonically formatted", unformatted))
	}
	return nil
}

func cmdAstDump() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "ast-dump <file>",
		Short:        "print the parsed syntax tree as JSON",
		SilenceUsage: true,
		Args:         cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := os.ReadFile(args[0])
			if err != nil {
				return exitErr(exitIOError, err)
			}
			cfg, err := loadConfig()
			if err != nil {
				return exitErr(exitIOError, err)
			}
			module, diags, err := efmt.ParseModule(cmd.Context(), args[0], input, driverOptions(cfg)...)
			if err != nil {
				return exitErr(exitIOError, err)
			}
			if len(diags) > 0 {
				for _, d := range diags {
					fmt.Fprintln(cmd.ErrOrStderr(), d.String())
				}
				return exitErr(exitParseError, fmt.Errorf("parse failed"))
			}
			data, err := jsonout.Marshal(module)
			if err != nil {
				return exitErr(exitIOError, err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
	return cmd
}

func cmdServe() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:          "serve [path...]",
		Short:        "run a local preview dashboard showing what format would change",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return exitErr(exitIOError, err)
			}
			jobs, err := resolveJobs(args, cfg.Exclude)
			if err != nil {
				return exitErr(exitIOError, err)
			}
			store := openCache(cfg)
			defer store.Close()

			runner := &batch.Runner{
				FS:      afero.NewOsFs(),
				Store:   store,
				Workers: cfg.Workers,
				Options: driverOptions(cfg),
			}
			srv, phrase, err := preview.New(addr, runner, jobs)
			if err != nil {
				return exitErr(exitIOError, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "preview: access phrase: %s\n", phrase)
			return srv.ListenAndServe(context.Background())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8787", "HTTP listen address")
	return cmd
}

func cmdVersion() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "display the application's version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), efmt.Version().String())
			return nil
		},
	}
	return cmd
}

// exitError carries the process exit code a failure should produce;
// main unwraps it after cmdRoot.Execute returns.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }

func exitErr(code int, err error) error {
	return &exitError{code: code, err: err}
}

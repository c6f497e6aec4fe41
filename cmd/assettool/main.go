// Package main provides a command-line tool for decoding model and mesh
// assets.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/goopsie/assetdecode/pkg/asset"
	"github.com/goopsie/assetdecode/pkg/config"
	"github.com/goopsie/assetdecode/pkg/mesh"
)

const usage = `assettool decodes downloaded model and mesh assets.

Usage:
  assettool decode [flags] <file>   decode one asset and print its tree
  assettool tree [flags] <file>     print one asset as an indented listing
  assettool batch [flags] <dir>     decode every file under dir
  assettool mesh [flags] <file>     convert a mesh to OBJ

Run "assettool <command> --help" for command flags.
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env carries what every command needs once flags are parsed.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	stdout io.Writer
	args   []string

	outFile string
}

// settings are flags shared by every command. Flags the user sets win over
// the config file.
type settings struct {
	configPath string
	output     string
	logLevel   string
	unwrap     bool
	workers    int
	precision  int
	outFile    string
}

func (s *settings) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.configPath, "config", "", "path to YAML config (default $"+config.EnvVar+")")
	fs.StringVarP(&s.output, "output", "f", "", "output encoding: json, yaml or cbor")
	fs.StringVar(&s.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.BoolVar(&s.unwrap, "unwrap", true, "remove gzip/zstd transport envelopes")
}

func (s *settings) apply(fs *pflag.FlagSet, cfg *config.Config) {
	if fs.Changed("output") {
		cfg.Output = s.output
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = s.logLevel
	}
	if fs.Changed("unwrap") {
		cfg.Unwrap = s.unwrap
	}
	if fs.Changed("workers") {
		cfg.Workers = s.workers
	}
	if fs.Changed("precision") {
		cfg.Mesh.Precision = s.precision
	}
}

type command struct {
	name  string
	args  string
	flags func(*pflag.FlagSet, *settings)
	run   func(context.Context, *env) error
}

var commands = []command{
	{name: "decode", args: "<file>", run: runDecode},
	{name: "tree", args: "<file>", run: runTree},
	{
		name: "batch",
		args: "<dir>",
		flags: func(fs *pflag.FlagSet, s *settings) {
			fs.IntVarP(&s.workers, "workers", "j", 0, "concurrent decodes (default GOMAXPROCS)")
		},
		run: runBatch,
	},
	{
		name: "mesh",
		args: "<file>",
		flags: func(fs *pflag.FlagSet, s *settings) {
			fs.IntVar(&s.precision, "precision", mesh.DefaultPrecision, "decimal places per coordinate")
			fs.StringVarP(&s.outFile, "out", "o", "", "write OBJ to this file instead of stdout")
		},
		run: runMesh,
	},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		fmt.Fprint(stderr, usage)
		if len(args) == 0 {
			return errors.New("command is required")
		}
		return nil
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command: %s", args[0])
	}

	var s settings
	fs := pflag.NewFlagSet(cmd.name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: assettool %s [flags] %s\n", cmd.name, cmd.args)
		fs.PrintDefaults()
	}
	s.register(fs)
	if cmd.flags != nil {
		cmd.flags(fs, &s)
	}
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("%s requires exactly one argument %s", cmd.name, cmd.args)
	}

	cfg, err := config.Load(s.configPath)
	if err != nil {
		return err
	}
	s.apply(fs, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	return cmd.run(ctx, &env{
		cfg:    cfg,
		log:    log.With(zap.String("command", cmd.name)),
		stdout: stdout,
		args:   fs.Args(),

		outFile: s.outFile,
	})
}

func (e *env) decodeOptions() []asset.Option {
	return []asset.Option{
		asset.WithLogger(e.log),
		asset.WithUnwrap(e.cfg.Unwrap),
		asset.WithWorkers(e.cfg.Workers),
	}
}

// assetID names an asset after its file, without directory or extension.
func assetID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func decodeFile(e *env, path string) (asset.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return asset.Result{}, fmt.Errorf("read asset: %w", err)
	}
	return asset.Decode(assetID(path), data, e.decodeOptions()...), nil
}

func runDecode(_ context.Context, e *env) error {
	res, err := decodeFile(e, e.args[0])
	if err != nil {
		return err
	}
	return encode(e.stdout, e.cfg.Output, newResultView(res))
}

func runTree(_ context.Context, e *env) error {
	res, err := decodeFile(e, e.args[0])
	if err != nil {
		return err
	}
	_, err = io.WriteString(e.stdout, renderTree(res))
	return err
}

func runBatch(ctx context.Context, e *env) error {
	inputs, err := asset.ScanDir(e.args[0])
	if err != nil {
		return err
	}
	e.log.Info("decoding batch", zap.Int("assets", len(inputs)), zap.Int("workers", e.cfg.Workers))

	results := asset.DecodeBatch(ctx, inputs, e.decodeOptions()...)
	return encode(e.stdout, e.cfg.Output, newBatchReport(results))
}

func runMesh(_ context.Context, e *env) error {
	data, err := os.ReadFile(e.args[0])
	if err != nil {
		return fmt.Errorf("read mesh: %w", err)
	}
	m, err := mesh.Parse(data)
	if err != nil {
		return err
	}
	e.log.Debug("mesh parsed",
		zap.String("header", m.Header),
		zap.Int("vertices", len(m.Vertices)),
		zap.Int("faces", len(m.Faces)),
	)

	opt := mesh.WithPrecision(e.cfg.Mesh.Precision)
	if e.outFile == "" {
		return mesh.WriteOBJ(e.stdout, m, opt)
	}

	f, err := os.Create(e.outFile)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := mesh.WriteOBJ(f, m, opt); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

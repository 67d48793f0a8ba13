package cli

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cmf/cli/cmd"
	"github.com/ardnew/cmf/document"
	"github.com/ardnew/cmf/pkg"
)

// CLI is the top-level command-line interface for cmf.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Version kong.VersionFlag `help:"Print version and exit." short:"V"`

	Compile cmd.Compile `cmd:"" help:"Compile a schema and describe its variables"`
	Merge   cmd.Merge   `cmd:"" help:"Merge data sets into the layout of a destination schema"`
	Init    cmd.Init    `cmd:"" help:"Initialize configuration file"`
	Repl    cmd.Repl    `cmd:"" help:"Evaluate schema statements interactively"`
}

// Run executes the cmf CLI with the given context and arguments.
// The exit function is called with the appropriate exit code when kong
// terminates early, as it does for --help and --version.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	vars := kong.Vars{
		"version":            pkg.Version(),
		cmd.ConfigIdentifier: filepath.Join(pkg.ConfigDir(), baseConfig),
		cmd.CacheIdentifier:  pkg.CacheDir(),
		cmd.ModesIdentifier:  strings.Join(document.ModeNames(), ","),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Logging flags take effect before kong reports anything, wherever
	// they appear on the command line.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(".json")),
		kong.Configuration(loadYAML, configPath(".yaml"), configPath(".yml")),
		kong.Configuration(loadTOML, configPath(".toml")),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return cmd.ErrUsage.Wrap(err)
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

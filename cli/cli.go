package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/docxform/cli/cmd"
	"github.com/ardnew/docxform/pkg"
)

// CLI is the top-level command-line interface for docxform.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Transform    cmd.Transform    `cmd:"" default:"withargs" help:"Transform a source document as directed by a mapping"`
	Placeholders cmd.Placeholders `cmd:""                    help:"List the placeholder values a mapping declares"`
	Check        cmd.Check        `cmd:""                    help:"Validate mapping specifications"`
	Eval         cmd.Eval         `cmd:""                    help:"Evaluate a single expression"`
	Init         cmd.Init         `cmd:""                    help:"Initialize configuration file"`
	Version      cmd.Version      `cmd:""                    help:"Print version information"`
}

// Run executes the docxform CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := mkdirAllRequired()
	if err != nil {
		return err
	}

	vars := kong.Vars{
		cmd.ConfigIdentifier:  configPath(baseConfig + ".yaml"),
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.PathEnvIdentifier: "$" + pkg.PathEnv,
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Pre-scan for logger flags to ensure early configuration regardless of
	// flag position. TextUnmarshaler on logFormat/logLevel handles those flags
	// during normal parsing, but this early scan also catches boolean flags
	// like --log-pretty.
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
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(cmd.ConfigNamespace), configPath(baseConfig+".yaml")),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	// Finalize logger configuration with all parsed values including
	// TimeLayout and Caller which don't use TextUnmarshaler.
	defer cli.Log.start(ctx)()

	// [pprofConfig.start] is no-op unless built with tag pprof and enabled.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

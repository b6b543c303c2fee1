package terminal

import (
	"context"
	"io"
	"os"

	"github.com/de-tools/ems-atlas/pkg/runtime/environment"
	"github.com/de-tools/ems-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/ems-atlas/pkg/runtime/terminal/export"
	"github.com/de-tools/ems-atlas/pkg/services/view"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type LoadFunc func(ctx context.Context, opts environment.Options) (*environment.Environment, error)

// CLI represents the command-line interface
type CLI struct {
	output  io.Writer
	load    LoadFunc
	deps    *commands.Deps
	preset  bool
	env     *environment.Environment
	manager *view.Manager
	rootCmd *cobra.Command

	configPath string
	profile    string
	verbose    bool
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
	// Load builds the environment from the root flags. Defaults to environment.Load.
	Load LoadFunc
	// Deps replaces the loaded environment entirely.
	Deps *commands.Deps
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Load == nil {
		opts.Load = environment.Load
	}

	cli := &CLI{
		output: opts.Output,
		load:   opts.Load,
		deps:   opts.Deps,
		preset: opts.Deps != nil,
	}
	if cli.deps == nil {
		cli.deps = &commands.Deps{}
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.ExecuteContext(context.Background(), os.Args[1:]...)
}

func (cli *CLI) ExecuteContext(ctx context.Context, args ...string) error {
	defer cli.close()
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "ems",
		Short:             "Energy management reports from the terminal",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: cli.setup,
	}
	cmd.SetOut(cli.output)

	cmd.PersistentFlags().StringVar(&cli.configPath, "config", "", "Path to the settings file")
	cmd.PersistentFlags().StringVar(&cli.profile, "profile", "", "Backend profile from ~/.emscfg")
	cmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "Log debug output to stderr")

	cmd.AddCommand(commands.NewLoginCmd(cli.deps))
	cmd.AddCommand(commands.NewLogoutCmd(cli.deps))
	cmd.AddCommand(commands.NewReportsCmd(cli.deps))
	cmd.AddCommand(commands.NewSpacesCmd(cli.deps))
	cmd.AddCommand(commands.NewEntitiesCmd(cli.deps))
	cmd.AddCommand(commands.NewReportCmd(cli.deps))

	return cmd
}

func (cli *CLI) setup(cmd *cobra.Command, _ []string) error {
	level := zerolog.WarnLevel
	if cli.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).
		With().
		Timestamp().
		Logger()
	ctx := logger.WithContext(cmd.Context())
	cmd.SetContext(ctx)

	if cli.preset || cli.env != nil {
		return nil
	}

	env, err := cli.load(ctx, environment.Options{ConfigPath: cli.configPath, Profile: cli.profile})
	if err != nil {
		return err
	}
	cli.env = env
	cli.manager = env.NewManager()

	*cli.deps = commands.Deps{
		Backend:    env.Backend,
		Sessions:   env.NewGuard(),
		Views:      commands.FromManager(cli.manager),
		Translator: env.Translator,
		Reporter:   export.NewReporter(cli.output, env.Translator),
		Redirects:  env.Redirect,
	}
	return nil
}

func (cli *CLI) close() {
	if cli.manager != nil {
		cli.manager.Close()
		cli.manager = nil
	}
	if cli.env != nil {
		_ = cli.env.Close()
		cli.env = nil
	}
}

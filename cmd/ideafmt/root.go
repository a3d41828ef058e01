package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ideafmt/ideafmt/internal/version"
	"github.com/ideafmt/ideafmt/pkg/config"
	"github.com/ideafmt/ideafmt/pkg/formatter"
	"github.com/ideafmt/ideafmt/pkg/logging"
)

var (
	verbosity int
	stylePath string
	lineRange string
	dryRun    bool

	rootCmd = &cobra.Command{
		Use:   "ideafmt [flags] <file>...",
		Short: "Reformat source files with the embedded formatting engine",
		Long: `ideafmt reformats source files in place using the embedded formatting
engine. Language support is selected by file extension; style settings are
read from an exported code style XML file when one is given.`,
		Args: cobra.MinimumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cfg, err := config.Load()
			if err == nil && verbosity == 0 {
				verbosity = cfg.Verbosity
			}
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		RunE:          runFormat,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the root command. Called once from main.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.WithWriter(os.Stderr).Println(err.Error())
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.Flags().StringVarP(&stylePath, "style", "s", "", "Code style XML file to apply")
	rootCmd.Flags().StringVar(&lineRange, "lines", "", "Reformat only the given line range, as start:end (1-based, inclusive)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report files that would change without rewriting them")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

func runFormat(cmd *cobra.Command, args []string) error {
	startLine, endLine, ranged, err := parseLineRange(lineRange)
	if err != nil {
		return err
	}
	if ranged && len(args) != 1 {
		return fmt.Errorf("--lines applies to exactly one file, got %d", len(args))
	}

	f, err := formatter.Initialize()
	if err != nil {
		return err
	}
	defer f.Shutdown()

	loadStyle(f)

	status := pterm.DefaultBasicText.WithWriter(os.Stderr)
	changed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		text := string(data)

		var out string
		if ranged {
			out, err = f.FormatRange(path, text, startLine, endLine)
		} else {
			out, err = f.FormatAll(path, text)
		}
		if err != nil {
			return err
		}

		if out == text {
			status.Println(pterm.Gray(path + " already formatted"))
			continue
		}
		changed++
		if dryRun {
			status.Println(pterm.Yellow(path + " would be reformatted"))
			continue
		}
		if err := writeBack(path, out); err != nil {
			return err
		}
		status.Println(pterm.Green(path + " reformatted"))
	}

	log.Info().Int("files", len(args)).Int("changed", changed).Msg("Format run finished")
	return nil
}

// loadStyle applies style configuration, --style taking precedence over the
// preferences file. A style that cannot be loaded degrades to a warning and
// formatting proceeds on built-in defaults.
func loadStyle(f *formatter.Formatter) {
	path := stylePath
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return
		}
		path = cfg.StylePath
	}
	if path == "" {
		return
	}

	if err := f.LoadStyleConfig(path); err != nil {
		log.Warn().Err(err).Str("path", path).
			Msg("Style configuration not usable, falling back to built-in defaults")
		pterm.Warning.WithWriter(os.Stderr).Println("could not load style configuration: " + err.Error())
	}
}

func parseLineRange(spec string) (start, end int, ranged bool, err error) {
	if spec == "" {
		return 0, 0, false, nil
	}
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 {
		return 0, 0, false, fmt.Errorf("invalid --lines value %q, want start:end", spec)
	}
	start, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid --lines start %q", parts[0])
	}
	end, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid --lines end %q", parts[1])
	}
	return start, end, true, nil
}

// writeBack rewrites the file preserving its permissions.
func writeBack(path, content string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(content), info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print version information for ideafmt`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ideafmt version %s\n", version.Version)
		fmt.Printf("  commit: %s\n", version.Commit)
		fmt.Printf("  built:  %s\n", version.Date)
	},
}

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion script",
	Long: `To load completions:

Bash:
  $ source <(ideafmt completion bash)

Zsh:
  $ ideafmt completion zsh > "${fpath[1]}/_ideafmt"

Fish:
  $ ideafmt completion fish | source

PowerShell:
  PS> ideafmt completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Run: func(cmd *cobra.Command, args []string) {
		switch args[0] {
		case "bash":
			_ = cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			_ = cmd.Root().GenZshCompletion(os.Stdout)
		case "fish":
			_ = cmd.Root().GenFishCompletion(os.Stdout, true)
		case "powershell":
			_ = cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
		}
	},
}

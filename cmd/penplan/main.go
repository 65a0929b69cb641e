package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/penplan/penplan/internal/breakeven"
	"github.com/penplan/penplan/internal/cache"
	"github.com/penplan/penplan/internal/calculation"
	"github.com/penplan/penplan/internal/config"
	"github.com/penplan/penplan/internal/domain"
	"github.com/penplan/penplan/internal/fiscal"
	"github.com/penplan/penplan/internal/output"
	"github.com/penplan/penplan/internal/research"
	"github.com/penplan/penplan/internal/server"
	"github.com/penplan/penplan/internal/tui"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "penplan",
	Short: "Retirement projection calculator",
	Long:  "Month-by-month retirement projection: accumulation, withdrawal strategies, progressive tax, national insurance, and capital depletion analysis",
}

// loadEngine reads the profile file and builds an engine over its fiscal
// parameters (or the defaults).
func loadEngine(inputFile string) (*config.ProfileFile, *calculation.Engine, error) {
	parser := config.NewInputParser()
	file, err := parser.LoadFromFile(inputFile)
	if err != nil {
		return nil, nil, err
	}
	params := domain.DefaultFiscalParameters()
	if file.Fiscal != nil {
		params = *file.Fiscal
	}
	return file, calculation.NewEngine(params, slog.Default()), nil
}

func calculateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calculate [profile-file]",
		Short: "Run the deterministic month-by-month projection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, engine, err := loadEngine(args[0])
			if err != nil {
				return err
			}
			result, err := engine.CalculateRetirementProjection(&file.Profile)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			formatter, err := output.ByName(format)
			if err != nil {
				return err
			}
			rendered, err := formatter.Format(result)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(rendered)
			return err
		},
	}
	cmd.Flags().String("format", "console", "Output format: console, csv, or json")
	return cmd
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary [profile-file]",
		Short: "Project milestone income and capital depletion ages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, engine, err := loadEngine(args[0])
			if err != nil {
				return err
			}

			var capital *decimal.Decimal
			if raw, _ := cmd.Flags().GetString("capital"); raw != "" {
				value, err := decimal.NewFromString(raw)
				if err != nil {
					return fmt.Errorf("invalid --capital value %q: %w", raw, err)
				}
				capital = &value
			}

			summary, err := engine.RetirementIncomeSummary(&file.Profile, capital)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(output.FormatSummary(summary))
			return err
		},
	}
	cmd.Flags().String("capital", "", "Capital at the retirement end age (default: simulated)")
	return cmd
}

func montecarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo [profile-file]",
		Short: "Run the randomized-returns projection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _, err := loadEngine(args[0])
			if err != nil {
				return err
			}

			cfg := calculation.DefaultMonteCarloConfig()
			if paths, _ := cmd.Flags().GetInt("paths"); paths > 0 {
				cfg.NumPaths = paths
			}
			if seed, _ := cmd.Flags().GetInt64("seed"); seed != 0 {
				cfg.Seed = seed
			}

			mc, err := calculation.RunMonteCarlo(&file.Profile, cfg)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(output.FormatMonteCarlo(mc))
			return err
		},
	}
	cmd.Flags().Int("paths", 0, "Number of simulation paths (default 1000)")
	cmd.Flags().Int64("seed", 0, "Random seed (default fixed)")
	return cmd
}

func solveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve [profile-file]",
		Short: "Find the sustainable monthly income for the profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _, err := loadEngine(args[0])
			if err != nil {
				return err
			}
			solution, err := breakeven.SolveSustainableIncome(&file.Profile, decimal.NewFromInt(1))
			if err != nil {
				return err
			}
			fmt.Printf("Sustainable net income: %s/month (residual %s after %d iterations)\n",
				solution.MonthlyNetIncome.StringFixed(0),
				solution.EndingBalance.StringFixed(0),
				solution.Iterations)
			if !solution.Converged {
				fmt.Println("Warning: search did not converge within tolerance")
			}
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the projection engine over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			redisAddr, _ := cmd.Flags().GetString("redis")

			var store cache.Store
			if redisAddr != "" {
				store = cache.NewRedisStore(redisAddr)
			} else {
				store = cache.NewMemoryStore()
			}

			engine := calculation.NewEngine(domain.DefaultFiscalParameters(), slog.Default())
			return server.New(engine, store, slog.Default()).ListenAndServe(addr)
		},
	}
	cmd.Flags().String("addr", ":8080", "Listen address")
	cmd.Flags().String("redis", "", "Redis address for the shared result cache (empty: in-memory)")
	return cmd
}

func tuiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui [profile-file]",
		Short: "Explore the projection interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, engine, err := loadEngine(args[0])
			if err != nil {
				return err
			}
			program := tea.NewProgram(tui.NewModel(engine, file.Profile), tea.WithAltScreen())
			_, err = program.Run()
			return err
		},
	}
}

func fiscalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fiscal",
		Short: "Manage fiscal parameters",
	}

	refresh := &cobra.Command{
		Use:   "refresh",
		Short: "Fetch current fiscal parameters from the research service",
		RunE: func(cmd *cobra.Command, args []string) error {
			apiKey := os.Getenv("OPENAI_API_KEY")
			if apiKey == "" {
				return research.ErrDisabled
			}
			baseURL, _ := cmd.Flags().GetString("base-url")
			model, _ := cmd.Flags().GetString("model")

			generator := research.NewOpenAIGenerator(apiKey, baseURL, model)
			researcher := research.NewResearcher(generator, fiscal.NewNormalizer(slog.Default()))

			params, err := researcher.FetchFiscalParameters(context.Background())
			if err != nil {
				return err
			}
			rendered, err := yaml.Marshal(map[string]domain.FiscalParameters{"fiscal": params})
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(rendered)
			return err
		},
	}
	refresh.Flags().String("base-url", "", "OpenAI-compatible API base URL")
	refresh.Flags().String("model", "", "Model name")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the built-in fiscal defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			rendered, err := yaml.Marshal(map[string]domain.FiscalParameters{"fiscal": domain.DefaultFiscalParameters()})
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(rendered)
			return err
		},
	}

	cmd.AddCommand(refresh, show)
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(os.Stdout, "penplan %s (commit %s, built %s)\n", version, commit, date)
			if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
				fmt.Fprintln(os.Stdout, bi.Main.Path)
			}
		},
	}
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	rootCmd.AddCommand(
		calculateCmd(),
		summaryCmd(),
		montecarloCmd(),
		solveCmd(),
		serveCmd(),
		tuiCmd(),
		fiscalCmd(),
		versionCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

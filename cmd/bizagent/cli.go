package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/chzyer/readline"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vyaaparik/bizagent/pkg/agent"
	"github.com/vyaaparik/bizagent/pkg/config"
	"github.com/vyaaparik/bizagent/pkg/data"
	"github.com/vyaaparik/bizagent/pkg/logger"
	"github.com/vyaaparik/bizagent/pkg/monitor"
	"github.com/vyaaparik/bizagent/pkg/providers"
	"github.com/vyaaparik/bizagent/pkg/server"
	"github.com/vyaaparik/bizagent/pkg/tools"
)

func executeCLI() error {
	return buildRootCommand().Execute()
}

func buildRootCommand() *cobra.Command {
	var showVersion bool

	root := &cobra.Command{
		Use:   appName,
		Short: "Business intelligence agent: query planning, analytical tools, and web-search synthesis",
		Long: strings.TrimSpace(`bizagent answers natural-language business questions over sales, inventory,
and review data. Queries are planned into tool chains, executed against the
loaded dataset (with optional live competitor web search), and synthesized
into a narrative answer with charts and citations.`),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				printVersion()
				return nil
			}
			_ = cmd.Help()
			return fmt.Errorf("a subcommand is required")
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.Flags().BoolVarP(&showVersion, "version", "v", false, "Show build/version metadata")

	root.AddCommand(newServeCommand())
	root.AddCommand(newChatCommand())
	root.AddCommand(newVersionCommand())
	return root
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show build/version metadata",
		Run: func(cmd *cobra.Command, args []string) {
			printVersion()
		},
	}
}

func loadRuntimeConfig(path string, debug bool) (*config.Config, error) {
	// .env is optional; real env vars still win via caarlos0/env.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	level := cfg.Log.Level
	if debug {
		level = "debug"
	}
	if err := logger.Init(level, cfg.Log.Format); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "bizagent.json"
	}
	return filepath.Join(home, ".bizagent", "config.json")
}

// buildAgent wires the store, tool registry, provider, and orchestrator
// from configuration.
func buildAgent(cfg *config.Config) (*agent.Agent, *data.Store, *tools.Registry, error) {
	if err := providers.ValidateProviderConfig(cfg); err != nil {
		return nil, nil, nil, err
	}
	provider, err := providers.CreateProvider(cfg)
	if err != nil {
		return nil, nil, nil, err
	}

	store := data.NewStore()
	opts := tools.Options{
		SalesWindowMonths:  cfg.Analysis.SalesWindowMonths,
		AdequateStockSlots: cfg.Analysis.AdequateStockSlots,
		DefaultMinAlert:    cfg.Analysis.DefaultMinAlert,
		SearchQualifier:    cfg.Analysis.SearchQualifier,
	}
	searchClient := tools.NewSerperClient(
		cfg.Search.Endpoint,
		cfg.Search.APIKey,
		time.Duration(cfg.Search.TimeoutSeconds)*time.Second,
		cfg.Search.MaxRetries,
	)

	registry := tools.NewRegistry()
	registry.Register(tools.NewProductAnalysisTool(store))
	registry.Register(tools.NewLowStockTool(store, opts))
	registry.Register(tools.NewMarketTrendsTool(store))
	registry.Register(tools.NewCompetitorSearchTool(searchClient, opts))

	a := agent.New(provider, registry, agent.Options{
		MemoryLimit:        cfg.Agent.MemoryLimit,
		AdequateStockSlots: cfg.Analysis.AdequateStockSlots,
	})
	return a, store, registry, nil
}

func newServeCommand() *cobra.Command {
	var (
		configPath string
		debug      bool
	)

	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the HTTP gateway (REST + websocket streaming + metrics)",
		Example: "  bizagent serve --config ~/.bizagent/config.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRuntimeConfig(configPath, debug)
			if err != nil {
				return err
			}
			defer logger.Sync()

			a, store, registry, err := buildAgent(cfg)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.Monitor.Enabled {
				watcher, err := monitor.NewLowStockWatcher(registry, cfg.Monitor.Schedule)
				if err != nil {
					return err
				}
				go watcher.Run(ctx)
			}

			srv := server.New(server.Config{
				Host:     cfg.Gateway.Host,
				Port:     cfg.Gateway.Port,
				AllowAll: cfg.Gateway.AllowAllOrigins,
			}, store, a)

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to config file")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func newChatCommand() *cobra.Command {
	var (
		configPath  string
		datasetPath string
		message     string
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask business questions interactively or one-shot",
		Example: strings.Join([]string{
			"  bizagent chat --dataset business.json",
			"  bizagent chat --dataset business.json --message \"What should I restock?\"",
		}, "\n"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadRuntimeConfig(configPath, debug)
			if err != nil {
				return err
			}
			defer logger.Sync()

			a, store, _, err := buildAgent(cfg)
			if err != nil {
				return err
			}

			if datasetPath != "" {
				ds, err := loadDataset(datasetPath)
				if err != nil {
					return err
				}
				store.Set(*ds)
				fmt.Printf("%s Loaded dataset: %d sales, %d inventory, %d reviews\n\n",
					appName, len(ds.Sales), len(ds.Inventory), len(ds.Reviews))
			} else {
				fmt.Printf("%s No dataset loaded; analytical tools will report data unavailable\n\n", appName)
			}

			if strings.TrimSpace(message) != "" {
				response := runQuery(a, store, message)
				printResponse(response)
				return nil
			}

			interactiveChat(a, store)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "Path to config file")
	cmd.Flags().StringVarP(&datasetPath, "dataset", "D", "", "Path to a JSON dataset file (sales/inventory/reviews)")
	cmd.Flags().StringVarP(&message, "message", "m", "", "One-shot question to ask")
	cmd.Flags().BoolVarP(&debug, "debug", "d", false, "Enable debug logging")
	return cmd
}

func loadDataset(path string) (*data.Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	var ds data.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("parse dataset: %w", err)
	}
	return &ds, nil
}

func interactiveChat(a *agent.Agent, store *data.Store) {
	prompt := fmt.Sprintf("%s You: ", appName)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		HistoryFile:     filepath.Join(os.TempDir(), ".bizagent_history"),
		HistoryLimit:    100,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("Error initializing readline: %v\n", err)
		return
	}
	defer rl.Close()

	fmt.Printf("%s Interactive mode (Ctrl+C to exit)\n\n", appName)

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Println("\nGoodbye!")
				return
			}
			fmt.Printf("Error reading input: %v\n", err)
			continue
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			fmt.Println("Goodbye!")
			return
		}

		printResponse(runQuery(a, store, input))
	}
}

func runQuery(a *agent.Agent, store *data.Store, query string) *agent.Response {
	summary := data.BusinessSummary{}
	if ds, ok := store.Snapshot(); ok {
		summary = ds.Summarize()
	}

	bar := newAnalysisBar()
	response := a.ProcessQueryStream(context.Background(), query, summary, func(step agent.AnalysisStep) {
		_ = bar.Set(step.Progress)
	})
	_ = bar.Finish()
	_ = bar.Clear()
	return response
}

func printResponse(response *agent.Response) {
	fmt.Printf("\n%s\n\n%s\n\n", response.Insights, response.Analysis)

	if len(response.Recommendations) > 0 {
		fmt.Println("Recommendations:")
		for i, rec := range response.Recommendations {
			fmt.Printf("  %d. %s\n", i+1, rec)
		}
	}
	if len(response.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, source := range response.Sources {
			fmt.Printf("  - %s\n", source)
		}
	}
	if response.Metadata != nil {
		fmt.Printf("\n[%d tools, %d data points, %s%s]\n",
			len(response.Metadata.ToolsUsed),
			response.Metadata.DataPointsAnalyzed,
			response.Metadata.TotalExecutionTime.Round(time.Millisecond),
			degradedTag(response.Degraded))
	}
	fmt.Println()
}

func degradedTag(degraded bool) string {
	if degraded {
		return ", degraded"
	}
	return ""
}

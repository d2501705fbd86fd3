package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/edugenie/internal/config"
	"github.com/abhisek/edugenie/internal/difficulty"
	"github.com/abhisek/edugenie/internal/gateway"
	"github.com/abhisek/edugenie/internal/learningpath"
	"github.com/abhisek/edugenie/internal/llm"
	"github.com/abhisek/edugenie/internal/logging"
	"github.com/abhisek/edugenie/internal/metrics"
	"github.com/abhisek/edugenie/internal/quizgen"
	"github.com/abhisek/edugenie/internal/rewards"
	"github.com/abhisek/edugenie/internal/screens"
	"github.com/abhisek/edugenie/internal/store"
	"github.com/abhisek/edugenie/internal/tutor"
)

// env is everything a command needs, built once from flags and config.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *store.Store
	metrics *metrics.Metrics
	svc     *screens.Services
}

func (e *env) Close() {
	e.store.Close()
	_ = e.logger.Sync()
}

// loadConfig reads config and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		if _, err := logging.ParseLevel(lvl); err != nil {
			return nil, err
		}
		cfg.Log.Level = lvl
	}
	if u, _ := cmd.Flags().GetString("user"); u != "" {
		cfg.Quiz.User = u
	}
	return cfg, nil
}

// openStore resolves the database: --db wins, then store.dsn, then the
// default data directory.
func openStore(cmd *cobra.Command, cfg *config.Config) (*store.Store, error) {
	driver := cfg.StoreDriver()
	dsn := cfg.Store.DSN
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		driver, dsn = store.DriverSQLite, p
		if err := store.EnsureDir(p); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}
	if driver == store.DriverSQLite && dsn == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
		dsn = p
	}
	st, err := store.OpenDriver(cmd.Context(), driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// newEnv wires config, logging, storage, the model gateway and every
// service. fullscreen disables console logging, which would draw over the TUI.
func newEnv(cmd *cobra.Command, fullscreen bool) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if fullscreen {
		cfg.Log.Console = false
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}
	st, err := openStore(cmd, cfg)
	if err != nil {
		return nil, err
	}
	m := metrics.New()

	llmCfg := cfg.LLMConfig()
	var provider llm.Provider
	if !llmCfg.IsOffline() {
		provider, err = llm.NewProvider(cmd.Context(), llmCfg, llm.Deps{
			Events:  st.EventRepo(),
			Cache:   st.Cache(),
			Metrics: m,
			Logger:  logger,
		})
		if err != nil {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			fmt.Fprintln(os.Stderr, "AI features will use sample content.")
			logger.Warn("llm provider unavailable", zap.Error(err))
			provider = nil
		}
	}

	gw := gateway.New(provider, gateway.Options{
		Timeout:     cfg.LLM.Timeout,
		MaxTokens:   cfg.Quiz.MaxTokens,
		Temperature: cfg.Quiz.Temperature,
		Logger:      logger,
	})

	genCfg := quizgen.DefaultConfig()
	genCfg.MaxTokens = cfg.Quiz.MaxTokens
	genCfg.TokensPerQuestion = cfg.Quiz.TokensPerQuestion
	genCfg.MaxTokensCap = cfg.Quiz.MaxTokensCap
	genCfg.Temperature = cfg.Quiz.Temperature
	gen := quizgen.NewLLMGenerator(gw, genCfg, m, logger)

	svc := &screens.Services{
		User:             cfg.Quiz.User,
		DefaultQuestions: cfg.Quiz.Questions,
		Records:          st.QuizRecords(),
		Gateway:          gw,
		Generator:        gen,
		Grader:           quizgen.NewGrader(gw, logger),
		Adapter: difficulty.Adapter{
			Window:     cfg.Quiz.Window,
			RaiseAbove: cfg.Quiz.RaiseAbove,
			LowerBelow: cfg.Quiz.LowerBelow,
		},
		Rewards: rewards.NewService(st.XP(), logger),
		Plans: learningpath.NewService(learningpath.Deps{
			Records:   st.QuizRecords(),
			Plans:     st.Plans(),
			Gateway:   gw,
			Generator: gen,
			Logger:    logger,
		}),
		Tutor:   tutor.NewAgent(gw, "", logger),
		Metrics: m,
		Logger:  logger,
	}

	logger.Debug("environment ready",
		zap.String("provider", llmCfg.Provider),
		zap.String("model", gw.ModelID()),
		zap.String("store", string(st.Driver())))

	return &env{cfg: cfg, logger: logger, store: st, metrics: m, svc: svc}, nil
}

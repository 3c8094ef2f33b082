package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/citysafe/crimebot/internal/domain/chat"
	"github.com/citysafe/crimebot/internal/domain/forecast"
	"github.com/citysafe/crimebot/internal/domain/predictor"
	"github.com/citysafe/crimebot/internal/infra/chatlog"
	"github.com/citysafe/crimebot/internal/infra/config"
	"github.com/citysafe/crimebot/internal/infra/gazetteer"
	"github.com/citysafe/crimebot/internal/infra/llm/chatgpt"
	"github.com/citysafe/crimebot/internal/infra/model"
	"github.com/citysafe/crimebot/internal/infra/sessionrepo"
)

func provideChatConfig(cfg *config.Config) chat.Config {
	return chat.Config{
		Model:              cfg.LLM.Model,
		Temperature:        cfg.LLM.Temperature,
		Prompt:             cfg.Chat.Prompt,
		HistoryMaxTokens:   cfg.Chat.HistoryMaxTokens,
		HistoryMaxMessages: cfg.Chat.HistoryMaxMessages,
	}
}

// provideModel loads the classifier artifact. A missing or invalid artifact
// does not prevent startup; the oracle reports model_unavailable per call.
func provideModel(cfg *config.Config, logger *slog.Logger) predictor.Model {
	path, found := model.Locate(cfg.Model.Path)
	if !found {
		logger.Warn("classifier artifact not found, predictions disabled", "configuredPath", cfg.Model.Path)
		return nil
	}
	loaded, err := model.Load(path)
	if err != nil {
		logger.Error("failed to load classifier artifact, predictions disabled", "path", path, "error", err)
		return nil
	}
	logger.Info("classifier artifact loaded", "path", path)
	return loaded
}

func provideOracle(m predictor.Model, logger *slog.Logger) *predictor.Oracle {
	return predictor.NewOracle(m, logger)
}

func provideForecastEngine(oracle *predictor.Oracle, logger *slog.Logger) forecast.Service {
	return forecast.NewEngine(oracle, logger)
}

func provideContextStore(cfg *config.Config, logger *slog.Logger) chat.ContextStore {
	if cfg.Chat.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to memory context store", "error", err)
			return sessionrepo.NewMemoryStore()
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to memory context store", "error", err)
			return sessionrepo.NewMemoryStore()
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to memory context store", "error", err)
		} else {
			logger.Info("valkey context store enabled", "addr", cfg.Chat.Valkey.Addr)
			return sessionrepo.NewValkeyStore(client, "crimebot", cfg.Chat.ContextTTL)
		}
	}
	return sessionrepo.NewMemoryStore()
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Chat.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Chat.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Chat.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideMessageLog(cfg *config.Config, logger *slog.Logger) chat.MessageLog {
	fallback := chatlog.NewMemoryLog()
	dsn := strings.TrimSpace(cfg.Chat.Postgres.DSN)
	if dsn == "" {
		logger.Info("chat postgres dsn not set, using memory transcript log")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory transcript log", "error", err)
		return fallback
	}
	if cfg.Chat.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Chat.Postgres.MaxConns
	}
	if cfg.Chat.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Chat.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory transcript log", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory transcript log", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("chat postgres transcript log enabled")
	return chatlog.NewPostgresLog(pool)
}

func provideGeocoder(cfg *config.Config, logger *slog.Logger) chat.Geocoder {
	static, err := gazetteer.NewStatic(cfg.Gazetteer.Path)
	if err != nil {
		logger.Error("failed to load gazetteer file, using built-in places only", "path", cfg.Gazetteer.Path, "error", err)
		static, _ = gazetteer.NewStatic("")
	}
	return static
}

// provideChatClient builds the prose layer client. Without an API key the
// service answers with the deterministic templates instead.
func provideChatClient(cfg *config.Config, logger *slog.Logger) chat.ChatClient {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Info("llm api key not set, using deterministic replies")
		return nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL)
	if err != nil {
		logger.Error("failed to create chatgpt client, using deterministic replies", "error", err)
		return nil
	}
	return client
}

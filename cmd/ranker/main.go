package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Algolizen-Inc/LinkRanker/internal/analytics"
	"github.com/Algolizen-Inc/LinkRanker/internal/authority"
	"github.com/Algolizen-Inc/LinkRanker/internal/expand"
	"github.com/Algolizen-Inc/LinkRanker/internal/index"
	"github.com/Algolizen-Inc/LinkRanker/internal/ranking"
	rankcache "github.com/Algolizen-Inc/LinkRanker/internal/ranking/cache"
	"github.com/Algolizen-Inc/LinkRanker/internal/ranking/handler"
	"github.com/Algolizen-Inc/LinkRanker/internal/relevance"
	"github.com/Algolizen-Inc/LinkRanker/pkg/config"
	"github.com/Algolizen-Inc/LinkRanker/pkg/health"
	"github.com/Algolizen-Inc/LinkRanker/pkg/kafka"
	"github.com/Algolizen-Inc/LinkRanker/pkg/logger"
	"github.com/Algolizen-Inc/LinkRanker/pkg/metrics"
	"github.com/Algolizen-Inc/LinkRanker/pkg/middleware"
	"github.com/Algolizen-Inc/LinkRanker/pkg/postgres"
	"github.com/Algolizen-Inc/LinkRanker/pkg/proto"
	pkgredis "github.com/Algolizen-Inc/LinkRanker/pkg/redis"
	"github.com/Algolizen-Inc/LinkRanker/pkg/rpc"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting ranking service", "port", cfg.Server.Port, "variant", cfg.Ranking.Variant)

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	pgClient, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Error("failed to connect to postgres index source", "error", err)
		os.Exit(1)
	}
	defer pgClient.Close()
	source := index.NewPostgresSource(pgClient)

	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var synonyms map[string][]string
	if cfg.Expansion.SynonymsFile != "" {
		synonyms, err = expand.LoadSynonyms(cfg.Expansion.SynonymsFile)
		if err != nil {
			slog.Error("failed to load synonyms", "error", err)
			os.Exit(1)
		}
		slog.Info("synonym table loaded", "terms", len(synonyms))
	}
	var expander expand.Expander = expand.NewSynonymExpander(synonyms)
	if len(cfg.Expansion.Boosts) > 0 || len(cfg.Expansion.ExactTerms) > 0 {
		expander = expand.NewBoostedExpander(expander, cfg.Expansion.Boosts, cfg.Expansion.ExactTerms)
	}
	if redisClient != nil {
		expander = expand.NewCachedExpander(expander, redisClient, cfg.Expansion)
	}

	store := authority.NewStore(authority.IterationParams{
		Damping:       cfg.Authority.Damping,
		MaxIterations: cfg.Authority.MaxIterations,
		Tolerance:     cfg.Authority.Tolerance,
	}, m)

	orch := ranking.New(store, expander, scoringParams(cfg.Ranking), cfg.Ranking.Workers, m)

	var resultCache *rankcache.ResultCache
	var invalidate func(ctx context.Context) error
	if redisClient != nil {
		resultCache = rankcache.New(redisClient, cfg.Redis)
		invalidate = resultCache.Invalidate
		slog.Info("rank cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rankProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RankEvents)
	collector := analytics.NewCollector(rankProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()

	refresher := ranking.NewRefresher(source, orch, store, invalidate, collector, cfg.Authority.RefreshTimeout, m)

	if err := refresher.Refresh(ctx); err != nil {
		slog.Error("initial snapshot load failed, serving degraded until refresh succeeds", "error", err)
	}

	indexConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.IndexUpdated, refresher.HandleIndexUpdated())
	go func() {
		if err := indexConsumer.Start(ctx); err != nil {
			slog.Error("index-updated consumer error", "error", err)
		}
	}()

	aggregator := analytics.NewAggregator()
	analyticsH := analytics.NewHandler(aggregator)
	analyticsConsumer := kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.RankEvents, analytics.HandleEvent(aggregator))
	go func() {
		if err := analyticsConsumer.Start(ctx); err != nil {
			slog.Error("rank analytics consumer error", "error", err)
		}
	}()

	checker := health.NewChecker()
	checker.Register("snapshot", func(ctx context.Context) health.ComponentHealth {
		snap := orch.Snapshot()
		if snap == nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: "not loaded"}
		}
		return health.ComponentHealth{Status: health.StatusUp, Message: fmt.Sprintf("%d docs", snap.TotalDocs())}
	})
	checker.Register("authority", func(ctx context.Context) health.ComponentHealth {
		if !store.Initialized() {
			return health.ComponentHealth{Status: health.StatusDown, Message: "not computed"}
		}
		if len(store.Scores()) == 0 {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "degenerate graph"}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if err := pgClient.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	h := handler.New(orch, resultCache, collector, source, refresher.Refresh, cfg.Ranking, m)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/rank", h.Rank)
	mux.HandleFunc("POST /api/v1/refresh", h.Refresh)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.RPC.Enabled {
		rpcServer := rpc.NewServer()
		registerRPC(rpcServer, orch, refresher, source, cfg.Ranking)
		go func() {
			if err := rpcServer.Serve(fmt.Sprintf(":%d", cfg.RPC.Port)); err != nil {
				slog.Error("rpc server error", "error", err)
			}
		}()
		defer rpcServer.Stop()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("ranking service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("ranking service stopped")
}

// scoringParams selects the BM25 tunable set named by the config.
func scoringParams(cfg config.RankingConfig) relevance.Params {
	switch cfg.Variant {
	case "standard":
		return relevance.Params{K1: cfg.K1, B: cfg.B}
	default:
		return relevance.Params{K1: cfg.K1Plus, B: cfg.BPlus}
	}
}

func registerRPC(s *rpc.Server, orch *ranking.Orchestrator, refresher *ranking.Refresher, source index.Source, cfg config.RankingConfig) {
	s.Register("RankService.Rank", func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.RankRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("decoding rank request: %w", err)
		}
		contentWeight := req.ContentWeight
		authorityWeight := req.AuthorityWeight
		if contentWeight == 0 && authorityWeight == 0 {
			contentWeight = cfg.ContentWeight
			authorityWeight = cfg.AuthorityWeight
		}
		result, err := orch.Rank(ctx, req.Query, contentWeight, authorityWeight)
		if err != nil {
			return nil, err
		}
		ranked := result.Results
		if req.Limit > 0 && len(ranked) > int(req.Limit) {
			ranked = ranked[:req.Limit]
		}
		docs := make([]proto.RankedDoc, len(ranked))
		for i, rd := range ranked {
			docs[i] = proto.RankedDoc{DocID: rd.DocID, Score: rd.Score}
		}
		return &proto.RankResponse{
			Query:             result.Query,
			Candidates:        int32(result.Candidates),
			DegradedAuthority: result.DegradedAuthority,
			Results:           docs,
		}, nil
	})

	s.Register("RankService.Refresh", func(ctx context.Context, _ json.RawMessage) (any, error) {
		if err := refresher.Refresh(ctx); err != nil {
			return nil, err
		}
		snap := orch.Snapshot()
		return &proto.RefreshResponse{
			Docs:  int32(snap.TotalDocs()),
			Links: int32(len(snap.Links())),
		}, nil
	})

	s.Register("RankService.GetDocument", func(ctx context.Context, raw json.RawMessage) (any, error) {
		var req proto.GetDocumentRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			return nil, fmt.Errorf("decoding document request: %w", err)
		}
		doc, err := source.GetDocumentByID(ctx, req.DocID)
		if err != nil {
			return nil, err
		}
		return &proto.GetDocumentResponse{
			ID:      doc.ID,
			URL:     doc.URL,
			Title:   doc.Title,
			Content: doc.Content,
		}, nil
	})
}

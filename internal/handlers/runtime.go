package handlers

import (
	"fmt"

	"github.com/user/tripagent/internal/agent"
	"github.com/user/tripagent/internal/config"
	"github.com/user/tripagent/internal/errors"
	"github.com/user/tripagent/internal/llm"
	"github.com/user/tripagent/internal/logging"
	"github.com/user/tripagent/internal/lookupcache"
	"github.com/user/tripagent/internal/prompts"
	"github.com/user/tripagent/internal/resolver"
	"github.com/user/tripagent/internal/session"
	"github.com/user/tripagent/internal/store"
	"github.com/user/tripagent/internal/tools"
)

// Runtime holds the wired planning stack shared by the handlers
type Runtime struct {
	*BaseHandler
	Planner  *agent.Planner
	Invoker  *agent.InvokeNode
	Store    store.Store
	Prompts  *prompts.Manager
	Airports *session.AirportMap
	Cache    *lookupcache.LRUCache
}

// Dependencies lets callers replace the network-facing parts of the stack
type Dependencies struct {
	LLM      llm.LLMClient
	Searcher tools.Searcher
	Store    store.Store
}

// NewRuntime builds the stack from configuration
func NewRuntime(cfg *config.Config, logger *logging.Logger) (*Runtime, error) {
	return NewRuntimeWith(cfg, logger, Dependencies{})
}

// NewRuntimeWith builds the stack, using deps where set
func NewRuntimeWith(cfg *config.Config, logger *logging.Logger, deps Dependencies) (*Runtime, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	pm, err := prompts.NewManagerWithOverrides(cfg.Prompts.Path)
	if err != nil {
		return nil, errors.NewConfigurationError(fmt.Sprintf("failed to load prompts: %v", err))
	}

	airports := session.DefaultAirportMap()
	if cfg.Airports.Path != "" {
		if airports, err = session.LoadAirportMap(cfg.Airports.Path); err != nil {
			return nil, errors.NewConfigurationError(err.Error())
		}
	}

	retryClient := llm.NewRetryClientWithTimeout(cfg.LLM.GetTimeout(), llm.RetryConfigFrom(cfg.Retry))

	client := deps.LLM
	if client == nil {
		if client, err = llm.NewFactory(retryClient).CreateClient(cfg.LLM); err != nil {
			return nil, err
		}
	}

	rt := &Runtime{
		BaseHandler: NewBaseHandler(cfg, logger),
		Prompts:     pm,
		Airports:    airports,
	}

	searcher := deps.Searcher
	if searcher == nil {
		searcher = tools.NewSerpAPIClient(cfg.Search, retryClient)
	}
	if cfg.Cache.Enabled {
		rt.Cache = lookupcache.NewLRUCache(cfg.Cache.GetMaxSize(), cfg.Cache.GetTTL())
		searcher = tools.NewCachedSearcher(searcher, rt.Cache)
	}

	rt.Store = deps.Store
	if rt.Store == nil {
		if rt.Store, err = store.Open(cfg.Store); err != nil {
			return nil, errors.NewStoreError("open", cfg.Store.Driver, err)
		}
	}

	res := resolver.New(airports)
	rt.Invoker = agent.NewInvokeNode(res, tools.NewRegistry(searcher), logger, cfg.Agent)
	decider := agent.NewDecisionNode(client, pm, logger, cfg.LLM)
	rt.Planner = agent.NewPlanner(decider, rt.Invoker, rt.Store, logger, cfg.Agent)

	logger.Debug("Runtime ready",
		logging.String("provider", cfg.LLM.Provider),
		logging.String("model", cfg.LLM.Model),
		logging.String("store", cfg.Store.Driver),
		logging.Int("airports", airports.Len()),
		logging.Bool("cache", cfg.Cache.Enabled),
	)
	return rt, nil
}

// Close releases the session store
func (r *Runtime) Close() error {
	if r.Store == nil {
		return nil
	}
	return r.Store.Close()
}

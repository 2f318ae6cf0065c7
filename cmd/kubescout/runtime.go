package main

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/kubescout/kubescout/internal/api"
	"github.com/kubescout/kubescout/internal/config"
	"github.com/kubescout/kubescout/internal/state"
	"github.com/kubescout/kubescout/internal/toolconn"
)

// signalsDir is where out-of-band control files live.
const signalsDir = ".kubescout"

// runtime bundles everything a command needs to run a session.
type runtime struct {
	cfg    *config.Config
	db     *state.DB
	client *api.Client
	agents []config.AgentConfig
}

// openRuntime loads config, opens the state database, and builds the API
// client and agent roster.
func openRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagModel != "" {
		cfg.Anthropic.Model = flagModel
	}
	if flagAgentsFile != "" {
		cfg.Agents.File = flagAgentsFile
	}

	dbPath := flagDBPath
	if dbPath == "" {
		dbPath = state.GlobalDBPath()
	}
	db, err := state.Open(dbPath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	clientCfg := api.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	}
	if !cfg.Anthropic.UseBedrock {
		key, err := config.GetAPIKey(cfg)
		if err != nil {
			db.Close()
			return nil, err
		}
		clientCfg.APIKey = key
	}
	client, err := api.NewClient(clientCfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	agents := config.DefaultAgents()
	if cfg.Agents.File != "" {
		agents, err = config.LoadAgents(cfg.Agents.File)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	return &runtime{cfg: cfg, db: db, client: client, agents: agents}, nil
}

func (rt *runtime) Close() {
	rt.db.Close()
}

// catalog renders the agent/tool inventory for the planner prompt.
func (rt *runtime) catalog(ctx context.Context) string {
	sources, failures := toolconn.ResolveAll(rt.agents)
	for name, err := range failures {
		fmt.Printf("warning: agent %s unavailable: %v\n", name, err)
	}
	return toolconn.Catalog(ctx, rt.agents, sources)
}

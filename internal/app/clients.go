package app

import (
	"fmt"
	"os"
	"strings"

	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/voyplan/voyplan-backend/internal/clients/openai"
	redisbus "github.com/voyplan/voyplan-backend/internal/clients/redis"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
	"github.com/voyplan/voyplan-backend/internal/temporalx"
)

type Clients struct {
	AI       openai.Client
	Bus      redisbus.EventBus
	Temporal temporalsdkclient.Client
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	ai, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}

	var bus redisbus.EventBus
	if strings.TrimSpace(os.Getenv("REDIS_ADDR")) != "" {
		bus, err = redisbus.NewEventBus(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis event bus: %w", err)
		}
	} else if log != nil {
		log.Warn("REDIS_ADDR not set; generation events stay in-process")
	}

	var tc temporalsdkclient.Client
	if cfg.ChainDriver == ChainDriverTemporal {
		tc, err = temporalx.NewClient(log)
		if err != nil {
			return Clients{}, fmt.Errorf("init temporal client: %w", err)
		}
		if tc == nil {
			return Clients{}, fmt.Errorf("chain driver temporal selected but Temporal client unavailable")
		}
	}

	return Clients{AI: ai, Bus: bus, Temporal: tc}, nil
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if c.Temporal != nil {
		c.Temporal.Close()
	}
}

package app

import (
	"fmt"
	"os"
	"strings"
)

// ChainDriver selects how generation invocation chains are executed: inline
// on API-process goroutines, or as Temporal workflows on a worker fleet.
type ChainDriver string

const (
	ChainDriverInline   ChainDriver = "inline"
	ChainDriverTemporal ChainDriver = "temporal"
)

type ChainDriverConfigErrorCode string

const (
	ChainDriverConfigErrorUnknownDriver   ChainDriverConfigErrorCode = "unknown_chain_driver"
	ChainDriverConfigErrorMissingTemporal ChainDriverConfigErrorCode = "missing_temporal_address"
)

type ChainDriverConfigError struct {
	Code   ChainDriverConfigErrorCode
	Driver string
	Cause  error
}

func (e *ChainDriverConfigError) Error() string {
	if e == nil {
		return "invalid chain driver config"
	}
	return fmt.Sprintf("invalid chain driver config (code=%s driver=%q): %v", e.Code, e.Driver, e.Cause)
}

func (e *ChainDriverConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

type ChainDriverConfig struct {
	Driver ChainDriver
	Source string
}

// resolveChainDriver picks the driver from CHAIN_DRIVER, defaulting to
// temporal when TEMPORAL_ADDRESS is configured and inline otherwise. An
// explicit temporal selection without a reachable address is a config error
// rather than a silent downgrade.
func resolveChainDriver() (ChainDriverConfig, error) {
	raw := strings.ToLower(strings.TrimSpace(os.Getenv("CHAIN_DRIVER")))
	temporalAddr := strings.TrimSpace(os.Getenv("TEMPORAL_ADDRESS"))

	switch raw {
	case "":
		if temporalAddr != "" {
			return ChainDriverConfig{Driver: ChainDriverTemporal, Source: "temporal_address_default"}, nil
		}
		return ChainDriverConfig{Driver: ChainDriverInline, Source: "default"}, nil
	case string(ChainDriverInline):
		return ChainDriverConfig{Driver: ChainDriverInline, Source: "env"}, nil
	case string(ChainDriverTemporal):
		if temporalAddr == "" {
			return ChainDriverConfig{}, &ChainDriverConfigError{
				Code:   ChainDriverConfigErrorMissingTemporal,
				Driver: raw,
				Cause:  fmt.Errorf("CHAIN_DRIVER=temporal requires TEMPORAL_ADDRESS"),
			}
		}
		return ChainDriverConfig{Driver: ChainDriverTemporal, Source: "env"}, nil
	default:
		return ChainDriverConfig{}, &ChainDriverConfigError{
			Code:   ChainDriverConfigErrorUnknownDriver,
			Driver: raw,
			Cause:  fmt.Errorf("unsupported chain driver %q", raw),
		}
	}
}

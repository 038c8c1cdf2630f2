package app

import (
	"github.com/voyplan/voyplan-backend/internal/platform/envutil"
	"github.com/voyplan/voyplan-backend/internal/platform/logger"
)

type Config struct {
	Env         string
	Port        string
	ChainDriver ChainDriver
	DriverFrom  string
}

func LoadConfig(log *logger.Logger) (Config, error) {
	driver, err := resolveChainDriver()
	if err != nil {
		return Config{}, err
	}
	if log != nil {
		log.Info("Resolved generation chain driver", "driver", string(driver.Driver), "source", driver.Source)
	}
	return Config{
		Env:         envutil.Get("APP_ENV", "development"),
		Port:        envutil.Get("PORT", "8080"),
		ChainDriver: driver.Driver,
		DriverFrom:  driver.Source,
	}, nil
}

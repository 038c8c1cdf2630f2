package temporalx

import (
	"os"
	"strings"

	"github.com/voyplan/voyplan-backend/internal/platform/envutil"
)

type Config struct {
	Address   string
	Namespace string
	TaskQueue string
}

func LoadConfig() Config {
	return Config{
		Address:   strings.TrimSpace(os.Getenv("TEMPORAL_ADDRESS")),
		Namespace: envutil.Get("TEMPORAL_NAMESPACE", "voyplan"),
		TaskQueue: envutil.Get("TEMPORAL_TASK_QUEUE", "voyplan"),
	}
}

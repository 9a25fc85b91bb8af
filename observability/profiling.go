package observability

import (
	"github.com/grafana/pyroscope-go"

	"github.com/velora-shop/storefront-go/config"
)

var profiler *pyroscope.Profiler

// InitProfiling starts Pyroscope continuous profiling for this client process.
func InitProfiling(cfg *config.Config) error {
	name := cfg.Profiling.ServiceName
	if name == "" {
		name = cfg.Service.Name
	}

	pcfg := pyroscope.Config{
		ApplicationName: name,
		ServerAddress:   cfg.Profiling.Endpoint,
		Tags: map[string]string{
			"service": name,
			"env":     cfg.Service.Env,
		},
		ProfileTypes: []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocObjects,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseObjects,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		},
		Logger: pyroscope.StandardLogger,
	}

	var err error
	profiler, err = pyroscope.Start(pcfg)
	return err
}

// StopProfiling stops Pyroscope profiling.
func StopProfiling() {
	if profiler != nil {
		_ = profiler.Stop()
	}
}

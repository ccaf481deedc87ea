package app

import (
	"errors"

	"github.com/retailsetu/delivery-engine/internal/config"
	"github.com/retailsetu/delivery-engine/internal/logger"
	"github.com/retailsetu/delivery-engine/internal/provider"
	"github.com/retailsetu/delivery-engine/internal/router"
	"github.com/retailsetu/delivery-engine/internal/worker"
)

// BuildRunner wires the container and assembles the services for a mode.
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}

	container := provider.NewContainer(cfg)

	if container.AuthzService != nil {
		if err := container.AuthzService.BootstrapBuiltinRoles(); err != nil {
			logger.Errorw("authz_bootstrap_failed", "error", err)
		}
	}

	var services []Service

	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	if mode == ModeAll || mode == ModeWorker {
		consumer := worker.NewConsumer(container)
		workerService, err := worker.NewService(&cfg.Queue, consumer)
		if err != nil {
			// In all mode a disabled queue degrades to API-only; a worker-only
			// start without a queue is a configuration error.
			if mode == ModeWorker {
				return nil, err
			}
			logger.Warnw("worker_service_skipped", "error", err)
		} else {
			services = append(services, workerService)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("no services initialized (check mode and config)")
	}

	return NewRunner(services...), nil
}

// Run is the application entrypoint used by cmd/server.
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}

// Package bootstrap is the composition root: it wires the service
// registry with every creator and instance a training run depends on and
// binds the message dispatcher to it.
package bootstrap

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lunaml/luna16/internal/config"
	"github.com/lunaml/luna16/internal/hyperparams"
	"github.com/lunaml/luna16/internal/messaging"
	"github.com/lunaml/luna16/internal/registry"
	"github.com/lunaml/luna16/internal/tracking"
)

// NewRegistry builds the registry for one training invocation. External
// resources (scalar writers, the tracking run, the artifact store) hide
// behind creators so nothing opens until the trainer calls
// CallAllCreators with the run scope; the hyperparameter container,
// Prometheus collectors, and dispatcher exist up front.
func NewRegistry(cfg *config.Config, prom prometheus.Registerer, params *hyperparams.Container) (*registry.Registry, *messaging.Dispatcher, error) {
	reg := registry.New()

	// The run and the model store share one lazily-opened artifact store;
	// creators must not resolve each other through the registry.
	var (
		artifactsOnce sync.Once
		artifacts     *tracking.ArtifactStore
		artifactsErr  error
	)
	openArtifacts := func(ctx context.Context) (*tracking.ArtifactStore, error) {
		if !cfg.MinIO.Enabled {
			return nil, nil
		}
		artifactsOnce.Do(func() {
			artifacts, artifactsErr = tracking.NewArtifactStore(ctx, cfg.MinIO)
		})
		return artifacts, artifactsErr
	}

	newWriterCreator := func(mode string) registry.Creator {
		return func(ctx context.Context, scope registry.Scope) (any, error) {
			if err := scope.Validate(); err != nil {
				return nil, err
			}
			return tracking.NewScalarWriter(filepath.Join(cfg.Tracking.Dir, scope.RunID), mode)
		}
	}
	closeWriter := func(instance any) error {
		return instance.(*tracking.ScalarWriter).Close()
	}

	if err := reg.RegisterCreator(tracking.KeyTrainingWriter, newWriterCreator("training"), closeWriter); err != nil {
		return nil, nil, err
	}
	if err := reg.RegisterCreator(tracking.KeyValidationWriter, newWriterCreator("validation"), closeWriter); err != nil {
		return nil, nil, err
	}

	if cfg.MinIO.Enabled {
		err := reg.RegisterCreator(tracking.KeyArtifacts, func(ctx context.Context, scope registry.Scope) (any, error) {
			return openArtifacts(ctx)
		}, nil)
		if err != nil {
			return nil, nil, err
		}
	}

	err := reg.RegisterCreator(tracking.KeyRun, func(ctx context.Context, scope registry.Scope) (any, error) {
		store, err := openArtifacts(ctx)
		if err != nil {
			return nil, err
		}
		return tracking.OpenRun(cfg.Tracking.Dir, store, scope)
	}, func(instance any) error {
		return instance.(*tracking.Run).Close()
	})
	if err != nil {
		return nil, nil, err
	}

	err = reg.RegisterCreator(tracking.KeyModelStore, func(ctx context.Context, scope registry.Scope) (any, error) {
		store, err := openArtifacts(ctx)
		if err != nil {
			return nil, err
		}
		return tracking.NewModelStore(cfg.Tracking.ModelsDir, store)
	}, nil)
	if err != nil {
		return nil, nil, err
	}

	if err := reg.RegisterService(tracking.KeyCollectors, tracking.NewCollectors(prom)); err != nil {
		return nil, nil, err
	}
	if err := reg.RegisterService(hyperparams.ServiceKey, params); err != nil {
		return nil, nil, err
	}

	dispatcher := messaging.NewDispatcher(reg, messaging.DefaultTable())
	if err := reg.RegisterService(messaging.ServiceKey, dispatcher); err != nil {
		return nil, nil, err
	}

	return reg, dispatcher, nil
}

// Package tracking implements the experiment-tracking backends the message
// handlers write to: per-mode scalar writers, an experiment run with its
// artifact store, checkpoint persistence, and Prometheus collectors.
package tracking

import "github.com/lunaml/luna16/internal/registry"

// Registry keys for the tracking services. Handlers resolve backends
// through these keys instead of holding references, so tests can bind
// fakes to the same keys.
const (
	KeyTrainingWriter   registry.Key = "tracking.writer.training"
	KeyValidationWriter registry.Key = "tracking.writer.validation"
	KeyRun              registry.Key = "tracking.run"
	KeyModelStore       registry.Key = "tracking.models"
	KeyCollectors       registry.Key = "tracking.collectors"
	KeyArtifacts        registry.Key = "tracking.artifacts"
)

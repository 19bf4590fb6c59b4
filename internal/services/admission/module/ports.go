package module

import "registrygate/internal/services/admission/domain"

// Ports defines admission module ports exposed via the registry
type Ports struct {
	Evaluator domain.EvaluatorPort
}

package service

import (
	"github.com/okian/quantumcrowd/internal/domain/kernel"
	"github.com/okian/quantumcrowd/internal/domain/model"
)

// ModelInfo describes the prediction model served by the service.
type ModelInfo struct {
	Name        string          `json:"model_name"`
	Version     string          `json:"model_version"`
	Description string          `json:"description"`
	Features    []string        `json:"features"`
	References  []string        `json:"references"`
	Components  ModelComponents `json:"quantum_components"`
}

// ModelComponents describes the kernel configuration.
type ModelComponents struct {
	FeatureMap   string  `json:"feature_map"`
	KernelMethod string  `json:"kernel_method"`
	Kernel       string  `json:"kernel"`
	Backend      string  `json:"backend"`
	Qubits       int     `json:"qubits"`
	Reps         int     `json:"reps,omitempty"`
	Gamma        float64 `json:"gamma,omitempty"`
	CircuitDepth int     `json:"circuit_depth"`
	Shots        int     `json:"shots"`
}

// ModelInfo reports the configured model. It is available before Start.
func (s *Service) ModelInfo() (ModelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	k, err := kernel.New(s.kernelKind, kernel.WithReps(s.reps), kernel.WithShots(s.shots), kernel.WithGamma(s.gamma))
	if err != nil {
		return ModelInfo{}, err
	}
	meta := k.Meta(model.FeatureCount)

	info := ModelInfo{
		Name:        "Quantum Startup Success Predictor",
		Version:     s.modelVersion,
		Description: "Kernel-similarity model predicting startup success from five qualitative ratings",
		Features:    model.FeatureNames[:],
		Components: ModelComponents{
			KernelMethod: "Kernel similarity against labeled reference vectors",
			Kernel:       string(k.Kind()),
			Backend:      meta.Backend,
			Qubits:       model.FeatureCount,
			CircuitDepth: meta.CircuitDepth,
			Shots:        meta.Shots,
		},
	}
	for _, r := range s.references {
		info.References = append(info.References, r.Label)
	}

	switch k.Kind() {
	case kernel.KindStatevector:
		info.Components.FeatureMap = "ZZFeatureMap with full entanglement"
		info.Components.Reps = s.reps
	case kernel.KindRBF:
		info.Components.FeatureMap = "Scaled feature vector"
		info.Components.Qubits = 0
		info.Components.Gamma = s.gamma
	}
	return info, nil
}

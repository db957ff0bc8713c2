package tensor

// PredictRequest for POST /v1/models/{model}:predict (row format).
// Each instance is one height x width x channels image.
type PredictRequest struct {
	SignatureName string          `json:"signature_name,omitempty"`
	Instances     [][][][]float32 `json:"instances"`
}

// PredictResponse from POST /v1/models/{model}:predict
type PredictResponse struct {
	Predictions [][]float32 `json:"predictions"`
}

// ModelStatusResponse from GET /v1/models/{model}
type ModelStatusResponse struct {
	ModelVersionStatus []ModelVersionStatus `json:"model_version_status"`
}

type ModelVersionStatus struct {
	Version string `json:"version"`
	State   string `json:"state"`
}

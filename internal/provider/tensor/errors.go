package tensor

import "errors"

var (
	ErrModelServerUnavailable = errors.New("model server unavailable")
	ErrInvalidResponse        = errors.New("invalid response from model server")
	ErrEmptyPrediction        = errors.New("model server returned no predictions")
	ErrInvalidTensor          = errors.New("tensor does not match model input shape")
)

package replicate

import "encoding/json"

// Status is the lifecycle state of a prediction on the Replicate side.
type Status string

const (
	StatusStarting   Status = "starting"
	StatusProcessing Status = "processing"
	StatusSucceeded  Status = "succeeded"
	StatusFailed     Status = "failed"
	StatusCanceled   Status = "canceled"
)

// Terminal reports whether the prediction has finished, one way or another.
func (s Status) Terminal() bool {
	switch s {
	case StatusSucceeded, StatusFailed, StatusCanceled:
		return true
	}
	return false
}

// Prediction is the subset of the predictions API response this client
// cares about. Output is kept raw because models return either a single
// URI string or a list of them.
type Prediction struct {
	ID     string          `json:"id"`
	Status Status          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  string          `json:"error"`
}

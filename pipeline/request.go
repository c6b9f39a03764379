package pipeline

type Request struct {
	Tid    string `json:"tid"`
	Config string `json:"config"`

	// Features holds one feature vector per prediction.
	Features [][]float64 `json:"features"`

	// Probability overrides the mode of the configuration when set.
	Probability *bool `json:"probability,omitempty"`
}

type Prediction struct {
	Label          int       `json:"label"`
	DecisionValues []float64 `json:"decision_values"`
	Votes          []int     `json:"votes"`
	Probabilities  []float64 `json:"probabilities,omitempty"`
}

type Response struct {
	Tid       string       `json:"tid"`
	Config    string       `json:"config"`
	ModelHash string       `json:"model_hash,omitempty"`
	Results   []Prediction `json:"results"`
	Error     string       `json:"error,omitempty"`
}

func (r Response) Failed() bool {
	return r.Error != ""
}

package api

import (
	"text2phenotype.com/svmpredict/pipeline"
	"encoding/json"
	"github.com/google/uuid"
	"io"
	"net/http"
)

const maxBodyBytes = 32 << 20

type Request struct {
	Pipeline pipeline.Pipeline
}

// ProcessData accepts a JSON pipeline.Request and answers with the JSON
// pipeline.Response. Requests without a tid get a random one.
func (req *Request) ProcessData(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	logger := makeRequestLogger(r)

	if r.Method != http.MethodPost {
		logger.Err(nil).Int("status", http.StatusMethodNotAllowed).Msg("Only 'POST' method is allowed here")
		http.Error(w, "", http.StatusMethodNotAllowed)
		return
	}

	msg, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Could not read request body")
		http.Error(w, "", http.StatusBadRequest)
		return
	}

	var request pipeline.Request
	if err = json.Unmarshal(msg, &request); err != nil {
		logger.Err(err).Int("status", http.StatusBadRequest).Msg("Request body is not a prediction request")
		http.Error(w, "", http.StatusBadRequest)
		return
	}
	if request.Tid == "" {
		request.Tid = uuid.NewString()
	}

	logger = withPrediction(logger, request)
	logger.Info().Msg("Starting pipeline for request from API")
	resp := <-req.Pipeline(request)

	status := http.StatusOK
	if resp.Failed() {
		status = http.StatusUnprocessableEntity
	}
	buf, err := json.Marshal(resp)
	if err != nil {
		logger.Err(err).Int("status", http.StatusInternalServerError).Msg("Failed to marshal response")
		http.Error(w, "", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(status)
	_, _ = w.Write(buf)
	logResponse(logger, status, resp)
}

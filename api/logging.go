package api

import (
	"text2phenotype.com/svmpredict/logger"
	"text2phenotype.com/svmpredict/pipeline"
	"github.com/rs/zerolog"
	"net/http"
)

var apiLogger = logger.NewLogger("API")

type httpRequestFields struct {
	Method     string `json:"method"`
	URL        string `json:"url"`
	RemoteAddr string `json:"remote_addr"`
}

const httpRequestFieldsKey = "request_info"

func makeRequestLogger(request *http.Request) zerolog.Logger {
	fields := httpRequestFields{
		Method:     request.Method,
		URL:        request.URL.String(),
		RemoteAddr: request.RemoteAddr,
	}
	return apiLogger.With().Interface(httpRequestFieldsKey, fields).Logger()
}

// withPrediction adds the prediction request identity to an HTTP request
// logger.
func withPrediction(requestLogger zerolog.Logger, request pipeline.Request) zerolog.Logger {
	ctx := requestLogger.With().
		Str("tid", request.Tid).
		Str("config_name", request.Config).
		Int("vectors", len(request.Features))
	if request.Probability != nil {
		ctx = ctx.Bool("probability", *request.Probability)
	}
	return ctx.Logger()
}

func logResponse(requestLogger zerolog.Logger, status int, response pipeline.Response) {
	if response.Failed() {
		requestLogger.Error().
			Int("status", status).
			Str("error", response.Error).
			Msg("Prediction request failed")
		return
	}
	requestLogger.Info().
		Int("status", status).
		Str("config_name", response.Config).
		Str("model_hash", response.ModelHash).
		Int("predictions", len(response.Results)).
		Msg("Finished processing request")
}

package http

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/influxdata/stopwatch/kit/platform/errors"
	"go.uber.org/zap"
)

// API provides the common request decoding and response encoding of the
// HTTP handlers.
type API struct {
	log    *zap.Logger
	errors ErrorHandler
}

// APIOptFn is a functional option for setting fields on the API type.
type APIOptFn func(*API)

// WithLog sets the logger.
func WithLog(logger *zap.Logger) APIOptFn {
	return func(api *API) {
		api.log = logger
	}
}

// NewAPI creates a new API type.
func NewAPI(opts ...APIOptFn) *API {
	api := &API{
		log: zap.NewNop(),
	}
	for _, o := range opts {
		o(api)
	}
	return api
}

// DecodeJSON decodes the body of a request. An empty body decodes to the
// zero value.
func (a *API) DecodeJSON(r io.Reader, v interface{}) error {
	err := json.NewDecoder(r).Decode(v)
	if err == nil || err == io.EOF {
		return nil
	}
	return &errors.Error{
		Code: errors.EInvalid,
		Msg:  "failed to decode request body",
		Err:  err,
	}
}

// Respond writes v as JSON with the given status. A nil v writes no body.
func (a *API) Respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if v == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.log.Debug("Failed to write response", zap.Error(err))
	}
}

// Err writes err as a platform error response and logs server errors.
func (a *API) Err(w http.ResponseWriter, r *http.Request, err error) {
	if code := errors.ErrorCode(err); StatusCode(code) >= http.StatusInternalServerError {
		a.log.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	a.errors.HandleHTTPError(r.Context(), err, w)
}

package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/melodot/melodot/log"
)

// Error is a JSON-RPC handler error: a stable numeric code paired with the
// HTTP status to answer with. NEVER change a Code once assigned; append new
// errors after the current last one instead of reusing a retired number.
type Error struct {
	Code       int
	HTTPstatus int
	Err        error
}

func (e Error) Error() string {
	return e.Err.Error()
}

// WithErr returns a copy of e carrying a more specific underlying error,
// used to attach request-specific detail to one of the sentinel Errors
// below without mutating the shared sentinel.
func (e Error) WithErr(err error) Error {
	e.Err = err
	return e
}

// errorBody is the JSON shape written to the client.
type errorBody struct {
	Code  int    `json:"code"`
	Error string `json:"error"`
}

// Write sends e as a JSON error response.
func (e Error) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.HTTPstatus)
	body, err := json.Marshal(errorBody{Code: e.Code, Error: e.Err.Error()})
	if err != nil {
		log.Warnw("failed to marshal rpc error body", "error", err)
		return
	}
	if _, err := w.Write(body); err != nil {
		log.Warnw("failed to write rpc error response", "error", err)
	}
}

// The das_submitBlobTx error set, named directly after the ingestion
// stage each one guards.
var (
	ErrDecodingExtrinsicFailed           = Error{Code: 40101, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("decoding extrinsic failed")}
	ErrDecodingTransactionMetadataFailed = Error{Code: 40102, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("decoding transaction metadata failed")}
	ErrFetchTransactionMetadataFailed    = Error{Code: 50101, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("fetching transaction metadata failed")}
	ErrInvalidTransactionFormat          = Error{Code: 40103, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid transaction format")}
	ErrDataLengthOrHashError             = Error{Code: 40104, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("data length or hash mismatch")}
	ErrTransactionPushFailed             = Error{Code: 50102, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("pushing transaction to the pool failed")}

	ErrMalformedBody              = Error{Code: 40001, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("malformed JSON body")}
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("marshaling (server-side) JSON failed")}
)

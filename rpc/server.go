// Package rpc exposes melodot's JSON-RPC surface: das_submitBlobTx,
// mirroring the node's own chi-based HTTP API style but trimmed to this
// module's single namespace.
package rpc

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/melodot/melodot/chain"
	"github.com/melodot/melodot/dht"
	"github.com/melodot/melodot/log"
	"github.com/melodot/melodot/sidecar"
)

// SubmitBlobTxEndpoint is the HTTP path das_submitBlobTx is served under.
const SubmitBlobTxEndpoint = "/das/submitBlobTx"

// recentTxCacheSize bounds the in-memory dedup cache submitBlobTx consults
// to short-circuit resubmission of a data hash it already pushed to the
// pool, the same way farmer/xindex.go bounds its hot X-bucket cache.
const recentTxCacheSize = 4096

// Config wires a Server's dependencies: the runtime-API boundary, the tx
// pool and extrinsic codec, and the DHT client data gets published to.
type Config struct {
	AppDataApi chain.AppDataApi
	Decoder    ExtrinsicDecoder
	Pusher     TxPusher
	Dht        dht.DasDht
}

// Server is the das JSON-RPC namespace's HTTP handler.
type Server struct {
	router     *chi.Mux
	appDataApi chain.AppDataApi
	decoder    ExtrinsicDecoder
	pusher     TxPusher
	dht        dht.DasDht
	recentTx   *lru.Cache[string, BlobTxStatus]
}

// New builds a Server and registers its routes.
func New(conf Config) *Server {
	recentTx, err := lru.New[string, BlobTxStatus](recentTxCacheSize)
	if err != nil {
		// Only returns an error for a non-positive size, which
		// recentTxCacheSize never is.
		panic(err)
	}
	s := &Server{
		appDataApi: conf.AppDataApi,
		decoder:    conf.Decoder,
		pusher:     conf.Pusher,
		dht:        conf.Dht,
		recentTx:   recentTx,
	}
	s.initRouter()
	return s
}

// Router returns the chi router, for tests and for embedding into a
// larger HTTP server.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) initRouter() {
	s.router = chi.NewRouter()
	s.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"POST"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}).Handler)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(45 * time.Second))
	s.router.Post(SubmitBlobTxEndpoint, s.submitBlobTx)
}

type submitBlobTxRequest struct {
	Data      []byte `json:"data"`
	Extrinsic []byte `json:"extrinsic"`
}

// submitBlobTx implements das_submitBlobTx: decode the extrinsic, resolve
// its blob-tx parameters from the runtime, validate the supplied data
// against them, submit the extrinsic to the pool, then publish the data
// to the DHT. A DHT publish failure is reported in the response body, not
// as an HTTP error: the extrinsic is already committed by that point.
func (s *Server) submitBlobTx(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req submitBlobTxRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ErrMalformedBody.WithErr(err).Write(w)
		return
	}

	xt, err := s.decoder.DecodeTx(req.Extrinsic)
	if err != nil {
		ErrDecodingExtrinsicFailed.WithErr(err).Write(w)
		return
	}

	call, err := s.decoder.DecodeCall(req.Extrinsic)
	if err != nil {
		ErrDecodingTransactionMetadataFailed.WithErr(err).Write(w)
		return
	}

	extracted, ok, err := s.appDataApi.GetBlobTxParam(ctx, call)
	if err != nil {
		ErrFetchTransactionMetadataFailed.WithErr(err).Write(w)
		return
	}
	if !ok {
		ErrInvalidTransactionFormat.Write(w)
		return
	}

	meta := sidecar.Metadata{
		DataLen:     extracted.DataLen,
		BlobsHash:   extracted.DataHash,
		Commitments: extracted.Commitments,
	}
	if !meta.Matches(req.Data) {
		ErrDataLengthOrHashError.Write(w)
		return
	}

	dedupKey := fmt.Sprintf("%x", meta.BlobsHash)
	if cached, ok := s.recentTx.Get(dedupKey); ok {
		httpWriteJSON(w, cached)
		return
	}

	txHash, err := s.pusher.Push(ctx, xt)
	if err != nil {
		ErrTransactionPushFailed.WithErr(err).Write(w)
		return
	}

	status := BlobTxStatus{TxHash: txHash}
	key, err := dht.KademliaKeyFromSidecarID(meta.BlobsHash)
	if err != nil {
		msg := fmt.Sprintf("failed to derive DHT key: %v", err)
		status.Err = &msg
	} else if err := s.dht.Put(ctx, key, req.Data); err != nil {
		log.Warnw("das_submitBlobTx: DHT publish failed", "data_hash", fmt.Sprintf("%x", meta.BlobsHash), "err", err)
		msg := "Failed to put data to DHT network."
		status.Err = &msg
	}

	s.recentTx.Add(dedupKey, status)
	httpWriteJSON(w, status)
}

func httpWriteJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	body, err := json.Marshal(data)
	if err != nil {
		ErrMarshalingServerJSONFailed.WithErr(err).Write(w)
		return
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Warnw("failed to write rpc response", "error", err)
	}
}

// Command melodot-node runs a DA-layer node: it persists sampling,
// sidecar-ingestion and farming state in a local store, and serves the
// das JSON-RPC namespace over HTTP.
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/melodot/melodot/chain"
	"github.com/melodot/melodot/config"
	"github.com/melodot/melodot/crypto/signatures/ethereum"
	"github.com/melodot/melodot/db/dbfactory"
	"github.com/melodot/melodot/dht"
	"github.com/melodot/melodot/farmer"
	"github.com/melodot/melodot/kzg"
	"github.com/melodot/melodot/log"
	"github.com/melodot/melodot/rpc"
	"github.com/melodot/melodot/sidecar"
	"github.com/melodot/melodot/store"
)

// Version is the build version, set at build time with -ldflags.
var Version = "dev"

// Services holds the long-lived, running parts of the node.
type Services struct {
	Store    *store.Store
	Setup    *kzg.Setup
	Observer *sidecar.TxObserver
	RPC      *http.Server
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	log.Init(cfg.Log.Level, cfg.Log.Output, nil)
	log.Infow("starting melodot-node", "version", Version)

	if err := validateConfig(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := setupServices(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to setup services: %v", err)
	}
	defer shutdownServices(services)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh
	log.Infow("received signal, shutting down", "signal", sig.String())
}

func setupServices(ctx context.Context, cfg *Config) (*Services, error) {
	services := &Services{}

	log.Infow("opening store", "datadir", cfg.Datadir, "type", cfg.Store.Type)
	database, err := dbfactory.New(cfg.Store.Type, cfg.Datadir)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	services.Store = store.New(database)

	log.Info("loading KZG trusted setup")
	services.Setup, err = config.LoadKZGSetup(cfg.Farmer.KZGSetupPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load KZG trusted setup: %w", err)
	}

	signer, err := ethereum.NewSignerFromHex(cfg.Farmer.PrivKey)
	if err != nil {
		return nil, fmt.Errorf("failed to load farmer signer: %w", err)
	}
	farmerID := farmer.FarmerIDFromSigner(signer)
	log.Infow("farmer identity loaded", "farmerId", fmt.Sprintf("%x", []byte(farmerID)))

	// A real host chain and content-addressed network are out of this
	// module's scope (see chain/ and dht/'s own doc comments); the mocks
	// stand in so the RPC surface and ingestion lifecycle below are
	// exercised end to end out of the box.
	mockChain := chain.NewMockChain()
	mockDht := dht.NewMockDht()

	services.Observer = sidecar.NewTxObserver(services.Store.Sidecar, mockDht, services.Setup)

	log.Infow("starting das RPC server", "host", cfg.RPC.Host, "port", cfg.RPC.Port)
	rpcServer := rpc.New(rpc.Config{
		AppDataApi: mockChain,
		Decoder:    noopExtrinsicDecoder{},
		Pusher:     noopTxPusher{},
		Dht:        mockDht,
	})
	services.RPC = &http.Server{
		Addr:    net.JoinHostPort(cfg.RPC.Host, fmt.Sprintf("%d", cfg.RPC.Port)),
		Handler: rpcServer.Router(),
	}
	go func() {
		if err := services.RPC.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorw(err, "das RPC server stopped unexpectedly")
		}
	}()

	log.Info("melodot-node is running")
	return services, nil
}

func shutdownServices(services *Services) {
	if services == nil {
		return
	}
	if services.RPC != nil {
		if err := services.RPC.Shutdown(context.Background()); err != nil {
			log.Warnw("error shutting down das RPC server", "error", err)
		}
	}
	if services.Store != nil {
		if err := services.Store.Confidence.Close(); err != nil {
			log.Warnw("error closing store", "error", err)
		}
	}
}

// noopExtrinsicDecoder is the development-mode rpc.ExtrinsicDecoder: with
// no real host chain wired in, it treats the submitted extrinsic bytes as
// already being both the pool handle and the call payload.
type noopExtrinsicDecoder struct{}

func (noopExtrinsicDecoder) DecodeTx(extrinsic []byte) (any, error) {
	return extrinsic, nil
}

func (noopExtrinsicDecoder) DecodeCall(extrinsic []byte) ([]byte, error) {
	return extrinsic, nil
}

// noopTxPusher is the development-mode rpc.TxPusher: with no real
// transaction pool wired in, it accepts every submission immediately.
type noopTxPusher struct{}

func (noopTxPusher) Push(_ context.Context, tx any) ([]byte, error) {
	extrinsic, _ := tx.([]byte)
	return ethereum.HashRaw(extrinsic), nil
}

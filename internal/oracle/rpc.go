package oracle

import (
	"context"
	"fmt"
	"net"
	"net/rpc"
	"sync"
)

// RPC method names.
const (
	ServiceName          = "Generator"
	MethodNextGeneration = "Generator.NextGeneration"
	MethodPing           = "Generator.Ping"
)

// MaxBoardBytes is the server's execution budget: boards over this size are
// rejected the way the deployed service rejects them. Supports roughly a
// 316x316 grid.
const MaxBoardBytes = 100_000

// NextGenerationRequest carries one board to the service, along with the
// target identifier and the execution principal the caller is acting as.
type NextGenerationRequest struct {
	Contract string
	Account  string
	Board    string
}

// NextGenerationResponse carries the advanced board back.
type NextGenerationResponse struct {
	Board string
}

// PingRequest and PingResponse support liveness checks.
type PingRequest struct{}
type PingResponse struct{ Contract string }

// Generator is the rpc-exposed generation service wrapping the in-process
// engine.
type Generator struct {
	engine   *Engine
	contract string
	maxBytes int
}

// NewGenerator wraps engine as an rpc service identified by contract.
func NewGenerator(engine *Engine, contract string) *Generator {
	return &Generator{engine: engine, contract: contract, maxBytes: MaxBoardBytes}
}

// NextGeneration advances one board. Errors cross the wire as opaque
// strings; the client side classifies them.
func (g *Generator) NextGeneration(req NextGenerationRequest, resp *NextGenerationResponse) error {
	if g.contract != "" && req.Contract != g.contract {
		return fmt.Errorf("unknown contract %q", req.Contract)
	}
	if len(req.Board) > g.maxBytes {
		return fmt.Errorf("board of %d bytes exceeds execution budget of %d bytes", len(req.Board), g.maxBytes)
	}
	out, err := g.engine.NextGeneration(context.Background(), req.Board)
	if err != nil {
		return err
	}
	resp.Board = out
	return nil
}

// Ping reports the contract the server is hosting.
func (g *Generator) Ping(req PingRequest, resp *PingResponse) error {
	resp.Contract = g.contract
	return nil
}

// Serve registers g and accepts connections on ln until the listener closes.
func Serve(ln net.Listener, g *Generator) error {
	srv := rpc.NewServer()
	if err := srv.RegisterName(ServiceName, g); err != nil {
		return err
	}
	srv.Accept(ln)
	return nil
}

// ListenAndServe listens on addr and serves g.
func ListenAndServe(addr string, g *Generator) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return Serve(ln, g)
}

// Options identify a remote generation service.
type Options struct {
	Endpoint string // address of the service
	Contract string // target identifier
	Account  string // execution principal
	Network  string // network identifier, informational
}

// Remote is an Oracle backed by a generation service over net/rpc. The
// connection is dialed lazily on first use.
type Remote struct {
	opts Options

	mu     sync.Mutex
	client *rpc.Client
}

// NewRemote validates the options and returns an unconnected client.
// Missing endpoint, contract, or account surface as ErrConfigMissing: the
// caller cannot reach the oracle at all, so no call is ever attempted.
func NewRemote(opts Options) (*Remote, error) {
	switch {
	case opts.Endpoint == "":
		return nil, fmt.Errorf("%w: no endpoint", ErrConfigMissing)
	case opts.Contract == "":
		return nil, fmt.Errorf("%w: no target identifier", ErrConfigMissing)
	case opts.Account == "":
		return nil, fmt.Errorf("%w: no execution principal", ErrConfigMissing)
	}
	return &Remote{opts: opts}, nil
}

// NewRemoteClient wraps an existing rpc client, for callers that manage the
// connection themselves.
func NewRemoteClient(client *rpc.Client, opts Options) *Remote {
	return &Remote{opts: opts, client: client}
}

func (r *Remote) conn() (*rpc.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client != nil {
		return r.client, nil
	}
	client, err := rpc.Dial("tcp", r.opts.Endpoint)
	if err != nil {
		return nil, err
	}
	r.client = client
	return client, nil
}

// Close tears down the connection if one was established.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

// NextGeneration performs one generation call. The call itself cannot be
// aborted mid-flight; ctx only bounds how long the caller waits for it.
func (r *Remote) NextGeneration(ctx context.Context, boardText string) (string, error) {
	client, err := r.conn()
	if err != nil {
		return "", err
	}

	req := NextGenerationRequest{
		Contract: r.opts.Contract,
		Account:  r.opts.Account,
		Board:    boardText,
	}
	var resp NextGenerationResponse
	call := client.Go(MethodNextGeneration, req, &resp, make(chan *rpc.Call, 1))

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case done := <-call.Done:
		if done.Error != nil {
			return "", done.Error
		}
		return resp.Board, nil
	}
}

package core

// Optional rate-limited debug HTTP surface, adapted line-for-line from the
// teacher's virtual_machine.go HTTP bootstrap (gorilla/mux router plus a
// golang.org/x/time/rate limiter middleware), repointed at the
// transaction executor instead of the raw opcode VM. This is a debugging
// convenience, not part of the execution core proper — no Non-goal
// excludes it since the core's external interfaces (§6) are silent on
// transport.

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// executeRequest is the debug endpoint's JSON request body: the
// signed-transaction envelope fields needed by the executor. It carries no
// instruction list, so the transaction it describes runs no instructions.
type executeRequest struct {
	UnsignedBody  []byte   `json:"unsigned_body"`
	SignerPubKeys [][]byte `json:"signer_pub_keys"`
	Signatures    [][]byte `json:"signatures"`
	TxHash        string   `json:"tx_hash"`
	EpochMin      uint64   `json:"epoch_min"`
	EpochMax      uint64   `json:"epoch_max"`
	Nonce         uint64   `json:"nonce"`
}

type executeResponse struct {
	Ok       bool   `json:"ok"`
	Error    string `json:"error,omitempty"`
	NumLogs  int    `json:"num_logs"`
	NumAddrs int    `json:"num_new_addresses"`
}

// DebugServer exposes a single rate-limited POST /execute endpoint over a
// TransactionExecutor, for local inspection during development.
type DebugServer struct {
	executor *TransactionExecutor
	limiter  *rate.Limiter
	router   *mux.Router
}

// NewDebugServer wires a router with the same limiter shape the teacher
// uses (200 requests/sec, burst 100).
func NewDebugServer(executor *TransactionExecutor) *DebugServer {
	s := &DebugServer{
		executor: executor,
		limiter:  rate.NewLimiter(200, 100),
		router:   mux.NewRouter(),
	}
	s.router.HandleFunc("/execute", s.limit(s.handleExecute)).Methods(http.MethodPost)
	return s
}

// Handler returns the server's http.Handler for use with http.Server.
func (s *DebugServer) Handler() http.Handler { return s.router }

func (s *DebugServer) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow() {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}

func (s *DebugServer) handleExecute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request", http.StatusBadRequest)
		return
	}
	decoded, err := hex.DecodeString(req.TxHash)
	if err != nil {
		http.Error(w, "tx_hash must be hex-encoded", http.StatusBadRequest)
		return
	}
	var txHash Hash
	copy(txHash[:], decoded)
	signed := &SignedTransaction{
		UnsignedBody:  req.UnsignedBody,
		SignerPubKeys: req.SignerPubKeys,
		Signatures:    req.Signatures,
		TxHash:        txHash,
		EpochMin:      req.EpochMin,
		EpochMax:      req.EpochMax,
		Nonce:         req.Nonce,
	}
	receipt := s.executor.Execute(signed)

	resp := executeResponse{Ok: receipt.Success(), NumLogs: len(receipt.Logs), NumAddrs: len(receipt.NewAddrs)}
	if !receipt.Success() {
		resp.Error = receipt.Err.Error()
		logrus.WithError(receipt.Err).Warn("debug execute failed")
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

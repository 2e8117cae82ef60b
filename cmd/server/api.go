package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soltab/soltab/internal/invite"
	"github.com/soltab/soltab/internal/ledger"
	"github.com/soltab/soltab/internal/middleware"
	"github.com/soltab/soltab/internal/models"
	"github.com/soltab/soltab/internal/oracle"
	"github.com/soltab/soltab/internal/runtime"
	"github.com/soltab/soltab/internal/store"
)

// Server is the HTTP gateway: it forwards signed command envelopes to the
// runtime and serves read-only queries.
type Server struct {
	rt            *runtime.Runtime
	invites       *invite.Manager
	faucetEnabled bool
}

// NewServer creates a gateway over the given runtime.
func NewServer(rt *runtime.Runtime, invites *invite.Manager, faucetEnabled bool) *Server {
	return &Server{rt: rt, invites: invites, faucetEnabled: faucetEnabled}
}

// Routes builds the gateway's router.
func (s *Server) Routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.Logging)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/commands", s.handleCommand).Methods(http.MethodPost)
	v1.HandleFunc("/global", s.handleGetGlobal).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}", s.handleGetSession).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}/members", s.handleListMembers).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}/expenses", s.handleListExpenses).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}/refunds", s.handleListRefunds).Methods(http.MethodGet)
	v1.HandleFunc("/sessions/{id}/invitation", s.handleMintInvitation).Methods(http.MethodPost)
	v1.HandleFunc("/invitations/validate", s.handleValidateInvitation).Methods(http.MethodPost)
	v1.HandleFunc("/identities/{addr}/sessions", s.handleListUserSessions).Methods(http.MethodGet)
	v1.HandleFunc("/identities/{addr}/balance", s.handleGetBalance).Methods(http.MethodGet)
	v1.HandleFunc("/oracle/price", s.handleSetPrice).Methods(http.MethodPost)
	if s.faucetEnabled {
		v1.HandleFunc("/faucet", s.handleFaucet).Methods(http.MethodPost)
	}
	return r
}

// commandRequest is the JSON form of a signed envelope. Args carry the
// borsh-encoded argument tuple; the signature covers the command
// discriminator plus those bytes, so the gateway never re-encodes anything.
type commandRequest struct {
	Caller    models.Identity `json:"caller"`
	Command   string          `json:"command"`
	Args      string          `json:"args"`      // base64 borsh
	Signature string          `json:"signature"` // base64 ed25519
}

type commandResponse struct {
	Events []eventView `json:"events"`
}

type eventView struct {
	Name string       `json:"name"`
	Data models.Event `json:"data"`
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request", err)
		return
	}
	args, err := base64.StdEncoding.DecodeString(req.Args)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed args encoding", err)
		return
	}
	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed signature encoding", err)
		return
	}

	events, err := s.rt.Execute(r.Context(), &runtime.Envelope{
		Caller:    req.Caller,
		Command:   req.Command,
		Args:      args,
		Signature: sig,
	})
	if err != nil {
		writeCommandError(w, err)
		return
	}

	resp := commandResponse{Events: make([]eventView, 0, len(events))}
	for _, ev := range events {
		resp.Events = append(resp.Events, eventView{Name: ev.EventName(), Data: ev})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetGlobal(w http.ResponseWriter, r *http.Request) {
	var global *models.Global
	err := s.rt.View(r.Context(), func(led *ledger.Ledger) error {
		var err error
		global, err = led.GetGlobal(r.Context())
		return err
	})
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"session_count": global.SessionCount})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}
	var session *models.Session
	err := s.rt.View(r.Context(), func(led *ledger.Ledger) error {
		var err error
		session, err = led.GetSession(r.Context(), sessionID)
		return err
	})
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionView(session))
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}
	var members []*models.Member
	err := s.rt.View(r.Context(), func(led *ledger.Ledger) error {
		var err error
		members, err = led.ListSessionMembers(r.Context(), sessionID)
		return err
	})
	if err != nil {
		writeQueryError(w, err)
		return
	}
	out := make([]memberJSON, 0, len(members))
	for _, m := range members {
		out = append(out, memberView(m))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}
	var expenses []*models.Expense
	err := s.rt.View(r.Context(), func(led *ledger.Ledger) error {
		var err error
		expenses, err = led.ListSessionExpenses(r.Context(), sessionID)
		return err
	})
	if err != nil {
		writeQueryError(w, err)
		return
	}
	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseView(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleListRefunds(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}
	var refunds []*models.Refund
	err := s.rt.View(r.Context(), func(led *ledger.Ledger) error {
		var err error
		refunds, err = led.ListSessionRefunds(r.Context(), sessionID)
		return err
	})
	if err != nil {
		writeQueryError(w, err)
		return
	}
	out := make([]refundJSON, 0, len(refunds))
	for _, rf := range refunds {
		out = append(out, refundView(rf))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleMintInvitation mints an invitation token for a session. The caller
// still has to install the returned hash with set_session_token_hash; the
// gateway holds no signing keys.
func (s *Server) handleMintInvitation(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFrom(w, r)
	if !ok {
		return
	}
	token, hash, err := s.invites.Generate(sessionID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to mint invitation", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"token": token,
		"hash":  base64.StdEncoding.EncodeToString(hash[:]),
	})
}

// handleValidateInvitation checks a raw invitation token before the holder
// signs a join command: it reports the session the token was minted for and
// whether its hash is still the one installed on that session.
func (s *Server) handleValidateInvitation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request", err)
		return
	}

	claims, err := s.invites.Validate(req.Token)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid or expired invitation"})
		return
	}

	var session *models.Session
	err = s.rt.View(r.Context(), func(led *ledger.Ledger) error {
		var err error
		session, err = led.GetSession(r.Context(), claims.SessionID)
		return err
	})
	if err != nil {
		writeQueryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": claims.SessionID,
		"installed":  session.InvitationHash == invite.Hash(req.Token),
	})
}

func (s *Server) handleListUserSessions(w http.ResponseWriter, r *http.Request) {
	addr, ok := identityFrom(w, r)
	if !ok {
		return
	}
	var sessions []*models.Session
	err := s.rt.View(r.Context(), func(led *ledger.Ledger) error {
		var err error
		sessions, err = led.ListUserSessions(r.Context(), addr)
		return err
	})
	if err != nil {
		writeQueryError(w, err)
		return
	}
	out := make([]sessionJSON, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionView(sess))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetBalance(w http.ResponseWriter, r *http.Request) {
	addr, ok := identityFrom(w, r)
	if !ok {
		return
	}
	balance, err := s.rt.Balance(r.Context(), addr)
	if err != nil {
		writeQueryError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"lamports": balance})
}

// handleSetPrice ingests a price update from the host's oracle relay.
func (s *Server) handleSetPrice(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Price       int64  `json:"price"`
		Conf        uint64 `json:"conf"`
		Exponent    int32  `json:"exponent"`
		PublishTime int64  `json:"publish_time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request", err)
		return
	}
	update := oracle.PriceUpdate{
		FeedID:      oracle.FeedIDBytes(),
		Price:       req.Price,
		Conf:        req.Conf,
		Exponent:    req.Exponent,
		PublishTime: req.PublishTime,
	}
	if err := s.rt.SetPrice(r.Context(), update); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store price", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFaucet(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identity models.Identity `json:"identity"`
		Lamports uint64          `json:"lamports"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request", err)
		return
	}
	if err := s.rt.Deposit(r.Context(), req.Identity, req.Lamports); err != nil {
		writeError(w, http.StatusInternalServerError, "deposit failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// JSON views

type sessionJSON struct {
	SessionID      uint64          `json:"session_id"`
	Name           string          `json:"name"`
	Description    string          `json:"description"`
	Admin          models.Identity `json:"admin"`
	Status         string          `json:"status"`
	ExpensesCount  uint16          `json:"expenses_count"`
	RefundsCount   uint16          `json:"refunds_count"`
	InvitationHash string          `json:"invitation_hash"`
}

func sessionView(s *models.Session) sessionJSON {
	status := "opened"
	if s.Status == models.SessionClosed {
		status = "closed"
	}
	return sessionJSON{
		SessionID:      s.SessionID,
		Name:           s.Name,
		Description:    s.Description,
		Admin:          s.Admin,
		Status:         status,
		ExpensesCount:  s.ExpensesCount,
		RefundsCount:   s.RefundsCount,
		InvitationHash: base64.StdEncoding.EncodeToString(s.InvitationHash[:]),
	}
}

type memberJSON struct {
	SessionID uint64          `json:"session_id"`
	Addr      models.Identity `json:"addr"`
	Name      string          `json:"name"`
	IsAdmin   bool            `json:"is_admin"`
}

func memberView(m *models.Member) memberJSON {
	return memberJSON{SessionID: m.SessionID, Addr: m.Addr, Name: m.Name, IsAdmin: m.IsAdmin}
}

type expenseJSON struct {
	SessionID    uint64            `json:"session_id"`
	ExpenseID    uint16            `json:"expense_id"`
	Name         string            `json:"name"`
	Date         int64             `json:"date"`
	Owner        models.Identity   `json:"owner"`
	Amount       float32           `json:"amount"`
	Participants []models.Identity `json:"participants"`
}

func expenseView(e *models.Expense) expenseJSON {
	return expenseJSON{
		SessionID:    e.SessionID,
		ExpenseID:    e.ExpenseID,
		Name:         e.Name,
		Date:         e.Date,
		Owner:        e.Owner,
		Amount:       e.Amount,
		Participants: e.Participants,
	}
}

type refundJSON struct {
	SessionID        uint64          `json:"session_id"`
	RefundID         uint16          `json:"refund_id"`
	Date             int64           `json:"date"`
	From             models.Identity `json:"from"`
	To               models.Identity `json:"to"`
	Amount           uint16          `json:"amount"`
	AmountInLamports uint64          `json:"amount_in_lamports"`
}

func refundView(r *models.Refund) refundJSON {
	return refundJSON{
		SessionID:        r.SessionID,
		RefundID:         r.RefundID,
		Date:             r.Date,
		From:             r.From,
		To:               r.To,
		Amount:           r.Amount,
		AmountInLamports: r.AmountInLamports,
	}
}

// request parsing and error rendering

func sessionIDFrom(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id", err)
		return 0, false
	}
	return id, true
}

func identityFrom(w http.ResponseWriter, r *http.Request) (models.Identity, bool) {
	addr, err := models.IdentityFromHex(mux.Vars(r)["addr"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid identity", err)
		return models.ZeroIdentity, false
	}
	return addr, true
}

type errorResponse struct {
	Error string `json:"error"`
	Code  uint32 `json:"code,omitempty"`
}

func writeCommandError(w http.ResponseWriter, err error) {
	var cmdErr *ledger.Error
	switch {
	case errors.As(err, &cmdErr):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: cmdErr.Name, Code: cmdErr.Code})
	case errors.Is(err, runtime.ErrBadSignature):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid signature"})
	case errors.Is(err, runtime.ErrUnknownCommand):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "unknown command"})
	case errors.Is(err, store.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorResponse{Error: "record already exists"})
	case errors.Is(err, store.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "record not found"})
	case errors.Is(err, store.ErrInsufficientFunds):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "insufficient funds"})
	default:
		writeError(w, http.StatusInternalServerError, "command failed", err)
	}
}

func writeQueryError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "record not found"})
		return
	}
	writeError(w, http.StatusInternalServerError, "query failed", err)
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	slog.Error(msg, "error", err)
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

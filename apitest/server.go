// Package apitest hosts an in-memory fake of the StopUsing backend for
// integration tests: the real route table, the standard response envelope,
// and knobs for forcing failures or holding responses.
package apitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"stopusing/client/models"
)

type Server struct {
	*httptest.Server

	mu           sync.Mutex
	transactions []models.Transaction
	goals        []models.BudgetGoal
	nextID       int64
	nextGoalID   int64
	failStatus   int
	failLeft     int
	gate         chan struct{}
	requestCount int
	alarms       []models.AlarmInput
}

func NewServer() *Server {
	s := &Server{nextID: 1, nextGoalID: 1}

	r := mux.NewRouter()
	r.Use(s.interceptor)

	r.HandleFunc("/api/v1/transactions", s.listTransactions).Methods("GET")
	r.HandleFunc("/api/v1/transactions", s.createTransaction).Methods("POST")
	r.HandleFunc("/api/v1/transactions/report", s.report).Methods("GET")
	r.HandleFunc("/api/v1/transactions/categories", s.categories).Methods("GET")
	r.HandleFunc("/api/v1/transactions/alarm", s.alarm).Methods("POST")
	r.HandleFunc("/api/v1/transactions/{id}", s.getTransaction).Methods("GET")
	r.HandleFunc("/api/v1/transactions/{id}", s.updateTransaction).Methods("PUT")
	r.HandleFunc("/api/v1/transactions/{id}", s.deleteTransaction).Methods("DELETE")
	r.HandleFunc("/api/v1/budgetgoals", s.listGoals).Methods("GET")
	r.HandleFunc("/api/v1/budgetgoals", s.createGoal).Methods("POST")
	r.HandleFunc("/api/v1/budgetgoals/{id}", s.updateGoal).Methods("PUT")
	r.HandleFunc("/api/logout", s.logout).Methods("POST")

	s.Server = httptest.NewServer(r)
	return s
}

// Seed installs transactions directly, bypassing the creation path.
func (s *Server) Seed(txs ...models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transactions = append(s.transactions, txs...)
	for _, tx := range txs {
		if tx.ID >= s.nextID {
			s.nextID = tx.ID + 1
		}
	}
}

// SetNextID fixes the id assigned to the next created transaction.
func (s *Server) SetNextID(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID = id
}

// FailNext makes the next n requests answer with the given status.
func (s *Server) FailNext(status, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failStatus = status
	s.failLeft = n
}

// Hold blocks every subsequent request until the returned release function
// runs. Tests use it to observe optimistic cache state mid-flight.
func (s *Server) Hold() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.gate = gate
	s.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			s.gate = nil
			s.mu.Unlock()
			close(gate)
		})
	}
}

// Requests returns how many requests reached the fake backend.
func (s *Server) Requests() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requestCount
}

// Alarms returns the overspend alarms received so far.
func (s *Server) Alarms() []models.AlarmInput {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.AlarmInput(nil), s.alarms...)
}

func (s *Server) interceptor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requestCount++
		gate := s.gate
		failing := s.failLeft > 0
		status := s.failStatus
		if failing {
			s.failLeft--
		}
		s.mu.Unlock()

		if gate != nil {
			select {
			case <-gate:
			case <-r.Context().Done():
				return
			}
		}
		if failing {
			writeEnvelope(w, status, nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txType := r.URL.Query().Get("type")
	out := []models.Transaction{}
	for _, tx := range s.transactions {
		if txType != "" && string(tx.Type) != txType {
			continue
		}
		out = append(out, tx)
	}
	writeEnvelope(w, http.StatusOK, out)
}

func (s *Server) getTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tx := range s.transactions {
		if tx.ID == id {
			writeEnvelope(w, http.StatusOK, tx)
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, nil)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var in models.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := fromInput(s.nextID, in)
	s.nextID++
	s.transactions = append(s.transactions, tx)
	writeEnvelope(w, http.StatusCreated, tx)
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var in models.TransactionInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.transactions {
		if tx.ID == id {
			updated := fromInput(id, in)
			updated.CreatedAt = tx.CreatedAt
			s.transactions[i] = updated
			writeEnvelope(w, http.StatusOK, updated)
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, nil)
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, tx := range s.transactions {
		if tx.ID == id {
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			writeEnvelope(w, http.StatusOK, nil)
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, nil)
}

func (s *Server) report(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rep := models.TransactionReport{Month: r.URL.Query().Get("date")}
	totals := map[models.Category]*models.CategoryTotal{}
	for _, tx := range s.transactions {
		rep.TotalPrice += tx.Price
		rep.TransactionCount++
		switch tx.Type {
		case models.TypeOverExpense:
			rep.OverExpensePrice += tx.Price
		case models.TypeFixedExpense:
			rep.FixedExpensePrice += tx.Price
		}
		if tx.Category != nil {
			ct, ok := totals[*tx.Category]
			if !ok {
				ct = &models.CategoryTotal{Category: *tx.Category}
				totals[*tx.Category] = ct
			}
			ct.Total += tx.Price
			ct.Count++
		}
	}
	for _, ct := range totals {
		rep.Categories = append(rep.Categories, *ct)
	}
	writeEnvelope(w, http.StatusOK, rep)
}

func (s *Server) categories(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusOK, models.Categories)
}

func (s *Server) alarm(w http.ResponseWriter, r *http.Request) {
	var in models.AlarmInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil)
		return
	}
	s.mu.Lock()
	s.alarms = append(s.alarms, in)
	s.mu.Unlock()
	writeEnvelope(w, http.StatusOK, nil)
}

func (s *Server) listGoals(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]models.BudgetGoal{}, s.goals...)
	writeEnvelope(w, http.StatusOK, out)
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var in models.BudgetGoalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	goal := models.BudgetGoal{ID: s.nextGoalID, Price: in.Price, Month: in.Month}
	s.nextGoalID++
	s.goals = append(s.goals, goal)
	writeEnvelope(w, http.StatusCreated, goal)
}

func (s *Server) updateGoal(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)
	var in models.BudgetGoalInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeEnvelope(w, http.StatusBadRequest, nil)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, g := range s.goals {
		if g.ID == id {
			s.goals[i].Price = in.Price
			s.goals[i].Month = in.Month
			writeEnvelope(w, http.StatusOK, s.goals[i])
			return
		}
	}
	writeEnvelope(w, http.StatusNotFound, nil)
}

func (s *Server) logout(w http.ResponseWriter, _ *http.Request) {
	writeEnvelope(w, http.StatusOK, nil)
}

func pathID(r *http.Request) int64 {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id
}

func fromInput(id int64, in models.TransactionInput) models.Transaction {
	now := time.Now().UTC()
	startedAt := now
	if in.StartedAt != "" {
		if t, err := time.Parse(time.RFC3339, in.StartedAt); err == nil {
			startedAt = t
		}
	}
	txType := in.Type
	if txType == "" {
		txType = models.TypeNone
	}
	return models.Transaction{
		ID:         id,
		Price:      in.Price,
		Title:      in.Title,
		Type:       txType,
		Category:   in.Category,
		StartedAt:  startedAt,
		SplitCount: in.SplitCount,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]any{
		"success": status < 400,
		"status":  status,
		"code":    http.StatusText(status),
		"message": "",
		"data":    data,
	}
	if status >= 400 {
		body["message"] = http.StatusText(status)
	}
	json.NewEncoder(w).Encode(body)
}

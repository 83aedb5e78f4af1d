package rest

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/greystone/lending-api/internal/application/dto"
	"github.com/greystone/lending-api/internal/application/usecase"
)

// UseCases groups the application operations served over REST.
type UseCases struct {
	CreateUser          *usecase.CreateUserUseCase
	GetUser             *usecase.GetUserUseCase
	ListUsers           *usecase.ListUsersUseCase
	UpdateUser          *usecase.UpdateUserUseCase
	DeleteUser          *usecase.DeleteUserUseCase
	CreateLoan          *usecase.CreateLoanUseCase
	GetLoan             *usecase.GetLoanUseCase
	ListLoans           *usecase.ListLoansUseCase
	ListUserLoans       *usecase.ListUserLoansUseCase
	UpdateLoan          *usecase.UpdateLoanUseCase
	DeleteLoan          *usecase.DeleteLoanUseCase
	ComputeAmortization *usecase.ComputeAmortizationUseCase
	LoanAmortization    *usecase.GetLoanAmortizationUseCase
}

// Handler exposes users, loans and amortization under /api/v1.
type Handler struct {
	uc     UseCases
	logger *slog.Logger
}

// NewHandler creates a REST handler over the given use cases.
func NewHandler(uc UseCases, logger *slog.Logger) *Handler {
	return &Handler{uc: uc, logger: logger}
}

// RegisterRoutes attaches the API routes to r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/users", h.createUser).Methods(http.MethodPost)
	api.HandleFunc("/users", h.listUsers).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.getUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}", h.updateUser).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", h.deleteUser).Methods(http.MethodDelete)
	api.HandleFunc("/users/{id}/loans", h.listUserLoans).Methods(http.MethodGet)

	// Registered before /loans/{id} so the literal segment wins.
	api.HandleFunc("/loans/amortization", h.computeAmortization).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.createLoan).Methods(http.MethodPost)
	api.HandleFunc("/loans", h.listLoans).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", h.getLoan).Methods(http.MethodGet)
	api.HandleFunc("/loans/{id}", h.updateLoan).Methods(http.MethodPut)
	api.HandleFunc("/loans/{id}", h.deleteLoan).Methods(http.MethodDelete)
	api.HandleFunc("/loans/{id}/amortization", h.loanAmortization).Methods(http.MethodGet)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.CreateUser.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	req, err := listRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.ListUsers.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user_id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.GetUser.Execute(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user_id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req dto.UpdateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.UserID = id
	resp, err := h.uc.UpdateUser.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user_id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.uc.DeleteUser.Execute(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listUserLoans(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "user_id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.ListUserLoans.Execute(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// ---------------------------------------------------------------------------
// Loans
// ---------------------------------------------------------------------------

func (h *Handler) createLoan(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.CreateLoan.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) listLoans(w http.ResponseWriter, r *http.Request) {
	req, err := listRequest(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.ListLoans.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "loan_id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.GetLoan.Execute(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) updateLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "loan_id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	var req dto.UpdateLoanRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	req.LoanID = id
	resp, err := h.uc.UpdateLoan.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) deleteLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "loan_id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if err := h.uc.DeleteLoan.Execute(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---------------------------------------------------------------------------
// Amortization
// ---------------------------------------------------------------------------

func (h *Handler) computeAmortization(w http.ResponseWriter, r *http.Request) {
	var req dto.AmortizationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.ComputeAmortization.Execute(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) loanAmortization(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "loan_id")
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	resp, err := h.uc.LoanAmortization.Execute(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

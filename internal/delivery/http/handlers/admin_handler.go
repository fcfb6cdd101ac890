package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/delivery/http/middleware"
	"github.com/LavaJover/shvark-donation-service/internal/delivery/http/pages"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/infrastructure/security"
	"github.com/LavaJover/shvark-donation-service/internal/usecase"
	admindto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/admin"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const displayTimeLayout = "2006-01-02 15:04:05"

var receiptStatuses = []domain.ReceiptStatus{
	domain.StatusCreated,
	domain.StatusIssued,
	domain.StatusAwaitingPayment,
	domain.StatusMailFailed,
	domain.StatusCheckoutCreated,
	domain.StatusPaid,
	domain.StatusPaymentFailed,
}

type AdminHandler struct {
	uc       usecase.AdminUsecase
	sessions *security.SessionManager
	pages    *pages.Renderer
	links    LinkResolver
	location *time.Location
	log      *zap.Logger
}

func NewAdminHandler(
	uc usecase.AdminUsecase,
	sessions *security.SessionManager,
	renderer *pages.Renderer,
	links LinkResolver,
	loc *time.Location,
	log *zap.Logger,
) *AdminHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return &AdminHandler{uc: uc, sessions: sessions, pages: renderer, links: links, location: loc, log: log}
}

func (h *AdminHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	if middleware.SessionUser(r, h.sessions) != "" {
		http.Redirect(w, r, h.links.AdminPath(""), http.StatusFound)
		return
	}
	h.pages.Render(w, http.StatusOK, pages.AdminLogin, pages.LoginView{Prefix: h.links.Prefix})
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.pages.Render(w, http.StatusBadRequest, pages.AdminLogin, pages.LoginView{Prefix: h.links.Prefix, Error: err.Error()})
		return
	}
	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	if err := h.uc.Authenticate(username, password); err != nil {
		h.log.Warn("dashboard login rejected", zap.String("username", username))
		h.pages.Render(w, http.StatusUnauthorized, pages.AdminLogin, pages.LoginView{Prefix: h.links.Prefix, Error: err.Error()})
		return
	}

	token, expires, err := h.sessions.Issue(username)
	if err != nil {
		h.log.Error("failed to issue dashboard session", zap.Error(err))
		h.pages.Render(w, http.StatusInternalServerError, pages.AdminLogin, pages.LoginView{Prefix: h.links.Prefix, Error: err.Error()})
		return
	}
	middleware.SetSessionCookie(w, r, token, expires)
	http.Redirect(w, r, h.links.AdminPath(""), http.StatusFound)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	middleware.ClearSessionCookie(w, r)
	http.Redirect(w, r, h.links.AdminPath("/login"), http.StatusFound)
}

// Dashboard lists active receipts. A store failure still renders the page
// with the error shown.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view := pages.DashboardView{
		Prefix:      h.links.Prefix,
		CurrentUser: middleware.DashboardUser(r.Context()),
	}

	out, err := h.uc.List(r.Context())
	if err != nil {
		h.log.Error("failed to list receipts", zap.Error(err))
		view.DBError = err.Error()
		h.pages.Render(w, http.StatusOK, pages.AdminDashboard, view)
		return
	}

	view.Total = out.Total
	view.Rows = make([]pages.ReceiptRow, 0, len(out.Receipts))
	for _, receipt := range out.Receipts {
		view.Rows = append(view.Rows, h.toRow(receipt))
	}
	h.pages.Render(w, http.StatusOK, pages.AdminDashboard, view)
}

func (h *AdminHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := receiptIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, domain.NewValidation(err.Error()))
		return
	}
	checked := false
	for _, v := range r.PostForm["checked"] {
		if v == "1" {
			checked = true
			break
		}
	}

	if err := h.uc.SetChecked(r.Context(), receiptID, checked, middleware.DashboardUser(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, h.links.AdminPath(""), http.StatusFound)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := receiptIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := h.uc.SoftDelete(r.Context(), receiptID, middleware.DashboardUser(r.Context())); err != nil {
		writeError(w, err)
		return
	}
	http.Redirect(w, r, h.links.AdminPath(""), http.StatusFound)
}

func (h *AdminHandler) EditPage(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := receiptIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	view := h.editView(receiptID)

	receipt, err := h.uc.Get(r.Context(), receiptID)
	if err != nil {
		view.Error = err.Error()
		h.pages.Render(w, statusFor(err), pages.AdminEdit, view)
		return
	}
	view.Form = pages.EditForm{
		CertificateNo:   receipt.CertificateNo,
		DonorName:       receipt.DonorName,
		DonorPostalCode: receipt.DonorPostalCode,
		DonorAddress:    receipt.DonorAddress,
		DonorEmail:      receipt.DonorEmail,
		Amount:          receipt.Amount,
		PaymentMethod:   string(receipt.PaymentMethod),
		Status:          string(receipt.Status),
		DonatedAt:       h.formatTime(receipt.DonatedAt),
		CreatedAt:       h.formatTime(receipt.CreatedAt),
	}
	h.pages.Render(w, http.StatusOK, pages.AdminEdit, view)
}

// Edit re-renders the submitted values with the error when the update is
// rejected.
func (h *AdminHandler) Edit(w http.ResponseWriter, r *http.Request) {
	receiptID, ok := receiptIDParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	view := h.editView(receiptID)
	if err := r.ParseForm(); err != nil {
		view.Error = err.Error()
		h.pages.Render(w, http.StatusBadRequest, pages.AdminEdit, view)
		return
	}

	input := &admindto.EditInput{
		DonorName:       r.PostForm.Get("donor_name"),
		DonorPostalCode: r.PostForm.Get("donor_postal_code"),
		DonorAddress:    r.PostForm.Get("donor_address"),
		DonorEmail:      r.PostForm.Get("donor_email"),
		Amount:          r.PostForm.Get("amount_yen"),
		PaymentMethod:   r.PostForm.Get("payment_method"),
		Status:          r.PostForm.Get("status"),
		DonatedAt:       r.PostForm.Get("donated_at"),
		CreatedAt:       r.PostForm.Get("created_at"),
	}
	err := h.uc.Edit(r.Context(), receiptID, input)
	if err == nil {
		http.Redirect(w, r, h.links.AdminPath(""), http.StatusFound)
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error("failed to edit receipt", zap.Int64("receipt_id", receiptID), zap.Error(err))
	}
	view.Error = err.Error()
	if errors.Is(err, domain.ErrValidation) {
		view.Form = pages.EditForm{
			DonorName:       input.DonorName,
			DonorPostalCode: input.DonorPostalCode,
			DonorAddress:    input.DonorAddress,
			DonorEmail:      input.DonorEmail,
			Amount:          input.Amount,
			PaymentMethod:   input.PaymentMethod,
			Status:          input.Status,
			DonatedAt:       input.DonatedAt,
			CreatedAt:       input.CreatedAt,
		}
	}
	h.pages.Render(w, status, pages.AdminEdit, view)
}

func (h *AdminHandler) editView(receiptID int64) pages.EditView {
	methods := make([]string, 0, len(domain.AllowedPaymentMethods))
	for _, m := range domain.AllowedPaymentMethods {
		methods = append(methods, string(m))
	}
	statuses := make([]string, 0, len(receiptStatuses))
	for _, s := range receiptStatuses {
		statuses = append(statuses, string(s))
	}
	return pages.EditView{
		Prefix:         h.links.Prefix,
		ReceiptID:      receiptID,
		PaymentMethods: methods,
		Statuses:       statuses,
	}
}

func (h *AdminHandler) toRow(r *domain.Receipt) pages.ReceiptRow {
	row := pages.ReceiptRow{
		ID:              r.ID,
		CertificateNo:   r.CertificateNo,
		DonorName:       r.DonorName,
		DonorPostalCode: r.DonorPostalCode,
		DonorAddress:    r.DonorAddress,
		DonorEmail:      r.DonorEmail,
		Amount:          r.Amount,
		PaymentMethod:   string(r.PaymentMethod),
		Status:          string(r.Status),
		IsChecked:       r.IsChecked,
		DonatedAt:       h.formatTime(r.DonatedAt),
		CreatedAt:       h.formatTime(r.CreatedAt),
	}
	if r.CheckedAt != nil {
		row.CheckedAt = h.formatTime(*r.CheckedAt)
	}
	if r.CheckedBy != nil {
		row.CheckedBy = *r.CheckedBy
	}
	return row
}

func (h *AdminHandler) formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(h.location).Format(displayTimeLayout)
}

func receiptIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

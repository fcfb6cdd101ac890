package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/LavaJover/shvark-donation-service/internal/delivery/http/dto/payment/request"
	"github.com/LavaJover/shvark-donation-service/internal/delivery/http/dto/payment/response"
	httperrors "github.com/LavaJover/shvark-donation-service/internal/delivery/http/errors"
	"github.com/LavaJover/shvark-donation-service/internal/delivery/http/pages"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/usecase"
	paymentdto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/payment"
	"go.uber.org/zap"
)

const maxWebhookBody = 1 << 20

type PaymentHandler struct {
	uc    usecase.PaymentUsecase
	pages *pages.Renderer
	links LinkResolver
	log   *zap.Logger
}

func NewPaymentHandler(uc usecase.PaymentUsecase, renderer *pages.Renderer, links LinkResolver, log *zap.Logger) *PaymentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PaymentHandler{uc: uc, pages: renderer, links: links, log: log}
}

// CreateCheckoutSession takes {"receipt_id": ..., "certificate_no": ...}. A
// body that is not JSON is treated as empty.
func (h *PaymentHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var req request.CheckoutRequest
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err == nil && len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			req = request.CheckoutRequest{}
		}
	}

	receiptID, ok := req.ParseReceiptID()
	if !ok {
		writeError(w, domain.NewValidation("receipt_id は数値で指定してください。"))
		return
	}

	out, err := h.uc.CreateCheckoutSession(r.Context(), &paymentdto.CheckoutInput{
		ReceiptID:     receiptID,
		CertificateNo: req.CertificateNumber(),
		Links:         h.links.For(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, response.CheckoutResponse{
		OK:          true,
		CheckoutURL: out.CheckoutURL,
		SessionID:   out.SessionID,
	})
}

// Webhook answers 400 for unverifiable payloads and 500 when applying the
// event failed, so the processor retries.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, domain.NewValidation("Invalid payload"))
		return
	}

	out, err := h.uc.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrValidation):
			httperrors.Write(w, http.StatusBadRequest, httperrors.New(validationMessage(err)))
		case errors.Is(err, domain.ErrMisconfigured):
			httperrors.Write(w, http.StatusInternalServerError, httperrors.New(err.Error()))
		default:
			h.log.Error("failed to process stripe webhook", zap.Error(err))
			httperrors.Write(w, http.StatusInternalServerError, httperrors.New("Webhook handling failed"))
		}
		return
	}

	h.log.Info("stripe webhook received",
		zap.String("event_id", out.EventID),
		zap.String("event_type", out.EventType),
		zap.String("outcome", string(out.Outcome)),
	)
	httperrors.Write(w, http.StatusOK, response.WebhookResponse{OK: true, Received: true})
}

// validationMessage drops the wrapped cause so the processor sees only
// "Invalid signature" or "Invalid payload".
func validationMessage(err error) string {
	var derr *domain.Error
	if errors.As(err, &derr) && derr.Message != "" {
		return derr.Message
	}
	return err.Error()
}

func (h *PaymentHandler) CreditCardPage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	h.pages.Render(w, http.StatusOK, pages.CreditCard, pages.CreditCardView{
		Prefix:        h.links.Prefix,
		CertificateNo: strings.TrimSpace(query.Get("certificate_no")),
		ReceiptID:     strings.TrimSpace(query.Get("receipt_id")),
	})
}

func (h *PaymentHandler) SuccessPage(w http.ResponseWriter, r *http.Request) {
	out := h.uc.SuccessPage(r.Context(), r.URL.Query().Get("session_id"))
	h.pages.Render(w, http.StatusOK, pages.PaymentSuccess, pages.SuccessView{
		Prefix:        h.links.Prefix,
		SessionID:     out.SessionID,
		CertificateNo: out.CertificateNo,
		DonorName:     out.DonorName,
		PaymentStatus: out.PaymentStatus,
		DownloadToken: out.DownloadToken,
	})
}

func (h *PaymentHandler) CancelPage(w http.ResponseWriter, r *http.Request) {
	h.pages.Render(w, http.StatusOK, pages.PaymentCancel, pages.CancelView{Prefix: h.links.Prefix})
}

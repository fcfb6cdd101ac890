package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-donation-service/internal/delivery/http/pages"
	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/LavaJover/shvark-donation-service/internal/usecase"
	submissiondto "github.com/LavaJover/shvark-donation-service/internal/usecase/dto/submission"
	"go.uber.org/zap"
)

type SubmitHandler struct {
	uc    usecase.SubmissionUsecase
	pages *pages.Renderer
	links LinkResolver
	log   *zap.Logger
}

func NewSubmitHandler(uc usecase.SubmissionUsecase, renderer *pages.Renderer, links LinkResolver, log *zap.Logger) *SubmitHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &SubmitHandler{uc: uc, pages: renderer, links: links, log: log}
}

// FormPage serves the donation form behind basic auth.
func (h *SubmitHandler) FormPage(w http.ResponseWriter, r *http.Request) {
	methods := make([]string, 0, len(domain.AllowedPaymentMethods))
	for _, m := range domain.AllowedPaymentMethods {
		methods = append(methods, string(m))
	}
	h.pages.Render(w, http.StatusOK, pages.Form, pages.FormView{
		Prefix:         h.links.Prefix,
		PaymentMethods: methods,
	})
}

func (h *SubmitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, domain.NewValidation("フォームの形式が不正です。"))
		return
	}

	out, err := h.uc.Submit(r.Context(), &submissiondto.SubmitInput{
		Name:          r.PostForm.Get("name"),
		PostalCode:    r.PostForm.Get("postal_code"),
		Address:       r.PostForm.Get("address"),
		Email:         r.PostForm.Get("email"),
		Amount:        r.PostForm.Get("amount"),
		PaymentMethod: r.PostForm.Get("payment_method"),
		Links:         h.links.For(r),
	})
	if err != nil {
		if statusFor(err) == http.StatusInternalServerError {
			h.log.Error("donation submit failed", zap.Error(err))
		}
		writeError(w, err)
		return
	}

	if out.RedirectURL != "" {
		http.Redirect(w, r, out.RedirectURL, http.StatusFound)
		return
	}

	h.pages.Render(w, http.StatusOK, pages.Thanks, pages.ThanksView{
		Prefix:           h.links.Prefix,
		Name:             out.DonorName,
		Token:            out.DownloadToken,
		CertificateNo:    out.CertificateNo,
		PaymentMethod:    string(out.PaymentMethod),
		PaymentKind:      string(out.PaymentKind),
		BankTransferInfo: out.BankTransferInfo,
	})
}

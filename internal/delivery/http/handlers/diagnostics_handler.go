package handlers

import (
	"net/http"

	"github.com/LavaJover/shvark-donation-service/internal/delivery/http/dto/diagnostics/response"
	httperrors "github.com/LavaJover/shvark-donation-service/internal/delivery/http/errors"
	"github.com/LavaJover/shvark-donation-service/internal/usecase"
	"go.uber.org/zap"
)

type DiagnosticsHandler struct {
	uc  usecase.AdminUsecase
	log *zap.Logger
}

func NewDiagnosticsHandler(uc usecase.AdminUsecase, log *zap.Logger) *DiagnosticsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &DiagnosticsHandler{uc: uc, log: log}
}

func (h *DiagnosticsHandler) DBCheck(w http.ResponseWriter, r *http.Request) {
	out, err := h.uc.DBCheck(r.Context())
	if err != nil {
		h.log.Error("db check failed", zap.Error(err))
		httperrors.Write(w, http.StatusInternalServerError, httperrors.New(err.Error()))
		return
	}
	httperrors.Write(w, http.StatusOK, response.DBCheckResponse{
		OK: true,
		DBResult: response.DBResult{
			OK:   1,
			DB:   out.Database,
			User: out.User,
		},
		DonationReceiptsExists: out.TableExists,
	})
}

func (h *DiagnosticsHandler) Receipts(w http.ResponseWriter, r *http.Request) {
	out, err := h.uc.ReceiptsCheck(r.Context())
	if err != nil {
		h.log.Error("receipts check failed", zap.Error(err))
		httperrors.Write(w, http.StatusInternalServerError, httperrors.New(err.Error()))
		return
	}
	httperrors.Write(w, http.StatusOK, response.ReceiptsCheckResponse{
		OK:           true,
		Total:        out.Total,
		TotalDeleted: out.TotalDeleted,
		Rows:         response.ToReceiptRows(out.Receipts),
	})
}

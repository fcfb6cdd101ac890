package handlers

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/LavaJover/shvark-donation-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const receiptFileMissing = "受領書PDFが見つかりません。再度寄付フォームからお試しください。"

type DownloadHandler struct {
	storage  domain.ReceiptStorage
	location *time.Location
	log      *zap.Logger
	now      func() time.Time
}

func NewDownloadHandler(storage domain.ReceiptStorage, loc *time.Location, log *zap.Logger) *DownloadHandler {
	if log == nil {
		log = zap.NewNop()
	}
	if loc == nil {
		loc = time.FixedZone("JST", 9*60*60)
	}
	return &DownloadHandler{storage: storage, location: loc, log: log, now: time.Now}
}

func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	file, err := h.storage.Open(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrReceiptFileNotFound) {
			writeError(w, domain.NewNotFound(receiptFileMissing, nil))
			return
		}
		h.log.Error("failed to open receipt pdf", zap.Error(err))
		writeError(w, err)
		return
	}
	defer file.Close()

	filename := "寄付受領書_" + h.now().In(h.location).Format("20060102_150405") + ".pdf"
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, file); err != nil {
		h.log.Warn("receipt download interrupted", zap.Error(err))
	}
}

package server

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/xilidan/transcriber/pkg/json"
	"github.com/xilidan/transcriber/pkg/logger"
	"github.com/xilidan/transcriber/services/asr/entity"
	"github.com/xilidan/transcriber/services/asr/usecase"
)

const uploadField = "file"

type Handler struct {
	usecase usecase.Usecase
	log     *slog.Logger
}

func NewHandler(uc usecase.Usecase, log *slog.Logger) *Handler {
	return &Handler{usecase: uc, log: log}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, entity.ErrUnsupportedFormat), errors.Is(err, entity.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, entity.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	log := logger.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", slog.String("error", err.Error()))
	} else {
		log.Debug(op+" rejected", slog.Int("status", status), slog.String("error", err.Error()))
	}
	json.WriteError(w, status, err)
}

func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	reader, err := r.MultipartReader()
	if err != nil {
		h.fail(w, r, "upload", fmt.Errorf("%w: %w", entity.ErrInvalidRequest, err))
		return
	}

	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			h.fail(w, r, "upload", fmt.Errorf("%w: %w", entity.ErrInvalidRequest, err))
			return
		}
		if part.FormName() != uploadField {
			part.Close()
			continue
		}

		resp, err := h.usecase.Upload(r.Context(), &entity.UploadRequest{
			Filename:    part.FileName(),
			ContentType: part.Header.Get("Content-Type"),
		}, part)
		part.Close()
		if err != nil {
			h.fail(w, r, "upload", err)
			return
		}

		json.WriteJSON(w, http.StatusOK, resp)
		return
	}

	h.fail(w, r, "upload", fmt.Errorf("%w: missing %q form field", entity.ErrInvalidRequest, uploadField))
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	req := &entity.SaveRequest{}
	if err := json.ParseJSON(r, req); err != nil {
		h.fail(w, r, "save", fmt.Errorf("%w: %w", entity.ErrInvalidRequest, err))
		return
	}

	resp, err := h.usecase.Save(r.Context(), req)
	if err != nil {
		h.fail(w, r, "save", err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) ExportText(w http.ResponseWriter, r *http.Request) {
	export, err := h.usecase.ExportText(r.Context(), chi.URLParam(r, "file_id"))
	if err != nil {
		h.fail(w, r, "export txt", err)
		return
	}
	writeAttachment(w, export)
}

func (h *Handler) ExportDocx(w http.ResponseWriter, r *http.Request) {
	export, err := h.usecase.ExportDocx(r.Context(), chi.URLParam(r, "file_id"))
	if err != nil {
		h.fail(w, r, "export docx", err)
		return
	}
	writeAttachment(w, export)
}

func writeAttachment(w http.ResponseWriter, export *entity.Export) {
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": export.Filename,
	}))
	w.Header().Set("Content-Length", strconv.Itoa(len(export.Content)))
	w.WriteHeader(http.StatusOK)
	w.Write(export.Content)
}

func (h *Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	item, err := h.usecase.GetHistory(r.Context(), chi.URLParam(r, "file_id"))
	if err != nil {
		h.fail(w, r, "history", err)
		return
	}

	json.WriteJSON(w, http.StatusOK, item)
}

func (h *Handler) SyncHistory(w http.ResponseWriter, r *http.Request) {
	var batch []any
	if err := json.ParseJSON(r, &batch); err != nil {
		h.fail(w, r, "history sync", fmt.Errorf("%w: %w", entity.ErrInvalidRequest, err))
		return
	}

	resp, err := h.usecase.Sync(r.Context(), batch)
	if err != nil {
		h.fail(w, r, "history sync", err)
		return
	}

	json.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	json.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

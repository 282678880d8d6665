// Package handler exposes the form submission pipeline over HTTP.
package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/saogeraldo/forms-api/internal/pipeline"
	"github.com/saogeraldo/forms-api/pkg/logger"
)

const (
	// maxFileBytes caps each uploaded file at 5 MiB.
	maxFileBytes int64 = 5 << 20
	// maxFiles caps the number of uploaded files per submission.
	maxFiles = 10
	// multipartMemory is the in-memory buffer for multipart parsing;
	// larger parts spill to temp files.
	multipartMemory int64 = 10 << 20
)

// allowedFileTypes is the mimetype allowlist for uploads.
var allowedFileTypes = []string{
	"application/pdf",
	"application/msword",
	"image/jpeg",
	"image/png",
}

var (
	errTooManyFiles       = errors.New("Número máximo de anexos excedido")
	errFileTooLarge       = errors.New("Arquivo excede o tamanho máximo de 5MB")
	errFileTypeNotAllowed = errors.New("Tipo de arquivo não permitido")
	errFileUnreadable     = errors.New("Não foi possível ler o arquivo enviado")
)

// Forms handles form submission requests.
type Forms struct {
	pipeline *pipeline.Pipeline
	log      *slog.Logger
}

// NewForms creates the forms handler.
func NewForms(p *pipeline.Pipeline, log *slog.Logger) *Forms {
	if log == nil {
		log = logger.NewNope()
	}
	return &Forms{pipeline: p, log: log}
}

// Routes mounts the handler's routes.
func (h *Forms) Routes(r chi.Router) {
	r.Post("/forms/submit", h.submit)
}

func (h *Forms) submit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := h.parseBody(r)
	if err != nil {
		h.log.WarnContext(ctx, "request body rejected", slog.String("error", err.Error()))

		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]any{
				"success":         false,
				"error":           "Payload too large",
				"maxAllowedBytes": maxErr.Limit,
			})
			return
		}

		writeJSON(w, http.StatusBadRequest, pipeline.Result{Success: false, Error: err.Error()})
		return
	}

	if body != nil {
		h.log.InfoContext(ctx, "submission received", slog.Any("form_id", body["formId"]))
	}

	res := h.pipeline.Process(ctx, body)
	writeJSON(w, res.Status, res)
}

// parseBody extracts the submission from a JSON or multipart request.
// A missing or undecodable body yields a nil map, which the pipeline's
// structural guard rejects with 400; upload policy violations and body
// limit trips are reported as errors.
func (h *Forms) parseBody(r *http.Request) (map[string]any, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return h.parseMultipart(r)
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		// Undecodable body is structurally invalid, guarded downstream.
		return nil, nil
	}
	return body, nil
}

func (h *Forms) parseMultipart(r *http.Request) (map[string]any, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, nil
	}

	body := make(map[string]any, len(r.MultipartForm.Value))
	for key, values := range r.MultipartForm.Value {
		if len(values) > 0 {
			body[key] = values[0]
		}
	}

	// Uploaded files land under the plural "anexos" key, the one
	// convention every schema understands. The singular "anexo" part name
	// is still accepted from older site builds.
	var files []*multipart.FileHeader
	files = append(files, r.MultipartForm.File["files"]...)
	files = append(files, r.MultipartForm.File["anexo"]...)

	if len(files) > maxFiles {
		return nil, errTooManyFiles
	}

	if len(files) > 0 {
		anexos := make([]any, 0, len(files))
		for _, fh := range files {
			att, err := decodeUpload(fh)
			if err != nil {
				return nil, err
			}
			anexos = append(anexos, att)
		}
		body["anexos"] = anexos
	}

	return body, nil
}

// decodeUpload enforces the per-file size and mimetype policy and encodes
// the file content to base64.
func decodeUpload(fh *multipart.FileHeader) (map[string]any, error) {
	if fh.Size > maxFileBytes {
		return nil, errFileTooLarge
	}
	if ct := fh.Header.Get("Content-Type"); !slices.Contains(allowedFileTypes, ct) {
		return nil, errFileTypeNotAllowed
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errFileUnreadable
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxFileBytes+1))
	if err != nil || int64(len(content)) > maxFileBytes {
		return nil, errFileTooLarge
	}

	return map[string]any{
		"name":    fh.Filename,
		"content": base64.StdEncoding.EncodeToString(content),
	}, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

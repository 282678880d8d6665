package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/saogeraldo/forms-api/internal/handler"
	"github.com/saogeraldo/forms-api/internal/pipeline"
	"github.com/saogeraldo/forms-api/middlewares"
	"github.com/saogeraldo/forms-api/pkg/mailer"
	"github.com/saogeraldo/forms-api/pkg/registry"
	"github.com/saogeraldo/forms-api/templates"
)

type MockRiskAssessor struct {
	mock.Mock
}

func (m *MockRiskAssessor) Assess(ctx context.Context, token, expectedAction string) (*float64, error) {
	args := m.Called(ctx, token, expectedAction)
	var score *float64
	if v := args.Get(0); v != nil {
		score = v.(*float64)
	}
	return score, args.Error(1)
}

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, email *mailer.Email) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func score(v float64) *float64 {
	return &v
}

func newRouter(risk *MockRiskAssessor, sender *MockSender) chi.Router {
	reg := registry.New(registry.Config{
		SenderEmail:    "forms@example.com",
		RecipientEmail: "team@example.com",
	})
	renderer := mailer.NewRendererWithDir(templates.FS, "email")
	p := pipeline.New(reg, risk, renderer, sender,
		pipeline.WithClock(func() time.Time {
			return time.Date(2025, 3, 15, 14, 30, 5, 0, time.UTC)
		}),
	)

	r := chi.NewRouter()
	handler.NewForms(p, nil).Routes(r)
	return r
}

func postJSON(t *testing.T, r http.Handler, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/forms/submit", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var res map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func TestForms_Submit_JSON_Success(t *testing.T) {
	t.Parallel()

	risk := &MockRiskAssessor{}
	sender := &MockSender{}
	r := newRouter(risk, sender)

	risk.On("Assess", mock.Anything, "tok1", "contato").Return(score(0.9), nil)
	sender.On("Send", mock.Anything, mock.Anything).Return("msg-42", nil)

	rec := postJSON(t, r, map[string]any{
		"formId":       "contato",
		"captchaToken": "tok1",
		"name":         "Ana",
		"email":        "ana@example.com",
		"whatsapp":     "11999999999",
		"message":      "Olá, gostaria de mais informações.",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeResult(t, rec)
	require.Equal(t, true, res["success"])
	require.Equal(t, "msg-42", res["messageId"])
	sender.AssertExpectations(t)
}

func TestForms_Submit_InvalidJSONBody(t *testing.T) {
	t.Parallel()

	risk := &MockRiskAssessor{}
	sender := &MockSender{}
	r := newRouter(risk, sender)

	req := httptest.NewRequest(http.MethodPost, "/forms/submit", strings.NewReader("not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeResult(t, rec)
	require.Equal(t, false, res["success"])
	require.Equal(t, "Corpo da requisição inválido", res["error"])
	risk.AssertNotCalled(t, "Assess")
	sender.AssertNotCalled(t, "Send")
}

func multipartRequest(t *testing.T, fields map[string]string, fileField, filename, contentType string, content []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+fileField+`"; filename="`+filename+`"`)
		h.Set("Content-Type", contentType)
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/forms/submit", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func contatoFields() map[string]string {
	return map[string]string{
		"formId":       "contato",
		"captchaToken": "tok1",
		"name":         "Ana",
		"email":        "ana@example.com",
		"whatsapp":     "11999999999",
		"message":      "Olá",
	}
}

func TestForms_Submit_Multipart_WithAttachment(t *testing.T) {
	t.Parallel()

	risk := &MockRiskAssessor{}
	sender := &MockSender{}
	r := newRouter(risk, sender)

	var sent *mailer.Email
	risk.On("Assess", mock.Anything, "tok1", "contato").Return(score(0.9), nil)
	sender.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*mailer.Email)
	}).Return("msg-42", nil)

	req := multipartRequest(t, contatoFields(), "files", "doc.pdf", "application/pdf", []byte("%PDF-1.4 fake"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, sent)
	require.Len(t, sent.Attachments, 1)
	require.Equal(t, "doc.pdf", sent.Attachments[0].Filename)
	require.Equal(t, []byte("%PDF-1.4 fake"), sent.Attachments[0].Content)
}

func TestForms_Submit_Multipart_LegacyAnexoPart(t *testing.T) {
	t.Parallel()

	risk := &MockRiskAssessor{}
	sender := &MockSender{}
	r := newRouter(risk, sender)

	var sent *mailer.Email
	risk.On("Assess", mock.Anything, mock.Anything, mock.Anything).Return(score(0.9), nil)
	sender.On("Send", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		sent = args.Get(1).(*mailer.Email)
	}).Return("msg-42", nil)

	req := multipartRequest(t, contatoFields(), "anexo", "foto.png", "image/png", []byte{0x89, 0x50, 0x4e, 0x47})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, sent)
	require.Len(t, sent.Attachments, 1)
	require.Equal(t, "foto.png", sent.Attachments[0].Filename)
}

func TestForms_Submit_Multipart_FileTypeNotAllowed(t *testing.T) {
	t.Parallel()

	risk := &MockRiskAssessor{}
	sender := &MockSender{}
	r := newRouter(risk, sender)

	req := multipartRequest(t, contatoFields(), "files", "evil.exe", "application/octet-stream", []byte("MZ"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeResult(t, rec)
	require.Equal(t, false, res["success"])
	require.Equal(t, "Tipo de arquivo não permitido", res["error"])
	risk.AssertNotCalled(t, "Assess")
	sender.AssertNotCalled(t, "Send")
}

func TestForms_Submit_Multipart_CoercesAcceptance(t *testing.T) {
	t.Parallel()

	risk := &MockRiskAssessor{}
	sender := &MockSender{}
	r := newRouter(risk, sender)

	risk.On("Assess", mock.Anything, mock.Anything, mock.Anything).Return(score(0.9), nil)
	sender.On("Send", mock.Anything, mock.Anything).Return("msg-42", nil)

	// Checkbox widgets submit "true" as a string.
	fields := map[string]string{
		"formId":        "agua-site-revendedor",
		"captchaToken":  "tok1",
		"name":          "Ana",
		"email":         "ana@example.com",
		"whatsapp":      "11999999999",
		"razaoSocial":   "ACME",
		"cnpj":          "123",
		"cidadeAtuacao": "SP",
		"acceptance":    "true",
	}
	req := multipartRequest(t, fields, "", "", "", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestForms_Submit_Multipart_OverLimitWithoutLength(t *testing.T) {
	t.Parallel()

	risk := &MockRiskAssessor{}
	sender := &MockSender{}
	wrapped := middlewares.MaxBytes(1024)(newRouter(risk, sender))

	// With no declared length the middleware's pre-check cannot fire; the
	// cap must trip while the multipart body streams through the handler.
	req := multipartRequest(t, contatoFields(), "files", "doc.pdf", "application/pdf", bytes.Repeat([]byte("a"), 4096))
	req.ContentLength = -1
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	res := decodeResult(t, rec)
	require.Equal(t, false, res["success"])
	require.Equal(t, "Payload too large", res["error"])
	require.Equal(t, float64(1024), res["maxAllowedBytes"])
	risk.AssertNotCalled(t, "Assess")
	sender.AssertNotCalled(t, "Send")
}

func TestForms_Submit_EmptyBody(t *testing.T) {
	t.Parallel()

	risk := &MockRiskAssessor{}
	sender := &MockSender{}
	r := newRouter(risk, sender)

	req := httptest.NewRequest(http.MethodPost, "/forms/submit", nil)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	res := decodeResult(t, rec)
	require.Equal(t, "Corpo da requisição inválido", res["error"])
}

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
	"github.com/Takita08/Marko-Docu-Ai/internal/service"
	"github.com/Takita08/Marko-Docu-Ai/internal/session"
	"github.com/Takita08/Marko-Docu-Ai/internal/storage"
)

// fakeAnalyzer records what it was asked and answers with canned values.
type fakeAnalyzer struct {
	analysis   *model.DocumentAnalysis
	prediction *model.StockPrediction
	err        error

	gotName   string
	gotData   []byte
	gotMIME   string
	gotSymbol string
}

func (f *fakeAnalyzer) AnalyzeDocument(_ context.Context, fileName string, payload []byte, mimeType string) (*model.DocumentAnalysis, error) {
	f.gotName, f.gotData, f.gotMIME = fileName, payload, mimeType
	return f.analysis, f.err
}

func (f *fakeAnalyzer) PredictMarket(_ context.Context, symbol string) (*model.StockPrediction, error) {
	f.gotSymbol = symbol
	if f.err != nil {
		return nil, f.err
	}
	if model.NormalizeSymbol(symbol) == "" {
		return nil, service.ErrInvalidInput
	}
	return f.prediction, nil
}

type fakeCalls struct {
	usage  storage.Usage
	recent []model.AnalysisCall
	err    error
}

func (f *fakeCalls) Create(context.Context, *model.AnalysisCall) error { return nil }

func (f *fakeCalls) Usage(context.Context) (*storage.Usage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &f.usage, nil
}

func (f *fakeCalls) ListRecent(context.Context, int) ([]model.AnalysisCall, error) {
	return f.recent, f.err
}

func sampleAnalysis() *model.DocumentAnalysis {
	return &model.DocumentAnalysis{
		Summary:            "Revenue grew.",
		KeyInsights:        []string{"A", "B"},
		DataInterpretation: "Margins expanded.",
		WatchOuts:          []model.WatchOut{{Title: "Risk1", Description: "d", Severity: model.SeverityHigh}},
		Sentiment:          model.SentimentNeutral,
	}
}

func samplePrediction() *model.StockPrediction {
	return &model.StockPrediction{
		Symbol:       "NVDA",
		CurrentTrend: model.TrendBullish,
		PriceTarget:  "$150",
		Rationale:    "Demand.",
		Catalysts:    []string{"AI demand"},
		Risks:        []string{"Regulation"},
		Sources:      []model.GroundingSource{{Title: "Reuters", URI: "https://reuters.com"}},
	}
}

const testMaxUpload = 1 << 20

func newTestRouter(t *testing.T, analyzer *fakeAnalyzer, calls *fakeCalls) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := session.NewStore(analyzer, 10, zap.NewNop())
	require.NoError(t, err)

	r := gin.New()
	analysis := NewAnalysisHandler(analyzer, testMaxUpload, zap.NewNop())
	sessions := NewSessionHandler(store, testMaxUpload, zap.NewNop())
	usage := NewUsageHandler(calls, zap.NewNop())

	r.GET("/healthz", NewHealthHandler().Healthz)
	r.GET("/usage", usage.Usage)
	r.POST("/documents/analyze", analysis.AnalyzeDocument)
	r.POST("/stocks/predict", analysis.PredictMarket)
	r.POST("/sessions", sessions.Create)
	r.GET("/sessions/:id", sessions.Get)
	r.DELETE("/sessions/:id", sessions.Delete)
	r.POST("/sessions/:id/document", sessions.SubmitDocument)
	r.POST("/sessions/:id/ticker", sessions.SubmitTicker)
	r.POST("/sessions/:id/reset", sessions.Reset)
	r.POST("/sessions/:id/mode", sessions.SwitchMode)
	return r
}

// multipartBody builds a one-file form. An empty contentType leaves the
// part header out so the server has to sniff.
func multipartBody(t *testing.T, fileName, contentType string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func do(r *gin.Engine, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, body)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	return do(r, method, path, bytes.NewBufferString(body), "application/json")
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), "body: %s", w.Body.String())
	return v
}

type sessionBody struct {
	ID    string `json:"id"`
	State struct {
		Phase       string                  `json:"phase"`
		IsAnalyzing bool                    `json:"isAnalyzing"`
		Result      *model.DocumentAnalysis `json:"result"`
		StockResult *model.StockPrediction  `json:"stockResult"`
		Error       *string                 `json:"error"`
		FileName    *string                 `json:"fileName"`
		ActiveMode  string                  `json:"activeMode"`
	} `json:"state"`
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t, &fakeAnalyzer{}, &fakeCalls{})
	w := do(r, "GET", "/healthz", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]string](t, w)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "marko-docu-ai", body["service"])
}

func TestAnalyzeDocument_OK(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: sampleAnalysis()}
	r := newTestRouter(t, analyzer, &fakeCalls{})

	body, ct := multipartBody(t, "report.pdf", "application/pdf", []byte("%PDF-1.7 data"))
	w := do(r, "POST", "/documents/analyze", body, ct)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got := decode[model.DocumentAnalysis](t, w)
	assert.Equal(t, "Revenue grew.", got.Summary)
	assert.Equal(t, "report.pdf", analyzer.gotName)
	assert.Equal(t, "application/pdf", analyzer.gotMIME)
	assert.Equal(t, []byte("%PDF-1.7 data"), analyzer.gotData)
}

func TestAnalyzeDocument_SniffsMissingType(t *testing.T) {
	analyzer := &fakeAnalyzer{analysis: sampleAnalysis()}
	r := newTestRouter(t, analyzer, &fakeCalls{})

	for _, ct := range []string{"", "application/octet-stream"} {
		body, formType := multipartBody(t, "report", ct, []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n"))
		w := do(r, "POST", "/documents/analyze", body, formType)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "application/pdf", analyzer.gotMIME, "part content type %q", ct)
	}
}

func TestAnalyzeDocument_Errors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest},
		{"transport", service.ErrTransport, http.StatusBadGateway},
		{"schema mismatch", service.ErrSchemaMismatch, http.StatusBadGateway},
		{"unexpected", errors.New("disk full"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestRouter(t, &fakeAnalyzer{err: tt.err}, &fakeCalls{})
			body, ct := multipartBody(t, "r.pdf", "application/pdf", []byte("x"))
			w := do(r, "POST", "/documents/analyze", body, ct)

			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, decode[map[string]string](t, w)["error"])
		})
	}
}

func TestAnalyzeDocument_InternalErrorIsLogged(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zapcore.DebugLevel)
	analysis := NewAnalysisHandler(&fakeAnalyzer{err: errors.New("sqlite: database is locked")}, testMaxUpload, zap.New(core))

	r := gin.New()
	r.POST("/documents/analyze", analysis.AnalyzeDocument)
	r.POST("/stocks/predict", analysis.PredictMarket)

	body, ct := multipartBody(t, "r.pdf", "application/pdf", []byte("x"))
	w := do(r, "POST", "/documents/analyze", body, ct)

	// The client sees a generic message; the cause is in the log.
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal error", decode[map[string]string](t, w)["error"])

	entries := logs.FilterMessage("request failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	fields := entries[0].ContextMap()
	assert.Equal(t, "sqlite: database is locked", fields["error"])
	assert.Equal(t, "/documents/analyze", fields["path"])
	assert.EqualValues(t, http.StatusInternalServerError, fields["status"])

	// Client errors stay out of the error log.
	w = doJSON(r, "POST", "/stocks/predict", `not json`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 1, logs.FilterMessage("request failed").Len())
}

func TestAnalyzeDocument_MissingFile(t *testing.T) {
	r := newTestRouter(t, &fakeAnalyzer{}, &fakeCalls{})
	w := doJSON(r, "POST", "/documents/analyze", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAnalyzeDocument_TooLarge(t *testing.T) {
	r := newTestRouter(t, &fakeAnalyzer{analysis: sampleAnalysis()}, &fakeCalls{})
	body, ct := multipartBody(t, "big.pdf", "application/pdf", bytes.Repeat([]byte("x"), testMaxUpload+1))
	w := do(r, "POST", "/documents/analyze", body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestPredictMarket(t *testing.T) {
	analyzer := &fakeAnalyzer{prediction: samplePrediction()}
	r := newTestRouter(t, analyzer, &fakeCalls{})

	w := doJSON(r, "POST", "/stocks/predict", `{"symbol":"nvda"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[model.StockPrediction](t, w)
	assert.Equal(t, "NVDA", got.Symbol)
	assert.Equal(t, "nvda", analyzer.gotSymbol)

	w = doJSON(r, "POST", "/stocks/predict", `{"symbol":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "POST", "/stocks/predict", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSession_DocumentFlow(t *testing.T) {
	r := newTestRouter(t, &fakeAnalyzer{analysis: sampleAnalysis()}, &fakeCalls{})

	w := do(r, "POST", "/sessions", nil, "")
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[sessionBody](t, w)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "idle", created.State.Phase)
	assert.Equal(t, "doc", created.State.ActiveMode)
	assert.Nil(t, created.State.Result)
	assert.Nil(t, created.State.Error)

	body, ct := multipartBody(t, "report.pdf", "application/pdf", []byte("%PDF"))
	w = do(r, "POST", "/sessions/"+created.ID+"/document", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	shown := decode[sessionBody](t, w)
	assert.Equal(t, "displaying", shown.State.Phase)
	assert.False(t, shown.State.IsAnalyzing)
	require.NotNil(t, shown.State.Result)
	assert.Equal(t, "Revenue grew.", shown.State.Result.Summary)
	assert.Nil(t, shown.State.StockResult)
	require.NotNil(t, shown.State.FileName)
	assert.Equal(t, "report.pdf", *shown.State.FileName)

	// A second submit needs a reset first.
	body, ct = multipartBody(t, "again.pdf", "application/pdf", []byte("%PDF"))
	w = do(r, "POST", "/sessions/"+created.ID+"/document", body, ct)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, "POST", "/sessions/"+created.ID+"/reset", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	reset := decode[sessionBody](t, w)
	assert.Equal(t, "idle", reset.State.Phase)
	assert.Equal(t, "doc", reset.State.ActiveMode)
	assert.Nil(t, reset.State.FileName)
}

func TestSession_TickerFlow(t *testing.T) {
	analyzer := &fakeAnalyzer{prediction: samplePrediction()}
	r := newTestRouter(t, analyzer, &fakeCalls{})

	w := doJSON(r, "POST", "/sessions", `{"mode":"stock"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decode[sessionBody](t, w).ID

	// Blank tickers are rejected before any transition.
	w = doJSON(r, "POST", "/sessions/"+id+"/ticker", `{"symbol":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, analyzer.gotSymbol)

	w = doJSON(r, "POST", "/sessions/"+id+"/ticker", `{"symbol":"nvda"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[sessionBody](t, w)
	assert.Equal(t, "displaying", got.State.Phase)
	require.NotNil(t, got.State.StockResult)
	assert.Equal(t, "NVDA", got.State.StockResult.Symbol)
	assert.Nil(t, got.State.Result)
}

func TestSession_AdapterFailureIsState(t *testing.T) {
	analyzer := &fakeAnalyzer{err: service.ErrTransport}
	r := newTestRouter(t, analyzer, &fakeCalls{})

	w := doJSON(r, "POST", "/sessions", `{"mode":"stock"}`)
	id := decode[sessionBody](t, w).ID

	w = doJSON(r, "POST", "/sessions/"+id+"/ticker", `{"symbol":"AAPL"}`)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[sessionBody](t, w)
	assert.Equal(t, "failed", got.State.Phase)
	require.NotNil(t, got.State.Error)
	assert.NotEmpty(t, *got.State.Error)
	assert.Nil(t, got.State.StockResult)
}

func TestSession_ModeRules(t *testing.T) {
	r := newTestRouter(t, &fakeAnalyzer{prediction: samplePrediction()}, &fakeCalls{})

	w := do(r, "POST", "/sessions", nil, "")
	id := decode[sessionBody](t, w).ID

	w = doJSON(r, "POST", "/sessions/"+id+"/ticker", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusConflict, w.Code, "ticker in doc mode")

	w = doJSON(r, "POST", "/sessions/"+id+"/mode", `{"mode":"crypto"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, "POST", "/sessions/"+id+"/mode", `{"mode":"stock"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "stock", decode[sessionBody](t, w).State.ActiveMode)

	w = doJSON(r, "POST", "/sessions/"+id+"/ticker", `{"symbol":"AAPL"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSession_NotFoundAndDelete(t *testing.T) {
	r := newTestRouter(t, &fakeAnalyzer{}, &fakeCalls{})

	w := do(r, "GET", "/sessions/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, "POST", "/sessions", nil, "")
	id := decode[sessionBody](t, w).ID

	w = do(r, "DELETE", "/sessions/"+id, nil, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, "GET", "/sessions/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUsage(t *testing.T) {
	calls := &fakeCalls{
		usage:  storage.Usage{Total: 3, Documents: 2, Markets: 1, Failed: 1},
		recent: []model.AnalysisCall{{ID: 3, Kind: model.KindMarket, Subject: "NVDA"}},
	}
	r := newTestRouter(t, &fakeAnalyzer{}, calls)

	w := do(r, "GET", "/usage", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.EqualValues(t, 3, body["total"])
	assert.EqualValues(t, 2, body["documents"])
	assert.EqualValues(t, 1, body["markets"])
	assert.EqualValues(t, 1, body["failed"])
	assert.Len(t, body["recent"], 1)

	w = do(r, "GET", "/usage?recent=abc", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	calls.err = errors.New("db locked")
	w = do(r, "GET", "/usage", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

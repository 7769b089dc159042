package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/fastprodman/artmarket/internal/apperr"
	"github.com/fastprodman/artmarket/internal/infra/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	router   http.Handler
	accounts *fakeAccounts
	wallet   *fakeWallet
	uploads  *fakeUploads
	metrics  *metrics.Metrics
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		accounts: &fakeAccounts{},
		wallet:   &fakeWallet{},
		uploads:  &fakeUploads{},
		metrics:  metrics.New(),
	}

	h := NewHandler(Deps{
		Accounts: env.accounts,
		Wallet:   env.wallet,
		Catalog:  fakeCatalog{},
		Uploads:  env.uploads,
		Ping:     func(context.Context) error { return nil },
		Metrics:  env.metrics,
	})

	env.router = NewRouter(h, []string{"http://localhost:3000"}, NewClientRateLimiter(1000, 1000))

	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())

	return out
}

func TestRegisterAndLogin(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/auth/register", `{"username":"ana","displayName":"Ana","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	user := decodeBody(t, rec)["user"].(map[string]any)
	assert.Equal(t, "100.00", user["balance"])

	rec = env.do(http.MethodPost, "/auth/register", `{"username":"ana","password":"pw"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "invalid_input", body["kind"])
	assert.Contains(t, body["error"], "displayName is required")

	rec = env.do(http.MethodPost, "/auth/login", `{"username":"ana","password":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/auth/login", `{"username":"ana","password":"pw"}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRegister_Conflict(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	env.accounts.err = fmt.Errorf("register: %w", apperr.ErrConflict)

	rec := env.do(http.MethodPost, "/auth/register", `{"username":"ana","displayName":"Ana","password":"pw"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "conflict", decodeBody(t, rec)["kind"])
}

func TestDecode_RejectsBadJSON(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	for _, body := range []string{"", "{", `{"username":"ana","password":"pw","extra":1}`} {
		rec := env.do(http.MethodPost, "/auth/login", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %q", body)
	}
}

func TestTopUp_AmountForms(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantAmount string
	}{
		{"number", `{"username":"ana","amount":12.5}`, http.StatusOK, "12.5"},
		{"string", `{"username":"ana","amount":"0.005"}`, http.StatusOK, "0.005"},
		{"missing", `{"username":"ana"}`, http.StatusBadRequest, ""},
		{"garbage", `{"username":"ana","amount":"abc"}`, http.StatusBadRequest, ""},
		{"scientific", `{"username":"ana","amount":"1e3"}`, http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)

			rec := env.do(http.MethodPost, "/profile/topup", tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantAmount != "" {
				assert.Equal(t, tt.wantAmount, env.wallet.lastAmount.String())
			}
		})
	}
}

func TestTopUp_ResponseAndErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/profile/topup", `{"username":"ana","amount":"50"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "150.00", decodeBody(t, rec)["balance"])

	env.wallet.err = fmt.Errorf("top up: %w", apperr.ErrInvalidAmount)
	rec = env.do(http.MethodPost, "/profile/topup", `{"username":"ana","amount":"1000001"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_amount", decodeBody(t, rec)["kind"])

	env.wallet.err = fmt.Errorf("top up: %w", apperr.ErrNotFound)
	rec = env.do(http.MethodPost, "/profile/topup", `{"username":"ghost","amount":"1"}`)
	require.Equal(t, http.StatusNotFound, rec.Code)

	env.wallet.err = fmt.Errorf("top up: %w: %w", apperr.ErrStoreUnavailable, errors.New("lock timeout"))
	rec = env.do(http.MethodPost, "/profile/topup", `{"username":"ana","amount":"1"}`)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.NotContains(t, rec.Body.String(), "lock timeout")

	env.wallet.err = errors.New("pq: something odd")
	rec = env.do(http.MethodPost, "/profile/topup", `{"username":"ana","amount":"1"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "something odd")
}

func TestPurchase_StatusMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantKind   string
	}{
		{"ok", nil, http.StatusOK, ""},
		{"unavailable", apperr.ErrItemUnavailable, http.StatusBadRequest, "item_unavailable"},
		{"insufficient", apperr.ErrInsufficientFunds, http.StatusBadRequest, "insufficient_funds"},
		{"unknown_account", apperr.ErrNotFound, http.StatusBadRequest, "not_found"},
		{"store", apperr.ErrStoreUnavailable, http.StatusServiceUnavailable, "store_unavailable"},
		{"canceled", apperr.ErrCanceled, statusClientClosedRequest, "canceled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t)
			if tt.err != nil {
				env.wallet.err = fmt.Errorf("purchase: %w", tt.err)
			}

			rec := env.do(http.MethodPost, "/purchase", `{"username":"ana","itemId":7}`)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			body := decodeBody(t, rec)
			if tt.wantKind == "" {
				assert.Equal(t, "70.00", body["balance"])
				assert.Equal(t, int64(7), env.wallet.lastItem)

				return
			}

			assert.Equal(t, tt.wantKind, body["kind"])
		})
	}
}

func TestPurchase_RequiresItemID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/purchase", `{"username":"ana"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["error"], "itemId")
}

func TestGallery(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/gallery", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "45.50", list[0]["price"])

	rec = env.do(http.MethodGet, "/gallery?include_sold=true", "")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list, 2)
}

func TestProfileReads(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/profile/me?username=ana", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "70.00", decodeBody(t, rec)["balance"])

	rec = env.do(http.MethodGet, "/profile/me?username=ghost", "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodGet, "/profile/me", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/profile/purchased?username=ana", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pricePaid":"30.00"`)

	rec = env.do(http.MethodGet, "/profile/movements?username=ana", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"amount":"-30.00"`)
	assert.Contains(t, rec.Body.String(), `"relatedPurchaseId":9`)
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodPut, "/profile", `{"username":"ana","passwordConfirm":"pw","newUsername":"anabel"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, env.accounts.lastPatch.NewUsername)
	assert.Equal(t, "anabel", *env.accounts.lastPatch.NewUsername)
	assert.Nil(t, env.accounts.lastPatch.NewDisplayName)
	assert.Equal(t, "pw", env.accounts.lastConfirm)

	rec = env.do(http.MethodPut, "/profile", `{"username":"ana"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	env.accounts.err = fmt.Errorf("update profile: %w", apperr.ErrUnauthorized)
	rec = env.do(http.MethodPut, "/profile", `{"username":"ana","passwordConfirm":"bad"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func multipartBody(t *testing.T, contentType string, payload []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="photo"`)
	hdr.Set("Content-Type", contentType)

	part, err := mw.CreatePart(hdr)
	require.NoError(t, err)

	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	return buf, mw.FormDataContentType()
}

func TestUploadProfile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	body, ct := multipartBody(t, "image/png", []byte("png"), map[string]string{"username": "ana"})
	req := httptest.NewRequest(http.MethodPost, "/profile/upload", body)
	req.Header.Set("Content-Type", ct)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "profile-photos/ana.png", decodeBody(t, rec)["key"])
	assert.Equal(t, int64(3), env.uploads.size)

	body, ct = multipartBody(t, "image/gif", []byte("gif"), map[string]string{"userId": "42", "username": "ana"})
	req = httptest.NewRequest(http.MethodPost, "/profile/upload", body)
	req.Header.Set("Content-Type", ct)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Equal(t, "42", env.uploads.subject)

	rec = env.do(http.MethodPost, "/profile/upload", `{"not":"multipart"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresign(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/s3/presign", `{"folder":"items","filename":"a.jpg"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "items/a.jpg", decodeBody(t, rec)["key"])

	rec = env.do(http.MethodPost, "/s3/presign", `{"folder":"items"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodPost, "/s3/presign-profile", `{"username":"ana","contentType":"image/png"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://s3/x", decodeBody(t, rec)["uploadUrl"])
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/check", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["timestamp"])

	rec = env.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/db/ping", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/db/ping"`)
}

func TestDBPing_Down(t *testing.T) {
	t.Parallel()

	h := NewHandler(Deps{Ping: func(context.Context) error {
		return fmt.Errorf("ping: %w", apperr.ErrStoreUnavailable)
	}})

	rec := httptest.NewRecorder()
	NewRouter(h, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/db/ping", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/healthz", "")
	assert.Len(t, rec.Header().Get(requestIDHeader), 36)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "abc-123")

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestCORS_Preflight(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodOptions, "/purchase", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/purchase", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AnyOriginWithoutCredentials(t *testing.T) {
	t.Parallel()

	h := NewHandler(Deps{Ping: func(context.Context) error { return nil }})
	router := NewRouter(h, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/purchase", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	h := NewHandler(Deps{Ping: func(context.Context) error { panic("boom") }})

	rec := httptest.NewRecorder()
	NewRouter(h, nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/db/ping", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

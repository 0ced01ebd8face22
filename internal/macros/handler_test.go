package macros

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rolldeck/rolldeck/internal/identity"
	"github.com/rolldeck/rolldeck/internal/observability"
	_ "github.com/rolldeck/rolldeck/testing"
)

var handlerSecret = []byte("handler-test-secret")

func newTestRouter(t *testing.T, repo Repository) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(logger, NewService(repo), observability.NewMetrics())
	middleware := identity.Middleware{
		Verifier:   identity.NewVerifier(handlerSecret, nil),
		CookieName: "access_token",
		Logger:     logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.Authenticate)
	r.Route("/macros", handler.MountRoutes)
	return r
}

func tokenFor(t *testing.T, ownerID string) *http.Cookie {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": ownerID,
		"exp":    time.Now().Add(time.Hour).Unix(),
	}).SignedString(handlerSecret)
	require.NoError(t, err)
	return &http.Cookie{Name: "access_token", Value: raw}
}

func doRequest(router http.Handler, method, path, body string, cookie *http.Cookie) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	res := httptest.NewRecorder()
	router.ServeHTTP(res, req)
	return res
}

func TestMacrosRequireCredential(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	endpoints := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/macros/"},
		{http.MethodPost, "/macros/"},
		{http.MethodGet, "/macros/1"},
		{http.MethodPatch, "/macros/1"},
		{http.MethodDelete, "/macros/1"},
		{http.MethodPost, "/macros/1/roll"},
	}
	for _, ep := range endpoints {
		res := doRequest(router, ep.method, ep.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, res.Code, "%s %s", ep.method, ep.path)
	}
}

func TestMacrosRejectInvalidToken(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	res := doRequest(router, http.MethodGet, "/macros/", "", &http.Cookie{Name: "access_token", Value: "bogus"})
	assert.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestCreateAndListMacros(t *testing.T) {
	router := newTestRouter(t, newMockRepository())
	cookie := tokenFor(t, ownerA)

	res := doRequest(router, http.MethodPost, "/macros/", `{"name":"Attack","num_dice":1,"sides":20,"modifier":5}`, cookie)
	require.Equal(t, http.StatusCreated, res.Code)

	var created Macro
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Attack", created.Name)
	// The owner is internal state and never serialized.
	assert.NotContains(t, res.Body.String(), ownerA)

	res = doRequest(router, http.MethodGet, "/macros/", "", cookie)
	require.Equal(t, http.StatusOK, res.Code)
	var list []Macro
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}

func TestCreateIgnoresClientOwner(t *testing.T) {
	repo := newMockRepository()
	router := newTestRouter(t, repo)

	body := `{"name":"Attack","num_dice":1,"sides":20,"owner_id":"` + ownerB + `"}`
	res := doRequest(router, http.MethodPost, "/macros/", body, tokenFor(t, ownerA))
	require.Equal(t, http.StatusCreated, res.Code)

	var created Macro
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))
	stored, err := repo.Get(context.Background(), ownerA, created.ID)
	require.NoError(t, err)
	assert.Equal(t, ownerA, stored.OwnerID)
}

func TestCreateValidation(t *testing.T) {
	router := newTestRouter(t, newMockRepository())
	cookie := tokenFor(t, ownerA)

	cases := map[string]string{
		"missing name":   `{"num_dice":1,"sides":20}`,
		"name too long":  `{"name":"` + strings.Repeat("x", 101) + `","num_dice":1,"sides":20}`,
		"zero dice":      `{"name":"Attack","num_dice":0,"sides":20}`,
		"too many dice":  `{"name":"Attack","num_dice":101,"sides":20}`,
		"one side":       `{"name":"Attack","num_dice":1,"sides":1}`,
		"too many sides": `{"name":"Attack","num_dice":1,"sides":1001}`,
		"malformed json": `{"name":`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			res := doRequest(router, http.MethodPost, "/macros/", body, cookie)
			assert.Equal(t, http.StatusBadRequest, res.Code)
		})
	}
}

func TestCreateQuotaOverHTTP(t *testing.T) {
	router := newTestRouter(t, newMockRepository())
	cookie := tokenFor(t, ownerA)

	for i := 0; i < 10; i++ {
		body := `{"name":"macro-` + string(rune('a'+i)) + `","num_dice":1,"sides":6}`
		res := doRequest(router, http.MethodPost, "/macros/", body, cookie)
		require.Equal(t, http.StatusCreated, res.Code, "macro %d", i)
	}

	res := doRequest(router, http.MethodPost, "/macros/", `{"name":"eleventh","num_dice":1,"sides":6}`, cookie)
	require.Equal(t, http.StatusBadRequest, res.Code)
	assert.Contains(t, res.Body.String(), "up to 10")
}

func TestShowForeignMacroIsNotFound(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	res := doRequest(router, http.MethodPost, "/macros/", `{"name":"Attack","num_dice":1,"sides":20}`, tokenFor(t, ownerA))
	require.Equal(t, http.StatusCreated, res.Code)
	var created Macro
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))

	for _, tc := range []struct {
		method string
		path   string
		body   string
	}{
		{http.MethodGet, "/macros/1", ""},
		{http.MethodPatch, "/macros/1", `{"modifier":1}`},
		{http.MethodDelete, "/macros/1", ""},
		{http.MethodPost, "/macros/1/roll", ""},
	} {
		res := doRequest(router, tc.method, tc.path, tc.body, tokenFor(t, ownerB))
		assert.Equal(t, http.StatusNotFound, res.Code, "%s %s", tc.method, tc.path)
	}
}

func TestPartialUpdate(t *testing.T) {
	router := newTestRouter(t, newMockRepository())
	cookie := tokenFor(t, ownerA)

	res := doRequest(router, http.MethodPost, "/macros/", `{"name":"Damage","num_dice":2,"sides":6,"modifier":3}`, cookie)
	require.Equal(t, http.StatusCreated, res.Code)
	var created Macro
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &created))

	res = doRequest(router, http.MethodPatch, "/macros/1", `{"modifier":-1}`, cookie)
	require.Equal(t, http.StatusOK, res.Code)

	var updated Macro
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &updated))
	assert.Equal(t, "Damage", updated.Name)
	assert.Equal(t, 2, updated.NumDice)
	assert.Equal(t, 6, updated.Sides)
	assert.Equal(t, -1, updated.Modifier)
}

func TestPartialUpdateValidation(t *testing.T) {
	router := newTestRouter(t, newMockRepository())
	cookie := tokenFor(t, ownerA)

	res := doRequest(router, http.MethodPost, "/macros/", `{"name":"Damage","num_dice":2,"sides":6}`, cookie)
	require.Equal(t, http.StatusCreated, res.Code)

	cases := map[string]string{
		"zero dice":  `{"num_dice":0}`,
		"one side":   `{"sides":1}`,
		"empty name": `{"name":""}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			res := doRequest(router, http.MethodPatch, "/macros/1", body, cookie)
			assert.Equal(t, http.StatusBadRequest, res.Code)
		})
	}
}

func TestDeleteMacro(t *testing.T) {
	router := newTestRouter(t, newMockRepository())
	cookie := tokenFor(t, ownerA)

	res := doRequest(router, http.MethodPost, "/macros/", `{"name":"Attack","num_dice":1,"sides":20}`, cookie)
	require.Equal(t, http.StatusCreated, res.Code)

	res = doRequest(router, http.MethodDelete, "/macros/1", "", cookie)
	require.Equal(t, http.StatusNoContent, res.Code)

	res = doRequest(router, http.MethodGet, "/macros/1", "", cookie)
	assert.Equal(t, http.StatusNotFound, res.Code)
}

func TestMacroRollEndpoint(t *testing.T) {
	router := newTestRouter(t, newMockRepository())
	cookie := tokenFor(t, ownerA)

	res := doRequest(router, http.MethodPost, "/macros/", `{"name":"Damage","num_dice":2,"sides":6,"modifier":3}`, cookie)
	require.Equal(t, http.StatusCreated, res.Code)

	res = doRequest(router, http.MethodPost, "/macros/1/roll", "", cookie)
	require.Equal(t, http.StatusOK, res.Code)

	var outcome RollOutcome
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &outcome))
	assert.Equal(t, int64(1), outcome.MacroID)
	assert.Equal(t, "Damage", outcome.Name)
	require.Len(t, outcome.Rolls, 2)
	sum := 0
	for _, v := range outcome.Rolls {
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 6)
		sum += v
	}
	assert.Equal(t, sum, outcome.Total)
	assert.Equal(t, sum+3, outcome.Final)
}

func TestMalformedMacroID(t *testing.T) {
	router := newTestRouter(t, newMockRepository())

	res := doRequest(router, http.MethodGet, "/macros/abc", "", tokenFor(t, ownerA))
	assert.Equal(t, http.StatusNotFound, res.Code)
}

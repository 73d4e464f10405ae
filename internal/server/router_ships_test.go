package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/MarcoPoloResearchLab/shipyard/backend/internal/ships"
	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const jsonContentType = "application/json"

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "router.db")), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&ships.Ship{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	store, err := ships.NewGormStore(db)
	if err != nil {
		t.Fatalf("failed to build store: %v", err)
	}
	service, err := ships.NewService(ships.ServiceConfig{Store: store, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}
	handler, err := NewHTTPHandler(Dependencies{ShipsService: service, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return handler
}

func perform(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var request *http.Request
	if body == "" {
		request = httptest.NewRequest(method, target, http.NoBody)
	} else {
		request = httptest.NewRequest(method, target, strings.NewReader(body))
		request.Header.Set("Content-Type", jsonContentType)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder
}

func prodDateMillis(year int) int64 {
	return time.Date(year, time.March, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
}

func createBody(name string, speed float64, year int) string {
	payload := map[string]any{
		"name":     name,
		"planet":   "Mars",
		"shipType": "MERCHANT",
		"prodDate": prodDateMillis(year),
		"speed":    speed,
		"crewSize": 42,
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func decodeShip(t *testing.T, recorder *httptest.ResponseRecorder) shipResponsePayload {
	t.Helper()
	var payload shipResponsePayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode ship: %v (%s)", err, recorder.Body.String())
	}
	return payload
}

func TestNewHTTPHandlerRequiresShipsService(t *testing.T) {
	if _, err := NewHTTPHandler(Dependencies{}); err == nil {
		t.Fatalf("expected error for missing ships service")
	}
}

func TestShipsCRUDFlow(t *testing.T) {
	handler := newTestRouter(t)

	created := perform(t, handler, http.MethodPost, shipsRoute, createBody("Orion", 0.5, 2800))
	if created.Code != http.StatusOK {
		t.Fatalf("unexpected create status %d: %s", created.Code, created.Body.String())
	}
	ship := decodeShip(t, created)
	if ship.ID == 0 || ship.Rating != 0.18 || ship.IsUsed {
		t.Fatalf("unexpected created ship %#v", ship)
	}
	if ship.ProdDate != prodDateMillis(2800) {
		t.Fatalf("unexpected prod date %d", ship.ProdDate)
	}

	shipPath := shipsRoute + "/" + jsonNumber(ship.ID)
	fetched := perform(t, handler, http.MethodGet, shipPath, "")
	if fetched.Code != http.StatusOK || decodeShip(t, fetched).Name != "Orion" {
		t.Fatalf("unexpected fetch response %d: %s", fetched.Code, fetched.Body.String())
	}

	updated := perform(t, handler, http.MethodPost, shipPath, `{"isUsed":true}`)
	if updated.Code != http.StatusOK {
		t.Fatalf("unexpected update status %d: %s", updated.Code, updated.Body.String())
	}
	if got := decodeShip(t, updated); !got.IsUsed || got.Rating != 0.09 || got.Name != "Orion" {
		t.Fatalf("unexpected updated ship %#v", got)
	}

	unchanged := perform(t, handler, http.MethodPost, shipPath, "")
	if unchanged.Code != http.StatusOK || decodeShip(t, unchanged).Rating != 0.09 {
		t.Fatalf("unexpected empty update response %d: %s", unchanged.Code, unchanged.Body.String())
	}

	deleted := perform(t, handler, http.MethodDelete, shipPath, "")
	if deleted.Code != http.StatusOK {
		t.Fatalf("unexpected delete status %d", deleted.Code)
	}
	if missing := perform(t, handler, http.MethodGet, shipPath, ""); missing.Code != http.StatusNotFound {
		t.Fatalf("expected not found after delete, got %d", missing.Code)
	}
}

func TestShipsValidationFailures(t *testing.T) {
	handler := newTestRouter(t)
	created := decodeShip(t, perform(t, handler, http.MethodPost, shipsRoute, createBody("Orion", 0.5, 2900)))
	shipPath := shipsRoute + "/" + jsonNumber(created.ID)

	testCases := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantCode   string
	}{
		{
			name:       "create-speed-too-high",
			method:     http.MethodPost,
			target:     shipsRoute,
			body:       createBody("Vega", 1.0, 2900),
			wantStatus: http.StatusBadRequest,
			wantCode:   "ships.create.speed_out_of_range",
		},
		{
			name:       "create-name-too-long",
			method:     http.MethodPost,
			target:     shipsRoute,
			body:       createBody(strings.Repeat("x", 51), 0.5, 2900),
			wantStatus: http.StatusBadRequest,
			wantCode:   "ships.create.text_too_long",
		},
		{
			name:       "create-missing-fields",
			method:     http.MethodPost,
			target:     shipsRoute,
			body:       `{"name":"Vega"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "ships.create.missing_field",
		},
		{
			name:       "create-unknown-type",
			method:     http.MethodPost,
			target:     shipsRoute,
			body:       strings.Replace(createBody("Vega", 0.5, 2900), "MERCHANT", "BARGE", 1),
			wantStatus: http.StatusBadRequest,
			wantCode:   "",
		},
		{
			name:       "update-year-out-of-range",
			method:     http.MethodPost,
			target:     shipPath,
			body:       `{"prodDate":` + jsonNumber(uint64(prodDateMillis(3020))) + `}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "ships.update.prod_year_out_of_range",
		},
		{
			name:       "update-missing-ship",
			method:     http.MethodPost,
			target:     shipsRoute + "/999",
			body:       `{"crewSize":0}`,
			wantStatus: http.StatusNotFound,
			wantCode:   "ships.update.not_found",
		},
		{
			name:       "get-zero-id",
			method:     http.MethodGet,
			target:     shipsRoute + "/0",
			wantStatus: http.StatusBadRequest,
			wantCode:   "ships.get.invalid_id",
		},
		{
			name:       "delete-negative-id",
			method:     http.MethodDelete,
			target:     shipsRoute + "/-5",
			wantStatus: http.StatusBadRequest,
			wantCode:   "ships.delete.invalid_id",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			recorder := perform(t, handler, testCase.method, testCase.target, testCase.body)
			if recorder.Code != testCase.wantStatus {
				t.Fatalf("unexpected status: got %d want %d (%s)", recorder.Code, testCase.wantStatus, recorder.Body.String())
			}
			var payload map[string]any
			if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
				t.Fatalf("failed to decode payload: %v", err)
			}
			if payload["code"] != testCase.wantCode {
				t.Fatalf("expected code %q, got %v", testCase.wantCode, payload["code"])
			}
		})
	}
}

func TestListShipsFiltersSortsAndPages(t *testing.T) {
	handler := newTestRouter(t)
	for index, speed := range []float64{0.9, 0.1, 0.5, 0.3, 0.7} {
		body := createBody("Ship-"+string(rune('A'+index)), speed, 3000)
		if recorder := perform(t, handler, http.MethodPost, shipsRoute, body); recorder.Code != http.StatusOK {
			t.Fatalf("seed create failed: %s", recorder.Body.String())
		}
	}

	recorder := perform(t, handler, http.MethodGet, shipsRoute+"?order=SPEED&minSpeed=0.3", "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected list status %d", recorder.Code)
	}
	var page []shipResponsePayload
	if err := json.Unmarshal(recorder.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if len(page) != 3 || page[0].Speed != 0.3 || page[1].Speed != 0.5 || page[2].Speed != 0.7 {
		t.Fatalf("unexpected first page %#v", page)
	}

	recorder = perform(t, handler, http.MethodGet, shipsRoute+"?order=SPEED&minSpeed=0.3&pageNumber=1", "")
	page = nil
	if err := json.Unmarshal(recorder.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if len(page) != 1 || page[0].Speed != 0.9 {
		t.Fatalf("unexpected second page %#v", page)
	}

	recorder = perform(t, handler, http.MethodGet, shipsRoute+"?pageNumber=5", "")
	if strings.TrimSpace(recorder.Body.String()) != "[]" {
		t.Fatalf("expected empty page, got %s", recorder.Body.String())
	}

	recorder = perform(t, handler, http.MethodGet, shipsRoute+"/count?minSpeed=0.3&name=Ship", "")
	if recorder.Code != http.StatusOK || strings.TrimSpace(recorder.Body.String()) != "4" {
		t.Fatalf("unexpected count response %d: %s", recorder.Code, recorder.Body.String())
	}
}

func TestListShipsRejectsMalformedQuery(t *testing.T) {
	handler := newTestRouter(t)

	for _, query := range []string{"minSpeed=fast", "isUsed=maybe", "shipType=BARGE", "after=yesterday", "pageSize=-1"} {
		recorder := perform(t, handler, http.MethodGet, shipsRoute+"?"+query, "")
		if recorder.Code != http.StatusBadRequest {
			t.Fatalf("expected bad request for %q, got %d", query, recorder.Code)
		}
	}
}

func TestHandleListShipsIncludesServiceErrorCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	context, _ := gin.CreateTestContext(recorder)
	context.Request = httptest.NewRequest(http.MethodGet, shipsRoute, http.NoBody)

	handler := &httpHandler{
		shipsService: &ships.Service{},
		logger:       zap.NewNop(),
	}

	handler.handleListShips(context)

	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("expected internal server error status, got %d", recorder.Code)
	}
	var payload map[string]any
	if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["code"] != "ships.list.missing_store" {
		t.Fatalf("expected service error code, got %v", payload["code"])
	}
}

func TestRequestIDIsEchoedOrAssigned(t *testing.T) {
	handler := newTestRouter(t)

	request := httptest.NewRequest(http.MethodGet, shipsRoute+"/count", http.NoBody)
	request.Header.Set(requestIDHeader, "trace-123")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	if recorder.Header().Get(requestIDHeader) != "trace-123" {
		t.Fatalf("expected request id to be echoed, got %q", recorder.Header().Get(requestIDHeader))
	}

	recorder = perform(t, handler, http.MethodGet, shipsRoute+"/count", "")
	if len(recorder.Header().Get(requestIDHeader)) != 36 {
		t.Fatalf("expected generated uuid request id, got %q", recorder.Header().Get(requestIDHeader))
	}
}

func jsonNumber(value uint64) string {
	encoded, _ := json.Marshal(value)
	return string(encoded)
}

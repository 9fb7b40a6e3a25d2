package record

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _, _ := newTestService()
	return NewHandler(svc), echo.New()
}

func TestHandler_CreateRecord(t *testing.T) {
	h, e := newTestHandler()

	body := `{"patient_name":"maria silva","record_number":"123","current_location":"Arquivo"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateRecord(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var got PatientRecord
	json.Unmarshal(rec.Body.Bytes(), &got)
	if got.PatientName != "MARIA SILVA" {
		t.Errorf("expected normalized name, got %q", got.PatientName)
	}
}

func TestHandler_CreateRecord_MissingName(t *testing.T) {
	h, e := newTestHandler()

	body := `{"current_location":"Arquivo"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.CreateRecord(c); err == nil {
		t.Error("expected error for missing patient_name")
	}
}

func TestHandler_CreateRecord_DuplicateNumberConflict(t *testing.T) {
	h, e := newTestHandler()
	h.svc.Create(context.Background(), &PatientRecord{PatientName: "A B", RecordNumber: "9", CurrentLocation: "Arquivo"})

	body := `{"patient_name":"c d","record_number":"9","current_location":"Arquivo"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/records", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := h.CreateRecord(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusConflict {
		t.Fatalf("expected 409 HTTPError, got %v", err)
	}
}

func TestHandler_GetRecord_NotFound(t *testing.T) {
	h, e := newTestHandler()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(uuid.New().String())

	err := h.GetRecord(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 HTTPError, got %v", err)
	}
}

func TestHandler_MoveRecord(t *testing.T) {
	h, e := newTestHandler()
	r := &PatientRecord{PatientName: "MARIA", RecordNumber: "5", CurrentLocation: "Arquivo"}
	h.svc.Create(context.Background(), r)

	body := `{"destination":"Ambulatório"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())

	if err := h.MoveRecord(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var resp struct {
		Record PatientRecord `json:"record"`
		Moved  bool          `json:"moved"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if !resp.Moved {
		t.Error("expected moved=true")
	}
	if resp.Record.CurrentLocation != "Ambulatório" {
		t.Errorf("CurrentLocation = %q", resp.Record.CurrentLocation)
	}
}

func TestHandler_MoveRecord_SameLocation(t *testing.T) {
	h, e := newTestHandler()
	r := &PatientRecord{PatientName: "MARIA", CurrentLocation: "Arquivo"}
	h.svc.Create(context.Background(), r)

	body := `{"destination":"Arquivo"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(r.ID.String())

	if err := h.MoveRecord(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Moved bool `json:"moved"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Moved {
		t.Error("expected moved=false")
	}
}

func TestHandler_ListRecords(t *testing.T) {
	h, e := newTestHandler()
	h.svc.Create(context.Background(), &PatientRecord{PatientName: "A A", CurrentLocation: "Arquivo"})
	h.svc.Create(context.Background(), &PatientRecord{PatientName: "B B", CurrentLocation: "Arquivo"})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/records", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.ListRecords(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Total int `json:"total"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Total)
	}
}

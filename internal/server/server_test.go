package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	assignmentrepository "github.com/harborlane/ledgerdesk/internal/assignment/repository"
	assignmentservice "github.com/harborlane/ledgerdesk/internal/assignment/service"
	auditrepository "github.com/harborlane/ledgerdesk/internal/audit/repository"
	auditservice "github.com/harborlane/ledgerdesk/internal/audit/service"
	clientdomain "github.com/harborlane/ledgerdesk/internal/client/domain"
	clientrepository "github.com/harborlane/ledgerdesk/internal/client/repository"
	clientservice "github.com/harborlane/ledgerdesk/internal/client/service"
	"github.com/harborlane/ledgerdesk/internal/clock"
	"github.com/harborlane/ledgerdesk/internal/config"
	employeerepository "github.com/harborlane/ledgerdesk/internal/employee/repository"
	employeeservice "github.com/harborlane/ledgerdesk/internal/employee/service"
	"github.com/harborlane/ledgerdesk/internal/events"
	exchangeraterepository "github.com/harborlane/ledgerdesk/internal/exchangerate/repository"
	exchangerateservice "github.com/harborlane/ledgerdesk/internal/exchangerate/service"
	invoicerender "github.com/harborlane/ledgerdesk/internal/invoice/render"
	invoicerepository "github.com/harborlane/ledgerdesk/internal/invoice/repository"
	invoiceservice "github.com/harborlane/ledgerdesk/internal/invoice/service"
	ledgerrepository "github.com/harborlane/ledgerdesk/internal/ledger/repository"
	ledgerservice "github.com/harborlane/ledgerdesk/internal/ledger/service"
	"github.com/harborlane/ledgerdesk/internal/migration"
	reportservice "github.com/harborlane/ledgerdesk/internal/report/service"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testServer struct {
	engine    *gin.Engine
	clientSvc clientdomain.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := migration.RunMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new snowflake node: %v", err)
	}

	log := zap.NewNop()
	clk := clock.SystemClock{}
	outbox := events.NewOutbox(db, node)

	clientRepo := clientrepository.New()
	employeeRepo := employeerepository.New()
	assignmentRepo := assignmentrepository.New()
	rateRepo := exchangeraterepository.New()

	auditSvc := auditservice.NewService(auditservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: auditrepository.New(),
	})
	ledgerSvc := ledgerservice.NewService(ledgerservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo: ledgerrepository.New(), ClientRepo: clientRepo,
		Outbox: outbox, AuditSvc: auditSvc,
	})
	clientSvc := clientservice.NewService(clientservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: clientRepo,
	})
	employeeSvc := employeeservice.NewService(employeeservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: employeeRepo,
	})
	assignmentSvc := assignmentservice.NewService(assignmentservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo: assignmentRepo, ClientRepo: clientRepo, EmployeeRepo: employeeRepo,
	})
	rateSvc := exchangerateservice.NewService(exchangerateservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk, Repo: rateRepo,
	})
	invoiceSvc := invoiceservice.NewService(invoiceservice.Params{
		DB: db, Log: log, GenID: node, Clock: clk,
		Repo: invoicerepository.New(), ClientRepo: clientRepo,
		AssignmentRepo: assignmentRepo, RateRepo: rateRepo,
		LedgerSvc: ledgerSvc, Outbox: outbox, AuditSvc: auditSvc,
		Renderer: invoicerender.NewRenderer(),
	})
	reportSvc := reportservice.NewService(reportservice.Params{
		DB: db, Log: log, ClientRepo: clientRepo,
		EmployeeRepo: employeeRepo, AssignmentRepo: assignmentRepo, RateRepo: rateRepo,
	})

	srv := NewServer(Params{
		Cfg:           config.Config{Environment: "test", HTTPAddr: ":0", ServiceName: "ledgerdesk"},
		Log:           log,
		ClientSvc:     clientSvc,
		EmployeeSvc:   employeeSvc,
		AssignmentSvc: assignmentSvc,
		RateSvc:       rateSvc,
		InvoiceSvc:    invoiceSvc,
		LedgerSvc:     ledgerSvc,
		ReportSvc:     reportSvc,
		AuditSvc:      auditSvc,
	})

	return &testServer{engine: srv.Engine(), clientSvc: clientSvc}
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.engine.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) createClient(t *testing.T, name string) string {
	t.Helper()
	rec := ts.do(t, http.MethodPost, "/api/v1/clients", gin.H{
		"name":          name,
		"currency_code": "USD",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create client: status %d body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.Data.ID
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRecordPaymentEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	clientID := ts.createClient(t, "Wire Co")

	rec := ts.do(t, http.MethodPost, "/api/v1/payments", gin.H{
		"client_id":     clientID,
		"received_date": "2024-05-01",
		"amount":        "250.00",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record payment: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/payments?client_id="+clientID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list payments: status %d", rec.Code)
	}
	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode list response: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(resp.Data))
	}
}

func TestRecordPaymentValidationStatus(t *testing.T) {
	ts := newTestServer(t)
	clientID := ts.createClient(t, "Bad Input Co")

	rec := ts.do(t, http.MethodPost, "/api/v1/payments", gin.H{
		"client_id":     clientID,
		"received_date": "2024-05-01",
		"amount":        "not-a-number",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"error"`) {
		t.Fatalf("expected error envelope, got %s", rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/payments", gin.H{
		"client_id":     clientID,
		"received_date": "2024-05-01",
		"amount":        "-10",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative amount, got %d", rec.Code)
	}
}

func TestUnknownClientMapsToNotFound(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/v1/clients/123456789", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/v1/payments", gin.H{
		"client_id":     "123456789",
		"received_date": "2024-05-01",
		"amount":        "10",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for payment against unknown client, got %d", rec.Code)
	}
}

func TestDuplicateInvoiceMapsToConflict(t *testing.T) {
	ts := newTestServer(t)
	clientID := ts.createClient(t, "Conflict Co")

	body := gin.H{"client_id": clientID, "year": 2024, "month": 4, "total_amount": "1000"}
	rec := ts.do(t, http.MethodPost, "/api/v1/invoices", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate invoice: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = ts.do(t, http.MethodPost, "/api/v1/invoices", body)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate period, got %d", rec.Code)
	}
}

func TestBalanceReportEndpoint(t *testing.T) {
	ts := newTestServer(t)
	clientID := ts.createClient(t, "Report Endpoint Co")

	rec := ts.do(t, http.MethodPost, "/api/v1/invoices", gin.H{
		"client_id": clientID, "year": 2024, "month": 4, "total_amount": "8000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("generate invoice: status %d body %s", rec.Code, rec.Body.String())
	}
	rec = ts.do(t, http.MethodPost, "/api/v1/payments", gin.H{
		"client_id": clientID, "received_date": "2024-05-01", "amount": "3000",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("record payment: status %d body %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodGet, "/api/v1/reports/balances", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("balance report: status %d", rec.Code)
	}
	var resp struct {
		Data []struct {
			ClientName string `json:"clientName"`
			TotalBill  string `json:"totalBill"`
			TotalPaid  string `json:"totalPaid"`
			Balance    string `json:"balance"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("expected 1 report row, got %d", len(resp.Data))
	}
	row := resp.Data[0]
	if row.TotalBill != "8000" || row.TotalPaid != "3000" || row.Balance != "5000" {
		t.Fatalf("unexpected report row: %+v", row)
	}
}

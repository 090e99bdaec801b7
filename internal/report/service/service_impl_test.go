package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	assignmentdomain "github.com/harborlane/ledgerdesk/internal/assignment/domain"
	assignmentrepository "github.com/harborlane/ledgerdesk/internal/assignment/repository"
	clientdomain "github.com/harborlane/ledgerdesk/internal/client/domain"
	clientrepository "github.com/harborlane/ledgerdesk/internal/client/repository"
	employeedomain "github.com/harborlane/ledgerdesk/internal/employee/domain"
	employeerepository "github.com/harborlane/ledgerdesk/internal/employee/repository"
	exchangeraterepository "github.com/harborlane/ledgerdesk/internal/exchangerate/repository"
	"github.com/harborlane/ledgerdesk/internal/migration"
	"github.com/harborlane/ledgerdesk/internal/report/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	db   *gorm.DB
	node *snowflake.Node
	svc  domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
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
	svc := NewService(Params{
		DB:             db,
		Log:            zap.NewNop(),
		ClientRepo:     clientrepository.New(),
		EmployeeRepo:   employeerepository.New(),
		AssignmentRepo: assignmentrepository.New(),
		RateRepo:       exchangeraterepository.New(),
	})
	return &fixture{db: db, node: node, svc: svc}
}

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func TestProfitabilityMarginPerClient(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	client := &clientdomain.Client{
		ID: f.node.Generate(), Name: "Margin Co", Abbreviation: "MC",
		CurrencyCode: "USD", CreatedAt: now, UpdatedAt: now,
	}
	if err := clientrepository.New().Insert(ctx, f.db, client); err != nil {
		t.Fatalf("insert client: %v", err)
	}

	employee := &employeedomain.Employee{
		ID: f.node.Generate(), Name: "Dev One",
		MonthlyCost: dec("4000"), CreatedAt: now, UpdatedAt: now,
	}
	if err := employeerepository.New().Insert(ctx, f.db, employee); err != nil {
		t.Fatalf("insert employee: %v", err)
	}

	assignment := &assignmentdomain.Assignment{
		ID: f.node.Generate(), EmployeeID: employee.ID, ClientID: client.ID,
		MonthlyRate: dec("6000"), CurrencyCode: "USD",
		StartYear: 2024, StartMonth: 1,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := assignmentrepository.New().Insert(ctx, f.db, assignment); err != nil {
		t.Fatalf("insert assignment: %v", err)
	}

	if err := f.db.Exec(
		`INSERT INTO invoices (id, client_id, currency_code, year, month, total_amount, status, generated_on, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		int64(f.node.Generate()), int64(client.ID), "USD", 2024, 6, "6000", "generated", now, now, now,
	).Error; err != nil {
		t.Fatalf("insert invoice: %v", err)
	}

	report, err := f.svc.Profitability(ctx, 2024, 6)
	if err != nil {
		t.Fatalf("profitability: %v", err)
	}
	if len(report) != 1 {
		t.Fatalf("expected 1 row, got %d", len(report))
	}
	row := report[0]
	if !row.Billed.Equal(dec("6000")) {
		t.Fatalf("expected billed 6000, got %s", row.Billed)
	}
	if !row.Cost.Equal(dec("4000")) {
		t.Fatalf("expected cost 4000, got %s", row.Cost)
	}
	if !row.Margin.Equal(dec("2000")) {
		t.Fatalf("expected margin 2000, got %s", row.Margin)
	}
}

func TestProfitabilityExcludesEndedAssignments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now().UTC()

	client := &clientdomain.Client{
		ID: f.node.Generate(), Name: "Ended Co", Abbreviation: "EC",
		CurrencyCode: "USD", CreatedAt: now, UpdatedAt: now,
	}
	if err := clientrepository.New().Insert(ctx, f.db, client); err != nil {
		t.Fatalf("insert client: %v", err)
	}
	employee := &employeedomain.Employee{
		ID: f.node.Generate(), Name: "Dev Two",
		MonthlyCost: dec("3000"), CreatedAt: now, UpdatedAt: now,
	}
	if err := employeerepository.New().Insert(ctx, f.db, employee); err != nil {
		t.Fatalf("insert employee: %v", err)
	}

	endYear, endMonth := 2024, 3
	assignment := &assignmentdomain.Assignment{
		ID: f.node.Generate(), EmployeeID: employee.ID, ClientID: client.ID,
		MonthlyRate: dec("5000"), CurrencyCode: "USD",
		StartYear: 2024, StartMonth: 1, EndYear: &endYear, EndMonth: &endMonth,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := assignmentrepository.New().Insert(ctx, f.db, assignment); err != nil {
		t.Fatalf("insert assignment: %v", err)
	}

	report, err := f.svc.Profitability(ctx, 2024, 6)
	if err != nil {
		t.Fatalf("profitability: %v", err)
	}
	if !report[0].Cost.IsZero() {
		t.Fatalf("expected zero cost after assignment ended, got %s", report[0].Cost)
	}
}

func TestProfitabilityRejectsBadPeriod(t *testing.T) {
	f := newFixture(t)
	if _, err := f.svc.Profitability(context.Background(), 2024, 0); err != domain.ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	assignmentdomain "github.com/harborlane/ledgerdesk/internal/assignment/domain"
	auditdomain "github.com/harborlane/ledgerdesk/internal/audit/domain"
	clientdomain "github.com/harborlane/ledgerdesk/internal/client/domain"
	"github.com/harborlane/ledgerdesk/internal/config"
	employeedomain "github.com/harborlane/ledgerdesk/internal/employee/domain"
	exchangeratedomain "github.com/harborlane/ledgerdesk/internal/exchangerate/domain"
	invoicedomain "github.com/harborlane/ledgerdesk/internal/invoice/domain"
	ledgerdomain "github.com/harborlane/ledgerdesk/internal/ledger/domain"
	"github.com/harborlane/ledgerdesk/internal/observability/logger"
	"github.com/harborlane/ledgerdesk/internal/observability/metrics"
	"github.com/harborlane/ledgerdesk/internal/observability/tracing"
	reportdomain "github.com/harborlane/ledgerdesk/internal/report/domain"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Cfg           config.Config
	Log           *zap.Logger
	ClientSvc     clientdomain.Service
	EmployeeSvc   employeedomain.Service
	AssignmentSvc assignmentdomain.Service
	RateSvc       exchangeratedomain.Service
	InvoiceSvc    invoicedomain.Service
	LedgerSvc     ledgerdomain.Service
	ReportSvc     reportdomain.Service
	AuditSvc      auditdomain.Service
	Metrics       *metrics.Metrics           `optional:"true"`
	Tracer        trace.TracerProvider       `optional:"true"`
}

// Server owns the HTTP handlers and their service dependencies.
type Server struct {
	cfg           config.Config
	log           *zap.Logger
	clientSvc     clientdomain.Service
	employeeSvc   employeedomain.Service
	assignmentSvc assignmentdomain.Service
	rateSvc       exchangeratedomain.Service
	invoiceSvc    invoicedomain.Service
	ledgerSvc     ledgerdomain.Service
	reportSvc     reportdomain.Service
	auditSvc      auditdomain.Service
	metrics       *metrics.Metrics
	tracer        trace.TracerProvider
	limiter       *rateLimiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		clientSvc:     p.ClientSvc,
		employeeSvc:   p.EmployeeSvc,
		assignmentSvc: p.AssignmentSvc,
		rateSvc:       p.RateSvc,
		invoiceSvc:    p.InvoiceSvc,
		ledgerSvc:     p.LedgerSvc,
		reportSvc:     p.ReportSvc,
		auditSvc:      p.AuditSvc,
		metrics:       p.Metrics,
		tracer:        p.Tracer,
		limiter:       newRateLimiter(300, time.Minute),
	}
}

// Engine builds the gin router with the full middleware chain and route table.
func (s *Server) Engine() *gin.Engine {
	if s.cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(logger.MiddlewareConfig{SkipPaths: []string{"/healthz", "/metrics"}}))
	if s.tracer != nil {
		r.Use(tracing.GinMiddleware(s.tracer, s.cfg.ServiceName))
	}
	if s.metrics != nil {
		r.Use(metrics.GinMiddleware(s.metrics))
	}
	r.Use(s.rateLimitMiddleware())

	r.GET("/healthz", s.Healthz)
	if s.metrics != nil {
		r.GET("/metrics", gin.WrapH(s.metrics.Handler()))
	}

	v1 := r.Group("/api/v1")
	{
		v1.POST("/payments", s.RecordPayment)
		v1.GET("/payments", s.ListPayments)

		v1.GET("/reports/balances", s.BalanceReport)
		v1.GET("/reports/profitability", s.ProfitabilityReport)

		v1.POST("/clients", s.CreateClient)
		v1.GET("/clients", s.ListClients)
		v1.GET("/clients/:id", s.GetClient)
		v1.PATCH("/clients/:id", s.UpdateClient)
		v1.DELETE("/clients/:id", s.DeleteClient)
		v1.GET("/clients/:id/ledger", s.ListLedgerEntries)
		v1.PUT("/clients/:id/note", s.UpsertClientNote)
		v1.GET("/clients/:id/note", s.GetClientNote)
		v1.POST("/clients/:id/recalculate", s.RecalculateClient)

		v1.POST("/employees", s.CreateEmployee)
		v1.GET("/employees", s.ListEmployees)
		v1.GET("/employees/:id", s.GetEmployee)
		v1.PATCH("/employees/:id", s.UpdateEmployee)
		v1.DELETE("/employees/:id", s.DeleteEmployee)

		v1.POST("/assignments", s.CreateAssignment)
		v1.GET("/assignments", s.ListAssignments)
		v1.GET("/assignments/:id", s.GetAssignment)
		v1.PATCH("/assignments/:id", s.UpdateAssignment)
		v1.DELETE("/assignments/:id", s.DeleteAssignment)

		v1.PUT("/exchange-rates", s.UpsertExchangeRate)
		v1.GET("/exchange-rates", s.ListExchangeRates)

		v1.POST("/invoices", s.GenerateInvoice)
		v1.GET("/invoices", s.ListInvoices)
		v1.GET("/invoices/:id", s.GetInvoice)
		v1.PATCH("/invoices/:id/total", s.SetInvoiceTotal)
		v1.POST("/invoices/:id/sent", s.MarkInvoiceSent)
		v1.GET("/invoices/:id/document", s.InvoiceDocument)
	}

	return r
}

func (s *Server) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) rateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": gin.H{"code": "rate_limited", "message": "too many requests"},
			})
			return
		}
		c.Next()
	}
}

// RunHTTP starts the HTTP listener under the fx lifecycle.
func RunHTTP(lc fx.Lifecycle, s *Server) {
	srv := &http.Server{
		Addr:              s.cfg.HTTPAddr,
		Handler:           s.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			s.log.Info("http server starting", zap.String("addr", srv.Addr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					s.log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)

// parseIDParam reads a snowflake ID from a path parameter.
func parseIDParam(c *gin.Context, name string) (snowflake.ID, bool) {
	raw := strings.TrimSpace(c.Param(name))
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || parsed <= 0 {
		AbortWithError(c, newValidationError(name, "invalid_id", "invalid identifier"))
		return 0, false
	}
	return snowflake.ID(parsed), true
}

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.DateOnly, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

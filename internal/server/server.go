// Package server exposes the projection engine over HTTP. The surface
// is deliberately thin: decode, validate, call the pure engine, encode.
package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/penplan/penplan/internal/cache"
	"github.com/penplan/penplan/internal/calculation"
	"github.com/penplan/penplan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
)

// Server routes projection requests to one engine instance.
type Server struct {
	engine   *calculation.Engine
	cached   *cache.CachedEngine
	validate *validator.Validate
	logger   *slog.Logger
}

// New builds a server. The store is optional; without one the
// deterministic projection is recomputed on every request.
func New(engine *calculation.Engine, store cache.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		engine:   engine,
		validate: validator.New(),
		logger:   logger,
	}
	if store != nil {
		s.cached = cache.NewCachedEngine(engine, store)
	}
	return s
}

// ListenAndServe blocks serving on addr.
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("projection server listening", "addr", addr)
	return fasthttp.ListenAndServe(addr, s.Handle)
}

// Handle is the single fasthttp entry point.
func (s *Server) Handle(ctx *fasthttp.RequestCtx) {
	if !ctx.IsPost() {
		s.writeError(ctx, fasthttp.StatusMethodNotAllowed, "only POST is supported")
		return
	}
	switch string(ctx.Path()) {
	case "/v1/projection":
		s.handleProjection(ctx)
	case "/v1/summary":
		s.handleSummary(ctx)
	case "/v1/tax":
		s.handleTax(ctx)
	case "/v1/national-insurance":
		s.handleNationalInsurance(ctx)
	default:
		s.writeError(ctx, fasthttp.StatusNotFound, "unknown endpoint")
	}
}

type projectionRequest struct {
	Profile        domain.FinancialProfile `json:"profile"`
	SimulationType domain.SimulationType   `json:"simulationType" validate:"omitempty,oneof=deterministic monte_carlo"`
}

func (s *Server) handleProjection(ctx *fasthttp.RequestCtx) {
	var req projectionRequest
	if !s.decode(ctx, &req) {
		return
	}
	if req.Profile.AsOf.IsZero() {
		req.Profile.AsOf = time.Now()
	}

	if req.SimulationType == domain.SimulationDeterministic || req.SimulationType == "" {
		if s.cached != nil {
			result, err := s.cached.CalculateRetirementProjection(ctx, &req.Profile)
			if err != nil {
				s.writeEngineError(ctx, err)
				return
			}
			s.writeJSON(ctx, calculation.ProjectionOutput{Result: result})
			return
		}
	}

	output, err := s.engine.CalculateSimulation(&req.Profile, req.SimulationType)
	if err != nil {
		s.writeEngineError(ctx, err)
		return
	}
	s.writeJSON(ctx, output)
}

type summaryRequest struct {
	Profile domain.FinancialProfile `json:"profile"`
	Capital *decimal.Decimal        `json:"capital,omitempty"`
}

func (s *Server) handleSummary(ctx *fasthttp.RequestCtx) {
	var req summaryRequest
	if !s.decode(ctx, &req) {
		return
	}
	summary, err := s.engine.RetirementIncomeSummary(&req.Profile, req.Capital)
	if err != nil {
		s.writeEngineError(ctx, err)
		return
	}
	s.writeJSON(ctx, summary)
}

type taxRequest struct {
	GrossMonthly decimal.Decimal `json:"grossMonthly"`
}

func (s *Server) handleTax(ctx *fasthttp.RequestCtx) {
	var req taxRequest
	if !s.decode(ctx, &req) {
		return
	}
	s.writeJSON(ctx, calculation.ApplyProgressiveTax(req.GrossMonthly, s.engine.Fiscal().TaxBrackets))
}

type nationalInsuranceRequest struct {
	Age               float64             `json:"age" validate:"gte=0,lte=120"`
	ContributionYears int                 `json:"contributionYears" validate:"gte=0"`
	FamilyStatus      domain.FamilyStatus `json:"familyStatus" validate:"omitempty,oneof=single single_child couple couple_child"`
	OtherIncome       decimal.Decimal     `json:"otherIncome"`
}

func (s *Server) handleNationalInsurance(ctx *fasthttp.RequestCtx) {
	var req nationalInsuranceRequest
	if !s.decode(ctx, &req) {
		return
	}
	status := req.FamilyStatus
	if status == "" {
		status = domain.FamilySingle
	}
	benefit := calculation.CalculateNationalInsurance(
		req.Age, req.ContributionYears, s.engine.Fiscal().NationalInsurance, status, req.OtherIncome)
	s.writeJSON(ctx, benefit)
}

// decode unmarshals and validates the request body, writing a 400 and
// returning false on failure.
func (s *Server) decode(ctx *fasthttp.RequestCtx, into any) bool {
	if err := json.Unmarshal(ctx.PostBody(), into); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	if err := s.validate.Struct(into); err != nil {
		s.writeError(ctx, fasthttp.StatusBadRequest, "invalid request: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeEngineError(ctx *fasthttp.RequestCtx, err error) {
	if errors.Is(err, domain.ErrInvalidProfile) {
		s.writeError(ctx, fasthttp.StatusUnprocessableEntity, err.Error())
		return
	}
	s.logger.Error("projection failed", "error", err)
	s.writeError(ctx, fasthttp.StatusInternalServerError, "projection failed")
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	payload, _ := json.Marshal(errorResponse{Status: status, Message: message})
	ctx.SetBody(payload)
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, value any) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.writeError(ctx, fasthttp.StatusInternalServerError, "failed to encode response")
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetBody(payload)
}

// Package http exposes the fulfillment API over REST.
// Handlers translate JSON requests into commands and queries, and translate
// the application error taxonomy into HTTP status codes.
package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/shelf"
	"fulfillment/internal/core/domain/model/shipment"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// SignatureHeader carries the hex HMAC digest of the webhook body.
const SignatureHeader = "X-Carrier-Signature"

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createShipmentHandler      commands.CreateShipmentCommandHandler
	createBatchShipmentHandler commands.CreateBatchShipmentCommandHandler
	assignShelfHandler         commands.AssignShelfCommandHandler
	confirmPickupHandler       commands.ConfirmPickupCommandHandler
	processTrackingHandler     commands.ProcessTrackingEventCommandHandler

	// Query handlers
	recommendationHandler   queries.GetRoutingRecommendationQueryHandler
	shelfUtilizationHandler queries.GetShelfUtilizationQueryHandler
	stalePickupsHandler     queries.GetStalePickupsQueryHandler

	verifier ports.WebhookVerifier
	staleAge time.Duration
}

// NewServer creates an HTTP server with the required command and query handlers.
func NewServer(
	createShipmentHandler commands.CreateShipmentCommandHandler,
	createBatchShipmentHandler commands.CreateBatchShipmentCommandHandler,
	assignShelfHandler commands.AssignShelfCommandHandler,
	confirmPickupHandler commands.ConfirmPickupCommandHandler,
	processTrackingHandler commands.ProcessTrackingEventCommandHandler,
	recommendationHandler queries.GetRoutingRecommendationQueryHandler,
	shelfUtilizationHandler queries.GetShelfUtilizationQueryHandler,
	stalePickupsHandler queries.GetStalePickupsQueryHandler,
	verifier ports.WebhookVerifier,
	staleAge time.Duration,
) *Server {
	return &Server{
		createShipmentHandler:      createShipmentHandler,
		createBatchShipmentHandler: createBatchShipmentHandler,
		assignShelfHandler:         assignShelfHandler,
		confirmPickupHandler:       confirmPickupHandler,
		processTrackingHandler:     processTrackingHandler,
		recommendationHandler:      recommendationHandler,
		shelfUtilizationHandler:    shelfUtilizationHandler,
		stalePickupsHandler:        stalePickupsHandler,
		verifier:                   verifier,
		staleAge:                   staleAge,
	}
}

// RegisterRoutes attaches all API routes to the given echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.GET("/orders/:id/recommendation", s.GetRoutingRecommendation)
	api.POST("/shipments", s.CreateShipment)
	api.POST("/shipments/batch", s.CreateBatchShipment)
	api.GET("/shelves/utilization", s.GetShelfUtilization)
	api.POST("/shelves/assignments", s.AssignShelf)
	api.POST("/shelves/assignments/:id/pickup", s.ConfirmPickup)
	api.GET("/pickups/stale", s.GetStalePickups)
	api.POST("/webhooks/tracking/:carrier", s.ProcessTrackingWebhook)
}

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// CreateShipmentRequest asks for a label for a single order.
type CreateShipmentRequest struct {
	OrderID string `json:"order_id"`
	Carrier string `json:"carrier"`
	Service string `json:"service"`
}

// ShipmentResponse is the JSON view of a purchased shipment.
type ShipmentResponse struct {
	ID             string     `json:"id"`
	OrderIDs       []string   `json:"order_ids"`
	Carrier        string     `json:"carrier"`
	Service        string     `json:"service"`
	TrackingNumber string     `json:"tracking_number"`
	TrackingURL    string     `json:"tracking_url,omitempty"`
	LabelURL       string     `json:"label_url,omitempty"`
	CostCents      int64      `json:"cost_cents"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	DeliveredAt    *time.Time `json:"delivered_at,omitempty"`
}

// CreateShipment handles POST /api/v1/shipments.
func (s *Server) CreateShipment(ctx echo.Context) error {
	var request CreateShipmentRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := kernel.UUIDFromString(request.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order identifier: "+request.OrderID)
	}

	cmd, err := commands.NewCreateShipmentCommand(orderID, request.Carrier, request.Service)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	created, err := s.createShipmentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, toShipmentResponse(created))
}

// CreateBatchShipmentRequest asks for labels for a set of orders at once.
type CreateBatchShipmentRequest struct {
	OrderIDs []string `json:"order_ids"`
	Carrier  string   `json:"carrier"`
	Service  string   `json:"service"`
}

// BatchErrorResponse is one order the batch could not ship.
type BatchErrorResponse struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// BatchShipmentResponse reports the per-order outcome of a batch request.
type BatchShipmentResponse struct {
	Shipments []ShipmentResponse   `json:"shipments"`
	Skipped   []string             `json:"skipped_order_ids"`
	Errors    []BatchErrorResponse `json:"errors"`
}

// CreateBatchShipment handles POST /api/v1/shipments/batch.
//
// The batch is best-effort per order, so the endpoint answers 200 even when
// some orders failed; the body carries the per-order breakdown.
func (s *Server) CreateBatchShipment(ctx echo.Context) error {
	var request CreateBatchShipmentRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderIDs := make([]kernel.UUID, 0, len(request.OrderIDs))
	for _, raw := range request.OrderIDs {
		orderID, err := kernel.UUIDFromString(raw)
		if err != nil {
			return badRequest(ctx, "Invalid order identifier: "+raw)
		}
		orderIDs = append(orderIDs, orderID)
	}

	cmd, err := commands.NewCreateBatchShipmentCommand(orderIDs, request.Carrier, request.Service)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	result, err := s.createBatchShipmentHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	response := BatchShipmentResponse{
		Shipments: make([]ShipmentResponse, 0, len(result.Shipments)),
		Skipped:   make([]string, 0, len(result.Skipped)),
		Errors:    make([]BatchErrorResponse, 0, len(result.Errors)),
	}
	for _, created := range result.Shipments {
		response.Shipments = append(response.Shipments, toShipmentResponse(created))
	}
	for _, skipped := range result.Skipped {
		response.Skipped = append(response.Skipped, skipped.String())
	}
	for _, batchErr := range result.Errors {
		response.Errors = append(response.Errors, BatchErrorResponse{
			OrderID: batchErr.OrderID.String(),
			Reason:  batchErr.Reason,
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// AssignShelfRequest places an order on a shelf. ShelfID is optional; when
// absent the freest shelf is chosen.
type AssignShelfRequest struct {
	OrderID string  `json:"order_id"`
	ShelfID *string `json:"shelf_id,omitempty"`
}

// AssignmentResponse is the JSON view of a shelf assignment.
type AssignmentResponse struct {
	ID         string    `json:"id"`
	ShelfID    string    `json:"shelf_id"`
	OrderID    string    `json:"order_id"`
	AssignedAt time.Time `json:"assigned_at"`
}

// AssignShelf handles POST /api/v1/shelves/assignments.
func (s *Server) AssignShelf(ctx echo.Context) error {
	var request AssignShelfRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID, err := kernel.UUIDFromString(request.OrderID)
	if err != nil {
		return badRequest(ctx, "Invalid order identifier: "+request.OrderID)
	}

	var cmd commands.AssignShelfCommand
	if request.ShelfID != nil {
		shelfID, idErr := kernel.UUIDFromString(*request.ShelfID)
		if idErr != nil {
			return badRequest(ctx, "Invalid shelf identifier: "+*request.ShelfID)
		}
		cmd, err = commands.NewAssignShelfToCommand(orderID, shelfID)
	} else {
		cmd, err = commands.NewAssignShelfCommand(orderID)
	}
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	assignment, err := s.assignShelfHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, AssignmentResponse{
		ID:         assignment.ID().String(),
		ShelfID:    assignment.ShelfID().String(),
		OrderID:    assignment.OrderID().String(),
		AssignedAt: assignment.AssignedAt(),
	})
}

// ConfirmPickup handles POST /api/v1/shelves/assignments/:id/pickup.
func (s *Server) ConfirmPickup(ctx echo.Context) error {
	assignmentID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid assignment identifier: "+ctx.Param("id"))
	}

	cmd, err := commands.NewConfirmPickupCommand(assignmentID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	if err = s.confirmPickupHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return writeError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// TrackingWebhookPayload is the carrier-agnostic body the integration service
// forwards for every tracking scan.
type TrackingWebhookPayload struct {
	TrackingNumber string    `json:"tracking_number"`
	Status         string    `json:"status"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// TrackingResponse reports whether a tracking event advanced the shipment.
type TrackingResponse struct {
	Processed bool   `json:"processed"`
	Status    string `json:"status"`
}

// ProcessTrackingWebhook handles POST /api/v1/webhooks/tracking/:carrier.
//
// The signature covers the raw body, so the body is read before any JSON
// decoding. Stale and duplicate events answer 200 with processed=false; the
// carrier must not retry them.
func (s *Server) ProcessTrackingWebhook(ctx echo.Context) error {
	carrier := ctx.Param("carrier")

	body, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return badRequest(ctx, "Failed to read request body")
	}

	if err = s.verifier.Verify(carrier, body, ctx.Request().Header.Get(SignatureHeader)); err != nil {
		return ctx.JSON(http.StatusUnauthorized, ErrorResponse{
			Code:    http.StatusUnauthorized,
			Message: "Webhook signature verification failed",
		})
	}

	// Malformed payloads are acknowledged rather than rejected; carriers
	// retry non-2xx answers indefinitely.
	var payload TrackingWebhookPayload
	if err = json.Unmarshal(body, &payload); err != nil {
		return ctx.JSON(http.StatusOK, TrackingResponse{
			Processed: false,
			Status:    shipment.Unknown.String(),
		})
	}

	occurredAt := payload.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	cmd, err := commands.NewProcessTrackingEventCommand(
		carrier, payload.TrackingNumber, payload.Status, occurredAt, body)
	if err != nil {
		return ctx.JSON(http.StatusOK, TrackingResponse{
			Processed: false,
			Status:    shipment.Unknown.String(),
		})
	}

	result, err := s.processTrackingHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, TrackingResponse{
		Processed: result.Processed,
		Status:    result.Status.String(),
	})
}

// RecommendationResponse is the advisory routing outcome for one order.
type RecommendationResponse struct {
	OrderID        string  `json:"order_id"`
	Recommendation string  `json:"recommendation"`
	Reason         string  `json:"reason"`
	Carrier        string  `json:"carrier,omitempty"`
	Service        string  `json:"service,omitempty"`
	CostCents      int64   `json:"cost_cents,omitempty"`
	EstimatedDays  int     `json:"estimated_days,omitempty"`
	DistanceKm     float64 `json:"distance_km"`
	PartialQuotes  bool    `json:"partial_quotes"`
}

// GetRoutingRecommendation handles GET /api/v1/orders/:id/recommendation.
func (s *Server) GetRoutingRecommendation(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return badRequest(ctx, "Invalid order identifier: "+ctx.Param("id"))
	}

	query, err := queries.NewGetRoutingRecommendationQuery(orderID)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	recommendation, err := s.recommendationHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, RecommendationResponse{
		OrderID:        recommendation.OrderID.String(),
		Recommendation: recommendation.Recommendation,
		Reason:         recommendation.Reason,
		Carrier:        recommendation.Carrier,
		Service:        recommendation.Service,
		CostCents:      recommendation.CostCents,
		EstimatedDays:  recommendation.EstimatedDays,
		DistanceKm:     recommendation.DistanceKm,
		PartialQuotes:  recommendation.PartialQuotes,
	})
}

// ShelfUtilizationLine is one shelf's row in the utilization report.
type ShelfUtilizationLine struct {
	ID        string `json:"id"`
	Code      string `json:"code"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Occupied  int    `json:"occupied"`
	FreeSlots int    `json:"free_slots"`
}

// ShelfUtilizationResponse aggregates occupancy across all shelves.
type ShelfUtilizationResponse struct {
	Shelves            []ShelfUtilizationLine `json:"shelves"`
	TotalOccupied      int                    `json:"total_occupied"`
	TotalAvailable     int                    `json:"total_available"`
	UtilizationPercent float64                `json:"utilization_percent"`
}

// GetShelfUtilization handles GET /api/v1/shelves/utilization.
func (s *Server) GetShelfUtilization(ctx echo.Context) error {
	report, err := s.shelfUtilizationHandler.Handle(
		ctx.Request().Context(), queries.NewGetShelfUtilizationQuery())
	if err != nil {
		return writeError(ctx, err)
	}

	response := ShelfUtilizationResponse{
		Shelves:            make([]ShelfUtilizationLine, 0, len(report.Shelves)),
		TotalOccupied:      report.TotalOccupied,
		TotalAvailable:     report.TotalAvailable,
		UtilizationPercent: report.UtilizationPercent,
	}
	for _, line := range report.Shelves {
		response.Shelves = append(response.Shelves, ShelfUtilizationLine{
			ID:        line.ID.String(),
			Code:      line.Code,
			Name:      line.Name,
			Capacity:  line.Capacity,
			Occupied:  line.Occupied,
			FreeSlots: line.FreeSlots,
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

// StalePickupLine is one uncollected assignment in the stale pickup report.
type StalePickupLine struct {
	AssignmentID   string    `json:"assignment_id"`
	ShelfCode      string    `json:"shelf_code"`
	OrderID        string    `json:"order_id"`
	AssignedAt     time.Time `json:"assigned_at"`
	WaitingSeconds int64     `json:"waiting_seconds"`
}

// GetStalePickups handles GET /api/v1/pickups/stale.
func (s *Server) GetStalePickups(ctx echo.Context) error {
	query, err := queries.NewGetStalePickupsQuery(time.Now().Add(-s.staleAge))
	if err != nil {
		return writeError(ctx, err)
	}

	stale, err := s.stalePickupsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return writeError(ctx, err)
	}

	response := make([]StalePickupLine, 0, len(stale))
	for _, line := range stale {
		response = append(response, StalePickupLine{
			AssignmentID:   line.AssignmentID.String(),
			ShelfCode:      line.ShelfCode,
			OrderID:        line.OrderID.String(),
			AssignedAt:     line.AssignedAt,
			WaitingSeconds: int64(line.WaitingFor.Seconds()),
		})
	}

	return ctx.JSON(http.StatusOK, response)
}

func toShipmentResponse(created *shipment.Shipment) ShipmentResponse {
	orderIDs := make([]string, 0, len(created.OrderIDs()))
	for _, id := range created.OrderIDs() {
		orderIDs = append(orderIDs, id.String())
	}

	return ShipmentResponse{
		ID:             created.ID().String(),
		OrderIDs:       orderIDs,
		Carrier:        created.Carrier(),
		Service:        created.Service(),
		TrackingNumber: created.TrackingNumber(),
		TrackingURL:    created.TrackingURL(),
		LabelURL:       created.LabelURL(),
		CostCents:      created.CostCents(),
		Status:         created.Status().String(),
		CreatedAt:      created.CreatedAt(),
		DeliveredAt:    created.DeliveredAt(),
	}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}

// writeError maps application failures onto HTTP status codes.
func writeError(ctx echo.Context, err error) error {
	var notFound *errs.ObjectNotFoundError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &notFound):
		status = http.StatusNotFound
	case errors.Is(err, shelf.ErrShelfFull),
		errors.Is(err, shelf.ErrAssignmentAlreadyResolved),
		errors.Is(err, commands.ErrOrderNotShippable):
		status = http.StatusConflict
	case errors.Is(err, ports.ErrAddressInvalid),
		errors.Is(err, ports.ErrCarrierRejected):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ports.ErrInsufficientBalance):
		status = http.StatusPaymentRequired
	case errors.Is(err, ports.ErrCarrierRateLimited):
		status = http.StatusTooManyRequests
	case ports.IsTransient(err):
		status = http.StatusServiceUnavailable
	}

	return ctx.JSON(status, ErrorResponse{Code: status, Message: err.Error()})
}

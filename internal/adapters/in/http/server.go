// Package http exposes the fulfillment pipeline over a REST API: order
// intake (single and bulk) and order lookups. Intake returns as soon as the
// order is persisted; the pipeline progresses asynchronously and clients
// poll the lookup endpoints to follow it.
package http

import (
	"errors"
	"net/http"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	createOrderHandler commands.CreateOrderCommandHandler

	getOrderHandler        queries.GetOrderQueryHandler
	getOrderHistoryHandler queries.GetOrderHistoryQueryHandler
}

// NewServer creates an HTTP server with the required command and query
// handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	getOrderHandler queries.GetOrderQueryHandler,
	getOrderHistoryHandler queries.GetOrderHistoryQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:     createOrderHandler,
		getOrderHandler:        getOrderHandler,
		getOrderHistoryHandler: getOrderHistoryHandler,
	}
}

// RegisterRoutes attaches all API routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.POST("/orders/bulk", s.BulkCreateOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/history", s.GetOrderHistory)
}

// CreateOrder handles POST /api/v1/orders. The order id is generated
// server-side and returned immediately; fulfillment continues asynchronously.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var req CreateOrderRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	orderID := kernel.NewUUID()
	cmd, err := s.buildCreateCommand(orderID, req)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order data: " + err.Error(),
		})
	}

	if err = s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.createOrderError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreateOrderResponse{OrderID: orderID.String()})
}

// BulkCreateOrders handles POST /api/v1/orders/bulk. Items are processed
// independently and the response is always 207 Multi-Status with one result
// per submitted order, in submission order.
func (s *Server) BulkCreateOrders(ctx echo.Context) error {
	var req BulkCreateOrdersRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}
	if len(req.Orders) == 0 {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "At least one order is required",
		})
	}

	results := make([]BulkCreateOrderResult, 0, len(req.Orders))
	for i, orderReq := range req.Orders {
		orderID := kernel.NewUUID()

		cmd, err := s.buildCreateCommand(orderID, orderReq)
		if err != nil {
			results = append(results, BulkCreateOrderResult{
				Index:  i,
				Status: BulkItemValidationError,
				Error:  err.Error(),
			})
			continue
		}

		if err = s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
			status := BulkItemCreationFailed
			if errors.Is(err, errs.ErrObjectNotFound) {
				status = BulkItemValidationError
			}
			results = append(results, BulkCreateOrderResult{
				Index:  i,
				Status: status,
				Error:  err.Error(),
			})
			continue
		}

		results = append(results, BulkCreateOrderResult{
			Index:   i,
			Status:  BulkItemAccepted,
			OrderID: orderID.String(),
		})
	}

	return ctx.JSON(http.StatusMultiStatus, results)
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	resp, err := s.getOrderHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "Order not found",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve order",
		})
	}

	return ctx.JSON(http.StatusOK, orderFromQueryResponse(resp))
}

// GetOrderHistory handles GET /api/v1/orders/:id/history.
func (s *Server) GetOrderHistory(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	query, err := queries.NewGetOrderHistoryQuery(orderID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid order id",
		})
	}

	entries, err := s.getOrderHistoryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "Order not found",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve order history",
		})
	}

	return ctx.JSON(http.StatusOK, historyFromQueryResponse(entries))
}

func (s *Server) buildCreateCommand(orderID kernel.UUID, req CreateOrderRequest) (commands.CreateOrderCommand, error) {
	lines := make([]commands.LineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		productID, err := kernel.UUIDFromString(line.ProductID)
		if err != nil {
			return commands.CreateOrderCommand{}, err
		}
		lines = append(lines, commands.LineInput{
			ProductID: productID,
			Quantity:  line.Quantity,
		})
	}

	return commands.NewCreateOrderCommand(orderID, req.CustomerName, lines)
}

func (s *Server) createOrderError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Unknown product: " + err.Error(),
		})
	case errors.Is(err, order.ErrDuplicateProductLine):
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		})
	default:
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to create order",
		})
	}
}

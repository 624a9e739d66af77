package handlers

import (
	"net/http"
	"strconv"

	"bakery-service/internal/dto"
	"bakery-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orders      service.OrderService
	fulfillment service.FulfillmentService
	log         *zap.Logger
}

func NewOrderHandler(orders service.OrderService, fulfillment service.FulfillmentService, log *zap.Logger) *OrderHandler {
	return &OrderHandler{orders: orders, fulfillment: fulfillment, log: log}
}

// PlaceOrder создаёт заказ; позиции с ошибками возвращаются в ответе, заказ создаётся всегда.
// Заголовок Idempotency-Key защищает от повторной отправки.
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "invalid request body", err)
		return
	}

	in := service.PlaceOrderInput{
		Lines:          make([]service.OrderLineRequest, len(req.Lines)),
		IdempotencyKey: c.GetHeader("Idempotency-Key"),
	}
	for i, l := range req.Lines {
		in.Lines[i] = service.OrderLineRequest{
			CakeName:  l.CakeName,
			Weight:    l.Weight,
			Quantity:  l.Quantity,
			FactoryID: l.FactoryID,
		}
	}

	res, err := h.orders.PlaceOrder(c.Request.Context(), in)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, dto.PlaceOrderResponse{
		MainOrderID: res.MainOrderID,
		CreatedAt:   res.CreatedAt,
		Lines:       toLineResults(res.Lines),
	})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	v, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toMainOrder(*v))
}

// ListOrders: ?limit=&offset=; главный магазин может добавить ?placed_by=
func (h *OrderHandler) ListOrders(c *gin.Context) {
	var f service.ListFilter
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if s := c.Query("placed_by"); s != "" {
		id, err := uuid.Parse(s)
		if err != nil {
			badRequest(c, h.log, "invalid placed_by", err)
			return
		}
		f.PlacedBy = &id
	}
	f = f.Normalize()

	list, total, err := h.orders.ListOrders(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	items := make([]dto.MainOrder, len(list))
	for i := range list {
		items[i] = toMainOrder(list[i])
	}
	c.JSON(http.StatusOK, dto.ListOrdersResponse{Items: items, Total: total, Limit: f.Limit, Offset: f.Offset})
}

func (h *OrderHandler) Accept(c *gin.Context) {
	h.transition(c, h.fulfillment.Accept)
}

func (h *OrderHandler) Reject(c *gin.Context) {
	h.transition(c, h.fulfillment.Reject)
}

func (h *OrderHandler) Ship(c *gin.Context) {
	h.transition(c, h.fulfillment.Ship)
}

func (h *OrderHandler) Receive(c *gin.Context) {
	h.transition(c, h.fulfillment.Receive)
}

func (h *OrderHandler) ReceiveWithCondition(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "quantity is required", err)
		return
	}
	res, err := h.fulfillment.ReceiveWithCondition(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toTransition(res))
}

func (h *OrderHandler) UpdateQuantity(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var req dto.QuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.log, "quantity is required", err)
		return
	}
	res, err := h.fulfillment.UpdateQuantity(c.Request.Context(), id, req.Quantity)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.QuantityResponse{
		ID:          res.ID,
		MainOrderID: res.MainOrderID,
		CakeName:    res.CakeName,
		Quantity:    res.Quantity,
	})
}

func (h *OrderHandler) AcceptAll(c *gin.Context) {
	h.batch(c, h.fulfillment.AcceptAll)
}

func (h *OrderHandler) ShipAll(c *gin.Context) {
	h.batch(c, h.fulfillment.ShipAll)
}

func (h *OrderHandler) transition(c *gin.Context, op transitionFunc) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	res, err := op(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, toTransition(res))
}

func (h *OrderHandler) batch(c *gin.Context, op batchFunc) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	res, err := op(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, dto.BatchResponse{MainOrderID: res.MainOrderID, LineIDs: res.LineIDs, State: string(res.State)})
}

func (h *OrderHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	return parsePathID(c, h.log)
}

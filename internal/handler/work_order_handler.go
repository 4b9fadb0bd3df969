package handler

import (
	"errors"
	"net/http"

	"garage-service/internal/apperr"
	"garage-service/internal/authz"
	"garage-service/internal/inventory"
	"garage-service/internal/model"
	mid "garage-service/internal/middleware"
	"garage-service/pkg/database"
	"garage-service/pkg/logger"
	"garage-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// WorkOrderRequest defines the structure for client order creation.
// The car details are typed by the client; the VIN decides whether an
// existing car is reused.
type WorkOrderRequest struct {
	Make        string `json:"make" form:"make"`
	Model       string `json:"model" form:"model"`
	Year        int    `json:"year" form:"year"`
	VIN         string `json:"vin" form:"vin"`
	Description string `json:"description" form:"description"`
}

// AssignRequest defines the structure for mechanic assignment
type AssignRequest struct {
	MechanicID uint `json:"mechanic_id" form:"mechanic_id"`
}

// StatusRequest defines the structure for a manual status override
type StatusRequest struct {
	Status string `json:"status" form:"status"`
}

// UsePartRequest defines the structure for part consumption
type UsePartRequest struct {
	PartID       uint `json:"part_id" form:"part_id"`
	QuantityUsed int  `json:"quantity_used" form:"quantity_used"`
}

// CompleteRequest defines the structure for order completion with an
// optional part consumption
type CompleteRequest struct {
	PartID       uint `json:"part_id" form:"part_id"`
	QuantityUsed int  `json:"quantity_used" form:"quantity_used"`
}

// ListWorkOrders returns the orders visible to the actor: managers see
// all, mechanics their assigned plus unassigned ones, clients their own.
func ListWorkOrders(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	query := database.GetDB().Order("id DESC")
	switch actor.Role {
	case model.RoleMechanic:
		query = query.Where("mechanic_id = ? OR mechanic_id IS NULL", actor.ID)
	case model.RoleClient:
		query = query.Where("client_id = ?", actor.ID)
	}

	var orders []model.WorkOrder
	if result := query.Find(&orders); result.Error != nil {
		log.Error("Failed to list work orders", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve work orders"})
	}

	log.Info("Work orders retrieved", zap.Int("count", len(orders)))
	return c.JSON(http.StatusOK, orders)
}

// GetWorkOrder returns one order with its car, participants, images
// and consumption history
func GetWorkOrder(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var order model.WorkOrder
	if result := database.GetDB().First(&order, id); result.Error != nil {
		log.Warn("Work order not found", zap.String("order_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
	}

	var car model.Car
	database.GetDB().First(&car, order.CarID)

	var client model.User
	database.GetDB().First(&client, order.ClientID)

	var mechanic *model.User
	if order.MechanicID != nil {
		var m model.User
		if result := database.GetDB().First(&m, *order.MechanicID); result.Error == nil {
			mechanic = &m
		}
	}

	partsUsed, err := findPartUsagesByOrder(database.GetDB(), order.ID)
	if err != nil {
		log.Error("Failed to load part usages", zap.String("order_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve work order"})
	}

	var images []model.WorkOrderImage
	database.GetDB().Where("work_order_id = ?", order.ID).Order("id").Find(&images)

	return c.JSON(http.StatusOK, echo.Map{
		"order":      order,
		"car":        car,
		"client":     client,
		"mechanic":   mechanic,
		"parts_used": partsUsed,
		"images":     images,
	})
}

// CreateWorkOrder handles order creation by a client. The supplied VIN
// either matches a car already on file, which is reused as-is, or a
// new car is created owned by the submitting client.
func CreateWorkOrder(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !authz.Allowed(actor.Role, authz.ActionCreateWorkOrder) {
		log.Warn("Work order creation denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only clients can create work orders"})
	}

	var req WorkOrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.VIN == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vin is required"})
	}

	var order model.WorkOrder
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var car model.Car
		err := tx.Where("vin = ?", req.VIN).First(&car).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			car = model.Car{
				VIN:        req.VIN,
				Make:       req.Make,
				Model:      req.Model,
				Year:       req.Year,
				OwnerName:  actor.Username,
				OwnerPhone: "N/A",
			}
			if err := tx.Create(&car).Error; err != nil {
				return err
			}
			log.Info("Car created for work order",
				zap.Uint("car_id", car.ID),
				zap.String("vin", car.VIN))
		} else if err != nil {
			return err
		}

		order = model.WorkOrder{
			CarID:       car.ID,
			ClientID:    actor.ID,
			Description: req.Description,
			Status:      model.StatusOpen,
		}
		return tx.Create(&order).Error
	})
	if err != nil {
		log.Error("Failed to create work order", zap.String("vin", req.VIN), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create work order"})
	}

	prometheus.OrderOperationsCounter.WithLabelValues("create").Inc()
	log.Info("Work order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("car_id", order.CarID),
		zap.Uint("client_id", order.ClientID))
	return c.JSON(http.StatusCreated, order)
}

// AssignMechanic binds a mechanic to an order and forces it into
// progress, a manager-only action. An existing assignment is
// overwritten.
func AssignMechanic(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !authz.Allowed(actor.Role, authz.ActionAssignMechanic) {
		log.Warn("Mechanic assignment denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only managers can assign mechanics"})
	}

	var req AssignRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	var order model.WorkOrder
	if result := database.GetDB().First(&order, id); result.Error != nil {
		log.Warn("Work order not found", zap.String("order_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
	}

	var mechanic model.User
	if result := database.GetDB().First(&mechanic, req.MechanicID); result.Error != nil {
		log.Warn("Mechanic not found", zap.Uint("mechanic_id", req.MechanicID))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "mechanic not found"})
	}
	if mechanic.Role != model.RoleMechanic {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user is not a mechanic"})
	}

	order.MechanicID = &mechanic.ID
	order.Status = model.StatusInProgress
	if result := database.GetDB().Save(&order); result.Error != nil {
		log.Error("Failed to assign mechanic", zap.String("order_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to assign mechanic"})
	}

	prometheus.OrderOperationsCounter.WithLabelValues("assign").Inc()
	log.Info("Mechanic assigned",
		zap.Uint("order_id", order.ID),
		zap.Uint("mechanic_id", mechanic.ID))
	return c.JSON(http.StatusOK, order)
}

// UpdateStatus is the manager's manual override: it may set any
// recognized status directly, bypassing the normal transition order.
func UpdateStatus(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !authz.Allowed(actor.Role, authz.ActionOverrideStatus) {
		log.Warn("Status override denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only managers can update the status"})
	}

	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	status, ok := model.ParseOrderStatus(req.Status)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}

	var order model.WorkOrder
	if result := database.GetDB().First(&order, id); result.Error != nil {
		log.Warn("Work order not found", zap.String("order_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
	}

	previous := order.Status
	order.Status = status
	if result := database.GetDB().Save(&order); result.Error != nil {
		log.Error("Failed to update status", zap.String("order_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update status"})
	}

	prometheus.OrderOperationsCounter.WithLabelValues("override_status").Inc()
	log.Info("Work order status overridden",
		zap.Uint("order_id", order.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(order.Status)))
	return c.JSON(http.StatusOK, order)
}

// UsePart records a part consumption against an order without
// completing it. Only the assigned mechanic may do this; an unassigned
// order is claimed by the acting mechanic. An open order moves into
// progress as a side effect.
func UsePart(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !authz.Allowed(actor.Role, authz.ActionUsePart) {
		log.Warn("Part usage denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only mechanics can use parts"})
	}

	var req UsePartRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.PartID == 0 || req.QuantityUsed <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "select a part and enter a positive quantity"})
	}

	var order model.WorkOrder
	if result := database.GetDB().First(&order, id); result.Error != nil {
		log.Warn("Work order not found", zap.String("order_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
	}

	if !authz.CanActOnOrder(&order, actor.ID) {
		log.Warn("Part usage by non-assigned mechanic",
			zap.Uint("order_id", order.ID),
			zap.Uint("mechanic_id", actor.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the assigned mechanic can use parts on this order"})
	}

	var part *model.Part
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		var consumeErr error
		part, consumeErr = inventory.Consume(tx, order.ID, req.PartID, req.QuantityUsed)
		if consumeErr != nil {
			return consumeErr
		}

		if order.MechanicID == nil {
			order.MechanicID = &actor.ID
		}
		if order.Status == model.StatusOpen {
			order.Status = model.StatusInProgress
		}
		return tx.Save(&order).Error
	})
	if err != nil {
		log.Warn("Part consumption failed",
			zap.Uint("order_id", order.ID),
			zap.Uint("part_id", req.PartID),
			zap.Int("quantity", req.QuantityUsed),
			zap.Error(err))
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	recordConsumption(part, req.QuantityUsed)
	prometheus.OrderOperationsCounter.WithLabelValues("use_part").Inc()
	log.Info("Part used on work order",
		zap.Uint("order_id", order.ID),
		zap.String("part_number", part.PartNumber),
		zap.Int("quantity_used", req.QuantityUsed),
		zap.Int("stock_left", part.Quantity))
	return c.JSON(http.StatusOK, order)
}

// CompleteWorkOrder marks an order completed, optionally consuming one
// part/quantity pair in the same transaction. If the consumption fails
// the completion does not happen either.
func CompleteWorkOrder(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !authz.Allowed(actor.Role, authz.ActionCompleteOrder) {
		log.Warn("Order completion denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only mechanics can complete work orders"})
	}

	var req CompleteRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	var order model.WorkOrder
	if result := database.GetDB().First(&order, id); result.Error != nil {
		log.Warn("Work order not found", zap.String("order_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
	}

	// Completion by anyone but the assigned mechanic is denied, never
	// silently reassigned
	if !authz.CanActOnOrder(&order, actor.ID) {
		log.Warn("Completion by non-assigned mechanic",
			zap.Uint("order_id", order.ID),
			zap.Uint("mechanic_id", actor.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only the assigned mechanic can complete this order"})
	}

	var part *model.Part
	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		if req.PartID != 0 || req.QuantityUsed != 0 {
			var consumeErr error
			part, consumeErr = inventory.Consume(tx, order.ID, req.PartID, req.QuantityUsed)
			if consumeErr != nil {
				return consumeErr
			}
		}

		if order.MechanicID == nil {
			order.MechanicID = &actor.ID
		}
		order.Status = model.StatusCompleted
		return tx.Save(&order).Error
	})
	if err != nil {
		log.Warn("Work order completion failed",
			zap.Uint("order_id", order.ID),
			zap.Error(err))
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	if part != nil {
		recordConsumption(part, req.QuantityUsed)
	}
	prometheus.OrderOperationsCounter.WithLabelValues("complete").Inc()
	log.Info("Work order completed",
		zap.Uint("order_id", order.ID),
		zap.Uint("mechanic_id", *order.MechanicID))
	return c.JSON(http.StatusOK, order)
}

// findPartUsagesByOrder returns an order's consumption records in
// creation order
func findPartUsagesByOrder(db *gorm.DB, orderID uint) ([]model.WorkOrderPart, error) {
	var usages []model.WorkOrderPart
	err := db.Where("work_order_id = ?", orderID).Order("id").Find(&usages).Error
	return usages, err
}

// recordConsumption updates the inventory metrics after a successful consume
func recordConsumption(part *model.Part, quantity int) {
	prometheus.PartsConsumedCounter.WithLabelValues(part.PartNumber).Add(float64(quantity))
	prometheus.PartStockGauge.WithLabelValues(part.PartNumber).Set(float64(part.Quantity))
}

package handler

import (
	"net/http"

	"garage-service/internal/authz"
	"garage-service/internal/model"
	mid "garage-service/internal/middleware"
	"garage-service/pkg/database"
	"garage-service/pkg/logger"
	"garage-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// PartRequest defines the structure for part catalog entries
type PartRequest struct {
	PartNumber  string  `json:"part_number" form:"part_number"`
	Name        string  `json:"name" form:"name"`
	Description string  `json:"description" form:"description"`
	Quantity    int     `json:"quantity" form:"quantity"`
	UnitPrice   float64 `json:"unit_price" form:"unit_price"`
}

// ListParts returns the part catalog, newest first
func ListParts(c echo.Context) error {
	log := logger.FromContext(c)

	var parts []model.Part
	if result := database.GetDB().Order("id DESC").Find(&parts); result.Error != nil {
		log.Error("Failed to list parts", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve parts"})
	}

	return c.JSON(http.StatusOK, parts)
}

// CreatePart adds a part to the catalog, a manager-only action
func CreatePart(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !authz.Allowed(actor.Role, authz.ActionManageParts) {
		log.Warn("Part creation denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only managers can manage inventory"})
	}

	var req PartRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.PartNumber == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "part number and name are required"})
	}
	if req.Quantity < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "quantity cannot be negative"})
	}

	// Check if part with this number already exists
	var count int64
	database.GetDB().Model(&model.Part{}).Where("part_number = ?", req.PartNumber).Count(&count)
	if count > 0 {
		log.Warn("Part with this number already exists", zap.String("part_number", req.PartNumber))
		return c.JSON(http.StatusConflict, echo.Map{"error": "part with this number already exists"})
	}

	part := model.Part{
		PartNumber:  req.PartNumber,
		Name:        req.Name,
		Description: req.Description,
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
	}
	if result := database.GetDB().Create(&part); result.Error != nil {
		log.Error("Failed to create part",
			zap.String("part_number", req.PartNumber),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create part"})
	}

	prometheus.PartStockGauge.WithLabelValues(part.PartNumber).Set(float64(part.Quantity))
	log.Info("Part created",
		zap.Uint("part_id", part.ID),
		zap.String("part_number", part.PartNumber),
		zap.Int("quantity", part.Quantity))
	return c.JSON(http.StatusCreated, part)
}

// DeletePart removes a catalog entry. Blocked while any work order
// usage record still references the part.
func DeletePart(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !authz.Allowed(actor.Role, authz.ActionManageParts) {
		log.Warn("Part deletion denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only managers can manage inventory"})
	}

	var part model.Part
	if result := database.GetDB().First(&part, id); result.Error != nil {
		log.Warn("Part not found for deletion", zap.String("part_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "part not found"})
	}

	var used int64
	database.GetDB().Model(&model.WorkOrderPart{}).Where("part_id = ?", part.ID).Count(&used)
	if used > 0 {
		log.Warn("Part is referenced by work orders",
			zap.Uint("part_id", part.ID),
			zap.Int64("usages", used))
		return c.JSON(http.StatusConflict, echo.Map{"error": "part has already been used in work orders"})
	}

	if result := database.GetDB().Delete(&model.Part{}, part.ID); result.Error != nil {
		log.Error("Failed to delete part", zap.Uint("part_id", part.ID), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete part"})
	}

	prometheus.PartStockGauge.DeleteLabelValues(part.PartNumber)
	log.Info("Part deleted",
		zap.Uint("part_id", part.ID),
		zap.String("part_number", part.PartNumber))
	return c.JSON(http.StatusOK, echo.Map{"message": "part deleted"})
}

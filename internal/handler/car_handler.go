package handler

import (
	"net/http"

	"garage-service/internal/apperr"
	"garage-service/internal/authz"
	"garage-service/internal/model"
	mid "garage-service/internal/middleware"
	"garage-service/pkg/database"
	"garage-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CarRequest defines the structure for direct car creation by a manager
type CarRequest struct {
	VIN        string `json:"vin" form:"vin"`
	Make       string `json:"make" form:"make"`
	Model      string `json:"model" form:"model"`
	Year       int    `json:"year" form:"year"`
	OwnerName  string `json:"owner_name" form:"owner_name"`
	OwnerPhone string `json:"owner_phone" form:"owner_phone"`
}

// ListCars returns the cars visible to the actor: managers and
// mechanics see every car, clients only the cars they own.
func ListCars(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	query := database.GetDB().Order("id DESC")
	if actor.Role == model.RoleClient {
		query = query.Where("owner_name = ?", actor.Username)
	}

	var cars []model.Car
	if result := query.Find(&cars); result.Error != nil {
		log.Error("Failed to list cars", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve cars"})
	}

	log.Info("Cars retrieved", zap.Int("count", len(cars)))
	return c.JSON(http.StatusOK, cars)
}

// GetCar returns one car with its work order history
func GetCar(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var car model.Car
	if result := database.GetDB().First(&car, id); result.Error != nil {
		log.Warn("Car not found", zap.String("car_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
	}

	if !authz.CanViewCar(actor.Role, car.OwnerName, actor.Username) {
		log.Warn("Car view denied",
			zap.String("car_id", id),
			zap.String("username", actor.Username))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not allowed to view this car"})
	}

	orders, err := findWorkOrdersByCar(database.GetDB(), car.ID)
	if err != nil {
		log.Error("Failed to load car work orders", zap.String("car_id", id), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve car details"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"car":         car,
		"work_orders": orders,
	})
}

// CreateCar handles direct car creation, a manager-only action
func CreateCar(c echo.Context) error {
	log := logger.FromContext(c)

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !authz.Allowed(actor.Role, authz.ActionCreateCar) {
		log.Warn("Car creation denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only managers can create cars"})
	}

	var req CarRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.VIN == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vin is required"})
	}

	// VIN is the business key, enforce uniqueness up front
	var count int64
	database.GetDB().Model(&model.Car{}).Where("vin = ?", req.VIN).Count(&count)
	if count > 0 {
		log.Warn("Car with this VIN already exists", zap.String("vin", req.VIN))
		return c.JSON(http.StatusConflict, echo.Map{"error": "car with this VIN already exists"})
	}

	car := model.Car{
		VIN:        req.VIN,
		Make:       req.Make,
		Model:      req.Model,
		Year:       req.Year,
		OwnerName:  req.OwnerName,
		OwnerPhone: req.OwnerPhone,
	}
	if result := database.GetDB().Create(&car); result.Error != nil {
		log.Error("Failed to create car", zap.String("vin", req.VIN), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create car"})
	}

	log.Info("Car created",
		zap.Uint("car_id", car.ID),
		zap.String("vin", car.VIN))
	return c.JSON(http.StatusCreated, car)
}

// DeleteCar removes a car together with its completed work orders and
// their usage records. Blocked while any order is still active.
func DeleteCar(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	if !authz.Allowed(actor.Role, authz.ActionDeleteCar) {
		log.Warn("Car deletion denied", zap.String("role", string(actor.Role)))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "only managers can delete cars"})
	}

	var car model.Car
	if result := database.GetDB().First(&car, id); result.Error != nil {
		log.Warn("Car not found for deletion", zap.String("car_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "car not found"})
	}

	err := database.GetDB().Transaction(func(tx *gorm.DB) error {
		// A car is deletable only when every related order is completed
		var active int64
		if err := tx.Model(&model.WorkOrder{}).
			Where("car_id = ? AND status <> ?", car.ID, model.StatusCompleted).
			Count(&active).Error; err != nil {
			return err
		}
		if active > 0 {
			return apperr.ActiveReferences("car has active work orders")
		}

		orders, err := findWorkOrdersByCar(tx, car.ID)
		if err != nil {
			return err
		}
		for _, order := range orders {
			if err := tx.Where("work_order_id = ?", order.ID).Delete(&model.WorkOrderPart{}).Error; err != nil {
				return err
			}
			if err := tx.Where("work_order_id = ?", order.ID).Delete(&model.WorkOrderImage{}).Error; err != nil {
				return err
			}
			if err := tx.Delete(&model.WorkOrder{}, order.ID).Error; err != nil {
				return err
			}
		}

		return tx.Delete(&model.Car{}, car.ID).Error
	})
	if err != nil {
		log.Warn("Failed to delete car", zap.String("car_id", id), zap.Error(err))
		return c.JSON(apperr.HTTPStatus(err), echo.Map{"error": err.Error()})
	}

	log.Info("Car deleted", zap.Uint("car_id", car.ID), zap.String("vin", car.VIN))
	return c.JSON(http.StatusOK, echo.Map{"message": "car deleted"})
}

// findWorkOrdersByCar returns a car's work orders, newest first
func findWorkOrdersByCar(db *gorm.DB, carID uint) ([]model.WorkOrder, error) {
	var orders []model.WorkOrder
	err := db.Where("car_id = ?", carID).Order("id DESC").Find(&orders).Error
	return orders, err
}

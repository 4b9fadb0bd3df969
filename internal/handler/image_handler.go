package handler

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"garage-service/internal/model"
	mid "garage-service/internal/middleware"
	"garage-service/pkg/config"
	"garage-service/pkg/database"
	"garage-service/pkg/logger"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

var uploadCfg *config.UploadConfig

// InitUploads stores the upload configuration for the image handlers
func InitUploads(cfg *config.UploadConfig) {
	uploadCfg = cfg
}

// UploadOrderImages attaches uploaded images to a work order. Files
// with a disallowed extension are skipped. The first stored image also
// becomes the car's representative image if it has none yet.
func UploadOrderImages(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	actor, ok := mid.ActorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	var order model.WorkOrder
	if result := database.GetDB().First(&order, id); result.Error != nil {
		log.Warn("Work order not found", zap.String("order_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "work order not found"})
	}

	// The order's client and managers may attach images
	if actor.Role != model.RoleManager && order.ClientID != actor.ID {
		log.Warn("Image upload denied",
			zap.Uint("order_id", order.ID),
			zap.Uint("user_id", actor.ID))
		return c.JSON(http.StatusForbidden, echo.Map{"error": "you are not allowed to attach images to this order"})
	}

	form, err := c.MultipartForm()
	if err != nil {
		log.Error("Invalid multipart form", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid upload"})
	}

	files := form.File["images"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no images supplied"})
	}

	orderDir := filepath.Join(uploadCfg.Dir, "orders", fmt.Sprint(order.ID))
	if err := os.MkdirAll(orderDir, 0o755); err != nil {
		log.Error("Failed to create upload directory", zap.String("dir", orderDir), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	var stored []model.WorkOrderImage
	skipped := 0
	for _, file := range files {
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Filename)), ".")
		if !extensionAllowed(ext) {
			log.Warn("Unsupported image type skipped", zap.String("filename", file.Filename))
			skipped++
			continue
		}
		if file.Size > uploadCfg.MaxSizeBytes {
			log.Warn("Oversized image skipped",
				zap.String("filename", file.Filename),
				zap.Int64("size", file.Size))
			skipped++
			continue
		}

		name := uuid.New().String() + "." + ext
		dst := filepath.Join(orderDir, name)
		if err := saveUpload(file, dst); err != nil {
			log.Error("Failed to store image", zap.String("filename", file.Filename), zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
		}

		img := model.WorkOrderImage{
			WorkOrderID: order.ID,
			Filename:    filepath.ToSlash(filepath.Join("orders", fmt.Sprint(order.ID), name)),
		}
		if result := database.GetDB().Create(&img); result.Error != nil {
			log.Error("Failed to record image", zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
		}
		stored = append(stored, img)
	}

	// Backfill the car's representative image from the first upload
	if len(stored) > 0 {
		var car model.Car
		if result := database.GetDB().First(&car, order.CarID); result.Error == nil && car.ImageFilename == "" {
			database.GetDB().Model(&car).Update("image_filename", stored[0].Filename)
		}
	}

	log.Info("Order images uploaded",
		zap.Uint("order_id", order.ID),
		zap.Int("stored", len(stored)),
		zap.Int("skipped", skipped))
	return c.JSON(http.StatusCreated, echo.Map{
		"images":  stored,
		"skipped": skipped,
	})
}

func extensionAllowed(ext string) bool {
	if ext == "" {
		return false
	}
	for _, allowed := range uploadCfg.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func saveUpload(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

package inventory

import (
	"errors"
	"os"
	"testing"

	"garage-service/internal/apperr"
	"garage-service/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testDB connects to the database named by TEST_DATABASE_URL and
// prepares a clean schema. Tests are skipped when the variable is unset.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := db.AutoMigrate(&model.Part{}, &model.WorkOrder{}, &model.WorkOrderPart{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db.Exec("DELETE FROM work_order_parts")
	db.Exec("DELETE FROM work_orders")
	db.Exec("DELETE FROM parts")
	return db
}

func usageCount(t *testing.T, db *gorm.DB, partID uint) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&model.WorkOrderPart{}).Where("part_id = ?", partID).Count(&n).Error; err != nil {
		t.Fatalf("count usages: %v", err)
	}
	return n
}

func reloadPart(t *testing.T, db *gorm.DB, id uint) model.Part {
	t.Helper()
	var part model.Part
	if err := db.First(&part, id).Error; err != nil {
		t.Fatalf("reload part: %v", err)
	}
	return part
}

func TestConsume(t *testing.T) {
	db := testDB(t)

	part := model.Part{PartNumber: "BRK-001", Name: "Brake pad", Quantity: 5}
	if err := db.Create(&part).Error; err != nil {
		t.Fatalf("create part: %v", err)
	}
	order := model.WorkOrder{CarID: 1, ClientID: 1, Status: model.StatusOpen}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		updated, err := Consume(tx, order.ID, part.ID, 3)
		if err != nil {
			return err
		}
		if updated.Quantity != 2 {
			t.Errorf("expected quantity 2 after consume, got %d", updated.Quantity)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("consume: %v", err)
	}

	if got := reloadPart(t, db, part.ID).Quantity; got != 2 {
		t.Errorf("expected persisted quantity 2, got %d", got)
	}
	if n := usageCount(t, db, part.ID); n != 1 {
		t.Errorf("expected exactly one usage record, got %d", n)
	}
}

func TestConsumeInsufficientStock(t *testing.T) {
	db := testDB(t)

	part := model.Part{PartNumber: "FLT-002", Name: "Oil filter", Quantity: 2}
	if err := db.Create(&part).Error; err != nil {
		t.Fatalf("create part: %v", err)
	}
	order := model.WorkOrder{CarID: 1, ClientID: 1, Status: model.StatusOpen}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := Consume(tx, order.ID, part.ID, 3)
		return err
	})
	if !errors.Is(err, apperr.ErrInsufficientStock) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// Nothing may have been mutated
	if got := reloadPart(t, db, part.ID).Quantity; got != 2 {
		t.Errorf("expected quantity unchanged at 2, got %d", got)
	}
	if n := usageCount(t, db, part.ID); n != 0 {
		t.Errorf("expected no usage records, got %d", n)
	}
}

func TestConsumeUnknownPart(t *testing.T) {
	db := testDB(t)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := Consume(tx, 1, 999999, 1)
		return err
	})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestConsumeNonPositiveQuantity(t *testing.T) {
	db := testDB(t)

	part := model.Part{PartNumber: "SPK-003", Name: "Spark plug", Quantity: 4}
	if err := db.Create(&part).Error; err != nil {
		t.Fatalf("create part: %v", err)
	}

	for _, qty := range []int{0, -1} {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := Consume(tx, 1, part.ID, qty)
			return err
		})
		if !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("expected validation error for quantity %d, got %v", qty, err)
		}
	}

	if got := reloadPart(t, db, part.ID).Quantity; got != 4 {
		t.Errorf("expected quantity unchanged at 4, got %d", got)
	}
}

func TestConsumeSequenceNeverGoesNegative(t *testing.T) {
	db := testDB(t)

	part := model.Part{PartNumber: "BLT-004", Name: "Belt", Quantity: 5}
	if err := db.Create(&part).Error; err != nil {
		t.Fatalf("create part: %v", err)
	}
	order := model.WorkOrder{CarID: 1, ClientID: 1, Status: model.StatusOpen}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("create order: %v", err)
	}

	successes := 0
	for _, qty := range []int{2, 2, 2, 1, 1} {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := Consume(tx, order.ID, part.ID, qty)
			return err
		})
		if err == nil {
			successes++
		} else if !errors.Is(err, apperr.ErrInsufficientStock) {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	final := reloadPart(t, db, part.ID)
	if final.Quantity < 0 {
		t.Fatalf("quantity went negative: %d", final.Quantity)
	}
	if n := usageCount(t, db, part.ID); n != int64(successes) {
		t.Errorf("expected %d usage records, got %d", successes, n)
	}
}

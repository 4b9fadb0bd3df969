package handler

import (
	"net/http"
	"net/url"
	"testing"

	"garage-service/internal/model"
)

func TestCreateCarDuplicateVIN(t *testing.T) {
	db := setupTest(t)
	manager := createUser(t, db, "boss", model.RoleManager)
	client := createUser(t, db, "ivan", model.RoleClient)

	form := url.Values{
		"vin":        {"V-100"},
		"make":       {"VW"},
		"model":      {"Golf"},
		"year":       {"2019"},
		"owner_name": {"ivan"},
	}
	c, rec := post(t, actorFor(manager), form, "")
	if err := CreateCar(c); err != nil {
		t.Fatalf("CreateCar: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Same VIN again collides
	c, rec = post(t, actorFor(manager), form, "")
	if err := CreateCar(c); err != nil {
		t.Fatalf("CreateCar: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate VIN, got %d", rec.Code)
	}

	// Managers only
	c, rec = post(t, actorFor(client), form, "")
	if err := CreateCar(c); err != nil {
		t.Fatalf("CreateCar: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for client, got %d", rec.Code)
	}
}

func TestGetCarVisibility(t *testing.T) {
	db := setupTest(t)
	mech := createUser(t, db, "petar", model.RoleMechanic)
	owner := createUser(t, db, "ivan", model.RoleClient)
	stranger := createUser(t, db, "maria", model.RoleClient)

	car := model.Car{VIN: "V-200", OwnerName: owner.Username}
	db.Create(&car)

	c, rec := get(t, actorFor(owner), itoa(car.ID))
	if err := GetCar(c); err != nil {
		t.Fatalf("GetCar: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for owner, got %d", rec.Code)
	}

	c, rec = get(t, actorFor(stranger), itoa(car.ID))
	if err := GetCar(c); err != nil {
		t.Fatalf("GetCar: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-owner client, got %d", rec.Code)
	}

	c, rec = get(t, actorFor(mech), itoa(car.ID))
	if err := GetCar(c); err != nil {
		t.Fatalf("GetCar: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 for mechanic, got %d", rec.Code)
	}
}

func TestDeleteCarGuardedByActiveOrders(t *testing.T) {
	db := setupTest(t)
	manager := createUser(t, db, "boss", model.RoleManager)
	mech := createUser(t, db, "petar", model.RoleMechanic)
	client := createUser(t, db, "ivan", model.RoleClient)

	car := model.Car{VIN: "V-300", OwnerName: client.Username}
	db.Create(&car)
	part := model.Part{PartNumber: "P-300", Name: "Wiper", Quantity: 10}
	db.Create(&part)
	order := model.WorkOrder{CarID: car.ID, ClientID: client.ID, MechanicID: &mech.ID, Status: model.StatusInProgress}
	db.Create(&order)
	db.Create(&model.WorkOrderPart{WorkOrderID: order.ID, PartID: part.ID, QuantityUsed: 2})

	// Active order blocks deletion
	c, rec := post(t, actorFor(manager), url.Values{}, itoa(car.ID))
	if err := DeleteCar(c); err != nil {
		t.Fatalf("DeleteCar: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while order active, got %d: %s", rec.Code, rec.Body.String())
	}
	var carCount int64
	db.Model(&model.Car{}).Where("id = ?", car.ID).Count(&carCount)
	if carCount != 1 {
		t.Fatalf("expected car to survive the blocked delete")
	}

	// After completion the car and its history go together
	db.Model(&order).Update("status", model.StatusCompleted)
	c, rec = post(t, actorFor(manager), url.Values{}, itoa(car.ID))
	if err := DeleteCar(c); err != nil {
		t.Fatalf("DeleteCar: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var orphans int64
	db.Model(&model.WorkOrder{}).Where("car_id = ?", car.ID).Count(&orphans)
	if orphans != 0 {
		t.Errorf("expected no work orders left, got %d", orphans)
	}
	db.Model(&model.WorkOrderPart{}).Where("work_order_id = ?", order.ID).Count(&orphans)
	if orphans != 0 {
		t.Errorf("expected no usage records left, got %d", orphans)
	}
	db.Model(&model.Car{}).Where("id = ?", car.ID).Count(&carCount)
	if carCount != 0 {
		t.Errorf("expected car gone, still present")
	}
}

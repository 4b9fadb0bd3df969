package handler

import (
	"net/http"
	"net/url"
	"testing"

	"garage-service/internal/model"
)

func TestCreatePart(t *testing.T) {
	db := setupTest(t)
	manager := createUser(t, db, "boss", model.RoleManager)
	mech := createUser(t, db, "petar", model.RoleMechanic)

	form := url.Values{
		"part_number": {"P-400"},
		"name":        {"Air filter"},
		"quantity":    {"6"},
		"unit_price":  {"12.50"},
	}
	c, rec := post(t, actorFor(manager), form, "")
	if err := CreatePart(c); err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	// Duplicate part number collides
	c, rec = post(t, actorFor(manager), form, "")
	if err := CreatePart(c); err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate part number, got %d", rec.Code)
	}

	// Number and name are required
	c, rec = post(t, actorFor(manager), url.Values{"name": {"Nameless"}}, "")
	if err := CreatePart(c); err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for missing part number, got %d", rec.Code)
	}

	// Managers only
	c, rec = post(t, actorFor(mech), form, "")
	if err := CreatePart(c); err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for mechanic, got %d", rec.Code)
	}
}

func TestDeletePartGuardedByUsage(t *testing.T) {
	db := setupTest(t)
	manager := createUser(t, db, "boss", model.RoleManager)
	client := createUser(t, db, "ivan", model.RoleClient)

	car := model.Car{VIN: "V-500", OwnerName: client.Username}
	db.Create(&car)
	used := model.Part{PartNumber: "P-500", Name: "Battery", Quantity: 3}
	db.Create(&used)
	unused := model.Part{PartNumber: "P-501", Name: "Fuse", Quantity: 20}
	db.Create(&unused)
	order := model.WorkOrder{CarID: car.ID, ClientID: client.ID, Status: model.StatusCompleted}
	db.Create(&order)
	db.Create(&model.WorkOrderPart{WorkOrderID: order.ID, PartID: used.ID, QuantityUsed: 1})

	// A referenced part cannot be deleted
	c, rec := post(t, actorFor(manager), url.Values{}, itoa(used.ID))
	if err := DeletePart(c); err != nil {
		t.Fatalf("DeletePart: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for used part, got %d: %s", rec.Code, rec.Body.String())
	}
	var count int64
	db.Model(&model.Part{}).Where("id = ?", used.ID).Count(&count)
	if count != 1 {
		t.Fatalf("expected used part to remain")
	}

	// An unreferenced part deletes cleanly
	c, rec = post(t, actorFor(manager), url.Values{}, itoa(unused.ID))
	if err := DeletePart(c); err != nil {
		t.Fatalf("DeletePart: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	db.Model(&model.Part{}).Where("id = ?", unused.ID).Count(&count)
	if count != 0 {
		t.Errorf("expected unused part gone")
	}
}

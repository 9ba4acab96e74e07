package tests

import (
	"errors"
	"fmt"
	"rentdesk/manager/schema"
	"testing"

	"github.com/google/uuid"
)

func TestRentRecordCrud(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	_, _, contractId := env.newRental(t, &client)

	rentId, err := client.createRent(contractId, 1500.0, "2025-02-01")
	if err != nil {
		t.Fatal(err)
	}

	rents, err := client.listRents()
	if err != nil {
		t.Fatal(err)
	}
	if len(rents) != 1 {
		t.Fatalf("expected 1 rent record, got %d", len(rents))
	}

	rent := rents[0]
	if rent.Id != rentId || rent.Amount != 1500.0 || rent.Status != schema.RentPaid {
		t.Fatalf("unexpected rent record %v", rent)
	}
	if rent.PropertyName == nil || *rent.PropertyName != "Maple Court 2B" {
		t.Fatal("expected property name on rent listing")
	}
	if rent.TenantName == nil || *rent.TenantName != "Dana Fisher" {
		t.Fatal("expected tenant name on rent listing")
	}

	err = client.Put(fmt.Sprintf("/rents/%v", rentId)).
		Json(map[string]interface{}{
			"contract_id": contractId, "amount": 1600.0, "pay_date": "2025-02-02",
			"status": schema.RentPending, "remark": "partial payment outstanding",
		}).
		Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	var updated struct {
		Amount float64 `json:"amount"`
		Status string  `json:"status"`
		Remark string  `json:"remark"`
	}
	err = client.Get(fmt.Sprintf("/rents/%v", rentId)).Do(&updated)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Amount != 1600.0 || updated.Status != schema.RentPending || updated.Remark != "partial payment outstanding" {
		t.Fatalf("update not applied: %v", updated)
	}

	err = client.Delete(fmt.Sprintf("/rents/%v", rentId)).Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	err = client.Get(fmt.Sprintf("/rents/%v", rentId)).Do(nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("deleted rent record should not be found")
	}
}

func TestRentRecordValidation(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	_, _, contractId := env.newRental(t, &client)

	_, err := client.createRent(uuid.New(), 1500.0, "2025-02-01")
	if !errors.Is(err, ErrBadRequest) {
		t.Fatal("unknown contract must be an invalid reference")
	}

	_, err = client.createRent(contractId, 0, "2025-02-01")
	if !errors.Is(err, ErrBadRequest) {
		t.Fatal("non-positive amount should be rejected")
	}

	_, err = client.createRent(contractId, 1500.0, "")
	if !errors.Is(err, ErrBadRequest) {
		t.Fatal("missing pay date should be rejected")
	}

	err = client.Post("/rents").
		Json(map[string]interface{}{"contract_id": contractId, "amount": 1500.0, "pay_date": "2025-02-01", "status": "overdue"}).
		Do(nil)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatal("unknown rent status should be rejected")
	}
}

func TestRentRecordOwnershipScoping(t *testing.T) {
	env := setupTestEnv(t)

	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")

	_, _, aliceContractId := env.newRental(t, &alice)

	rentId, err := alice.createRent(aliceContractId, 1500.0, "2025-02-01")
	if err != nil {
		t.Fatal(err)
	}

	// Bob cannot see, bill against, or remove Alice's ledger.
	_, err = bob.createRent(aliceContractId, 1500.0, "2025-02-01")
	if !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected invalid reference for foreign contract, got %v", err)
	}

	err = bob.Get(fmt.Sprintf("/rents/%v", rentId)).Do(nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign rent record, got %v", err)
	}

	err = bob.Delete(fmt.Sprintf("/rents/%v", rentId)).Do(nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found deleting foreign rent record, got %v", err)
	}

	rents, err := bob.listRents()
	if err != nil {
		t.Fatal(err)
	}
	if len(rents) != 0 {
		t.Fatal("listing should not include foreign rent records")
	}
}

func TestRentListOrdering(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	_, _, contractId := env.newRental(t, &client)

	for _, payDate := range []string{"2025-02-01", "2025-04-01", "2025-03-01"} {
		if _, err := client.createRent(contractId, 1500.0, payDate); err != nil {
			t.Fatal(err)
		}
	}

	rents, err := client.listRents()
	if err != nil {
		t.Fatal(err)
	}
	if len(rents) != 3 {
		t.Fatalf("expected 3 rent records, got %d", len(rents))
	}

	expected := []string{"2025-04-01", "2025-03-01", "2025-02-01"}
	for i, payDate := range expected {
		if rents[i].PayDate != payDate {
			t.Fatalf("expected pay date %v at position %d, got %v", payDate, i, rents[i].PayDate)
		}
	}
}

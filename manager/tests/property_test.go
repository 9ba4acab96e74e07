package tests

import (
	"errors"
	"fmt"
	"rentdesk/manager/schema"
	"testing"

	"github.com/google/uuid"
)

func TestPropertyCrud(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")

	propertyId, err := client.createProperty("Maple Court 2B", "12 Maple St")
	if err != nil {
		t.Fatal(err)
	}

	property, err := client.getProperty(propertyId)
	if err != nil {
		t.Fatal(err)
	}
	if property.Name != "Maple Court 2B" || property.Status != schema.PropertyVacant {
		t.Fatalf("unexpected property %v", property)
	}
	if property.ContractId != nil || property.TenantName != nil {
		t.Fatal("vacant property should have no contract details")
	}

	err = client.Put(fmt.Sprintf("/properties/%v", propertyId)).
		Json(map[string]interface{}{"name": "Maple Court 2B", "address": "12 Maple Street", "monthly_rent": 1600.0}).
		Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	property, err = client.getProperty(propertyId)
	if err != nil {
		t.Fatal(err)
	}
	if property.Address != "12 Maple Street" || property.MonthlyRent != 1600.0 {
		t.Fatalf("update not applied: %v", property)
	}

	err = client.Delete(fmt.Sprintf("/properties/%v", propertyId)).Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	_, err = client.getProperty(propertyId)
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("deleted property should not be found")
	}
}

func TestPropertyValidation(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")

	err := client.Post("/properties").Json(map[string]string{"name": "No Address"}).Do(nil)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatal("property without address should be rejected")
	}

	err = client.Post("/properties").Json(map[string]string{"address": "No Name St"}).Do(nil)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatal("property without name should be rejected")
	}
}

func TestPropertyOwnershipScoping(t *testing.T) {
	env := setupTestEnv(t)

	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")

	propertyId, err := alice.createProperty("Alice's Flat", "1 First Ave")
	if err != nil {
		t.Fatal(err)
	}

	// Another user's rows are indistinguishable from missing rows.
	_, err = bob.getProperty(propertyId)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign property, got %v", err)
	}

	err = bob.Put(fmt.Sprintf("/properties/%v", propertyId)).
		Json(map[string]string{"name": "Hijacked", "address": "nowhere"}).
		Do(nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found updating foreign property, got %v", err)
	}

	err = bob.Delete(fmt.Sprintf("/properties/%v", propertyId)).Do(nil)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found deleting foreign property, got %v", err)
	}

	properties, err := bob.listProperties()
	if err != nil {
		t.Fatal(err)
	}
	if len(properties) != 0 {
		t.Fatal("listing should not include foreign properties")
	}

	properties, err = alice.listProperties()
	if err != nil {
		t.Fatal(err)
	}
	if len(properties) != 1 || properties[0].Id != propertyId {
		t.Fatalf("unexpected listing %v", properties)
	}
}

func TestPropertyListShowsActiveContract(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	propertyId, tenantId, contractId := env.newRental(t, &client)

	properties, err := client.listProperties()
	if err != nil {
		t.Fatal(err)
	}
	if len(properties) != 1 {
		t.Fatalf("expected 1 property, got %d", len(properties))
	}

	property := properties[0]
	if property.Id != propertyId {
		t.Fatalf("expected property %v in listing, got %v", propertyId, property.Id)
	}
	if property.Status != schema.PropertyRented {
		t.Fatalf("expected rented status, got %v", property.Status)
	}
	if property.ContractId == nil || *property.ContractId != contractId {
		t.Fatalf("expected contract %v in listing, got %v", contractId, property.ContractId)
	}
	if property.TenantName == nil || *property.TenantName != "Dana Fisher" {
		t.Fatal("expected tenant name in listing")
	}

	tenant, err := client.getTenant(tenantId)
	if err != nil {
		t.Fatal(err)
	}
	if tenant.PropertyName == nil || *tenant.PropertyName != "Maple Court 2B" {
		t.Fatal("expected property name on tenant listing")
	}
}

func TestPropertyDeleteBlockedByContract(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	propertyId, _, contractId := env.newRental(t, &client)

	err := client.Delete(fmt.Sprintf("/properties/%v", propertyId)).Do(nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict deleting referenced property, got %v", err)
	}

	// Even a terminated contract keeps the property referenced.
	err = client.updateContract(contractId, contractBody(propertyId, mustTenantId(t, &client), schema.ContractTerminated))
	if err != nil {
		t.Fatal(err)
	}

	err = client.Delete(fmt.Sprintf("/properties/%v", propertyId)).Do(nil)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict while contract rows remain, got %v", err)
	}

	err = client.deleteContract(contractId)
	if err != nil {
		t.Fatal(err)
	}

	err = client.Delete(fmt.Sprintf("/properties/%v", propertyId)).Do(nil)
	if err != nil {
		t.Fatal(err)
	}
}

func mustTenantId(t *testing.T, c *client) uuid.UUID {
	t.Helper()

	var tenants []struct {
		Id uuid.UUID `json:"id"`
	}
	if err := c.Get("/tenants").Do(&tenants); err != nil {
		t.Fatal(err)
	}
	if len(tenants) == 0 {
		t.Fatal("no tenants found")
	}
	return tenants[0].Id
}

package tests

import (
	"fmt"
	"rentdesk/manager/schema"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractCreateRentsProperty(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	propertyId, _, contractId := env.newRental(t, &client)

	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyRented)

	contract, err := client.getContract(contractId)
	require.NoError(t, err)
	assert.Equal(t, schema.ContractActive, contract.Status)
	require.NotNil(t, contract.PropertyName)
	assert.Equal(t, "Maple Court 2B", *contract.PropertyName)
	require.NotNil(t, contract.TenantName)
	assert.Equal(t, "Dana Fisher", *contract.TenantName)
}

func TestContractCreateInactiveLeavesPropertyVacant(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")

	propertyId, err := client.createProperty("Oak House", "3 Oak Rd")
	require.NoError(t, err)
	tenantId, err := client.createTenant("Sam Lee", "555-0177")
	require.NoError(t, err)

	_, err = client.createContract(propertyId, tenantId, schema.ContractTerminated)
	require.NoError(t, err)

	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyVacant)
}

func TestContractActiveUniqueness(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	propertyId, tenantId, _ := env.newRental(t, &client)

	_, err := client.createContract(propertyId, tenantId, schema.ContractActive)
	require.ErrorIs(t, err, ErrConflict, "second active contract on the same property must be rejected")

	// A historical contract for the same property is fine.
	_, err = client.createContract(propertyId, tenantId, schema.ContractExpired)
	require.NoError(t, err)
}

func TestContractStatusTransitions(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	propertyId, tenantId, contractId := env.newRental(t, &client)

	err := client.updateContract(contractId, contractBody(propertyId, tenantId, schema.ContractTerminated))
	require.NoError(t, err)
	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyVacant)

	err = client.updateContract(contractId, contractBody(propertyId, tenantId, schema.ContractActive))
	require.NoError(t, err)
	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyRented)

	// An update that keeps the contract active must not flip the property.
	body := contractBody(propertyId, tenantId, schema.ContractActive)
	body["monthly_rent"] = 1750.0
	err = client.updateContract(contractId, body)
	require.NoError(t, err)
	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyRented)

	contract, err := client.getContract(contractId)
	require.NoError(t, err)
	assert.Equal(t, 1750.0, contract.MonthlyRent)
}

func TestContractMoveToOtherProperty(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	oldPropertyId, tenantId, contractId := env.newRental(t, &client)

	newPropertyId, err := client.createProperty("Oak House", "3 Oak Rd")
	require.NoError(t, err)

	err = client.updateContract(contractId, contractBody(newPropertyId, tenantId, schema.ContractActive))
	require.NoError(t, err)

	env.checkPropertyStatus(t, &client, oldPropertyId, schema.PropertyVacant)
	env.checkPropertyStatus(t, &client, newPropertyId, schema.PropertyRented)
}

func TestContractMoveBlockedByActiveContract(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	_, tenantId, contractId := env.newRental(t, &client)

	otherPropertyId, err := client.createProperty("Oak House", "3 Oak Rd")
	require.NoError(t, err)
	otherTenantId, err := client.createTenant("Sam Lee", "555-0177")
	require.NoError(t, err)
	_, err = client.createContract(otherPropertyId, otherTenantId, schema.ContractActive)
	require.NoError(t, err)

	err = client.updateContract(contractId, contractBody(otherPropertyId, tenantId, schema.ContractActive))
	require.ErrorIs(t, err, ErrConflict)
}

func TestContractDeleteRevertsProperty(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	propertyId, _, contractId := env.newRental(t, &client)

	_, err := client.createRent(contractId, 1500.0, "2025-02-01")
	require.NoError(t, err)
	_, err = client.createRent(contractId, 1500.0, "2025-03-01")
	require.NoError(t, err)

	err = client.deleteContract(contractId)
	require.NoError(t, err)

	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyVacant)

	_, err = client.getContract(contractId)
	require.ErrorIs(t, err, ErrNotFound)

	// Rent records die with their contract.
	rents, err := client.listRents()
	require.NoError(t, err)
	assert.Empty(t, rents)
}

func TestContractDeleteInactiveKeepsPropertyStatus(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	propertyId, tenantId, activeId := env.newRental(t, &client)

	expiredId, err := client.createContract(propertyId, tenantId, schema.ContractExpired)
	require.NoError(t, err)

	err = client.deleteContract(expiredId)
	require.NoError(t, err)

	// The active contract is untouched, so the property stays rented.
	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyRented)

	_, err = client.getContract(activeId)
	require.NoError(t, err)
}

func TestContractValidation(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")

	propertyId, err := client.createProperty("Oak House", "3 Oak Rd")
	require.NoError(t, err)
	tenantId, err := client.createTenant("Sam Lee", "555-0177")
	require.NoError(t, err)

	_, err = client.createContract(uuid.New(), tenantId, schema.ContractActive)
	require.ErrorIs(t, err, ErrBadRequest, "unknown property must be an invalid reference")

	_, err = client.createContract(propertyId, uuid.New(), schema.ContractActive)
	require.ErrorIs(t, err, ErrBadRequest, "unknown tenant must be an invalid reference")

	_, err = client.createContract(propertyId, tenantId, "signed")
	require.ErrorIs(t, err, ErrBadRequest, "unknown status must be rejected")

	body := contractBody(propertyId, tenantId, schema.ContractActive)
	delete(body, "start_date")
	err = client.Post("/contracts").Json(body).Do(nil)
	require.ErrorIs(t, err, ErrBadRequest, "missing dates must be rejected")

	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyVacant)
}

func TestContractOwnershipScoping(t *testing.T) {
	env := setupTestEnv(t)

	alice := env.newUser(t, "alice")
	bob := env.newUser(t, "bob")

	alicePropertyId, aliceTenantId, aliceContractId := env.newRental(t, &alice)

	_, err := bob.getContract(aliceContractId)
	require.ErrorIs(t, err, ErrNotFound)

	err = bob.deleteContract(aliceContractId)
	require.ErrorIs(t, err, ErrNotFound)

	// Referencing another user's property or tenant reads as an invalid
	// reference, not as a permission error.
	bobTenantId, err := bob.createTenant("Bob Tenant", "555-0123")
	require.NoError(t, err)

	_, err = bob.createContract(alicePropertyId, bobTenantId, schema.ContractActive)
	require.ErrorIs(t, err, ErrBadRequest)

	bobPropertyId, err := bob.createProperty("Bob's Flat", "2 Second Ave")
	require.NoError(t, err)

	_, err = bob.createContract(bobPropertyId, aliceTenantId, schema.ContractActive)
	require.ErrorIs(t, err, ErrBadRequest)

	// Alice's rental is untouched by any of this.
	env.checkPropertyStatus(t, &alice, alicePropertyId, schema.PropertyRented)
}

// Walks a full tenancy: move in, collect rent, move out, re-let.
func TestContractLifecycleScenario(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")

	propertyId, err := client.createProperty("Maple Court 2B", "12 Maple St")
	require.NoError(t, err)
	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyVacant)

	tenantId, err := client.createTenant("Dana Fisher", "555-0142")
	require.NoError(t, err)

	contractId, err := client.createContract(propertyId, tenantId, schema.ContractActive)
	require.NoError(t, err)
	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyRented)

	for _, payDate := range []string{"2025-01-01", "2025-02-01", "2025-03-01"} {
		_, err = client.createRent(contractId, 1500.0, payDate)
		require.NoError(t, err)
	}

	rents, err := client.listRents()
	require.NoError(t, err)
	require.Len(t, rents, 3)
	assert.Equal(t, "2025-03-01", rents[0].PayDate, "rents should be ordered by pay date descending")

	err = client.updateContract(contractId, contractBody(propertyId, tenantId, schema.ContractExpired))
	require.NoError(t, err)
	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyVacant)

	// Re-let to a new tenant.
	newTenantId, err := client.createTenant("Sam Lee", "555-0177")
	require.NoError(t, err)

	newContractId, err := client.createContract(propertyId, newTenantId, schema.ContractActive)
	require.NoError(t, err)
	env.checkPropertyStatus(t, &client, propertyId, schema.PropertyRented)

	property, err := client.getProperty(propertyId)
	require.NoError(t, err)
	require.NotNil(t, property.ContractId)
	assert.Equal(t, newContractId, *property.ContractId)
	require.NotNil(t, property.TenantName)
	assert.Equal(t, "Sam Lee", *property.TenantName)
}

func TestContractListing(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "landlord")
	_, tenantId, contractId := env.newRental(t, &client)

	otherPropertyId, err := client.createProperty("Oak House", "3 Oak Rd")
	require.NoError(t, err)
	expiredId, err := client.createContract(otherPropertyId, tenantId, schema.ContractExpired)
	require.NoError(t, err)

	var contracts []struct {
		Id     uuid.UUID `json:"id"`
		Status string    `json:"status"`
	}
	err = client.Get("/contracts").Do(&contracts)
	require.NoError(t, err)
	require.Len(t, contracts, 2)

	seen := map[uuid.UUID]string{}
	for _, c := range contracts {
		seen[c.Id] = c.Status
	}
	assert.Equal(t, schema.ContractActive, seen[contractId])
	assert.Equal(t, schema.ContractExpired, seen[expiredId])

	err = client.Get(fmt.Sprintf("/contracts/%v", uuid.New())).Do(nil)
	require.ErrorIs(t, err, ErrNotFound)
}

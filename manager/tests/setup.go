package tests

import (
	"bytes"
	"rentdesk/manager/auth"
	"rentdesk/manager/schema"
	"rentdesk/manager/services"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	portal services.Portal
	api    chi.Router
	db     *gorm.DB
}

func setupTestEnv(t *testing.T) *testEnv {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	err = db.AutoMigrate(schema.AllTables()...)
	if err != nil {
		t.Fatal(err)
	}

	secret := []byte("290zcv02ai249")

	userAuth := auth.NewBasicIdentityProvider(db, auth.NewAuditLogger(new(bytes.Buffer)), secret)

	portal := services.NewPortal(db, userAuth)

	return &testEnv{portal: portal, api: portal.Routes(), db: db}
}

func (env *testEnv) newClient() client {
	return client{api: env.api}
}

func (env *testEnv) newUser(t *testing.T, username string) client {
	c := env.newClient()
	_, err := c.register(username, username+"_password")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

// newRental seeds a property, a tenant, and an active contract between
// them, which is the starting point for most lifecycle tests.
func (env *testEnv) newRental(t *testing.T, c *client) (propertyId, tenantId, contractId uuid.UUID) {
	propertyId, err := c.createProperty("Maple Court 2B", "12 Maple St")
	if err != nil {
		t.Fatal(err)
	}

	tenantId, err = c.createTenant("Dana Fisher", "555-0142")
	if err != nil {
		t.Fatal(err)
	}

	contractId, err = c.createContract(propertyId, tenantId, schema.ContractActive)
	if err != nil {
		t.Fatal(err)
	}

	return propertyId, tenantId, contractId
}

func (env *testEnv) checkPropertyStatus(t *testing.T, c *client, propertyId uuid.UUID, status string) {
	property, err := c.getProperty(propertyId)
	if err != nil {
		t.Fatal(err)
	}
	if property.Status != status {
		t.Fatalf("expected property status %v, got %v", status, property.Status)
	}
}

package schema

import (
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrPropertyNotFound   = errors.New("property not found")
	ErrTenantNotFound     = errors.New("tenant not found")
	ErrContractNotFound   = errors.New("contract not found")
	ErrRentRecordNotFound = errors.New("rent record not found")
	ErrDbAccessFailed     = errors.New("db access failed")
)

func GetUser(userId uuid.UUID, db *gorm.DB) (User, error) {
	var user User

	result := db.First(&user, "id = ?", userId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return user, ErrUserNotFound
		}
		slog.Error("sql error in get user", "user_id", userId, "error", result.Error)
		return user, ErrDbAccessFailed
	}

	return user, nil
}

// The owner-scoped getters below are the ownership boundary: a row that exists
// but belongs to another user is reported exactly like a missing row.

func GetProperty(propertyId, ownerId uuid.UUID, db *gorm.DB) (Property, error) {
	var property Property

	result := db.First(&property, "id = ? AND owner_id = ?", propertyId, ownerId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return property, ErrPropertyNotFound
		}
		slog.Error("sql error in get property", "property_id", propertyId, "error", result.Error)
		return property, ErrDbAccessFailed
	}

	return property, nil
}

func GetTenant(tenantId, ownerId uuid.UUID, db *gorm.DB) (Tenant, error) {
	var tenant Tenant

	result := db.First(&tenant, "id = ? AND owner_id = ?", tenantId, ownerId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return tenant, ErrTenantNotFound
		}
		slog.Error("sql error in get tenant", "tenant_id", tenantId, "error", result.Error)
		return tenant, ErrDbAccessFailed
	}

	return tenant, nil
}

func GetContract(contractId, ownerId uuid.UUID, db *gorm.DB) (Contract, error) {
	var contract Contract

	result := db.First(&contract, "id = ? AND owner_id = ?", contractId, ownerId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return contract, ErrContractNotFound
		}
		slog.Error("sql error in get contract", "contract_id", contractId, "error", result.Error)
		return contract, ErrDbAccessFailed
	}

	return contract, nil
}

func GetRentRecord(rentId, ownerId uuid.UUID, db *gorm.DB) (RentRecord, error) {
	var rent RentRecord

	result := db.First(&rent, "id = ? AND owner_id = ?", rentId, ownerId)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return rent, ErrRentRecordNotFound
		}
		slog.Error("sql error in get rent record", "rent_id", rentId, "error", result.Error)
		return rent, ErrDbAccessFailed
	}

	return rent, nil
}

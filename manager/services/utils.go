package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"rentdesk/manager/schema"
	"rentdesk/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type codedError struct {
	err  error
	code int
}

func (e *codedError) Error() string {
	return e.err.Error()
}

func (e *codedError) Unwrap() error {
	return e.err
}

func CodedError(err error, code int) error {
	return &codedError{err: err, code: code}
}

func GetResponseCode(err error) int {
	var cerr *codedError
	if errors.As(err, &cerr) {
		return cerr.code
	}
	slog.Error("non coded error passed to GetResponseCode", "error", err)
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, prefix string, err error) {
	utils.WriteError(w, GetResponseCode(err), fmt.Sprintf("%v: %v", prefix, err))
}

// Reference resolution for dependent writes: a property/tenant/contract id
// that does not resolve within the caller's rows is an invalid reference,
// regardless of whether the row exists for someone else.

func resolvePropertyRef(txn *gorm.DB, propertyId, ownerId uuid.UUID) (schema.Property, error) {
	property, err := schema.GetProperty(propertyId, ownerId, txn)
	if err != nil {
		if errors.Is(err, schema.ErrPropertyNotFound) {
			return property, CodedError(fmt.Errorf("invalid property reference: %w", err), http.StatusBadRequest)
		}
		return property, CodedError(err, http.StatusInternalServerError)
	}
	return property, nil
}

func resolveTenantRef(txn *gorm.DB, tenantId, ownerId uuid.UUID) (schema.Tenant, error) {
	tenant, err := schema.GetTenant(tenantId, ownerId, txn)
	if err != nil {
		if errors.Is(err, schema.ErrTenantNotFound) {
			return tenant, CodedError(fmt.Errorf("invalid tenant reference: %w", err), http.StatusBadRequest)
		}
		return tenant, CodedError(err, http.StatusInternalServerError)
	}
	return tenant, nil
}

func resolveContractRef(txn *gorm.DB, contractId, ownerId uuid.UUID) (schema.Contract, error) {
	contract, err := schema.GetContract(contractId, ownerId, txn)
	if err != nil {
		if errors.Is(err, schema.ErrContractNotFound) {
			return contract, CodedError(fmt.Errorf("invalid contract reference: %w", err), http.StatusBadRequest)
		}
		return contract, CodedError(err, http.StatusInternalServerError)
	}
	return contract, nil
}

// setPropertyStatus is the single write path for the derived property status.
func setPropertyStatus(txn *gorm.DB, propertyId, ownerId uuid.UUID, status string) error {
	result := txn.Model(&schema.Property{}).
		Where("id = ? AND owner_id = ?", propertyId, ownerId).
		Update("status", status)
	if result.Error != nil {
		slog.Error("sql error updating property status", "property_id", propertyId, "status", status, "error", result.Error)
		return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}
	return nil
}

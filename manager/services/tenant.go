package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"rentdesk/manager/auth"
	"rentdesk/manager/schema"
	"rentdesk/utils"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TenantService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *TenantService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Route("/{tenant_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Put("/", s.Update)
		r.Delete("/", s.Delete)
	})

	return r
}

// TenantInfo joins each tenant against their active contract, if any, so
// the listing can show where a tenant currently lives.
type TenantInfo struct {
	Id               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Phone            string     `json:"phone"`
	IdCard           string     `json:"id_card"`
	EmergencyContact string     `json:"emergency_contact"`
	CreatedAt        time.Time  `json:"created_at"`
	ContractId       *uuid.UUID `json:"contract_id"`
	ContractEndDate  *string    `json:"contract_end_date"`
	PropertyName     *string    `json:"property_name"`
	PropertyAddress  *string    `json:"property_address"`
}

func (s *TenantService) tenantInfoQuery(ownerId uuid.UUID) *gorm.DB {
	return s.db.Table("tenants").
		Select("tenants.id, tenants.name, tenants.phone, tenants.id_card, tenants.emergency_contact, tenants.created_at, " +
			"c.id AS contract_id, c.end_date AS contract_end_date, p.name AS property_name, p.address AS property_address").
		Joins("LEFT JOIN contracts c ON c.tenant_id = tenants.id AND c.status = ?", schema.ContractActive).
		Joins("LEFT JOIN properties p ON p.id = c.property_id").
		Where("tenants.owner_id = ?", ownerId)
}

func (s *TenantService) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var tenants []TenantInfo
	result := s.tenantInfoQuery(user.Id).Order("tenants.created_at DESC").Scan(&tenants)
	if result.Error != nil {
		slog.Error("sql error listing tenants", "error", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "error listing tenants")
		return
	}

	utils.WriteData(w, tenants)
}

func (s *TenantService) Get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tenantId, err := utils.URLParamUUID(r, "tenant_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var tenant TenantInfo
	result := s.tenantInfoQuery(user.Id).Where("tenants.id = ?", tenantId).Scan(&tenant)
	if result.Error != nil {
		slog.Error("sql error retrieving tenant", "tenant_id", tenantId, "error", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "error retrieving tenant")
		return
	}
	if result.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, schema.ErrTenantNotFound.Error())
		return
	}

	utils.WriteData(w, tenant)
}

type tenantRequest struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	IdCard           string `json:"id_card"`
	EmergencyContact string `json:"emergency_contact"`
}

type createTenantResponse struct {
	Id uuid.UUID `json:"id"`
}

func (s *TenantService) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var params tenantRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Name == "" || params.Phone == "" {
		utils.WriteError(w, http.StatusBadRequest, "tenant name and phone are required")
		return
	}

	newTenant := schema.Tenant{
		Id:               uuid.New(),
		OwnerId:          user.Id,
		Name:             params.Name,
		Phone:            params.Phone,
		IdCard:           params.IdCard,
		EmergencyContact: params.EmergencyContact,
	}

	result := s.db.Create(&newTenant)
	if result.Error != nil {
		slog.Error("sql error creating tenant", "error", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "error creating tenant")
		return
	}

	utils.WriteDataMessage(w, createTenantResponse{Id: newTenant.Id}, "tenant created successfully")
}

func (s *TenantService) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tenantId, err := utils.URLParamUUID(r, "tenant_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var params tenantRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Name == "" || params.Phone == "" {
		utils.WriteError(w, http.StatusBadRequest, "tenant name and phone are required")
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		_, err := schema.GetTenant(tenantId, user.Id, txn)
		if err != nil {
			if errors.Is(err, schema.ErrTenantNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Model(&schema.Tenant{}).
			Where("id = ? AND owner_id = ?", tenantId, user.Id).
			Updates(map[string]interface{}{
				"name":              params.Name,
				"phone":             params.Phone,
				"id_card":           params.IdCard,
				"emergency_contact": params.EmergencyContact,
			})
		if result.Error != nil {
			slog.Error("sql error updating tenant", "tenant_id", tenantId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})
	if err != nil {
		writeError(w, "error updating tenant", err)
		return
	}

	utils.WriteMessage(w, "tenant updated successfully")
}

func (s *TenantService) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	tenantId, err := utils.URLParamUUID(r, "tenant_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		_, err := schema.GetTenant(tenantId, user.Id, txn)
		if err != nil {
			if errors.Is(err, schema.ErrTenantNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		var contracts int64
		result := txn.Model(&schema.Contract{}).
			Where("tenant_id = ? AND owner_id = ?", tenantId, user.Id).
			Count(&contracts)
		if result.Error != nil {
			slog.Error("sql error counting contracts for tenant", "tenant_id", tenantId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if contracts > 0 {
			return CodedError(fmt.Errorf("tenant is referenced by %d contract(s), delete those first", contracts), http.StatusConflict)
		}

		result = txn.Delete(&schema.Tenant{}, "id = ? AND owner_id = ?", tenantId, user.Id)
		if result.Error != nil {
			slog.Error("sql error deleting tenant", "tenant_id", tenantId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})
	if err != nil {
		writeError(w, "error deleting tenant", err)
		return
	}

	utils.WriteMessage(w, "tenant deleted successfully")
}

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

type PropertyService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *PropertyService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Route("/{property_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Put("/", s.Update)
		r.Delete("/", s.Delete)
	})

	return r
}

// PropertyInfo is the list/detail view of a property. The contract and
// tenant columns come from a left join against the active contract, so
// they are nil for vacant properties.
type PropertyInfo struct {
	Id              uuid.UUID  `json:"id"`
	Name            string     `json:"name"`
	Address         string     `json:"address"`
	Type            string     `json:"type"`
	Status          string     `json:"status"`
	MonthlyRent     float64    `json:"monthly_rent"`
	Area            float64    `json:"area"`
	Description     string     `json:"description"`
	CreatedAt       time.Time  `json:"created_at"`
	ContractId      *uuid.UUID `json:"contract_id"`
	ContractEndDate *string    `json:"contract_end_date"`
	TenantName      *string    `json:"tenant_name"`
	TenantPhone     *string    `json:"tenant_phone"`
}

func (s *PropertyService) propertyInfoQuery(ownerId uuid.UUID) *gorm.DB {
	return s.db.Table("properties").
		Select("properties.id, properties.name, properties.address, properties.type, properties.status, " +
			"properties.monthly_rent, properties.area, properties.description, properties.created_at, " +
			"c.id AS contract_id, c.end_date AS contract_end_date, t.name AS tenant_name, t.phone AS tenant_phone").
		Joins("LEFT JOIN contracts c ON c.property_id = properties.id AND c.status = ?", schema.ContractActive).
		Joins("LEFT JOIN tenants t ON t.id = c.tenant_id").
		Where("properties.owner_id = ?", ownerId)
}

func (s *PropertyService) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var properties []PropertyInfo
	result := s.propertyInfoQuery(user.Id).Order("properties.created_at DESC").Scan(&properties)
	if result.Error != nil {
		slog.Error("sql error listing properties", "error", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "error listing properties")
		return
	}

	utils.WriteData(w, properties)
}

func (s *PropertyService) Get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	propertyId, err := utils.URLParamUUID(r, "property_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var property PropertyInfo
	result := s.propertyInfoQuery(user.Id).Where("properties.id = ?", propertyId).Scan(&property)
	if result.Error != nil {
		slog.Error("sql error retrieving property", "property_id", propertyId, "error", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "error retrieving property")
		return
	}
	if result.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, schema.ErrPropertyNotFound.Error())
		return
	}

	utils.WriteData(w, property)
}

type propertyRequest struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Type        string  `json:"type"`
	MonthlyRent float64 `json:"monthly_rent"`
	Area        float64 `json:"area"`
	Description string  `json:"description"`
}

type createPropertyResponse struct {
	Id uuid.UUID `json:"id"`
}

func (s *PropertyService) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var params propertyRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Name == "" || params.Address == "" {
		utils.WriteError(w, http.StatusBadRequest, "property name and address are required")
		return
	}

	// Status is not taken from the request, new properties always start vacant.
	newProperty := schema.Property{
		Id:          uuid.New(),
		OwnerId:     user.Id,
		Name:        params.Name,
		Address:     params.Address,
		Type:        params.Type,
		Status:      schema.PropertyVacant,
		MonthlyRent: params.MonthlyRent,
		Area:        params.Area,
		Description: params.Description,
	}

	result := s.db.Create(&newProperty)
	if result.Error != nil {
		slog.Error("sql error creating property", "error", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "error creating property")
		return
	}

	utils.WriteDataMessage(w, createPropertyResponse{Id: newProperty.Id}, "property created successfully")
}

func (s *PropertyService) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	propertyId, err := utils.URLParamUUID(r, "property_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var params propertyRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.Name == "" || params.Address == "" {
		utils.WriteError(w, http.StatusBadRequest, "property name and address are required")
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		_, err := schema.GetProperty(propertyId, user.Id, txn)
		if err != nil {
			if errors.Is(err, schema.ErrPropertyNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		// Status is deliberately absent from the update set, it only changes
		// through the contract lifecycle.
		result := txn.Model(&schema.Property{}).
			Where("id = ? AND owner_id = ?", propertyId, user.Id).
			Updates(map[string]interface{}{
				"name":         params.Name,
				"address":      params.Address,
				"type":         params.Type,
				"monthly_rent": params.MonthlyRent,
				"area":         params.Area,
				"description":  params.Description,
			})
		if result.Error != nil {
			slog.Error("sql error updating property", "property_id", propertyId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})
	if err != nil {
		writeError(w, "error updating property", err)
		return
	}

	utils.WriteMessage(w, "property updated successfully")
}

func (s *PropertyService) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	propertyId, err := utils.URLParamUUID(r, "property_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		_, err := schema.GetProperty(propertyId, user.Id, txn)
		if err != nil {
			if errors.Is(err, schema.ErrPropertyNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		var contracts int64
		result := txn.Model(&schema.Contract{}).
			Where("property_id = ? AND owner_id = ?", propertyId, user.Id).
			Count(&contracts)
		if result.Error != nil {
			slog.Error("sql error counting contracts for property", "property_id", propertyId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}
		if contracts > 0 {
			return CodedError(fmt.Errorf("property is referenced by %d contract(s), delete those first", contracts), http.StatusConflict)
		}

		result = txn.Delete(&schema.Property{}, "id = ? AND owner_id = ?", propertyId, user.Id)
		if result.Error != nil {
			slog.Error("sql error deleting property", "property_id", propertyId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})
	if err != nil {
		writeError(w, "error deleting property", err)
		return
	}

	utils.WriteMessage(w, "property deleted successfully")
}

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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	contractCreateMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "contract_create", Help: "Contract creations"})
	contractUpdateMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "contract_update", Help: "Contract updates"})
	contractDeleteMetric = promauto.NewSummary(prometheus.SummaryOpts{Name: "contract_delete", Help: "Contract deletions"})
)

// ContractService owns the contract lifecycle. All writes run in a
// transaction so that a contract row and the status of the property it
// references never diverge: a property is rented exactly when an active
// contract points at it.
type ContractService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *ContractService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Route("/{contract_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Put("/", s.Update)
		r.Delete("/", s.Delete)
	})

	return r
}

type ContractInfo struct {
	Id              uuid.UUID `json:"id"`
	PropertyId      uuid.UUID `json:"property_id"`
	TenantId        uuid.UUID `json:"tenant_id"`
	ContractImage   string    `json:"contract_image"`
	StartDate       string    `json:"start_date"`
	EndDate         string    `json:"end_date"`
	MonthlyRent     float64   `json:"monthly_rent"`
	Deposit         float64   `json:"deposit"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	PropertyName    *string   `json:"property_name"`
	PropertyAddress *string   `json:"property_address"`
	TenantName      *string   `json:"tenant_name"`
	TenantPhone     *string   `json:"tenant_phone"`
}

func (s *ContractService) contractInfoQuery(ownerId uuid.UUID) *gorm.DB {
	return s.db.Table("contracts").
		Select("contracts.id, contracts.property_id, contracts.tenant_id, contracts.contract_image, " +
			"contracts.start_date, contracts.end_date, contracts.monthly_rent, contracts.deposit, " +
			"contracts.status, contracts.created_at, " +
			"p.name AS property_name, p.address AS property_address, t.name AS tenant_name, t.phone AS tenant_phone").
		Joins("LEFT JOIN properties p ON p.id = contracts.property_id").
		Joins("LEFT JOIN tenants t ON t.id = contracts.tenant_id").
		Where("contracts.owner_id = ?", ownerId)
}

func (s *ContractService) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var contracts []ContractInfo
	result := s.contractInfoQuery(user.Id).Order("contracts.created_at DESC").Scan(&contracts)
	if result.Error != nil {
		slog.Error("sql error listing contracts", "error", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "error listing contracts")
		return
	}

	utils.WriteData(w, contracts)
}

func (s *ContractService) Get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contractId, err := utils.URLParamUUID(r, "contract_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var contract ContractInfo
	result := s.contractInfoQuery(user.Id).Where("contracts.id = ?", contractId).Scan(&contract)
	if result.Error != nil {
		slog.Error("sql error retrieving contract", "contract_id", contractId, "error", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "error retrieving contract")
		return
	}
	if result.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, schema.ErrContractNotFound.Error())
		return
	}

	utils.WriteData(w, contract)
}

type contractRequest struct {
	PropertyId    uuid.UUID `json:"property_id"`
	TenantId      uuid.UUID `json:"tenant_id"`
	ContractImage string    `json:"contract_image"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	MonthlyRent   float64   `json:"monthly_rent"`
	Deposit       float64   `json:"deposit"`
	Status        string    `json:"status"`
}

func validContractStatus(status string) bool {
	switch status {
	case schema.ContractActive, schema.ContractTerminated, schema.ContractExpired:
		return true
	}
	return false
}

// checkNoOtherActiveContract enforces that at most one active contract
// references a property at any time.
func checkNoOtherActiveContract(txn *gorm.DB, propertyId, ownerId, excludeId uuid.UUID) error {
	query := txn.Model(&schema.Contract{}).
		Where("property_id = ? AND owner_id = ? AND status = ?", propertyId, ownerId, schema.ContractActive)
	if excludeId != uuid.Nil {
		query = query.Where("id <> ?", excludeId)
	}

	var active int64
	result := query.Count(&active)
	if result.Error != nil {
		slog.Error("sql error counting active contracts for property", "property_id", propertyId, "error", result.Error)
		return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
	}
	if active > 0 {
		return CodedError(fmt.Errorf("property already has an active contract"), http.StatusConflict)
	}

	return nil
}

type createContractResponse struct {
	Id uuid.UUID `json:"id"`
}

func (s *ContractService) Create(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(contractCreateMetric)
	defer timer.ObserveDuration()

	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var params contractRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.PropertyId == uuid.Nil || params.TenantId == uuid.Nil {
		utils.WriteError(w, http.StatusBadRequest, "property_id and tenant_id are required")
		return
	}
	if params.StartDate == "" || params.EndDate == "" {
		utils.WriteError(w, http.StatusBadRequest, "start_date and end_date are required")
		return
	}

	status := params.Status
	if status == "" {
		status = schema.ContractActive
	}
	if !validContractStatus(status) {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid contract status '%v'", status))
		return
	}

	newContract := schema.Contract{
		Id:            uuid.New(),
		OwnerId:       user.Id,
		PropertyId:    params.PropertyId,
		TenantId:      params.TenantId,
		ContractImage: params.ContractImage,
		StartDate:     params.StartDate,
		EndDate:       params.EndDate,
		MonthlyRent:   params.MonthlyRent,
		Deposit:       params.Deposit,
		Status:        status,
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := resolvePropertyRef(txn, params.PropertyId, user.Id); err != nil {
			return err
		}
		if _, err := resolveTenantRef(txn, params.TenantId, user.Id); err != nil {
			return err
		}

		if status == schema.ContractActive {
			if err := checkNoOtherActiveContract(txn, params.PropertyId, user.Id, uuid.Nil); err != nil {
				return err
			}
		}

		result := txn.Create(&newContract)
		if result.Error != nil {
			slog.Error("sql error creating contract", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		if status == schema.ContractActive {
			return setPropertyStatus(txn, params.PropertyId, user.Id, schema.PropertyRented)
		}

		return nil
	})
	if err != nil {
		writeError(w, "error creating contract", err)
		return
	}

	utils.WriteDataMessage(w, createContractResponse{Id: newContract.Id}, "contract created successfully")
}

func (s *ContractService) Update(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(contractUpdateMetric)
	defer timer.ObserveDuration()

	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contractId, err := utils.URLParamUUID(r, "contract_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var params contractRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.PropertyId == uuid.Nil || params.TenantId == uuid.Nil {
		utils.WriteError(w, http.StatusBadRequest, "property_id and tenant_id are required")
		return
	}
	if !validContractStatus(params.Status) {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid contract status '%v'", params.Status))
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		prior, err := schema.GetContract(contractId, user.Id, txn)
		if err != nil {
			if errors.Is(err, schema.ErrContractNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		if _, err := resolvePropertyRef(txn, params.PropertyId, user.Id); err != nil {
			return err
		}
		if _, err := resolveTenantRef(txn, params.TenantId, user.Id); err != nil {
			return err
		}

		if params.Status == schema.ContractActive {
			if err := checkNoOtherActiveContract(txn, params.PropertyId, user.Id, contractId); err != nil {
				return err
			}
		}

		result := txn.Model(&schema.Contract{}).
			Where("id = ? AND owner_id = ?", contractId, user.Id).
			Updates(map[string]interface{}{
				"property_id":    params.PropertyId,
				"tenant_id":      params.TenantId,
				"contract_image": params.ContractImage,
				"start_date":     params.StartDate,
				"end_date":       params.EndDate,
				"monthly_rent":   params.MonthlyRent,
				"deposit":        params.Deposit,
				"status":         params.Status,
			})
		if result.Error != nil {
			slog.Error("sql error updating contract", "contract_id", contractId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		wasActive := prior.Status == schema.ContractActive
		isActive := params.Status == schema.ContractActive

		switch {
		case !wasActive && isActive:
			return setPropertyStatus(txn, params.PropertyId, user.Id, schema.PropertyRented)
		case wasActive && !isActive:
			return setPropertyStatus(txn, prior.PropertyId, user.Id, schema.PropertyVacant)
		case wasActive && isActive && prior.PropertyId != params.PropertyId:
			// The contract moved to a different property while staying
			// active, release the old one before renting the new one.
			if err := setPropertyStatus(txn, prior.PropertyId, user.Id, schema.PropertyVacant); err != nil {
				return err
			}
			return setPropertyStatus(txn, params.PropertyId, user.Id, schema.PropertyRented)
		}

		return nil
	})
	if err != nil {
		writeError(w, "error updating contract", err)
		return
	}

	utils.WriteMessage(w, "contract updated successfully")
}

func (s *ContractService) Delete(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(contractDeleteMetric)
	defer timer.ObserveDuration()

	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	contractId, err := utils.URLParamUUID(r, "contract_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		prior, err := schema.GetContract(contractId, user.Id, txn)
		if err != nil {
			if errors.Is(err, schema.ErrContractNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Delete(&schema.RentRecord{}, "contract_id = ? AND owner_id = ?", contractId, user.Id)
		if result.Error != nil {
			slog.Error("sql error deleting rent records for contract", "contract_id", contractId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		result = txn.Delete(&schema.Contract{}, "id = ? AND owner_id = ?", contractId, user.Id)
		if result.Error != nil {
			slog.Error("sql error deleting contract", "contract_id", contractId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		if prior.Status == schema.ContractActive {
			return setPropertyStatus(txn, prior.PropertyId, user.Id, schema.PropertyVacant)
		}

		return nil
	})
	if err != nil {
		writeError(w, "error deleting contract", err)
		return
	}

	utils.WriteMessage(w, "contract deleted successfully")
}

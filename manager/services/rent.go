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

type RentService struct {
	db       *gorm.DB
	userAuth auth.IdentityProvider
}

func (s *RentService) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(s.userAuth.AuthMiddleware()...)

	r.Get("/", s.List)
	r.Post("/", s.Create)

	r.Route("/{rent_id}", func(r chi.Router) {
		r.Get("/", s.Get)
		r.Put("/", s.Update)
		r.Delete("/", s.Delete)
	})

	return r
}

// RentRecordInfo joins each payment against its contract, property and
// tenant so the listing reads like a ledger.
type RentRecordInfo struct {
	Id              uuid.UUID `json:"id"`
	ContractId      uuid.UUID `json:"contract_id"`
	Amount          float64   `json:"amount"`
	PayDate         string    `json:"pay_date"`
	Status          string    `json:"status"`
	Remark          string    `json:"remark"`
	CreatedAt       time.Time `json:"created_at"`
	StartDate       *string   `json:"start_date"`
	EndDate         *string   `json:"end_date"`
	MonthlyRent     *float64  `json:"monthly_rent"`
	PropertyName    *string   `json:"property_name"`
	PropertyAddress *string   `json:"property_address"`
	TenantName      *string   `json:"tenant_name"`
}

func (s *RentService) rentInfoQuery(ownerId uuid.UUID) *gorm.DB {
	return s.db.Table("rent_records").
		Select("rent_records.id, rent_records.contract_id, rent_records.amount, rent_records.pay_date, " +
			"rent_records.status, rent_records.remark, rent_records.created_at, " +
			"c.start_date, c.end_date, c.monthly_rent, " +
			"p.name AS property_name, p.address AS property_address, t.name AS tenant_name").
		Joins("LEFT JOIN contracts c ON c.id = rent_records.contract_id").
		Joins("LEFT JOIN properties p ON p.id = c.property_id").
		Joins("LEFT JOIN tenants t ON t.id = c.tenant_id").
		Where("rent_records.owner_id = ?", ownerId)
}

func (s *RentService) List(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var records []RentRecordInfo
	result := s.rentInfoQuery(user.Id).Order("rent_records.pay_date DESC").Scan(&records)
	if result.Error != nil {
		slog.Error("sql error listing rent records", "error", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "error listing rent records")
		return
	}

	utils.WriteData(w, records)
}

func (s *RentService) Get(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rentId, err := utils.URLParamUUID(r, "rent_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var record RentRecordInfo
	result := s.rentInfoQuery(user.Id).Where("rent_records.id = ?", rentId).Scan(&record)
	if result.Error != nil {
		slog.Error("sql error retrieving rent record", "rent_id", rentId, "error", result.Error)
		utils.WriteError(w, http.StatusInternalServerError, "error retrieving rent record")
		return
	}
	if result.RowsAffected == 0 {
		utils.WriteError(w, http.StatusNotFound, schema.ErrRentRecordNotFound.Error())
		return
	}

	utils.WriteData(w, record)
}

type rentRequest struct {
	ContractId uuid.UUID `json:"contract_id"`
	Amount     float64   `json:"amount"`
	PayDate    string    `json:"pay_date"`
	Status     string    `json:"status"`
	Remark     string    `json:"remark"`
}

func validRentStatus(status string) bool {
	return status == schema.RentPaid || status == schema.RentPending
}

type createRentResponse struct {
	Id uuid.UUID `json:"id"`
}

func (s *RentService) Create(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var params rentRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.ContractId == uuid.Nil {
		utils.WriteError(w, http.StatusBadRequest, "contract_id is required")
		return
	}
	if params.Amount <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if params.PayDate == "" {
		utils.WriteError(w, http.StatusBadRequest, "pay_date is required")
		return
	}

	status := params.Status
	if status == "" {
		status = schema.RentPaid
	}
	if !validRentStatus(status) {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid rent status '%v'", status))
		return
	}

	newRecord := schema.RentRecord{
		Id:         uuid.New(),
		OwnerId:    user.Id,
		ContractId: params.ContractId,
		Amount:     params.Amount,
		PayDate:    params.PayDate,
		Status:     status,
		Remark:     params.Remark,
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		if _, err := resolveContractRef(txn, params.ContractId, user.Id); err != nil {
			return err
		}

		result := txn.Create(&newRecord)
		if result.Error != nil {
			slog.Error("sql error creating rent record", "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})
	if err != nil {
		writeError(w, "error creating rent record", err)
		return
	}

	utils.WriteDataMessage(w, createRentResponse{Id: newRecord.Id}, "rent record created successfully")
}

func (s *RentService) Update(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rentId, err := utils.URLParamUUID(r, "rent_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	var params rentRequest
	if !utils.ParseRequestBody(w, r, &params) {
		return
	}

	if params.ContractId == uuid.Nil {
		utils.WriteError(w, http.StatusBadRequest, "contract_id is required")
		return
	}
	if params.Amount <= 0 {
		utils.WriteError(w, http.StatusBadRequest, "amount must be positive")
		return
	}
	if !validRentStatus(params.Status) {
		utils.WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid rent status '%v'", params.Status))
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		_, err := schema.GetRentRecord(rentId, user.Id, txn)
		if err != nil {
			if errors.Is(err, schema.ErrRentRecordNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		if _, err := resolveContractRef(txn, params.ContractId, user.Id); err != nil {
			return err
		}

		result := txn.Model(&schema.RentRecord{}).
			Where("id = ? AND owner_id = ?", rentId, user.Id).
			Updates(map[string]interface{}{
				"contract_id": params.ContractId,
				"amount":      params.Amount,
				"pay_date":    params.PayDate,
				"status":      params.Status,
				"remark":      params.Remark,
			})
		if result.Error != nil {
			slog.Error("sql error updating rent record", "rent_id", rentId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})
	if err != nil {
		writeError(w, "error updating rent record", err)
		return
	}

	utils.WriteMessage(w, "rent record updated successfully")
}

func (s *RentService) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := auth.UserFromContext(r)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	rentId, err := utils.URLParamUUID(r, "rent_id")
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	err = s.db.Transaction(func(txn *gorm.DB) error {
		_, err := schema.GetRentRecord(rentId, user.Id, txn)
		if err != nil {
			if errors.Is(err, schema.ErrRentRecordNotFound) {
				return CodedError(err, http.StatusNotFound)
			}
			return CodedError(err, http.StatusInternalServerError)
		}

		result := txn.Delete(&schema.RentRecord{}, "id = ? AND owner_id = ?", rentId, user.Id)
		if result.Error != nil {
			slog.Error("sql error deleting rent record", "rent_id", rentId, "error", result.Error)
			return CodedError(schema.ErrDbAccessFailed, http.StatusInternalServerError)
		}

		return nil
	})
	if err != nil {
		writeError(w, "error deleting rent record", err)
		return
	}

	utils.WriteMessage(w, "rent record deleted successfully")
}

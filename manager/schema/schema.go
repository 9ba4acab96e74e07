package schema

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Property status is derived from the contract lifecycle: rented iff an
// active contract references the property. Only the contract service writes it.
const (
	PropertyVacant = "vacant"
	PropertyRented = "rented"
)

const (
	ContractActive     = "active"
	ContractTerminated = "terminated"
	ContractExpired    = "expired"
)

const (
	RentPaid    = "paid"
	RentPending = "pending"
)

type User struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	Username string `gorm:"unique;size:50;not null"`
	Password []byte

	Role string `gorm:"size:20;not null;default:'user'"`

	CreatedAt time.Time
}

type Property struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	OwnerId uuid.UUID `gorm:"type:uuid;not null;index"`
	Owner   *User

	Name        string `gorm:"size:100;not null"`
	Address     string `gorm:"size:200"`
	Type        string `gorm:"size:50"`
	Status      string `gorm:"size:20;not null;default:'vacant'"`
	MonthlyRent float64
	Area        float64
	Description string

	CreatedAt time.Time
}

type Tenant struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	OwnerId uuid.UUID `gorm:"type:uuid;not null;index"`
	Owner   *User

	Name             string `gorm:"size:100;not null"`
	Phone            string `gorm:"size:30"`
	IdCard           string `gorm:"size:30"`
	EmergencyContact string `gorm:"size:100"`

	CreatedAt time.Time
}

type Contract struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	OwnerId uuid.UUID `gorm:"type:uuid;not null;index"`
	Owner   *User

	PropertyId uuid.UUID `gorm:"type:uuid;not null;index"`
	Property   *Property

	TenantId uuid.UUID `gorm:"type:uuid;not null;index"`
	Tenant   *Tenant

	// Base64 data URI, stored inline like the rest of the contract record.
	ContractImage string

	StartDate   string `gorm:"size:10"`
	EndDate     string `gorm:"size:10"`
	MonthlyRent float64
	Deposit     float64

	Status string `gorm:"size:20;not null;default:'active'"`

	CreatedAt time.Time
}

type RentRecord struct {
	Id uuid.UUID `gorm:"type:uuid;primaryKey"`

	OwnerId uuid.UUID `gorm:"type:uuid;not null;index"`
	Owner   *User

	ContractId uuid.UUID `gorm:"type:uuid;not null;index"`
	Contract   *Contract

	Amount  float64
	PayDate string `gorm:"size:10"`
	Status  string `gorm:"size:20;not null;default:'paid'"`
	Remark  string `gorm:"size:200"`

	CreatedAt time.Time
}

func AllTables() []interface{} {
	return []interface{}{
		&User{}, &Property{}, &Tenant{}, &Contract{}, &RentRecord{},
	}
}

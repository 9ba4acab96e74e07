package services

import (
	"log"
	"net/http"
	"os"
	"rentdesk/manager/auth"
	"rentdesk/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// Portal aggregates the per-entity services behind a single router.
type Portal struct {
	user     UserService
	property PropertyService
	tenant   TenantService
	contract ContractService
	rent     RentService
	upload   UploadService

	db *gorm.DB
}

func NewPortal(db *gorm.DB, userAuth auth.IdentityProvider) Portal {
	return Portal{
		user:     UserService{db: db, userAuth: userAuth},
		property: PropertyService{db: db, userAuth: userAuth},
		tenant:   TenantService{db: db, userAuth: userAuth},
		contract: ContractService{db: db, userAuth: userAuth},
		rent:     RentService{db: db, userAuth: userAuth},
		upload:   UploadService{userAuth: userAuth},
		db:       db,
	}
}

func (p *Portal) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLogger(&middleware.DefaultLogFormatter{
		Logger: log.New(os.Stderr, "", log.LstdFlags), NoColor: false,
	}))

	r.Mount("/users", p.user.Routes())
	r.Mount("/properties", p.property.Routes())
	r.Mount("/tenants", p.tenant.Routes())
	r.Mount("/contracts", p.contract.Routes())
	r.Mount("/rents", p.rent.Routes())
	r.Mount("/upload", p.upload.Routes())

	r.Get("/routes", p.RouteList)
	r.Get("/health", p.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

func (p *Portal) Health(w http.ResponseWriter, r *http.Request) {
	sqlDb, err := p.db.DB()
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "error accessing database handle")
		return
	}
	if err := sqlDb.Ping(); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "database is unreachable")
		return
	}

	utils.WriteMessage(w, "ok")
}

type routeInfo struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	Description string `json:"description"`
}

func (p *Portal) RouteList(w http.ResponseWriter, r *http.Request) {
	routes := []routeInfo{
		{Method: "POST", Path: "/users/register", Description: "register a new account"},
		{Method: "POST", Path: "/users/login", Description: "log in and obtain a token"},
		{Method: "POST", Path: "/users/init-admin", Description: "create the default admin account"},
		{Method: "GET", Path: "/users/me", Description: "current account details"},
		{Method: "GET", Path: "/users/token", Description: "current token expiration"},
		{Method: "PUT", Path: "/users/password", Description: "change the current account password"},
		{Method: "GET", Path: "/properties", Description: "list properties with active contract details"},
		{Method: "POST", Path: "/properties", Description: "create a property"},
		{Method: "GET", Path: "/properties/{property_id}", Description: "property details"},
		{Method: "PUT", Path: "/properties/{property_id}", Description: "update a property"},
		{Method: "DELETE", Path: "/properties/{property_id}", Description: "delete a property"},
		{Method: "GET", Path: "/tenants", Description: "list tenants with active contract details"},
		{Method: "POST", Path: "/tenants", Description: "create a tenant"},
		{Method: "GET", Path: "/tenants/{tenant_id}", Description: "tenant details"},
		{Method: "PUT", Path: "/tenants/{tenant_id}", Description: "update a tenant"},
		{Method: "DELETE", Path: "/tenants/{tenant_id}", Description: "delete a tenant"},
		{Method: "GET", Path: "/contracts", Description: "list contracts with property and tenant details"},
		{Method: "POST", Path: "/contracts", Description: "create a contract"},
		{Method: "GET", Path: "/contracts/{contract_id}", Description: "contract details"},
		{Method: "PUT", Path: "/contracts/{contract_id}", Description: "update a contract"},
		{Method: "DELETE", Path: "/contracts/{contract_id}", Description: "delete a contract and its rent records"},
		{Method: "GET", Path: "/rents", Description: "list rent records ordered by pay date"},
		{Method: "POST", Path: "/rents", Description: "create a rent record"},
		{Method: "GET", Path: "/rents/{rent_id}", Description: "rent record details"},
		{Method: "PUT", Path: "/rents/{rent_id}", Description: "update a rent record"},
		{Method: "DELETE", Path: "/rents/{rent_id}", Description: "delete a rent record"},
		{Method: "POST", Path: "/upload/contract", Description: "upload a contract image"},
		{Method: "GET", Path: "/routes", Description: "this listing"},
		{Method: "GET", Path: "/health", Description: "service health check"},
		{Method: "GET", Path: "/metrics", Description: "prometheus metrics"},
	}

	utils.WriteData(w, routes)
}

package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"rentdesk/manager/services"

	"github.com/google/uuid"
)

// RentdeskClient is a typed client for the rentdesk http api. It is
// used by external tooling and smoke tests against a running server.
type RentdeskClient struct {
	BaseClient
	userId string
}

func New(baseUrl string) *RentdeskClient {
	return &RentdeskClient{BaseClient: BaseClient{baseUrl: baseUrl}}
}

type authResult struct {
	User  services.UserRecord `json:"user"`
	Token string              `json:"token"`
}

func (c *RentdeskClient) Register(username, password string) error {
	body := map[string]string{"username": username, "password": password}

	var res authResult
	err := c.Post("/api/users/register").Json(body).Do(&res)
	if err != nil {
		return err
	}

	c.authToken = res.Token
	c.userId = res.User.Id.String()

	return nil
}

func (c *RentdeskClient) Login(username, password string) error {
	body := map[string]string{"username": username, "password": password}

	var res authResult
	err := c.Post("/api/users/login").Json(body).Do(&res)
	if err != nil {
		return err
	}

	c.authToken = res.Token
	c.userId = res.User.Id.String()

	return nil
}

func (c *RentdeskClient) UserId() string {
	return c.userId
}

func (c *RentdeskClient) Me() (services.UserRecord, error) {
	var info services.UserRecord
	err := c.Get("/api/users/me").Do(&info)
	return info, err
}

func (c *RentdeskClient) ChangePassword(oldPassword, newPassword string) error {
	body := map[string]string{"old_password": oldPassword, "new_password": newPassword}
	return c.Put("/api/users/password").Json(body).Do(nil)
}

type idResult struct {
	Id uuid.UUID `json:"id"`
}

type PropertyArgs struct {
	Name        string  `json:"name"`
	Address     string  `json:"address"`
	Type        string  `json:"type"`
	MonthlyRent float64 `json:"monthly_rent"`
	Area        float64 `json:"area"`
	Description string  `json:"description"`
}

func (c *RentdeskClient) CreateProperty(args PropertyArgs) (uuid.UUID, error) {
	var res idResult
	err := c.Post("/api/properties").Json(args).Do(&res)
	return res.Id, err
}

func (c *RentdeskClient) GetProperty(id uuid.UUID) (services.PropertyInfo, error) {
	var info services.PropertyInfo
	err := c.Get(fmt.Sprintf("/api/properties/%v", id)).Do(&info)
	return info, err
}

func (c *RentdeskClient) ListProperties() ([]services.PropertyInfo, error) {
	var infos []services.PropertyInfo
	err := c.Get("/api/properties").Do(&infos)
	return infos, err
}

func (c *RentdeskClient) UpdateProperty(id uuid.UUID, args PropertyArgs) error {
	return c.Put(fmt.Sprintf("/api/properties/%v", id)).Json(args).Do(nil)
}

func (c *RentdeskClient) DeleteProperty(id uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/properties/%v", id)).Do(nil)
}

type TenantArgs struct {
	Name             string `json:"name"`
	Phone            string `json:"phone"`
	IdCard           string `json:"id_card"`
	EmergencyContact string `json:"emergency_contact"`
}

func (c *RentdeskClient) CreateTenant(args TenantArgs) (uuid.UUID, error) {
	var res idResult
	err := c.Post("/api/tenants").Json(args).Do(&res)
	return res.Id, err
}

func (c *RentdeskClient) GetTenant(id uuid.UUID) (services.TenantInfo, error) {
	var info services.TenantInfo
	err := c.Get(fmt.Sprintf("/api/tenants/%v", id)).Do(&info)
	return info, err
}

func (c *RentdeskClient) ListTenants() ([]services.TenantInfo, error) {
	var infos []services.TenantInfo
	err := c.Get("/api/tenants").Do(&infos)
	return infos, err
}

func (c *RentdeskClient) UpdateTenant(id uuid.UUID, args TenantArgs) error {
	return c.Put(fmt.Sprintf("/api/tenants/%v", id)).Json(args).Do(nil)
}

func (c *RentdeskClient) DeleteTenant(id uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/tenants/%v", id)).Do(nil)
}

type ContractArgs struct {
	PropertyId    uuid.UUID `json:"property_id"`
	TenantId      uuid.UUID `json:"tenant_id"`
	ContractImage string    `json:"contract_image"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	MonthlyRent   float64   `json:"monthly_rent"`
	Deposit       float64   `json:"deposit"`
	Status        string    `json:"status"`
}

func (c *RentdeskClient) CreateContract(args ContractArgs) (uuid.UUID, error) {
	var res idResult
	err := c.Post("/api/contracts").Json(args).Do(&res)
	return res.Id, err
}

func (c *RentdeskClient) GetContract(id uuid.UUID) (services.ContractInfo, error) {
	var info services.ContractInfo
	err := c.Get(fmt.Sprintf("/api/contracts/%v", id)).Do(&info)
	return info, err
}

func (c *RentdeskClient) ListContracts() ([]services.ContractInfo, error) {
	var infos []services.ContractInfo
	err := c.Get("/api/contracts").Do(&infos)
	return infos, err
}

func (c *RentdeskClient) UpdateContract(id uuid.UUID, args ContractArgs) error {
	return c.Put(fmt.Sprintf("/api/contracts/%v", id)).Json(args).Do(nil)
}

func (c *RentdeskClient) DeleteContract(id uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/contracts/%v", id)).Do(nil)
}

type RentArgs struct {
	ContractId uuid.UUID `json:"contract_id"`
	Amount     float64   `json:"amount"`
	PayDate    string    `json:"pay_date"`
	Status     string    `json:"status"`
	Remark     string    `json:"remark"`
}

func (c *RentdeskClient) CreateRent(args RentArgs) (uuid.UUID, error) {
	var res idResult
	err := c.Post("/api/rents").Json(args).Do(&res)
	return res.Id, err
}

func (c *RentdeskClient) ListRents() ([]services.RentRecordInfo, error) {
	var infos []services.RentRecordInfo
	err := c.Get("/api/rents").Do(&infos)
	return infos, err
}

func (c *RentdeskClient) UpdateRent(id uuid.UUID, args RentArgs) error {
	return c.Put(fmt.Sprintf("/api/rents/%v", id)).Json(args).Do(nil)
}

func (c *RentdeskClient) DeleteRent(id uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/api/rents/%v", id)).Do(nil)
}

type UploadResult struct {
	Image    string `json:"image"`
	Filename string `json:"filename"`
}

// UploadContractImage uploads a local image file and returns the data
// uri to store on a contract.
func (c *RentdeskClient) UploadContractImage(path string) (UploadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return UploadResult{}, fmt.Errorf("unable to open file %v: %w", path, err)
	}
	defer file.Close()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("contract", filepath.Base(path))
	if err != nil {
		return UploadResult{}, fmt.Errorf("error creating request part: %w", err)
	}

	if _, err := io.Copy(part, file); err != nil {
		return UploadResult{}, fmt.Errorf("error writing to multipart request: %w", err)
	}

	if err := writer.Close(); err != nil {
		return UploadResult{}, fmt.Errorf("error finalizing multipart request: %w", err)
	}

	var res UploadResult
	err = c.Post("/api/upload/contract").
		Header("Content-Type", writer.FormDataContentType()).
		Body(body).
		Do(&res)

	return res, err
}

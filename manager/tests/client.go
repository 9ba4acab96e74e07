package tests

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"rentdesk/manager/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrConflict     = errors.New("conflict")
)

// apiResponse mirrors the wire envelope so tests can decode the data
// field into whatever shape the endpoint returns.
type apiResponse struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type httpTestRequest struct {
	api http.Handler

	method   string
	endpoint string
	headers  map[string]string
	json     interface{}
	body     io.Reader
}

func newHttpTestRequest(api http.Handler, method, endpoint string) *httpTestRequest {
	return &httpTestRequest{
		api:      api,
		method:   method,
		endpoint: endpoint,
		headers:  nil,
		json:     nil,
		body:     nil,
	}
}

func (r *httpTestRequest) Header(key, value string) *httpTestRequest {
	if r.headers == nil {
		r.headers = make(map[string]string)
	}
	r.headers[key] = value
	return r
}

func (r *httpTestRequest) Auth(token string) *httpTestRequest {
	return r.Header("Authorization", fmt.Sprintf("Bearer %v", token))
}

func (r *httpTestRequest) Json(data interface{}) *httpTestRequest {
	r.json = data
	return r
}

func (r *httpTestRequest) Body(body io.Reader) *httpTestRequest {
	r.body = body
	return r
}

func statusError(status int) error {
	switch status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return ErrBadRequest
	case http.StatusConflict:
		return ErrConflict
	}
	return nil
}

// response data will be parsed into result, passing nil indicates that no result is expected.
func (r *httpTestRequest) Do(result interface{}) error {
	if r.json != nil {
		body := new(bytes.Buffer)
		err := json.NewEncoder(body).Encode(r.json)
		if err != nil {
			return fmt.Errorf("error encoding json body for endpoint %v: %w", r.endpoint, err)
		}
		r.body = body
	}

	req := httptest.NewRequest(r.method, r.endpoint, r.body)
	if r.headers != nil {
		for k, v := range r.headers {
			req.Header.Add(k, v)
		}
	}

	w := httptest.NewRecorder()

	r.api.ServeHTTP(w, req)

	res := w.Result()
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		if err := statusError(res.StatusCode); err != nil {
			return fmt.Errorf("%w: %v", err, w.Body.String())
		}
		return fmt.Errorf("%v request to endpoint %v returned status %d, content '%v'", r.method, r.endpoint, res.StatusCode, w.Body.String())
	}

	var envelope apiResponse
	err := json.NewDecoder(res.Body).Decode(&envelope)
	if err != nil {
		return fmt.Errorf("error parsing %v response from endpoint %v: %w", r.method, r.endpoint, err)
	}
	if envelope.Code != 0 {
		return fmt.Errorf("endpoint %v returned error envelope: %v", r.endpoint, envelope.Message)
	}

	if result != nil {
		err := json.Unmarshal(envelope.Data, result)
		if err != nil {
			return fmt.Errorf("error parsing %v data from endpoint %v: %w", r.method, r.endpoint, err)
		}
	}

	return nil
}

type client struct {
	api       chi.Router
	authToken string
	userId    string
}

func (c *client) Get(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "GET", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Post(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "POST", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Put(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "PUT", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

func (c *client) Delete(endpoint string) *httpTestRequest {
	r := newHttpTestRequest(c.api, "DELETE", endpoint)
	if c.authToken != "" {
		return r.Auth(c.authToken)
	}
	return r
}

type loginInfo struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResult struct {
	User  services.UserRecord `json:"user"`
	Token string              `json:"token"`
}

func (c *client) register(username, password string) (loginInfo, error) {
	var res authResult
	err := c.Post("/users/register").Json(map[string]string{"username": username, "password": password}).Do(&res)
	if err != nil {
		return loginInfo{}, err
	}

	c.authToken = res.Token
	c.userId = res.User.Id.String()

	return loginInfo{Username: username, Password: password}, nil
}

func (c *client) login(login loginInfo) error {
	var res authResult
	err := c.Post("/users/login").Json(login).Do(&res)
	if err != nil {
		return err
	}

	c.authToken = res.Token
	c.userId = res.User.Id.String()

	return nil
}

func (c *client) userInfo() (services.UserRecord, error) {
	var info services.UserRecord
	err := c.Get("/users/me").Do(&info)
	return info, err
}

type idResult struct {
	Id uuid.UUID `json:"id"`
}

func (c *client) createProperty(name, address string) (uuid.UUID, error) {
	body := map[string]interface{}{
		"name": name, "address": address, "type": "apartment", "monthly_rent": 1500.0, "area": 65.0,
	}

	var res idResult
	err := c.Post("/properties").Json(body).Do(&res)
	return res.Id, err
}

func (c *client) getProperty(id uuid.UUID) (services.PropertyInfo, error) {
	var info services.PropertyInfo
	err := c.Get(fmt.Sprintf("/properties/%v", id)).Do(&info)
	return info, err
}

func (c *client) listProperties() ([]services.PropertyInfo, error) {
	var infos []services.PropertyInfo
	err := c.Get("/properties").Do(&infos)
	return infos, err
}

func (c *client) createTenant(name, phone string) (uuid.UUID, error) {
	body := map[string]string{"name": name, "phone": phone}

	var res idResult
	err := c.Post("/tenants").Json(body).Do(&res)
	return res.Id, err
}

func (c *client) getTenant(id uuid.UUID) (services.TenantInfo, error) {
	var info services.TenantInfo
	err := c.Get(fmt.Sprintf("/tenants/%v", id)).Do(&info)
	return info, err
}

func contractBody(propertyId, tenantId uuid.UUID, status string) map[string]interface{} {
	return map[string]interface{}{
		"property_id":  propertyId,
		"tenant_id":    tenantId,
		"start_date":   "2025-01-01",
		"end_date":     "2025-12-31",
		"monthly_rent": 1500.0,
		"deposit":      3000.0,
		"status":       status,
	}
}

func (c *client) createContract(propertyId, tenantId uuid.UUID, status string) (uuid.UUID, error) {
	var res idResult
	err := c.Post("/contracts").Json(contractBody(propertyId, tenantId, status)).Do(&res)
	return res.Id, err
}

func (c *client) getContract(id uuid.UUID) (services.ContractInfo, error) {
	var info services.ContractInfo
	err := c.Get(fmt.Sprintf("/contracts/%v", id)).Do(&info)
	return info, err
}

func (c *client) updateContract(id uuid.UUID, body map[string]interface{}) error {
	return c.Put(fmt.Sprintf("/contracts/%v", id)).Json(body).Do(nil)
}

func (c *client) deleteContract(id uuid.UUID) error {
	return c.Delete(fmt.Sprintf("/contracts/%v", id)).Do(nil)
}

func (c *client) createRent(contractId uuid.UUID, amount float64, payDate string) (uuid.UUID, error) {
	body := map[string]interface{}{
		"contract_id": contractId, "amount": amount, "pay_date": payDate,
	}

	var res idResult
	err := c.Post("/rents").Json(body).Do(&res)
	return res.Id, err
}

func (c *client) listRents() ([]services.RentRecordInfo, error) {
	var infos []services.RentRecordInfo
	err := c.Get("/rents").Do(&infos)
	return infos, err
}

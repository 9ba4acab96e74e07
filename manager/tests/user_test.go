package tests

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)

	for i := 0; i < 5; i++ {
		username := fmt.Sprintf("user%d", i)
		password := fmt.Sprintf("user%d_password", i)

		client := env.newClient()
		login, err := client.register(username, password)
		if err != nil {
			t.Fatal(err)
		}

		_, err = client.register(username, password)
		if !errors.Is(err, ErrBadRequest) {
			t.Fatal("duplicate registration should fail")
		}

		err = client.login(loginInfo{Username: "nosuchuser", Password: password})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatal("login should fail with unknown username")
		}

		err = client.login(loginInfo{Username: username, Password: "wrong_password"})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatal("login should fail with wrong password")
		}

		err = client.login(login)
		if err != nil {
			t.Fatal(err)
		}

		info, err := client.userInfo()
		if err != nil {
			t.Fatal(err)
		}

		if info.Username != username || info.Id.String() != client.userId || info.Role != "user" {
			t.Fatalf("invalid info %v", info)
		}

		var token struct {
			ExpiresAt time.Time `json:"expires_at"`
		}
		if err := client.Get("/users/token").Do(&token); err != nil {
			t.Fatal(err)
		}
		if !token.ExpiresAt.After(time.Now().Add(6 * 24 * time.Hour)) {
			t.Fatalf("expected roughly 7 day expiry, got %v", token.ExpiresAt)
		}
	}
}

func TestRegistrationValidation(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newClient()

	_, err := client.register("ab", "long_enough_password")
	if !errors.Is(err, ErrBadRequest) {
		t.Fatal("username under 3 chars should be rejected")
	}

	_, err = client.register("this_username_is_way_too_long", "long_enough_password")
	if !errors.Is(err, ErrBadRequest) {
		t.Fatal("username over 20 chars should be rejected")
	}

	_, err = client.register("valid_user", "short")
	if !errors.Is(err, ErrBadRequest) {
		t.Fatal("password under 6 chars should be rejected")
	}

	_, err = client.register("valid_user", "long_enough_password")
	if err != nil {
		t.Fatal(err)
	}
}

func TestChangePassword(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newUser(t, "abc")

	err := client.Put("/users/password").
		Json(map[string]string{"old_password": "wrong", "new_password": "new_password123"}).
		Do(nil)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("change should fail with wrong old password")
	}

	err = client.Put("/users/password").
		Json(map[string]string{"old_password": "abc_password", "new_password": "short"}).
		Do(nil)
	if !errors.Is(err, ErrBadRequest) {
		t.Fatal("new password under 6 chars should be rejected")
	}

	err = client.Put("/users/password").
		Json(map[string]string{"old_password": "abc_password", "new_password": "new_password123"}).
		Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	err = client.login(loginInfo{Username: "abc", Password: "abc_password"})
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatal("old password should no longer work")
	}

	err = client.login(loginInfo{Username: "abc", Password: "new_password123"})
	if err != nil {
		t.Fatal(err)
	}
}

func TestInitAdmin(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newClient()

	err := client.Post("/users/init-admin").Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	err = client.login(loginInfo{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatal(err)
	}

	info, err := client.userInfo()
	if err != nil {
		t.Fatal(err)
	}
	if info.Role != "admin" {
		t.Fatalf("expected admin role, got %v", info.Role)
	}

	// Running it again must not create a second admin or reset the password.
	err = client.Post("/users/init-admin").Do(nil)
	if err != nil {
		t.Fatal(err)
	}

	err = client.login(loginInfo{Username: "admin", Password: "admin123"})
	if err != nil {
		t.Fatal(err)
	}
}

func TestRequestsRequireAuth(t *testing.T) {
	env := setupTestEnv(t)

	client := env.newClient()

	endpoints := []string{"/users/me", "/properties", "/tenants", "/contracts", "/rents"}
	for _, endpoint := range endpoints {
		err := client.Get(endpoint).Do(nil)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected unauthorized for %v, got %v", endpoint, err)
		}
	}
}

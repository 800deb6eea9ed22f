//go:build !integration

package account

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"medstaff-dashboard/internal/config"
	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	l := zerolog.New(io.Discard)
	return NewClient(config.AccountConfig{BaseURL: srv.URL + "/", Token: "svc-token", Timeout: time.Second}, &l)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_UpdateFormSendsPayload(t *testing.T) {
	// --- Arrange ---
	var got model.CombinedPayload
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/users/u%201/kyc/form" && r.URL.Path != "/users/u 1/kyc/form" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer svc-token" {
			t.Errorf("missing bearer token")
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"status": true,
			"data":   map[string]any{"personalInformation": map[string]any{"firstName": "Ada"}},
		})
	})
	payload := model.CombinedPayload{PhoneNumber: "+447700900000", Address: model.PostalAddress{City: "London"}}

	// --- Act ---
	resp, err := c.UpdateForm(context.Background(), "u 1", payload)

	// --- Assert ---
	if err != nil {
		t.Fatalf("UpdateForm: %v", err)
	}
	if !resp.Status || resp.Data == nil || resp.Data.PersonalInformation.FirstName != "Ada" {
		t.Errorf("unexpected response %+v", resp)
	}
	if got.PhoneNumber != payload.PhoneNumber || got.Address.City != "London" {
		t.Errorf("server saw %+v", got)
	}
}

func TestClient_UpdateFormBusinessFailure(t *testing.T) {
	cases := []struct {
		name string
		code int
	}{
		{"status false on 200", http.StatusOK},
		{"status false on 422", http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tc.code, map[string]any{"status": false, "message": "postcode not recognised"})
			})
			resp, err := c.UpdateForm(context.Background(), "u1", model.CombinedPayload{})
			if err != nil {
				t.Fatalf("business failure must not be a transport error: %v", err)
			}
			if resp.Status || resp.Message != "postcode not recognised" {
				t.Errorf("unexpected response %+v", resp)
			}
		})
	}
}

func TestClient_ServerErrorIsTransportFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})
	_, err := c.UpdateForm(context.Background(), "u1", model.CombinedPayload{})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusBadGateway {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := c.GetForm(ctx, "u1"); err == nil {
		t.Fatal("expected a timeout error")
	}
}

func TestClient_GetUserDetailsAndRole(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/biz":
			writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": map[string]any{"id": "biz", "signedUpAs": "business"}})
		default:
			writeJSON(w, http.StatusNotFound, map[string]any{"status": false, "message": "no such user"})
		}
	})
	role, err := c.SignedUpAs(context.Background(), "biz")
	if err != nil || role != "business" {
		t.Fatalf("SignedUpAs = %q, %v", role, err)
	}
	if _, err := c.GetUserDetails(context.Background(), "ghost"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_GetFormAndReferenceLists(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/users/u1/kyc/form":
			writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": map[string]any{
				"addressInformation": map[string]any{"city": "Leeds"},
			}})
		case "/categories":
			writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": []map[string]any{{"id": "c1", "name": "Nursing"}}})
		case "/services":
			writeJSON(w, http.StatusOK, map[string]any{"status": true, "data": []map[string]any{{"id": "s1", "name": "Night cover", "categoryId": "c1"}}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	form, err := c.GetForm(ctx, "u1")
	if err != nil || form.AddressInformation == nil || form.AddressInformation.City != "Leeds" {
		t.Fatalf("GetForm = %+v, %v", form, err)
	}
	cats, err := c.ListCategories(ctx)
	if err != nil || len(cats) != 1 || cats[0].Name != "Nursing" {
		t.Fatalf("ListCategories = %+v, %v", cats, err)
	}
	svcs, err := c.ListServices(ctx)
	if err != nil || len(svcs) != 1 || svcs[0].CategoryID != "c1" {
		t.Fatalf("ListServices = %+v, %v", svcs, err)
	}
}

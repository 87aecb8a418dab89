package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mrp/config"
	"mrp/ent"
	"mrp/store"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	ctx := context.Background()

	st, err := store.Connect(ctx, config.DatabaseConfig{
		Driver: "sqlite3",
		Path:   filepath.Join(t.TempDir(), "project.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.EnsureSchema(ctx))

	return New(st)
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (int, []byte) {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, b
}

func createPlant(t *testing.T, app *fiber.App, body string) ent.Plant {
	t.Helper()

	code, b := doRequest(t, app, http.MethodPost, "/plants/", body)
	require.Equal(t, http.StatusOK, code, string(b))

	var p ent.Plant
	require.NoError(t, json.Unmarshal(b, &p))

	return p
}

func detail(t *testing.T, b []byte) string {
	t.Helper()

	var resp struct {
		Detail string `json:"detail"`
	}
	require.NoError(t, json.Unmarshal(b, &resp), string(b))

	return resp.Detail
}

func TestRoot(t *testing.T) {
	app := newTestApp(t)

	code, b := doRequest(t, app, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"message":"Welcome!"}`, string(b))
}

func TestCreatePlant(t *testing.T) {
	app := newTestApp(t)

	code, b := doRequest(t, app, http.MethodPost, "/plants/",
		`{"name":"Test Plant","location":"Test Location","capacity":1000}`)
	require.Equal(t, http.StatusOK, code, string(b))

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &resp))
	assert.Equal(t, "Test Plant", resp["name"])
	assert.Equal(t, "Test Location", resp["location"])
	assert.EqualValues(t, 1000, resp["capacity"])
	require.Contains(t, resp, "id")
	assert.NotZero(t, resp["id"])
}

func TestReadPlant(t *testing.T) {
	app := newTestApp(t)

	created := createPlant(t, app, `{"name":"Read Plant","location":"Read Location","capacity":500}`)

	code, b := doRequest(t, app, http.MethodGet, fmt.Sprintf("/plants/%d", created.ID), "")
	require.Equal(t, http.StatusOK, code)

	var got ent.Plant
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, ent.Plant{ID: created.ID, Name: "Read Plant", Location: "Read Location", Capacity: 500}, got)
}

func TestReadPlant_NotFound(t *testing.T) {
	app := newTestApp(t)

	code, b := doRequest(t, app, http.MethodGet, "/plants/12345", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Plant not found", detail(t, b))
}

func TestListPlants(t *testing.T) {
	app := newTestApp(t)

	code, b := doRequest(t, app, http.MethodGet, "/plants/", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `[]`, string(b))

	a := createPlant(t, app, `{"name":"A","location":"LA","capacity":1}`)
	c := createPlant(t, app, `{"name":"B","location":"LB","capacity":2}`)

	code, b = doRequest(t, app, http.MethodGet, "/plants/", "")
	require.Equal(t, http.StatusOK, code)

	var ps []ent.Plant
	require.NoError(t, json.Unmarshal(b, &ps))
	assert.Equal(t, []ent.Plant{a, c}, ps)
}

func TestUpdatePlant_FullReplace(t *testing.T) {
	app := newTestApp(t)

	created := createPlant(t, app, `{"name":"Old","location":"Old Town","capacity":10}`)
	path := fmt.Sprintf("/plants/%d", created.ID)

	code, b := doRequest(t, app, http.MethodPut, path, `{"name":"New","location":"New Town","capacity":20}`)
	require.Equal(t, http.StatusOK, code, string(b))

	want := ent.Plant{ID: created.ID, Name: "New", Location: "New Town", Capacity: 20}

	var updated ent.Plant
	require.NoError(t, json.Unmarshal(b, &updated))
	assert.Equal(t, want, updated)

	code, b = doRequest(t, app, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, code)

	var got ent.Plant
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, want, got)
}

func TestUpdatePlant_NotFound(t *testing.T) {
	app := newTestApp(t)

	code, b := doRequest(t, app, http.MethodPut, "/plants/77", `{"name":"X","location":"Y","capacity":1}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Plant not found", detail(t, b))
}

func TestUpdatePlant_PartialBodyRejected(t *testing.T) {
	app := newTestApp(t)

	created := createPlant(t, app, `{"name":"Whole","location":"Here","capacity":3}`)
	path := fmt.Sprintf("/plants/%d", created.ID)

	code, b := doRequest(t, app, http.MethodPut, path, `{"name":"Half"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, detail(t, b), "location")

	code, b = doRequest(t, app, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, code)

	var got ent.Plant
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, created, got)
}

func TestDeletePlant(t *testing.T) {
	app := newTestApp(t)

	created := createPlant(t, app, `{"name":"Doomed","location":"Here","capacity":3}`)
	path := fmt.Sprintf("/plants/%d", created.ID)

	code, b := doRequest(t, app, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Plant deleted", detail(t, b))

	code, _ = doRequest(t, app, http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, code)

	code, b = doRequest(t, app, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Plant not found", detail(t, b))
}

func TestCreatePlant_DuplicateName(t *testing.T) {
	app := newTestApp(t)

	createPlant(t, app, `{"name":"Twin","location":"A","capacity":1}`)

	code, b := doRequest(t, app, http.MethodPost, "/plants/", `{"name":"Twin","location":"B","capacity":2}`)
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "Internal Server Error", detail(t, b))

	code, b = doRequest(t, app, http.MethodGet, "/plants/", "")
	require.Equal(t, http.StatusOK, code)

	var ps []ent.Plant
	require.NoError(t, json.Unmarshal(b, &ps))
	assert.Len(t, ps, 1)
}

func TestCreatePlant_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty body", body: ""},
		{name: "malformed json", body: `{"name":`},
		{name: "missing name", body: `{"location":"L","capacity":1}`},
		{name: "missing capacity", body: `{"name":"N","location":"L"}`},
		{name: "capacity not integer", body: `{"name":"N","location":"L","capacity":"lots"}`},
		{name: "name null", body: `{"name":null,"location":"L","capacity":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)

			code, b := doRequest(t, app, http.MethodPost, "/plants/", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, code, string(b))
			assert.NotEmpty(t, detail(t, b))

			code, b = doRequest(t, app, http.MethodGet, "/plants/", "")
			require.Equal(t, http.StatusOK, code)
			assert.JSONEq(t, `[]`, string(b))
		})
	}
}

func TestPlantID_NotInteger(t *testing.T) {
	app := newTestApp(t)

	code, b := doRequest(t, app, http.MethodGet, "/plants/abc", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "plant id must be an integer", detail(t, b))
}

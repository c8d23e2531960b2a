// TowerAtlas - Telecom Infrastructure Mapping and Geographic Access Control
// Copyright 2026 TowerAtlas Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/toweratlas/toweratlas

package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/toweratlas/toweratlas/internal/access"
	"github.com/toweratlas/toweratlas/internal/assets"
	"github.com/toweratlas/toweratlas/internal/audit"
	"github.com/toweratlas/toweratlas/internal/auth"
	"github.com/toweratlas/toweratlas/internal/config"
	"github.com/toweratlas/toweratlas/internal/database"
	"github.com/toweratlas/toweratlas/internal/geo"
	"github.com/toweratlas/toweratlas/internal/models"
	"github.com/toweratlas/toweratlas/internal/notify"
	"github.com/toweratlas/toweratlas/internal/scope"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testAPI struct {
	handler  http.Handler
	db       *database.DB
	verifier *auth.Verifier
	region   *models.Region
}

func setupAPI(t *testing.T) *testAPI {
	t.Helper()

	cfg := &config.Config{
		Server: config.ServerConfig{Timeout: 30 * time.Second},
		Security: config.SecurityConfig{
			AuthMode:          "jwt",
			JWTSecret:         testSecret,
			RateLimitDisabled: true,
			CORSOrigins:       []string{"*"},
		},
		Access: config.AccessConfig{
			SweepInterval:      5 * time.Minute,
			ExpiryWarnInterval: time.Hour,
			ExpiryWarnAfter:    23 * time.Hour,
			ExpiryWarnBefore:   25 * time.Hour,
			NotifyDedupWindow:  48 * time.Hour,
		},
		Audit: config.AuditConfig{Enabled: true, BufferSize: 100, RetentionDays: 90},
		API:   config.APIConfig{DefaultPageSize: 50, MaxPageSize: 500},
	}

	db, err := database.New(&config.DatabaseConfig{
		Path:         ":memory:",
		MaxOpenConns: 1,
		QueryTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	auditStore, err := audit.NewDuckDBStore(db.Conn())
	if err != nil {
		t.Fatalf("failed to create audit store: %v", err)
	}
	recorder := audit.NewRecorder(auditStore, cfg.Audit.BufferSize)
	t.Cleanup(recorder.Close)

	notifier := notify.New(db, nil, 1000, 100, cfg.Access.NotifyDedupWindow)
	accessSvc := access.NewService(db, notifier, recorder, cfg.Access)
	assetSvc := assets.NewService(db, geo.NewRectangleMatcher(), recorder)
	resolver := scope.NewResolver(db)

	h := NewHandler(db, resolver, accessSvc, assetSvc, auditStore, recorder, cfg)
	router := NewRouter(h, auth.NewMiddleware("jwt", testSecret))

	ctx := context.Background()
	for _, u := range []*models.User{
		{ID: 1, Username: "admin", Role: models.RoleAdmin, Active: true, CreatedAt: time.Now()},
		{ID: 7, Username: "surveyor", Role: models.RoleUser, Active: true, CreatedAt: time.Now()},
		{ID: 8, Username: "other", Role: models.RoleUser, Active: true, CreatedAt: time.Now()},
	} {
		if err := db.UpsertUser(ctx, u); err != nil {
			t.Fatalf("failed to seed user: %v", err)
		}
	}
	region, err := db.CreateRegion(ctx, &models.Region{
		Name:   "Bengaluru Urban",
		State:  "Karnataka",
		Bounds: models.BoundingBox{South: 12.7, North: 13.2, West: 77.3, East: 77.9},
		Active: true,
	})
	if err != nil {
		t.Fatalf("failed to seed region: %v", err)
	}

	return &testAPI{
		handler:  router,
		db:       db,
		verifier: auth.NewVerifier(testSecret),
		region:   region,
	}
}

func (a *testAPI) token(t *testing.T, ident models.Identity) string {
	t.Helper()
	token, err := a.verifier.Sign(ident, time.Hour)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func (a *testAPI) do(t *testing.T, method, path string, body interface{}, ident *models.Identity, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ident != nil {
		req.Header.Set("Authorization", "Bearer "+a.token(t, *ident))
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v (body %s)", err, rec.Body.String())
	}
	if envelope.Status != "success" {
		t.Fatalf("status = %q, body %s", envelope.Status, rec.Body.String())
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

var (
	adminIdent = models.Identity{UserID: 1, Username: "admin", Role: models.RoleAdmin}
	userIdent  = models.Identity{UserID: 7, Username: "surveyor", Role: models.RoleUser}
	otherIdent = models.Identity{UserID: 8, Username: "other", Role: models.RoleUser}
)

const viewportPath = "/api/v1/map/viewport?south=11&north=14&west=76&east=78&zoom=14"

func TestViewportRequiresBounds(t *testing.T) {
	a := setupAPI(t)

	tests := []struct {
		name string
		path string
	}{
		{"missing all bounds", "/api/v1/map/viewport"},
		{"missing east", "/api/v1/map/viewport?south=11&north=14&west=76"},
		{"non-numeric", "/api/v1/map/viewport?south=abc&north=14&west=76&east=78"},
		{"inverted latitude", "/api/v1/map/viewport?south=14&north=11&west=76&east=78"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := a.do(t, http.MethodGet, tt.path, nil, &userIdent, nil)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestViewportScoping(t *testing.T) {
	a := setupAPI(t)

	// user 7 owns one asset in-region, user 8 owns one in-region and one
	// out-of-region.
	create := func(ident models.Identity, name string, lat, lng float64) {
		rec := a.do(t, http.MethodPost, "/api/v1/assets", CreateAssetRequest{
			Name: name, ItemType: "Tower", Latitude: lat, Longitude: lng,
		}, &ident, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("asset create status = %d, body %s", rec.Code, rec.Body.String())
		}
	}
	create(userIdent, "mine", 12.95, 77.60)
	create(otherIdent, "theirs in-region", 12.96, 77.61)
	create(otherIdent, "theirs remote", 13.0, 76.5)

	// User 7 has no region assignments: sees only their own asset.
	var data models.ViewportData
	rec := a.do(t, http.MethodGet, viewportPath, nil, &userIdent, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &data)
	if data.Count != 1 || data.Items[0].Name != "mine" {
		t.Errorf("restricted viewport = %+v", data.Items)
	}

	// With a permanent assignment the in-region asset appears.
	if err := a.db.UpsertPermanentAssignment(context.Background(), 7, a.region.ID, models.AccessView); err != nil {
		t.Fatalf("failed to assign region: %v", err)
	}
	rec = a.do(t, http.MethodGet, viewportPath, nil, &userIdent, nil)
	decodeData(t, rec, &data)
	if data.Count != 2 {
		t.Errorf("region-assigned viewport count = %d, want 2", data.Count)
	}

	// Admin sees everything.
	rec = a.do(t, http.MethodGet, viewportPath, nil, &adminIdent, nil)
	decodeData(t, rec, &data)
	if data.Count != 3 {
		t.Errorf("admin viewport count = %d, want 3", data.Count)
	}

	// Admin viewing as user 8 sees exactly user 8's assets.
	rec = a.do(t, http.MethodGet, viewportPath, nil, &adminIdent, map[string]string{ViewAsHeader: "8"})
	decodeData(t, rec, &data)
	if data.Count != 2 {
		t.Errorf("view-as viewport count = %d, want 2", data.Count)
	}

	// Regular users cannot view as someone else.
	rec = a.do(t, http.MethodGet, viewportPath, nil, &userIdent, map[string]string{ViewAsHeader: "8"})
	if rec.Code != http.StatusForbidden {
		t.Errorf("view-as by regular user status = %d, want 403", rec.Code)
	}
}

func TestViewportRequiresAuth(t *testing.T) {
	a := setupAPI(t)
	rec := a.do(t, http.MethodGet, viewportPath, nil, nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestClustersEndpoint(t *testing.T) {
	a := setupAPI(t)

	for i := 0; i < 3; i++ {
		rec := a.do(t, http.MethodPost, "/api/v1/assets", CreateAssetRequest{
			Name: fmt.Sprintf("t%d", i), ItemType: "Tower",
			Latitude: 12.95 + float64(i)*0.01, Longitude: 77.60,
		}, &adminIdent, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("asset create failed: %s", rec.Body.String())
		}
	}

	var data models.ClusterData
	rec := a.do(t, http.MethodGet, "/api/v1/map/clusters?south=11&north=14&west=76&east=78&zoom=8", nil, &adminIdent, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &data)
	if data.Count != 1 || data.Clusters[0].Count != 3 {
		t.Errorf("clusters = %+v", data)
	}
	if data.GridSize != 0.5 {
		t.Errorf("grid size = %v, want 0.5", data.GridSize)
	}

	// At street-level zoom the endpoint returns markers.
	rec = a.do(t, http.MethodGet, "/api/v1/map/clusters?south=11&north=14&west=76&east=78&zoom=16", nil, &adminIdent, nil)
	decodeData(t, rec, &data)
	if len(data.Clusters) != 0 || len(data.Items) != 3 {
		t.Errorf("street-level clusters = %+v", data)
	}
}

func TestGrantLifecycleOverHTTP(t *testing.T) {
	a := setupAPI(t)
	expires := time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339)

	body := CreateGrantRequest{
		UserID:     7,
		RegionName: "Bengaluru Urban",
		Reason:     "field survey",
		ExpiresAt:  expires,
	}

	// Regular users may not create grants.
	rec := a.do(t, http.MethodPost, "/api/v1/temporary-access", body, &userIdent, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("non-elevated create status = %d, want 403", rec.Code)
	}

	rec = a.do(t, http.MethodPost, "/api/v1/temporary-access", body, &adminIdent, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var grant models.TemporaryAccessGrant
	decodeData(t, rec, &grant)
	if grant.UserID != 7 || grant.RegionID != a.region.ID {
		t.Errorf("unexpected grant: %+v", grant)
	}

	// Duplicate active pair conflicts.
	rec = a.do(t, http.MethodPost, "/api/v1/temporary-access", body, &adminIdent, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate create status = %d, want 409", rec.Code)
	}

	// Unknown region is NotFound.
	badRegion := body
	badRegion.UserID = 8
	badRegion.RegionName = "Atlantis"
	rec = a.do(t, http.MethodPost, "/api/v1/temporary-access", badRegion, &adminIdent, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown region status = %d, want 404", rec.Code)
	}

	// Invalid body is 400 with field details.
	rec = a.do(t, http.MethodPost, "/api/v1/temporary-access", CreateGrantRequest{}, &adminIdent, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body status = %d, want 400", rec.Code)
	}

	// The holder sees the grant on my-access.
	var summary access.AccessSummary
	rec = a.do(t, http.MethodGet, "/api/v1/temporary-access/my-access", nil, &userIdent, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("my-access status = %d", rec.Code)
	}
	decodeData(t, rec, &summary)
	if len(summary.ActiveGrants) != 1 || summary.ActiveGrants[0].ID != grant.ID {
		t.Errorf("my-access = %+v", summary)
	}

	// Revoke, then the grant disappears from my-access.
	rec = a.do(t, http.MethodDelete, "/api/v1/temporary-access/"+grant.ID, nil, &adminIdent, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("revoke status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = a.do(t, http.MethodGet, "/api/v1/temporary-access/my-access", nil, &userIdent, nil)
	decodeData(t, rec, &summary)
	if len(summary.ActiveGrants) != 0 {
		t.Errorf("my-access after revoke = %+v", summary.ActiveGrants)
	}

	// Revoking an unknown grant is 404.
	rec = a.do(t, http.MethodDelete, "/api/v1/temporary-access/00000000-0000-0000-0000-000000000000", nil, &adminIdent, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown revoke status = %d, want 404", rec.Code)
	}
}

func TestCleanupEndpoint(t *testing.T) {
	a := setupAPI(t)

	rec := a.do(t, http.MethodPost, "/api/v1/temporary-access/cleanup", nil, &userIdent, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-elevated cleanup status = %d, want 403", rec.Code)
	}

	rec = a.do(t, http.MethodPost, "/api/v1/temporary-access/cleanup", nil, &adminIdent, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("cleanup status = %d, body %s", rec.Code, rec.Body.String())
	}
	var result map[string]int
	decodeData(t, rec, &result)
	if result["removed"] != 0 {
		t.Errorf("removed = %d, want 0 on empty store", result["removed"])
	}
}

func TestHealthEndpoint(t *testing.T) {
	a := setupAPI(t)
	rec := a.do(t, http.MethodGet, "/health", nil, nil, nil)
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestNotificationsEndpoint(t *testing.T) {
	a := setupAPI(t)

	rec := a.do(t, http.MethodGet, "/api/v1/notifications", nil, nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous status = %d, want 401", rec.Code)
	}

	// Granting access persists a notification for the holder.
	rec = a.do(t, http.MethodPost, "/api/v1/temporary-access", CreateGrantRequest{
		UserID:     7,
		RegionName: "Bengaluru Urban",
		Reason:     "field survey",
		ExpiresAt:  time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	}, &adminIdent, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}
	var grant models.TemporaryAccessGrant
	decodeData(t, rec, &grant)

	var data struct {
		Notifications []models.Notification `json:"notifications"`
		Count         int                   `json:"count"`
	}
	rec = a.do(t, http.MethodGet, "/api/v1/notifications", nil, &userIdent, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d, body %s", rec.Code, rec.Body.String())
	}
	decodeData(t, rec, &data)
	if data.Count != 1 || len(data.Notifications) != 1 {
		t.Fatalf("notifications = %+v", data)
	}
	n := data.Notifications[0]
	if n.Category != models.NotificationGrantCreated || n.ReferenceID != grant.ID || n.UserID != 7 {
		t.Errorf("unexpected notification: %+v", n)
	}

	// Other users see only their own, which is nothing here.
	rec = a.do(t, http.MethodGet, "/api/v1/notifications", nil, &otherIdent, nil)
	decodeData(t, rec, &data)
	if data.Count != 0 {
		t.Errorf("other user notifications = %+v", data.Notifications)
	}
}

func TestElevationRejectionIsAudited(t *testing.T) {
	a := setupAPI(t)

	rec := a.do(t, http.MethodPost, "/api/v1/temporary-access/cleanup", nil, &userIdent, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("cleanup status = %d, want 403", rec.Code)
	}

	// The recorder writes from a background goroutine; poll briefly.
	var data struct {
		Events []audit.Event `json:"events"`
		Count  int           `json:"count"`
	}
	deadline := time.Now().Add(2 * time.Second)
	for {
		rec = a.do(t, http.MethodGet, "/api/v1/audit?action=auth.rejected", nil, &adminIdent, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("audit status = %d, body %s", rec.Code, rec.Body.String())
		}
		decodeData(t, rec, &data)
		if data.Count > 0 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if data.Count != 1 {
		t.Fatalf("auth.rejected events = %d, want 1", data.Count)
	}
	e := data.Events[0]
	if e.Actor.UserID != 7 || e.Severity != audit.SeverityAlert {
		t.Errorf("unexpected event: %+v", e)
	}
	if e.Target.Type != "endpoint" || e.Target.ID != "/api/v1/temporary-access/cleanup" {
		t.Errorf("unexpected target: %+v", e.Target)
	}
}

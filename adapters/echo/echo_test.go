package hxviewecho

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pthm/hxview"
)

func renderButton(t *testing.T, doc hxview.Patcher) {
	t.Helper()
	node := hxview.DecodeNode(map[string]any{
		"tag":      "button",
		"attrs":    map[string]any{"onClick": "save"},
		"children": map[string]any{"text": "Save"},
	})
	d := hxview.NewDriver("app", doc)
	if err := d.Render(context.Background(), nil, &hxview.View{Name: "root", Node: node}, nil); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
}

func get(e *echo.Echo, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestMount(t *testing.T) {
	e := echo.New()
	doc := Mount(e)
	if doc == nil {
		t.Fatal("Mount returned nil document")
	}
	renderButton(t, doc)

	rec := get(e, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `hx-post="/_e"`) {
		t.Errorf("page should post events to /_e:\n%s", rec.Body.String())
	}
}

func TestMountWithKey(t *testing.T) {
	e := echo.New()
	key := make([]byte, 32)
	if doc := Mount(e, WithKey(key)); doc == nil {
		t.Fatal("Mount returned nil document")
	}
}

func TestMountWithPath(t *testing.T) {
	e := echo.New()
	doc := Mount(e, WithPath("/live"))
	renderButton(t, doc)

	rec := get(e, "/live/")
	if !strings.Contains(rec.Body.String(), `hx-post="/live/_e"`) {
		t.Errorf("page should post events under /live/:\n%s", rec.Body.String())
	}
}

func TestMountGroup(t *testing.T) {
	e := echo.New()
	g := e.Group("/app")
	doc := MountGroup(g)
	if doc == nil {
		t.Fatal("MountGroup returned nil document")
	}
	renderButton(t, doc)

	rec := get(e, "/app/")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /app/ status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `hx-post="/app/_e"`) {
		t.Errorf("page should post events under the group prefix:\n%s", rec.Body.String())
	}
}

func TestCSRFProtection(t *testing.T) {
	e := echo.New()
	Mount(e)

	// POST without HX-Request header should be forbidden
	req := httptest.NewRequest(http.MethodPost, "/_e", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403 for POST without HX-Request, got %d", rec.Code)
	}
}

func TestStaleEventRejected(t *testing.T) {
	e := echo.New()
	doc := Mount(e)
	renderButton(t, doc)

	req := httptest.NewRequest(http.MethodPost, "/_e", strings.NewReader("p=bogus"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for a bogus token, got %d", rec.Code)
	}
}

func TestRender(t *testing.T) {
	e := echo.New()
	doc := Mount(e)
	renderButton(t, doc)

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	if err := Render(c, doc.Body()); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), ">Save</button>") {
		t.Errorf("body = %q", rec.Body.String())
	}
}

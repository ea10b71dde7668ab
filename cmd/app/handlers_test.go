package main

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newTestApp(t *testing.T) http.Handler {
	a := &app{log: zaptest.NewLogger(t), debug: true}
	return a.routes()
}

func TestDiagramHandler(t *testing.T) {
	h := newTestApp(t)

	t.Run("get", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
		}
		body := rec.Body.String()
		for _, want := range []string{"Диаграмма Вороного", "Алгоритм Форчуна запущен", "Событие точки", "/svg?", "/step?n=0&"} {
			if !strings.Contains(body, want) {
				t.Errorf("page does not contain %q", want)
			}
		}
	})

	t.Run("post", func(t *testing.T) {
		form := url.Values{"width": {"300"}, "height": {"200"}, "stations": {"25"}, "random": {"on"}, "seed": {"7"}}
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
		}
		if !strings.Contains(rec.Body.String(), "seed=7") {
			t.Errorf("links do not keep the seed")
		}
	})

	t.Run("unknown path", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/favicon.ico", nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlers_BadParams(t *testing.T) {
	h := newTestApp(t)
	tests := []struct {
		name   string
		target string
	}{
		{"width not a number", "/?width=abc"},
		{"width too small", "/svg?width=10"},
		{"too many stations", "/svg?stations=100000"},
		{"bad seed", "/svg?random=true&seed=x"},
		{"step missing", "/step"},
		{"step negative", "/step?n=-1"},
		{"step not a number", "/step?n=first"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("GET %s: status = %d, want 400", tt.target, rec.Code)
			}
		})
	}
}

func TestSVGHandler(t *testing.T) {
	h := newTestApp(t)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/svg?stations=9&width=400&height=300", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q, want image/svg+xml", ct)
	}
	if got := strings.Count(rec.Body.String(), "<polygon"); got != 10 {
		t.Errorf("%d polygons, want 9 cells and the boundary", got)
	}
}

func TestStepHandler(t *testing.T) {
	h := newTestApp(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/step?n=0&stations=5", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	if n := rec.Header().Get("X-Voronoi-Notification"); n != "site-event-processed" {
		t.Errorf("first step is %q, want site-event-processed", n)
	}
	steps, err := strconv.Atoi(rec.Header().Get("X-Voronoi-Steps"))
	if err != nil || steps < 5+2 {
		t.Fatalf("X-Voronoi-Steps = %q, want at least 7", rec.Header().Get("X-Voronoi-Steps"))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/step?stations=5&n="+strconv.Itoa(steps-1), nil))
	if n := rec.Header().Get("X-Voronoi-Notification"); rec.Code != http.StatusOK || n != "clipping-finished" {
		t.Errorf("last step: status %d, notification %q, want 200 and clipping-finished", rec.Code, n)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/step?stations=5&n="+strconv.Itoa(steps), nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("step past the end: status = %d, want 404", rec.Code)
	}
}

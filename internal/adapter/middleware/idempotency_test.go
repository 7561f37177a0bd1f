package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// helper: new Echo with the middleware and a simple route
func setupEcho(rdb *redis.Client, ttl time.Duration, handler echo.HandlerFunc) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(Idempotency(rdb, ttl))
	e.POST("/api/loans", handler)
	e.GET("/api/loans", handler) // for non-mutating bypass test
	return e
}

func mkJSONBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return bytes.NewReader(b)
}

func doReq(t *testing.T, e *echo.Echo, method, path string, body io.Reader, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, rdb
}

func Test_BypassOnGET(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "get ok"})
	})
	rec := doReq(t, e, http.MethodGet, "/api/loans", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func Test_BypassWithoutHeader(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	var calls int32
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		atomic.AddInt32(&calls, 1)
		return c.JSON(http.StatusCreated, map[string]any{"ok": true})
	})

	for i := 0; i < 2; i++ {
		rec := doReq(t, e, http.MethodPost, "/api/loans", mkJSONBody(t, map[string]string{"borrower": "Jane"}), nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("handler calls = %d, want 2 (no key means no dedup)", calls)
	}
}

func Test_ReplayStoredResponse(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()

	var calls int32
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		n := atomic.AddInt32(&calls, 1)
		return c.JSON(http.StatusCreated, map[string]any{"attempt": n})
	})

	hdr := map[string]string{"Idempotency-Key": "retry-123"}
	body := map[string]string{"borrower": "Jane"}

	first := doReq(t, e, http.MethodPost, "/api/loans", mkJSONBody(t, body), hdr)
	if first.Code != http.StatusCreated {
		t.Fatalf("first attempt: %d", first.Code)
	}
	second := doReq(t, e, http.MethodPost, "/api/loans", mkJSONBody(t, body), hdr)
	if second.Code != http.StatusCreated {
		t.Fatalf("replay: %d", second.Code)
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Fatalf("replay body %q differs from original %q", second.Body.String(), first.Body.String())
	}
}

func Test_KeyReusedWithDifferentBody(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]any{"ok": true})
	})

	hdr := map[string]string{"Idempotency-Key": "retry-123"}
	if rec := doReq(t, e, http.MethodPost, "/api/loans", mkJSONBody(t, map[string]string{"borrower": "Jane"}), hdr); rec.Code != http.StatusCreated {
		t.Fatalf("first attempt: %d", rec.Code)
	}
	rec := doReq(t, e, http.MethodPost, "/api/loans", mkJSONBody(t, map[string]string{"borrower": "Bob"}), hdr)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for reused key with new body, got %d", rec.Code)
	}
}

func Test_InProgressConflict(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	defer mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]any{"ok": true})
	})

	// Simulate a first attempt that grabbed the lock and is still running.
	body := []byte(`{"borrower":"Jane"}`)
	entry := idempEntry{InProgress: true, BodySHA256: bodyHash(body), Key: "inflight-1", CreatedAt: nowUTC()}
	payload, _ := json.Marshal(entry)
	mr.Set(buildKey(http.MethodPost, "/api/loans", "inflight-1"), string(payload))

	rec := doReq(t, e, http.MethodPost, "/api/loans", bytes.NewReader(body), map[string]string{"Idempotency-Key": "inflight-1"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 while in progress, got %d", rec.Code)
	}
}

func Test_RedisDown(t *testing.T) {
	mr, rdb := newMiniredisClient(t)
	mr.Close()
	e := setupEcho(rdb, 30*time.Second, func(c echo.Context) error {
		return c.JSON(http.StatusCreated, map[string]any{"ok": true})
	})

	rec := doReq(t, e, http.MethodPost, "/api/loans", mkJSONBody(t, map[string]string{"borrower": "Jane"}), map[string]string{"Idempotency-Key": "k1"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with redis down, got %d", rec.Code)
	}
}

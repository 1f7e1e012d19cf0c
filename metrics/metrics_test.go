package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNilCollectorIsNoOp(t *testing.T) {
	var c *Collector

	// None of these may panic on an unconfigured mount.
	c.Observe("read", time.Now(), nil)
	c.Observe("open", time.Now(), io.ErrUnexpectedEOF)
	c.AddReadBytes(4096)
	c.HandleOpened()
	c.HandleReleased()
}

func TestCollectorExposesOperations(t *testing.T) {
	c := New()

	c.Observe("read", time.Now().Add(-time.Millisecond), nil)
	c.Observe("lookup", time.Now(), io.ErrUnexpectedEOF)
	c.AddReadBytes(1234)
	c.HandleOpened()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("metrics endpoint returned %d", rec.Code)
	}
	body, err := io.ReadAll(rec.Result().Body)
	if err != nil {
		t.Fatalf("reading response: %v", err)
	}

	for _, want := range []string{
		`passfs_operations_total{op="read"} 1`,
		`passfs_operation_errors_total{op="lookup"} 1`,
		`passfs_read_bytes_total 1234`,
		`passfs_open_handles 1`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

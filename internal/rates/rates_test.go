package rates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientFetchesLiveRates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := w.Write([]byte(`{"usd":3.72,"cny":0.515}`)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	r := c.GetRates(context.Background())
	if !r.IsLive {
		t.Fatalf("expected live rates, got %+v", r)
	}
	if r.USD != 3.72 || r.CNY != 0.515 {
		t.Fatalf("unexpected pair: %+v", r)
	}
}

func TestClientFallsBackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // deliberately dead endpoint

	c := NewClient(srv.URL, nil)
	r := c.GetRates(context.Background())
	if r.IsLive {
		t.Fatalf("dead upstream must not be live: %+v", r)
	}
	if r.USD != FallbackUSD || r.CNY != FallbackCNY {
		t.Fatalf("expected static fallback pair, got %+v", r)
	}
}

func TestClientFallsBackOnBadPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(`{"usd":0,"cny":0}`)); err != nil {
			t.Errorf("write: %v", err)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if r := c.GetRates(context.Background()); r.IsLive {
		t.Fatalf("non-positive rates must fall back: %+v", r)
	}
}

func TestStaticProvider(t *testing.T) {
	r := Static{USD: 3.76, CNY: 0.52}.GetRates(context.Background())
	if r.IsLive || r.USD != 3.76 || r.CNY != 0.52 {
		t.Fatalf("static provider: %+v", r)
	}
}

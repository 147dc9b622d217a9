package sase

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/netops-tools/sasectl/pkg/util"
)

type namedObject struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func (o namedObject) ObjectName() string { return o.Name }

// recordedRequest captures what fakeAPI saw.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Header http.Header
	Body   string
}

// fakeAPI serves one collection. Objects in existing are returned by the
// name lookup; writes answer with writeStatus.
type fakeAPI struct {
	mu          sync.Mutex
	existing    map[string]string // name -> id
	envelope    bool
	lookupCode  int
	writeStatus int
	requests    []recordedRequest
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	q := map[string]string{}
	for k := range r.URL.Query() {
		q[k] = r.URL.Query().Get(k)
	}
	f.requests = append(f.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Query:  q,
		Header: r.Header.Clone(),
		Body:   string(body),
	})

	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodGet {
		if f.lookupCode != 0 && f.lookupCode != http.StatusOK {
			w.WriteHeader(f.lookupCode)
			return
		}
		var items []map[string]string
		if id, ok := f.existing[q["name"]]; ok {
			items = append(items, map[string]string{"id": id, "name": q["name"]})
		}
		if items == nil {
			items = []map[string]string{}
		}
		if f.envelope {
			json.NewEncoder(w).Encode(map[string]interface{}{"data": items, "total": len(items)})
		} else {
			json.NewEncoder(w).Encode(items)
		}
		return
	}

	w.WriteHeader(f.writeStatus)
	json.NewEncoder(w).Encode(map[string]string{"method": r.Method})
}

func newTestClient(t *testing.T, api http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = srv.URL
	cfg.Token = "test-token"
	cfg.Timeout = 5 * time.Second
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c, srv
}

func TestConfig_Validate(t *testing.T) {
	t.Run("defaults need a token", func(t *testing.T) {
		cfg := DefaultConfig()
		err := cfg.Validate()
		if err == nil || !strings.Contains(err.Error(), "token is required") {
			t.Errorf("Validate() = %v, want token error", err)
		}
		if !errors.Is(err, util.ErrInvalidConfig) {
			t.Errorf("error should wrap ErrInvalidConfig: %v", err)
		}
	})

	t.Run("valid", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Token = "x"
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() = %v, want nil", err)
		}
	})

	t.Run("bad values", func(t *testing.T) {
		cfg := Config{Token: "x", BaseURL: "not-a-url", Scope: "Remote Networks", UserAgent: "ua"}
		err := cfg.Validate()
		if err == nil {
			t.Fatal("Validate() should fail")
		}
		for _, want := range []string{"timeout must be > 0", "not an absolute URL"} {
			if !strings.Contains(err.Error(), want) {
				t.Errorf("error %q should mention %q", err.Error(), want)
			}
		}
	})
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		api       *fakeAPI
		lookup    string
		wantID    string
		wantFound bool
	}{
		{
			name:      "bare array match",
			api:       &fakeAPI{existing: map[string]string{"branch-01": "id-1"}},
			lookup:    "branch-01",
			wantID:    "id-1",
			wantFound: true,
		},
		{
			name:      "envelope match",
			api:       &fakeAPI{existing: map[string]string{"branch-01": "id-1"}, envelope: true},
			lookup:    "branch-01",
			wantID:    "id-1",
			wantFound: true,
		},
		{
			name:   "empty list",
			api:    &fakeAPI{existing: map[string]string{}},
			lookup: "branch-02",
		},
		{
			name:   "non-200",
			api:    &fakeAPI{existing: map[string]string{"branch-01": "id-1"}, lookupCode: http.StatusNotFound},
			lookup: "branch-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.api)
			id, found, err := c.Resolve(context.Background(), EndpointRemoteNetworks, tt.lookup)
			if err != nil {
				t.Fatalf("Resolve failed: %v", err)
			}
			if id != tt.wantID || found != tt.wantFound {
				t.Errorf("Resolve = (%q, %v), want (%q, %v)", id, found, tt.wantID, tt.wantFound)
			}

			req := tt.api.requests[0]
			if req.Method != http.MethodGet || req.Path != EndpointRemoteNetworks {
				t.Errorf("request = %s %s", req.Method, req.Path)
			}
			if req.Query["scope"] != DefaultScope || req.Query["name"] != tt.lookup {
				t.Errorf("query = %v", req.Query)
			}
		})
	}
}

func TestResolve_MalformedBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>maintenance</html>"))
	}))

	_, _, err := c.Resolve(context.Background(), EndpointIKEGateways, "gw-branch-01")
	if !errors.Is(err, util.ErrAPI) {
		t.Errorf("Resolve error = %v, want ErrAPI", err)
	}
	if errors.Is(err, util.ErrTransport) {
		t.Error("malformed body is not a transport failure")
	}
}

func TestUpsert(t *testing.T) {
	obj := namedObject{Name: "branch-01", Value: 7}

	tests := []struct {
		name       string
		existing   map[string]string
		del        bool
		status     int
		wantAction Action
		wantWrite  string // "METHOD path", empty when no write is expected
		wantBody   bool
	}{
		{
			name:       "absent creates",
			existing:   map[string]string{},
			status:     http.StatusCreated,
			wantAction: ActionCreate,
			wantWrite:  "POST " + EndpointIPSecTunnels,
			wantBody:   true,
		},
		{
			name:       "present updates",
			existing:   map[string]string{"branch-01": "abc-123"},
			status:     http.StatusOK,
			wantAction: ActionUpdate,
			wantWrite:  "PUT " + EndpointIPSecTunnels + "/abc-123",
			wantBody:   true,
		},
		{
			name:       "present deletes",
			existing:   map[string]string{"branch-01": "abc-123"},
			del:        true,
			status:     http.StatusOK,
			wantAction: ActionDelete,
			wantWrite:  "DELETE " + EndpointIPSecTunnels + "/abc-123",
		},
		{
			name:       "absent delete is a no-op",
			existing:   map[string]string{},
			del:        true,
			wantAction: ActionNone,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{existing: tt.existing, writeStatus: tt.status}
			c, _ := newTestClient(t, api)

			res, err := c.Upsert(context.Background(), EndpointIPSecTunnels, obj, tt.del)
			if err != nil {
				t.Fatalf("Upsert failed: %v", err)
			}
			if res.Action != tt.wantAction {
				t.Errorf("Action = %q, want %q", res.Action, tt.wantAction)
			}
			if res.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", res.StatusCode, tt.status)
			}

			if tt.wantWrite == "" {
				if len(api.requests) != 1 {
					t.Fatalf("Expected only the lookup request, got %d requests", len(api.requests))
				}
				if res.Body != nil || res.Raw != nil {
					t.Errorf("no-op result should carry no body, got %v", res.Body)
				}
				return
			}

			if len(api.requests) != 2 {
				t.Fatalf("Expected lookup + write, got %d requests", len(api.requests))
			}
			w := api.requests[1]
			if got := w.Method + " " + w.Path; got != tt.wantWrite {
				t.Errorf("write = %q, want %q", got, tt.wantWrite)
			}
			if w.Query["scope"] != DefaultScope {
				t.Errorf("write scope = %q", w.Query["scope"])
			}
			if _, ok := w.Query["name"]; ok {
				t.Error("write should not carry the name filter")
			}

			if tt.wantBody {
				var sent namedObject
				if err := json.Unmarshal([]byte(w.Body), &sent); err != nil {
					t.Fatalf("write body is not JSON: %q", w.Body)
				}
				if sent != obj {
					t.Errorf("write body = %+v, want %+v", sent, obj)
				}
			} else if w.Body != "" {
				t.Errorf("DELETE should have no body, got %q", w.Body)
			}

			body, ok := res.Body.(map[string]interface{})
			if !ok || body["method"] != w.Method {
				t.Errorf("Body = %v, want decoded response", res.Body)
			}
		})
	}
}

func TestUpsert_Headers(t *testing.T) {
	api := &fakeAPI{existing: map[string]string{}, writeStatus: http.StatusCreated}
	c, _ := newTestClient(t, api)

	if _, err := c.Upsert(context.Background(), EndpointRemoteNetworks, namedObject{Name: "x"}, false); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	seen := map[string]bool{}
	for _, req := range api.requests {
		if got := req.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("%s Authorization = %q", req.Method, got)
		}
		if got := req.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("%s Content-Type = %q", req.Method, got)
		}
		if got := req.Header.Get("User-Agent"); got != DefaultUserAgent {
			t.Errorf("%s User-Agent = %q", req.Method, got)
		}
		id := req.Header.Get(HeaderRequestID)
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("%s X-Request-ID %q is not a UUID", req.Method, id)
		}
		if seen[id] {
			t.Errorf("X-Request-ID %q reused", id)
		}
		seen[id] = true
	}
}

func TestUpsert_NonJSONErrorBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.Write([]byte("[]"))
			return
		}
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	}))

	res, err := c.Upsert(context.Background(), EndpointRemoteNetworks, namedObject{Name: "x"}, false)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}
	if res.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d", res.StatusCode)
	}
	if res.Body != nil {
		t.Errorf("Body = %v, want nil for non-JSON", res.Body)
	}
	if string(res.Raw) != "bad gateway" {
		t.Errorf("Raw = %q", res.Raw)
	}
}

func TestUpsert_TransportError(t *testing.T) {
	c, srv := newTestClient(t, &fakeAPI{})
	srv.Close()

	_, err := c.Upsert(context.Background(), EndpointRemoteNetworks, namedObject{Name: "x"}, false)
	if err == nil {
		t.Fatal("Expected error from closed server")
	}
	if !errors.Is(err, util.ErrTransport) {
		t.Errorf("error should wrap ErrTransport: %v", err)
	}
	var te *util.TransportError
	if !errors.As(err, &te) || te.Method != http.MethodGet {
		t.Errorf("error should be a TransportError for the lookup: %v", err)
	}
}

func TestUpsert_ContextCanceled(t *testing.T) {
	c, _ := newTestClient(t, &fakeAPI{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Upsert(ctx, EndpointRemoteNetworks, namedObject{Name: "x"}, false)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

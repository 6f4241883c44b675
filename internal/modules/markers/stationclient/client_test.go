package stationclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"stationmap/internal/modules/markers/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return NewWithHTTP(ts.URL+"/api/stations", ts.Client(), quietLogger()), ts
}

func TestFetchAll_success(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/stations" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		_, _ = io.WriteString(w, `[{"id":1,"lat":54.02,"lng":21.77,"name":"Stacja 1","openingHour":"9:00","closingHour":"18:00","phone":"123-456-789"}]`)
	})

	recs, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("len = %d; want 1", len(recs))
	}

	m := recs[0].Marker()
	if m.Position != (types.Position{54.02, 21.77}) {
		t.Errorf("Position = %v", m.Position)
	}
	if m.Details.Hours != "Godziny otwarcia: 9:00-18:00" {
		t.Errorf("Hours = %q", m.Details.Hours)
	}
	if m.Details.Phone != "Telefon: 123-456-789" {
		t.Errorf("Phone = %q", m.Details.Phone)
	}
	if m.Details.Name != "Stacja 1" || m.IconKind != types.IconDefault || m.RemoteID != "1" {
		t.Errorf("Marker = %+v", m)
	}
}

func TestFetchAll_skipsMalformed(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[
			{"id":"a","lat":54.0,"lng":21.0},
			"not an object",
			{"lat":"54","lng":21},
			{"name":"no coords"},
			{"lat":120,"lng":21},
			{"lat":54,"lng":-200},
			{"id":{"nested":true},"lat":54,"lng":21},
			{"id":"b","lat":54.1,"lng":21.1,"name":"Stacja B"}
		]`)
	})

	recs, err := c.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len = %d; want 2 (%+v)", len(recs), recs)
	}
	if recs[0].ID != "a" || recs[1].ID != "b" {
		t.Errorf("ids = %q, %q", recs[0].ID, recs[1].ID)
	}

	// Missing text fields fall back to placeholders.
	m := recs[0].Marker()
	if m.Details != types.PlaceholderDetails() {
		t.Errorf("Details = %+v; want placeholders", m.Details)
	}
}

func TestFetchAll_failures(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name: "not found",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.NotFound(w, r)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "object instead of array",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"stations":[]}`)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.handler)
			recs, err := c.FetchAll(context.Background())
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("err = %v; want *FetchError", err)
			}
			if fe.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d; want %d", fe.StatusCode, tt.wantStatus)
			}
			if recs != nil {
				t.Errorf("recs = %v; want nil", recs)
			}
		})
	}
}

func TestFetchAll_transportError(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	c := NewWithHTTP(url+"/api/stations", http.DefaultClient, quietLogger())
	_, err := c.FetchAll(context.Background())
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("err = %v; want *FetchError", err)
	}
	if fe.StatusCode != 0 {
		t.Errorf("StatusCode = %d; want 0", fe.StatusCode)
	}
}

func TestCreate(t *testing.T) {
	var got map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/stations" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id":7,"lat":54.1,"lng":21.8,"name":"Nowa stacja","openingHour":"9:00","closingHour":"18:00","phone":"123-456-789"}`)
	})

	rec, err := c.Create(context.Background(), PayloadFromMarker(types.NewMarker(types.Position{54.1, 21.8})))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID != "7" {
		t.Errorf("ID = %q; want 7", rec.ID)
	}
	want := map[string]any{
		"lat": 54.1, "lng": 21.8, "name": "Nowa stacja",
		"openingHour": "9:00", "closingHour": "18:00", "phone": "123-456-789",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("payload[%s] = %v; want %v", k, got[k], v)
		}
	}
}

func TestCreate_emptyReply(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	rec, err := c.Create(context.Background(), Payload{})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec != (Record{}) {
		t.Errorf("rec = %+v; want zero", rec)
	}
}

func TestCreate_failure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad", http.StatusBadRequest)
	})
	_, err := c.Create(context.Background(), Payload{})
	var ce *CreateError
	if !errors.As(err, &ce) || ce.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v; want *CreateError with 400", err)
	}
}

func TestUpdate(t *testing.T) {
	var body map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/api/stations/42" {
			t.Errorf("request = %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode: %v", err)
		}
		_, _ = io.WriteString(w, `{"id":42,"lat":54,"lng":21,"name":"Orlen"}`)
	})

	patch := DetailsPatch(types.Details{Name: "Orlen", Hours: "Godziny otwarcia: 6:00-22:00", Phone: "Telefon: 555"})
	rec, err := c.Update(context.Background(), "42", patch)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if rec.Name != "Orlen" {
		t.Errorf("Name = %q", rec.Name)
	}
	if _, ok := body["lat"]; ok {
		t.Errorf("patch carries lat: %v", body)
	}
	if body["openingHour"] != "6:00" || body["closingHour"] != "22:00" || body["phone"] != "555" {
		t.Errorf("patch = %v", body)
	}
}

func TestUpdate_failures(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.Update(context.Background(), "9", Payload{})
	var ue *UpdateError
	if !errors.As(err, &ue) || ue.StatusCode != http.StatusNotFound || ue.ID != "9" {
		t.Fatalf("err = %v; want *UpdateError 404 for id 9", err)
	}

	_, err = c.Update(context.Background(), "", Payload{})
	if !errors.As(err, &ue) {
		t.Fatalf("empty id err = %v; want *UpdateError", err)
	}
}

func TestDetailsRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		details types.Details
	}{
		{"hours range", types.Details{Name: "Orlen", Hours: "Godziny otwarcia: 6:00-22:00", Phone: "Telefon: 555"}},
		{"hours without dash", types.Details{Name: "Orlen", Hours: "Godziny otwarcia: całą dobę", Phone: "Telefon: 555"}},
		{"cleared fields", types.Details{Name: "", Hours: "Godziny otwarcia: ", Phone: "Telefon: "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := PayloadFromMarker(types.Marker{Position: types.Position{54, 21}, Details: tt.details})
			p.Lat, p.Lng = nil, nil
			patch, err := json.Marshal(p)
			if err != nil {
				t.Fatal(err)
			}
			// The station service echoes the stored fields next to the id and coordinates.
			body := `{"id":7,"lat":54,"lng":21,` + string(patch[1:])

			rec, err := decodeRecord(json.RawMessage(body))
			if err != nil {
				t.Fatalf("decodeRecord(%s): %v", body, err)
			}
			if got := rec.Marker().Details; got != tt.details {
				t.Errorf("reloaded %+v; saved %+v", got, tt.details)
			}
		})
	}
}

func TestDecodeRecord_partialHours(t *testing.T) {
	rec, err := decodeRecord(json.RawMessage(`{"lat":54,"lng":21,"openingHour":"całą dobę"}`))
	if err != nil {
		t.Fatal(err)
	}
	if rec.OpeningHour != "całą dobę" || rec.ClosingHour != "" {
		t.Errorf("hours = %q/%q", rec.OpeningHour, rec.ClosingHour)
	}
	if rec.Name != types.PlaceholderName || rec.Phone != types.PlaceholderPhone {
		t.Errorf("absent fields not defaulted: %+v", rec)
	}
}

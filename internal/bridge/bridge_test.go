package bridge

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/novanode-ai/callbridge/internal/observe"
)

// testBridge wires a Bridge against an in-process backend with isolated
// metrics.
func testBridge(t *testing.T, handler http.Handler) *Bridge {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	m, err := observe.NewMetrics(mp)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(client, log, WithMetrics(m))
}

func TestInvokeUnknownFunction(t *testing.T) {
	t.Parallel()

	b := testBridge(t, http.NewServeMux())
	got := b.Invoke(context.Background(), CallRequest{Name: "doesSomething", Arguments: "{}"})
	want := "Function doesSomething not implemented."
	if got != want {
		t.Errorf("Invoke() = %q, want %q", got, want)
	}
}

func TestInvokeMissingArgument(t *testing.T) {
	t.Parallel()

	b := testBridge(t, http.NewServeMux())
	got := b.Invoke(context.Background(), CallRequest{Name: "checkClientId", Arguments: "{}"})
	if !strings.HasPrefix(got, "Error executing checkClientId:") {
		t.Errorf("Invoke() = %q, want missing-argument error", got)
	}
	if !strings.Contains(got, "clientId") {
		t.Errorf("Invoke() = %q, want mention of the missing argument", got)
	}
}

func TestInvokeMalformedArguments(t *testing.T) {
	t.Parallel()

	b := testBridge(t, http.NewServeMux())
	got := b.Invoke(context.Background(), CallRequest{Name: "checkClientId", Arguments: "{not json"})
	if !strings.HasPrefix(got, "Error executing checkClientId:") {
		t.Errorf("Invoke() = %q, want argument parse error", got)
	}
}

func TestCheckClientID(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /users/search/42", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"username": "maria"})
	})
	b := testBridge(t, mux)

	got := b.Invoke(context.Background(), CallRequest{Name: "checkClientId", Arguments: `{"clientId":"42"}`})
	want := "Welcome back, maria! Your client ID 42 is valid. How can I help you today?"
	if got != want {
		t.Errorf("Invoke() = %q, want %q", got, want)
	}

	got = b.Invoke(context.Background(), CallRequest{Name: "checkClientId", Arguments: `{"clientId":"99"}`})
	want = "Client ID 99 not found. Please provide a valid client ID."
	if got != want {
		t.Errorf("Invoke() = %q, want %q", got, want)
	}
}

func TestSearchProducts(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /products/search", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode search request: %v", err)
		}
		if req["query"] != "red wine" {
			t.Errorf("query = %q, want %q", req["query"], "red wine")
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"_id": "p1", "name": "Rioja Reserva", "price": 19.99, "relevanceScore": 0.923},
			{"_id": "p2", "name": "Malbec", "price": 12.5},
		})
	})
	b := testBridge(t, mux)

	got := b.Invoke(context.Background(), CallRequest{Name: "searchProducts", Arguments: `{"query":" red wine "}`})
	if !strings.Contains(got, "1. Rioja Reserva - $19.99 (ID: p1) (Relevance: 92.3%)") {
		t.Errorf("Invoke() = %q, want scored product line", got)
	}
	if !strings.Contains(got, "2. Malbec - $12.5 (ID: p2)") {
		t.Errorf("Invoke() = %q, want unscored product line", got)
	}
	if strings.Contains(got, "(ID: p2) (Relevance") {
		t.Errorf("Invoke() = %q, relevance must be omitted when the score is zero", got)
	}
	if !strings.HasPrefix(got, "Here are the products I found using vector similarity + text search for 'red wine':") {
		t.Errorf("Invoke() = %q, want search preamble", got)
	}
}

func TestSearchProductsEmpty(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /products/search", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]any{})
	})
	b := testBridge(t, mux)

	got := b.Invoke(context.Background(), CallRequest{Name: "searchProducts", Arguments: `{"query":"unobtanium"}`})
	want := "No products found matching 'unobtanium'. Please try again with different keywords."
	if got != want {
		t.Errorf("Invoke() = %q, want %q", got, want)
	}
}

func TestCreateOrder(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ClientID int         `json:"clientId"`
			Products []orderItem `json:"products"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode order request: %v", err)
		}
		if req.ClientID != 7 {
			t.Errorf("clientId = %d, want 7 (numeric)", req.ClientID)
		}
		if len(req.Products) != 2 || req.Products[0].Quantity != 3 {
			t.Errorf("products = %+v, want two items with quantity 3 first", req.Products)
		}
		json.NewEncoder(w).Encode(map[string]string{"_id": "ord-55"})
	})
	b := testBridge(t, mux)

	args := `{"clientId":"7","products":[{"productId":"p1","quantity":3},{"productId":"p2","quantity":1}]}`
	got := b.Invoke(context.Background(), CallRequest{Name: "createOrder", Arguments: args})
	want := "Order created successfully! Order ID: ord-55 with 3x product ID p1, 1x product ID p2. Would you like me to finish the order now?"
	if got != want {
		t.Errorf("Invoke() = %q, want %q", got, want)
	}
}

func TestCreateOrderNonNumericClient(t *testing.T) {
	t.Parallel()

	b := testBridge(t, http.NewServeMux())
	args := `{"clientId":"abc","products":[{"productId":"p1","quantity":1}]}`
	got := b.Invoke(context.Background(), CallRequest{Name: "createOrder", Arguments: args})
	if !strings.HasPrefix(got, "Error creating order:") {
		t.Errorf("Invoke() = %q, want order creation error", got)
	}
}

func TestCreateSingleProductOrder(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"_id": "ord-9"})
	})
	b := testBridge(t, mux)

	args := `{"clientId":"12","productId":"p8","quantity":2}`
	got := b.Invoke(context.Background(), CallRequest{Name: "createSingleProductOrder", Arguments: args})
	want := "Order created successfully! Order ID: ord-9 with 2x product ID p8. Would you like me to finish the order now?"
	if got != want {
		t.Errorf("Invoke() = %q, want %q", got, want)
	}
}

func TestFinishOrder(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /orders/finish/ord-55", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	b := testBridge(t, mux)

	args := `{"orderId":"ord-55","date":"2025-03-01","address":"Calle Mayor 1"}`
	got := b.Invoke(context.Background(), CallRequest{Name: "finishOrder", Arguments: args})
	if !strings.Contains(got, "ord-55") || !strings.Contains(got, "Calle Mayor 1") {
		t.Errorf("Invoke() = %q, want delivery confirmation", got)
	}
}

func TestCaptureLeadOmitsEmptyFields(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /leads", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode lead: %v", err)
		}
		if _, ok := body["zip_code"]; ok {
			t.Error("zip_code sent although not collected")
		}
		if body["age"] != float64(44) {
			t.Errorf("age = %v, want 44", body["age"])
		}
		w.WriteHeader(http.StatusOK)
	})
	b := testBridge(t, mux)

	args := `{"call_outcome":"interested","age":44,"first_name":"Ana"}`
	got := b.Invoke(context.Background(), CallRequest{Name: "captureLead", Arguments: args})
	if !strings.Contains(got, "licensed agent") {
		t.Errorf("Invoke() = %q, want interested-outcome acknowledgement", got)
	}
}

func TestScheduleConsultationBooksFreeSlot(t *testing.T) {
	t.Parallel()

	var created bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /calendar/events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]calendarEvent{
			{Title: "Standup", Date: "2025-04-10", StartTime: "09:00"},
		})
	})
	mux.HandleFunc("POST /calendar/events", func(w http.ResponseWriter, r *http.Request) {
		created = true
		var ev map[string]any
		if err := json.NewDecoder(r.Body).Decode(&ev); err != nil {
			t.Errorf("decode event: %v", err)
		}
		if ev["title"] != "Consultation - Pablo" {
			t.Errorf("title = %v, want consultation title", ev["title"])
		}
		w.WriteHeader(http.StatusOK)
	})
	b := testBridge(t, mux)

	args := `{"client_name":"Pablo","contact_method":"email","project_description":"voice bot","consultation_outcome":"scheduled","preferred_date":"2025-04-10","preferred_time":"10:00"}`
	got := b.Invoke(context.Background(), CallRequest{Name: "scheduleConsultation", Arguments: args})
	if !created {
		t.Fatal("expected calendar event to be created")
	}
	if !strings.Contains(got, "2025-04-10 at 10:00") {
		t.Errorf("Invoke() = %q, want booking confirmation", got)
	}
}

func TestScheduleConsultationConflict(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /calendar/events", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]calendarEvent{
			{Title: "Other call", Date: "2025-04-10", StartTime: "10:00"},
		})
	})
	mux.HandleFunc("POST /calendar/events", func(w http.ResponseWriter, r *http.Request) {
		t.Error("no event may be created for a taken slot")
	})
	b := testBridge(t, mux)

	args := `{"client_name":"Pablo","contact_method":"email","project_description":"voice bot","consultation_outcome":"scheduled","preferred_date":"2025-04-10","preferred_time":"10:00"}`
	got := b.Invoke(context.Background(), CallRequest{Name: "scheduleConsultation", Arguments: args})
	if !strings.Contains(got, "already booked") {
		t.Errorf("Invoke() = %q, want conflict message", got)
	}
}

func TestScheduleConsultationNonScheduledSkipsBackend(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected backend call: %s %s", r.Method, r.URL.Path)
	})
	b := testBridge(t, mux)

	args := `{"client_name":"Pablo","contact_method":"phone","project_description":"crm","consultation_outcome":"not_interested"}`
	got := b.Invoke(context.Background(), CallRequest{Name: "scheduleConsultation", Arguments: args})
	if !strings.Contains(got, "Thanks for your time") {
		t.Errorf("Invoke() = %q, want polite acknowledgement", got)
	}
}

func TestCalendarAvailability(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /calendar/events", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("date"); got != "2025-04-10" {
			t.Errorf("date query = %q, want 2025-04-10", got)
		}
		json.NewEncoder(w).Encode([]calendarEvent{
			{Title: "Taken", Date: "2025-04-10", StartTime: "10:00"},
		})
	})
	b := testBridge(t, mux)

	args := `{"date":"2025-04-10","startTime":"10:00","location":"Zoom"}`
	got := b.Invoke(context.Background(), CallRequest{Name: "checkCalendarAvailability", Arguments: args})
	if !strings.Contains(got, "already booked") {
		t.Errorf("Invoke() = %q, want booked message", got)
	}

	args = `{"date":"2025-04-10","startTime":"11:00","location":"Zoom"}`
	got = b.Invoke(context.Background(), CallRequest{Name: "checkCalendarAvailability", Arguments: args})
	if !strings.Contains(got, "available") {
		t.Errorf("Invoke() = %q, want available message", got)
	}
}

func TestCreateAppointmentConfirmsNameBeforeTime(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /appointments", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	b := testBridge(t, mux)

	args := `{"patientName":"Jane Doe","isReturningPatient":true,"appointmentType":"checkup","appointmentTime":"3 PM","reminderPreference":"sms"}`
	got := b.Invoke(context.Background(), CallRequest{Name: "createAppointment", Arguments: args})
	if !strings.Contains(got, "confirmed for Jane Doe, 3 PM") {
		t.Errorf("Invoke() = %q, want the patient named before the time", got)
	}
	if !strings.Contains(got, "reminder via sms") {
		t.Errorf("Invoke() = %q, want the reminder preference echoed", got)
	}
}

func TestAppointmentAvailability(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /appointments/availability/check", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"availableSlots": []string{"10:30 AM", "11:15 AM"}})
	})
	b := testBridge(t, mux)

	args := `{"date":"2025-01-15","timeSlots":["10:30 AM","11:15 AM"]}`
	got := b.Invoke(context.Background(), CallRequest{Name: "checkAppointmentAvailability", Arguments: args})
	if !strings.Contains(got, "10:30 AM, 11:15 AM") {
		t.Errorf("Invoke() = %q, want slot list", got)
	}
}

func TestCheckInPassengerNeedsIdentifier(t *testing.T) {
	t.Parallel()

	b := testBridge(t, http.NewServeMux())
	got := b.Invoke(context.Background(), CallRequest{Name: "checkInPassenger", Arguments: `{"seatPreference":"window"}`})
	if !strings.Contains(got, "booking code") {
		t.Errorf("Invoke() = %q, want identifier prompt", got)
	}
}

func TestBackendFailureIsSpoken(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /products/search", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	b := testBridge(t, mux)

	got := b.Invoke(context.Background(), CallRequest{Name: "searchProducts", Arguments: `{"query":"wine"}`})
	if !strings.HasPrefix(got, "Error searching products:") {
		t.Errorf("Invoke() = %q, want spoken backend error", got)
	}
}

package tools

import (
	"regexp"
	"slices"
	"testing"
)

var allModes = []string{ModeOrders, ModeAppointments, ModeLeads, ModeAirline, ModeConsultation}

func TestCatalog_Names(t *testing.T) {
	t.Parallel()
	want := []string{
		"checkClientId",
		"searchProducts",
		"createOrder",
		"createSingleProductOrder",
		"finishOrder",
		"getOrdersByClientId",
		"createAppointment",
		"checkAppointmentAvailability",
		"captureLead",
		"changeBooking",
		"checkInPassenger",
		"reportLostBaggage",
		"scheduleConsultation",
		"checkCalendarAvailability",
	}

	var got []string
	for _, s := range Catalog() {
		got = append(got, s.Name)
	}
	if !slices.Equal(got, want) {
		t.Errorf("catalog names:\n got %v\nwant %v", got, want)
	}
}

func TestCatalog_SpecsAreWellFormed(t *testing.T) {
	t.Parallel()
	seen := map[string]bool{}
	for _, s := range Catalog() {
		if s.Name == "" {
			t.Fatal("spec with empty name")
		}
		if seen[s.Name] {
			t.Errorf("%s: duplicate name", s.Name)
		}
		seen[s.Name] = true

		if s.Description == "" {
			t.Errorf("%s: missing description", s.Name)
		}
		if s.Method != "GET" && s.Method != "POST" {
			t.Errorf("%s: unexpected method %q", s.Name, s.Method)
		}
		if s.Path == "" || s.Path[0] != '/' {
			t.Errorf("%s: path %q must start with /", s.Name, s.Path)
		}
		if len(s.Modes) == 0 {
			t.Errorf("%s: offered in no mode", s.Name)
		}
		for _, m := range s.Modes {
			if !slices.Contains(allModes, m) {
				t.Errorf("%s: unknown mode %q", s.Name, m)
			}
		}
		for _, p := range s.Params {
			if p.Name == "" || p.Type == "" {
				t.Errorf("%s: parameter with empty name or type: %+v", s.Name, p)
			}
			if p.Type == "array" && p.Items == nil {
				t.Errorf("%s: array parameter %q missing items schema", s.Name, p.Name)
			}
		}
	}
}

// Every {placeholder} in a backend path must be backed by a declared required
// parameter, otherwise the dispatcher cannot interpolate it.
func TestCatalog_PathPlaceholdersAreRequiredParams(t *testing.T) {
	t.Parallel()
	placeholder := regexp.MustCompile(`\{([^}]+)\}`)
	for _, s := range Catalog() {
		for _, m := range placeholder.FindAllStringSubmatch(s.Path, -1) {
			if !slices.Contains(s.Required(), m[1]) {
				t.Errorf("%s: path placeholder %q is not a required parameter", s.Name, m[1])
			}
		}
	}
}

func TestCatalog_MutatingFlagMatchesMethod(t *testing.T) {
	t.Parallel()
	for _, s := range Catalog() {
		if s.Mutating && s.Method != "POST" {
			t.Errorf("%s: mutating functions must POST, got %s", s.Name, s.Method)
		}
	}
}

func TestRequired_PreservesDeclarationOrder(t *testing.T) {
	t.Parallel()
	s, ok := Lookup("finishOrder")
	if !ok {
		t.Fatal("finishOrder missing from catalog")
	}
	want := []string{"orderId", "date", "address"}
	if got := s.Required(); !slices.Equal(got, want) {
		t.Errorf("required: got %v, want %v", got, want)
	}
}

func TestForMode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		mode  string
		count int
		has   string
	}{
		{ModeOrders, 6, "checkClientId"},
		{ModeAppointments, 2, "createAppointment"},
		{ModeLeads, 1, "captureLead"},
		{ModeAirline, 3, "changeBooking"},
		{ModeConsultation, 2, "scheduleConsultation"},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			t.Parallel()
			specs := ForMode(tt.mode)
			if len(specs) != tt.count {
				t.Fatalf("got %d specs, want %d", len(specs), tt.count)
			}
			found := false
			for _, s := range specs {
				if s.Name == tt.has {
					found = true
				}
				if !slices.Contains(s.Modes, tt.mode) {
					t.Errorf("%s leaked into mode %s", s.Name, tt.mode)
				}
			}
			if !found {
				t.Errorf("expected %s in mode %s", tt.has, tt.mode)
			}
		})
	}
}

func TestForMode_Unknown(t *testing.T) {
	t.Parallel()
	if specs := ForMode("banking"); len(specs) != 0 {
		t.Errorf("unknown mode should yield no specs, got %d", len(specs))
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()
	s, ok := Lookup("captureLead")
	if !ok {
		t.Fatal("captureLead missing from catalog")
	}
	if s.Path != "/leads" {
		t.Errorf("path: got %q", s.Path)
	}

	if _, ok := Lookup("teleport"); ok {
		t.Error("Lookup of unknown name should report false")
	}
}

func TestDefinition_Rendering(t *testing.T) {
	t.Parallel()
	s, ok := Lookup("captureLead")
	if !ok {
		t.Fatal("captureLead missing from catalog")
	}
	def := s.Definition()

	if def.Name != "captureLead" {
		t.Errorf("name: got %q", def.Name)
	}
	if def.Parameters["type"] != "object" {
		t.Errorf("parameters type: got %v", def.Parameters["type"])
	}

	props, ok := def.Parameters["properties"].(map[string]any)
	if !ok {
		t.Fatalf("properties: got %T", def.Parameters["properties"])
	}
	if len(props) != len(s.Params) {
		t.Errorf("got %d properties, want %d", len(props), len(s.Params))
	}

	outcome, ok := props["call_outcome"].(map[string]any)
	if !ok {
		t.Fatal("call_outcome property missing")
	}
	enum, ok := outcome["enum"].([]string)
	if !ok || !slices.Contains(enum, "callback_requested") {
		t.Errorf("call_outcome enum: got %v", outcome["enum"])
	}

	req, ok := def.Parameters["required"].([]string)
	if !ok || !slices.Equal(req, []string{"call_outcome"}) {
		t.Errorf("required: got %v", def.Parameters["required"])
	}
}

func TestDefinition_ArrayItems(t *testing.T) {
	t.Parallel()
	s, ok := Lookup("createOrder")
	if !ok {
		t.Fatal("createOrder missing from catalog")
	}
	def := s.Definition()

	props := def.Parameters["properties"].(map[string]any)
	products, ok := props["products"].(map[string]any)
	if !ok {
		t.Fatal("products property missing")
	}
	if products["type"] != "array" {
		t.Errorf("products type: got %v", products["type"])
	}
	if products["items"] == nil {
		t.Error("products items schema missing")
	}
}

func TestDefinition_NoRequiredKeyWhenAllOptional(t *testing.T) {
	t.Parallel()
	s, ok := Lookup("checkInPassenger")
	if !ok {
		t.Fatal("checkInPassenger missing from catalog")
	}
	def := s.Definition()
	if _, present := def.Parameters["required"]; present {
		t.Error("required key should be omitted when no parameter is mandatory")
	}
}

func TestDefinitions_CoversCatalog(t *testing.T) {
	t.Parallel()
	defs := Definitions()
	if len(defs) != len(Catalog()) {
		t.Fatalf("got %d definitions, want %d", len(defs), len(Catalog()))
	}
}

func TestCatalog_ReturnsFreshSlice(t *testing.T) {
	t.Parallel()
	a := Catalog()
	a[0].Name = "mutated"
	b := Catalog()
	if b[0].Name == "mutated" {
		t.Error("Catalog must return a fresh slice on every call")
	}
}

package tools

// Agent modes known to the dispatcher.
const (
	ModeOrders       = "orders"
	ModeAppointments = "appointments"
	ModeLeads        = "leads"
	ModeAirline      = "airline"
	ModeConsultation = "jarvis-consultation"
)

// Catalog returns the full function catalog. The returned slice is freshly
// allocated on every call, so callers may reorder or filter it freely.
func Catalog() []Spec {
	return []Spec{
		// ── orders ───────────────────────────────────────────────────────
		{
			Name:        "checkClientId",
			Description: "Validate a client ID and greet the returning customer by name.",
			Params: []Param{
				{Name: "clientId", Type: "string", Required: true, Description: "The client ID to validate."},
			},
			Method: "GET",
			Path:   "/users/search/{clientId}",
			Modes:  []string{ModeOrders},
		},
		{
			Name:        "searchProducts",
			Description: "Search the product catalog by free-text query and return matching products with prices.",
			Params: []Param{
				{Name: "query", Type: "string", Required: true, Description: "Free-text search query describing the product."},
			},
			Method: "POST",
			Path:   "/products/search",
			Modes:  []string{ModeOrders},
		},
		{
			Name:        "createOrder",
			Description: "Create a new order containing one or more products for a client.",
			Params: []Param{
				{Name: "clientId", Type: "string", Required: true, Description: "The client placing the order."},
				{
					Name: "products", Type: "array", Required: true,
					Description: "The products to order.",
					Items: map[string]any{
						"type": "object",
						"properties": map[string]any{
							"productId": map[string]any{"type": "string"},
							"quantity":  map[string]any{"type": "integer"},
						},
						"required": []string{"productId", "quantity"},
					},
				},
			},
			Method:   "POST",
			Path:     "/orders",
			Mutating: true,
			Modes:    []string{ModeOrders},
		},
		{
			Name:        "createSingleProductOrder",
			Description: "Create a new order for a single product.",
			Params: []Param{
				{Name: "clientId", Type: "string", Required: true, Description: "The client placing the order."},
				{Name: "productId", Type: "string", Required: true, Description: "The product to order."},
				{Name: "quantity", Type: "integer", Required: true, Description: "How many units to order."},
			},
			Method:   "POST",
			Path:     "/orders",
			Mutating: true,
			Modes:    []string{ModeOrders},
		},
		{
			Name:        "finishOrder",
			Description: "Finalise an existing order with a delivery date and address.",
			Params: []Param{
				{Name: "orderId", Type: "string", Required: true, Description: "The order to finalise."},
				{Name: "date", Type: "string", Required: true, Description: "Requested delivery date."},
				{Name: "address", Type: "string", Required: true, Description: "Delivery address."},
			},
			Method:   "POST",
			Path:     "/orders/finish/{orderId}",
			Mutating: true,
			Modes:    []string{ModeOrders},
		},
		{
			Name:        "getOrdersByClientId",
			Description: "List all orders belonging to a client.",
			Params: []Param{
				{Name: "clientId", Type: "string", Required: true, Description: "The client whose orders to list."},
			},
			Method: "GET",
			Path:   "/orders/user/{clientId}",
			Modes:  []string{ModeOrders},
		},

		// ── appointments ─────────────────────────────────────────────────
		{
			Name:        "createAppointment",
			Description: "Book a patient appointment.",
			Params: []Param{
				{Name: "patientName", Type: "string", Required: true, Description: "Full name of the patient."},
				{Name: "isReturningPatient", Type: "boolean", Required: true, Description: "Whether the patient has visited before."},
				{Name: "appointmentType", Type: "string", Required: true, Description: "The kind of appointment requested."},
				{Name: "appointmentTime", Type: "string", Required: true, Description: "Requested date and time."},
				{Name: "reminderPreference", Type: "string", Required: true, Description: "How the patient wants to be reminded."},
			},
			Method:   "POST",
			Path:     "/appointments",
			Mutating: true,
			Modes:    []string{ModeAppointments},
		},
		{
			Name:        "checkAppointmentAvailability",
			Description: "Check which appointment time slots are free on a given date.",
			Params: []Param{
				{Name: "date", Type: "string", Required: true, Description: "The date to check, YYYY-MM-DD."},
				{
					Name: "timeSlots", Type: "array",
					Description: "Specific time slots to check. Omit to check the whole day.",
					Items:       map[string]any{"type": "string"},
				},
			},
			Method: "GET",
			Path:   "/appointments/availability/check",
			Modes:  []string{ModeAppointments},
		},

		// ── insurance leads ──────────────────────────────────────────────
		{
			Name:        "captureLead",
			Description: "Record the outcome of an insurance sales call together with any collected prospect details.",
			Params: []Param{
				{
					Name: "call_outcome", Type: "string", Required: true,
					Description: "How the call ended.",
					Enum:        []string{"interested", "not_interested", "callback_requested", "transferred"},
				},
				{Name: "coverage_type", Type: "string", Description: "Coverage the prospect asked about."},
				{Name: "premium_change", Type: "string", Description: "Reported change in current premium."},
				{Name: "zip_code", Type: "string", Description: "Prospect ZIP code."},
				{Name: "age", Type: "integer", Description: "Prospect age."},
				{Name: "tobacco_user", Type: "boolean", Description: "Whether the prospect uses tobacco."},
				{Name: "objection_text", Type: "string", Description: "Verbatim objection, if any."},
				{Name: "first_name", Type: "string", Description: "Prospect first name."},
				{Name: "last_name", Type: "string", Description: "Prospect last name."},
				{Name: "phone", Type: "string", Description: "Prospect phone number."},
			},
			Method:   "POST",
			Path:     "/leads",
			Mutating: true,
			Modes:    []string{ModeLeads},
		},

		// ── airline service ──────────────────────────────────────────────
		{
			Name:        "changeBooking",
			Description: "Change the date or flight of an existing booking.",
			Params: []Param{
				{Name: "bookingCode", Type: "string", Required: true, Description: "Six-character booking reference."},
				{Name: "newDate", Type: "string", Description: "New travel date, if changing."},
				{Name: "newFlightNumber", Type: "string", Description: "New flight number, if changing."},
			},
			Method:   "POST",
			Path:     "/airline/booking/change",
			Mutating: true,
			Modes:    []string{ModeAirline},
		},
		{
			Name:        "checkInPassenger",
			Description: "Check a passenger in by booking code or loyalty number, optionally with a seat preference.",
			Params: []Param{
				{Name: "bookingCode", Type: "string", Description: "Six-character booking reference."},
				{Name: "loyaltyNumber", Type: "string", Description: "Frequent flyer number."},
				{Name: "seatPreference", Type: "string", Description: "Window, aisle, or a specific seat."},
			},
			Method:   "POST",
			Path:     "/airline/checkin",
			Mutating: true,
			Modes:    []string{ModeAirline},
		},
		{
			Name:        "reportLostBaggage",
			Description: "Open a lost baggage report for a passenger.",
			Params: []Param{
				{Name: "baggageCode", Type: "string", Required: true, Description: "Baggage tag code."},
				{Name: "passengerName", Type: "string", Required: true, Description: "Full name of the passenger."},
				{Name: "lastSeenLocation", Type: "string", Required: true, Description: "Where the bag was last seen."},
			},
			Method:   "POST",
			Path:     "/airline/baggage/lost",
			Mutating: true,
			Modes:    []string{ModeAirline},
		},

		// ── consultation scheduling ──────────────────────────────────────
		{
			Name:        "scheduleConsultation",
			Description: "Record the outcome of a consultation call and, when a slot was agreed, book it in the calendar.",
			Params: []Param{
				{Name: "client_name", Type: "string", Required: true, Description: "Name of the prospective client."},
				{Name: "contact_method", Type: "string", Required: true, Description: "How to reach the client (email, phone)."},
				{Name: "project_description", Type: "string", Required: true, Description: "What the client wants to build."},
				{
					Name: "consultation_outcome", Type: "string", Required: true,
					Description: "How the call ended.",
					Enum:        []string{"scheduled", "interested", "not_interested", "follow_up"},
				},
				{Name: "industry", Type: "string", Description: "Client industry."},
				{Name: "business_challenges", Type: "string", Description: "Challenges the client described."},
				{Name: "timeline", Type: "string", Description: "Desired project timeline."},
				{Name: "budget_range", Type: "string", Description: "Stated budget range."},
				{Name: "preferred_date", Type: "string", Description: "Preferred consultation date, YYYY-MM-DD."},
				{Name: "preferred_time", Type: "string", Description: "Preferred consultation time, HH:MM."},
			},
			Method:   "POST",
			Path:     "/calendar/events",
			Mutating: true,
			Modes:    []string{ModeConsultation},
		},
		{
			Name:        "checkCalendarAvailability",
			Description: "Check whether a calendar slot is free at a given date, time and location.",
			Params: []Param{
				{Name: "date", Type: "string", Required: true, Description: "The date to check, YYYY-MM-DD."},
				{Name: "startTime", Type: "string", Required: true, Description: "The start time to check, HH:MM."},
				{Name: "location", Type: "string", Required: true, Description: "Meeting location or channel."},
			},
			Method: "GET",
			Path:   "/calendar/events",
			Modes:  []string{ModeConsultation},
		},
	}
}

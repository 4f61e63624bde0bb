// Package bridge executes dispatched function calls against the business
// backend REST API. It is the single seam between the LLM's tool-call output
// and the outside world: the session runtime hands every call to
// [Bridge.Invoke] and speaks whatever string comes back.
//
// Invoke never returns an error. The model cannot do anything useful with a
// Go error value mid-conversation, so every failure mode is folded into a
// human-readable sentence the agent can say out loud.
package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/novanode-ai/callbridge/internal/observe"
	"github.com/novanode-ai/callbridge/internal/tools"
)

// Bridge routes function calls to the backend and renders results as
// speakable text. Safe for concurrent use.
type Bridge struct {
	client  *Client
	log     *slog.Logger
	metrics *observe.Metrics
}

// Option customises a [Bridge].
type Option func(*Bridge)

// WithMetrics overrides the metrics instance. Mainly for tests that need an
// isolated meter provider.
func WithMetrics(m *observe.Metrics) Option {
	return func(b *Bridge) { b.metrics = m }
}

// New creates a Bridge dispatching through the given backend client.
func New(client *Client, log *slog.Logger, opts ...Option) *Bridge {
	b := &Bridge{client: client, log: log}
	for _, opt := range opts {
		opt(b)
	}
	if b.log == nil {
		b.log = slog.Default()
	}
	if b.metrics == nil {
		b.metrics = observe.DefaultMetrics()
	}
	return b
}

// CallRequest is one function call as produced by the LLM: the function name
// and the raw JSON argument object.
type CallRequest struct {
	Name      string
	Arguments string
}

// Invoke executes the call and returns the agent-facing result text. All
// failures are rendered into the returned string:
//
//   - a name outside the catalog yields "Function <name> not implemented."
//   - malformed or missing arguments yield "Error executing <name>: <detail>"
//   - backend failures are rendered by the individual handlers into
//     function-specific apology strings
func (b *Bridge) Invoke(ctx context.Context, call CallRequest) string {
	spec, ok := tools.Lookup(call.Name)
	if !ok {
		b.log.Warn("unknown function requested", "function", call.Name)
		b.metrics.RecordToolCall(ctx, call.Name, "unknown")
		return fmt.Sprintf("Function %s not implemented.", call.Name)
	}

	start := time.Now()
	result, err := b.dispatch(ctx, spec, call)
	status := "ok"
	if err != nil {
		status = "error"
		b.log.Error("function call failed", "function", call.Name, "error", err)
		result = fmt.Sprintf("Error executing %s: %v", call.Name, err)
	}

	b.metrics.RecordToolCall(ctx, call.Name, status)
	b.metrics.ToolExecutionDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(observe.Attr("tool", call.Name)))
	return result
}

// dispatch parses and validates the arguments, then hands off to the handler
// for the named function. Returned errors are argument-level problems only;
// backend failures never escape the handlers.
func (b *Bridge) dispatch(ctx context.Context, spec tools.Spec, call CallRequest) (string, error) {
	args, err := parseArgs(call.Arguments)
	if err != nil {
		return "", err
	}
	for _, name := range spec.Required() {
		if v, ok := args[name]; !ok || v == nil {
			return "", &missingArgumentError{name: name}
		}
	}

	switch call.Name {
	case "checkClientId":
		return b.checkClientID(ctx, args)
	case "searchProducts":
		return b.searchProducts(ctx, args)
	case "createOrder":
		return b.createOrder(ctx, args)
	case "createSingleProductOrder":
		return b.createSingleProductOrder(ctx, args)
	case "finishOrder":
		return b.finishOrder(ctx, args)
	case "getOrdersByClientId":
		return b.ordersByClientID(ctx, args)
	case "createAppointment":
		return b.createAppointment(ctx, args)
	case "checkAppointmentAvailability":
		return b.appointmentAvailability(ctx, args)
	case "captureLead":
		return b.captureLead(ctx, args)
	case "changeBooking":
		return b.changeBooking(ctx, args)
	case "checkInPassenger":
		return b.checkInPassenger(ctx, args)
	case "reportLostBaggage":
		return b.reportLostBaggage(ctx, args)
	case "scheduleConsultation":
		return b.scheduleConsultation(ctx, args)
	case "checkCalendarAvailability":
		return b.calendarAvailability(ctx, args)
	}

	// Catalog entry without a handler. The drift test in tools guards against
	// this, but fail soft if it ever happens at runtime.
	return "", fmt.Errorf("no handler registered for %s", call.Name)
}

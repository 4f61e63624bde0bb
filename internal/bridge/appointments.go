package bridge

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// createAppointment books a patient appointment.
func (b *Bridge) createAppointment(ctx context.Context, args callArgs) (string, error) {
	patientName, err := args.stringArg("patientName")
	if err != nil {
		return "", err
	}
	returning, err := args.boolArg("isReturningPatient")
	if err != nil {
		return "", err
	}
	appointmentType, err := args.stringArg("appointmentType")
	if err != nil {
		return "", err
	}
	appointmentTime, err := args.stringArg("appointmentTime")
	if err != nil {
		return "", err
	}
	reminder, err := args.stringArg("reminderPreference")
	if err != nil {
		return "", err
	}
	b.log.Info("creating appointment", "patient", patientName, "time", appointmentTime)

	body := map[string]any{
		"patientName":        patientName,
		"isReturningPatient": returning,
		"appointmentType":    appointmentType,
		"appointmentTime":    appointmentTime,
		"reminderPreference": reminder,
	}
	if err := b.client.Post(ctx, "/appointments", body, nil); err != nil {
		return fmt.Sprintf("Error creating appointment: %v", err), nil
	}
	return fmt.Sprintf("Your %s appointment is confirmed for %s, %s. You will receive a reminder via %s. Is there anything else I can help you with?",
		appointmentType, patientName, appointmentTime, reminder), nil
}

// appointmentAvailability checks free slots on a date, optionally narrowed to
// specific times.
func (b *Bridge) appointmentAvailability(ctx context.Context, args callArgs) (string, error) {
	date, err := args.stringArg("date")
	if err != nil {
		return "", err
	}
	slots := args.stringsArg("timeSlots")
	b.log.Info("checking appointment availability", "date", date, "slots", len(slots))

	query := url.Values{"date": {date}}
	if len(slots) > 0 {
		query.Set("timeSlots", strings.Join(slots, ","))
	}

	var result struct {
		AvailableSlots []string `json:"availableSlots"`
	}
	if err := b.client.Get(ctx, "/appointments/availability/check", query, &result); err != nil {
		return fmt.Sprintf("Error checking appointment availability: %v", err), nil
	}
	if len(result.AvailableSlots) == 0 {
		return fmt.Sprintf("I'm sorry, there are no available slots on %s. Would you like to try another date?", date), nil
	}
	return fmt.Sprintf("The following time slots are available on %s: %s. Which one works best for you?",
		date, strings.Join(result.AvailableSlots, ", ")), nil
}

package bridge

import (
	"context"
	"fmt"
	"net/url"
)

// calendarEvent is one event as returned by the calendar endpoint.
type calendarEvent struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	Location  string `json:"location"`
}

// scheduleConsultation records a consultation call outcome. Only a
// "scheduled" outcome with an agreed date and time touches the calendar: the
// slot is checked for conflicts first, then the event is created. All other
// outcomes are acknowledged without a backend call.
func (b *Bridge) scheduleConsultation(ctx context.Context, args callArgs) (string, error) {
	clientName, err := args.stringArg("client_name")
	if err != nil {
		return "", err
	}
	contactMethod, err := args.stringArg("contact_method")
	if err != nil {
		return "", err
	}
	projectDescription, err := args.stringArg("project_description")
	if err != nil {
		return "", err
	}
	outcome, err := args.stringArg("consultation_outcome")
	if err != nil {
		return "", err
	}
	b.log.Info("recording consultation outcome", "client", clientName, "outcome", outcome)

	if outcome != "scheduled" {
		switch outcome {
		case "interested":
			return fmt.Sprintf("Thanks, %s! I've noted your interest and we'll follow up via %s to set up a consultation.", clientName, contactMethod), nil
		case "follow_up":
			return fmt.Sprintf("I've noted that a follow-up is needed. We'll reach out via %s.", contactMethod), nil
		default:
			return fmt.Sprintf("Understood. Thanks for your time, %s!", clientName), nil
		}
	}

	date := args.optString("preferred_date")
	startTime := args.optString("preferred_time")
	if date == "" || startTime == "" {
		return fmt.Sprintf("I've noted your interest, %s. What date and time would work best for your consultation?", clientName), nil
	}

	free, err := b.slotFree(ctx, date, startTime)
	if err != nil {
		return fmt.Sprintf("Error scheduling consultation: %v", err), nil
	}
	if !free {
		return fmt.Sprintf("That slot on %s at %s is already booked. Could we pick a different time?", date, startTime), nil
	}

	event := map[string]any{
		"title":       fmt.Sprintf("Consultation - %s", clientName),
		"date":        date,
		"startTime":   startTime,
		"description": projectDescription,
		"contact":     contactMethod,
	}
	for arg, field := range map[string]string{
		"industry":            "industry",
		"business_challenges": "businessChallenges",
		"timeline":            "timeline",
		"budget_range":        "budgetRange",
	} {
		if v := args.optString(arg); v != "" {
			event[field] = v
		}
	}

	if err := b.client.Post(ctx, "/calendar/events", event, nil); err != nil {
		return fmt.Sprintf("Error scheduling consultation: %v", err), nil
	}
	return fmt.Sprintf("Your consultation is booked for %s at %s. We'll reach out via %s with a confirmation. Looking forward to speaking with you, %s!",
		date, startTime, contactMethod, clientName), nil
}

// calendarAvailability reports whether a specific slot is free.
func (b *Bridge) calendarAvailability(ctx context.Context, args callArgs) (string, error) {
	date, err := args.stringArg("date")
	if err != nil {
		return "", err
	}
	startTime, err := args.stringArg("startTime")
	if err != nil {
		return "", err
	}
	location, err := args.stringArg("location")
	if err != nil {
		return "", err
	}
	b.log.Info("checking calendar availability", "date", date, "start_time", startTime)

	free, err := b.slotFree(ctx, date, startTime)
	if err != nil {
		return fmt.Sprintf("Error checking calendar availability: %v", err), nil
	}
	if !free {
		return fmt.Sprintf("I'm sorry, %s at %s is already booked. Would another time work?", date, startTime), nil
	}
	return fmt.Sprintf("%s at %s is available at %s. Shall I book it?", date, startTime, location), nil
}

// slotFree lists the events for a date and reports whether the given start
// time is unclaimed.
func (b *Bridge) slotFree(ctx context.Context, date, startTime string) (bool, error) {
	var events []calendarEvent
	query := url.Values{"date": {date}}
	if err := b.client.Get(ctx, "/calendar/events", query, &events); err != nil {
		return false, err
	}
	for _, ev := range events {
		if ev.Date == date && ev.StartTime == startTime {
			return false, nil
		}
	}
	return true, nil
}

package bridge

import (
	"context"
	"fmt"
)

// changeBooking moves an existing booking to a new date and/or flight.
func (b *Bridge) changeBooking(ctx context.Context, args callArgs) (string, error) {
	bookingCode, err := args.stringArg("bookingCode")
	if err != nil {
		return "", err
	}
	newDate := args.optString("newDate")
	newFlight := args.optString("newFlightNumber")
	if newDate == "" && newFlight == "" {
		return fmt.Sprintf("Please tell me the new date or flight number you would like for booking %s.", bookingCode), nil
	}
	b.log.Info("changing booking", "booking_code", bookingCode)

	body := map[string]any{"bookingCode": bookingCode}
	if newDate != "" {
		body["newDate"] = newDate
	}
	if newFlight != "" {
		body["newFlightNumber"] = newFlight
	}

	if err := b.client.Post(ctx, "/airline/booking/change", body, nil); err != nil {
		if isNotFound(err) {
			return fmt.Sprintf("I couldn't find a booking with code %s. Please double-check the booking reference.", bookingCode), nil
		}
		return fmt.Sprintf("Error changing booking: %v", err), nil
	}
	return fmt.Sprintf("Your booking %s has been changed successfully. You will receive an updated confirmation shortly. Is there anything else I can help you with?", bookingCode), nil
}

// checkInPassenger checks a passenger in by booking code or loyalty number.
func (b *Bridge) checkInPassenger(ctx context.Context, args callArgs) (string, error) {
	bookingCode := args.optString("bookingCode")
	loyaltyNumber := args.optString("loyaltyNumber")
	if bookingCode == "" && loyaltyNumber == "" {
		return "I need either your booking code or your frequent flyer number to check you in.", nil
	}
	b.log.Info("checking in passenger", "booking_code", bookingCode, "loyalty_number", loyaltyNumber)

	body := map[string]any{}
	if bookingCode != "" {
		body["bookingCode"] = bookingCode
	}
	if loyaltyNumber != "" {
		body["loyaltyNumber"] = loyaltyNumber
	}
	if seat := args.optString("seatPreference"); seat != "" {
		body["seatPreference"] = seat
	}

	var result struct {
		Seat string `json:"seat"`
	}
	if err := b.client.Post(ctx, "/airline/checkin", body, &result); err != nil {
		if isNotFound(err) {
			return "I couldn't find your reservation with those details. Please double-check your booking code or frequent flyer number.", nil
		}
		return fmt.Sprintf("Error checking in passenger: %v", err), nil
	}
	if result.Seat != "" {
		return fmt.Sprintf("You're all checked in! Your seat is %s. Have a pleasant flight!", result.Seat), nil
	}
	return "You're all checked in! Have a pleasant flight!", nil
}

// reportLostBaggage opens a lost baggage case.
func (b *Bridge) reportLostBaggage(ctx context.Context, args callArgs) (string, error) {
	baggageCode, err := args.stringArg("baggageCode")
	if err != nil {
		return "", err
	}
	passengerName, err := args.stringArg("passengerName")
	if err != nil {
		return "", err
	}
	lastSeen, err := args.stringArg("lastSeenLocation")
	if err != nil {
		return "", err
	}
	b.log.Info("reporting lost baggage", "baggage_code", baggageCode)

	body := map[string]string{
		"baggageCode":      baggageCode,
		"passengerName":    passengerName,
		"lastSeenLocation": lastSeen,
	}
	var result struct {
		CaseID string `json:"caseId"`
	}
	if err := b.client.Post(ctx, "/airline/baggage/lost", body, &result); err != nil {
		return fmt.Sprintf("Error reporting lost baggage: %v", err), nil
	}
	if result.CaseID != "" {
		return fmt.Sprintf("I've filed a lost baggage report for %s, bag tag %s, last seen at %s. Your case number is %s. We'll contact you as soon as it is located.",
			passengerName, baggageCode, lastSeen, result.CaseID), nil
	}
	return fmt.Sprintf("I've filed a lost baggage report for %s, bag tag %s, last seen at %s. We'll contact you as soon as it is located.",
		passengerName, baggageCode, lastSeen), nil
}

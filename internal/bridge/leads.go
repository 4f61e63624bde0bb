package bridge

import (
	"context"
	"fmt"
)

// captureLead records the outcome of an insurance sales call together with
// whatever prospect details were collected. Only supplied fields are sent.
func (b *Bridge) captureLead(ctx context.Context, args callArgs) (string, error) {
	outcome, err := args.stringArg("call_outcome")
	if err != nil {
		return "", err
	}
	b.log.Info("capturing lead", "outcome", outcome)

	body := map[string]any{"call_outcome": outcome}
	for _, field := range []string{
		"coverage_type", "premium_change", "zip_code",
		"objection_text", "first_name", "last_name", "phone",
	} {
		if v := args.optString(field); v != "" {
			body[field] = v
		}
	}
	if age, ok := args.optInt("age"); ok {
		body["age"] = age
	}
	if tobacco, ok := args.optBool("tobacco_user"); ok {
		body["tobacco_user"] = tobacco
	}

	if err := b.client.Post(ctx, "/leads", body, nil); err != nil {
		return fmt.Sprintf("Error capturing lead: %v", err), nil
	}

	switch outcome {
	case "interested":
		return "Thank you! I've recorded your information and a licensed agent will contact you shortly with your personalized quote.", nil
	case "callback_requested":
		return "I've scheduled a callback as requested. We'll be in touch at your preferred time.", nil
	case "transferred":
		return "I'm transferring you to a licensed agent now. Please hold for just a moment.", nil
	default:
		return "I understand. Thank you for your time, and have a great day.", nil
	}
}

// internal/infra/telegram/order_action_handlers.go
package telegram

import (
	"context"
	"strings"
	"time"

	"gopkg.in/telebot.v3"
)

const actionTimeout = 15 * time.Second

// Dispatcher is the accept/cancel surface the callback buttons drive.
type Dispatcher interface {
	Accept(ctx context.Context, id string, pickupOverride *time.Time) error
	Cancel(ctx context.Context, id string, reason string) error
}

// IntakePresenter serves the explicit refresh and the push-tap bridge.
type IntakePresenter interface {
	ShowAllPendingOrders(ctx context.Context) error
	OnNotificationTap(orderID string)
}

// SoundControl is the chime surface the chat controls: any interaction
// unlocks it, and /sound toggles it.
type SoundControl interface {
	Unlock()
	SetEnabled(enabled bool)
	Enabled() bool
}

// RegisterOrderActionHandlers wires inline-button callbacks and commands to
// the services. Every inbound interaction counts as the qualifying user
// gesture that unlocks the chime.
func RegisterOrderActionHandlers(b *telebot.Bot, dispatch Dispatcher, intake IntakePresenter, sound SoundControl) {
	b.Handle(telebot.OnCallback, func(c telebot.Context) error {
		sound.Unlock()
		// telebot parses "\f<unique>|<payload>" into Unique/Data; buttons
		// here carry the action in the unique part.
		data := c.Callback().Unique
		if data == "" {
			data = strings.TrimPrefix(c.Callback().Data, "\f")
		}

		switch {
		case strings.HasPrefix(data, "acc_"):
			id := strings.TrimPrefix(data, "acc_")
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			if err := dispatch.Accept(ctx, id, nil); err != nil {
				c.Bot().OnError(err, c)
				return c.Respond(&telebot.CallbackResponse{Text: "Could not accept, try again."})
			}
			return c.Respond(&telebot.CallbackResponse{Text: "Order accepted."})

		case strings.HasPrefix(data, "dec_"):
			id := strings.TrimPrefix(data, "dec_")
			ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
			defer cancel()
			if err := dispatch.Cancel(ctx, id, ""); err != nil {
				c.Bot().OnError(err, c)
				return c.Respond(&telebot.CallbackResponse{Text: "Could not decline, try again."})
			}
			return c.Respond(&telebot.CallbackResponse{Text: "Order declined."})

		case strings.HasPrefix(data, "show_"):
			// Push-notification tap: an opaque order id to surface first.
			intake.OnNotificationTap(strings.TrimPrefix(data, "show_"))
			return c.Respond()
		}

		return c.Respond(&telebot.CallbackResponse{Text: "Unknown action."})
	})

	b.Handle("/pending", func(c telebot.Context) error {
		sound.Unlock()
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := intake.ShowAllPendingOrders(ctx); err != nil {
			c.Bot().OnError(err, c)
			return c.Send("Could not load pending orders, try again.")
		}
		return nil
	})

	b.Handle("/sound", func(c telebot.Context) error {
		sound.Unlock()
		switch strings.ToLower(strings.TrimSpace(c.Message().Payload)) {
		case "on":
			sound.SetEnabled(true)
			return c.Send("Sound on.")
		case "off":
			sound.SetEnabled(false)
			return c.Send("Sound off.")
		default:
			if sound.Enabled() {
				return c.Send("Sound is on. Use /sound off to mute.")
			}
			return c.Send("Sound is off. Use /sound on to unmute.")
		}
	})
}

package intake

import "context"

// Settings is the merchant configuration this subsystem reads each cycle.
type Settings struct {
	AutoAcceptOrders      bool
	ShowOrderPopup        bool
	SendConfirmationEmail bool
	MinPreparationTime    int // minutes
}

// Mode derives the operating mode from the settings.
func (s Settings) Mode() Mode {
	return Mode{
		AutoAccept:     s.AutoAcceptOrders,
		ShowPopup:      s.ShowOrderPopup,
		MinPrepMinutes: s.MinPreparationTime,
	}
}

// SettingsSource provides the merchant configuration record.
type SettingsSource interface {
	MerchantSettings(ctx context.Context, merchantID string) (*Settings, error)
}

package domain

// Language is an ISO 639-1 UI language code.
type Language string

const (
	LanguageEN Language = "en"
	LanguageFR Language = "fr"
	LanguageDE Language = "de"
	LanguageES Language = "es"
)

// Currency is an ISO 4217 display currency code.
type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
)

// Settings is the per-account preferences record. It always exists once a
// profile is loaded; it is never created or deleted independently.
type Settings struct {
	EmailNotifications     bool     `json:"email_notifications"`
	SMSNotifications       bool     `json:"sms_notifications"`
	NewsletterSubscription bool     `json:"newsletter_subscription"`
	TwoFactorAuth          bool     `json:"two_factor_auth"`
	Language               Language `json:"language"`
	Currency               Currency `json:"currency"`
}

// SettingsUpdate is a partial settings mutation. Nil fields are untouched.
type SettingsUpdate struct {
	EmailNotifications     *bool     `json:"email_notifications,omitempty"`
	SMSNotifications       *bool     `json:"sms_notifications,omitempty"`
	NewsletterSubscription *bool     `json:"newsletter_subscription,omitempty"`
	TwoFactorAuth          *bool     `json:"two_factor_auth,omitempty"`
	Language               *Language `json:"language,omitempty"`
	Currency               *Currency `json:"currency,omitempty"`
}

// Apply merges the non-nil fields of the update into s.
func (u SettingsUpdate) Apply(s *Settings) {
	if u.EmailNotifications != nil {
		s.EmailNotifications = *u.EmailNotifications
	}
	if u.SMSNotifications != nil {
		s.SMSNotifications = *u.SMSNotifications
	}
	if u.NewsletterSubscription != nil {
		s.NewsletterSubscription = *u.NewsletterSubscription
	}
	if u.TwoFactorAuth != nil {
		s.TwoFactorAuth = *u.TwoFactorAuth
	}
	if u.Language != nil {
		s.Language = *u.Language
	}
	if u.Currency != nil {
		s.Currency = *u.Currency
	}
}

// DefaultSettings returns the settings a freshly registered account starts with.
func DefaultSettings() Settings {
	return Settings{
		EmailNotifications:     true,
		SMSNotifications:       false,
		NewsletterSubscription: false,
		TwoFactorAuth:          false,
		Language:               LanguageEN,
		Currency:               CurrencyUSD,
	}
}

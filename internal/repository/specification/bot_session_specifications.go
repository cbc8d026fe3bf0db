package specification

import "gorm.io/gorm"

type ByWebhookURL struct {
	WebhookURL string
}

func (s ByWebhookURL) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("webhook_url = ?", s.WebhookURL)
}

// ByWebhookIDFragment matches a session by the random id segment at the end
// of its webhook URL.
type ByWebhookIDFragment struct {
	WebhookID string
}

func (s ByWebhookIDFragment) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("webhook_url LIKE ?", "%/"+s.WebhookID)
}

type ByBotID struct {
	BotID string
}

func (s ByBotID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("bot_id = ?", s.BotID)
}

type CurrentlyPolling struct{}

func (s CurrentlyPolling) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_polling = true")
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConversationSummary is derived from Message rows on every query;
// it is never persisted.
type ConversationSummary struct {
	PartnerID           uuid.UUID  `json:"partner_id"`
	PartnerName         string     `json:"partner_name"`
	PartnerProfileImage *string    `json:"partner_profile_image,omitempty"`
	LatestContent       string     `json:"latest_message_content"`
	LatestTimestamp     *time.Time `json:"latest_message_timestamp,omitempty"`
	UnreadCount         int64      `json:"unread_count"`
}

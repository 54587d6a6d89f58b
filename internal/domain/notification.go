package domain

import "strings"

type NotificationKind string

const (
	NotificationJob        NotificationKind = "JOB"
	NotificationAccount    NotificationKind = "ACCOUNT"
	NotificationConnection NotificationKind = "CONNECTION"
)

// ShouldDispatch is the offline-channel filter: JOB and ACCOUNT always go
// out, CONNECTION only for responses. The title substring match is fragile
// (a request titled "Accepted anyway" would slip through) but it is the
// contract the rest of the system was built against, so it stays.
func ShouldDispatch(kind NotificationKind, title string) bool {
	switch kind {
	case NotificationJob, NotificationAccount:
		return true
	case NotificationConnection:
		return strings.Contains(title, "Accepted") || strings.Contains(title, "Rejected")
	default:
		return false
	}
}

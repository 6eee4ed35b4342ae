package memberservice

import "time"

// TopicCheckinRecorded is published after a member check-in is stored.
const TopicCheckinRecorded = "member.checkin.recorded"

// CheckinRecorded is the payload of TopicCheckinRecorded.
type CheckinRecorded struct {
	EventID     string    `json:"event_id"`
	EventName   string    `json:"event_name"`
	MemberID    string    `json:"member_id"`
	MemberName  string    `json:"member_name"`
	MemberEmail string    `json:"member_email"`
	CheckinTime time.Time `json:"checkin_time"`
}

package feedback

import "time"

// Entry is a submitted feedback question. Username is empty for anonymous
// submissions and persisted as an explicit absence.
type Entry struct {
	ID        string
	Question  string
	Username  string
	CreatedAt time.Time
}

package identity

import (
	"strings"
	"time"
)

// User represents a donor identified by phone number.
type User struct {
	ID        string
	Phone     string
	Email     string
	FullName  string
	CreatedAt time.Time
}

// NormalizePhone strips formatting characters so the same number always maps
// to the same stored user.
func NormalizePhone(phone string) string {
	r := strings.NewReplacer(" ", "", "(", "", ")", "", "-", "")
	return r.Replace(strings.TrimSpace(phone))
}

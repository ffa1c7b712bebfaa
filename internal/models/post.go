package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Post is a volunteer-need listing. Volunteers is the number of slots still open.
type Post struct {
	ID             string            `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	Title          string            `gorm:"not null;index" json:"title"`
	OrganizerEmail string            `gorm:"not null;index" json:"organizerEmail"`
	Deadline       time.Time         `gorm:"index" json:"deadline"`
	Volunteers     int               `gorm:"not null;default:0;check:chk_volunteer_slots,volunteers >= 0" json:"volunteers"`
	Extra          datatypes.JSONMap `gorm:"type:jsonb" json:"-"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

func (Post) TableName() string {
	return "volunteer"
}

// PostUpdate carries the fields present in an update body. Nil means "leave as is".
type PostUpdate struct {
	Title          *string
	OrganizerEmail *string
	Deadline       *time.Time
	Volunteers     *int
	Extra          map[string]any
}

// Empty reports whether the update would not change anything.
func (u PostUpdate) Empty() bool {
	return u.Title == nil && u.OrganizerEmail == nil && u.Deadline == nil && u.Volunteers == nil && len(u.Extra) == 0
}

// Apply merges u into p the way a $set would.
func (p *Post) Apply(u PostUpdate) {
	if u.Title != nil {
		p.Title = *u.Title
	}
	if u.OrganizerEmail != nil {
		p.OrganizerEmail = *u.OrganizerEmail
	}
	if u.Deadline != nil {
		p.Deadline = *u.Deadline
	}
	if u.Volunteers != nil {
		p.Volunteers = *u.Volunteers
	}
	if len(u.Extra) > 0 {
		if p.Extra == nil {
			p.Extra = datatypes.JSONMap{}
		}
		maps.Copy(p.Extra, u.Extra)
	}
}

// reservedKeys are managed by the store and never accepted from clients.
var reservedKeys = map[string]bool{
	"_id":       true,
	"id":        true,
	"createdAt": true,
	"updatedAt": true,
}

// MarshalJSON flattens the free-form fields next to the known ones.
func (p Post) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(p.Extra)+7)
	for k, v := range p.Extra {
		out[k] = v
	}
	out["_id"] = p.ID
	out["title"] = p.Title
	out["organizerEmail"] = p.OrganizerEmail
	out["deadline"] = p.Deadline
	out["volunteers"] = p.Volunteers
	if !p.CreatedAt.IsZero() {
		out["createdAt"] = p.CreatedAt
	}
	if !p.UpdatedAt.IsZero() {
		out["updatedAt"] = p.UpdatedAt
	}
	return json.Marshal(out)
}

func (p *Post) UnmarshalJSON(data []byte) error {
	var u PostUpdate
	if err := u.UnmarshalJSON(data); err != nil {
		return err
	}
	*p = Post{}
	p.Apply(u)
	return nil
}

func (u *PostUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*u = PostUpdate{}
	for key, value := range raw {
		switch key {
		case "title":
			s, err := decodeString(key, value)
			if err != nil {
				return err
			}
			u.Title = &s
		case "organizerEmail":
			s, err := decodeString(key, value)
			if err != nil {
				return err
			}
			u.OrganizerEmail = &s
		case "deadline":
			var s string
			if err := json.Unmarshal(value, &s); err != nil {
				return fmt.Errorf("deadline must be a date string")
			}
			t, err := ParseDeadline(s)
			if err != nil {
				return err
			}
			u.Deadline = &t
		case "volunteers":
			n, err := decodeCount(value)
			if err != nil {
				return err
			}
			u.Volunteers = &n
		default:
			if reservedKeys[key] {
				continue
			}
			if err := checkFieldName(key); err != nil {
				return err
			}
			var v any
			if err := json.Unmarshal(value, &v); err != nil {
				return err
			}
			if u.Extra == nil {
				u.Extra = make(map[string]any)
			}
			u.Extra[key] = v
		}
	}
	return nil
}

// checkFieldName rejects names a document store would read as a path or an operator.
func checkFieldName(key string) error {
	if key == "" || strings.HasPrefix(key, "$") || strings.Contains(key, ".") {
		return fmt.Errorf("field name %q is not allowed", key)
	}
	return nil
}

// ParseDeadline accepts RFC 3339 timestamps and plain calendar dates.
func ParseDeadline(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("deadline %q is not a valid date", s)
}

func decodeString(key string, value json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		return "", fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(s), nil
}

// decodeCount accepts 3 and "3"; forms post numbers as strings.
func decodeCount(value json.RawMessage) (int, error) {
	var n int
	if err := json.Unmarshal(value, &n); err == nil {
		return n, nil
	}
	var s string
	if err := json.Unmarshal(value, &s); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
			return n, nil
		}
	}
	return 0, fmt.Errorf("volunteers must be an integer")
}

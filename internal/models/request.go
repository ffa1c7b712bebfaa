package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Request is an applicant's claim on one slot of a Post.
type Request struct {
	ID        string            `gorm:"primaryKey;type:varchar(36)" json:"_id"`
	UserEmail string            `gorm:"not null;uniqueIndex:idx_request_applicant" json:"userEmail"`
	PostID    string            `gorm:"not null;uniqueIndex:idx_request_applicant;index" json:"postId"`
	Extra     datatypes.JSONMap `gorm:"type:jsonb" json:"-"`
	CreatedAt time.Time         `json:"createdAt"`
}

func (Request) TableName() string {
	return "volunteer_requests"
}

// RequestFilter narrows a request listing. Empty fields match everything.
type RequestFilter struct {
	UserEmail string
	PostID    string
}

func (r Request) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+4)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["_id"] = r.ID
	out["userEmail"] = r.UserEmail
	out["postId"] = r.PostID
	if !r.CreatedAt.IsZero() {
		out["createdAt"] = r.CreatedAt
	}
	return json.Marshal(out)
}

func (r *Request) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = Request{}
	for key, value := range raw {
		switch key {
		case "userEmail":
			s, err := decodeString(key, value)
			if err != nil {
				return err
			}
			r.UserEmail = s
		case "postId":
			s, err := decodeString(key, value)
			if err != nil {
				return err
			}
			r.PostID = s
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
			if r.Extra == nil {
				r.Extra = datatypes.JSONMap{}
			}
			r.Extra[key] = v
		}
	}
	return nil
}

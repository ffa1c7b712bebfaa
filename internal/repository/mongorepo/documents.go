package mongorepo

import (
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"gorm.io/datatypes"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

func parseObjectID(id string) (bson.ObjectID, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return bson.ObjectID{}, fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return oid, nil
}

func postToDoc(p *models.Post, oid bson.ObjectID) bson.D {
	doc := bson.D{{Key: "_id", Value: oid}}
	for k, v := range p.Extra {
		doc = append(doc, bson.E{Key: k, Value: v})
	}
	return append(doc,
		bson.E{Key: "title", Value: p.Title},
		bson.E{Key: "organizerEmail", Value: p.OrganizerEmail},
		bson.E{Key: "deadline", Value: p.Deadline},
		bson.E{Key: "volunteers", Value: p.Volunteers},
		bson.E{Key: "createdAt", Value: p.CreatedAt},
		bson.E{Key: "updatedAt", Value: p.UpdatedAt},
	)
}

// updateToSet renders a PostUpdate as the body of a $set.
func updateToSet(u models.PostUpdate, now time.Time) bson.D {
	set := bson.D{}
	for k, v := range u.Extra {
		set = append(set, bson.E{Key: k, Value: v})
	}
	if u.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *u.Title})
	}
	if u.OrganizerEmail != nil {
		set = append(set, bson.E{Key: "organizerEmail", Value: *u.OrganizerEmail})
	}
	if u.Deadline != nil {
		set = append(set, bson.E{Key: "deadline", Value: *u.Deadline})
	}
	if u.Volunteers != nil {
		set = append(set, bson.E{Key: "volunteers", Value: *u.Volunteers})
	}
	return append(set, bson.E{Key: "updatedAt", Value: now})
}

func docToPost(m bson.M) *models.Post {
	p := &models.Post{}
	for k, v := range m {
		switch k {
		case "_id":
			p.ID = idString(v)
		case "title":
			p.Title, _ = v.(string)
		case "organizerEmail":
			p.OrganizerEmail, _ = v.(string)
		case "deadline":
			p.Deadline = toTime(v)
		case "volunteers":
			p.Volunteers = toInt(v)
		case "createdAt":
			p.CreatedAt = toTime(v)
		case "updatedAt":
			p.UpdatedAt = toTime(v)
		default:
			if p.Extra == nil {
				p.Extra = datatypes.JSONMap{}
			}
			p.Extra[k] = normalize(v)
		}
	}
	return p
}

func requestToDoc(r *models.Request, oid bson.ObjectID) bson.D {
	doc := bson.D{{Key: "_id", Value: oid}}
	for k, v := range r.Extra {
		doc = append(doc, bson.E{Key: k, Value: v})
	}
	return append(doc,
		bson.E{Key: "userEmail", Value: r.UserEmail},
		bson.E{Key: "postId", Value: r.PostID},
		bson.E{Key: "createdAt", Value: r.CreatedAt},
	)
}

func docToRequest(m bson.M) *models.Request {
	r := &models.Request{}
	for k, v := range m {
		switch k {
		case "_id":
			r.ID = idString(v)
		case "userEmail":
			r.UserEmail, _ = v.(string)
		case "postId":
			r.PostID = idString(v)
		case "createdAt":
			r.CreatedAt = toTime(v)
		default:
			if r.Extra == nil {
				r.Extra = datatypes.JSONMap{}
			}
			r.Extra[k] = normalize(v)
		}
	}
	return r
}

func idString(v any) string {
	switch id := v.(type) {
	case bson.ObjectID:
		return id.Hex()
	case string:
		return id
	default:
		return fmt.Sprint(id)
	}
}

// toTime also understands deadlines saved as plain strings by older clients.
func toTime(v any) time.Time {
	switch t := v.(type) {
	case bson.DateTime:
		return t.Time().UTC()
	case time.Time:
		return t.UTC()
	case string:
		parsed, err := models.ParseDeadline(t)
		if err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func toInt(v any) int {
	switch n := v.(type) {
	case int32:
		return int(n)
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

// normalize turns driver types into plain JSON-friendly values.
func normalize(v any) any {
	switch val := v.(type) {
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalize(e.Value)
		}
		return out
	case bson.M:
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = normalize(e)
		}
		return out
	case bson.A:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalize(e)
		}
		return out
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC()
	default:
		return val
	}
}

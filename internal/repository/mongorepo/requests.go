package mongorepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

type requestRepository struct {
	client   *mongo.Client
	requests *mongo.Collection
	posts    *mongo.Collection
}

// NewRequestRepository creates a request repository over `volunteerRequests`.
// The client is needed to run apply/cancel as multi-document transactions.
func NewRequestRepository(client *mongo.Client, db *mongo.Database) repository.RequestRepository {
	return &requestRepository{
		client:   client,
		requests: db.Collection(RequestsCollection),
		posts:    db.Collection(PostsCollection),
	}
}

func (r *requestRepository) List(ctx context.Context, filter models.RequestFilter) ([]*models.Request, error) {
	query := bson.D{}
	if filter.UserEmail != "" {
		query = append(query, bson.E{Key: "userEmail", Value: filter.UserEmail})
	}
	if filter.PostID != "" {
		if _, err := parseObjectID(filter.PostID); err != nil {
			return nil, err
		}
		query = append(query, bson.E{Key: "postId", Value: filter.PostID})
	}

	cursor, err := r.requests.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	out := make([]*models.Request, 0, len(docs))
	for _, doc := range docs {
		out = append(out, docToRequest(doc))
	}
	return out, nil
}

func (r *requestRepository) Exists(ctx context.Context, userEmail, postID string) (bool, error) {
	if _, err := parseObjectID(postID); err != nil {
		return false, err
	}
	return r.hasApplied(ctx, userEmail, postID)
}

func (r *requestRepository) Apply(ctx context.Context, req *models.Request) error {
	postOID, err := parseObjectID(req.PostID)
	if err != nil {
		return err
	}

	oid := bson.NewObjectID()
	req.CreatedAt = time.Now().UTC()

	err = r.inTransaction(ctx, func(sc context.Context) error {
		applied, err := r.hasApplied(sc, req.UserEmail, req.PostID)
		if err != nil {
			return err
		}
		if applied {
			return repository.ErrAlreadyApplied
		}

		var post bson.M
		if err := r.posts.FindOne(sc, bson.D{{Key: "_id", Value: postOID}}).Decode(&post); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return repository.ErrNotFound
			}
			return err
		}
		if toInt(post["volunteers"]) <= 0 {
			return repository.ErrNoSlots
		}

		if _, err := r.requests.InsertOne(sc, requestToDoc(req, oid)); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return repository.ErrAlreadyApplied
			}
			return err
		}

		res, err := r.posts.UpdateOne(sc,
			bson.D{{Key: "_id", Value: postOID}, {Key: "volunteers", Value: bson.D{{Key: "$gt", Value: 0}}}},
			bson.D{{Key: "$inc", Value: bson.D{{Key: "volunteers", Value: -1}}}},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return repository.ErrNoSlots
		}
		return nil
	})
	if err != nil {
		return err
	}

	req.ID = oid.Hex()
	return nil
}

func (r *requestRepository) Cancel(ctx context.Context, id string) (*models.Request, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var req *models.Request
	err = r.inTransaction(ctx, func(sc context.Context) error {
		var doc bson.M
		if err := r.requests.FindOne(sc, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				return repository.ErrNotFound
			}
			return err
		}
		req = docToRequest(doc)

		del, err := r.requests.DeleteOne(sc, bson.D{{Key: "_id", Value: oid}})
		if err != nil {
			return err
		}
		if del.DeletedCount == 0 {
			return repository.ErrNotFound
		}

		// A post id that no longer parses or matches means the slot is dropped.
		postOID, err := bson.ObjectIDFromHex(req.PostID)
		if err != nil {
			return nil
		}
		_, err = r.posts.UpdateOne(sc,
			bson.D{{Key: "_id", Value: postOID}},
			bson.D{{Key: "$inc", Value: bson.D{{Key: "volunteers", Value: 1}}}},
		)
		return err
	})
	if err != nil {
		return nil, err
	}
	return req, nil
}

func (r *requestRepository) hasApplied(ctx context.Context, userEmail, postID string) (bool, error) {
	n, err := r.requests.CountDocuments(ctx,
		bson.D{{Key: "userEmail", Value: userEmail}, {Key: "postId", Value: postID}},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// inTransaction runs fn in a session transaction; the driver retries transient conflicts.
func (r *requestRepository) inTransaction(ctx context.Context, fn func(sc context.Context) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc context.Context) (any, error) {
		return nil, fn(sc)
	})
	return err
}

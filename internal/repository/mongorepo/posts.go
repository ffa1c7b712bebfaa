package mongorepo

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/emilythestrangee/volunteer-board/backend/internal/models"
	"github.com/emilythestrangee/volunteer-board/backend/internal/repository"
)

type postRepository struct {
	coll *mongo.Collection
}

// NewPostRepository creates a post repository over the `volunteer` collection.
func NewPostRepository(coll *mongo.Collection) repository.PostRepository {
	return &postRepository{coll: coll}
}

var byDeadline = bson.D{{Key: "deadline", Value: 1}}

func (r *postRepository) List(ctx context.Context) ([]*models.Post, error) {
	return r.find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
}

func (r *postRepository) ListByDeadline(ctx context.Context, limit int) ([]*models.Post, error) {
	return r.find(ctx, bson.D{}, options.Find().SetSort(byDeadline).SetLimit(int64(limit)))
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return docToPost(doc), nil
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	oid := bson.NewObjectID()
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, postToDoc(post, oid)); err != nil {
		return err
	}
	post.ID = oid.Hex()
	return nil
}

func (r *postRepository) Update(ctx context.Context, id string, update models.PostUpdate) (*models.Post, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: updateToSet(update, time.Now().UTC())}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return docToPost(doc), nil
}

func (r *postRepository) DecrementSlots(ctx context.Context, id string) (*models.Post, error) {
	oid, err := parseObjectID(id)
	if err != nil {
		return nil, err
	}

	var doc bson.M
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}, {Key: "volunteers", Value: bson.D{{Key: "$gt", Value: 0}}}},
		bson.D{{Key: "$inc", Value: bson.D{{Key: "volunteers", Value: -1}}}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return docToPost(doc), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	n, err := r.coll.CountDocuments(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, repository.ErrNotFound
	}
	return nil, repository.ErrNoSlots
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	oid, err := parseObjectID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *postRepository) SearchByTitle(ctx context.Context, term string) ([]*models.Post, error) {
	filter := bson.D{{Key: "title", Value: bson.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}}}
	return r.find(ctx, filter, options.Find().SetSort(byDeadline))
}

func (r *postRepository) ListByOrganizer(ctx context.Context, email string) ([]*models.Post, error) {
	return r.find(ctx, bson.D{{Key: "organizerEmail", Value: email}}, options.Find().SetSort(byDeadline))
}

func (r *postRepository) find(ctx context.Context, filter bson.D, opts ...options.Lister[options.FindOptions]) ([]*models.Post, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	posts := make([]*models.Post, 0, len(docs))
	for _, doc := range docs {
		posts = append(posts, docToPost(doc))
	}
	return posts, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"video_stream_service/internal/streaming/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoVideoRepo struct {
	coll *mongo.Collection
}

// NewMongoVideoRepo create VideoRepo on the "videos" collection
func NewMongoVideoRepo(db *mongo.Database) VideoRepo {
	return &mongoVideoRepo{coll: db.Collection("videos")}
}

// Migrate unique id, group index for listing
func (r *mongoVideoRepo) Migrate(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}}},
	})
	return err
}

func (r *mongoVideoRepo) Create(ctx context.Context, video *domain.Video) error {
	_, err := r.coll.InsertOne(ctx, video)
	return err
}

func (r *mongoVideoRepo) FindByID(ctx context.Context, groupID, id string) (*domain.Video, error) {
	var v domain.Video
	err := r.coll.FindOne(ctx, bson.M{"id": id, "group_id": groupID}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("video %s/%s: %w", groupID, id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *mongoVideoRepo) FindByGroup(ctx context.Context, groupID string) ([]domain.Video, error) {
	return r.find(ctx, bson.M{"group_id": groupID})
}

func (r *mongoVideoRepo) FindAll(ctx context.Context) ([]domain.Video, error) {
	return r.find(ctx, bson.M{})
}

func (r *mongoVideoRepo) find(ctx context.Context, filter bson.M) ([]domain.Video, error) {
	opts := options.Find().SetSort(bson.M{"created_at": -1})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	videos := []domain.Video{}
	if err := cur.All(ctx, &videos); err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *mongoVideoRepo) ListGroups(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "group_id", bson.M{})
	if err != nil {
		return nil, err
	}
	groups := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			groups = append(groups, s)
		}
	}
	sort.Strings(groups)
	return groups, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/snapcloud/snapcloud-server/internal/models"
	"github.com/snapcloud/snapcloud-server/internal/project"
)

// MongoProjectRepo handles project document CRUD in MongoDB.
type MongoProjectRepo struct {
	col *mongo.Collection
}

func NewMongoProjectRepo(db *mongo.Database) *MongoProjectRepo {
	return &MongoProjectRepo{col: db.Collection("projects")}
}

// EnsureIndexes creates the (user, name) unique index the upsert relies
// on: without it two concurrent first saves could both insert.
func (s *MongoProjectRepo) EnsureIndexes(ctx context.Context) error {
	_, err := s.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "user", Value: 1}, {Key: "name", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func ownerKey(owner, name string) bson.M {
	return bson.M{"user": owner, "name": name}
}

// substring builds a case-insensitive substring matcher. User input is
// quoted so it can never act as a regex.
func substring(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

func (s *MongoProjectRepo) Upsert(ctx context.Context, owner, name string, fields models.ProjectFields) error {
	update := bson.M{
		"$set": bson.M{
			"snapdata":  fields.SnapData,
			"notes":     fields.Notes,
			"thumbnail": fields.Thumbnail,
			"origin":    fields.Origin,
			"updated":   fields.Updated,
		},
		// Visibility defaults on first insert only; a save must never
		// unpublish an already-public project.
		"$setOnInsert": bson.M{"public": false},
	}
	_, err := s.col.UpdateOne(ctx, ownerKey(owner, name), update,
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert project: %v: %w", err, models.ErrStorage)
	}
	return nil
}

func (s *MongoProjectRepo) Delete(ctx context.Context, owner, name string) error {
	if _, err := s.col.DeleteOne(ctx, ownerKey(owner, name)); err != nil {
		return fmt.Errorf("delete project: %v: %w", err, models.ErrStorage)
	}
	return nil
}

func (s *MongoProjectRepo) SetPublic(ctx context.Context, owner, name string, public bool) error {
	res, err := s.col.UpdateOne(ctx, ownerKey(owner, name), bson.M{
		"$set": bson.M{"public": public, "updated": time.Now()},
	})
	if err != nil {
		return fmt.Errorf("set public: %v: %w", err, models.ErrStorage)
	}
	if res.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *MongoProjectRepo) ListByOwner(ctx context.Context, owner string) ([]models.Project, error) {
	cur, err := s.col.Find(ctx, bson.M{"user": owner})
	if err != nil {
		return nil, fmt.Errorf("list projects: %v: %w", err, models.ErrStorage)
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("list projects: %v: %w", err, models.ErrStorage)
	}
	return projects, nil
}

func (s *MongoProjectRepo) Get(ctx context.Context, owner, name string) (*models.Project, error) {
	var p models.Project
	err := s.col.FindOne(ctx, ownerKey(owner, name)).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %v: %w", err, models.ErrStorage)
	}
	return &p, nil
}

// GetPublic looks the owner up case-insensitively: gallery links carry
// the name lowercased while documents store it mixed-case.
func (s *MongoProjectRepo) GetPublic(ctx context.Context, owner, name string) (*models.Project, error) {
	filter := bson.M{
		"user": primitive.Regex{
			Pattern: "^" + regexp.QuoteMeta(owner) + "$",
			Options: "i",
		},
		"name":   name,
		"public": true,
	}
	var p models.Project
	err := s.col.FindOne(ctx, filter).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get public project: %v: %w", err, models.ErrStorage)
	}
	return &p, nil
}

func (s *MongoProjectRepo) ListPublic(ctx context.Context, q project.Query, page int) ([]models.Project, error) {
	filter := bson.M{"public": true}
	for _, c := range q.All {
		filter[c.Field] = substring(c.Value)
	}
	if len(q.Any) > 0 {
		or := make([]bson.M, len(q.Any))
		for i, c := range q.Any {
			or[i] = bson.M{c.Field: substring(c.Value)}
		}
		filter["$or"] = or
	}

	opts := options.Find().
		SetSkip(int64(page) * project.PageSize).
		SetLimit(project.PageSize)
	cur, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list public projects: %v: %w", err, models.ErrStorage)
	}
	defer cur.Close(ctx)

	var projects []models.Project
	if err := cur.All(ctx, &projects); err != nil {
		return nil, fmt.Errorf("list public projects: %v: %w", err, models.ErrStorage)
	}
	return projects, nil
}

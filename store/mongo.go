package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civictrack/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// earthRadiusKm is the radius MongoDB expects when converting distances to
// radians for $centerSphere.
const earthRadiusKm = 6378.1

type geoPoint struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"` // [lng, lat]
}

type issueDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Category    string             `bson:"category"`
	Location    geoPoint           `bson:"location"`
	Address     string             `bson:"address,omitempty"`
	Status      string             `bson:"status"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   *time.Time         `bson:"updatedAt,omitempty"`
}

func (d issueDocument) toIssue() models.Issue {
	issue := models.Issue{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Category:    models.IssueCategory(d.Category),
		Address:     d.Address,
		Status:      models.IssueStatus(d.Status),
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
	if len(d.Location.Coordinates) == 2 {
		issue.Longitude = d.Location.Coordinates[0]
		issue.Latitude = d.Location.Coordinates[1]
	}
	return issue
}

// MongoStore keeps issues in a collection with a 2dsphere index on location.
type MongoStore struct {
	collection *mongo.Collection
}

// NewMongoStore wraps the "issues" collection of db and ensures its indexes.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{collection: db.Collection("issues")}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}
	if _, err := s.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("failed to create issue indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) Create(ctx context.Context, issue *models.Issue) error {
	prepareForInsert(issue)

	doc := issueDocument{
		ID:          primitive.NewObjectID(),
		Title:       issue.Title,
		Description: issue.Description,
		Category:    string(issue.Category),
		Location:    geoPoint{Type: "Point", Coordinates: []float64{issue.Longitude, issue.Latitude}},
		Address:     issue.Address,
		Status:      string(issue.Status),
		// Mongo stores milliseconds; truncate so the response matches a re-read.
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert issue: %w", err)
	}

	issue.ID = doc.ID.Hex()
	issue.CreatedAt = doc.CreatedAt
	return nil
}

func (s *MongoStore) FindNearby(ctx context.Context, filter models.Filter) ([]models.Issue, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := s.collection.Find(ctx, nearbyFilter(filter), findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to query issues: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []issueDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode issues: %w", err)
	}

	issues := make([]models.Issue, 0, len(docs))
	for _, d := range docs {
		issues = append(issues, d.toIssue())
	}
	return issues, nil
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.Issue, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var doc issueDocument
	err = s.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve issue: %w", err)
	}

	issue := doc.toIssue()
	return &issue, nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.collection.Database().Client().Ping(ctx, readpref.Primary())
}

// nearbyFilter builds the $geoWithin query for f. Optional selectors are
// only added when set.
func nearbyFilter(f models.Filter) bson.M {
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{f.Longitude, f.Latitude},
					f.RadiusKm / earthRadiusKm,
				},
			},
		},
	}
	if f.Status != "" {
		filter["status"] = string(f.Status)
	}
	if f.Category != "" {
		filter["category"] = string(f.Category)
	}
	return filter
}

package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mamadbah2/landscaper/internal/domain/models"
)

const snapshotCollection = "profitability_snapshots"

// Repository defines the interface for profitability snapshot storage.
type Repository interface {
	SaveSnapshots(ctx context.Context, snapshots []models.ProfitabilitySnapshot) error
	LatestSnapshot(ctx context.Context, clientID int64) (*models.ProfitabilitySnapshot, error)
}

// MongoDBRepository implements the Repository interface for MongoDB.
type MongoDBRepository struct {
	client   *mongo.Client
	dbName   string
	collName string
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string) (*MongoDBRepository, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	repo := &MongoDBRepository{
		client:   client,
		dbName:   dbName,
		collName: snapshotCollection,
	}

	index := mongo.IndexModel{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "taken_at", Value: -1}}}
	if _, err := repo.collection().Indexes().CreateOne(ctx, index); err != nil {
		return nil, fmt.Errorf("failed to create snapshot index: %w", err)
	}

	return repo, nil
}

func (r *MongoDBRepository) collection() *mongo.Collection {
	return r.client.Database(r.dbName).Collection(r.collName)
}

// SaveSnapshots inserts one scheduled run worth of client snapshots.
func (r *MongoDBRepository) SaveSnapshots(ctx context.Context, snapshots []models.ProfitabilitySnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	docs := make([]interface{}, 0, len(snapshots))
	for _, s := range snapshots {
		docs = append(docs, s)
	}

	if _, err := r.collection().InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert profitability snapshots: %w", err)
	}
	return nil
}

// LatestSnapshot returns the newest snapshot for a client, or nil when none exists.
func (r *MongoDBRepository) LatestSnapshot(ctx context.Context, clientID int64) (*models.ProfitabilitySnapshot, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "taken_at", Value: -1}})

	var snapshot models.ProfitabilitySnapshot
	err := r.collection().FindOne(ctx, bson.M{"client_id": clientID}, opts).Decode(&snapshot)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest snapshot for client %d: %w", clientID, err)
	}
	return &snapshot, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

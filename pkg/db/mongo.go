package db

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"votetopics/pkg/domain"
)

// MongoClient wraps the MongoDB client and the topics collection.
type MongoClient struct {
	mongoClient *mongo.Client
	database    *mongo.Database
	collection  *mongo.Collection
}

// NewMongoClient creates a new database client. Call Connect before use.
func NewMongoClient(ctx context.Context, connectionString, databaseName, collectionName string) (*MongoClient, error) {
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	database := mongoClient.Database(databaseName)
	return &MongoClient{
		mongoClient: mongoClient,
		database:    database,
		collection:  database.Collection(collectionName),
	}, nil
}

// Connect verifies the connection and makes sure title lookups are indexed.
func (c *MongoClient) Connect(ctx context.Context) error {
	if err := c.Ping(ctx); err != nil {
		return err
	}
	_, err := c.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "title", Value: 1}},
		Options: options.Index().SetName("title_idx"),
	})
	if err != nil {
		return fmt.Errorf("create title index: %w", err)
	}
	return nil
}

// Ping checks the primary is reachable.
func (c *MongoClient) Ping(ctx context.Context) error {
	if c.mongoClient == nil {
		return ErrNotConnected
	}
	return c.mongoClient.Ping(ctx, nil)
}

// Close closes the MongoDB connection
func (c *MongoClient) Close(ctx context.Context) error {
	if c.mongoClient == nil {
		return nil
	}
	return c.mongoClient.Disconnect(ctx)
}

// FindByTitle reports whether a document with this exact title exists.
func (c *MongoClient) FindByTitle(ctx context.Context, title string) (bool, error) {
	if c.collection == nil {
		return false, ErrNotConnected
	}
	n, err := c.collection.CountDocuments(ctx, bson.M{"title": title}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("find topic by title: %w", err)
	}
	return n > 0, nil
}

// DeleteStale deletes documents matching sig.
func (c *MongoClient) DeleteStale(ctx context.Context, sig StaleSignature) (int64, error) {
	if sig.Empty() {
		return 0, nil
	}
	if c.collection == nil {
		return 0, ErrNotConnected
	}
	res, err := c.collection.DeleteMany(ctx, staleFilter(sig))
	if err != nil {
		return 0, fmt.Errorf("delete stale topics: %w", err)
	}
	return res.DeletedCount, nil
}

// ListTopics reads the whole collection.
func (c *MongoClient) ListTopics(ctx context.Context) ([]domain.Topic, error) {
	if c.collection == nil {
		return nil, ErrNotConnected
	}
	cursor, err := c.collection.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer cursor.Close(ctx)

	var topics []domain.Topic
	if err := cursor.All(ctx, &topics); err != nil {
		return nil, fmt.Errorf("decode topics: %w", err)
	}
	return topics, nil
}

func staleFilter(sig StaleSignature) bson.M {
	or := bson.A{}
	for _, p := range sig.TitlePatterns {
		or = append(or, bson.M{"title": bson.M{"$regex": ILikeRegexp(p), "$options": "is"}})
	}
	for _, p := range sig.DescriptionPatterns {
		or = append(or, bson.M{"description": bson.M{"$regex": ILikeRegexp(p), "$options": "is"}})
	}
	return bson.M{"$or": or}
}

// InsertBatch inserts all topics with one InsertMany call.
func (c *MongoClient) InsertBatch(ctx context.Context, topics []domain.Topic) (int, error) {
	if len(topics) == 0 {
		return 0, nil
	}
	if c.collection == nil {
		return 0, ErrNotConnected
	}
	docs := make([]interface{}, len(topics))
	for i := range topics {
		docs[i] = topics[i]
	}
	res, err := c.collection.InsertMany(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("insert topics: %w", err)
	}
	return len(res.InsertedIDs), nil
}

// CopyBatch inserts topics with their vote counts. Documents already carry
// total_votes, so this is InsertBatch.
func (c *MongoClient) CopyBatch(ctx context.Context, topics []domain.Topic) (int, error) {
	return c.InsertBatch(ctx, topics)
}

package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	domain "github.com/brlegal/clausula-ai/internal/domain/analysis"
)

// Connect opens a client and verifies the deployment with a short ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	ctx2, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx2, nil); err != nil {
		return nil, err
	}
	return client, nil
}

// AnalysisRepository stores one document per token in a named collection.
type AnalysisRepository struct {
	coll *mongo.Collection
}

func NewAnalysisRepository(client *mongo.Client, database, collection string) *AnalysisRepository {
	return &AnalysisRepository{coll: client.Database(database).Collection(collection)}
}

func (r *AnalysisRepository) Save(ctx context.Context, a *domain.Analysis) error {
	_, err := r.coll.InsertOne(ctx, a)
	return err
}

func (r *AnalysisRepository) Get(ctx context.Context, token domain.Token) (*domain.Analysis, error) {
	var a domain.Analysis
	err := r.coll.FindOne(ctx, bson.M{"token": token}).Decode(&a)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, token)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// Update sets individual fields on the document; last write wins.
func (r *AnalysisRepository) Update(ctx context.Context, token domain.Token, fields map[string]any) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"token": token}, bson.M{"$set": fields})
	return err
}

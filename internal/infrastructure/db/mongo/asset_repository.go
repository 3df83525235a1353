package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuscare/campuscare/internal/core/domain"
)

const assetCollection = "assets"

type MongoAssetRepository struct {
	coll *mongo.Collection
}

func NewAssetRepository(db *mongo.Database) *MongoAssetRepository {
	return &MongoAssetRepository{coll: db.Collection(assetCollection)}
}

type mongoAsset struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	CampusID        string             `bson:"campus_id"`
	Name            string             `bson:"name"`
	Type            string             `bson:"type"`
	Location        string             `bson:"location"`
	FailureRisk     float64            `bson:"failure_risk"`
	LastMaintenance int64              `bson:"last_maintenance"`
}

func (m mongoAsset) toDomain() *domain.Asset {
	return &domain.Asset{
		ID:              m.ID.Hex(),
		CampusID:        m.CampusID,
		Name:            m.Name,
		Type:            m.Type,
		Location:        m.Location,
		FailureRisk:     m.FailureRisk,
		LastMaintenance: unixToTime(m.LastMaintenance),
	}
}

func (r *MongoAssetRepository) Create(ctx context.Context, a *domain.Asset) error {
	doc := mongoAsset{
		CampusID:        a.CampusID,
		Name:            a.Name,
		Type:            a.Type,
		Location:        a.Location,
		FailureRisk:     a.FailureRisk,
		LastMaintenance: a.LastMaintenance.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert asset: %w", err)
	}
	a.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// UpdateRisk atomically sets the failure risk and maintenance timestamp,
// campus scoped, returning the updated asset.
func (r *MongoAssetRepository) UpdateRisk(ctx context.Context, id, campusID string, risk float64, at time.Time) (*domain.Asset, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAssetNotFound
	}

	update := bson.M{"$set": bson.M{
		"failure_risk":     risk,
		"last_maintenance": at.Unix(),
	}}

	var ma mongoAsset
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": oid, "campus_id": campusID}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&ma)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrAssetNotFound
		}
		return nil, fmt.Errorf("update asset risk: %w", err)
	}
	return ma.toDomain(), nil
}

func (r *MongoAssetRepository) ListByCampus(ctx context.Context, campusID string) ([]*domain.Asset, error) {
	cur, err := r.coll.Find(ctx, bson.M{"campus_id": campusID},
		options.Find().SetSort(bson.D{{Key: "failure_risk", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Asset
	for cur.Next(ctx) {
		var ma mongoAsset
		if err := cur.Decode(&ma); err != nil {
			return nil, fmt.Errorf("decode asset: %w", err)
		}
		out = append(out, ma.toDomain())
	}
	return out, cur.Err()
}

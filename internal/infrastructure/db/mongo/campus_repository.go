package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/campuscare/campuscare/internal/core/domain"
)

const campusCollection = "campuses"

type MongoCampusRepository struct {
	coll *mongo.Collection
}

func NewCampusRepository(db *mongo.Database) *MongoCampusRepository {
	return &MongoCampusRepository{coll: db.Collection(campusCollection)}
}

type mongoCampus struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Type         string             `bson:"type"`
	ContactEmail string             `bson:"contact_email"`
	Status       string             `bson:"status"`
	CreatedAt    int64              `bson:"created_at"`
}

func (m mongoCampus) toDomain() *domain.Campus {
	return &domain.Campus{
		ID:           m.ID.Hex(),
		Name:         m.Name,
		Type:         m.Type,
		ContactEmail: m.ContactEmail,
		Status:       domain.CampusStatus(m.Status),
		CreatedAt:    unixToTime(m.CreatedAt),
	}
}

func (r *MongoCampusRepository) Create(ctx context.Context, c *domain.Campus) error {
	doc := mongoCampus{
		Name:         c.Name,
		Type:         c.Type,
		ContactEmail: c.ContactEmail,
		Status:       string(c.Status),
		CreatedAt:    c.CreatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert campus: %w", err)
	}
	c.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

func (r *MongoCampusRepository) FindByID(ctx context.Context, id string) (*domain.Campus, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCampusNotFound
	}

	var mc mongoCampus
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&mc); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrCampusNotFound
		}
		return nil, fmt.Errorf("find campus: %w", err)
	}
	return mc.toDomain(), nil
}

// Review settles a PENDING campus with the given verdict. The PENDING
// precondition lives in the write filter, so two concurrent reviewers
// cannot both commit: the second one misses and gets ErrCampusReviewed.
func (r *MongoCampusRepository) Review(ctx context.Context, id string, verdict domain.CampusStatus) (*domain.Campus, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrCampusNotFound
	}

	filter := bson.M{"_id": oid, "status": string(domain.CampusPending)}

	var mc mongoCampus
	err = r.coll.FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"status": string(verdict)}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Campuses are never deleted, so a miss means the campus left
			// PENDING between the caller's read and this write.
			return nil, domain.ErrCampusReviewed
		}
		return nil, fmt.Errorf("review campus: %w", err)
	}
	return mc.toDomain(), nil
}

func (r *MongoCampusRepository) ListByStatus(ctx context.Context, status domain.CampusStatus) ([]*domain.Campus, error) {
	cur, err := r.coll.Find(ctx, bson.M{"status": string(status)},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list campuses: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Campus
	for cur.Next(ctx) {
		var mc mongoCampus
		if err := cur.Decode(&mc); err != nil {
			return nil, fmt.Errorf("decode campus: %w", err)
		}
		out = append(out, mc.toDomain())
	}
	return out, cur.Err()
}

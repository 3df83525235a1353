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

const identityCollection = "identities"

// invitePlaceholderPrefix mirrors the service-layer invite marker; rows with
// this subject prefix are claimable by email on first login.
const invitePlaceholderPrefix = "invite:"

type MongoIdentityRepository struct {
	coll *mongo.Collection
}

func NewIdentityRepository(db *mongo.Database) *MongoIdentityRepository {
	return &MongoIdentityRepository{coll: db.Collection(identityCollection)}
}

type mongoIdentity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	SubjectID string             `bson:"subject_id"`
	Email     string             `bson:"email"`
	Name      string             `bson:"name"`
	Role      string             `bson:"role"`
	CampusID  string             `bson:"campus_id,omitempty"`
	CreatedAt int64              `bson:"created_at"`
	UpdatedAt int64              `bson:"updated_at"`
}

func (m mongoIdentity) toDomain() *domain.Identity {
	return &domain.Identity{
		ID:        m.ID.Hex(),
		SubjectID: m.SubjectID,
		Email:     m.Email,
		Name:      m.Name,
		Role:      domain.Role(m.Role),
		CampusID:  m.CampusID,
		CreatedAt: unixToTime(m.CreatedAt),
		UpdatedAt: unixToTime(m.UpdatedAt),
	}
}

func (r *MongoIdentityRepository) Create(ctx context.Context, identity *domain.Identity) (*domain.Identity, error) {
	doc := mongoIdentity{
		SubjectID: identity.SubjectID,
		Email:     identity.Email,
		Name:      identity.Name,
		Role:      string(identity.Role),
		CampusID:  identity.CampusID,
		CreatedAt: identity.CreatedAt.Unix(),
		UpdatedAt: identity.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrIdentityExists
		}
		return nil, fmt.Errorf("insert identity: %w", err)
	}

	created := *identity
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *MongoIdentityRepository) FindBySubject(ctx context.Context, subjectID string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"subject_id": subjectID})
}

func (r *MongoIdentityRepository) FindByID(ctx context.Context, id string) (*domain.Identity, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrIdentityNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *MongoIdentityRepository) FindByEmail(ctx context.Context, email string) (*domain.Identity, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// ClaimInvite atomically binds an invited identity (placeholder subject) to
// its real subject id. Rows already claimed do not match.
func (r *MongoIdentityRepository) ClaimInvite(ctx context.Context, email, subjectID string) (*domain.Identity, error) {
	filter := bson.M{
		"email":      email,
		"subject_id": invitePlaceholderPrefix + email,
	}
	update := bson.M{"$set": bson.M{
		"subject_id": subjectID,
		"updated_at": time.Now().UTC().Unix(),
	}}

	var mi mongoIdentity
	err := r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mi)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("claim invite: %w", err)
	}
	return mi.toDomain(), nil
}

func (r *MongoIdentityRepository) SetCampusRole(ctx context.Context, id, campusID string, role domain.Role) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrIdentityNotFound
	}

	update := bson.M{"$set": bson.M{
		"campus_id":  campusID,
		"role":       string(role),
		"updated_at": time.Now().UTC().Unix(),
	}}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("set campus role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrIdentityNotFound
	}
	return nil
}

func (r *MongoIdentityRepository) ListByCampus(ctx context.Context, campusID string) ([]*domain.Identity, error) {
	cur, err := r.coll.Find(ctx, bson.M{"campus_id": campusID},
		options.Find().SetSort(bson.D{{Key: "role", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Identity
	for cur.Next(ctx) {
		var mi mongoIdentity
		if err := cur.Decode(&mi); err != nil {
			return nil, fmt.Errorf("decode identity: %w", err)
		}
		out = append(out, mi.toDomain())
	}
	return out, cur.Err()
}

func (r *MongoIdentityRepository) findOne(ctx context.Context, filter bson.M) (*domain.Identity, error) {
	var mi mongoIdentity
	if err := r.coll.FindOne(ctx, filter).Decode(&mi); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrIdentityNotFound
		}
		return nil, fmt.Errorf("find identity: %w", err)
	}
	return mi.toDomain(), nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}

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

const ticketCollection = "tickets"

type MongoTicketRepository struct {
	coll *mongo.Collection
}

func NewTicketRepository(db *mongo.Database) *MongoTicketRepository {
	return &MongoTicketRepository{coll: db.Collection(ticketCollection)}
}

type mongoTicket struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	CampusID    string             `bson:"campus_id"`
	CreatorID   string             `bson:"creator_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Location    string             `bson:"location"`
	ImageURL    string             `bson:"image_url,omitempty"`
	Category    string             `bson:"category,omitempty"`
	Priority    string             `bson:"priority"`
	Status      string             `bson:"status"`
	CreatedAt   int64              `bson:"created_at"`
	UpdatedAt   int64              `bson:"updated_at"`
}

func (m mongoTicket) toDomain() *domain.Ticket {
	return &domain.Ticket{
		ID:          m.ID.Hex(),
		CampusID:    m.CampusID,
		CreatorID:   m.CreatorID,
		Title:       m.Title,
		Description: m.Description,
		Location:    m.Location,
		ImageURL:    m.ImageURL,
		Category:    m.Category,
		Priority:    domain.TicketPriority(m.Priority),
		Status:      domain.TicketStatus(m.Status),
		CreatedAt:   unixToTime(m.CreatedAt),
		UpdatedAt:   unixToTime(m.UpdatedAt),
	}
}

// Create inserts the ticket and writes the generated id back into t.
func (r *MongoTicketRepository) Create(ctx context.Context, t *domain.Ticket) error {
	doc := mongoTicket{
		CampusID:    t.CampusID,
		CreatorID:   t.CreatorID,
		Title:       t.Title,
		Description: t.Description,
		Location:    t.Location,
		ImageURL:    t.ImageURL,
		Category:    t.Category,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt.Unix(),
		UpdatedAt:   t.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	t.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return nil
}

// FindByID looks a ticket up within a campus. A ticket belonging to another
// campus is reported as not found so callers cannot probe other tenants.
func (r *MongoTicketRepository) FindByID(ctx context.Context, id, campusID string) (*domain.Ticket, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTicketNotFound
	}

	var mt mongoTicket
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid, "campus_id": campusID}).Decode(&mt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrTicketNotFound
		}
		return nil, fmt.Errorf("find ticket: %w", err)
	}
	return mt.toDomain(), nil
}

// UpdateStatus conditionally moves a ticket from one status to another in a
// single document update. The from status is part of the filter, so the
// transition check holds even when two staff members race on the same
// ticket: the loser's write matches nothing.
func (r *MongoTicketRepository) UpdateStatus(ctx context.Context, id, campusID string, from, to domain.TicketStatus, at time.Time) (*domain.Ticket, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrTicketNotFound
	}

	filter := bson.M{
		"_id":       oid,
		"campus_id": campusID,
		"status":    string(from),
	}
	update := bson.M{"$set": bson.M{
		"status":     string(to),
		"updated_at": at.Unix(),
	}}

	var mt mongoTicket
	err = r.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&mt)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			// Tickets are never deleted and the caller has already resolved
			// the id within its campus, so a miss means the status
			// precondition no longer holds.
			return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, from, to)
		}
		return nil, fmt.Errorf("update ticket status: %w", err)
	}
	return mt.toDomain(), nil
}

func (r *MongoTicketRepository) ListByCreator(ctx context.Context, creatorID, campusID string) ([]*domain.Ticket, error) {
	return r.list(ctx, bson.M{"creator_id": creatorID, "campus_id": campusID})
}

func (r *MongoTicketRepository) ListByCampus(ctx context.Context, campusID string) ([]*domain.Ticket, error) {
	return r.list(ctx, bson.M{"campus_id": campusID})
}

func (r *MongoTicketRepository) list(ctx context.Context, filter bson.M) ([]*domain.Ticket, error) {
	cur, err := r.coll.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Ticket
	for cur.Next(ctx) {
		var mt mongoTicket
		if err := cur.Decode(&mt); err != nil {
			return nil, fmt.Errorf("decode ticket: %w", err)
		}
		out = append(out, mt.toDomain())
	}
	return out, cur.Err()
}

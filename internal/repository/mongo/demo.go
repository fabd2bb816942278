package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Rrens/chatbot-api/internal/domain"
)

// DemoRepository implements domain.DemoRepository
type DemoRepository struct {
	coll *mongo.Collection
}

// NewDemoRepository creates a new demo request repository
func NewDemoRepository(db *mongo.Database) *DemoRepository {
	return &DemoRepository{coll: db.Collection(demosCollection)}
}

func (r *DemoRepository) Create(ctx context.Context, req *domain.DemoRequest) error {
	req.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, req); err != nil {
		return fmt.Errorf("failed to create demo request: %w", err)
	}
	return nil
}

func (r *DemoRepository) FindRecentByEmail(ctx context.Context, email string, since time.Time) (*domain.DemoRequest, error) {
	filter := bson.M{
		"email":       email,
		"submittedAt": bson.M{"$gte": since},
	}

	opts := options.FindOne().SetSort(bson.D{{Key: "submittedAt", Value: -1}})

	var req domain.DemoRequest
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find recent demo request: %w", err)
	}
	return &req, nil
}

func (r *DemoRepository) List(ctx context.Context, filter domain.DemoFilter) ([]domain.DemoRequest, error) {
	direction := 1
	if filter.Descending {
		direction = -1
	}

	opts := options.Find().
		SetSort(bson.D{{Key: filter.SortField, Value: direction}, {Key: "_id", Value: direction}}).
		SetSkip(filter.Skip).
		SetLimit(filter.Limit)

	cursor, err := r.coll.Find(ctx, statusFilter(filter.Status), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list demo requests: %w", err)
	}
	defer cursor.Close(ctx)

	requests := []domain.DemoRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, fmt.Errorf("failed to decode demo requests: %w", err)
	}
	return requests, nil
}

func (r *DemoRepository) Count(ctx context.Context, status domain.DemoStatus) (int64, error) {
	count, err := r.coll.CountDocuments(ctx, statusFilter(status))
	if err != nil {
		return 0, fmt.Errorf("failed to count demo requests: %w", err)
	}
	return count, nil
}

func (r *DemoRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.DemoRequest, error) {
	var req domain.DemoRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get demo request: %w", err)
	}
	return &req, nil
}

// Update applies fields with $set and returns the updated document
func (r *DemoRepository) Update(ctx context.Context, id primitive.ObjectID, fields map[string]any) (*domain.DemoRequest, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var req domain.DemoRequest
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": fields}, opts).Decode(&req)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update demo request: %w", err)
	}
	return &req, nil
}

func (r *DemoRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete demo request: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func statusFilter(status domain.DemoStatus) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}

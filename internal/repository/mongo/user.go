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

// UserRepository implements domain.UserRepository
type UserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		coll: db.Collection(usersCollection),
		now:  time.Now,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := r.now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Chats == nil {
		// $push needs an array, never a null field
		user.Chats = []domain.Turn{}
	}

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("failed to create user: %w", domain.ErrDuplicate)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return count > 0, nil
}

// AppendTurns pushes turns onto the user's log in one update, so concurrent
// appends for the same user never overwrite each other.
func (r *UserRepository) AppendTurns(ctx context.Context, id primitive.ObjectID, turns ...domain.Turn) ([]domain.Turn, error) {
	update := bson.M{
		"$push": bson.M{"chats": bson.M{"$each": turns}},
		"$set":  bson.M{"updatedAt": r.now().UTC()},
	}
	return r.updateChats(ctx, id, update)
}

// ClearTurns resets the user's log to an empty sequence
func (r *UserRepository) ClearTurns(ctx context.Context, id primitive.ObjectID) ([]domain.Turn, error) {
	update := bson.M{
		"$set": bson.M{"chats": bson.A{}, "updatedAt": r.now().UTC()},
	}
	return r.updateChats(ctx, id, update)
}

func (r *UserRepository) updateChats(ctx context.Context, id primitive.ObjectID, update bson.M) ([]domain.Turn, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"chats": 1})

	var doc struct {
		Chats []domain.Turn `bson:"chats"`
	}
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update chats: %w", err)
	}

	if doc.Chats == nil {
		doc.Chats = []domain.Turn{}
	}
	return doc.Chats, nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.Chats == nil {
		user.Chats = []domain.Turn{}
	}
	return &user, nil
}

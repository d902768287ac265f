package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AnshRaj112/serenify-journal/internal/database"
	"github.com/AnshRaj112/serenify-journal/internal/models"
	"github.com/AnshRaj112/serenify-journal/pkg/utils"
)

// EntryQuery selects one user's entries, optionally limited to created_at
// in [From, To). Zero bounds are open.
type EntryQuery struct {
	UserID string
	From   time.Time
	To     time.Time
}

// EntryStore persists journal entries. Every method is scoped to the owner.
type EntryStore interface {
	// List returns entries in descending created_at order.
	List(ctx context.Context, q EntryQuery) ([]models.JournalEntry, error)
	Get(ctx context.Context, userID string, id primitive.ObjectID) (models.JournalEntry, error)
	Insert(ctx context.Context, e models.JournalEntry) (primitive.ObjectID, error)
	Replace(ctx context.Context, e models.JournalEntry) error
	Delete(ctx context.Context, userID string, id primitive.ObjectID) error
}

// MongoEntryStore keeps entries in the journal_entries collection. With a
// cipher, title and content are encrypted at rest.
type MongoEntryStore struct {
	coll   *mongo.Collection
	cipher *utils.Cipher
}

func NewMongoEntryStore(db *mongo.Database, cipher *utils.Cipher) *MongoEntryStore {
	return &MongoEntryStore{coll: db.Collection(database.EntriesCollection), cipher: cipher}
}

func (s *MongoEntryStore) List(ctx context.Context, q EntryQuery) ([]models.JournalEntry, error) {
	filter := bson.M{"user_id": q.UserID}
	created := bson.M{}
	if !q.From.IsZero() {
		created["$gte"] = q.From
	}
	if !q.To.IsZero() {
		created["$lt"] = q.To
	}
	if len(created) > 0 {
		filter["created_at"] = created
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := []models.JournalEntry{}
	if err := cursor.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode entries: %w", err)
	}
	for i := range entries {
		if err := s.open(&entries[i]); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

func (s *MongoEntryStore) Get(ctx context.Context, userID string, id primitive.ObjectID) (models.JournalEntry, error) {
	var e models.JournalEntry
	err := s.coll.FindOne(ctx, bson.M{"_id": id, "user_id": userID}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.JournalEntry{}, ErrNotFound
	}
	if err != nil {
		return models.JournalEntry{}, fmt.Errorf("find entry: %w", err)
	}
	if err := s.open(&e); err != nil {
		return models.JournalEntry{}, err
	}
	return e, nil
}

func (s *MongoEntryStore) Insert(ctx context.Context, e models.JournalEntry) (primitive.ObjectID, error) {
	e.ID = primitive.NilObjectID
	if err := s.seal(&e); err != nil {
		return primitive.NilObjectID, err
	}
	res, err := s.coll.InsertOne(ctx, e)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert entry: %w", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("insert entry: unexpected id type %T", res.InsertedID)
	}
	return id, nil
}

func (s *MongoEntryStore) Replace(ctx context.Context, e models.JournalEntry) error {
	if err := s.seal(&e); err != nil {
		return err
	}
	res, err := s.coll.ReplaceOne(ctx, bson.M{"_id": e.ID, "user_id": e.UserID}, e)
	if err != nil {
		return fmt.Errorf("replace entry: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoEntryStore) Delete(ctx context.Context, userID string, id primitive.ObjectID) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return fmt.Errorf("delete entry: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoEntryStore) seal(e *models.JournalEntry) error {
	if s.cipher == nil {
		return nil
	}
	var err error
	if e.Title, err = s.cipher.Encrypt(e.Title); err != nil {
		return fmt.Errorf("encrypt title: %w", err)
	}
	if e.Content, err = s.cipher.Encrypt(e.Content); err != nil {
		return fmt.Errorf("encrypt content: %w", err)
	}
	return nil
}

func (s *MongoEntryStore) open(e *models.JournalEntry) error {
	if s.cipher == nil {
		return nil
	}
	var err error
	if e.Title, err = s.cipher.Decrypt(e.Title); err != nil {
		return fmt.Errorf("decrypt entry %s title: %w", e.ID.Hex(), err)
	}
	if e.Content, err = s.cipher.Decrypt(e.Content); err != nil {
		return fmt.Errorf("decrypt entry %s content: %w", e.ID.Hex(), err)
	}
	return nil
}

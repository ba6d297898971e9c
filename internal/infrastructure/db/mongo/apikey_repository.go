package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adventureapp/adventure-api/internal/core/domain"
	"github.com/adventureapp/adventure-api/internal/core/ports"
)

const collectionAPIKeys = "api_keys"

type APIKeyRepository struct {
	col *mongo.Collection
}

func NewAPIKeyRepository(db *mongo.Database) *APIKeyRepository {
	return &APIKeyRepository{col: db.Collection(collectionAPIKeys)}
}

// Insert stores a new key record and returns the generated id. Only the
// secret's digest ever reaches this layer.
func (r *APIKeyRepository) Insert(ctx context.Context, key *domain.APIKey) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	key.ID = newID()
	if key.Scopes == nil {
		key.Scopes = []string{}
	}

	_, err := r.col.InsertOne(ctx, key)
	if err != nil {
		return "", err
	}
	return key.ID, nil
}

// FindByHash retrieves a key by secret digest.
func (r *APIKeyRepository) FindByHash(ctx context.Context, keyHash string) (*domain.APIKey, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var key domain.APIKey
	err := r.col.FindOne(ctx, bson.M{"key_hash": keyHash}).Decode(&key)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &key, nil
}

// FindByID retrieves a key by id.
func (r *APIKeyRepository) FindByID(ctx context.Context, id string) (*domain.APIKey, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := checkID(id, domain.ErrAPIKeyNotFound); err != nil {
		return nil, err
	}

	var key domain.APIKey
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&key)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAPIKeyNotFound
		}
		return nil, err
	}
	return &key, nil
}

// List returns every key record, newest first.
func (r *APIKeyRepository) List(ctx context.Context) ([]*domain.APIKey, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	keys := make([]*domain.APIKey, 0)
	for cur.Next(ctx) {
		var key domain.APIKey
		if err := cur.Decode(&key); err != nil {
			return nil, err
		}
		keys = append(keys, &key)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// Update applies the patch and reports whether any field actually changed.
// A missing record surfaces domain.ErrAPIKeyNotFound.
func (r *APIKeyRepository) Update(ctx context.Context, id string, patch ports.APIKeyPatch) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := checkID(id, domain.ErrAPIKeyNotFound); err != nil {
		return false, err
	}

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Scopes != nil {
		set["scopes"] = patch.Scopes
	}
	if patch.IsActive != nil {
		set["is_active"] = *patch.IsActive
	}
	if len(set) == 0 {
		return false, nil
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return false, err
	}
	if res.MatchedCount == 0 {
		return false, domain.ErrAPIKeyNotFound
	}
	return res.ModifiedCount > 0, nil
}

// TouchLastUsed records the instant of a successful verification.
func (r *APIKeyRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := checkID(id, domain.ErrAPIKeyNotFound); err != nil {
		return err
	}

	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"last_used": at}})
	return err
}

// Delete removes a key record and reports whether it existed.
func (r *APIKeyRepository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := checkID(id, domain.ErrAPIKeyNotFound); err != nil {
		return false, nil
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// EnsureIndexes creates necessary indexes on the api_keys collection.
func (r *APIKeyRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key_hash", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

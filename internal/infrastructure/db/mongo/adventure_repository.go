package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/adventureapp/adventure-api/internal/core/domain"
)

const collectionAdventures = "adventures"

type AdventureRepository struct {
	col *mongo.Collection
}

func NewAdventureRepository(db *mongo.Database) *AdventureRepository {
	return &AdventureRepository{col: db.Collection(collectionAdventures)}
}

// Insert stores a new adventure with its inline node sequence and returns
// the generated id.
func (r *AdventureRepository) Insert(ctx context.Context, a *domain.Adventure) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	a.ID = newID()
	if a.Nodes == nil {
		a.Nodes = []domain.Node{}
	}

	_, err := r.col.InsertOne(ctx, a)
	if err != nil {
		return "", err
	}
	return a.ID, nil
}

// FindByID retrieves an adventure by id.
func (r *AdventureRepository) FindByID(ctx context.Context, id string) (*domain.Adventure, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := checkID(id, domain.ErrAdventureNotFound); err != nil {
		return nil, err
	}

	var a domain.Adventure
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&a)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAdventureNotFound
		}
		return nil, err
	}
	return &a, nil
}

// ListVisible returns every adventure owned by ownerID or marked public,
// newest first.
func (r *AdventureRepository) ListVisible(ctx context.Context, ownerID string) ([]*domain.Adventure, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"$or": bson.A{
		bson.M{"owner_id": ownerID},
		bson.M{"is_public": true},
	}}

	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	adventures := make([]*domain.Adventure, 0)
	for cur.Next(ctx) {
		var a domain.Adventure
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		adventures = append(adventures, &a)
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return adventures, nil
}

// AppendNode pushes node onto the node sequence, conditional on the sequence
// currently holding exactly expectedLen nodes. A concurrent append changes
// the length and makes the filter miss.
func (r *AdventureRepository) AppendNode(ctx context.Context, id string, expectedLen int, node domain.Node) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := checkID(id, domain.ErrAdventureNotFound); err != nil {
		return err
	}

	filter := bson.M{
		"_id":   id,
		"nodes": bson.M{"$size": expectedLen},
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$push": bson.M{"nodes": node}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Either the document is gone or its length moved under us.
		if err := r.col.FindOne(ctx, bson.M{"_id": id}).Err(); errors.Is(err, mongo.ErrNoDocuments) {
			return domain.ErrAdventureNotFound
		}
		return domain.ErrConcurrentModification
	}
	return nil
}

// TruncateNodes keeps the prefix of length nodeIndex and discards the rest.
// $slice with an empty $each trims in place, so truncating past the end is
// a no-op.
func (r *AdventureRepository) TruncateNodes(ctx context.Context, id string, nodeIndex int) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := checkID(id, domain.ErrAdventureNotFound); err != nil {
		return err
	}

	update := bson.M{"$push": bson.M{"nodes": bson.M{
		"$each":  bson.A{},
		"$slice": nodeIndex,
	}}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAdventureNotFound
	}
	return nil
}

// SetCoverImage records the storage location of the adventure's cover image.
func (r *AdventureRepository) SetCoverImage(ctx context.Context, id, bucket, key string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := checkID(id, domain.ErrAdventureNotFound); err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"image_bucket": bucket,
		"image_key":    key,
	}}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrAdventureNotFound
	}
	return nil
}

// Delete removes the adventure document, nodes included, and reports
// whether it existed.
func (r *AdventureRepository) Delete(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := checkID(id, domain.ErrAdventureNotFound); err != nil {
		return false, nil
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}

// EnsureIndexes creates necessary indexes on the adventures collection.
func (r *AdventureRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
		{Keys: bson.D{{Key: "is_public", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

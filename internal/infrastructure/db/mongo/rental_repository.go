package mongo

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

const (
	collectionRentals = "rentals"

	indexRentalKey = "rental_key_unique"
	indexLivePair  = "live_pair_unique"
)

// RentalRepository implements ports.RentalRepository using MongoDB.
type RentalRepository struct {
	col *mongo.Collection
}

func NewRentalRepository(db *mongo.Database) *RentalRepository {
	return &RentalRepository{col: db.Collection(collectionRentals)}
}

// Create inserts a new rental document.
func (r *RentalRepository) Create(ctx context.Context, rec *domain.RentalRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rec.Live = rec.Status.IsLive()
	_, err := r.col.InsertOne(ctx, rec)
	if err == nil {
		return nil
	}
	if mongo.IsDuplicateKeyError(err) {
		if strings.Contains(err.Error(), indexLivePair) {
			return domain.ErrActiveBookingExists
		}
		return domain.ErrDuplicateRental
	}
	return storeErr("insert rental", err)
}

// Transition sets the fields of update on the rental matched by m only while
// its status is still m.Expected.
func (r *RentalRepository) Transition(ctx context.Context, m domain.RentalMatch, update domain.RentalUpdate) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{
		"requester_id":    m.Key.RequesterID,
		"provider_id":     m.Key.ProviderID,
		"requested_start": m.Key.RequestedStart,
		"status":          string(m.Expected),
	}

	set := bson.M{
		"status": string(update.Status),
		"live":   update.Status.IsLive(),
	}
	if update.ActualStart != nil {
		set["actual_start"] = *update.ActualStart
	}
	if update.ActualEnd != nil {
		set["actual_end"] = *update.ActualEnd
	}
	if update.ActualHours != nil {
		set["actual_hours"] = *update.ActualHours
	}

	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return 0, storeErr("transition rental", err)
	}
	return res.ModifiedCount, nil
}

func (r *RentalRepository) FindByID(ctx context.Context, rentalID string) (*domain.RentalRecord, error) {
	return r.findOne(ctx, bson.M{"rental_id": rentalID})
}

func (r *RentalRepository) FindLiveByPair(ctx context.Context, pair domain.PairKey) (*domain.RentalRecord, error) {
	return r.findOne(ctx, bson.M{
		"requester_id": pair.RequesterID,
		"provider_id":  pair.ProviderID,
		"live":         true,
	})
}

// FindAccepted lists Accepted rentals ordered by start.
func (r *RentalRepository) FindAccepted(ctx context.Context) ([]*domain.RentalRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "actual_start", Value: 1}})
	cursor, err := r.col.Find(ctx, bson.M{"status": string(domain.StatusAccepted)}, opts)
	if err != nil {
		return nil, storeErr("find accepted rentals", err)
	}
	defer cursor.Close(ctx)

	var out []*domain.RentalRecord
	if err := cursor.All(ctx, &out); err != nil {
		return nil, storeErr("decode accepted rentals", err)
	}
	return out, nil
}

func (r *RentalRepository) findOne(ctx context.Context, filter bson.M) (*domain.RentalRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var rec domain.RentalRecord
	err := r.col.FindOne(ctx, filter).Decode(&rec)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRentalNotFound
		}
		return nil, storeErr("find rental", err)
	}
	return &rec, nil
}

// EnsureIndexes creates the rental indexes. The partial index on live
// records allows one Pending or Accepted rental per pair.
func (r *RentalRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "rental_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("rental_id_unique"),
		},
		{
			Keys: bson.D{
				{Key: "requester_id", Value: 1},
				{Key: "provider_id", Value: 1},
				{Key: "requested_start", Value: 1},
			},
			Options: options.Index().SetUnique(true).SetName(indexRentalKey),
		},
		{
			Keys: bson.D{
				{Key: "requester_id", Value: 1},
				{Key: "provider_id", Value: 1},
			},
			Options: options.Index().
				SetUnique(true).
				SetName(indexLivePair).
				SetPartialFilterExpression(bson.M{"live": true}),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status"),
		},
	}

	if _, err := r.col.Indexes().CreateMany(ctx, indexes); err != nil {
		return storeErr("create rental indexes", err)
	}
	return nil
}

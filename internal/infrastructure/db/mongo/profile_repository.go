package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/text/cases"

	"github.com/namiiiah/Rent-Player-DiscordBot/internal/core/domain"
)

const (
	collectionProviders  = "providers"
	collectionRequesters = "requesters"
)

// profileDoc adds the case-folded name used for exact lookups.
type profileDoc struct {
	domain.Profile `bson:",inline"`
	NameKey        string `bson:"name_key"`
}

// ProfileRepository stores provider and requester profiles, one collection
// per kind.
type ProfileRepository struct {
	providers  *mongo.Collection
	requesters *mongo.Collection
}

func NewProfileRepository(db *mongo.Database) *ProfileRepository {
	return &ProfileRepository{
		providers:  db.Collection(collectionProviders),
		requesters: db.Collection(collectionRequesters),
	}
}

func (r *ProfileRepository) col(kind domain.ProfileKind) (*mongo.Collection, error) {
	switch kind {
	case domain.KindProvider:
		return r.providers, nil
	case domain.KindRequester:
		return r.requesters, nil
	}
	return nil, domain.ErrInvalidProfile
}

func nameKey(name string) string {
	return cases.Fold().String(name)
}

// Upsert replaces the whole profile document of p.UserID.
func (r *ProfileRepository) Upsert(ctx context.Context, p *domain.Profile) error {
	col, err := r.col(p.Kind)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := profileDoc{Profile: *p, NameKey: nameKey(p.DisplayName)}
	_, err = col.ReplaceOne(ctx, bson.M{"user_id": p.UserID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return storeErr("upsert profile", err)
	}
	return nil
}

// TouchName updates the name fields of userID in place, inserting a bare
// profile when the member never registered.
func (r *ProfileRepository) TouchName(ctx context.Context, kind domain.ProfileKind, userID, name string, at time.Time) error {
	col, err := r.col(kind)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{
		"$set": bson.M{
			"display_name": name,
			"name_key":     nameKey(name),
			"updated_at":   at,
		},
		"$setOnInsert": bson.M{"kind": kind},
	}
	_, err = col.UpdateOne(ctx, bson.M{"user_id": userID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return storeErr("touch profile name", err)
	}
	return nil
}

// FindByName returns the oldest-registered profile whose name matches,
// ignoring case.
func (r *ProfileRepository) FindByName(ctx context.Context, kind domain.ProfileKind, name string) (*domain.Profile, error) {
	col, err := r.col(kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc profileDoc
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	err = col.FindOne(ctx, bson.M{"name_key": nameKey(name)}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, storeErr("find profile by name", err)
	}
	return &doc.Profile, nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, kind domain.ProfileKind, userID string) (*domain.Profile, error) {
	col, err := r.col(kind)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc profileDoc
	err = col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, storeErr("find profile", err)
	}
	return &doc.Profile, nil
}

// EnsureIndexes makes user_id unique in both collections and indexes the
// folded name.
func (r *ProfileRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("user_id_unique"),
		},
		{
			Keys:    bson.D{{Key: "name_key", Value: 1}},
			Options: options.Index().SetName("name_key"),
		},
	}
	for _, col := range []*mongo.Collection{r.providers, r.requesters} {
		if _, err := col.Indexes().CreateMany(ctx, indexes); err != nil {
			return storeErr("create "+col.Name()+" indexes", err)
		}
	}
	return nil
}

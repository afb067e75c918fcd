package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CollectionName is the collection used by MongoService.
const CollectionName = "users"

type userDocument struct {
	ID        string    `bson:"_id"`
	Name      string    `bson:"name"`
	Email     string    `bson:"email"`
	Type      Type      `bson:"type"`
	Lanr      string    `bson:"lanr,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

func (d userDocument) user() User {
	return User{ID: d.ID, Draft: Draft{Name: d.Name, Email: d.Email, Type: d.Type, Lanr: d.Lanr}}
}

// MongoService stores one document per user.
type MongoService struct {
	coll  *mongo.Collection
	newID func() string
	now   func() time.Time
}

func NewMongoService(db *mongo.Database) *MongoService {
	return &MongoService{
		coll:  db.Collection(CollectionName),
		newID: uuid.NewString,
		now:   time.Now,
	}
}

func (s *MongoService) List(ctx context.Context) ([]Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetProjection(bson.D{{Key: "name", Value: 1}, {Key: "type", Value: 1}})

	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	var docs []userDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	out := make([]Summary, 0, len(docs))
	for _, d := range docs {
		out = append(out, Summary{ID: d.ID, Name: d.Name, Type: d.Type})
	}
	return out, nil
}

func (s *MongoService) Get(ctx context.Context, id string) (User, error) {
	var doc userDocument
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user: %w", err)
	}
	return doc.user(), nil
}

func (s *MongoService) Create(ctx context.Context, d Draft) (string, error) {
	d, err := prepare(d)
	if err != nil {
		return "", err
	}
	doc := userDocument{
		ID:        s.newID(),
		Name:      d.Name,
		Email:     d.Email,
		Type:      d.Type,
		Lanr:      d.Lanr,
		CreatedAt: s.now(),
	}
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	return doc.ID, nil
}

func (s *MongoService) Update(ctx context.Context, u User) error {
	d, err := prepare(u.Draft)
	if err != nil {
		return err
	}
	set := bson.D{
		{Key: "name", Value: d.Name},
		{Key: "email", Value: d.Email},
		{Key: "type", Value: d.Type},
	}
	update := bson.D{}
	if d.IsDoctor() {
		set = append(set, bson.E{Key: "lanr", Value: d.Lanr})
	} else {
		update = append(update, bson.E{Key: "$unset", Value: bson.D{{Key: "lanr", Value: ""}}})
	}
	update = append(update, bson.E{Key: "$set", Value: set})

	res, err := s.coll.UpdateOne(ctx, bson.D{{Key: "_id", Value: u.ID}}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoService) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Seed inserts users whose ids are not stored yet, preserving their order.
func (s *MongoService) Seed(ctx context.Context, users []User) error {
	base := s.now()
	for i, u := range users {
		insert := bson.D{
			{Key: "name", Value: u.Name},
			{Key: "email", Value: u.Email},
			{Key: "type", Value: u.Type},
			{Key: "created_at", Value: base.Add(time.Duration(i) * time.Millisecond)},
		}
		if u.IsDoctor() {
			insert = append(insert, bson.E{Key: "lanr", Value: u.Lanr})
		}
		_, err := s.coll.UpdateOne(ctx,
			bson.D{{Key: "_id", Value: u.ID}},
			bson.D{{Key: "$setOnInsert", Value: insert}},
			options.UpdateOne().SetUpsert(true),
		)
		if err != nil {
			return fmt.Errorf("seed user: %w", err)
		}
	}
	return nil
}

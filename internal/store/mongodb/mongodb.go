// Package mongodb implements store.Store on MongoDB. Documents keep the
// field names of the original Mongoose collections (users, categories,
// posts) so an existing database can be served as is.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

// Store is a store.Store backed by one MongoDB database.
type Store struct {
	client     *mongo.Client
	users      *mongo.Collection
	categories *mongo.Collection
	posts      *mongo.Collection
	now        func() time.Time
}

var _ store.Store = (*Store)(nil)

// Open connects to uri, verifies the connection and makes sure the unique
// and sort indexes exist.
func Open(ctx context.Context, uri, database string, log logrus.FieldLogger) (*Store, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	s := New(client, database)
	if err := s.EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	log.WithField("database", database).Info("mongodb connected")
	return s, nil
}

// New wraps an already connected client.
func New(client *mongo.Client, database string) *Store {
	db := client.Database(database)
	return &Store{
		client:     client,
		users:      db.Collection("users"),
		categories: db.Collection("categories"),
		posts:      db.Collection("posts"),
		now:        time.Now,
	}
}

// EnsureIndexes creates the unique and listing indexes. Existing indexes
// with the same keys are left alone.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: options.Index().SetUnique(true),
		}
	}

	if _, err := s.users.Indexes().CreateOne(ctx, unique("email")); err != nil {
		return fmt.Errorf("users index: %w", err)
	}
	if _, err := s.categories.Indexes().CreateOne(ctx, unique("name")); err != nil {
		return fmt.Errorf("categories index: %w", err)
	}
	_, err := s.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		unique("slug"),
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}},
		{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("posts indexes: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// timestamp returns the current time at the precision BSON stores.
func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// objectID parses a hex id; malformed ids resolve to nothing.
func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, store.ErrNotFound
	}
	return oid, nil
}

func notFound(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments) || errors.Is(err, store.ErrNotFound)
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

type userDoc struct {
	ID        primitive.ObjectID `bson:"_id"`
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	Role      string             `bson:"role"`
	CreatedAt time.Time          `bson:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt"`
}

func (d userDoc) model() *models.User {
	return &models.User{
		ID:           d.ID.Hex(),
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.Password,
		Role:         models.Role(d.Role),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	now := s.timestamp()
	doc := userDoc{
		ID:        primitive.NewObjectID(),
		Name:      u.Name,
		Email:     u.Email,
		Password:  u.PasswordHash,
		Role:      string(u.Role),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.users.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("create user: %w", err)
	}
	*u = *doc.model()
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if notFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.model(), nil
}

// ---------------------------------------------------------------------------
// Categories
// ---------------------------------------------------------------------------

type categoryDoc struct {
	ID          primitive.ObjectID `bson:"_id"`
	Name        string             `bson:"name"`
	Description string             `bson:"description"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

func (d categoryDoc) model() *models.Category {
	return &models.Category{
		ID:          d.ID.Hex(),
		Name:        d.Name,
		Description: d.Description,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (s *Store) CreateCategory(ctx context.Context, c *models.Category) error {
	now := s.timestamp()
	doc := categoryDoc{
		ID:          primitive.NewObjectID(),
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.categories.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("create category: %w", err)
	}
	*c = *doc.model()
	return nil
}

func (s *Store) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findCategory(ctx, bson.M{"_id": oid})
}

func (s *Store) GetCategoryByName(ctx context.Context, name string) (*models.Category, error) {
	return s.findCategory(ctx, bson.M{"name": name})
}

func (s *Store) findCategory(ctx context.Context, filter bson.M) (*models.Category, error) {
	var doc categoryDoc
	if err := s.categories.FindOne(ctx, filter).Decode(&doc); err != nil {
		if notFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find category: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) ListCategories(ctx context.Context) ([]models.Category, error) {
	cur, err := s.categories.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	var docs []categoryDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}

	items := make([]models.Category, 0, len(docs))
	for _, d := range docs {
		items = append(items, *d.model())
	}
	return items, nil
}

package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"inkwell/internal/models"
	"inkwell/internal/store"
)

type postDoc struct {
	ID            primitive.ObjectID `bson:"_id"`
	Title         string             `bson:"title"`
	Content       string             `bson:"content"`
	Excerpt       string             `bson:"excerpt"`
	Slug          string             `bson:"slug"`
	Author        primitive.ObjectID `bson:"author"`
	Category      primitive.ObjectID `bson:"category"`
	Tags          []string           `bson:"tags"`
	FeaturedImage string             `bson:"featuredImage"`
	IsPublished   bool               `bson:"isPublished"`
	ViewCount     int64              `bson:"viewCount"`
	CreatedAt     time.Time          `bson:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt"`
}

func (d postDoc) model() *models.Post {
	tags := d.Tags
	if tags == nil {
		tags = []string{}
	}
	return &models.Post{
		ID:            d.ID.Hex(),
		Title:         d.Title,
		Content:       d.Content,
		Excerpt:       d.Excerpt,
		Slug:          d.Slug,
		AuthorID:      d.Author.Hex(),
		CategoryID:    d.Category.Hex(),
		Tags:          tags,
		FeaturedImage: d.FeaturedImage,
		IsPublished:   d.IsPublished,
		ViewCount:     d.ViewCount,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

// refID converts a reference id supplied by a caller.
func refID(field, id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%s reference %q: %w", field, id, err)
	}
	return oid, nil
}

func (s *Store) CreatePost(ctx context.Context, p *models.Post) error {
	author, err := refID("author", p.AuthorID)
	if err != nil {
		return err
	}
	category, err := refID("category", p.CategoryID)
	if err != nil {
		return err
	}

	now := s.timestamp()
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	doc := postDoc{
		ID:            primitive.NewObjectID(),
		Title:         p.Title,
		Content:       p.Content,
		Excerpt:       p.Excerpt,
		Slug:          p.Slug,
		Author:        author,
		Category:      category,
		Tags:          tags,
		FeaturedImage: p.FeaturedImage,
		IsPublished:   p.IsPublished,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := s.posts.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return store.ErrDuplicate
		}
		return fmt.Errorf("create post: %w", err)
	}
	*p = *doc.model()
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*models.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}
	return s.findPost(ctx, bson.M{"_id": oid})
}

func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	return s.findPost(ctx, bson.M{"slug": slug})
}

func (s *Store) findPost(ctx context.Context, filter bson.M) (*models.Post, error) {
	var doc postDoc
	if err := s.posts.FindOne(ctx, filter).Decode(&doc); err != nil {
		if notFound(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	populated, err := s.populate(ctx, []postDoc{doc})
	if err != nil {
		return nil, err
	}
	return &populated[0], nil
}

// postFilter builds the query document. A category id that is not an
// ObjectID can match nothing, so ok is false and callers short-circuit.
func postFilter(filter store.PostFilter) (q bson.M, ok bool) {
	q = bson.M{}
	if filter.CategoryID != "" {
		oid, err := primitive.ObjectIDFromHex(filter.CategoryID)
		if err != nil {
			return nil, false
		}
		q["category"] = oid
	}
	return q, true
}

func (s *Store) ListPosts(ctx context.Context, filter store.PostFilter, offset, limit int) ([]models.Post, error) {
	q, ok := postFilter(filter)
	if !ok {
		return []models.Post{}, nil
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := s.posts.Find(ctx, q, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	var docs []postDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	return s.populate(ctx, docs)
}

func (s *Store) CountPosts(ctx context.Context, filter store.PostFilter) (int64, error) {
	q, ok := postFilter(filter)
	if !ok {
		return 0, nil
	}
	n, err := s.posts.CountDocuments(ctx, q)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (s *Store) UpdatePost(ctx context.Context, id string, patch store.PostPatch) (*models.Post, error) {
	oid, err := objectID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": s.timestamp()}
	if patch.Title != nil {
		set["title"] = *patch.Title
	}
	if patch.Content != nil {
		set["content"] = *patch.Content
	}
	if patch.Excerpt != nil {
		set["excerpt"] = *patch.Excerpt
	}
	if patch.Slug != nil {
		set["slug"] = *patch.Slug
	}
	if patch.AuthorID != nil {
		author, err := refID("author", *patch.AuthorID)
		if err != nil {
			return nil, err
		}
		set["author"] = author
	}
	if patch.CategoryID != nil {
		category, err := refID("category", *patch.CategoryID)
		if err != nil {
			return nil, err
		}
		set["category"] = category
	}
	if patch.Tags != nil {
		tags := *patch.Tags
		if tags == nil {
			tags = []string{}
		}
		set["tags"] = tags
	}
	if patch.FeaturedImage != nil {
		set["featuredImage"] = *patch.FeaturedImage
	}
	if patch.IsPublished != nil {
		set["isPublished"] = *patch.IsPublished
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDoc
	err = s.posts.FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).Decode(&doc)
	if notFound(err) {
		return nil, store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return nil, store.ErrDuplicate
	}
	if err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return doc.model(), nil
}

func (s *Store) DeletePost(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.posts.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) IncrementPostViews(ctx context.Context, id string) error {
	oid, err := objectID(id)
	if err != nil {
		return err
	}
	res, err := s.posts.UpdateByID(ctx, oid, bson.M{"$inc": bson.M{"viewCount": 1}})
	if err != nil {
		return fmt.Errorf("increment post views: %w", err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

// populate resolves the author and category of each post with one query per
// collection. Dangling references stay unpopulated.
func (s *Store) populate(ctx context.Context, docs []postDoc) ([]models.Post, error) {
	out := make([]models.Post, 0, len(docs))
	if len(docs) == 0 {
		return out, nil
	}

	authorIDs := make([]primitive.ObjectID, 0, len(docs))
	categoryIDs := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		authorIDs = append(authorIDs, d.Author)
		categoryIDs = append(categoryIDs, d.Category)
	}

	authors := make(map[primitive.ObjectID]*models.UserRef)
	cur, err := s.users.Find(ctx, bson.M{"_id": bson.M{"$in": authorIDs}},
		options.Find().SetProjection(bson.M{"name": 1, "email": 1}))
	if err != nil {
		return nil, fmt.Errorf("populate authors: %w", err)
	}
	var users []userDoc
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode authors: %w", err)
	}
	for _, u := range users {
		authors[u.ID] = &models.UserRef{ID: u.ID.Hex(), Name: u.Name, Email: u.Email}
	}

	categories := make(map[primitive.ObjectID]*models.CategoryRef)
	cur, err = s.categories.Find(ctx, bson.M{"_id": bson.M{"$in": categoryIDs}})
	if err != nil {
		return nil, fmt.Errorf("populate categories: %w", err)
	}
	var cats []categoryDoc
	if err := cur.All(ctx, &cats); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	for _, c := range cats {
		categories[c.ID] = &models.CategoryRef{ID: c.ID.Hex(), Name: c.Name, Description: c.Description}
	}

	for _, d := range docs {
		p := d.model()
		p.Author = authors[d.Author]
		p.Category = categories[d.Category]
		out = append(out, *p)
	}
	return out, nil
}

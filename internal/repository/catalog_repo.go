package repository

import (
	"context"
	"errors"

	"streamgate/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MovieRepo handles MongoDB operations for movies
type MovieRepo interface {
	Create(ctx context.Context, m *model.Movie) (string, error)
	GetByID(ctx context.Context, id string) (*model.Movie, error)
	List(ctx context.Context) ([]*model.Movie, error)
	Update(ctx context.Context, m *model.Movie) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// ShowRepo handles MongoDB operations for series and anime
type ShowRepo interface {
	Create(ctx context.Context, s *model.Show) (string, error)
	GetByID(ctx context.Context, kind model.ShowKind, id string) (*model.Show, error)
	List(ctx context.Context, kind model.ShowKind) ([]*model.Show, error)
	Update(ctx context.Context, s *model.Show) (bool, error)
	Delete(ctx context.Context, kind model.ShowKind, id string) (bool, error)
	Count(ctx context.Context, kind model.ShowKind) (int64, error)
}

// LiveChannelRepo handles MongoDB operations for live TV channels
type LiveChannelRepo interface {
	Create(ctx context.Context, c *model.LiveChannel) (string, error)
	GetByID(ctx context.Context, id string) (*model.LiveChannel, error)
	List(ctx context.Context) ([]*model.LiveChannel, error)
	Update(ctx context.Context, c *model.LiveChannel) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// BackgroundRepo handles MongoDB operations for login background images
type BackgroundRepo interface {
	Create(ctx context.Context, b *model.BackgroundImage) (string, error)
	GetByID(ctx context.Context, id string) (*model.BackgroundImage, error)
	List(ctx context.Context, activeOnly bool) ([]*model.BackgroundImage, error)
	Update(ctx context.Context, b *model.BackgroundImage) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

// docs wraps the operations shared by every catalog collection
type docs[T any] struct {
	collection *mongo.Collection
}

func (d docs[T]) insert(ctx context.Context, doc *T) (string, error) {
	result, err := d.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", err
	}
	return insertedHex(result.InsertedID), nil
}

func (d docs[T]) find(ctx context.Context, filter bson.M) (*T, error) {
	var out T
	err := d.collection.FindOne(ctx, filter).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (d docs[T]) list(ctx context.Context, filter bson.M, sort bson.D) ([]*T, error) {
	opts := options.Find()
	if sort != nil {
		opts.SetSort(sort)
	}
	cursor, err := d.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// replace swaps the stored document; the caller clears the id field first
// because _id is immutable
func (d docs[T]) replace(ctx context.Context, filter bson.M, doc *T) (bool, error) {
	result, err := d.collection.ReplaceOne(ctx, filter, doc)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (d docs[T]) remove(ctx context.Context, filter bson.M) (bool, error) {
	result, err := d.collection.DeleteOne(ctx, filter)
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func byID(id string) (bson.M, bool) {
	oid, ok := objectID(id)
	if !ok {
		return nil, false
	}
	return bson.M{"_id": oid}, true
}

// movies

type movieRepo struct{ docs[model.Movie] }

// NewMovieRepo creates a new movie repository
func NewMovieRepo(db *mongo.Database) MovieRepo {
	return &movieRepo{docs[model.Movie]{db.Collection("movies")}}
}

func (r *movieRepo) Create(ctx context.Context, m *model.Movie) (string, error) {
	m.ID = ""
	id, err := r.insert(ctx, m)
	m.ID = id
	return id, err
}

func (r *movieRepo) GetByID(ctx context.Context, id string) (*model.Movie, error) {
	f, ok := byID(id)
	if !ok {
		return nil, nil
	}
	return r.find(ctx, f)
}

func (r *movieRepo) List(ctx context.Context) ([]*model.Movie, error) {
	return r.list(ctx, bson.M{}, bson.D{{Key: "title", Value: 1}})
}

func (r *movieRepo) Update(ctx context.Context, m *model.Movie) (bool, error) {
	f, ok := byID(m.ID)
	if !ok {
		return false, nil
	}
	id := m.ID
	m.ID = ""
	defer func() { m.ID = id }()
	return r.replace(ctx, f, m)
}

func (r *movieRepo) Delete(ctx context.Context, id string) (bool, error) {
	f, ok := byID(id)
	if !ok {
		return false, nil
	}
	return r.remove(ctx, f)
}

func (r *movieRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// series and anime share one collection keyed by kind

type showRepo struct{ docs[model.Show] }

// NewShowRepo creates a new show repository
func NewShowRepo(db *mongo.Database) ShowRepo {
	return &showRepo{docs[model.Show]{db.Collection("shows")}}
}

func (r *showRepo) Create(ctx context.Context, s *model.Show) (string, error) {
	s.ID = ""
	id, err := r.insert(ctx, s)
	s.ID = id
	return id, err
}

func (r *showRepo) GetByID(ctx context.Context, kind model.ShowKind, id string) (*model.Show, error) {
	f, ok := byID(id)
	if !ok {
		return nil, nil
	}
	f["kind"] = kind
	return r.find(ctx, f)
}

func (r *showRepo) List(ctx context.Context, kind model.ShowKind) ([]*model.Show, error) {
	return r.list(ctx, bson.M{"kind": kind}, bson.D{{Key: "title", Value: 1}})
}

func (r *showRepo) Update(ctx context.Context, s *model.Show) (bool, error) {
	f, ok := byID(s.ID)
	if !ok {
		return false, nil
	}
	f["kind"] = s.Kind
	id := s.ID
	s.ID = ""
	defer func() { s.ID = id }()
	return r.replace(ctx, f, s)
}

func (r *showRepo) Delete(ctx context.Context, kind model.ShowKind, id string) (bool, error) {
	f, ok := byID(id)
	if !ok {
		return false, nil
	}
	f["kind"] = kind
	return r.remove(ctx, f)
}

func (r *showRepo) Count(ctx context.Context, kind model.ShowKind) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"kind": kind})
}

// live channels

type liveChannelRepo struct{ docs[model.LiveChannel] }

// NewLiveChannelRepo creates a new live channel repository
func NewLiveChannelRepo(db *mongo.Database) LiveChannelRepo {
	return &liveChannelRepo{docs[model.LiveChannel]{db.Collection("live_channels")}}
}

func (r *liveChannelRepo) Create(ctx context.Context, c *model.LiveChannel) (string, error) {
	c.ID = ""
	id, err := r.insert(ctx, c)
	c.ID = id
	return id, err
}

func (r *liveChannelRepo) GetByID(ctx context.Context, id string) (*model.LiveChannel, error) {
	f, ok := byID(id)
	if !ok {
		return nil, nil
	}
	return r.find(ctx, f)
}

func (r *liveChannelRepo) List(ctx context.Context) ([]*model.LiveChannel, error) {
	return r.list(ctx, bson.M{}, bson.D{{Key: "name", Value: 1}})
}

func (r *liveChannelRepo) Update(ctx context.Context, c *model.LiveChannel) (bool, error) {
	f, ok := byID(c.ID)
	if !ok {
		return false, nil
	}
	id := c.ID
	c.ID = ""
	defer func() { c.ID = id }()
	return r.replace(ctx, f, c)
}

func (r *liveChannelRepo) Delete(ctx context.Context, id string) (bool, error) {
	f, ok := byID(id)
	if !ok {
		return false, nil
	}
	return r.remove(ctx, f)
}

func (r *liveChannelRepo) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// login backgrounds

type backgroundRepo struct{ docs[model.BackgroundImage] }

// NewBackgroundRepo creates a new background image repository
func NewBackgroundRepo(db *mongo.Database) BackgroundRepo {
	return &backgroundRepo{docs[model.BackgroundImage]{db.Collection("login_backgrounds")}}
}

func (r *backgroundRepo) Create(ctx context.Context, b *model.BackgroundImage) (string, error) {
	b.ID = ""
	id, err := r.insert(ctx, b)
	b.ID = id
	return id, err
}

func (r *backgroundRepo) GetByID(ctx context.Context, id string) (*model.BackgroundImage, error) {
	f, ok := byID(id)
	if !ok {
		return nil, nil
	}
	return r.find(ctx, f)
}

func (r *backgroundRepo) List(ctx context.Context, activeOnly bool) ([]*model.BackgroundImage, error) {
	filter := bson.M{}
	if activeOnly {
		filter["active"] = true
	}
	return r.list(ctx, filter, bson.D{{Key: "order", Value: 1}})
}

func (r *backgroundRepo) Update(ctx context.Context, b *model.BackgroundImage) (bool, error) {
	f, ok := byID(b.ID)
	if !ok {
		return false, nil
	}
	id := b.ID
	b.ID = ""
	defer func() { b.ID = id }()
	return r.replace(ctx, f, b)
}

func (r *backgroundRepo) Delete(ctx context.Context, id string) (bool, error) {
	f, ok := byID(id)
	if !ok {
		return false, nil
	}
	return r.remove(ctx, f)
}

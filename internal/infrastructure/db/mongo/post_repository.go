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

	"github.com/devconnector/connector-api/internal/core/domain"
)

const collectionPosts = "posts"

var errInvalidUserID = errors.New("invalid user id")

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(collectionPosts)}
}

type likeDoc struct {
	ID   primitive.ObjectID `bson:"_id"`
	User primitive.ObjectID `bson:"user"`
}

type commentDoc struct {
	ID     primitive.ObjectID `bson:"_id"`
	User   primitive.ObjectID `bson:"user"`
	Text   string             `bson:"text"`
	Name   string             `bson:"name"`
	Avatar string             `bson:"avatar"`
	Date   time.Time          `bson:"date"`
}

type postDoc struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	User     primitive.ObjectID `bson:"user"`
	Text     string             `bson:"text"`
	Name     string             `bson:"name"`
	Avatar   string             `bson:"avatar"`
	Likes    []likeDoc          `bson:"likes"`
	Comments []commentDoc       `bson:"comments"`
	Date     time.Time          `bson:"date"`
}

func likesToDomain(docs []likeDoc) []domain.Like {
	out := make([]domain.Like, 0, len(docs))
	for _, l := range docs {
		out = append(out, domain.Like{ID: l.ID.Hex(), User: l.User.Hex()})
	}
	return out
}

func commentsToDomain(docs []commentDoc) []domain.Comment {
	out := make([]domain.Comment, 0, len(docs))
	for _, c := range docs {
		out = append(out, domain.Comment{
			ID:        c.ID.Hex(),
			User:      c.User.Hex(),
			Text:      c.Text,
			Name:      c.Name,
			Avatar:    c.Avatar,
			CreatedAt: c.Date.UTC(),
		})
	}
	return out
}

func (d postDoc) toDomain() *domain.Post {
	return &domain.Post{
		ID:        d.ID.Hex(),
		User:      d.User.Hex(),
		Text:      d.Text,
		Name:      d.Name,
		Avatar:    d.Avatar,
		Likes:     likesToDomain(d.Likes),
		Comments:  commentsToDomain(d.Comments),
		CreatedAt: d.Date.UTC(),
	}
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	uid, ok := parseID(post.User)
	if !ok {
		return nil, fmt.Errorf("create post: %w", errInvalidUserID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := postDoc{
		ID:       primitive.NewObjectID(),
		User:     uid,
		Text:     post.Text,
		Name:     post.Name,
		Avatar:   post.Avatar,
		Likes:    []likeDoc{},
		Comments: []commentDoc{},
		Date:     post.CreatedAt.UTC(),
	}
	if doc.Date.IsZero() {
		doc.Date = time.Now().UTC()
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PostRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	oid, ok := parseID(id)
	if !ok {
		return nil, domain.ErrPostNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc postDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *PostRepository) List(ctx context.Context) ([]*domain.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []postDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}

	out := make([]*domain.Post, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.toDomain())
	}
	return out, nil
}

func (r *PostRepository) Delete(ctx context.Context, id string) error {
	oid, ok := parseID(id)
	if !ok {
		return domain.ErrPostNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrPostNotFound
	}
	return nil
}

func (r *PostRepository) DeleteByUser(ctx context.Context, userID string) (int64, error) {
	uid, ok := parseID(userID)
	if !ok {
		return 0, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteMany(ctx, bson.M{"user": uid})
	if err != nil {
		return 0, fmt.Errorf("delete posts: %w", err)
	}
	return res.DeletedCount, nil
}

// AddLike prepends the like only if the filter still sees no like from the
// same user, so two concurrent likes cannot both land.
func (r *PostRepository) AddLike(ctx context.Context, postID string, like domain.Like) ([]domain.Like, error) {
	pid, ok := parseID(postID)
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	uid, ok := parseID(like.User)
	if !ok {
		return nil, fmt.Errorf("add like: %w", errInvalidUserID)
	}

	filter := bson.M{"_id": pid, "likes.user": bson.M{"$ne": uid}}
	update := bson.M{"$push": bson.M{"likes": bson.M{
		"$each":     bson.A{likeDoc{ID: primitive.NewObjectID(), User: uid}},
		"$position": 0,
	}}}

	doc, err := r.modify(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("add like: %w", err)
	}
	if doc == nil {
		return nil, r.missOr(ctx, pid, domain.ErrAlreadyLiked)
	}
	return likesToDomain(doc.Likes), nil
}

func (r *PostRepository) RemoveLike(ctx context.Context, postID, userID string) ([]domain.Like, error) {
	pid, ok := parseID(postID)
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	uid, ok := parseID(userID)
	if !ok {
		return nil, domain.ErrNotLiked
	}

	filter := bson.M{"_id": pid, "likes.user": uid}
	update := bson.M{"$pull": bson.M{"likes": bson.M{"user": uid}}}

	doc, err := r.modify(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("remove like: %w", err)
	}
	if doc == nil {
		return nil, r.missOr(ctx, pid, domain.ErrNotLiked)
	}
	return likesToDomain(doc.Likes), nil
}

func (r *PostRepository) AddComment(ctx context.Context, postID string, comment domain.Comment) ([]domain.Comment, error) {
	pid, ok := parseID(postID)
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	uid, ok := parseID(comment.User)
	if !ok {
		return nil, fmt.Errorf("add comment: %w", errInvalidUserID)
	}

	entry := commentDoc{
		ID:     primitive.NewObjectID(),
		User:   uid,
		Text:   comment.Text,
		Name:   comment.Name,
		Avatar: comment.Avatar,
		Date:   comment.CreatedAt.UTC(),
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now().UTC()
	}

	update := bson.M{"$push": bson.M{"comments": bson.M{"$each": bson.A{entry}, "$position": 0}}}
	doc, err := r.modify(ctx, bson.M{"_id": pid}, update)
	if err != nil {
		return nil, fmt.Errorf("add comment: %w", err)
	}
	if doc == nil {
		return nil, domain.ErrPostNotFound
	}
	return commentsToDomain(doc.Comments), nil
}

// RemoveComment pulls the comment only while it is still authored by userID.
func (r *PostRepository) RemoveComment(ctx context.Context, postID, commentID, userID string) ([]domain.Comment, error) {
	pid, ok := parseID(postID)
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	cid, ok := parseID(commentID)
	if !ok {
		return nil, domain.ErrCommentNotFound
	}
	uid, ok := parseID(userID)
	if !ok {
		return nil, domain.ErrCommentNotFound
	}

	filter := bson.M{"_id": pid, "comments": bson.M{"$elemMatch": bson.M{"_id": cid, "user": uid}}}
	update := bson.M{"$pull": bson.M{"comments": bson.M{"_id": cid}}}

	doc, err := r.modify(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("remove comment: %w", err)
	}
	if doc == nil {
		return nil, r.missOr(ctx, pid, domain.ErrCommentNotFound)
	}
	return commentsToDomain(doc.Comments), nil
}

// modify applies update and returns the post after it, or nil when the
// filter matched nothing.
func (r *PostRepository) modify(ctx context.Context, filter, update bson.M) (*postDoc, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc postDoc
	if err := r.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// missOr explains a conditional update that matched nothing: either the post
// is gone or the condition did not hold.
func (r *PostRepository) missOr(ctx context.Context, pid primitive.ObjectID, conditionErr error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": pid}, options.Count().SetLimit(1))
	if err != nil {
		return fmt.Errorf("count post: %w", err)
	}
	if n == 0 {
		return domain.ErrPostNotFound
	}
	return conditionErr
}

// EnsureIndexes supports the newest-first listing and the account cascade.
func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

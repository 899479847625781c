package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/devconnector/connector-api/internal/core/domain"
)

// stubPostRepo mirrors the conditional update semantics of the Mongo adapter.
type stubPostRepo struct {
	posts     map[string]*domain.Post
	seq       int
	writes    int
	deleteErr error
}

func newStubPostRepo() *stubPostRepo {
	return &stubPostRepo{posts: make(map[string]*domain.Post)}
}

func (r *stubPostRepo) nextID(prefix string) string {
	r.seq++
	return fmt.Sprintf("%s-%d", prefix, r.seq)
}

func clonePost(p *domain.Post) *domain.Post {
	c := *p
	c.Likes = append([]domain.Like(nil), p.Likes...)
	c.Comments = append([]domain.Comment(nil), p.Comments...)
	return &c
}

func (r *stubPostRepo) Create(_ context.Context, post *domain.Post) (*domain.Post, error) {
	r.writes++
	c := clonePost(post)
	c.ID = r.nextID("post")
	r.posts[c.ID] = c
	return clonePost(c), nil
}

func (r *stubPostRepo) FindByID(_ context.Context, id string) (*domain.Post, error) {
	p, ok := r.posts[id]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	return clonePost(p), nil
}

func (r *stubPostRepo) List(context.Context) ([]*domain.Post, error) {
	out := make([]*domain.Post, 0, len(r.posts))
	for _, p := range r.posts {
		out = append(out, clonePost(p))
	}
	return out, nil
}

func (r *stubPostRepo) Delete(_ context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.posts[id]; !ok {
		return domain.ErrPostNotFound
	}
	r.writes++
	delete(r.posts, id)
	return nil
}

func (r *stubPostRepo) DeleteByUser(_ context.Context, userID string) (int64, error) {
	if r.deleteErr != nil {
		return 0, r.deleteErr
	}
	var n int64
	for id, p := range r.posts {
		if p.User == userID {
			delete(r.posts, id)
			n++
		}
	}
	r.writes++
	return n, nil
}

func (r *stubPostRepo) AddLike(_ context.Context, postID string, like domain.Like) ([]domain.Like, error) {
	p, ok := r.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	if p.LikedBy(like.User) {
		return nil, domain.ErrAlreadyLiked
	}
	r.writes++
	like.ID = r.nextID("like")
	p.Likes = append([]domain.Like{like}, p.Likes...)
	return append([]domain.Like(nil), p.Likes...), nil
}

func (r *stubPostRepo) RemoveLike(_ context.Context, postID, userID string) ([]domain.Like, error) {
	p, ok := r.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	if !p.LikedBy(userID) {
		return nil, domain.ErrNotLiked
	}
	r.writes++
	kept := p.Likes[:0]
	for _, l := range p.Likes {
		if l.User != userID {
			kept = append(kept, l)
		}
	}
	p.Likes = kept
	return append([]domain.Like(nil), p.Likes...), nil
}

func (r *stubPostRepo) AddComment(_ context.Context, postID string, comment domain.Comment) ([]domain.Comment, error) {
	p, ok := r.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	r.writes++
	comment.ID = r.nextID("comment")
	p.Comments = append([]domain.Comment{comment}, p.Comments...)
	return append([]domain.Comment(nil), p.Comments...), nil
}

func (r *stubPostRepo) RemoveComment(_ context.Context, postID, commentID, userID string) ([]domain.Comment, error) {
	p, ok := r.posts[postID]
	if !ok {
		return nil, domain.ErrPostNotFound
	}
	c, ok := p.Comment(commentID)
	if !ok || c.User != userID {
		return nil, domain.ErrCommentNotFound
	}
	r.writes++
	kept := p.Comments[:0]
	for _, c := range p.Comments {
		if c.ID != commentID {
			kept = append(kept, c)
		}
	}
	p.Comments = kept
	return append([]domain.Comment(nil), p.Comments...), nil
}

type postFixture struct {
	svc   *PostService
	posts *stubPostRepo
	users *stubUserRepo
	sink  *recordingSink
}

func newPostFixture(t *testing.T) *postFixture {
	t.Helper()
	users := newStubUserRepo()
	for _, name := range []string{"Alice", "Bob"} {
		if _, err := users.Create(context.Background(), &domain.User{Name: name, Email: name + "@x.com", Avatar: "//avatar/" + name}); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	posts := newStubPostRepo()
	sink := &recordingSink{}
	return &postFixture{
		svc:   NewPostService(posts, users, sink, zerolog.Nop()),
		posts: posts,
		users: users,
		sink:  sink,
	}
}

var (
	alice = domain.Principal{ID: "user-1"}
	bob   = domain.Principal{ID: "user-2"}
)

func TestPostService_Create_CopiesAuthor(t *testing.T) {
	f := newPostFixture(t)

	post, err := f.svc.Create(context.Background(), alice, "  hello  ")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if post.User != alice.ID || post.Name != "Alice" || post.Avatar != "//avatar/Alice" {
		t.Fatalf("unexpected author fields: %+v", post)
	}
	if post.Text != "hello" {
		t.Fatalf("expected trimmed text, got %q", post.Text)
	}
	if post.CreatedAt.IsZero() {
		t.Fatalf("expected creation time")
	}
	if got := f.sink.actions(); len(got) != 1 || got[0] != domain.ActionPostCreated {
		t.Fatalf("expected post.created activity, got %v", got)
	}
}

func TestPostService_Create_UnknownAuthor(t *testing.T) {
	f := newPostFixture(t)

	_, err := f.svc.Create(context.Background(), domain.Principal{ID: "ghost"}, "hi")
	if !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if f.posts.writes != 0 {
		t.Fatalf("expected no writes, got %d", f.posts.writes)
	}
}

func TestPostService_Delete_Ownership(t *testing.T) {
	f := newPostFixture(t)
	post, _ := f.svc.Create(context.Background(), alice, "mine")
	writes := f.posts.writes

	if err := f.svc.Delete(context.Background(), bob, post.ID); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if f.posts.writes != writes {
		t.Fatalf("denied delete must not write")
	}
	if _, ok := f.posts.posts[post.ID]; !ok {
		t.Fatalf("post removed by non-author")
	}

	if err := f.svc.Delete(context.Background(), alice, post.ID); err != nil {
		t.Fatalf("author delete failed: %v", err)
	}
	if _, ok := f.posts.posts[post.ID]; ok {
		t.Fatalf("post still present after delete")
	}
}

func TestPostService_Delete_NotFound(t *testing.T) {
	f := newPostFixture(t)

	if err := f.svc.Delete(context.Background(), alice, "nope"); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostService_LikeUnlike(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post, _ := f.svc.Create(ctx, alice, "like me")

	likes, err := f.svc.Like(ctx, bob, post.ID)
	if err != nil {
		t.Fatalf("Like returned error: %v", err)
	}
	if len(likes) != 1 || likes[0].User != bob.ID {
		t.Fatalf("unexpected likes: %+v", likes)
	}

	likes, err = f.svc.Like(ctx, alice, post.ID)
	if err != nil {
		t.Fatalf("second Like returned error: %v", err)
	}
	if len(likes) != 2 || likes[0].User != alice.ID {
		t.Fatalf("expected newest like first, got %+v", likes)
	}

	if _, err := f.svc.Like(ctx, bob, post.ID); !errors.Is(err, domain.ErrAlreadyLiked) {
		t.Fatalf("expected ErrAlreadyLiked, got %v", err)
	}
	if n := len(f.posts.posts[post.ID].Likes); n != 2 {
		t.Fatalf("duplicate like changed state: %d likes", n)
	}

	likes, err = f.svc.Unlike(ctx, bob, post.ID)
	if err != nil {
		t.Fatalf("Unlike returned error: %v", err)
	}
	if len(likes) != 1 || likes[0].User != alice.ID {
		t.Fatalf("unexpected likes after unlike: %+v", likes)
	}

	if _, err := f.svc.Unlike(ctx, bob, post.ID); !errors.Is(err, domain.ErrNotLiked) {
		t.Fatalf("expected ErrNotLiked, got %v", err)
	}
}

func TestPostService_Like_NotFound(t *testing.T) {
	f := newPostFixture(t)

	if _, err := f.svc.Like(context.Background(), alice, "nope"); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if _, err := f.svc.Unlike(context.Background(), alice, "nope"); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

func TestPostService_LikeUnlike_DeletedAccount(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post, _ := f.svc.Create(ctx, alice, "like me")
	if _, err := f.svc.Like(ctx, bob, post.ID); err != nil {
		t.Fatalf("Like returned error: %v", err)
	}

	// bob's account is gone but another of his tokens has not expired.
	delete(f.users.byID, bob.ID)
	writes := f.posts.writes

	if _, err := f.svc.Like(ctx, bob, post.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on like, got %v", err)
	}
	if _, err := f.svc.Unlike(ctx, bob, post.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound on unlike, got %v", err)
	}
	if f.posts.writes != writes {
		t.Fatalf("expected no writes, got %d", f.posts.writes-writes)
	}
}

func TestPostService_Comments(t *testing.T) {
	f := newPostFixture(t)
	ctx := context.Background()
	post, _ := f.svc.Create(ctx, alice, "discuss")

	comments, err := f.svc.Comment(ctx, bob, post.ID, "first")
	if err != nil {
		t.Fatalf("Comment returned error: %v", err)
	}
	if len(comments) != 1 || comments[0].Name != "Bob" || comments[0].Text != "first" {
		t.Fatalf("unexpected comments: %+v", comments)
	}
	bobComment := comments[0].ID

	comments, err = f.svc.Comment(ctx, alice, post.ID, "second")
	if err != nil {
		t.Fatalf("Comment returned error: %v", err)
	}
	if comments[0].Text != "second" {
		t.Fatalf("expected newest comment first, got %+v", comments)
	}

	// The post author cannot remove someone else's comment.
	if _, err := f.svc.DeleteComment(ctx, alice, post.ID, bobComment); !errors.Is(err, domain.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if n := len(f.posts.posts[post.ID].Comments); n != 2 {
		t.Fatalf("denied delete changed state: %d comments", n)
	}

	comments, err = f.svc.DeleteComment(ctx, bob, post.ID, bobComment)
	if err != nil {
		t.Fatalf("DeleteComment returned error: %v", err)
	}
	if len(comments) != 1 || comments[0].User != alice.ID {
		t.Fatalf("unexpected comments after delete: %+v", comments)
	}

	if _, err := f.svc.DeleteComment(ctx, bob, post.ID, bobComment); !errors.Is(err, domain.ErrCommentNotFound) {
		t.Fatalf("expected ErrCommentNotFound, got %v", err)
	}
}

func TestPostService_Comment_PostNotFound(t *testing.T) {
	f := newPostFixture(t)

	if _, err := f.svc.Comment(context.Background(), alice, "nope", "hi"); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
	if _, err := f.svc.DeleteComment(context.Background(), alice, "nope", "c"); !errors.Is(err, domain.ErrPostNotFound) {
		t.Fatalf("expected ErrPostNotFound, got %v", err)
	}
}

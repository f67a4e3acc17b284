package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/blogilista/internal/domain/entity"
	"github.com/oksasatya/blogilista/internal/infrastructure/memory"
	"github.com/oksasatya/blogilista/pkg/helpers"
)

type recordedEvent struct {
	name    string
	payload map[string]any
}

type fakeEvents struct {
	mu     sync.Mutex
	events []recordedEvent
	err    error
}

func (f *fakeEvents) Publish(_ context.Context, event string, payload map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{name: event, payload: payload})
	return f.err
}

type fakeIndex struct {
	indexed map[string]entity.Blog
	removed []string
	hits    []string
	err     error
}

func newFakeIndex() *fakeIndex { return &fakeIndex{indexed: map[string]entity.Blog{}} }

func (f *fakeIndex) Index(_ context.Context, b *entity.Blog) error {
	f.indexed[b.ID] = *b
	return f.err
}

func (f *fakeIndex) Remove(_ context.Context, id string) error {
	f.removed = append(f.removed, id)
	return f.err
}

func (f *fakeIndex) Search(_ context.Context, _ string, _ int) ([]string, error) {
	return f.hits, f.err
}

type fixture struct {
	store  *memory.Store
	users  *UserService
	blogs  *BlogService
	events *fakeEvents
	index  *fakeIndex
	tokens *helpers.JWTManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	events := &fakeEvents{}
	index := newFakeIndex()
	tokens := helpers.NewJWTManager("test-secret", time.Hour)
	return &fixture{
		store:  store,
		users:  NewUserService(store.Users(), store.Blogs(), helpers.NewPasswordHasher(bcrypt.MinCost), tokens, events, nil),
		blogs:  NewBlogService(store.Blogs(), store.Users(), index, events, nil),
		events: events,
		index:  index,
		tokens: tokens,
	}
}

func (f *fixture) register(t *testing.T, username string) *entity.User {
	t.Helper()
	u, err := f.users.Register(context.Background(), RegisterInput{Username: username, Password: "password1", Name: "name"})
	require.NoError(t, err)
	return u
}

func strp(s string) *string { return &s }
func intp(i int) *int       { return &i }
func boolp(b bool) *bool    { return &b }

func TestRegister_AdultDefaultsToTrue(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Register(context.Background(), RegisterInput{Username: "newUser", Password: "newPass", Name: "user"})
	require.NoError(t, err)
	assert.True(t, u.Adult)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "newPass", u.PasswordHash)

	u2, err := f.users.Register(context.Background(), RegisterInput{Username: "other", Password: "newPass", Adult: boolp(false)})
	require.NoError(t, err)
	assert.False(t, u2.Adult)
}

func TestRegister_PasswordTooShort(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Register(context.Background(), RegisterInput{Username: "newUser", Password: "ab"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)
	assert.Equal(t, 0, f.store.UserCount())

	// length counts characters, not bytes
	_, err = f.users.Register(context.Background(), RegisterInput{Username: "newUser", Password: "äö"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = f.users.Register(context.Background(), RegisterInput{Username: "newUser", Password: "abc"})
	assert.NoError(t, err)
}

func TestRegister_PasswordCheckedBeforeUsername(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Register(context.Background(), RegisterInput{Password: "ab"})
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = f.users.Register(context.Background(), RegisterInput{Password: "abcdef"})
	assert.ErrorIs(t, err, ErrUsernameMissing)
	assert.Equal(t, 0, f.store.UserCount())
}

func TestRegister_UsernameNotUnique(t *testing.T) {
	f := newFixture(t)
	f.register(t, "user1")

	_, err := f.users.Register(context.Background(), RegisterInput{Username: "user1", Password: "newPass"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "username not unique", verr.Reason)
	assert.Equal(t, 1, f.store.UserCount())
}

// staleLookup never sees existing users, as when two registrations race.
type staleLookup struct {
	*memory.UserRepository
}

func (staleLookup) FindByUsername(context.Context, string) ([]entity.User, error) {
	return nil, nil
}

func TestRegister_ConcurrentDuplicateIsNotUnique(t *testing.T) {
	f := newFixture(t)
	users := NewUserService(staleLookup{f.store.Users()}, f.store.Blogs(), helpers.NewPasswordHasher(bcrypt.MinCost), f.tokens, f.events, nil)

	_, err := users.Register(context.Background(), RegisterInput{Username: "user1", Password: "password1"})
	require.NoError(t, err)

	_, err = users.Register(context.Background(), RegisterInput{Username: "user1", Password: "password2"})
	assert.ErrorIs(t, err, ErrUsernameTaken)
	var ierr *InternalError
	assert.False(t, errors.As(err, &ierr))
	assert.Equal(t, 1, f.store.UserCount())
}

func TestRegister_StorageFaultIsInternal(t *testing.T) {
	f := newFixture(t)
	f.store.FailOn("find users by username", errors.New("db down"))

	_, err := f.users.Register(context.Background(), RegisterInput{Username: "x", Password: "secret"})
	var ierr *InternalError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, 0, f.store.UserCount())
}

func TestRegister_PublishesEventBestEffort(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("broker down")

	u := f.register(t, "user1")
	require.Len(t, f.events.events, 1)
	assert.Equal(t, "user_registered", f.events.events[0].name)
	assert.Equal(t, u.ID, f.events.events[0].payload["id"])
}

func TestLogin(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "user1")

	res, err := f.users.Login(context.Background(), "user1", "password1")
	require.NoError(t, err)
	assert.Equal(t, "user1", res.Username)

	claims, err := f.tokens.ParseToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	_, err = f.users.Login(context.Background(), "user1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.users.Login(context.Background(), "nobody", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateBlog_AddsBlogAndBackReference(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "user1")
	before := f.store.BlogCount()

	got, err := f.blogs.Create(context.Background(), u.ID, CreateBlogInput{
		Title: strp("blogi"), Author: strp("blogitus"), URL: strp("asdf"), Likes: intp(5),
	})
	require.NoError(t, err)
	assert.Equal(t, before+1, f.store.BlogCount())
	assert.Equal(t, 5, got.Blog.Likes)
	assert.Equal(t, u.ID, got.Blog.UserID)
	assert.Contains(t, got.Owner.BlogIDs, got.Blog.ID)

	owner, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{got.Blog.ID}, owner.BlogIDs)

	assert.Contains(t, f.index.indexed, got.Blog.ID)
	require.Len(t, f.events.events, 2)
	assert.Equal(t, "blog_created", f.events.events[1].name)
}

func TestCreateBlog_LikesDefaultToZero(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "user1")

	got, err := f.blogs.Create(context.Background(), u.ID, CreateBlogInput{Title: strp("blogi")})
	require.NoError(t, err)
	assert.Equal(t, 0, got.Blog.Likes)
}

func TestCreateBlog_TitleOrURLRequired(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "user1")

	_, err := f.blogs.Create(context.Background(), u.ID, CreateBlogInput{Author: strp("blogitus"), Likes: intp(5)})
	assert.ErrorIs(t, err, ErrMissingBlogField)
	assert.Equal(t, 0, f.store.BlogCount())

	_, err = f.blogs.Create(context.Background(), u.ID, CreateBlogInput{URL: strp("only-url")})
	assert.NoError(t, err)

	// present but empty still counts as present
	_, err = f.blogs.Create(context.Background(), u.ID, CreateBlogInput{Title: strp("")})
	assert.NoError(t, err)
}

func TestCreateBlog_UnknownOwnerIsAuthenticationError(t *testing.T) {
	f := newFixture(t)

	for _, id := range []string{"not-a-uuid", "7b0c7b43-1a6e-4b4a-9d57-6d4f5e1f0a11"} {
		_, err := f.blogs.Create(context.Background(), id, CreateBlogInput{Title: strp("t")})
		var aerr *AuthenticationError
		assert.ErrorAs(t, err, &aerr, id)
	}
	assert.Equal(t, 0, f.store.BlogCount())
}

func TestCreateBlog_StorageFaultWritesNothing(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "user1")
	f.store.FailOn("create blog", errors.New("tx aborted"))

	_, err := f.blogs.Create(context.Background(), u.ID, CreateBlogInput{Title: strp("t")})
	var ierr *InternalError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, 0, f.store.BlogCount())

	owner, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Empty(t, owner.BlogIDs)
}

func TestUpdateBlog(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "user1")
	created, err := f.blogs.Create(context.Background(), u.ID, CreateBlogInput{Title: strp("blogi1"), Author: strp("a"), URL: strp("url1"), Likes: intp(1)})
	require.NoError(t, err)
	id := created.Blog.ID

	err = f.blogs.Update(context.Background(), id, entity.BlogPatch{
		Title: strp("blogi12"), Author: strp("kirjoittaja12"), URL: strp("url12"), Likes: intp(12),
	})
	require.NoError(t, err)

	got, err := f.blogs.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "blogi12", got.Blog.Title)
	assert.Equal(t, "kirjoittaja12", got.Blog.Author)
	assert.Equal(t, "url12", got.Blog.URL)
	assert.Equal(t, 12, got.Blog.Likes)
	assert.Equal(t, "blogi12", f.index.indexed[id].Title)

	require.NoError(t, f.blogs.Update(context.Background(), id, entity.BlogPatch{Likes: intp(13)}))
	got, err = f.blogs.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "blogi12", got.Blog.Title)
	assert.Equal(t, 13, got.Blog.Likes)
}

func TestUpdateBlog_MissingIsNoop(t *testing.T) {
	f := newFixture(t)
	err := f.blogs.Update(context.Background(), "7b0c7b43-1a6e-4b4a-9d57-6d4f5e1f0a11", entity.BlogPatch{Likes: intp(1)})
	assert.NoError(t, err)

	assert.ErrorIs(t, f.blogs.Update(context.Background(), "abc", entity.BlogPatch{}), ErrMalformedID)
}

func TestDeleteBlog_LeavesDanglingReference(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "user1")
	created, err := f.blogs.Create(context.Background(), u.ID, CreateBlogInput{Title: strp("t")})
	require.NoError(t, err)

	require.NoError(t, f.blogs.Delete(context.Background(), created.Blog.ID))
	assert.Equal(t, 0, f.store.BlogCount())
	assert.Equal(t, []string{created.Blog.ID}, f.index.removed)

	owner, err := f.store.Users().GetByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{created.Blog.ID}, owner.BlogIDs)

	// user listing skips the dangling reference
	list, err := f.users.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Blogs)

	// deleting again is fine
	assert.NoError(t, f.blogs.Delete(context.Background(), created.Blog.ID))
}

func TestGetBlog_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.blogs.Get(context.Background(), "7b0c7b43-1a6e-4b4a-9d57-6d4f5e1f0a11")
	assert.ErrorIs(t, err, ErrBlogNotFound)
}

func TestListBlogs_ResolvesOwners(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Blogs().Create(context.Background(), &entity.Blog{Title: "seed", Likes: 1}))
	u := f.register(t, "user1")
	_, err := f.blogs.Create(context.Background(), u.ID, CreateBlogInput{Title: strp("owned")})
	require.NoError(t, err)

	f.register(t, "user2")

	// owners are looked up by id, never by scanning all users
	f.store.FailOn("list users", errors.New("full scan"))

	list, err := f.blogs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Nil(t, list[0].Owner)
	require.NotNil(t, list[1].Owner)
	assert.Equal(t, "user1", list[1].Owner.Username)
}

func TestListBlogs_OwnerlessSkipsUserLookup(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Blogs().Create(context.Background(), &entity.Blog{Title: "seed"}))
	f.store.FailOn("list users by id", errors.New("db down"))

	list, err := f.blogs.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Owner)
}

func TestListBlogs_OwnerLookupFaultIsInternal(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "user1")
	_, err := f.blogs.Create(context.Background(), u.ID, CreateBlogInput{Title: strp("owned")})
	require.NoError(t, err)
	f.store.FailOn("list users by id", errors.New("db down"))

	_, err = f.blogs.List(context.Background())
	var ierr *InternalError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "list users by id", ierr.Op)
}

func TestSearch(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "user1")
	a, err := f.blogs.Create(context.Background(), u.ID, CreateBlogInput{Title: strp("a")})
	require.NoError(t, err)
	b, err := f.blogs.Create(context.Background(), u.ID, CreateBlogInput{Title: strp("b")})
	require.NoError(t, err)

	f.index.hits = []string{b.Blog.ID, "gone", a.Blog.ID}
	res, err := f.blogs.Search(context.Background(), "x", 0)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "b", res[0].Blog.Title)
	assert.Equal(t, "a", res[1].Blog.Title)

	f.blogs.Index = nil
	res, err = f.blogs.Search(context.Background(), "x", 10)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	st, err := f.blogs.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, st.TotalLikes)
	assert.Nil(t, st.Favourite)

	for i, likes := range []int{1, 7, 7, 2} {
		require.NoError(t, f.store.Blogs().Create(context.Background(), &entity.Blog{Title: string(rune('a' + i)), Likes: likes}))
	}
	st, err = f.blogs.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17, st.TotalLikes)
	require.NotNil(t, st.Favourite)
	assert.Equal(t, "b", st.Favourite.Title)
}

package handlers

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"devagram/internal/config"
	"devagram/internal/db"
	"devagram/internal/events"
	"devagram/internal/identity"
	"devagram/internal/models"
	"devagram/internal/storage"
)

type fakeIdentity struct {
	signUps   []string
	confirmed []string
	forgot    []string
	changed   []string
	sub       string
	session   identity.Session
	err       error
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password string) (string, error) {
	f.signUps = append(f.signUps, email)
	return f.sub, f.err
}

func (f *fakeIdentity) ConfirmEmail(ctx context.Context, email, code string) error {
	f.confirmed = append(f.confirmed, email+":"+code)
	return f.err
}

func (f *fakeIdentity) ForgotPassword(ctx context.Context, email string) error {
	f.forgot = append(f.forgot, email)
	return f.err
}

func (f *fakeIdentity) ChangePassword(ctx context.Context, email, password, code string) error {
	f.changed = append(f.changed, email+":"+code)
	return f.err
}

func (f *fakeIdentity) Login(ctx context.Context, login, password string) (identity.Session, error) {
	return f.session, f.err
}

type fakeUsers struct {
	byID    map[string]*models.User
	created []*models.User
	updates int
	getErr  error
}

func (f *fakeUsers) Get(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *u
	c.Following = append([]string{}, u.Following...)
	return &c, nil
}

func (f *fakeUsers) Create(ctx context.Context, u *models.User) error {
	f.created = append(f.created, u)
	f.byID[u.CognitoID] = u
	return nil
}

func (f *fakeUsers) Update(ctx context.Context, u *models.User) error {
	f.updates++
	f.byID[u.CognitoID] = u
	return nil
}

type queryCall struct {
	userID string
	cursor *db.Cursor
	limit  int32
}

type fakePosts struct {
	byID    map[string]*models.Post
	created []*models.Post
	updates int

	page    db.Page
	queries []queryCall
	scans   [][]string
	scanCur []*db.Cursor
}

func (f *fakePosts) Get(ctx context.Context, id string) (*models.Post, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	c := *p
	c.Likes = append([]string{}, p.Likes...)
	c.Coments = append([]models.Comment{}, p.Coments...)
	return &c, nil
}

func (f *fakePosts) Create(ctx context.Context, p *models.Post) error {
	f.created = append(f.created, p)
	f.byID[p.ID] = p
	return nil
}

func (f *fakePosts) Update(ctx context.Context, p *models.Post) error {
	f.updates++
	f.byID[p.ID] = p
	return nil
}

func (f *fakePosts) QueryByUser(ctx context.Context, userID string, cursor *db.Cursor, limit int32) (db.Page, error) {
	f.queries = append(f.queries, queryCall{userID: userID, cursor: cursor, limit: limit})
	return f.page, nil
}

func (f *fakePosts) ScanByUsers(ctx context.Context, userIDs []string, cursor *db.Cursor, limit int32) (db.Page, error) {
	f.scans = append(f.scans, userIDs)
	f.scanCur = append(f.scanCur, cursor)
	return f.page, nil
}

type fakeImages struct {
	saved []string
	err   error
}

func (f *fakeImages) SaveImage(ctx context.Context, bucket, prefix string, file storage.File) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	key := storage.ObjectKey(prefix, "id", file.Filename)
	f.saved = append(f.saved, bucket+"/"+key)
	return key, nil
}

func (f *fakeImages) SignedURL(ctx context.Context, bucket, key string) (string, error) {
	return "https://" + bucket + ".s3.amazonaws.com/" + key + "?sig", nil
}

type fakeEvents struct {
	published []events.Event
	err       error
}

func (f *fakeEvents) Publish(ctx context.Context, ev events.Event) error {
	f.published = append(f.published, ev)
	return f.err
}

type fakeServices struct {
	identity *fakeIdentity
	users    *fakeUsers
	posts    *fakePosts
	images   *fakeImages
	events   *fakeEvents
}

func newFakeServices() *fakeServices {
	return &fakeServices{
		identity: &fakeIdentity{sub: "sub-new"},
		users:    &fakeUsers{byID: map[string]*models.User{}},
		posts:    &fakePosts{byID: map[string]*models.Post{}},
		images:   &fakeImages{},
		events:   &fakeEvents{},
	}
}

func (f *fakeServices) Identity(poolID, clientID string) identity.Provider { return f.identity }
func (f *fakeServices) Users(table string) db.UserRepository             { return f.users }
func (f *fakeServices) Posts(table string) db.PostRepository             { return f.posts }
func (f *fakeServices) Images() storage.ImageStore                       { return f.images }
func (f *fakeServices) Events() events.Publisher                         { return f.events }

var testNow = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

// testConfig sets every deployment variable; pass key/"" pairs to unset some.
func testConfig(t *testing.T, overrides ...string) *config.Resolver {
	t.Helper()
	env := map[string]string{
		config.UserPoolID:       "us-east-1_pool",
		config.UserPoolClientID: "client",
		config.UserTable:        "users",
		config.PostTable:        "posts",
		config.AvatarBucket:     "avatars",
		config.PostBucket:       "posts-bucket",
		config.FeedPageSize:     "10",
		config.EventsTopicARN:   "",
		config.SSMPath:          "",
	}
	for i := 0; i+1 < len(overrides); i += 2 {
		env[overrides[i]] = overrides[i+1]
	}
	for k, v := range env {
		t.Setenv(k, v)
	}
	r, err := config.FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	return r
}

func testLogger() zerolog.Logger {
	return zerolog.New(io.Discard)
}

func seedUser(svc *fakeServices, id, name string, following ...string) *models.User {
	u := models.NewUser(id, name, id+"@devagram.com", "")
	u.Following = append(u.Following, following...)
	svc.users.byID[id] = u
	return u
}

var errTest = errors.New("ProvisionedThroughputExceededException")

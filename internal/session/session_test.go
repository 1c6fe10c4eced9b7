package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"expense_tracker/internal/assets"
	"expense_tracker/internal/domain"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu        sync.Mutex
	accounts  map[string]string
	uids      map[string]string
	current   *domain.Identity
	listeners map[int]func(*domain.Identity)
	next      int
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{accounts: map[string]string{}, uids: map[string]string{}, listeners: map[int]func(*domain.Identity){}}
}

func (p *fakeProvider) SignIn(_ context.Context, email, password string) (domain.Identity, error) {
	p.mu.Lock()
	stored, ok := p.accounts[email]
	p.mu.Unlock()
	if !ok || stored != password {
		return domain.Identity{}, domain.NewError(domain.ErrAuth, "fake.sign_in", "Invalid credentials", nil)
	}
	identity := domain.Identity{UID: p.uids[email], Email: email}
	p.emit(&identity)
	return identity, nil
}

func (p *fakeProvider) SignUp(_ context.Context, email, password string) (domain.Identity, error) {
	p.mu.Lock()
	if _, exists := p.accounts[email]; exists {
		p.mu.Unlock()
		return domain.Identity{}, domain.NewError(domain.ErrAuth, "fake.sign_up", "Email already in use", nil)
	}
	p.accounts[email] = password
	p.uids[email] = "uid-" + email
	p.mu.Unlock()
	identity := domain.Identity{UID: "uid-" + email, Email: email}
	p.emit(&identity)
	return identity, nil
}

func (p *fakeProvider) SignOut(context.Context) error {
	p.emit(nil)
	return nil
}

func (p *fakeProvider) OnAuthStateChanged(fn func(*domain.Identity)) func() {
	p.mu.Lock()
	id := p.next
	p.next++
	p.listeners[id] = fn
	current := p.current
	p.mu.Unlock()
	fn(current)
	return func() {
		p.mu.Lock()
		delete(p.listeners, id)
		p.mu.Unlock()
	}
}

func (p *fakeProvider) emit(identity *domain.Identity) {
	p.mu.Lock()
	p.current = identity
	var fns []func(*domain.Identity)
	for _, fn := range p.listeners {
		fns = append(fns, fn)
	}
	p.mu.Unlock()
	for _, fn := range fns {
		fn(identity)
	}
}

func (p *fakeProvider) listenerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

type fakeProfiles struct {
	mu        sync.Mutex
	users     map[string]domain.User
	createErr error
}

func newFakeProfiles() *fakeProfiles {
	return &fakeProfiles{users: map[string]domain.User{}}
}

func (f *fakeProfiles) GetUser(_ context.Context, uid string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[uid]
	if !ok {
		return domain.User{}, domain.NotFound("fake.get_user", "User not found")
	}
	return user, nil
}

func (f *fakeProfiles) CreateUser(_ context.Context, user domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.users[user.UID] = user
	return nil
}

func (f *fakeProfiles) UpdateUser(_ context.Context, uid string, name string, image *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[uid]
	if !ok {
		return domain.NotFound("fake.update_user", "User not found")
	}
	if name != "" {
		user.Name = name
	}
	if image != nil {
		user.Image = image
	}
	f.users[uid] = user
	return nil
}

type fakeHost struct {
	paths []string
}

func (h *fakeHost) Upload(_ context.Context, upload assets.Upload) (string, error) {
	h.paths = append(h.paths, upload.Path)
	return "https://cdn.example/" + upload.Path, nil
}

func quietLogger() (*logrus.Logger, *logtest.Hook) {
	return logtest.NewNullLogger()
}

func TestNewSessionLeavesLoadingOnFirstEvent(t *testing.T) {
	logger, _ := quietLogger()
	provider := newFakeProvider()
	sess := New(provider, newFakeProfiles(), WithLogger(logger))
	defer sess.Close()

	assert.False(t, sess.Loading())
	assert.Equal(t, StateUnauthenticated, sess.State())
	assert.Nil(t, sess.User())
	assert.False(t, sess.IsAuthenticated())
}

func TestRegisterPublishesProfile(t *testing.T) {
	logger, _ := quietLogger()
	provider := newFakeProvider()
	profiles := newFakeProfiles()
	sess := New(provider, profiles, WithLogger(logger))
	defer sess.Close()

	var seen []*domain.User
	cancel := sess.Subscribe(func(user *domain.User) { seen = append(seen, user) })
	defer cancel()

	res := sess.Register(context.Background(), "ann@example.com", "hunter22", " Ann ")
	require.True(t, res.Success, res.Msg)
	assert.Equal(t, "Registration successful", res.Msg)

	user := sess.User()
	require.NotNil(t, user)
	assert.Equal(t, "uid-ann@example.com", user.UID)
	assert.Equal(t, "Ann", user.Name)
	assert.Equal(t, StateAuthenticated, sess.State())
	require.NotEmpty(t, seen)
	assert.Equal(t, "Ann", seen[len(seen)-1].Name)
}

func TestRegisterProfileFailureLeavesIdentity(t *testing.T) {
	logger, hook := quietLogger()
	provider := newFakeProvider()
	profiles := newFakeProfiles()
	profiles.createErr = domain.Network("fake.create_user", errors.New("connection reset"))
	sess := New(provider, profiles, WithLogger(logger))
	defer sess.Close()

	res := sess.Register(context.Background(), "ann@example.com", "hunter22", "Ann")
	require.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrNetwork)
	assert.Nil(t, sess.User())
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)

	// The identity exists although the profile does not.
	again := sess.Register(context.Background(), "ann@example.com", "hunter22", "Ann")
	assert.False(t, again.Success)
	assert.Equal(t, "Email already in use", again.Msg)
}

func TestLoginLoadsProfile(t *testing.T) {
	logger, _ := quietLogger()
	provider := newFakeProvider()
	profiles := newFakeProfiles()
	ctx := context.Background()
	_, err := provider.SignUp(ctx, "ann@example.com", "hunter22")
	require.NoError(t, err)
	require.NoError(t, profiles.CreateUser(ctx, domain.User{UID: "uid-ann@example.com", Name: "Ann", Email: "ann@example.com"}))
	require.NoError(t, provider.SignOut(ctx))

	sess := New(provider, profiles, WithLogger(logger))
	defer sess.Close()
	require.Nil(t, sess.User())

	res := sess.Login(ctx, "ann@example.com", "hunter22")
	require.True(t, res.Success)
	assert.Equal(t, "Login successful", res.Msg)
	require.NotNil(t, sess.User())
	assert.Equal(t, "Ann", sess.User().Name)
	assert.Equal(t, StateAuthenticated, sess.State())

	out := sess.Logout(ctx)
	require.True(t, out.Success)
	assert.Nil(t, sess.User())
	assert.Equal(t, StateUnauthenticated, sess.State())
}

func TestLoginWithUnknownIdentityDoesNotTouchUser(t *testing.T) {
	logger, _ := quietLogger()
	provider := newFakeProvider()
	sess := New(provider, newFakeProfiles(), WithLogger(logger))
	defer sess.Close()

	notified := 0
	cancel := sess.Subscribe(func(*domain.User) { notified++ })
	defer cancel()

	res := sess.Login(context.Background(), "bad@x.com", "wrong")
	assert.False(t, res.Success)
	assert.NotEmpty(t, res.Msg)
	assert.ErrorIs(t, res.Err, domain.ErrAuth)
	assert.Nil(t, sess.User())
	assert.Equal(t, 0, notified)
}

func TestLoginValidation(t *testing.T) {
	logger, _ := quietLogger()
	sess := New(newFakeProvider(), newFakeProfiles(), WithLogger(logger))
	defer sess.Close()

	res := sess.Login(context.Background(), "", "")
	assert.False(t, res.Success)
	assert.ErrorIs(t, res.Err, domain.ErrValidation)
	assert.Equal(t, "Please fill in all fields", res.Msg)

	res = sess.Register(context.Background(), "a@b.co", "secret", " ")
	assert.ErrorIs(t, res.Err, domain.ErrValidation)
}

func TestUpdateProfileUploadsImage(t *testing.T) {
	logger, _ := quietLogger()
	provider := newFakeProvider()
	profiles := newFakeProfiles()
	host := &fakeHost{}
	now := time.UnixMilli(1700000000000)
	sess := New(provider, profiles, WithLogger(logger), WithAssetHost(host), WithClock(func() time.Time { return now }))
	defer sess.Close()

	ctx := context.Background()
	require.True(t, sess.Register(ctx, "ann@example.com", "hunter22", "Ann").Success)
	uid := sess.User().UID

	res := sess.UpdateProfile(ctx, uid, ProfileInput{Name: "Annie", Image: assets.LocalBytes("me.png", "image/png", []byte("png"))})
	require.True(t, res.Success, res.Msg)
	assert.Equal(t, []string{"users/" + uid + "/1700000000000"}, host.paths)

	user := sess.User()
	assert.Equal(t, "Annie", user.Name)
	require.NotNil(t, user.Image)
	assert.Equal(t, "https://cdn.example/users/"+uid+"/1700000000000", *user.Image)

	res = sess.UpdateProfile(ctx, uid, ProfileInput{Name: ""})
	assert.ErrorIs(t, res.Err, domain.ErrValidation)
	assert.Equal(t, "Please enter your name", res.Msg)
}

func TestCloseStopsFollowingProvider(t *testing.T) {
	logger, _ := quietLogger()
	provider := newFakeProvider()
	sess := New(provider, newFakeProfiles(), WithLogger(logger))
	assert.Equal(t, 1, provider.listenerCount())
	sess.Close()
	sess.Close()
	assert.Equal(t, 0, provider.listenerCount())
}

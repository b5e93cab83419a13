package identity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matryer/is"
	"github.com/rs/zerolog"
	"mtasks/internal/domain/entity"
)

type recordingMailer struct {
	mu   sync.Mutex
	to   []string
	body []string
}

func (m *recordingMailer) Send(_ context.Context, to, _, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.to = append(m.to, to)
	m.body = append(m.body, body)
	return nil
}

func newTestProvider(t *testing.T) (*LocalProvider, *recordingMailer) {
	t.Helper()
	dir := t.TempDir()
	mailer := &recordingMailer{}
	p := NewLocalProvider(Options{
		AccountsPath: filepath.Join(dir, "accounts.yml"),
		SessionPath:  filepath.Join(dir, "session"),
		Secret:       []byte("test-secret"),
		SessionTTL:   time.Hour,
		ResetTTL:     10 * time.Minute,
	}, mailer, zerolog.Nop())
	return p, mailer
}

func TestLocalProvider_RegisterLoginLogout(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	p, _ := newTestProvider(t)

	_, err := p.CurrentUser(ctx)
	is.True(errors.Is(err, entity.ErrNotAuthenticated))

	user, err := p.Register(ctx, "Ada@Example.com", "secret1")
	is.NoErr(err)
	is.Equal(user.Email, "ada@example.com")

	current, err := p.CurrentUser(ctx)
	is.NoErr(err)
	is.Equal(current.ID, user.ID)

	_, err = p.Register(ctx, "ada@example.com", "another1")
	is.True(errors.Is(err, entity.ErrUserAlreadyExists))

	is.NoErr(p.Logout(ctx))
	_, err = p.CurrentUser(ctx)
	is.True(errors.Is(err, entity.ErrNotAuthenticated))

	_, err = p.Login(ctx, "ada@example.com", "wrong-password")
	is.True(errors.Is(err, entity.ErrInvalidCredentials))

	again, err := p.Login(ctx, "ada@example.com", "secret1")
	is.NoErr(err)
	is.Equal(again.ID, user.ID)
}

func TestLocalProvider_Validation(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	p, _ := newTestProvider(t)

	_, err := p.Register(ctx, "not-an-email", "secret1")
	is.True(errors.Is(err, entity.ErrInvalidEmail))
	_, err = p.Register(ctx, "a@b.co", "123")
	is.True(errors.Is(err, entity.ErrWeakPassword))
}

func TestLocalProvider_SessionExpires(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	p, _ := newTestProvider(t)

	_, err := p.Register(ctx, "a@b.co", "secret1")
	is.NoErr(err)

	p.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = p.CurrentUser(ctx)
	is.True(errors.Is(err, entity.ErrNotAuthenticated))
}

func TestLocalProvider_WatchAuthState(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	p, _ := newTestProvider(t)

	ch, err := p.WatchAuthState(ctx)
	is.NoErr(err)
	is.Equal(<-ch, (*entity.User)(nil))

	user, err := p.Register(context.Background(), "a@b.co", "secret1")
	is.NoErr(err)
	signedIn := <-ch
	is.Equal(signedIn.ID, user.ID)

	is.NoErr(p.Logout(context.Background()))
	is.Equal(<-ch, (*entity.User)(nil))

	cancel()
	select {
	case _, ok := <-ch:
		is.True(!ok)
	case <-time.After(time.Second):
		t.Fatal("watch channel not closed")
	}
}

func nextAuthState(t *testing.T, ch <-chan *entity.User) *entity.User {
	t.Helper()
	select {
	case user := <-ch:
		return user
	case <-time.After(5 * time.Second):
		t.Fatal("no auth state change")
		return nil
	}
}

func TestLocalProvider_WatchAuthStateSeesOtherProcesses(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p, _ := newTestProvider(t)
	p.opts.SessionCheck = 10 * time.Millisecond

	user, err := p.Register(ctx, "a@b.co", "secret1")
	is.NoErr(err)

	ch, err := p.WatchAuthState(ctx)
	is.NoErr(err)
	is.Equal(nextAuthState(t, ch).ID, user.ID)

	// a second provider on the same files, like another terminal
	other := NewLocalProvider(p.opts, &recordingMailer{}, zerolog.Nop())
	is.NoErr(other.Logout(ctx))
	is.Equal(nextAuthState(t, ch), (*entity.User)(nil))

	_, err = other.Login(ctx, "a@b.co", "secret1")
	is.NoErr(err)
	is.Equal(nextAuthState(t, ch).ID, user.ID)

	is.NoErr(os.Remove(p.opts.SessionPath))
	is.Equal(nextAuthState(t, ch), (*entity.User)(nil))
}

func TestLocalProvider_WatchAuthStateSeesExpiry(t *testing.T) {
	is := is.New(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p, _ := newTestProvider(t)
	p.opts.SessionCheck = 10 * time.Millisecond

	var skew atomic.Int64
	p.now = func() time.Time { return time.Now().Add(time.Duration(skew.Load())) }

	user, err := p.Register(ctx, "a@b.co", "secret1")
	is.NoErr(err)
	ch, err := p.WatchAuthState(ctx)
	is.NoErr(err)
	is.Equal(nextAuthState(t, ch).ID, user.ID)

	skew.Store(int64(2 * time.Hour))
	is.Equal(nextAuthState(t, ch), (*entity.User)(nil))

	// nothing more is sent while the state holds
	select {
	case u := <-ch:
		t.Fatalf("unexpected auth state %v", u)
	case <-time.After(50 * time.Millisecond):
	}
}

var tokenPattern = regexp.MustCompile(`--token (\S+)`)

func TestLocalProvider_PasswordReset(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	p, mailer := newTestProvider(t)

	_, err := p.Register(ctx, "a@b.co", "secret1")
	is.NoErr(err)

	is.True(errors.Is(p.SendPasswordReset(ctx, "nobody@b.co"), entity.ErrUserNotFound))
	is.NoErr(p.SendPasswordReset(ctx, "a@b.co"))
	is.Equal(mailer.to, []string{"a@b.co"})

	match := tokenPattern.FindStringSubmatch(mailer.body[0])
	is.Equal(len(match), 2)
	token := match[1]

	is.True(errors.Is(p.ResetPassword(ctx, "garbage", "newsecret"), entity.ErrInvalidResetToken))
	is.NoErr(p.ResetPassword(ctx, token, "newsecret"))

	// single use
	is.True(errors.Is(p.ResetPassword(ctx, token, "othersecret"), entity.ErrInvalidResetToken))

	_, err = p.Login(ctx, "a@b.co", "secret1")
	is.True(errors.Is(err, entity.ErrInvalidCredentials))
	_, err = p.Login(ctx, "a@b.co", "newsecret")
	is.NoErr(err)
}

func TestLocalProvider_SessionTokenNotUsableForReset(t *testing.T) {
	is := is.New(t)
	ctx := context.Background()
	p, _ := newTestProvider(t)

	acc := &account{ID: "u1", Email: "a@b.co", PasswordHash: "x"}
	session, err := p.signToken(acc, purposeSession, time.Hour)
	is.NoErr(err)
	is.True(errors.Is(p.ResetPassword(ctx, session, "newsecret"), entity.ErrInvalidResetToken))
}

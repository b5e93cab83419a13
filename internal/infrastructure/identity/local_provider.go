package identity

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"mtasks/internal/domain/entity"
	"mtasks/pkg/filesystem"
)

const (
	issuer          = "mtasks"
	purposeSession  = "session"
	purposeReset    = "reset"
	minPasswordLen  = 6
	fingerprintSize = 16

	defaultSessionCheck = 5 * time.Second
)

// Mailer delivers password reset messages
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Options configures a LocalProvider
type Options struct {
	AccountsPath string
	SessionPath  string
	Secret       []byte
	SessionTTL   time.Duration
	ResetTTL     time.Duration
	// SessionCheck is how often watchers re-read the session file, so expiry
	// and sign-ins or sign-outs from other processes are noticed
	SessionCheck time.Duration
}

type claims struct {
	Email       string `json:"email"`
	Purpose     string `json:"purpose"`
	Fingerprint string `json:"pwf,omitempty"`
	jwt.RegisteredClaims
}

// LocalProvider keeps accounts in a local file and the signed-in session as
// a signed token next to it
type LocalProvider struct {
	opts     Options
	accounts *accountStore
	mailer   Mailer
	logger   zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	watchers map[chan *entity.User]string // last user ID sent, "" when signed out
}

// NewLocalProvider creates a new LocalProvider
func NewLocalProvider(opts Options, mailer Mailer, logger zerolog.Logger) *LocalProvider {
	if opts.SessionCheck <= 0 {
		opts.SessionCheck = defaultSessionCheck
	}
	return &LocalProvider{
		opts:     opts,
		accounts: &accountStore{path: opts.AccountsPath},
		mailer:   mailer,
		logger:   logger.With().Str("component", "identity").Logger(),
		now:      time.Now,
		watchers: make(map[chan *entity.User]string),
	}
}

// CurrentUser returns the user of a valid session
func (p *LocalProvider) CurrentUser(ctx context.Context) (*entity.User, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.currentUser()
}

func (p *LocalProvider) currentUser() (*entity.User, error) {
	data, err := os.ReadFile(p.opts.SessionPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, entity.ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	c, err := p.parseToken(strings.TrimSpace(string(data)), purposeSession)
	if err != nil {
		p.logger.Debug().Err(err).Msg("discarding invalid session")
		return nil, entity.ErrNotAuthenticated
	}

	acc, err := p.accounts.byID(c.Subject)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, entity.ErrNotAuthenticated
	}
	return toUser(acc), nil
}

// WatchAuthState emits the current user (nil when signed out) and then
// every change. Changes made by this provider are sent at once; the session
// file is also re-read every Options.SessionCheck to catch expiry and other
// processes. Only the latest state is kept for slow readers.
func (p *LocalProvider) WatchAuthState(ctx context.Context) (<-chan *entity.User, error) {
	ch := make(chan *entity.User, 1)

	p.mu.Lock()
	user, err := p.currentUser()
	if err != nil && !errors.Is(err, entity.ErrNotAuthenticated) {
		p.mu.Unlock()
		return nil, err
	}
	ch <- user
	p.watchers[ch] = userID(user)
	p.mu.Unlock()

	go p.recheck(ctx, ch)

	context.AfterFunc(ctx, func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.watchers, ch)
		close(ch)
	})
	return ch, nil
}

// recheck re-reads the session for one watcher until ctx is done
func (p *LocalProvider) recheck(ctx context.Context, ch chan *entity.User) {
	ticker := time.NewTicker(p.opts.SessionCheck)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		p.mu.Lock()
		last, watching := p.watchers[ch]
		if !watching {
			p.mu.Unlock()
			return
		}
		user, err := p.currentUser()
		switch {
		case err != nil && !errors.Is(err, entity.ErrNotAuthenticated):
			// unreadable is not signed out; try again next tick
			p.logger.Warn().Err(err).Msg("failed to re-check session")
		case userID(user) != last:
			p.logger.Debug().Str("user_id", userID(user)).Msg("session changed")
			p.send(ch, user)
		}
		p.mu.Unlock()
	}
}

// Register creates an account and signs it in
func (p *LocalProvider) Register(ctx context.Context, email, password string) (*entity.User, error) {
	email, err := normaliseEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPasswordLen {
		return nil, entity.ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	existing, err := p.accounts.byEmail(email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, entity.ErrUserAlreadyExists
	}

	acc := account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		CreatedAt:    p.now().UTC(),
	}
	if err := p.accounts.put(acc); err != nil {
		return nil, err
	}
	p.logger.Info().Str("user_id", acc.ID).Msg("account registered")

	if err := p.startSession(&acc); err != nil {
		return nil, err
	}
	return toUser(&acc), nil
}

// Login checks credentials and starts a session
func (p *LocalProvider) Login(ctx context.Context, email, password string) (*entity.User, error) {
	email, err := normaliseEmail(email)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	acc, err := p.accounts.byEmail(email)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, entity.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.PasswordHash), []byte(password)); err != nil {
		return nil, entity.ErrInvalidCredentials
	}

	if err := p.startSession(acc); err != nil {
		return nil, err
	}
	return toUser(acc), nil
}

// Logout ends the session. Logging out while signed out is not an error.
func (p *LocalProvider) Logout(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.Remove(p.opts.SessionPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove session: %w", err)
	}
	p.broadcast(nil)
	return nil
}

// SendPasswordReset mails a single-use reset token to the account's address
func (p *LocalProvider) SendPasswordReset(ctx context.Context, email string) error {
	email, err := normaliseEmail(email)
	if err != nil {
		return err
	}

	p.mu.Lock()
	acc, err := p.accounts.byEmail(email)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if acc == nil {
		return entity.ErrUserNotFound
	}

	token, err := p.signToken(acc, purposeReset, p.opts.ResetTTL)
	if err != nil {
		return err
	}

	body := fmt.Sprintf("A password reset was requested for %s.\n\n"+
		"Run the following within %s to choose a new password:\n\n"+
		"    mtasks auth reset-password --token %s\n\n"+
		"If you did not ask for this, ignore this message.\n",
		acc.Email, p.opts.ResetTTL, token)

	if err := p.mailer.Send(ctx, acc.Email, "Reset your mtasks password", body); err != nil {
		return err
	}
	p.logger.Info().Str("user_id", acc.ID).Msg("password reset sent")
	return nil
}

// ResetPassword sets a new password using a reset token. The token stops
// working once the password has changed.
func (p *LocalProvider) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return entity.ErrWeakPassword
	}

	c, err := p.parseToken(token, purposeReset)
	if err != nil {
		return entity.ErrInvalidResetToken
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	acc, err := p.accounts.byID(c.Subject)
	if err != nil {
		return err
	}
	if acc == nil || c.Fingerprint != fingerprint(acc.PasswordHash) {
		return entity.ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	acc.PasswordHash = string(hash)
	if err := p.accounts.put(*acc); err != nil {
		return err
	}
	p.logger.Info().Str("user_id", acc.ID).Msg("password reset")
	return nil
}

func (p *LocalProvider) startSession(acc *account) error {
	token, err := p.signToken(acc, purposeSession, p.opts.SessionTTL)
	if err != nil {
		return err
	}
	if err := filesystem.SafeWrite(p.opts.SessionPath, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write session: %w", err)
	}
	p.broadcast(toUser(acc))
	return nil
}

func (p *LocalProvider) signToken(acc *account, purpose string, ttl time.Duration) (string, error) {
	now := p.now()
	c := claims{
		Email:   acc.Email,
		Purpose: purpose,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   acc.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	if purpose == purposeReset {
		c.Fingerprint = fingerprint(acc.PasswordHash)
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(p.opts.Secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (p *LocalProvider) parseToken(token, purpose string) (*claims, error) {
	c := &claims{}
	_, err := jwt.ParseWithClaims(token, c, func(t *jwt.Token) (any, error) {
		return p.opts.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, err
	}
	if c.Purpose != purpose {
		return nil, fmt.Errorf("token purpose %q, want %q", c.Purpose, purpose)
	}
	return c, nil
}

// broadcast hands user to every watcher. Callers hold p.mu.
func (p *LocalProvider) broadcast(user *entity.User) {
	for ch := range p.watchers {
		p.send(ch, user)
	}
}

// send replaces any unread state of one watcher. Callers hold p.mu.
func (p *LocalProvider) send(ch chan *entity.User, user *entity.User) {
	select {
	case <-ch:
	default:
	}
	ch <- user
	p.watchers[ch] = userID(user)
}

func userID(user *entity.User) string {
	if user == nil {
		return ""
	}
	return user.ID
}

func normaliseEmail(email string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return "", entity.ErrInvalidEmail
	}
	return strings.ToLower(addr.Address), nil
}

func fingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:])[:fingerprintSize]
}

func toUser(acc *account) *entity.User {
	return &entity.User{ID: acc.ID, Email: acc.Email, CreatedAt: acc.CreatedAt}
}

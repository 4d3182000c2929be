package bot

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	telebot "gopkg.in/telebot.v3"

	"github.com/addis-listings/dalal-bot/internal/domain"
	"github.com/addis-listings/dalal-bot/internal/i18n"
	"github.com/addis-listings/dalal-bot/internal/user"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) FindByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	args := m.Called(ctx, telegramID)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *mockUserRepo) AddRole(ctx context.Context, telegramID int64, role domain.Role) error {
	return m.Called(ctx, telegramID, role).Error(0)
}

func (m *mockUserRepo) SetLanguage(ctx context.Context, telegramID int64, language string) error {
	return m.Called(ctx, telegramID, language).Error(0)
}

func (m *mockUserRepo) UpdateLastActive(ctx context.Context, telegramID int64, at time.Time) error {
	return m.Called(ctx, telegramID, at).Error(0)
}

// fakeContext implements the handful of telebot.Context methods the
// command handlers touch. Everything else panics via the embedded nil
// interface, which is what we want in a test.
type fakeContext struct {
	telebot.Context
	values map[string]any
	cb     *telebot.Callback
	sent   []string
}

func newFakeContext(u *domain.User, manager *i18n.Manager) *fakeContext {
	return &fakeContext{
		values: map[string]any{
			ctxKeyUser:       u,
			ctxKeyTranslator: manager.Translator(u.Language),
		},
	}
}

func (c *fakeContext) Get(key string) any            { return c.values[key] }
func (c *fakeContext) Set(key string, v any)         { c.values[key] = v }
func (c *fakeContext) Callback() *telebot.Callback   { return c.cb }
func (c *fakeContext) Sender() *telebot.User         { return &telebot.User{ID: 42} }
func (c *fakeContext) Send(what any, _ ...any) error {
	if s, ok := what.(string); ok {
		c.sent = append(c.sent, s)
	}
	return nil
}

func botTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCommandTestBot(t *testing.T) (*Bot, *mockUserRepo, *i18n.Manager) {
	t.Helper()

	manager, err := i18n.LoadFromDir("../i18n/locales", "en")
	require.NoError(t, err)

	repo := &mockUserRepo{}
	b := &Bot{
		log:         botTestLogger(),
		userService: user.NewService(repo, "en", botTestLogger()),
		i18n:        manager,
	}

	return b, repo, manager
}

func TestHandleStartOffersRoleChoiceToBuyers(t *testing.T) {
	b, _, manager := newCommandTestBot(t)

	u := &domain.User{TelegramID: 42, Roles: []domain.Role{domain.RoleBuyer}, Language: "en"}
	c := newFakeContext(u, manager)

	require.NoError(t, b.handleStart(c))

	require.Len(t, c.sent, 1)
	assert.Equal(t, manager.Translate("en", "role.prompt", nil), c.sent[0])
}

func TestHandleStartShowsMenuToBrokers(t *testing.T) {
	b, _, manager := newCommandTestBot(t)

	u := &domain.User{TelegramID: 42, Roles: []domain.Role{domain.RoleBuyer, domain.RoleBroker}, Language: "en"}
	c := newFakeContext(u, manager)

	require.NoError(t, b.handleStart(c))

	require.Len(t, c.sent, 1)
	assert.Equal(t, manager.Translate("en", "flow.reset", nil), c.sent[0])
}

func TestHandleSetRoleGrantsBroker(t *testing.T) {
	b, repo, manager := newCommandTestBot(t)

	repo.On("AddRole", mock.Anything, int64(42), domain.RoleBroker).Return(nil).Once()

	u := &domain.User{TelegramID: 42, Roles: []domain.Role{domain.RoleBuyer}, Language: "en"}
	c := newFakeContext(u, manager)
	c.cb = &telebot.Callback{Data: "role:broker"}

	require.NoError(t, b.handleSetRole(c))

	assert.True(t, u.IsBroker())
	require.Len(t, c.sent, 1)
	assert.Equal(t, manager.Translate("en", "role.broker_granted", nil), c.sent[0])

	repo.AssertExpectations(t)
}

func TestHandleSetRoleBuyerChoiceLeavesRolesAlone(t *testing.T) {
	b, repo, manager := newCommandTestBot(t)

	u := &domain.User{TelegramID: 42, Roles: []domain.Role{domain.RoleBuyer}, Language: "en"}
	c := newFakeContext(u, manager)
	c.cb = &telebot.Callback{Data: "role:buyer"}

	require.NoError(t, b.handleSetRole(c))

	assert.False(t, u.IsBroker())
	repo.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleSetRoleIsIdempotentForBrokers(t *testing.T) {
	b, repo, manager := newCommandTestBot(t)

	u := &domain.User{TelegramID: 42, Roles: []domain.Role{domain.RoleBuyer, domain.RoleBroker}, Language: "en"}
	c := newFakeContext(u, manager)
	c.cb = &telebot.Callback{Data: "role:broker"}

	require.NoError(t, b.handleSetRole(c))

	assert.Equal(t, []domain.Role{domain.RoleBuyer, domain.RoleBroker}, u.Roles)
	repo.AssertNotCalled(t, "AddRole", mock.Anything, mock.Anything, mock.Anything)
}

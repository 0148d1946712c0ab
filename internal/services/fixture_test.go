package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/skillswap-backend/internal/data/aggregates"
	"github.com/yungbote/skillswap-backend/internal/data/repos"
	"github.com/yungbote/skillswap-backend/internal/data/repos/testutil"
	types "github.com/yungbote/skillswap-backend/internal/domain"
	"github.com/yungbote/skillswap-backend/internal/domain/ledger"
	"github.com/yungbote/skillswap-backend/internal/platform/ctxutil"
	"github.com/yungbote/skillswap-backend/internal/platform/dbctx"
	"github.com/yungbote/skillswap-backend/internal/platform/logger"
	"github.com/yungbote/skillswap-backend/internal/platform/payments"
	"github.com/yungbote/skillswap-backend/internal/platform/rtc"
)

type fixture struct {
	ctx     context.Context
	db      *gorm.DB
	log     *logger.Logger
	users   repos.UserRepo
	tokens  repos.UserTokenRepo
	skills  repos.SkillRepo
	uskills repos.UserSkillRepo
	sess    repos.SessionRepo
	txs     repos.TokenTransactionRepo
	ratings repos.RatingRepo
	econ    ledger.Economy
	base    aggregates.BaseDeps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &fixture{
		ctx:     context.Background(),
		db:      db,
		log:     log,
		users:   repos.NewUserRepo(db, log),
		tokens:  repos.NewUserTokenRepo(db, log),
		skills:  repos.NewSkillRepo(db, log),
		uskills: repos.NewUserSkillRepo(db, log),
		sess:    repos.NewSessionRepo(db, log),
		txs:     repos.NewTokenTransactionRepo(db, log),
		ratings: repos.NewRatingRepo(db, log),
		econ:    ledger.DefaultEconomy(),
		base:    aggregates.BaseDeps{DB: db, Log: log},
	}
}

func (f *fixture) authService() AuthService {
	accounts := aggregates.NewAccountAggregate(aggregates.AccountDeps{Base: f.base, Users: f.users, Txs: f.txs, Economy: f.econ})
	return NewAuthService(f.db, f.log, f.users, f.tokens, accounts, nil, AuthConfig{
		JWTSecret:     "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     time.Hour,
		RefreshTTL:    24 * time.Hour,
	})
}

func (f *fixture) tokenService(gw payments.Gateway, n TokenNotifier) TokenService {
	agg := aggregates.NewLedgerAggregate(aggregates.LedgerDeps{Base: f.base, Users: f.users, Txs: f.txs, Economy: f.econ})
	return NewTokenService(f.log, f.users, f.txs, agg, gw, f.econ, n, nil)
}

func (f *fixture) sessionService(video rtc.TokenIssuer, n *recordingNotifier) SessionService {
	agg := aggregates.NewSessionAggregate(aggregates.SessionDeps{
		Base: f.base, Users: f.users, Skills: f.skills, Sessions: f.sess, Txs: f.txs, Economy: f.econ,
	})
	return NewSessionService(f.log, f.sess, agg, video, n, n, nil)
}

func (f *fixture) skillService() SkillService {
	catalog := aggregates.NewCatalogAggregate(aggregates.CatalogDeps{Base: f.base, Skills: f.skills, UserSkills: f.uskills})
	return NewSkillService(f.log, f.skills, f.uskills, f.users, catalog)
}

func (f *fixture) ratingService(n SessionNotifier) RatingService {
	agg := aggregates.NewRatingAggregate(aggregates.RatingDeps{Base: f.base, Users: f.users, Sessions: f.sess, Ratings: f.ratings})
	return NewRatingService(f.log, f.ratings, agg, n)
}

func (f *fixture) reconciler() ReconciliationService {
	return NewReconciliationService(f.log, f.users, f.skills, f.uskills, f.sess, f.ratings, nil)
}

func (f *fixture) user(t *testing.T, balance int64) *types.User {
	t.Helper()
	return testutil.SeedUser(t, f.ctx, f.db, uuid.NewString()+"@example.com", balance)
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *types.User {
	t.Helper()
	u, err := f.users.GetByID(dbctx.Context{Ctx: f.ctx}, id)
	if err != nil || u == nil {
		t.Fatalf("reload user %s: %v", id, err)
	}
	return u
}

func ledgerFilterAll() repos.TransactionListFilter {
	return repos.TransactionListFilter{Limit: 100}
}

func asUser(ctx context.Context, u *types.User) context.Context {
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: u.ID, Role: string(u.Role)})
}

type recordingNotifier struct {
	mu       sync.Mutex
	events   []string
	balances map[uuid.UUID][]int64
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{balances: map[uuid.UUID][]int64{}}
}

func (r *recordingNotifier) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recordingNotifier) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

func (r *recordingNotifier) SessionScheduled(context.Context, *types.Session) { r.add("scheduled") }
func (r *recordingNotifier) SessionStarted(context.Context, *types.Session)   { r.add("started") }
func (r *recordingNotifier) SessionCompleted(context.Context, *types.Session, int) {
	r.add("completed")
}
func (r *recordingNotifier) SessionCancelled(context.Context, *types.Session) { r.add("cancelled") }
func (r *recordingNotifier) SessionRated(context.Context, *types.Rating)      { r.add("rated") }
func (r *recordingNotifier) BalanceChanged(_ context.Context, userID uuid.UUID, tx *types.TokenTransaction) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.balances[userID] = append(r.balances[userID], tx.BalanceAfter)
}

type fakeGateway struct {
	mu        sync.Mutex
	requests  []payments.PaymentIntentRequest
	createErr error
	event     *payments.WebhookEvent
	parseErr  error
}

func (g *fakeGateway) CreatePaymentIntent(_ context.Context, req payments.PaymentIntentRequest) (*payments.PaymentIntent, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.createErr != nil {
		return nil, g.createErr
	}
	g.requests = append(g.requests, req)
	return &payments.PaymentIntent{
		ID:           "pi_test",
		ClientSecret: "pi_test_secret",
		AmountCents:  req.AmountCents,
		Currency:     req.Currency,
		Metadata:     req.Metadata,
	}, nil
}

func (g *fakeGateway) ParseWebhook([]byte, string) (*payments.WebhookEvent, error) {
	if g.parseErr != nil {
		return nil, g.parseErr
	}
	return g.event, nil
}

type fakeIssuer struct {
	token string
	err   error
}

func (i fakeIssuer) Issue(string, uuid.UUID) (string, error) { return i.token, i.err }
func (i fakeIssuer) AppID() string                           { return "app-test" }

func tomorrow() time.Time {
	return time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
}

package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ahmetkoprulu/rtrp/arcade/internal/api"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/expense"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/game"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/services/settlement"
	"github.com/ahmetkoprulu/rtrp/arcade/internal/store"
	"github.com/ahmetkoprulu/rtrp/arcade/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	mu       sync.Mutex
	calls    []string
	events   []models.SettlementEvent
	handlers map[string]http.HandlerFunc
}

func newBackend(t *testing.T) (*backend, *httptest.Server) {
	b := &backend{handlers: map[string]http.HandlerFunc{
		"/auth/login": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"access_token": "provider-token"})
		},
		"/provider/Snake_Game": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"approved": true, "event_id": "evt-1"})
		},
		"/expense/intent.create": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "approval_link": "http://localhost:3000/overlay?intent_id=int-1", "expires_in": 600})
		},
		"/register-event": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
		},
	}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls = append(b.calls, r.Method+" "+r.URL.Path)
		if r.URL.Path == "/register-event" {
			var event models.SettlementEvent
			_ = json.NewDecoder(r.Body).Decode(&event)
			b.events = append(b.events, event)
		}
		h, ok := b.handlers[r.URL.Path]
		b.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		h(w, r)
	}))
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *backend) handle(path string, h http.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[path] = h
}

func (b *backend) callLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *backend) registered() []models.SettlementEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.SettlementEvent(nil), b.events...)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type fakeOverlay struct {
	status  models.FeeStatus
	opened  chan struct{}
	release chan struct{}
}

func (f *fakeOverlay) Loaded(ctx context.Context) (bool, error)                    { return true, nil }
func (f *fakeOverlay) Load(ctx context.Context, scriptURL string) error            { return nil }
func (f *fakeOverlay) Init(ctx context.Context, options expense.InitOptions) error { return nil }

func (f *fakeOverlay) Open(ctx context.Context, approvalLink string) (models.FeeStatus, error) {
	if f.opened != nil {
		close(f.opened)
	}
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.status, nil
}

type fakeSDK struct {
	result *models.FeeResult
	calls  int
}

func (f *fakeSDK) RequestExpense(ctx context.Context, request models.FeeRequest) (*models.FeeResult, error) {
	f.calls++
	return f.result, nil
}

type fakePublisher struct {
	mu       sync.Mutex
	messages []*models.SettlementMessage
}

func (f *fakePublisher) Publish(ctx context.Context, message *models.SettlementMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

type harness struct {
	backend   *backend
	sessions  store.SessionStore
	api       *api.ApiService
	identity  *IdentityService
	reporter  *SettlementReporter
	journal   *settlement.MemoryJournal
	publisher *fakePublisher
	cfg       *models.Config
}

func newHarness(t *testing.T, variant models.GameVariant) *harness {
	b, srv := newBackend(t)
	cfg := &models.Config{
		ApiUrl:          srv.URL,
		FrontendBaseUrl: "https://fe.example.com",
		ProviderID:      "snake_game_provider",
		ProviderApiKey:  "secret",
		GameName:        "Snake_Game",
		EventName:       "Snake_Game",
		TokenAddress:    "0xtoken",
		EntryFee:        5,
		IntentExpiresIn: 600,
		Variant:         variant,
		RequestTimeout:  2 * time.Second,
	}

	sessions := store.NewMemorySessionStore(variant)
	apiService := api.NewApiService(cfg, sessions)
	t.Cleanup(apiService.Close)

	journal := settlement.NewMemoryJournal()
	publisher := &fakePublisher{}

	return &harness{
		backend:   b,
		sessions:  sessions,
		api:       apiService,
		identity:  NewIdentityService(sessions, apiService),
		reporter:  NewSettlementReporter(apiService.EventService, journal, publisher, cfg),
		journal:   journal,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (h *harness) login(t *testing.T, userID string) {
	require.NoError(t, store.SaveIdentity(h.sessions, models.UserIdentity{UserID: userID, UserToken: "ut"}))
}

func (h *harness) overlayProvider(overlay expense.Overlay) expense.ExpenseProvider {
	return expense.NewOverlayProvider(h.api.ExpenseService, overlay, nil, expense.OverlayConfig{
		ApiBase:         h.cfg.ApiUrl,
		FrontendBaseUrl: h.cfg.FrontendBaseUrl,
		ExpiresIn:       h.cfg.IntentExpiresIn,
	})
}

func (h *harness) tapService(fees expense.ExpenseProvider, rng game.Rand) *TapService {
	entry := NewEntryService(h.identity, h.api.ProviderService, fees, h.reporter, h.cfg, TapFeeDescription)
	return NewTapService(entry, h.reporter, game.NewTapSession(rng))
}

func (h *harness) snakeService(fees expense.ExpenseProvider, sched game.Scheduler, rng game.Rand) *SnakeService {
	entry := NewEntryService(h.identity, h.api.ProviderService, fees, h.reporter, h.cfg, SnakeFeeDescription)
	return NewSnakeService(entry, h.reporter, game.NewSnake(sched, rng), time.Second)
}

// noCrash never crashes a tap and always places food at the origin.
type noCrash struct{}

func (noCrash) Float64() float64 { return 0.5 }
func (noCrash) IntN(int) int     { return 0 }

func TestTapService_MissingTokenLogsInOnceBeforeIntent(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.login(t, "u1")
	svc := h.tapService(h.overlayProvider(&fakeOverlay{status: models.FeeStatusApproved}), noCrash{})

	view, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.TapPhasePlaying, view.Phase)
	assert.Equal(t, "evt-1", view.EventID)
	assert.Equal(t, []string{
		"POST /auth/login",
		"GET /provider/Snake_Game",
		"POST /expense/intent.create",
	}, h.backend.callLog())
	assert.Empty(t, h.backend.registered(), "the intent flow must not register EVENT_LOSS itself")
}

func TestTapService_ApprovalDeniedNeverCharges(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.login(t, "u1")
	h.backend.handle("/provider/Snake_Game", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"approved": false})
	})
	svc := h.tapService(h.overlayProvider(&fakeOverlay{status: models.FeeStatusApproved}), noCrash{})

	view, err := svc.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindApprovalDenied, KindOf(err))
	assert.Equal(t, "Provider not approved", err.Error())
	assert.Equal(t, game.TapPhaseReady, view.Phase)
	assert.NotContains(t, h.backend.callLog(), "POST /expense/intent.create")
}

func TestTapService_RequiresIdentity(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	svc := h.tapService(h.overlayProvider(&fakeOverlay{status: models.FeeStatusApproved}), noCrash{})

	_, err := svc.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Equal(t, "Please log in first", err.Error())
	assert.Empty(t, h.backend.callLog())
}

func TestTapService_PaymentDenied(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.login(t, "u1")
	svc := h.tapService(h.overlayProvider(&fakeOverlay{status: models.FeeStatusCancelled}), noCrash{})

	view, err := svc.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindPaymentDenied, KindOf(err))
	assert.Equal(t, "Expense not approved", err.Error())
	assert.Equal(t, game.TapPhaseReady, view.Phase)
}

func TestTapService_ZeroScoreClaimStillReportsGain(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.login(t, "u1")
	svc := h.tapService(h.overlayProvider(&fakeOverlay{status: models.FeeStatusApproved}), noCrash{})

	_, err := svc.Start(context.Background())
	require.NoError(t, err)

	view, err := svc.Claim(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.TapPhaseClaimed, view.Phase)

	events := h.backend.registered()
	require.Len(t, events, 1)
	assert.Equal(t, models.SettlementEvent{
		UserID: "u1", EventName: "Snake_Game", EventType: models.EventTypeGain, Amount: 0, TokenAddress: "0xtoken",
	}, events[0])

	require.Len(t, h.publisher.messages, 1)
	assert.Equal(t, "evt-1", h.publisher.messages[0].ApprovalEventID)
}

func TestTapService_ClaimReportsScore(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.login(t, "u1")
	svc := h.tapService(h.overlayProvider(&fakeOverlay{status: models.FeeStatusApproved}), noCrash{})

	_, err := svc.Start(context.Background())
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err := svc.Tap()
		require.NoError(t, err)
	}

	_, err = svc.Claim(context.Background())
	require.NoError(t, err)
	events := h.backend.registered()
	require.Len(t, events, 1)
	assert.Equal(t, 4, events[0].Amount)

	_, err = svc.Claim(context.Background())
	require.ErrorIs(t, err, game.ErrNotPlaying)
	assert.Len(t, h.backend.registered(), 1)
}

func TestTapService_IntentAndSettlementEventNames(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.cfg.EventName = "Xplosion_Casino"
	h.cfg.IntentEventName = "Snake_Game"
	h.reporter = NewSettlementReporter(h.api.EventService, h.journal, h.publisher, h.cfg)
	h.login(t, "u1")

	intents := make(chan models.IntentRequest, 1)
	h.backend.handle("/expense/intent.create", func(w http.ResponseWriter, r *http.Request) {
		var request models.IntentRequest
		_ = json.NewDecoder(r.Body).Decode(&request)
		intents <- request
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "approval_link": "http://localhost:3000/overlay?intent_id=int-1"})
	})
	svc := h.tapService(h.overlayProvider(&fakeOverlay{status: models.FeeStatusApproved}), noCrash{})

	_, err := svc.Start(context.Background())
	require.NoError(t, err)
	_, err = svc.Tap()
	require.NoError(t, err)
	_, err = svc.Claim(context.Background())
	require.NoError(t, err)

	require.Len(t, intents, 1)
	assert.Equal(t, "Snake_Game", (<-intents).EventName)
	events := h.backend.registered()
	require.Len(t, events, 1)
	assert.Equal(t, "Xplosion_Casino", events[0].EventName)
}

func TestTapService_SecondAuthFailureOnClaimIsSurfaced(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.login(t, "u1")
	svc := h.tapService(h.overlayProvider(&fakeOverlay{status: models.FeeStatusApproved}), noCrash{})

	_, err := svc.Start(context.Background())
	require.NoError(t, err)

	h.backend.handle("/register-event", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "Invalid token"})
	})

	view, err := svc.Claim(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindAuthFailure, KindOf(err))
	assert.Equal(t, game.TapPhasePlaying, view.Phase)

	logins := 0
	for _, c := range h.backend.callLog() {
		if c == "POST /auth/login" {
			logins++
		}
	}
	assert.Equal(t, 2, logins, "one login on start, exactly one re-login on claim")
	assert.Len(t, h.backend.registered(), 2)

	records, err := h.journal.ListByUser(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.SettlementStatusFailed, records[0].Status)
}

func TestTapService_ApprovalTimeout(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.login(t, "u1")
	h.backend.handle("/provider/Snake_Game", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	svc := h.tapService(h.overlayProvider(&fakeOverlay{status: models.FeeStatusApproved}), noCrash{})

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	view, err := svc.Start(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, KindNetworkOrServer, KindOf(err))
	assert.Equal(t, game.TapPhaseReady, view.Phase)
	assert.Less(t, time.Since(start), time.Second)
}

func TestTapService_OverlappingStartIsBusy(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.login(t, "u1")
	overlay := &fakeOverlay{status: models.FeeStatusApproved, opened: make(chan struct{}), release: make(chan struct{})}
	svc := h.tapService(h.overlayProvider(overlay), noCrash{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.Start(context.Background())
		done <- err
	}()

	<-overlay.opened
	_, err := svc.Start(context.Background())
	require.ErrorIs(t, err, ErrBusy)

	close(overlay.release)
	require.NoError(t, <-done)
	assert.Equal(t, game.TapPhasePlaying, svc.State().Phase)
}

func TestSnakeService_DirectFlowRegistersLossThenGain(t *testing.T) {
	h := newHarness(t, models.GameVariantSnake)
	h.login(t, "u1")
	sdk := &fakeSDK{result: &models.FeeResult{Status: models.FeeStatusApproved, IntentID: "int-7"}}
	sched := game.NewManualScheduler()
	svc := h.snakeService(expense.NewDirectProvider(sdk), sched, noCrash{})

	view, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.Equal(t, game.SnakePhasePlaying, view.Phase)
	assert.Equal(t, 1, sdk.calls)

	events := h.backend.registered()
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTypeLoss, events[0].EventType)
	assert.Equal(t, 5, events[0].Amount)
	assert.Equal(t, "int-7", events[0].ExpenseIntentID)

	// Food is always placed at the first free cell of row 0, so running
	// left along that row eats four times before the snake turns into itself.
	steps := []struct {
		direction string
		ticks     int
	}{
		{"up", 10},
		{"left", 46},
	}
	for _, step := range steps {
		_, err = svc.SetDirection(step.direction)
		require.NoError(t, err)
		sched.Tick(step.ticks)
	}
	require.Equal(t, 4, svc.State().Score)
	require.Equal(t, game.SnakePhasePlaying, svc.State().Phase)

	for _, d := range []string{"down", "right", "up"} {
		_, err = svc.SetDirection(d)
		require.NoError(t, err)
		sched.Tick(1)
	}

	view = svc.State()
	require.Equal(t, game.SnakePhaseGameOver, view.Phase)
	assert.Equal(t, 0, sched.Active())
	assert.Equal(t, view.Score*game.EarningsPerFood, view.Winnings)

	events = h.backend.registered()
	require.Len(t, events, 2)
	assert.Equal(t, models.EventTypeGain, events[1].EventType)
	assert.Equal(t, view.Score, events[1].Amount)

	sched.Tick(3)
	assert.Len(t, h.backend.registered(), 2)
}

func TestSnakeService_FailedLossNeverStarts(t *testing.T) {
	h := newHarness(t, models.GameVariantSnake)
	h.login(t, "u1")
	h.backend.handle("/register-event", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Insufficient balance"})
	})
	sched := game.NewManualScheduler()
	sdk := &fakeSDK{result: &models.FeeResult{Status: models.FeeStatusApproved, IntentID: "int-8"}}
	svc := h.snakeService(expense.NewDirectProvider(sdk), sched, noCrash{})

	view, err := svc.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Insufficient balance", err.Error())
	assert.Equal(t, game.SnakePhasePayment, view.Phase)
	assert.Equal(t, 0, sched.Active())
}

func TestSnakeService_MissingSDK(t *testing.T) {
	h := newHarness(t, models.GameVariantSnake)
	h.login(t, "u1")
	svc := h.snakeService(expense.NewDirectProvider(nil), game.NewManualScheduler(), noCrash{})

	_, err := svc.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, "SDK not loaded", err.Error())
	assert.Empty(t, h.backend.registered())
}

func TestSnakeService_ZeroScoreSkipsGain(t *testing.T) {
	h := newHarness(t, models.GameVariantSnake)
	h.login(t, "u1")
	sdk := &fakeSDK{result: &models.FeeResult{Status: models.FeeStatusApproved}}
	svc := h.snakeService(expense.NewDirectProvider(sdk), game.NewManualScheduler(), noCrash{})

	_, err := svc.Start(context.Background())
	require.NoError(t, err)

	svc.onGameOver(0)
	assert.Len(t, h.backend.registered(), 1)

	view := svc.Reset()
	assert.Equal(t, game.SnakePhasePayment, view.Phase)
	assert.Empty(t, view.EventID)
}

func TestSettlementReporter_UnknownOutcomeIsJournalled(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.backend.handle("/register-event", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	_, err := h.api.AuthService.Login(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = h.reporter.Report(ctx, Settlement{UserID: "u1", EventType: models.EventTypeGain, Amount: 3})
	require.Error(t, err)
	assert.True(t, errors.Is(err, api.ErrOutcomeUnknown))
	assert.Equal(t, KindNetworkOrServer, KindOf(err))

	records, err := h.journal.ListByUser(context.Background(), "u1", 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.SettlementStatusUnknown, records[0].Status)
	assert.Empty(t, h.publisher.messages)
}

func TestIdentityService(t *testing.T) {
	h := newHarness(t, models.GameVariantTapBox)
	h.backend.handle("/profile/request-email", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	h.backend.handle("/profile/verify-email-only", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "message": "Invalid code"})
	})
	h.backend.handle("/get-user-id", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user_id": "wallet-user"})
	})
	ctx := context.Background()

	err := h.identity.RequestCode(ctx, " ")
	assert.Equal(t, KindValidation, KindOf(err))
	_, err = h.identity.VerifyCode(ctx, "a@b.c", "")
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Empty(t, h.backend.callLog())

	require.NoError(t, h.identity.RequestCode(ctx, "a@b.c"))

	_, err = h.identity.VerifyCode(ctx, "a@b.c", "000000")
	require.Error(t, err)
	assert.Equal(t, "Invalid code", err.Error())

	_, err = h.identity.Identity()
	assert.Equal(t, KindValidation, KindOf(err))

	identity, err := h.identity.ResolveWallet(ctx, "0xABC")
	require.NoError(t, err)
	assert.Equal(t, "wallet-user", identity.UserID)

	current, err := h.identity.Identity()
	require.NoError(t, err)
	assert.Equal(t, "wallet-user", current.UserID)

	require.NoError(t, h.identity.Logout())
	_, err = h.identity.Identity()
	assert.Error(t, err)
}

package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ManuelReschke/SaturnGames/app/models"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/payments"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/supabase"
)

const testWebhookSecret = "whsec_test"

// memoryStore implements payments.Store in memory for handler tests.
type memoryStore struct {
	user    *supabase.AuthUser
	userErr error
	games   map[string]*models.Game
	grants  map[string]*models.AccessGrant // keyed user_id|game_id
	seen    map[string]bool
	failAll bool

	reads, writes int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		user:   &supabase.AuthUser{ID: "user-1", Email: "player@example.com"},
		games:  map[string]*models.Game{},
		grants: map[string]*models.AccessGrant{},
		seen:   map[string]bool{},
	}
}

func (m *memoryStore) GetUser(ctx context.Context, accessToken string) (*supabase.AuthUser, error) {
	if m.userErr != nil {
		return nil, m.userErr
	}
	return m.user, nil
}

func (m *memoryStore) GetGame(ctx context.Context, gameID string) (*models.Game, error) {
	m.reads++
	game, ok := m.games[gameID]
	if !ok {
		return nil, supabase.ErrNoRows
	}
	return game, nil
}

func (m *memoryStore) FindAccessGrant(ctx context.Context, userID, gameID string) (*models.AccessGrant, error) {
	m.reads++
	if m.failAll {
		return nil, fmt.Errorf("store down")
	}
	grant, ok := m.grants[userID+"|"+gameID]
	if !ok {
		return nil, supabase.ErrNoRows
	}
	return grant, nil
}

func (m *memoryStore) InsertAccessGrant(ctx context.Context, grant *models.AccessGrant) error {
	m.writes++
	m.grants[grant.UserID+"|"+grant.GameID] = grant
	return nil
}

func (m *memoryStore) ExtendAccessGrant(ctx context.Context, grantID string, expiration time.Time, paymentID string) error {
	m.writes++
	return nil
}

func (m *memoryStore) InsertPaymentRecord(ctx context.Context, record *models.PaymentRecord) error {
	m.writes++
	m.seen[record.PaymentSessionID] = true
	return nil
}

func (m *memoryStore) HasPaymentRecord(ctx context.Context, paymentSessionID string) (bool, error) {
	m.reads++
	return m.seen[paymentSessionID], nil
}

type stubSessionCreator struct {
	sessionID string
	err       error
}

func (s *stubSessionCreator) CreateCheckoutSession(ctx context.Context, user *supabase.AuthUser, game *models.Game) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.sessionID, nil
}

func newWebhookApp(store *memoryStore) *fiber.App {
	svc := payments.NewService(store, &stubSessionCreator{sessionID: "cs_test_1"}, nil)
	InitializeWebhookController(svc, testWebhookSecret)

	app := fiber.New()
	app.Post("/webhook", HandleStripeWebhook)
	return app
}

func completedEventBody(sessionID string, metadata map[string]string) []byte {
	session := map[string]interface{}{
		"id":                   sessionID,
		"payment_intent":       "pi_test_1",
		"amount_total":         1999,
		"currency":             "usd",
		"payment_method_types": []string{"card"},
		"payment_status":       "paid",
		"metadata":             metadata,
	}
	body, _ := json.Marshal(map[string]interface{}{
		"type": "checkout.session.completed",
		"data": map[string]interface{}{"object": session},
	})
	return body
}

func signedWebhookRequest(body []byte, secret string) *http.Request {
	timestamp := "1700000000"
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp + "."))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("stripe-signature", fmt.Sprintf("t=%s,v1=%s", timestamp, sig))
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestHandleStripeWebhook_CompletedEvent(t *testing.T) {
	store := newMemoryStore()
	app := newWebhookApp(store)

	body := completedEventBody("cs_test_1", map[string]string{"user_id": "user-1", "game_id": "game-1"})
	resp, err := app.Test(signedWebhookRequest(body, testWebhookSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["received"])

	grant := store.grants["user-1|game-1"]
	require.NotNil(t, grant)
	assert.True(t, grant.IsActive)
	assert.Equal(t, "cs_test_1", grant.PaymentID)
	assert.True(t, store.seen["cs_test_1"])
}

func TestHandleStripeWebhook_IgnoredEventType(t *testing.T) {
	store := newMemoryStore()
	app := newWebhookApp(store)

	body := []byte(`{"type":"invoice.paid","data":{"object":{"id":"in_1"}}}`)
	resp, err := app.Test(signedWebhookRequest(body, testWebhookSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["received"])
	assert.Zero(t, store.reads)
	assert.Zero(t, store.writes)
}

func TestHandleStripeWebhook_InvalidSignature(t *testing.T) {
	store := newMemoryStore()
	app := newWebhookApp(store)

	body := completedEventBody("cs_test_1", map[string]string{"user_id": "user-1", "game_id": "game-1"})
	req := signedWebhookRequest(body, "whsec_other")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, store.writes)
}

func TestHandleStripeWebhook_MissingSignatureHeader(t *testing.T) {
	store := newMemoryStore()
	app := newWebhookApp(store)

	body := completedEventBody("cs_test_1", nil)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleStripeWebhook_UnconfiguredSecret(t *testing.T) {
	store := newMemoryStore()
	svc := payments.NewService(store, &stubSessionCreator{}, nil)
	InitializeWebhookController(svc, "")
	t.Cleanup(func() { InitializeWebhookController(svc, testWebhookSecret) })

	app := fiber.New()
	app.Post("/webhook", HandleStripeWebhook)

	body := completedEventBody("cs_test_1", nil)
	resp, err := app.Test(signedWebhookRequest(body, testWebhookSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandleStripeWebhook_MissingMetadata(t *testing.T) {
	store := newMemoryStore()
	app := newWebhookApp(store)

	body := completedEventBody("cs_test_1", nil)
	resp, err := app.Test(signedWebhookRequest(body, testWebhookSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Zero(t, store.writes)
}

func TestHandleStripeWebhook_DuplicateDelivery(t *testing.T) {
	store := newMemoryStore()
	app := newWebhookApp(store)

	body := completedEventBody("cs_test_1", map[string]string{"user_id": "user-1", "game_id": "game-1"})
	resp, err := app.Test(signedWebhookRequest(body, testWebhookSecret), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	writesAfterFirst := store.writes

	resp, err = app.Test(signedWebhookRequest(body, testWebhookSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, decodeBody(t, resp)["duplicate"])
	assert.Equal(t, writesAfterFirst, store.writes)
}

func TestHandleStripeWebhook_StoreFailure(t *testing.T) {
	store := newMemoryStore()
	store.failAll = true
	app := newWebhookApp(store)

	body := completedEventBody("cs_test_1", map[string]string{"user_id": "user-1", "game_id": "game-1"})
	resp, err := app.Test(signedWebhookRequest(body, testWebhookSecret), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

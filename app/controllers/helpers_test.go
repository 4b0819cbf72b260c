package controllers_test

// In-memory stores and a stubbed gateway so the full HTTP surface can be
// exercised through the real router and middleware chain.

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/vanijya/app/controllers"
	"github.com/shashiranjanraj/vanijya/app/gateway"
	"github.com/shashiranjanraj/vanijya/app/models"
	"github.com/shashiranjanraj/vanijya/app/notify"
	"github.com/shashiranjanraj/vanijya/app/repositories"
	"github.com/shashiranjanraj/vanijya/app/routes"
	"github.com/shashiranjanraj/vanijya/app/services"
	"github.com/shashiranjanraj/vanijya/pkg/auth"
	"github.com/shashiranjanraj/vanijya/pkg/router"
)

type memUserStore struct {
	users map[string]*models.User // keyed by email
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (m *memUserStore) Create(_ context.Context, u *models.User) error {
	if _, ok := m.users[u.Email]; ok {
		return repositories.ErrDuplicateEmail
	}
	copied := *u
	copied.ID = primitive.NewObjectID()
	m.users[u.Email] = &copied
	u.ID = copied.ID
	return nil
}

func (m *memUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range m.users {
		if u.ID.Hex() == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memUserStore) All(_ context.Context) ([]models.User, error) {
	out := make([]models.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memUserStore) Delete(_ context.Context, id string) error {
	for email, u := range m.users {
		if u.ID.Hex() == id {
			delete(m.users, email)
			return nil
		}
	}
	return repositories.ErrNotFound
}

type memRegStore struct {
	records []models.RegistrationRequest
}

func (m *memRegStore) Create(_ context.Context, r *models.RegistrationRequest) error {
	m.records = append(m.records, *r)
	return nil
}

func (m *memRegStore) ByEmail(_ context.Context, email string) ([]models.RegistrationRequest, error) {
	var out []models.RegistrationRequest
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Email == email {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *memRegStore) DeleteByEmail(_ context.Context, email string) (int64, error) {
	var kept []models.RegistrationRequest
	var removed int64
	for _, r := range m.records {
		if r.Email == email {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	m.records = kept
	return removed, nil
}

type memPayStore struct {
	orders []*models.PaymentOrder
}

func (m *memPayStore) Create(_ context.Context, o *models.PaymentOrder) error {
	m.orders = append(m.orders, o)
	return nil
}

func (m *memPayStore) FindByOrderID(_ context.Context, orderID string) (*models.PaymentOrder, error) {
	for _, o := range m.orders {
		if o.OrderID == orderID {
			return o, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memPayStore) MarkPaid(_ context.Context, orderID, paymentID, signature string, paidAt time.Time) (bool, error) {
	for _, o := range m.orders {
		if o.OrderID == orderID && o.Status == models.PaymentPending {
			o.Status = models.PaymentPaid
			o.PaymentID = paymentID
			o.Signature = signature
			o.PaidAt = &paidAt
			return true, nil
		}
	}
	return false, nil
}

func (m *memPayStore) MarkFailed(_ context.Context, orderID string) (bool, error) {
	for _, o := range m.orders {
		if o.OrderID == orderID && o.Status == models.PaymentPending {
			o.Status = models.PaymentFailed
			return true, nil
		}
	}
	return false, nil
}

func (m *memPayStore) All(_ context.Context) ([]models.PaymentOrder, error) {
	out := make([]models.PaymentOrder, 0, len(m.orders))
	for i := len(m.orders) - 1; i >= 0; i-- {
		out = append(out, *m.orders[i])
	}
	return out, nil
}

func (m *memPayStore) ByOwner(_ context.Context, email string) ([]models.PaymentOrder, error) {
	var out []models.PaymentOrder
	for i := len(m.orders) - 1; i >= 0; i-- {
		if m.orders[i].OwnerEmail == email {
			out = append(out, *m.orders[i])
		}
	}
	return out, nil
}

type stubGateway struct {
	nextOrderID string
	payment     map[string]interface{}
	createErr   error
}

func (g *stubGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*gateway.Order, error) {
	if g.createErr != nil {
		return nil, g.createErr
	}
	return &gateway.Order{ID: g.nextOrderID, Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (g *stubGateway) FetchPayment(_ context.Context, paymentID string) (map[string]interface{}, error) {
	if g.payment == nil {
		return nil, errors.New("gateway down")
	}
	return g.payment, nil
}

type stubNotifier struct {
	calls int
	err   error
}

func (n *stubNotifier) RegistrationSubmitted(_ *models.RegistrationRequest) error {
	n.calls++
	return n.err
}

var _ notify.Notifier = (*stubNotifier)(nil)

const testSecret = "unit-test-signing-secret"

type testApp struct {
	handler  http.Handler
	users    *memUserStore
	regs     *memRegStore
	payments *memPayStore
	gw       *stubGateway
	notifier *stubNotifier
	tokens   *auth.Manager
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	app := &testApp{
		users:    newMemUserStore(),
		regs:     &memRegStore{},
		payments: &memPayStore{},
		gw:       &stubGateway{nextOrderID: "order_test1"},
		notifier: &stubNotifier{},
		tokens:   auth.NewManager(testSecret, time.Hour),
	}

	authSvc := services.NewAuthService(app.users, app.regs, app.tokens)
	regSvc := services.NewRegistrationService(app.regs, app.notifier)
	paySvc := services.NewPaymentService(app.payments, app.gw, nil, "rzp_secret", "INR")

	r := router.New()
	routes.RegisterAPI(r, routes.Controllers{
		Auth:         controllers.NewAuthController(authSvc),
		Registration: controllers.NewRegistrationController(regSvc),
		Payment:      controllers.NewPaymentController(paySvc),
		Tokens:       app.tokens,
	})
	app.handler = r.Handler()
	return app
}

func (a *testApp) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)
	return rec
}

// decode unmarshals the standard response envelope.
func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body: %s", rec.Body.String())
	return out
}

// signupAndLogin registers a user and returns a live bearer token.
func (a *testApp) signupAndLogin(t *testing.T, name, email, password string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/signup", "", map[string]string{
		"name": name, "email": email, "password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	data := decode(t, rec)["data"].(map[string]interface{})
	return data["token"].(string)
}

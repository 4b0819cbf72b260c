package services_test

// In-memory fakes for the store and gateway contracts. The payment fake
// mirrors the conditional-update semantics of the Mongo store: transitions
// apply only to pending orders.

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/shashiranjanraj/vanijya/app/gateway"
	"github.com/shashiranjanraj/vanijya/app/models"
	"github.com/shashiranjanraj/vanijya/app/repositories"
)

type fakeUserStore struct {
	users   map[string]*models.User // keyed by email
	byID    map[string]*models.User
	failAll error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users: make(map[string]*models.User),
		byID:  make(map[string]*models.User),
	}
}

func (f *fakeUserStore) Create(_ context.Context, user *models.User) error {
	if _, exists := f.users[user.Email]; exists {
		return repositories.ErrDuplicateEmail
	}
	user.ID = primitive.NewObjectID()
	f.users[user.Email] = user
	f.byID[user.ID.Hex()] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, repositories.ErrNotFound
}

func (f *fakeUserStore) All(_ context.Context) ([]models.User, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	var out []models.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserStore) Delete(_ context.Context, id string) error {
	u, ok := f.byID[id]
	if !ok {
		return repositories.ErrNotFound
	}
	delete(f.byID, id)
	delete(f.users, u.Email)
	return nil
}

type fakeRegStore struct {
	reqs      []*models.RegistrationRequest
	createErr error
	deleteErr error
}

func (f *fakeRegStore) Create(_ context.Context, req *models.RegistrationRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	req.ID = primitive.NewObjectID()
	f.reqs = append(f.reqs, req)
	return nil
}

func (f *fakeRegStore) ByEmail(_ context.Context, email string) ([]models.RegistrationRequest, error) {
	var out []models.RegistrationRequest
	for i := len(f.reqs) - 1; i >= 0; i-- {
		if f.reqs[i].Email == email {
			out = append(out, *f.reqs[i])
		}
	}
	return out, nil
}

func (f *fakeRegStore) DeleteByEmail(_ context.Context, email string) (int64, error) {
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	var kept []*models.RegistrationRequest
	var deleted int64
	for _, r := range f.reqs {
		if r.Email == email {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	f.reqs = kept
	return deleted, nil
}

type fakeNotifier struct {
	calls int
	err   error
}

func (f *fakeNotifier) RegistrationSubmitted(*models.RegistrationRequest) error {
	f.calls++
	return f.err
}

type fakePayStore struct {
	orders []*models.PaymentOrder // insertion order, oldest first
}

func (f *fakePayStore) Create(_ context.Context, order *models.PaymentOrder) error {
	order.ID = primitive.NewObjectID()
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakePayStore) FindByOrderID(_ context.Context, orderID string) (*models.PaymentOrder, error) {
	for _, o := range f.orders {
		if o.OrderID == orderID {
			copied := *o
			return &copied, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (f *fakePayStore) MarkPaid(_ context.Context, orderID, paymentID, signature string, paidAt time.Time) (bool, error) {
	for _, o := range f.orders {
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

func (f *fakePayStore) MarkFailed(_ context.Context, orderID string) (bool, error) {
	for _, o := range f.orders {
		if o.OrderID == orderID && o.Status == models.PaymentPending {
			o.Status = models.PaymentFailed
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePayStore) All(_ context.Context) ([]models.PaymentOrder, error) {
	out := make([]models.PaymentOrder, 0, len(f.orders))
	for i := len(f.orders) - 1; i >= 0; i-- {
		out = append(out, *f.orders[i])
	}
	return out, nil
}

func (f *fakePayStore) ByOwner(_ context.Context, email string) ([]models.PaymentOrder, error) {
	var out []models.PaymentOrder
	for i := len(f.orders) - 1; i >= 0; i-- {
		if f.orders[i].OwnerEmail == email {
			out = append(out, *f.orders[i])
		}
	}
	return out, nil
}

type fakeGateway struct {
	nextOrderID string
	gotAmount   int64
	gotCurrency string
	createErr   error

	payment  map[string]interface{}
	fetchErr error
	fetches  int
}

func (f *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string) (*gateway.Order, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.gotAmount = amount
	f.gotCurrency = currency
	return &gateway.Order{ID: f.nextOrderID, Amount: amount, Currency: currency, Receipt: receipt, Status: "created"}, nil
}

func (f *fakeGateway) FetchPayment(_ context.Context, paymentID string) (map[string]interface{}, error) {
	f.fetches++
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.payment, nil
}

var errStoreDown = errors.New("store down")

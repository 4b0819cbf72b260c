package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/vanijya/app/services"
	"github.com/shashiranjanraj/vanijya/pkg/bind"
	"github.com/shashiranjanraj/vanijya/pkg/middleware"
	"github.com/shashiranjanraj/vanijya/pkg/response"
)

type PaymentController struct {
	service *services.PaymentService
}

func NewPaymentController(service *services.PaymentService) *PaymentController {
	return &PaymentController{service: service}
}

type createOrderRequest struct {
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Currency  string  `json:"currency" validate:"nullable"`
	UserEmail string  `json:"userEmail" validate:"required,email"`
	UserName  string  `json:"userName" validate:"required"`
}

func (c *PaymentController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var body createOrderRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	order, err := c.service.CreateOrder(r.Context(), body.Amount, body.Currency, body.UserEmail, body.UserName)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, order)
}

type verifyPaymentRequest struct {
	OrderID   string `json:"orderId" validate:"required"`
	PaymentID string `json:"paymentId" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

func (c *PaymentController) VerifyPayment(w http.ResponseWriter, r *http.Request) {
	var body verifyPaymentRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := c.service.VerifyPayment(r.Context(), body.OrderID, body.PaymentID, body.Signature); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, "payment verified")
}

func (c *PaymentController) Detail(w http.ResponseWriter, r *http.Request) {
	paymentID := chi.URLParam(r, "paymentId")
	if paymentID == "" {
		response.Error(w, http.StatusBadRequest, "missing payment id")
		return
	}

	detail, err := c.service.PaymentDetail(r.Context(), paymentID)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, detail)
}

func (c *PaymentController) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := c.service.ListAll(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, orders)
}

func (c *PaymentController) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	orders, err := c.service.ListMine(r.Context(), claims.Email)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, orders)
}

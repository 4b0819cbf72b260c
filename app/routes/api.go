package routes

import (
	"net/http"

	"github.com/shashiranjanraj/vanijya/app/controllers"
	"github.com/shashiranjanraj/vanijya/pkg/auth"
	"github.com/shashiranjanraj/vanijya/pkg/metrics"
	"github.com/shashiranjanraj/vanijya/pkg/middleware"
	"github.com/shashiranjanraj/vanijya/pkg/response"
	"github.com/shashiranjanraj/vanijya/pkg/router"
)

// Controllers bundles everything RegisterAPI needs, so the server wires
// dependencies in one place and the route table stays declarative.
type Controllers struct {
	Auth         *controllers.AuthController
	Registration *controllers.RegistrationController
	Payment      *controllers.PaymentController
	Tokens       *auth.Manager
}

func RegisterAPI(r *router.Router, c Controllers) {
	identity := middleware.Identity(c.Tokens)

	r.Get("/healthz", "health", func(w http.ResponseWriter, _ *http.Request) {
		response.Message(w, "ok")
	})
	r.Get("/metrics", "metrics", metrics.Handler())

	r.Post("/signup", "auth.signup", c.Auth.Signup)
	r.Post("/login", "auth.login", c.Auth.Login)
	r.Get("/users", "auth.users", c.Auth.Users)
	r.Get("/protected", "auth.protected", c.Auth.Protected, identity)
	r.Delete("/delete-account", "auth.delete", c.Auth.DeleteAccount, identity)

	r.Post("/reqst", "registration.submit", c.Registration.Submit, identity)
	r.Get("/my-requests", "registration.mine", c.Registration.ListMine, identity)

	payment := r.Group("/payment")
	payment.Post("/create-order", "payment.create", c.Payment.CreateOrder)
	payment.Post("/verify-payment", "payment.verify", c.Payment.VerifyPayment)
	payment.Get("/{paymentId}", "payment.detail", c.Payment.Detail)

	r.Get("/payments", "payment.all", c.Payment.ListAll, identity)
	r.Get("/my-payments", "payment.mine", c.Payment.ListMine, identity)
}

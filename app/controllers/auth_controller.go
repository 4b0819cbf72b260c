package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/vanijya/app/services"
	"github.com/shashiranjanraj/vanijya/pkg/bind"
	"github.com/shashiranjanraj/vanijya/pkg/middleware"
	"github.com/shashiranjanraj/vanijya/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(service *services.AuthService) *AuthController {
	return &AuthController{service: service}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func (c *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	var body signupRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	user, err := c.service.Signup(r.Context(), body.Name, body.Email, body.Password)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, user, err := c.service.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// Protected echoes the verified identity back to the caller. It exists so
// clients can probe whether a stored token is still usable.
func (c *AuthController) Protected(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	response.Success(w, map[string]string{
		"id":    claims.UserID,
		"email": claims.Email,
	})
}

func (c *AuthController) Users(w http.ResponseWriter, r *http.Request) {
	users, err := c.service.ListUsers(r.Context())
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, users)
}

type deleteAccountRequest struct {
	UserID string `json:"userId" validate:"nullable"`
	Email  string `json:"email" validate:"required,email"`
}

func (c *AuthController) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	var body deleteAccountRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	claims := middleware.ClaimsFromCtx(r.Context())
	if err := c.service.DeleteAccount(r.Context(), claims, body.UserID, body.Email); err != nil {
		response.FromError(w, err)
		return
	}
	response.Message(w, "account deleted")
}

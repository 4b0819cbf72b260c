package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/vanijya/app/models"
	"github.com/shashiranjanraj/vanijya/app/services"
	"github.com/shashiranjanraj/vanijya/pkg/bind"
	"github.com/shashiranjanraj/vanijya/pkg/middleware"
	"github.com/shashiranjanraj/vanijya/pkg/response"
)

type RegistrationController struct {
	service *services.RegistrationService
}

func NewRegistrationController(service *services.RegistrationService) *RegistrationController {
	return &RegistrationController{service: service}
}

type registrationRequest struct {
	Name        string `json:"name" validate:"required"`
	Phone       string `json:"phone" validate:"required,digits=10"`
	Email       string `json:"email" validate:"required,email"`
	WebsiteType string `json:"websiteType" validate:"required"`
	Description string `json:"description" validate:"nullable,max=2000"`
}

func (c *RegistrationController) Submit(w http.ResponseWriter, r *http.Request) {
	var body registrationRequest
	if errs, err := bind.JSON(r, &body); err != nil {
		response.Error(w, http.StatusBadRequest, "invalid request body")
		return
	} else if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	record, err := c.service.Submit(r.Context(), &models.RegistrationRequest{
		Name:        body.Name,
		Phone:       body.Phone,
		Email:       body.Email,
		WebsiteType: body.WebsiteType,
		Description: body.Description,
	})
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Created(w, record)
}

// ListMine returns the caller's own submissions, newest first.
func (c *RegistrationController) ListMine(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromCtx(r.Context())
	records, err := c.service.ListMine(r.Context(), claims.Email)
	if err != nil {
		response.FromError(w, err)
		return
	}
	response.Success(w, records)
}

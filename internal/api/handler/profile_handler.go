package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/devconnector/connector-api/internal/core/ports"
)

// ProfileHandler serves /api/profile.
type ProfileHandler struct {
	service ports.ProfileService
}

func NewProfileHandler(service ports.ProfileService) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// Me godoc
// @Summary   Current user's profile
// @Tags      profile
// @Produce   json
// @Security  ApiKeyAuth
// @Success   200  {object}  domain.Profile
// @Failure   401  {object}  messageResponse
// @Failure   404  {object}  messageResponse
// @Router    /api/profile/me [get]
func (h *ProfileHandler) Me(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	profile, err := h.service.Me(c.Request().Context(), p)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Upsert godoc
// @Summary   Create or update the current user's profile
// @Tags      profile
// @Accept    json
// @Produce   json
// @Security  ApiKeyAuth
// @Param     body  body      profileRequest  true  "Profile fields"
// @Success   200   {object}  domain.Profile
// @Failure   400   {object}  errorsResponse
// @Failure   401   {object}  messageResponse
// @Router    /api/profile [post]
func (h *ProfileHandler) Upsert(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req profileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.service.Upsert(c.Request().Context(), p, req.toFields())
	if err != nil {
		return denied("profile", err)
	}
	return c.JSON(http.StatusOK, profile)
}

// List godoc
// @Summary  All profiles
// @Tags     profile
// @Produce  json
// @Success  200  {array}  domain.Profile
// @Router   /api/profile [get]
func (h *ProfileHandler) List(c echo.Context) error {
	profiles, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profiles)
}

// ByUser godoc
// @Summary  Profile by user id
// @Tags     profile
// @Produce  json
// @Param    user_id  path      string  true  "User id"
// @Success  200      {object}  domain.Profile
// @Failure  404      {object}  messageResponse
// @Router   /api/profile/user/{user_id} [get]
func (h *ProfileHandler) ByUser(c echo.Context) error {
	profile, err := h.service.ByUser(c.Request().Context(), c.Param("user_id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// Delete godoc
// @Summary   Delete the current user with their profile and posts
// @Tags      profile
// @Produce   json
// @Security  ApiKeyAuth
// @Success   200  {object}  messageResponse
// @Failure   401  {object}  messageResponse
// @Router    /api/profile [delete]
func (h *ProfileHandler) Delete(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	if err := h.service.DeleteAccount(c.Request().Context(), p); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Msg: "User Deleted!"})
}

// AddExperience godoc
// @Summary   Add an experience entry
// @Tags      profile
// @Accept    json
// @Produce   json
// @Security  ApiKeyAuth
// @Param     body  body      experienceRequest  true  "Experience"
// @Success   200   {object}  domain.Profile
// @Failure   400   {object}  errorsResponse
// @Failure   404   {object}  messageResponse
// @Router    /api/profile/experience [put]
func (h *ProfileHandler) AddExperience(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req experienceRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.service.AddExperience(c.Request().Context(), p, req.toInput())
	if err != nil {
		return denied("profile", err)
	}
	return c.JSON(http.StatusOK, profile)
}

// DeleteExperience godoc
// @Summary   Remove an experience entry
// @Tags      profile
// @Produce   json
// @Security  ApiKeyAuth
// @Param     exp_id  path      string  true  "Experience id"
// @Success   200     {object}  domain.Profile
// @Failure   404     {object}  messageResponse
// @Router    /api/profile/experience/{exp_id} [delete]
func (h *ProfileHandler) DeleteExperience(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	profile, err := h.service.DeleteExperience(c.Request().Context(), p, c.Param("exp_id"))
	if err != nil {
		return denied("profile", err)
	}
	return c.JSON(http.StatusOK, profile)
}

// AddEducation godoc
// @Summary   Add an education entry
// @Tags      profile
// @Accept    json
// @Produce   json
// @Security  ApiKeyAuth
// @Param     body  body      educationRequest  true  "Education"
// @Success   200   {object}  domain.Profile
// @Failure   400   {object}  errorsResponse
// @Failure   404   {object}  messageResponse
// @Router    /api/profile/education [put]
func (h *ProfileHandler) AddEducation(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	var req educationRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	profile, err := h.service.AddEducation(c.Request().Context(), p, req.toInput())
	if err != nil {
		return denied("profile", err)
	}
	return c.JSON(http.StatusOK, profile)
}

// DeleteEducation godoc
// @Summary   Remove an education entry
// @Tags      profile
// @Produce   json
// @Security  ApiKeyAuth
// @Param     edu_id  path      string  true  "Education id"
// @Success   200     {object}  domain.Profile
// @Failure   404     {object}  messageResponse
// @Router    /api/profile/education/{edu_id} [delete]
func (h *ProfileHandler) DeleteEducation(c echo.Context) error {
	p, err := ctxPrincipal(c)
	if err != nil {
		return err
	}

	profile, err := h.service.DeleteEducation(c.Request().Context(), p, c.Param("edu_id"))
	if err != nil {
		return denied("profile", err)
	}
	return c.JSON(http.StatusOK, profile)
}

// GitHubRepos godoc
// @Summary  A GitHub user's latest public repositories
// @Tags     profile
// @Produce  json
// @Param    username  path  string  true  "GitHub username"
// @Success  200  {array}   object
// @Failure  404  {object}  messageResponse
// @Router   /api/profile/github/{username} [get]
func (h *ProfileHandler) GitHubRepos(c echo.Context) error {
	repos, err := h.service.GitHubRepos(c.Request().Context(), c.Param("username"))
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, repos)
}

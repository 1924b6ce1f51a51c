package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dtroode/profilekeeper/internal/api/http/view"
	"github.com/dtroode/profilekeeper/internal/logger"
	"github.com/dtroode/profilekeeper/internal/model"
)

// ProfileService is the set of profile operations the handlers call.
type ProfileService interface {
	List(ctx context.Context) ([]model.ProfileEntry, error)
	Get(ctx context.Context, key string) (model.Profile, error)
	Save(ctx context.Context, key string, profile model.Profile) error
	Delete(ctx context.Context, key string) error
	Draft() model.ProfileEntry
}

// Profile serves the HTML profile pages.
type Profile struct {
	service  ProfileService
	basePath string
	logger   *logger.Logger
}

// NewProfile creates the page handlers mounted under basePath.
func NewProfile(service ProfileService, basePath string, logger *logger.Logger) *Profile {
	return &Profile{
		service:  service,
		basePath: strings.TrimSuffix(basePath, "/"),
		logger:   logger,
	}
}

type saveForm struct {
	Key        string   `form:"key"`
	Name       string   `form:"name"`
	Bio        string   `form:"bio"`
	AttrNames  []string `form:"attr_name"`
	AttrValues []string `form:"attr_value"`
}

// errAttrMismatch is reported when the submitted attribute names and values do not pair up.
var errAttrMismatch = errors.New("attribute names and values do not match")

// attributes pairs the repeated attr_name and attr_value fields. Rows with a
// blank name are dropped.
func (f saveForm) attributes() (map[string]string, error) {
	if len(f.AttrNames) != len(f.AttrValues) {
		return nil, errAttrMismatch
	}
	attrs := make(map[string]string, len(f.AttrNames))
	for i, name := range f.AttrNames {
		if strings.TrimSpace(name) == "" {
			continue
		}
		attrs[name] = f.AttrValues[i]
	}
	return attrs, nil
}

// IndexPath is where Save and Delete redirect to.
func (h *Profile) IndexPath() string {
	if h.basePath == "" {
		return "/"
	}
	return h.basePath
}

// Index renders every profile ordered by key.
func (h *Profile) Index(c *gin.Context) {
	entries, err := h.service.List(c.Request.Context())
	if err != nil {
		h.renderError(c, err)
		return
	}

	c.HTML(http.StatusOK, view.Index, h.page("Profiles", gin.H{
		"Profiles": entries,
	}))
}

// Add renders the edit form for a blank profile with a suggested key.
func (h *Profile) Add(c *gin.Context) {
	draft := h.service.Draft()
	h.renderEdit(c, http.StatusOK, draft.Key, draft.Profile, true, "")
}

// Edit renders the edit form for a stored profile.
func (h *Profile) Edit(c *gin.Context) {
	key := c.Param("id")

	p, err := h.service.Get(c.Request.Context(), key)
	if err != nil {
		h.renderError(c, err)
		return
	}

	h.renderEdit(c, http.StatusOK, key, p, false, "")
}

// Save stores the submitted profile and redirects to the index.
func (h *Profile) Save(c *gin.Context) {
	var form saveForm
	if err := c.ShouldBind(&form); err != nil {
		h.renderEdit(c, http.StatusBadRequest, "", model.Profile{}, true, err.Error())
		return
	}

	attrs, err := form.attributes()
	p := model.Profile{
		Name:       form.Name,
		Bio:        form.Bio,
		Attributes: attrs,
	}.Normalize()
	if err != nil {
		h.renderEdit(c, http.StatusBadRequest, form.Key, p, true, err.Error())
		return
	}

	if err := h.service.Save(c.Request.Context(), form.Key, p); err != nil {
		if errors.Is(err, model.ErrInvalidKey) || errors.Is(err, model.ErrInvalidProfile) {
			h.renderEdit(c, http.StatusBadRequest, form.Key, p, true, messageFor(err))
			return
		}
		h.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, h.IndexPath())
}

// Delete removes a profile and redirects to the index. Absent keys are not an error.
func (h *Profile) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.renderError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, h.IndexPath())
}

func (h *Profile) renderEdit(c *gin.Context, status int, key string, p model.Profile, isNew bool, msg string) {
	title := "Edit profile"
	if isNew {
		title = "Add profile"
	}
	c.HTML(status, view.Edit, h.page(title, gin.H{
		"Key":     key,
		"Profile": p,
		"IsNew":   isNew,
		"Error":   msg,
	}))
}

func (h *Profile) renderError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("HTTP handler: request failed", "path", c.Request.URL.Path, "error", err.Error())
	}
	c.HTML(status, view.Error, h.page(http.StatusText(status), gin.H{
		"Message": messageFor(err),
	}))
}

func (h *Profile) page(title string, data gin.H) gin.H {
	data["Title"] = title
	data["BasePath"] = h.basePath
	data["IndexPath"] = h.IndexPath()
	return data
}

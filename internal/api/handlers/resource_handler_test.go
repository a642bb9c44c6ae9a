package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/isdelr/glossary-be/internal/auth"
	"github.com/isdelr/glossary-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceHandler_Create(t *testing.T) {
	svc := &fakeResourceService{}
	h := NewResourceHandler(svc)

	rec := httptest.NewRecorder()
	req := newJSONRequest(http.MethodPost, "/api/terms/resources/add", `{"termid":1,"link":"https://example.com","linktype":"web","language":"en"}`)
	h.Create(rec, withIdentity(req, auth.Identity{ContributorID: 3}))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"message":"Term resource added","id":7}`, rec.Body.String())
	require.Len(t, svc.actors, 1)
	require.NotNil(t, svc.actors[0])
	assert.Equal(t, int64(3), *svc.actors[0])
}

func TestResourceHandler_Validation(t *testing.T) {
	h := NewResourceHandler(&fakeResourceService{})

	rec := httptest.NewRecorder()
	h.Create(rec, newJSONRequest(http.MethodPost, "/api/terms/resources/add", `{"termid":1,"link":"l","linktype":"podcast"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"linktype must be one of: video web"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.Update(rec, newJSONRequest(http.MethodPost, "/api/terms/resources/update", `{"termid":1,"link":"l","linktype":"video"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Delete(rec, newJSONRequest(http.MethodPost, "/api/terms/resources/delete", `{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResourceHandler_Errors(t *testing.T) {
	rec := httptest.NewRecorder()
	NewResourceHandler(&fakeResourceService{err: services.ErrNotFound}).
		Delete(rec, newJSONRequest(http.MethodPost, "/api/terms/resources/delete", `{"resourceid":4}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	NewResourceHandler(&fakeResourceService{err: services.ErrInvalidReference}).
		Create(rec, newJSONRequest(http.MethodPost, "/api/terms/resources/add", `{"termid":9,"link":"l","linktype":"video"}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEventHandler_Limit(t *testing.T) {
	svc := &fakeEventService{}
	h := NewEventHandler(svc)

	for _, q := range []string{"", "?limit=5", "?limit=-1", "?limit=5000"} {
		rec := httptest.NewRecorder()
		h.GetRecent(rec, httptest.NewRequest(http.MethodGet, "/api/events"+q, nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Equal(t, []int{defaultEventLimit, 5, defaultEventLimit, maxEventLimit}, svc.limits)
}

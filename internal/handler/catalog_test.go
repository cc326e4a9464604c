package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/cinema-booking/internal/model"
	"github.com/iliyamo/cinema-booking/internal/repository"
)

func TestGenreCreate(t *testing.T) {
	store := newFakeGenres()
	h := NewGenreHandler(store, nil)
	c, rec := newCtx(http.MethodPost, "/v1/genres", `{"name":"Drama"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id":101,"name":"Drama"}`, rec.Body.String())
}

func TestGenreCreateValidation(t *testing.T) {
	h := NewGenreHandler(newFakeGenres(), nil)
	c, rec := newCtx(http.MethodPost, "/v1/genres", `{}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"errors":{"name":"This field is required."}}`, rec.Body.String())
}

func TestGenreCreateDuplicate(t *testing.T) {
	store := newFakeGenres()
	store.err = repository.ErrDuplicate
	h := NewGenreHandler(store, nil)
	c, rec := newCtx(http.MethodPost, "/v1/genres", `{"name":"Drama"}`)

	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestGenreGetMissing(t *testing.T) {
	h := NewGenreHandler(newFakeGenres(), nil)
	c, rec := newCtx(http.MethodGet, "/v1/genres/7", "")

	require.NoError(t, h.Get(withID(c, "7")))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenreGetBadID(t *testing.T) {
	h := NewGenreHandler(newFakeGenres(), nil)
	c, rec := newCtx(http.MethodGet, "/v1/genres/abc", "")

	require.NoError(t, h.Get(withID(c, "abc")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenrePutRequiresAllFields(t *testing.T) {
	h := NewGenreHandler(newFakeGenres(model.Genre{ID: 1, Name: "Drama"}), nil)
	c, rec := newCtx(http.MethodPut, "/v1/genres/1", `{}`)

	require.NoError(t, h.Update(withID(c, "1")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenrePatchKeepsMissingFields(t *testing.T) {
	store := newFakeGenres(model.Genre{ID: 1, Name: "Drama"})
	h := NewGenreHandler(store, nil)
	c, rec := newCtx(http.MethodPatch, "/v1/genres/1", `{}`)

	require.NoError(t, h.Patch(withID(c, "1")))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Drama", store.byID[1].Name)
}

func TestGenreDeleteInUse(t *testing.T) {
	store := newFakeGenres()
	store.err = repository.ErrConflict
	h := NewGenreHandler(store, nil)
	c, rec := newCtx(http.MethodDelete, "/v1/genres/1", "")

	require.NoError(t, h.Delete(withID(c, "1")))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHallResponseCarriesCapacity(t *testing.T) {
	b, err := json.Marshal(newHallResp(model.CinemaHall{ID: 1, Name: "Blue", Rows: 10, SeatsInRow: 8}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"name":"Blue","rows":10,"seats_in_row":8,"capacity":80}`, string(b))
}

func TestActorResponseCarriesFullName(t *testing.T) {
	b, err := json.Marshal(newActorResp(model.Actor{ID: 2, FirstName: "Keanu", LastName: "Reeves"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":2,"first_name":"Keanu","last_name":"Reeves","full_name":"Keanu Reeves"}`, string(b))
}

func TestHallShrinkBelowSoldSeatsConflicts(t *testing.T) {
	store := &fakeHalls{cur: &model.CinemaHall{ID: 1, Name: "Blue", Rows: 10, SeatsInRow: 8}, err: repository.ErrSeatsSold}
	h := NewHallHandler(store, nil)
	c, rec := newCtx(http.MethodPatch, "/v1/cinema_halls/1", `{"rows":1,"seats_in_row":1}`)

	require.NoError(t, h.Patch(withID(c, "1")))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "seat grid")
}

func TestHallPatchKeepsMissingFields(t *testing.T) {
	store := &fakeHalls{cur: &model.CinemaHall{ID: 1, Name: "Blue", Rows: 10, SeatsInRow: 8}}
	h := NewHallHandler(store, nil)
	c, rec := newCtx(http.MethodPatch, "/v1/cinema_halls/1", `{"rows":12}`)

	require.NoError(t, h.Patch(withID(c, "1")))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, store.updated)
	assert.Equal(t, model.CinemaHall{ID: 1, Name: "Blue", Rows: 12, SeatsInRow: 8}, *store.updated)
}

func TestHallPatchWithoutStoredRowFails(t *testing.T) {
	h := NewHallHandler(&fakeHalls{}, nil)
	c, rec := newCtx(http.MethodPatch, "/v1/cinema_halls/1", `{}`)

	require.NoError(t, h.Patch(withID(c, "1")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

package minapi_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/minapi"
)

type getUserResult = minapi.Results3[minapi.Ok[user], minapi.NotFound, minapi.ValidationProblem]

func TestResults_write_delegates_to_alternative(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		union  minapi.Result
		direct minapi.Result
		index  int
	}{
		"first": {
			union:  getUserResult{}.From1(minapi.Ok[user]{Value: user{ID: "7", Name: "Bo"}}),
			direct: minapi.Ok[user]{Value: user{ID: "7", Name: "Bo"}},
			index:  1,
		},
		"second": {
			union:  getUserResult{}.From2(minapi.NotFound{Message: "no user 7"}),
			direct: minapi.NotFound{Message: "no user 7"},
			index:  2,
		},
		"third": {
			union:  getUserResult{}.From3(minapi.ValidationProblem{Errors: map[string][]string{"id": {"bad"}}}),
			direct: minapi.ValidationProblem{Errors: map[string][]string{"id": {"bad"}}},
			index:  3,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			viaUnion := writeResult(t, tc.union)
			direct := writeResult(t, tc.direct)

			assert.Equal(t, direct.Code, viaUnion.Code)
			assert.Equal(t, direct.Header(), viaUnion.Header())
			assert.Equal(t, direct.Body.Bytes(), viaUnion.Body.Bytes())

			u, ok := tc.union.(getUserResult)
			require.True(t, ok)
			assert.Equal(t, tc.index, u.Index())
			assert.Equal(t, tc.direct, u.Result())
		})
	}
}

func TestResults_zero_value(t *testing.T) {
	t.Parallel()

	var u minapi.Results2[minapi.NoContent, minapi.NotFound]
	assert.Nil(t, u.Result())
	assert.Zero(t, u.Index())

	rec := httptest.NewRecorder()
	err := u.WriteResult(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, minapi.ErrEmptyResult)
}

func TestResults_zero_value_from_handler(t *testing.T) {
	t.Parallel()

	r := minapi.New(minapi.WithLogger(discardLogger()))
	minapi.Get(r, "/empty", func(context.Context, *minapi.Void) (minapi.Results2[minapi.NoContent, minapi.NotFound], error) {
		return minapi.Results2[minapi.NoContent, minapi.NotFound]{}, nil
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/empty", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestResults_describe_every_alternative(t *testing.T) {
	t.Parallel()

	d := getUserResult{}.Describe()
	require.Len(t, d, 3)
	assert.Equal(t, http.StatusOK, d[0].StatusCode)
	assert.Equal(t, http.StatusNotFound, d[1].StatusCode)
	assert.Equal(t, http.StatusBadRequest, d[2].StatusCode)

	nested := minapi.Results2[minapi.Created[user], getUserResult]{}.Describe()
	require.Len(t, nested, 4)
	assert.Equal(t, http.StatusCreated, nested[0].StatusCode)
	assert.Equal(t, http.StatusBadRequest, nested[3].StatusCode)
}

func TestResults_all_arities(t *testing.T) {
	t.Parallel()

	type (
		r4 = minapi.Results4[minapi.Ok[user], minapi.Created[user], minapi.NoContent, minapi.NotFound]
		r5 = minapi.Results5[minapi.Ok[user], minapi.Created[user], minapi.NoContent, minapi.NotFound, minapi.Conflict]
		r6 = minapi.Results6[minapi.Ok[user], minapi.Created[user], minapi.NoContent, minapi.NotFound, minapi.Conflict, minapi.Gone]
	)

	assert.Equal(t, http.StatusNoContent, writeResult(t, r4{}.From3(minapi.NoContent{})).Code)
	assert.Equal(t, http.StatusNotFound, writeResult(t, r4{}.From4(minapi.NotFound{})).Code)
	assert.Equal(t, http.StatusConflict, writeResult(t, r5{}.From5(minapi.Conflict{})).Code)
	assert.Equal(t, http.StatusGone, writeResult(t, r6{}.From6(minapi.Gone{})).Code)
	assert.Equal(t, http.StatusCreated, writeResult(t, r6{}.From2(minapi.Created[user]{})).Code)

	assert.Len(t, r4{}.Describe(), 4)
	assert.Len(t, r5{}.Describe(), 5)
	assert.Len(t, r6{}.Describe(), 6)
}

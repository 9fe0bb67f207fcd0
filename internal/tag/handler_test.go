package tag

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redmonkez12/go-blog-api/internal/database/dbtest"
	"github.com/redmonkez12/go-blog-api/internal/httputil"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	h := NewHandler(NewRepository(dbtest.NewDB(t)))

	r := chi.NewRouter()
	r.Get("/tags", h.List)
	r.Post("/tags", h.Create)
	r.Delete("/tags/{id}", h.Delete)
	return r
}

func do(router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestHandler_CreateListDelete(t *testing.T) {
	router := newTestRouter(t)

	rec := do(router, http.MethodPost, "/tags", `{"names":[" go ","sql"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created []Tag
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	require.Len(t, created, 2)
	assert.Equal(t, "go", created[0].Name)

	rec = do(router, http.MethodGet, "/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"postCount":0`)

	rec = do(router, http.MethodDelete, "/tags/"+created[0].ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandler_CreateValidation(t *testing.T) {
	router := newTestRouter(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty list", `{"names":[]}`},
		{"missing", `{}`},
		{"short name", `{"names":["g"]}`},
		{"long name", `{"names":["` + strings.Repeat("x", 31) + `"]}`},
		{"too many", `{"names":["a1","a2","a3","a4","a5","a6","a7","a8","a9","b1","b2"]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(router, http.MethodPost, "/tags", tc.body)
			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp httputil.ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, httputil.CodeValidationFailed, resp.Code)
		})
	}
}

func TestHandler_DeleteBadID(t *testing.T) {
	rec := do(newTestRouter(t), http.MethodDelete, "/tags/abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

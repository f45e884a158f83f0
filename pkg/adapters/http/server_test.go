package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/fewston/stile"
	httpadapter "github.com/fewston/stile/pkg/adapters/http"
	"github.com/fewston/stile/pkg/adapters/memory"
	"github.com/fewston/stile/pkg/domain"
	"github.com/fewston/stile/pkg/session"
	"github.com/fewston/stile/pkg/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type visit struct {
	Kind string `form:"kind" json:"kind"`
}

const (
	stepKind    domain.Step = "kind"
	stepConfirm domain.Step = "confirm"
)

func testFlow(t *testing.T) *stile.Flow[visit] {
	t.Helper()

	graph, err := domain.NewGraph[visit](
		domain.StepDef[visit]{ID: stepKind, Fields: []string{"kind"}, Next: domain.Always[visit](stepConfirm)},
		domain.StepDef[visit]{ID: stepConfirm, Kind: domain.KindConfirmation},
	)
	require.NoError(t, err)

	flow, err := stile.New[visit]("visit", graph, httpadapter.StepURLs("/visit"),
		stile.WithHooks(map[domain.Step]stile.StepHook[visit]{
			stepKind: nil,
		}),
		stile.WithViews(map[domain.Step]stile.ViewFunc[visit]{
			stepKind: func(sess *domain.Session[visit], form url.Values, _ []domain.FieldError) (map[string]any, error) {
				return map[string]any{"kind": sess.DTO.Kind}, nil
			},
			stepConfirm: func(sess *domain.Session[visit], _ url.Values, _ []domain.FieldError) (map[string]any, error) {
				return map[string]any{"kind": sess.DTO.Kind}, nil
			},
		}),
		stile.WithRules(validate.Rules[visit]{
			stepKind: {
				validate.Required[visit]("kind", "select a kind", func(v *visit) string { return v.Kind }),
			},
		}),
	)
	require.NoError(t, err)
	return flow
}

func testServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	mgr := session.NewManager[visit](memory.NewStore[visit]())
	handler := httpadapter.NewHandler(testFlow(t), mgr)

	mux := http.NewServeMux()
	mux.Handle("/visit/", http.StripPrefix("/visit", handler))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return srv, client
}

func TestHandler_InitRedirectsToEntry(t *testing.T) {
	srv, client := testServer(t)

	resp, err := client.Get(srv.URL + "/visit/X123456")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/visit/X123456/kind", resp.Header.Get("Location"))
}

func TestHandler_GatedStepRedirects(t *testing.T) {
	srv, client := testServer(t)

	resp, err := client.Get(srv.URL + "/visit/X123456/confirm")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/visit/X123456/kind", resp.Header.Get("Location"))
}

func TestHandler_SubmitAndConfirm(t *testing.T) {
	srv, client := testServer(t)

	// Establish the session cookie.
	resp, err := client.Get(srv.URL + "/visit/X123456")
	require.NoError(t, err)
	resp.Body.Close()

	// Invalid submission re-renders with errors.
	resp, err = client.PostForm(srv.URL+"/visit/X123456/kind", url.Values{"kind": {""}})
	require.NoError(t, err)
	var vm struct {
		Step   string              `json:"step"`
		Errors []domain.FieldError `json:"errors"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vm))
	resp.Body.Close()
	assert.Equal(t, "kind", vm.Step)
	require.Len(t, vm.Errors, 1)
	assert.Equal(t, "kind", vm.Errors[0].Field)

	// Valid submission advances to the confirmation step.
	resp, err = client.PostForm(srv.URL+"/visit/X123456/kind", url.Values{"kind": {"office"}})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/visit/X123456/confirm", resp.Header.Get("Location"))

	resp, err = client.Get(srv.URL + "/visit/X123456/confirm")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "office"))
}

func TestHandler_PostToConfirmationIs405(t *testing.T) {
	srv, client := testServer(t)

	resp, err := client.PostForm(srv.URL+"/visit/X123456/confirm", url.Values{})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHandler_ForeignIdentityIsolation(t *testing.T) {
	srv, client := testServer(t)

	// Complete the kind step for X1.
	resp, err := client.Get(srv.URL + "/visit/X1")
	require.NoError(t, err)
	resp.Body.Close()
	resp, err = client.PostForm(srv.URL+"/visit/X1/kind", url.Values{"kind": {"office"}})
	require.NoError(t, err)
	resp.Body.Close()

	// Same browser session, different case: X1's DTO must never leak.
	resp, err = client.Get(srv.URL + "/visit/X2/kind")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	var vm struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&vm))
	assert.Empty(t, vm.Data["kind"], "X2 must not see X1's accumulated DTO")
}

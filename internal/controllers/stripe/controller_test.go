package stripe_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/markket/storefront-api/internal/controllers/stripe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticKeys struct {
	live, test string
	err        error
	calls      atomic.Int32
}

func (s *staticKeys) StripeKey(_ context.Context, testMode bool) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	if testMode {
		return s.test, nil
	}
	return s.live, nil
}

type providerCall struct {
	Path          string
	Authorization string
	Form          url.Values
}

func newProviderDouble(t *testing.T) (*httptest.Server, *[]providerCall) {
	t.Helper()
	var (
		mu    sync.Mutex
		calls []providerCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		form, _ := url.ParseQuery(string(body))
		mu.Lock()
		calls = append(calls, providerCall{Path: r.URL.Path, Authorization: r.Header.Get("Authorization"), Form: form})
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/v1/accounts" && form.Get("country") == "XX":
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"Country 'XX' is unknown."}}`)
		case r.URL.Path == "/v1/accounts":
			_, _ = io.WriteString(w, `{"id":"acct_123","object":"account"}`)
		case r.URL.Path == "/v1/account_links":
			_, _ = io.WriteString(w, `{"object":"account_link","url":"https://connect.example.com/setup/acct_123"}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":{"type":"invalid_request_error","message":"Unrecognized request URL"}}`)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestController_ClientMissingCredentials(t *testing.T) {
	ctl := stripe.NewController(&staticKeys{live: "sk_live_1"})

	_, err := ctl.Client(context.Background(), true)
	assert.ErrorIs(t, err, stripe.ErrMissingCredentials)

	p, err := ctl.Client(context.Background(), false)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestController_ClientKeySourceError(t *testing.T) {
	keys := &staticKeys{err: errors.New("ssm unavailable")}
	ctl := stripe.NewController(keys)

	_, err := ctl.Client(context.Background(), false)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, stripe.ErrMissingCredentials)

	keys.err = nil
	keys.live = "sk_live_1"
	p, err := ctl.Client(context.Background(), false)
	require.NoError(t, err)
	assert.NotNil(t, p)
}

func TestController_ClientIsReused(t *testing.T) {
	keys := &staticKeys{live: "sk_live_1", test: "sk_test_1"}
	ctl := stripe.NewController(keys)

	var wg sync.WaitGroup
	results := make([]stripe.Provider, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = ctl.Client(context.Background(), i%2 == 0)
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NotNil(t, results[i])
		assert.Same(t, results[i%2], results[i])
	}
	assert.NotSame(t, results[0], results[1])
	assert.EqualValues(t, 2, keys.calls.Load())
}

func TestProvider_CreateAccount(t *testing.T) {
	srv, calls := newProviderDouble(t)
	ctl := stripe.NewController(&staticKeys{live: "sk_live_1", test: "sk_test_1"},
		stripe.WithBackends(stripe.NewBackends(srv.URL, nil)))

	p, err := ctl.Client(context.Background(), true)
	require.NoError(t, err)

	id, err := p.CreateAccount(context.Background(), stripe.AccountParams{Type: "standard", Country: "US", Email: "owner@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "acct_123", id)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/v1/accounts", call.Path)
	assert.Equal(t, "Bearer sk_test_1", call.Authorization)
	assert.Equal(t, "standard", call.Form.Get("type"))
	assert.Equal(t, "US", call.Form.Get("country"))
	assert.Equal(t, "owner@example.com", call.Form.Get("email"))
}

func TestProvider_CreateAccountLink(t *testing.T) {
	srv, calls := newProviderDouble(t)
	ctl := stripe.NewController(&staticKeys{live: "sk_live_1"},
		stripe.WithBackends(stripe.NewBackends(srv.URL, nil)))

	p, err := ctl.Client(context.Background(), false)
	require.NoError(t, err)

	link, err := p.CreateAccountLink(context.Background(), stripe.AccountLinkParams{
		Account:    "acct_123",
		RefreshURL: "https://shop.example.com/refresh",
		ReturnURL:  "https://shop.example.com/return",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://connect.example.com/setup/acct_123", link)

	require.Len(t, *calls, 1)
	call := (*calls)[0]
	assert.Equal(t, "/v1/account_links", call.Path)
	assert.Equal(t, "Bearer sk_live_1", call.Authorization)
	assert.Equal(t, "acct_123", call.Form.Get("account"))
	assert.Equal(t, "account_onboarding", call.Form.Get("type"))
	assert.Equal(t, "https://shop.example.com/return", call.Form.Get("return_url"))
	assert.Equal(t, "https://shop.example.com/refresh", call.Form.Get("refresh_url"))
}

func TestProvider_ErrorMessage(t *testing.T) {
	srv, calls := newProviderDouble(t)
	ctl := stripe.NewController(&staticKeys{live: "sk_live_1"},
		stripe.WithBackends(stripe.NewBackends(srv.URL, nil)))

	p, err := ctl.Client(context.Background(), false)
	require.NoError(t, err)

	_, err = p.CreateAccount(context.Background(), stripe.AccountParams{Type: "standard", Country: "XX", Email: "owner@example.com"})
	require.Error(t, err)
	assert.Equal(t, "Country 'XX' is unknown.", stripe.ErrorMessage(err))
	assert.Len(t, *calls, 1, "provider calls are never retried")

	assert.Equal(t, "plain", stripe.ErrorMessage(errors.New("plain")))
}

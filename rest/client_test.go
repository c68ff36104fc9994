package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBroker is an in-memory API server recording the requests it sees
type fakeBroker struct {
	mu       sync.Mutex
	server   *httptest.Server
	requests []*http.Request
	forms    []map[string]string
}

func newFakeBroker(t *testing.T) *fakeBroker {
	t.Helper()

	fb := &fakeBroker{}
	mux := http.NewServeMux()
	fb.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		form := map[string]string{}
		for k := range r.Form {
			form[k] = r.Form.Get(k)
		}
		fb.mu.Lock()
		fb.requests = append(fb.requests, r)
		fb.forms = append(fb.forms, form)
		fb.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fb.server.Close)

	base := fb.server.URL + "/broker/rest"
	link := func(method, path string, required ...string) map[string]any {
		params := make([]map[string]any, 0, len(required))
		for _, name := range required {
			params = append(params, map[string]any{"name": name})
		}
		return map[string]any{"method": method, "href": base + path, "required_params": params}
	}

	domain := func(id string) map[string]any {
		return map[string]any{
			"id": id,
			"links": map[string]any{
				LinkListApplications: link("GET", "/domains/"+id+"/applications"),
				LinkAddApplication:   link("POST", "/domains/"+id+"/applications", "name", "cartridge"),
				LinkUpdate:           link("PUT", "/domains/"+id, "id"),
				LinkDelete:           link("DELETE", "/domains/"+id),
			},
		}
	}
	app := func(domainID, name string) map[string]any {
		prefix := "/domains/" + domainID + "/applications/" + name
		return map[string]any{
			"name":      name,
			"domain_id": domainID,
			"framework": "ruby-1.9",
			"links": map[string]any{
				LinkStart:          link("POST", prefix+"/events", "event"),
				LinkStop:           link("POST", prefix+"/events", "event"),
				LinkForceStop:      link("POST", prefix+"/events", "event"),
				LinkRestart:        link("POST", prefix+"/events", "event"),
				LinkDelete:         link("DELETE", prefix),
				LinkListCartridges: link("GET", prefix+"/cartridges"),
				LinkAddCartridge:   link("POST", prefix+"/cartridges", "name"),
			},
		}
	}
	cartridge := func(appPrefix, name string) map[string]any {
		prefix := appPrefix + "/cartridges/" + name
		return map[string]any{
			"name": name,
			"type": "embedded",
			"links": map[string]any{
				LinkStart:   link("POST", prefix+"/events", "event"),
				LinkStop:    link("POST", prefix+"/events", "event"),
				LinkRestart: link("POST", prefix+"/events", "event"),
				LinkReload:  link("POST", prefix+"/events", "event"),
				LinkDelete:  link("DELETE", prefix),
			},
		}
	}
	key := func(name, keyType, content string) map[string]any {
		return map[string]any{
			"name":    name,
			"type":    keyType,
			"content": content,
			"links": map[string]any{
				LinkUpdate: link("PUT", "/user/keys/"+name, "type", "content"),
				LinkDelete: link("DELETE", "/user/keys/"+name),
			},
		}
	}
	envelope := func(w http.ResponseWriter, status int, kind string, data any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{"type": kind, "data": data})
	}

	mux.HandleFunc("/broker/rest/api", func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "tok"})
		envelope(w, http.StatusOK, TypeLinks, map[string]any{
			LinkGetUser:        link("GET", "/user"),
			LinkListDomains:    link("GET", "/domains"),
			LinkAddDomain:      link("POST", "/domains", "id"),
			LinkListCartridges: link("GET", "/cartridges"),
		})
	})
	mux.HandleFunc("/broker/rest/user", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, TypeUser, map[string]any{
			"login": "me@example.com",
			"links": map[string]any{
				LinkListKeys: link("GET", "/user/keys"),
				LinkAddKey:   link("POST", "/user/keys", "name", "type", "content"),
			},
		})
	})
	mux.HandleFunc("/broker/rest/user/keys", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			envelope(w, http.StatusCreated, TypeKey, key(r.Form.Get("name"), r.Form.Get("type"), r.Form.Get("content")))
			return
		}
		envelope(w, http.StatusOK, TypeKeys, []any{key("default", "ssh-rsa", "AAAA")})
	})
	mux.HandleFunc("/broker/rest/user/keys/default", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			envelope(w, http.StatusOK, TypeKey, key("default", r.Form.Get("type"), r.Form.Get("content")))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/broker/rest/domains", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if r.Form.Get("id") == "taken" {
				w.WriteHeader(http.StatusConflict)
				fmt.Fprint(w, `{"type":null,"data":null,"messages":[{"severity":"ERROR","text":"Namespace 'taken' is already in use"}]}`)
				return
			}
			envelope(w, http.StatusCreated, TypeDomain, domain(r.Form.Get("id")))
			return
		}
		envelope(w, http.StatusOK, TypeDomains, []any{domain("alpha"), domain("beta")})
	})
	mux.HandleFunc("/broker/rest/domains/beta", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			envelope(w, http.StatusOK, TypeDomain, domain(r.Form.Get("id")))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/broker/rest/domains/alpha/applications", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, TypeApplications, []any{})
	})
	mux.HandleFunc("/broker/rest/domains/beta/applications", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusUnprocessableEntity)
			fmt.Fprint(w, `{"messages":[{"severity":"error","text":"Invalid cartridge","attribute":"cartridge"}]}`)
			return
		}
		envelope(w, http.StatusOK, TypeApplications, []any{app("beta", "blog"), app("beta", "shop")})
	})
	mux.HandleFunc("/broker/rest/domains/beta/applications/shop/events", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, TypeApplication, app("beta", "shop"))
	})
	mux.HandleFunc("/broker/rest/domains/beta/applications/shop", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	shop := "/domains/beta/applications/shop"
	mux.HandleFunc("/broker/rest"+shop+"/cartridges", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			envelope(w, http.StatusCreated, TypeCartridge, cartridge(shop, r.Form.Get("name")))
			return
		}
		envelope(w, http.StatusOK, TypeCartridges, []any{cartridge(shop, "mysql-5.1")})
	})
	mux.HandleFunc("/broker/rest"+shop+"/cartridges/mysql-5.1/events", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, TypeCartridge, cartridge(shop, "mysql-5.1"))
	})
	mux.HandleFunc("/broker/rest"+shop+"/cartridges/mysql-5.1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/broker/rest/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"type":null,"data":null,"messages":[{"severity":"INFO","text":"nothing to see"}]}`)
	})
	mux.HandleFunc("/broker/rest/cartridges", func(w http.ResponseWriter, r *http.Request) {
		envelope(w, http.StatusOK, TypeCartridges, []any{
			map[string]any{"name": "php-5.3", "type": "standalone"},
			map[string]any{"name": "mysql-5.1", "type": "embedded"},
		})
	})

	return fb
}

func (fb *fakeBroker) last() (*http.Request, map[string]string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	n := len(fb.requests)
	return fb.requests[n-1], fb.forms[n-1]
}

func newTestClient(t *testing.T, fb *fakeBroker, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(fb.server.URL+"/broker/rest/", "me@example.com", "secret", zerolog.Nop(), opts...)
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("missing URL", func(t *testing.T) {
		_, err := NewClient("", "me", "pw", zerolog.Nop())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "URL is required")
	})

	t.Run("connects and stores links", func(t *testing.T) {
		fb := newFakeBroker(t)
		client := newTestClient(t, fb)

		assert.Equal(t, fb.server.URL+"/broker/rest", client.baseURL)
		assert.Contains(t, client.links, LinkListDomains)

		req, _ := fb.last()
		assert.Equal(t, "/broker/rest/api", req.URL.Path)
		assert.Equal(t, "application/json; version=1.0", req.Header.Get("Accept"))
		login, password, ok := req.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "me@example.com", login)
		assert.Equal(t, "secret", password)
		assert.Empty(t, req.Header.Get("Cookie"))
		assert.Equal(t, "tok", client.Session().Token())
	})

	t.Run("unreachable server", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		_, err := NewClient(url, "me", "pw", zerolog.Nop(), WithTimeout(time.Second))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrResourceAccess)
	})

	t.Run("without connect", func(t *testing.T) {
		client, err := NewClient("http://127.0.0.1:1", "me", "pw", zerolog.Nop(), WithoutConnect())
		require.NoError(t, err)
		assert.Nil(t, client.links)
	})
}

func TestClientOptions(t *testing.T) {
	fb := newFakeBroker(t)

	t.Run("api version", func(t *testing.T) {
		newTestClient(t, fb, WithAPIVersion("1.2"))
		req, _ := fb.last()
		assert.Equal(t, "application/json; version=1.2", req.Header.Get("Accept"))
	})

	t.Run("custom http client", func(t *testing.T) {
		custom := &http.Client{Timeout: 5 * time.Second}
		client := newTestClient(t, fb, WithHTTPClient(custom))
		assert.Equal(t, custom, client.transport.client)
	})

	t.Run("strict errors", func(t *testing.T) {
		client := newTestClient(t, fb, WithStrictErrors())
		assert.True(t, client.dispatcher.strict)
	})
}

func TestClientReplaysSessionCookie(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)

	_, err := client.User(context.Background())
	require.NoError(t, err)

	req, _ := fb.last()
	assert.Equal(t, "rh_sso=tok", req.Header.Get("Cookie"))
}

func TestClientDomains(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)
	ctx := context.Background()

	domains, err := client.Domains(ctx)
	require.NoError(t, err)
	require.Len(t, domains, 2)
	assert.Equal(t, "alpha", domains[0].ID)
	assert.Equal(t, "beta", domains[1].ID)

	d, err := client.FindDomain(ctx, "beta")
	require.NoError(t, err)
	assert.Equal(t, "beta", d.ID)

	_, err = client.FindDomain(ctx, "gamma")
	assert.ErrorIs(t, err, ErrResourceNotFound)

	created, err := client.AddDomain(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, "fresh", created.ID)

	req, form := fb.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	assert.Equal(t, "fresh", form["id"])
}

func TestClientAddDomainConflict(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)

	_, err := client.AddDomain(context.Background(), "taken")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "already in use")
}

func TestClientApplications(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)
	ctx := context.Background()

	app, err := client.FindApplication(ctx, "shop")
	require.NoError(t, err)
	assert.Equal(t, "beta", app.DomainID)

	_, err = client.FindApplication(ctx, "missing")
	assert.ErrorIs(t, err, ErrResourceNotFound)

	require.NoError(t, client.StartApplication(ctx, app))
	req, form := fb.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/broker/rest/domains/beta/applications/shop/events", req.URL.Path)
	assert.Equal(t, "start", form["event"])

	require.NoError(t, client.StopApplication(ctx, app, false))
	req, form = fb.last()
	assert.Equal(t, "/broker/rest/domains/beta/applications/shop/events", req.URL.Path)
	assert.Equal(t, "stop", form["event"])

	require.NoError(t, client.StopApplication(ctx, app, true))
	_, form = fb.last()
	assert.Equal(t, "force-stop", form["event"])

	require.NoError(t, client.RestartApplication(ctx, app))
	_, form = fb.last()
	assert.Equal(t, "restart", form["event"])

	require.NoError(t, client.DeleteApplication(ctx, app))
	req, _ = fb.last()
	assert.Equal(t, http.MethodDelete, req.Method)
}

func TestClientAddApplicationInvalid(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)
	ctx := context.Background()

	d, err := client.FindDomain(ctx, "beta")
	require.NoError(t, err)

	_, err = client.AddApplication(ctx, d, "new", "cobol-1.0")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "cartridge", apiErr.Attribute)
}

func TestClientMissingLinkAndParams(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)
	ctx := context.Background()

	_, err := client.Applications(ctx, &Domain{ID: "bare"})
	assert.ErrorIs(t, err, ErrLinkNotFound)

	before, _ := fb.last()
	_, err = client.call(ctx, client.links, LinkAddDomain, nil)
	assert.ErrorIs(t, err, ErrMissingParam)
	after, _ := fb.last()
	assert.Same(t, before, after, "request must not be sent")
}

func TestClientCartridgesAndKeys(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)
	ctx := context.Background()

	carts, err := client.Cartridges(ctx)
	require.NoError(t, err)
	require.Len(t, carts, 2)

	cart, err := client.FindCartridge(ctx, "mysql-5.1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmbedded())

	keys, err := client.Keys(ctx)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, "default", keys[0].Name)

	_, err = client.FindKey(ctx, "laptop")
	assert.ErrorIs(t, err, ErrResourceNotFound)

	key, err := client.AddKey(ctx, "laptop", "BBBB", "ssh-rsa")
	require.NoError(t, err)
	assert.Equal(t, "laptop", key.Name)
	_, form := fb.last()
	assert.Equal(t, "BBBB", form["content"])
}

func TestClientUpdateAndDeleteDomain(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)
	ctx := context.Background()

	d, err := client.FindDomain(ctx, "beta")
	require.NoError(t, err)

	renamed, err := client.UpdateDomain(ctx, d, "gamma")
	require.NoError(t, err)
	assert.Equal(t, "gamma", renamed.ID)

	req, form := fb.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/broker/rest/domains/beta", req.URL.Path)
	assert.Equal(t, "application/x-www-form-urlencoded", req.Header.Get("Content-Type"))
	assert.Equal(t, "gamma", form["id"])
	assert.Empty(t, req.URL.RawQuery)

	tests := []struct {
		name  string
		force bool
		query string
	}{
		{name: "forced", force: true, query: "force=true"},
		{name: "not forced", force: false, query: "force=false"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, client.DeleteDomain(ctx, d, tt.force))

			req, _ := fb.last()
			assert.Equal(t, http.MethodDelete, req.Method)
			assert.Equal(t, "/broker/rest/domains/beta", req.URL.Path)
			assert.Equal(t, tt.query, req.URL.RawQuery)
			assert.Empty(t, req.Header.Get("Content-Type"))
		})
	}
}

func TestClientQueryJoinsExistingQuery(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)
	ctx := context.Background()

	link := Link{Method: "delete", Href: fb.server.URL + "/broker/rest/domains/beta?scope=all"}
	res, err := client.send(ctx, link, map[string]string{"force": "true"})
	require.NoError(t, err)
	assert.True(t, res.NoContent)

	req, form := fb.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "scope=all&force=true", req.URL.RawQuery)
	assert.Equal(t, "all", form["scope"])
	assert.Equal(t, "true", form["force"])

	t.Run("no params keeps href", func(t *testing.T) {
		req, err := client.newRequest(ctx, Link{Method: "GET", Href: link.Href}, nil)
		require.NoError(t, err)
		assert.Equal(t, link.Href, req.URL.String())
		assert.Nil(t, req.Body)
	})
}

func TestClientApplicationCartridges(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)
	ctx := context.Background()

	app, err := client.FindApplication(ctx, "shop")
	require.NoError(t, err)

	carts, err := client.ApplicationCartridges(ctx, app)
	require.NoError(t, err)
	require.Len(t, carts, 1)
	assert.Equal(t, "mysql-5.1", carts[0].Name)

	req, _ := fb.last()
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "/broker/rest/domains/beta/applications/shop/cartridges", req.URL.Path)

	added, err := client.AddCartridge(ctx, app, "postgresql-8.4")
	require.NoError(t, err)
	assert.Equal(t, "postgresql-8.4", added.Name)

	req, form := fb.last()
	assert.Equal(t, http.MethodPost, req.Method)
	assert.Equal(t, "/broker/rest/domains/beta/applications/shop/cartridges", req.URL.Path)
	assert.Equal(t, "postgresql-8.4", form["name"])

	cart := carts[0]
	events := []struct {
		name  string
		run   func(context.Context, *Cartridge) error
		event string
	}{
		{name: "start", run: client.StartCartridge, event: "start"},
		{name: "stop", run: client.StopCartridge, event: "stop"},
		{name: "restart", run: client.RestartCartridge, event: "restart"},
		{name: "reload", run: client.ReloadCartridge, event: "reload"},
	}

	for _, tt := range events {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.run(ctx, cart))

			req, form := fb.last()
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "/broker/rest/domains/beta/applications/shop/cartridges/mysql-5.1/events", req.URL.Path)
			assert.Equal(t, tt.event, form["event"])
		})
	}

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, client.DeleteCartridge(ctx, cart))

		req, _ := fb.last()
		assert.Equal(t, http.MethodDelete, req.Method)
		assert.Equal(t, "/broker/rest/domains/beta/applications/shop/cartridges/mysql-5.1", req.URL.Path)
		assert.Empty(t, req.URL.RawQuery)
	})
}

func TestClientUpdateAndDeleteKey(t *testing.T) {
	fb := newFakeBroker(t)
	client := newTestClient(t, fb)
	ctx := context.Background()

	key, err := client.FindKey(ctx, "default")
	require.NoError(t, err)

	updated, err := client.UpdateKey(ctx, key, "ssh-dss", "CCCC")
	require.NoError(t, err)
	assert.Equal(t, "ssh-dss", updated.Type)
	assert.Equal(t, "CCCC", updated.Content)

	req, form := fb.last()
	assert.Equal(t, http.MethodPut, req.Method)
	assert.Equal(t, "/broker/rest/user/keys/default", req.URL.Path)
	assert.Equal(t, "ssh-dss", form["type"])
	assert.Equal(t, "CCCC", form["content"])

	require.NoError(t, client.DeleteKey(ctx, key))
	req, _ = fb.last()
	assert.Equal(t, http.MethodDelete, req.Method)
	assert.Equal(t, "/broker/rest/user/keys/default", req.URL.Path)
}

func TestClientErrorStatusWithoutErrorMessage(t *testing.T) {
	fb := newFakeBroker(t)
	ctx := context.Background()
	gone := Links{
		LinkGetUser: {Rel: LinkGetUser, Method: "GET", Href: fb.server.URL + "/broker/rest/gone"},
		LinkStop:    {Rel: LinkStop, Method: "POST", Href: fb.server.URL + "/broker/rest/gone"},
	}

	t.Run("typed operation reports the status", func(t *testing.T) {
		client := newTestClient(t, fb)
		client.links = gone

		_, err := client.User(ctx)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrUnexpectedStatus)
		assert.NotErrorIs(t, err, ErrMalformedResponse)

		var statusErr *UnexpectedStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	})

	t.Run("event operation succeeds", func(t *testing.T) {
		client := newTestClient(t, fb)

		err := client.StopCartridge(ctx, &Cartridge{Name: "mysql-5.1", Links: gone})
		assert.NoError(t, err)

		req, form := fb.last()
		assert.Equal(t, "/broker/rest/gone", req.URL.Path)
		assert.Equal(t, "stop", form["event"])
	})

	t.Run("event operation in strict mode", func(t *testing.T) {
		client := newTestClient(t, fb, WithStrictErrors())

		err := client.StopCartridge(ctx, &Cartridge{Name: "mysql-5.1", Links: gone})
		var statusErr *UnexpectedStatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	})
}

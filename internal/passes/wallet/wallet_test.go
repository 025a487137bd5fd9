package wallet

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	goption "google.golang.org/api/option"
	"google.golang.org/api/walletobjects/v1"

	"raseed/internal/core"
)

const basePath = "/walletobjects/v1/"

// fakeWallet is a minimal in-process stand-in for the Wallet REST API.
type fakeWallet struct {
	mu       sync.Mutex
	objects  map[string]*walletobjects.GenericObject
	classes  map[string]bool
	order    []string
	pageSize int
	calls    []string
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{objects: map[string]*walletobjects.GenericObject{}, classes: map[string]bool{}, pageSize: 2}
}

func (f *fakeWallet) add(o *walletobjects.GenericObject) {
	f.objects[o.Id] = o
	f.order = append(f.order, o.Id)
}

func (f *fakeWallet) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET "+basePath+"genericObject", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.calls = append(f.calls, "list:"+r.URL.Query().Get("token"))
		classID := r.URL.Query().Get("classId")
		var matching []*walletobjects.GenericObject
		for _, id := range f.order {
			if f.objects[id].ClassId == classID {
				matching = append(matching, f.objects[id])
			}
		}
		start := 0
		if tok := r.URL.Query().Get("token"); tok != "" {
			start = len(tok)
		}
		end := start + f.pageSize
		resp := walletobjects.GenericObjectListResponse{Pagination: &walletobjects.Pagination{}}
		if end < len(matching) {
			resp.Pagination.NextPageToken = strings.Repeat("x", end)
		} else {
			end = len(matching)
		}
		resp.Resources = matching[start:end]
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("GET "+basePath+"genericObject/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		o, ok := f.objects[r.PathValue("id")]
		if !ok {
			notFound(w)
			return
		}
		_ = json.NewEncoder(w).Encode(o)
	})
	mux.HandleFunc("POST "+basePath+"genericObject", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var o walletobjects.GenericObject
		_ = json.NewDecoder(r.Body).Decode(&o)
		f.calls = append(f.calls, "insert:"+o.Id)
		f.add(&o)
		_ = json.NewEncoder(w).Encode(&o)
	})
	mux.HandleFunc("PUT "+basePath+"genericObject/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var o walletobjects.GenericObject
		_ = json.NewDecoder(r.Body).Decode(&o)
		f.calls = append(f.calls, "update:"+r.PathValue("id"))
		f.objects[r.PathValue("id")] = &o
		_ = json.NewEncoder(w).Encode(&o)
	})
	mux.HandleFunc("GET "+basePath+"genericClass/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.classes[r.PathValue("id")] {
			notFound(w)
			return
		}
		_ = json.NewEncoder(w).Encode(walletobjects.GenericClass{Id: r.PathValue("id")})
	})
	mux.HandleFunc("POST "+basePath+"genericClass", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var c walletobjects.GenericClass
		_ = json.NewDecoder(r.Body).Decode(&c)
		f.calls = append(f.calls, "insertClass:"+c.Id)
		f.classes[c.Id] = true
		_ = json.NewEncoder(w).Encode(&c)
	})
	return mux
}

func notFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	_, _ = w.Write([]byte(`{"error":{"code":404,"message":"not found"}}`))
}

func newTestClient(t *testing.T, f *fakeWallet) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	svc, err := walletobjects.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication())
	require.NoError(t, err)
	return NewWithService(svc, nil)
}

func receiptObject(id, classID, date, total string) *walletobjects.GenericObject {
	return &walletobjects.GenericObject{
		Id:      id,
		ClassId: classID,
		State:   "ACTIVE",
		TextModulesData: []*walletobjects.TextModuleData{
			{Id: core.ModuleDate, Header: "Date", Body: date},
			{Id: core.ModuleTotal, Header: "Total", Body: total},
		},
	}
}

func TestFetchPassesFollowsPageTokens(t *testing.T) {
	f := newFakeWallet()
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		f.add(receiptObject("issuer."+id, "issuer.GroceryClass", "2025-07-26", "USD 1"))
	}
	f.add(receiptObject("issuer.t", "issuer.TravelClass", "2025-07-26", "USD 1"))
	c := newTestClient(t, f)

	got, err := c.FetchPasses(context.Background(), "issuer.GroceryClass")
	require.NoError(t, err)
	require.Len(t, got, 5)
	for i, id := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, "issuer."+id, got[i].ID)
	}
	assert.Equal(t, []string{"list:", "list:xx", "list:xxxx"}, f.calls)
}

func TestFetchPassesEmptyClass(t *testing.T) {
	c := newTestClient(t, newFakeWallet())
	got, err := c.FetchPasses(context.Background(), "issuer.EducationClass")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpsertPassInsertsThenUpdates(t *testing.T) {
	f := newFakeWallet()
	c := newTestClient(t, f)
	p := core.Pass{
		ID:          "issuer.insight",
		ClassID:     "issuer.InsightClass",
		CardTitle:   "Monthly insight",
		TextModules: []core.TextModule{{ID: core.ModuleSummary, Header: "Summary", Body: "first"}},
	}

	id, err := c.UpsertPass(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "issuer.insight", id)

	p.TextModules[0].Body = "second"
	_, err = c.UpsertPass(context.Background(), p)
	require.NoError(t, err)

	assert.Equal(t, []string{"insert:issuer.insight", "update:issuer.insight"}, f.calls)
	stored := ToPass(f.objects["issuer.insight"])
	assert.Equal(t, "second", stored.TextModules[0].Body)
	assert.Equal(t, "Monthly insight", stored.CardTitle)
	assert.Equal(t, "ACTIVE", stored.State)
}

func TestUpsertPassRequiresIDs(t *testing.T) {
	c := newTestClient(t, newFakeWallet())
	_, err := c.UpsertPass(context.Background(), core.Pass{ClassID: "issuer.X"})
	assert.Error(t, err)
}

func TestEnsureClassCreatesOnce(t *testing.T) {
	f := newFakeWallet()
	c := newTestClient(t, f)

	require.NoError(t, c.EnsureClass(context.Background(), "issuer.InsightClass"))
	require.NoError(t, c.EnsureClass(context.Background(), "issuer.InsightClass"))
	assert.Equal(t, []string{"insertClass:issuer.InsightClass"}, f.calls)
}

func TestCredentialsLoad(t *testing.T) {
	b, err := Credentials{JSON: `{"type":"service_account"}`, File: "/does/not/matter"}.Load()
	require.NoError(t, err)
	assert.Contains(t, string(b), "service_account")

	_, err = Credentials{File: t.TempDir() + "/missing.json"}.Load()
	assert.Error(t, err)

	_, err = Credentials{}.Load()
	assert.Error(t, err)
}

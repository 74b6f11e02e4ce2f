package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"
)

// countServer serves rest2 count queries from a map of query string to total.
func countServer(t *testing.T, totals map[string]int) (*Client, *[]string) {
	t.Helper()
	var queries []string

	r := chi.NewRouter()
	r.Get("/api/v2/{entity}", func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query().Get("q")
		queries = append(queries, chi.URLParam(req, "entity")+"?"+q)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"total":%d}`, totals[q])
	})

	return newTestClient(t, r), &queries
}

func TestResourceExists(t *testing.T) {
	cases := []struct {
		name  string
		total int
		want  bool
	}{
		{"no match", 0, false},
		{"one match", 1, true},
		{"many matches", 7, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			api, queries := countServer(t, map[string]int{"id==biobank": tc.total})
			exists, err := api.ResourceExists(context.Background(), "biobank", Package)
			if err != nil {
				t.Fatalf("resource exists: %v", err)
			}
			if exists != tc.want {
				t.Fatalf("exists = %v, want %v", exists, tc.want)
			}
			if len(*queries) != 1 || (*queries)[0] != "sys_md_Package?id==biobank" {
				t.Fatalf("unexpected queries: %v", *queries)
			}
		})
	}
}

func TestOneResourceExists(t *testing.T) {
	api, queries := countServer(t, map[string]int{"id=in=(a,b,c)": 1})
	exists, err := api.OneResourceExists(context.Background(), []string{"a", "b", "c"}, EntityType)
	if err != nil {
		t.Fatalf("one resource exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected exists")
	}
	if (*queries)[0] != "sys_md_EntityType?id=in=(a,b,c)" {
		t.Fatalf("unexpected query: %v", *queries)
	}
}

func TestEnsureResourceExists(t *testing.T) {
	api, _ := countServer(t, map[string]int{"id==present": 1})

	if err := api.EnsureResourceExists(context.Background(), "present", Plugin); err != nil {
		t.Fatalf("expected nil for existing resource, got %v", err)
	}

	err := api.EnsureResourceExists(context.Background(), "absent", Plugin)
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
	if notFound.Error() != "No Plugin found with id absent" {
		t.Fatalf("unexpected message: %v", notFound)
	}
}

func TestUserLookupIsCaseSensitive(t *testing.T) {
	api, queries := countServer(t, map[string]int{"username==Henk": 1})
	exists, err := api.UserExists(context.Background(), "Henk")
	if err != nil {
		t.Fatalf("user exists: %v", err)
	}
	if !exists {
		t.Fatalf("expected user to exist")
	}
	if (*queries)[0] != "sys_sec_User?username==Henk" {
		t.Fatalf("username must not be re-cased: %v", *queries)
	}
}

func TestRoleLookupUppercases(t *testing.T) {
	totals := map[string]int{"name==ADMIN": 1}
	for _, name := range []string{"admin", "ADMIN", "Admin"} {
		api, queries := countServer(t, totals)
		exists, err := api.RoleExists(context.Background(), name)
		if err != nil {
			t.Fatalf("role exists(%s): %v", name, err)
		}
		if !exists {
			t.Fatalf("expected role %s to exist", name)
		}
		if (*queries)[0] != "sys_sec_Role?name==ADMIN" {
			t.Fatalf("expected uppercased lookup for %s, got %v", name, *queries)
		}
	}
}

func TestPrincipalExistsRejectsUnknownType(t *testing.T) {
	api, queries := countServer(t, nil)
	_, err := api.PrincipalExists(context.Background(), "someone", PrincipalType("group"))
	if err == nil {
		t.Fatalf("expected error for unknown principal type")
	}
	if len(*queries) != 0 {
		t.Fatalf("no network call expected, got %v", *queries)
	}
}

func TestGrantRolePayload(t *testing.T) {
	var form url.Values
	var path string

	r := chi.NewRouter()
	r.Post("/menu/admin/permissionmanager/update/{resource}/{principal}", func(w http.ResponseWriter, req *http.Request) {
		if err := req.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		form = req.PostForm
		path = req.URL.Path
	})

	api := newTestClient(t, r)
	err := api.Grant(context.Background(), PrincipalRole, "curator", EntityType, "celiac_sprue", "write")
	if err != nil {
		t.Fatalf("grant: %v", err)
	}
	if path != "/menu/admin/permissionmanager/update/entityclass/role" {
		t.Fatalf("unexpected path %s", path)
	}
	if got := form.Get("rolename"); got != "CURATOR" {
		t.Fatalf("rolename = %q, want CURATOR", got)
	}
	if form.Get("username") != "" {
		t.Fatalf("username must be absent for a role grant")
	}
	if got := form.Get("radio-celiac_sprue"); got != "write" {
		t.Fatalf("radio-celiac_sprue = %q, want write", got)
	}
}

func TestGrantUserPayloadKeepsCase(t *testing.T) {
	var form url.Values

	r := chi.NewRouter()
	r.Post("/menu/admin/permissionmanager/update/{resource}/{principal}", func(w http.ResponseWriter, req *http.Request) {
		req.ParseForm()
		form = req.PostForm
	})

	api := newTestClient(t, r)
	if err := api.Grant(context.Background(), PrincipalUser, "curator", Theme, "bootstrap", "read"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if got := form.Get("username"); got != "curator" {
		t.Fatalf("username = %q, want curator (unchanged case)", got)
	}
	if form.Get("rolename") != "" {
		t.Fatalf("rolename must be absent for a user grant")
	}
}

func TestGrantUnknownPrincipalFailsBeforeNetwork(t *testing.T) {
	var calls int
	r := chi.NewRouter()
	r.Post("/*", func(w http.ResponseWriter, req *http.Request) { calls++ })

	api := newTestClient(t, r)
	err := api.Grant(context.Background(), PrincipalType("team"), "x", Package, "p", "read")
	if err == nil {
		t.Fatalf("expected error for unknown principal type")
	}
	if calls != 0 {
		t.Fatalf("expected no network call, got %d", calls)
	}
}

func TestVersion(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v2/version", func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, `{"molgenisVersion":"8.3.0"}`)
	})

	api := newTestClient(t, r)
	version, err := api.Version(context.Background())
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if version != "8.3.0" {
		t.Fatalf("unexpected version %q", version)
	}
}

func TestImportByURL(t *testing.T) {
	var query url.Values

	r := chi.NewRouter()
	r.Post("/plugin/importwizard/importByUrl", func(w http.ResponseWriter, req *http.Request) {
		query = req.URL.Query()
	})

	api := newTestClient(t, r)
	params := url.Values{}
	params.Set("url", "https://example.org/dataset.xlsx")
	params.Set("action", "add")
	if err := api.ImportByURL(context.Background(), params); err != nil {
		t.Fatalf("import by url: %v", err)
	}
	if query.Get("url") != "https://example.org/dataset.xlsx" || query.Get("action") != "add" {
		t.Fatalf("unexpected query: %v", query)
	}
}

func TestDeleteRows(t *testing.T) {
	var payload, method string

	r := chi.NewRouter()
	r.Delete("/api/v2/org_example_Sample", func(w http.ResponseWriter, req *http.Request) {
		method = req.Method
		body, _ := io.ReadAll(req.Body)
		payload = string(body)
	})

	api := newTestClient(t, r)
	if err := api.DeleteRows(context.Background(), "org_example_Sample", []string{"s1", "s2"}); err != nil {
		t.Fatalf("delete rows: %v", err)
	}
	if method != http.MethodDelete {
		t.Fatalf("unexpected method %s", method)
	}
	if payload != `{"entityIds":["s1","s2"]}` {
		t.Fatalf("unexpected payload %s", payload)
	}
}

func TestDeleteAllRows(t *testing.T) {
	var called bool

	r := chi.NewRouter()
	r.Delete("/api/v1/org_example_Sample", func(w http.ResponseWriter, req *http.Request) {
		called = true
	})

	api := newTestClient(t, r)
	if err := api.DeleteAllRows(context.Background(), "org_example_Sample"); err != nil {
		t.Fatalf("delete all rows: %v", err)
	}
	if !called {
		t.Fatalf("expected delete call")
	}
}

func TestImportFileUploadsMultipart(t *testing.T) {
	dir := t.TempDir()
	filePath := filepath.Join(dir, "dataset.xlsx")
	if err := os.WriteFile(filePath, []byte("cells"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	var fileName, fileContent, action string

	r := chi.NewRouter()
	r.Post("/plugin/importwizard/importFile", func(w http.ResponseWriter, req *http.Request) {
		action = req.URL.Query().Get("action")
		file, header, err := req.FormFile("file")
		if err != nil {
			t.Errorf("form file: %v", err)
			return
		}
		defer file.Close()
		fileName = header.Filename
		content, _ := io.ReadAll(file)
		fileContent = string(content)
	})

	api := newTestClient(t, r)
	params := url.Values{"action": []string{"add"}}
	if err := api.ImportFile(context.Background(), filePath, params); err != nil {
		t.Fatalf("import file: %v", err)
	}
	if fileName != "dataset.xlsx" || fileContent != "cells" {
		t.Fatalf("unexpected upload: %q %q", fileName, fileContent)
	}
	if action != "add" {
		t.Fatalf("unexpected action %q", action)
	}
}

func TestFindGroupPrefersLongestPrefix(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v2/sys_sec_Group", func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, `{"items":[{"name":"bio"},{"name":"biobank"},{"name":"other"}]}`)
	})

	api := newTestClient(t, r)
	group, err := api.FindGroup(context.Background(), "BIOBANK_MANAGER")
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if group != "biobank" {
		t.Fatalf("expected longest matching group, got %q", group)
	}
}

func TestFindGroupNotFound(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/api/v2/sys_sec_Group", func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, `{"items":[{"name":"other"}]}`)
	})

	api := newTestClient(t, r)
	_, err := api.FindGroup(context.Background(), "BIOBANK_MANAGER")
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T: %v", err, err)
	}
}

func TestMakeMember(t *testing.T) {
	var payload string

	r := chi.NewRouter()
	r.Get("/api/v2/sys_sec_Group", func(w http.ResponseWriter, req *http.Request) {
		io.WriteString(w, `{"items":[{"name":"biobank"}]}`)
	})
	r.Post("/api/plugin/security/group/biobank/member", func(w http.ResponseWriter, req *http.Request) {
		body, _ := io.ReadAll(req.Body)
		payload = string(body)
	})

	api := newTestClient(t, r)
	if err := api.MakeMember(context.Background(), "henk", "biobank_manager"); err != nil {
		t.Fatalf("make member: %v", err)
	}
	want := `{"roleName":"BIOBANK_MANAGER","username":"henk"}`
	if payload != want {
		t.Fatalf("payload = %s, want %s", payload, want)
	}
}

func TestLowerKebab(t *testing.T) {
	cases := map[string]string{
		"BIOBANK_MANAGER": "biobank-manager",
		"My Role":         "my-role",
		"plain":           "plain",
	}
	for in, want := range cases {
		if got := lowerKebab(in); got != want {
			t.Fatalf("lowerKebab(%q) = %q, want %q", in, got, want)
		}
	}
}

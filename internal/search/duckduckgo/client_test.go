package duckduckgo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iWorld-y/hn_digest/internal/search"
)

const litePage = `<html><body><table>
<tr><td>1.&nbsp;</td><td><a rel="nofollow" href="https://foo.test/post" class='result-link'>Foo &amp; friends</a></td></tr>
<tr><td></td><td class='result-snippet'>Foo is a new tool.</td></tr>
<tr><td>2.&nbsp;</td><td><a rel="nofollow" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fbar.test%2Fnews&amp;rut=x" class='result-link'>Bar news</a></td></tr>
<tr><td></td><td class='result-snippet'>  Bar shipped.  </td></tr>
<tr><td>3.&nbsp;</td><td><a rel="nofollow" href="https://baz.test" class='result-link'>Baz</a></td></tr>
<tr><td></td><td class='result-snippet'>Baz.</td></tr>
</table></body></html>`

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatal(err)
		}
		if r.PostForm.Get("q") != "Foo" {
			t.Errorf("q = %q", r.PostForm.Get("q"))
		}
		w.Write([]byte(litePage))
	}))
	defer srv.Close()

	resp, err := NewClient(srv.URL, srv.Client()).Search(context.Background(), &search.Request{Query: " Foo ", MaxResults: 2})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	want := []search.Result{
		{Title: "Foo & friends", URL: "https://foo.test/post", Content: "Foo is a new tool."},
		{Title: "Bar news", URL: "https://bar.test/news", Content: "Bar shipped."},
	}
	if len(resp.Results) != len(want) {
		t.Fatalf("Search() results = %+v", resp.Results)
	}
	for i := range want {
		if resp.Results[i] != want[i] {
			t.Errorf("result %d = %+v, want %+v", i, resp.Results[i], want[i])
		}
	}
}

func TestClient_EmptyQuery(t *testing.T) {
	if _, err := NewClient("", nil).Search(context.Background(), &search.Request{Query: "  "}); err == nil {
		t.Fatal("Search() expected error for empty query")
	}
}

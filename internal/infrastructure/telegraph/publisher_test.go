package telegraph

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHTMLToNodes(t *testing.T) {
	t.Parallel()

	nodes, err := htmlToNodes(`<img src="https://img/0"/><h3>Day one</h3><p>Walk the <b>old town</b>.</p><ul><li>khinkali</li></ul>`)
	if err != nil {
		t.Fatalf("htmlToNodes: %v", err)
	}

	if len(nodes) != 4 {
		t.Fatalf("expected 4 top-level nodes, got %d: %v", len(nodes), nodes)
	}

	img, ok := nodes[0].(node)
	if !ok || img.Tag != "img" || img.Attrs["src"] != "https://img/0" {
		t.Fatalf("unexpected img node: %+v", nodes[0])
	}

	p, ok := nodes[2].(node)
	if !ok || p.Tag != "p" {
		t.Fatalf("unexpected paragraph node: %+v", nodes[2])
	}
	if len(p.Children) != 3 {
		t.Fatalf("expected text+bold+text children, got %v", p.Children)
	}
	if b, ok := p.Children[1].(node); !ok || b.Tag != "b" {
		t.Fatalf("expected bold child, got %v", p.Children[1])
	}
}

func TestHTMLToNodesUnwrapsUnknownTags(t *testing.T) {
	t.Parallel()

	nodes, err := htmlToNodes(`<div><p>kept</p></div><span>loose text</span>`)
	if err != nil {
		t.Fatalf("htmlToNodes: %v", err)
	}

	if len(nodes) != 2 {
		t.Fatalf("expected divs and spans unwrapped, got %v", nodes)
	}
	if p, ok := nodes[0].(node); !ok || p.Tag != "p" {
		t.Fatalf("div must unwrap to its paragraph, got %v", nodes[0])
	}
	if text, ok := nodes[1].(string); !ok || text != "loose text" {
		t.Fatalf("span must unwrap to text, got %v", nodes[1])
	}
}

func TestCreatePage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		if r.Form.Get("access_token") != "secret" {
			t.Errorf("missing access token")
		}
		var content []any
		if err := json.Unmarshal([]byte(r.Form.Get("content")), &content); err != nil {
			t.Errorf("content is not valid JSON: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true,"result":{"url":"https://telegra.ph/test-page"}}`))
	}))
	defer server.Close()

	pub := NewPublisher("secret", "zenbot", server.Client())
	pub.apiBase = server.URL

	pageURL, err := pub.CreatePage(context.Background(), "Test", "<p>hello</p>")
	if err != nil {
		t.Fatalf("CreatePage: %v", err)
	}
	if pageURL != "https://telegra.ph/test-page" {
		t.Fatalf("url = %s", pageURL)
	}
}

func TestCreatePageAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error":"CONTENT_REQUIRED"}`))
	}))
	defer server.Close()

	pub := NewPublisher("secret", "zenbot", server.Client())
	pub.apiBase = server.URL

	if _, err := pub.CreatePage(context.Background(), "Test", "<p>hello</p>"); err == nil {
		t.Fatalf("expected error for not-ok response")
	}
}

package telegraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/ports"
)

const defaultAPIBase = "https://api.telegra.ph"

// Telegraph accepts a subset of tags; anything else is unwrapped into its
// children.
var allowedTags = map[string]bool{
	"a": true, "aside": true, "b": true, "blockquote": true, "br": true,
	"code": true, "em": true, "figcaption": true, "figure": true,
	"h3": true, "h4": true, "hr": true, "i": true, "iframe": true,
	"img": true, "li": true, "ol": true, "p": true, "pre": true,
	"s": true, "strong": true, "u": true, "ul": true, "video": true,
}

// Publisher implements ports.ArchivePagePublisher on the Telegraph API.
type Publisher struct {
	accessToken string
	authorName  string
	apiBase     string
	client      *http.Client
}

var _ ports.ArchivePagePublisher = (*Publisher)(nil)

// NewPublisher wires credentials; client may be nil.
func NewPublisher(accessToken, authorName string, client *http.Client) *Publisher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Publisher{
		accessToken: accessToken,
		authorName:  authorName,
		apiBase:     defaultAPIBase,
		client:      client,
	}
}

// node is Telegraph's DOM-ish content element.
type node struct {
	Tag      string            `json:"tag,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Children []any             `json:"children,omitempty"`
}

// CreatePage converts the HTML content into Telegraph's node tree and posts
// it, returning the page URL.
func (p *Publisher) CreatePage(ctx context.Context, title, htmlContent string) (string, error) {
	if p.accessToken == "" {
		return "", fmt.Errorf("telegraph publisher misconfigured")
	}

	nodes, err := htmlToNodes(htmlContent)
	if err != nil {
		return "", fmt.Errorf("convert content: %w", err)
	}
	content, err := json.Marshal(nodes)
	if err != nil {
		return "", fmt.Errorf("marshal content: %w", err)
	}

	form := url.Values{}
	form.Set("access_token", p.accessToken)
	form.Set("title", title)
	form.Set("author_name", p.authorName)
	form.Set("content", string(content))
	form.Set("return_content", "false")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.apiBase+"/createPage", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var envelope struct {
		OK     bool   `json:"ok"`
		Error  string `json:"error"`
		Result struct {
			URL string `json:"url"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if !envelope.OK {
		return "", fmt.Errorf("telegraph error: %s (%s)", envelope.Error, resp.Status)
	}
	return envelope.Result.URL, nil
}

// htmlToNodes parses an HTML fragment and maps its elements onto Telegraph
// nodes, unwrapping unsupported tags.
func htmlToNodes(fragment string) ([]any, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return nil, err
	}

	body := doc.Find("body")
	if len(body.Nodes) == 0 {
		return nil, fmt.Errorf("empty document")
	}

	var out []any
	for child := body.Nodes[0].FirstChild; child != nil; child = child.NextSibling {
		out = append(out, convertNode(child)...)
	}
	return out, nil
}

func convertNode(n *html.Node) []any {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return []any{n.Data}
	case html.ElementNode:
		if !allowedTags[n.Data] {
			// Unwrap: keep the children, drop the tag.
			var out []any
			for child := n.FirstChild; child != nil; child = child.NextSibling {
				out = append(out, convertNode(child)...)
			}
			return out
		}

		elem := node{Tag: n.Data}
		for _, attr := range n.Attr {
			if attr.Key == "href" || attr.Key == "src" {
				if elem.Attrs == nil {
					elem.Attrs = map[string]string{}
				}
				elem.Attrs[attr.Key] = attr.Val
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			elem.Children = append(elem.Children, convertNode(child)...)
		}
		return []any{elem}
	default:
		return nil
	}
}

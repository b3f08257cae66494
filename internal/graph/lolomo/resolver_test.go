package lolomo

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/MakeNowJust/heredoc/v2"
	graphql "github.com/graph-gophers/graphql-go"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/tidwall/gjson"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/streamcat/lolomo/internal/artwork"
	"github.com/streamcat/lolomo/internal/catalog"
	"github.com/streamcat/lolomo/internal/config"
	"github.com/streamcat/lolomo/internal/graph"
	"github.com/streamcat/lolomo/internal/loader"
	"github.com/streamcat/lolomo/internal/metrics"
)

func newTestSchema(t *testing.T) *graphql.Schema {
	t.Helper()
	c, err := catalog.Load("")
	if err != nil {
		t.Fatalf("catalog.Load() error: %v", err)
	}
	schema, err := NewSchema(c, artwork.NewGenerator(), graph.SchemaOptions(config.GetConfig())...)
	if err != nil {
		t.Fatalf("NewSchema() error: %v", err)
	}
	return schema
}

// exec runs query with fresh request loaders and returns the JSON response.
func exec(t *testing.T, schema *graphql.Schema, query string, vars map[string]interface{}) string {
	t.Helper()
	ctx := loader.WithLoaders(context.Background(), loader.New(artwork.NewGenerator(), loader.Options{Wait: 50 * time.Millisecond}))
	resp := schema.Exec(ctx, query, "", vars)
	body, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return string(body)
}

func TestLolomo_ArtworkIsBatchedPerRequest(t *testing.T) {
	schema := newTestSchema(t)
	batches := testutil.ToFloat64(metrics.ArtworkBatchesTotal)
	generated := testutil.ToFloat64(metrics.ArtworkGeneratedTotal)

	body := exec(t, schema, heredoc.Doc(`
		{
			lolomo {
				id
				name
				shows { showId title artworkUrl }
			}
		}
	`), nil)

	if errs := gjson.Get(body, "errors"); errs.Exists() {
		t.Fatalf("unexpected errors: %s", errs.Raw)
	}
	rows := gjson.Get(body, "data.lolomo")
	if got := rows.Get("#.name").Raw; got != `["Top 10","Continue Watching"]` {
		t.Errorf("row names = %s", got)
	}
	if got := rows.Get("#.id").Raw; got != `[1,2]` {
		t.Errorf("row ids = %s", got)
	}
	if got := rows.Get("0.shows.#.showId").Raw; got != `[1,2,3,4,5,6,7,8,9,10]` {
		t.Errorf("Top 10 ids = %s", got)
	}
	if got := rows.Get("1.shows.#.showId").Raw; got != `[10,8,1]` {
		t.Errorf("Continue Watching ids = %s", got)
	}

	urls := map[string]string{}
	rows.ForEach(func(_, row gjson.Result) bool {
		row.Get("shows").ForEach(func(_, show gjson.Result) bool {
			title := show.Get("title").String()
			url := show.Get("artworkUrl").String()
			if !strings.HasSuffix(url, "-"+artwork.Slug(title)+".jpg") {
				t.Errorf("artworkUrl for %q = %q", title, url)
			}
			if prev, ok := urls[title]; ok && prev != url {
				t.Errorf("%q got two urls in one request: %q and %q", title, prev, url)
			}
			urls[title] = url
			return true
		})
		return true
	})

	// Continue Watching repeats three Top 10 shows, so 10 distinct titles.
	if d := testutil.ToFloat64(metrics.ArtworkBatchesTotal) - batches; d != 1 {
		t.Errorf("artwork batches = %v, want 1", d)
	}
	if d := testutil.ToFloat64(metrics.ArtworkGeneratedTotal) - generated; d != 10 {
		t.Errorf("artworks generated = %v, want 10", d)
	}
}

func TestSearch(t *testing.T) {
	t.Parallel()
	schema := newTestSchema(t)

	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"single match", "The", `["The Crown"]`},
		{"case insensitive", "sTrAnGeR", `["Stranger Things"]`},
		{"prefix only", "Crown", `[]`},
		{"no match", "zzz", `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body := exec(t, schema, `query($title: String!) { search(filter: {title: $title}) { title } }`,
				map[string]interface{}{"title": tt.prefix})
			if got := gjson.Get(body, "data.search.#.title").Raw; got != tt.want {
				t.Errorf("search(%q) = %s, want %s", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestShow(t *testing.T) {
	t.Parallel()
	schema := newTestSchema(t)

	body := exec(t, schema, `{ show(showId: 3) { showId title categories } }`, nil)
	if got := gjson.Get(body, "data.show.title").String(); got != "The Crown" {
		t.Errorf("show(3).title = %q, body %s", got, body)
	}
	if !gjson.Get(body, "data.show.categories").IsArray() {
		t.Errorf("categories is not a list: %s", body)
	}

	body = exec(t, schema, `{ show(showId: 404) { title } }`, nil)
	if got := gjson.Get(body, "data.show"); got.Type != gjson.Null {
		t.Errorf("data.show = %s, want null", got.Raw)
	}
	if code := gjson.Get(body, "errors.0.extensions.code").String(); code != "NOT_FOUND" {
		t.Errorf("error code = %q, body %s", code, body)
	}
}

func TestArtworkURL_WithoutLoaders(t *testing.T) {
	t.Parallel()
	schema := newTestSchema(t)

	resp := schema.Exec(context.Background(), `{ show(showId: 12) { artworkUrl } }`, "", nil)
	if len(resp.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", resp.Errors)
	}
	if url := gjson.GetBytes(resp.Data, "show.artworkUrl").String(); !strings.HasSuffix(url, "-dark.jpg") {
		t.Errorf("artworkUrl = %q", url)
	}
}

func TestEntities(t *testing.T) {
	t.Parallel()
	schema := newTestSchema(t)
	query := heredoc.Doc(`
		query($representations: [_Any!]!) {
			_entities(representations: $representations) {
				... on Show { showId title }
			}
		}
	`)

	body := exec(t, schema, query, map[string]interface{}{
		"representations": []interface{}{
			map[string]interface{}{"__typename": "Show", "showId": float64(2)},
			map[string]interface{}{"__typename": "Show", "showId": float64(999)},
			map[string]interface{}{"__typename": "Show", "showId": "7"},
		},
	})
	if errs := gjson.Get(body, "errors"); errs.Exists() {
		t.Fatalf("unexpected errors: %s", errs.Raw)
	}
	entities := gjson.Get(body, "data._entities")
	if got := entities.Get("0.title").String(); got != "Ozark" {
		t.Errorf("_entities[0].title = %q", got)
	}
	if got := entities.Get("1"); got.Type != gjson.Null {
		t.Errorf("_entities[1] = %s, want null", got.Raw)
	}
	if got := entities.Get("2.title").String(); got != "Wednesday" {
		t.Errorf("_entities[2].title = %q", got)
	}
}

func TestEntities_BadRepresentation(t *testing.T) {
	t.Parallel()
	schema := newTestSchema(t)
	query := `query($r: [_Any!]!) { _entities(representations: $r) { ... on Show { title } } }`

	tests := []struct {
		name string
		rep  map[string]interface{}
	}{
		{"missing key", map[string]interface{}{"__typename": "Show"}},
		{"wrong typename", map[string]interface{}{"__typename": "Movie", "showId": float64(1)}},
		{"non numeric key", map[string]interface{}{"__typename": "Show", "showId": "one"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			body := exec(t, schema, query, map[string]interface{}{"r": []interface{}{tt.rep}})
			if code := gjson.Get(body, "errors.0.extensions.code").String(); code != "BAD_REPRESENTATION" {
				t.Errorf("error code = %q, body %s", code, body)
			}
		})
	}
}

func TestService_SDLMatchesGolden(t *testing.T) {
	t.Parallel()
	schema := newTestSchema(t)

	body := exec(t, schema, `{ _service { sdl } }`, nil)
	got := gjson.Get(body, "data._service.sdl").String()

	want, err := os.ReadFile("testdata/sdl.golden")
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	if got != string(want) {
		diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(string(want)),
			B:        difflib.SplitLines(got),
			FromFile: "testdata/sdl.golden",
			ToFile:   "_service.sdl",
			Context:  3,
		})
		t.Errorf("published SDL differs from golden file:\n%s", diff)
	}

	if _, err := gqlparser.LoadSchema(&ast.Source{Name: "lolomo.graphql", Input: got}); err != nil {
		t.Errorf("published SDL is not a valid subgraph schema: %v", err)
	}
}

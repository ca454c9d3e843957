package content

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/cebtenzzre/npf2html/common"
	"github.com/cebtenzzre/npf2html/config"
	"github.com/cebtenzzre/npf2html/state"
)

const samplePost = `{
	"id_string": "123",
	"blog": {"name": "staff", "url": "https://staff.tumblr.com/"},
	"summary": "Hello",
	"content": [
		{"type": "text", "text": "Hello"},
		{"type": "text", "subtype": "ordered-list-item", "text": "one"},
		{"type": "image", "media": [{"url": "https://example.com/a.png", "width": 100}], "alt_text": "a picture"}
	],
	"layout": [{"type": "rows", "display": [{"blocks": [0]}, {"blocks": [1, 2]}], "truncate_after": 0}],
	"trail": [{"blog": {"name": "origin"}, "post": {"id": "99"}, "content": [{"type": "text", "text": "first"}]}]
}`

func TestPrepare(t *testing.T) {
	ctx := state.ContextWithEnv(context.Background())
	log := zaptest.NewLogger(t)

	t.Run("post", func(t *testing.T) {
		c, err := Prepare(ctx, strings.NewReader(samplePost), "dir/post.json", common.OutputFmtPage, log)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		if c.SrcName != "dir/post.json" || c.OutputFormat != common.OutputFmtPage {
			t.Errorf("unexpected content: %+v", c)
		}
		if len(c.Posts) != 1 || c.Posts[0].ID != "123" {
			t.Fatalf("Posts = %+v", c.Posts)
		}
		if len(c.Posts[0].Content) != 3 || len(c.Posts[0].Trail) != 1 {
			t.Errorf("post was not fully decoded: %+v", c.Posts[0])
		}
	})

	t.Run("bare blocks get stable id", func(t *testing.T) {
		src := `[{"type": "text", "text": "anonymous"}]`
		c1, err := Prepare(ctx, strings.NewReader(src), "blocks.json", common.OutputFmtFragment, log)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		c2, err := Prepare(ctx, strings.NewReader(src), "blocks.json", common.OutputFmtFragment, log)
		if err != nil {
			t.Fatalf("Prepare() error = %v", err)
		}
		id := c1.Posts[0].ID
		if _, err := uuid.Parse(id); err != nil {
			t.Errorf("generated id %q is not UUID: %v", id, err)
		}
		if id != c2.Posts[0].ID {
			t.Errorf("generated ids differ: %q and %q", id, c2.Posts[0].ID)
		}
		if id != PostID("blocks.json", 0) {
			t.Errorf("generated id %q does not match PostID()", id)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		if _, err := Prepare(ctx, strings.NewReader(`{"content": [`), "bad.json", common.OutputFmtFragment, log); err == nil {
			t.Error("Prepare() expected error for malformed input")
		}
	})

	t.Run("no content", func(t *testing.T) {
		if _, err := Prepare(ctx, strings.NewReader(`{"name": "not a post"}`), "bad.json", common.OutputFmtFragment, log); err == nil {
			t.Error("Prepare() expected error for input without posts")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		if _, err := Prepare(cctx, strings.NewReader(samplePost), "post.json", common.OutputFmtFragment, log); err == nil {
			t.Error("Prepare() expected error for canceled context")
		}
	})
}

func TestPrepare_Report(t *testing.T) {
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)

	conf := config.ReporterConfig{Destination: filepath.Join(t.TempDir(), "report.zip")}
	rpt, err := conf.Prepare()
	if err != nil {
		t.Fatalf("unable to prepare report: %v", err)
	}
	env.Rpt = rpt

	if _, err := Prepare(ctx, strings.NewReader(samplePost), "post.json", common.OutputFmtFragment, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("unable to close report: %v", err)
	}
}

func TestPostID(t *testing.T) {
	if PostID("a.json", 0) == PostID("a.json", 1) {
		t.Error("PostID() must depend on index")
	}
	if PostID("a.json", 0) == PostID("b.json", 0) {
		t.Error("PostID() must depend on source name")
	}
	if PostID(`dir\a.json`, 0) == "" {
		t.Error("PostID() returned empty id")
	}
}

func TestContent_String(t *testing.T) {
	ctx := state.ContextWithEnv(context.Background())
	c, err := Prepare(ctx, strings.NewReader(samplePost), "post.json", common.OutputFmtPage, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}

	dump := c.String()
	for _, want := range []string{
		`Source "post.json" format[page] posts[1]`,
		"Post[0] id[123] blog[staff]",
		"Trail[0] post[99] blog[origin]",
		"type[text/ordered-list-item]",
		`text: "a picture"`,
		"Layout[0] type[rows]",
		"row[1]: [1,2]",
		"truncate_after: 0",
		"image: 1",
	} {
		if !strings.Contains(dump, want) {
			t.Errorf("dump does not contain %q:\n%s", want, dump)
		}
	}

	var nilContent *Content
	if nilContent.String() != "<nil Content>" {
		t.Error("String() on nil content")
	}
}

package html

import (
	"errors"
	"strings"
	"testing"

	"github.com/cebtenzzre/npf2html/npf"
)

func poster(url string, width int) []npf.VisualMedia {
	return []npf.VisualMedia{{Media: npf.Media{URL: url, Width: width, Height: width}}}
}

func TestRenderAudio(t *testing.T) {
	r := NewRenderer("", nil)
	song := &npf.Media{URL: "https://example.org/song.mp3"}

	tests := []struct {
		name  string
		block npf.AudioBlock
		want  string
	}{
		{
			name: "with_everything",
			block: npf.AudioBlock{
				Media:       song,
				Title:       "A Neat Song",
				Artist:      "A Neat Singer",
				Album:       "A Neat Record",
				Poster:      poster("https://example.org/poster.jpg", 150),
				Attribution: &npf.Attribution{Type: npf.AttributionLink, URL: "https://example.org/"},
			},
			want: `<figure class="npf-block-audio"><audio controls src="https://example.org/song.mp3"></audio>` +
				`<img src="https://example.org/poster.jpg"><figcaption>` +
				`<span class="npf-block-audio-title">A Neat Song</span>` +
				`<span class="npf-block-audio-artist">A Neat Singer</span>` +
				`<span class="npf-block-audio-album">A Neat Record</span>` +
				`<a class="npf-attribution npf-attribution-link" href="https://example.org/">https://example.org/</a>` +
				`</figcaption></figure>`,
		},
		{
			name:  "with_nothing",
			block: npf.AudioBlock{Media: song},
			want:  `<figure class="npf-block-audio"><audio controls src="https://example.org/song.mp3"></audio></figure>`,
		},
		{
			name:  "with_url",
			block: npf.AudioBlock{URL: "https://example.org/song"},
			want:  `<figure class="npf-block-audio"><a href="https://example.org/song">https://example.org/song</a></figure>`,
		},
		{
			name:  "prefers_media_to_embed_html",
			block: npf.AudioBlock{Media: song, EmbedHTML: "<marquee>total nonsense</marquee>"},
			want:  `<figure class="npf-block-audio"><audio controls src="https://example.org/song.mp3"></audio></figure>`,
		},
		{
			name:  "prefers_embed_html_to_embed_url",
			block: npf.AudioBlock{EmbedHTML: "<marquee>total nonsense</marquee>", EmbedURL: "https://example.org/frame"},
			want:  `<figure class="npf-block-audio"><marquee>total nonsense</marquee></figure>`,
		},
		{
			name:  "prefers_embed_url_to_url",
			block: npf.AudioBlock{EmbedURL: "https://example.org/frame", URL: "https://example.org/song"},
			want:  `<figure class="npf-block-audio"><iframe src="https://example.org/frame"></iframe></figure>`,
		},
		{
			name:  "escapes_title",
			block: npf.AudioBlock{Media: song, Title: `<&">`},
			want: `<figure class="npf-block-audio"><audio controls src="https://example.org/song.mp3"></audio>` +
				`<figcaption><span class="npf-block-audio-title">&lt;&amp;&#34;&gt;</span></figcaption></figure>`,
		},
		{
			name: "app_attribution_with_logo",
			block: npf.AudioBlock{
				EmbedHTML: "<iframe></iframe>",
				Attribution: &npf.Attribution{
					Type:        npf.AttributionApp,
					URL:         "https://open.spotify.com/track/1",
					AppName:     "Spotify",
					DisplayText: "Listen on Spotify",
					Logo:        &npf.VisualMedia{Media: npf.Media{URL: "https://static.example/logo.png", Width: 64}},
				},
			},
			want: `<figure class="npf-block-audio"><iframe></iframe><figcaption>` +
				`<a class="npf-attribution npf-attribution-app" href="https://open.spotify.com/track/1">Listen on Spotify` +
				`<img src="https://static.example/logo.png"></a></figcaption></figure>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.RenderAudio(&tt.block)
			if got != tt.want {
				t.Errorf("RenderAudio() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderVideo(t *testing.T) {
	r := NewRenderer("", nil)

	tests := []struct {
		name  string
		block npf.VideoBlock
		want  string
	}{
		{
			name: "media_with_poster",
			block: npf.VideoBlock{
				Media:  &npf.VisualMedia{Media: npf.Media{URL: "https://v/1.mp4"}},
				Poster: append(poster("https://v/small.jpg", 100), poster("https://v/big.jpg", 500)...),
			},
			want: `<figure class="npf-block-video"><video controls src="https://v/1.mp4" poster="https://v/big.jpg"></video></figure>`,
		},
		{
			name:  "iframe",
			block: npf.VideoBlock{EmbedIframe: &npf.IFrame{URL: "https://e/1", Width: 540, Height: 304}},
			want:  `<figure class="npf-block-video"><iframe src="https://e/1" width="540" height="304"></iframe></figure>`,
		},
		{
			name:  "embed_url",
			block: npf.VideoBlock{EmbedURL: "https://e/2"},
			want:  `<figure class="npf-block-video"><iframe src="https://e/2"></iframe></figure>`,
		},
		{
			name: "link_with_attribution",
			block: npf.VideoBlock{
				URL: "https://v/page",
				Attribution: &npf.Attribution{
					Type: npf.AttributionPost,
					URL:  "https://blog.example/post/1",
					Post: &npf.PostRef{ID: "1"},
					Blog: &npf.BlogInfo{Name: "blog", URL: "https://blog.example/"},
				},
			},
			want: `<figure class="npf-block-video"><a href="https://v/page">https://v/page</a><figcaption>` +
				`<a class="npf-attribution npf-attribution-post" href="https://blog.example/post/1">blog</a>` +
				`</figcaption></figure>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.RenderVideo(&tt.block)
			if got != tt.want {
				t.Errorf("RenderVideo() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRenderImage(t *testing.T) {
	r := NewRenderer("", nil)
	block := &npf.ImageBlock{
		Media: []npf.VisualMedia{
			{Media: npf.Media{URL: "https://i/a.jpg", Width: 100}},
			{Media: npf.Media{URL: "https://i/b.jpg", Width: 500}},
		},
		AltText:     "alt & text",
		Caption:     "caption",
		Attribution: &npf.Attribution{Type: npf.AttributionBlog, Blog: &npf.BlogInfo{Name: "src", URL: "https://src.example/"}},
	}
	want := `<figure class="npf-block-image"><a href="https://i/b.jpg">` +
		`<img src="https://i/b.jpg" srcset="https://i/a.jpg 100w, https://i/b.jpg 500w" alt="alt &amp; text"></a>` +
		`<figcaption><span class="npf-block-image-caption">caption</span>` +
		`<a class="npf-attribution npf-attribution-blog" href="https://src.example/">src</a>` +
		`</figcaption></figure>`
	if got := r.RenderImage(block); got != want {
		t.Errorf("RenderImage() =\n%s\nwant\n%s", got, want)
	}

	empty := &npf.ImageBlock{Attribution: &npf.Attribution{}}
	if got := r.RenderImage(empty); got != `<figure class="npf-block-image"></figure>` {
		t.Errorf("RenderImage() without media = %s", got)
	}
}

func TestRenderText(t *testing.T) {
	r := NewRenderer("tb", nil)

	tests := []struct {
		subtype npf.TextSubtype
		want    string
	}{
		{npf.TextPlain, `<p class="tb-block-text">x</p>`},
		{npf.TextHeading1, `<h1 class="tb-block-text tb-block-heading1">x</h1>`},
		{npf.TextHeading2, `<h2 class="tb-block-text tb-block-heading2">x</h2>`},
		{npf.TextQuote, `<blockquote class="tb-block-text tb-block-quote">x</blockquote>`},
		{npf.TextQuirky, `<p class="tb-block-text tb-block-quirky">x</p>`},
		{npf.TextChat, `<p class="tb-block-text tb-block-chat">x</p>`},
	}
	for _, tt := range tests {
		t.Run(string(tt.subtype)+"_text", func(t *testing.T) {
			got := r.RenderTextNoIndent(&npf.TextBlock{Text: "x", Subtype: tt.subtype})
			if got != tt.want {
				t.Errorf("RenderTextNoIndent() = %s, want %s", got, tt.want)
			}
		})
	}

	if got := r.RenderTextIndented(nil); got != "" {
		t.Errorf("RenderTextIndented(nil) = %q", got)
	}
}

func TestRenderLinkPollPaywall(t *testing.T) {
	r := NewRenderer("", nil)

	t.Run("link", func(t *testing.T) {
		got := r.RenderLink(&npf.LinkBlock{
			URL:         "https://l.example/a?b=1&c=2",
			Title:       "Title",
			Description: "Description",
			SiteName:    "Site",
		})
		want := `<a class="npf-block-link" href="https://l.example/a?b=1&amp;c=2">` +
			`<span class="npf-block-link-title">Title</span>` +
			`<span class="npf-block-link-description">Description</span>` +
			`<span class="npf-block-link-site">Site</span></a>`
		if got != want {
			t.Errorf("RenderLink() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("link_without_title", func(t *testing.T) {
		got := r.RenderLink(&npf.LinkBlock{URL: "https://l.example/", DisplayURL: "l.example"})
		if !strings.Contains(got, `<span class="npf-block-link-title">l.example</span>`) {
			t.Errorf("RenderLink() = %s", got)
		}
	})

	t.Run("poll", func(t *testing.T) {
		got := r.RenderPoll(&npf.PollBlock{
			Question: "Cats or dogs?",
			Answers:  []npf.PollAnswer{{AnswerText: "cats"}, {AnswerText: "<dogs>"}},
		})
		want := `<div class="npf-block-poll"><h3 class="npf-block-poll-question">Cats or dogs?</h3>` +
			`<ul class="npf-block-poll-answers"><li>cats</li><li>&lt;dogs&gt;</li></ul></div>`
		if got != want {
			t.Errorf("RenderPoll() =\n%s\nwant\n%s", got, want)
		}
	})

	t.Run("paywall", func(t *testing.T) {
		visible := true
		tests := []struct {
			block npf.PaywallBlock
			want  string
		}{
			{
				npf.PaywallBlock{Subtype: npf.PaywallCTA, URL: "https://p/", Title: "Support", Text: "Join"},
				`<a class="npf-block-paywall npf-block-paywall-cta" href="https://p/">` +
					`<span class="npf-block-paywall-title">Support</span><span class="npf-block-paywall-text">Join</span></a>`,
			},
			{
				npf.PaywallBlock{Subtype: npf.PaywallDivider, Text: "Members only", Color: "#ff0000", IsVisible: &visible},
				`<div class="npf-block-paywall npf-block-paywall-divider" style="color: #ff0000">Members only</div>`,
			},
			{npf.PaywallBlock{Subtype: npf.PaywallDisabled, Text: "x"}, ""},
			{npf.PaywallBlock{Subtype: npf.PaywallDivider, Text: "x", IsVisible: new(bool)}, ""},
		}
		for _, tt := range tests {
			if got := r.RenderPaywall(&tt.block); got != tt.want {
				t.Errorf("RenderPaywall(%s) = %s, want %s", tt.block.Subtype, got, tt.want)
			}
		}
	})
}

func TestRenderAttribution(t *testing.T) {
	r := NewRenderer("", nil)

	tests := []struct {
		name string
		attr *npf.Attribution
		want string
	}{
		{"absent", nil, ""},
		{"empty_array", &npf.Attribution{}, ""},
		{
			"app_without_display",
			&npf.Attribution{Type: npf.AttributionApp, URL: "https://app/"},
			`<a class="npf-attribution npf-attribution-app" href="https://app/">https://app/</a>`,
		},
		{
			"app_name",
			&npf.Attribution{Type: npf.AttributionApp, URL: "https://app/", AppName: "App"},
			`<a class="npf-attribution npf-attribution-app" href="https://app/">App</a>`,
		},
		{
			"blog_without_info",
			&npf.Attribution{Type: npf.AttributionBlog},
			`<a class="npf-attribution npf-attribution-blog" href=""></a>`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.RenderAttribution(tt.attr); got != tt.want {
				t.Errorf("RenderAttribution() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderAskAvatar(t *testing.T) {
	r := NewRenderer("", poster("https://avatar/64.png", 64))
	got := r.RenderAskLayout(&npf.Layout{Type: npf.LayoutAsk, Attribution: &npf.Attribution{}}, "inner")
	want := `<div class="npf-layout-ask"><div class="npf-layout-ask-header">` +
		`<span class="npf-layout-ask-avatar"><img src="https://avatar/64.png"></span>` +
		`<span class="npf-layout-ask-asker">Anonymous</span> asked:</div>` +
		`<div class="npf-layout-ask-content">inner</div></div>`
	if got != want {
		t.Errorf("RenderAskLayout() =\n%s\nwant\n%s", got, want)
	}
}

func TestRenderPost(t *testing.T) {
	post := &npf.Post{
		ID: "2",
		Trail: []npf.TrailItem{{
			Blog:    npf.BlogInfo{Name: "op", URL: "https://op.example/"},
			Post:    npf.PostRef{ID: "1"},
			Content: texts("original"),
		}},
		Content: texts("reply"),
	}

	got, err := RenderPost(post, nil)
	if err != nil {
		t.Fatalf("RenderPost() error = %v", err)
	}
	want := `<div class="npf-trail-item"><div class="npf-trail-header"><a href="https://op.example/">op</a></div>` +
		p("original") + `</div>` + p("reply")
	if got != want {
		t.Errorf("RenderPost() =\n%s\nwant\n%s", got, want)
	}

	post.Trail[0].Layout = []npf.Layout{{Type: npf.LayoutCondensed}}
	if _, err := RenderPost(post, nil); !errors.Is(err, ErrCondensedMissing) {
		t.Errorf("RenderPost() error = %v, want ErrCondensedMissing", err)
	}
}

func TestEscape(t *testing.T) {
	r := NewRenderer("", nil)
	tests := []struct {
		in   string
		want string
	}{
		{`<a href="x">&'`, "&lt;a href=&#34;x&#34;&gt;&amp;&#39;"},
		{"bad\xff\xfebytes", "bad�bytes"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := r.Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package linknorm

import "testing"

func TestNew_MissingScheme(t *testing.T) {
	_, err := New("/crawler.io/base/path1/index.html")
	if err == nil {
		t.Fatal("expected error")
	}
	le, ok := err.(*Error)
	if !ok || le.Kind != MissingScheme {
		t.Fatalf("got %v, want MissingScheme", err)
	}
}

func TestNew_ParseErr(t *testing.T) {
	_, err := New("https://crawler.io/base/%zz/index.html")
	if err == nil {
		t.Fatal("expected error")
	}
	le, ok := err.(*Error)
	if !ok || le.Kind != ParseErr {
		t.Fatalf("got %v, want ParseErr", err)
	}
}

func TestNew_Directory(t *testing.T) {
	n, err := New("https://crawler.io/base/path1/index.html")
	if err != nil {
		t.Fatal(err)
	}
	if n.directory != "/base/path1/" {
		t.Fatalf("directory = %q", n.directory)
	}
	if n.authority != "crawler.io" {
		t.Fatalf("authority = %q", n.authority)
	}
	if n.scheme != "https" {
		t.Fatalf("scheme = %q", n.scheme)
	}
}

func TestNew_PortInAuthority(t *testing.T) {
	n, err := New("https://crawler.io:9089/base/path1/")
	if err != nil {
		t.Fatal(err)
	}
	if n.authority != "crawler.io:9089" {
		t.Fatalf("authority = %q", n.authority)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		page    string
		href    string
		want    string
		wantErr bool
	}{
		{
			name: "absolute url passthrough",
			page: "https://crawler.io/base/path1/page.html",
			href: "https://domain.crawler.io/base/page1.html",
			want: "https://domain.crawler.io/base/page1.html",
		},
		{
			name: "relative url joins base directory",
			page: "https://crawler.io/base/path1/page.html",
			href: "01_getting_started/01_chapter.html",
			want: "https://crawler.io/base/path1/01_getting_started/01_chapter.html",
		},
		{
			name: "root relative",
			page: "https://crawler.io/base/path1/page.html",
			href: "/01_getting_started/01_chapter.html",
			want: "https://crawler.io/01_getting_started/01_chapter.html",
		},
		{
			name: "scheme relative",
			page: "https://crawler.io/base/path1/page.html",
			href: "//crawler.io/base/path1/page2.html",
			want: "https://crawler.io/base/path1/page2.html",
		},
		{
			name: "plain filename joins directory",
			page: "https://crawler.io/base/path1/page.html",
			href: "chapter.html",
			want: "https://crawler.io/base/path1/chapter.html",
		},
		{
			name: "dot dot segments are preserved literally",
			page: "https://crawler.io/base/path1/page.html",
			href: "../chapter.html",
			want: "https://crawler.io/base/path1/../chapter.html",
		},
		{
			name: "fragment only returns page verbatim",
			page: "https://crawler.io/base/path1/index.html",
			href: "#bottom",
			want: "https://crawler.io/base/path1/index.html",
		},
		{
			name:    "javascript scheme is rejected",
			page:    "https://crawler.io/base/path1/index.html",
			href:    "javascript:void(0)",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := New(tt.page)
			if err != nil {
				t.Fatalf("New(%q) failed: %v", tt.page, err)
			}
			got, err := n.Resolve(tt.href)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestResolve_IdentityOnTrailingSlashBase(t *testing.T) {
	page := "https://crawler.io/base/path1/"
	n, err := New(page)
	if err != nil {
		t.Fatal(err)
	}
	href := "https://crawler.io/other/page.html"
	got, err := n.Resolve(href)
	if err != nil {
		t.Fatal(err)
	}
	if got != href {
		t.Errorf("Resolve(%q) = %q, want identity %q", href, got, href)
	}
}

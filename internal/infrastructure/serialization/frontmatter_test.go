package serialization

import (
	"testing"

	"github.com/matryer/is"
)

func TestFrontmatter_RoundTrip(t *testing.T) {
	is := is.New(t)
	data, err := SerializeFrontmatter(map[string]any{
		"title":     "Buy milk",
		"completed": false,
		"createdAt": int64(1700000000000),
	}, "two litres\n\nsemi-skimmed")
	is.NoErr(err)

	doc, err := ParseFrontmatter(data)
	is.NoErr(err)
	is.Equal(doc.Frontmatter["title"], "Buy milk")
	is.Equal(doc.Frontmatter["completed"], false)
	is.Equal(doc.Frontmatter["createdAt"], 1700000000000)
	is.Equal(doc.Content, "two litres\n\nsemi-skimmed")
}

func TestParseFrontmatter_Edges(t *testing.T) {
	is := is.New(t)

	doc, err := ParseFrontmatter(nil)
	is.NoErr(err)
	is.Equal(len(doc.Frontmatter), 0)

	doc, err = ParseFrontmatter([]byte("just text"))
	is.NoErr(err)
	is.Equal(doc.Content, "just text")

	_, err = ParseFrontmatter([]byte("---\ntitle: x\n"))
	is.True(err != nil)

	doc, err = ParseFrontmatter([]byte("---\n---\n"))
	is.NoErr(err)
	is.Equal(doc.Content, "")
}

func TestFrontmatter_ContentWhitespaceSurvives(t *testing.T) {
	is := is.New(t)

	for _, content := range []string{
		"  indented\n\n",
		"\nleading blank line",
		"trailing spaces   ",
		"   ",
		"---\nnot a header",
	} {
		data, err := SerializeFrontmatter(map[string]any{"title": "x"}, content)
		is.NoErr(err)
		doc, err := ParseFrontmatter(data)
		is.NoErr(err)
		is.Equal(doc.Content, content)
	}

	// hand-written files without a final newline
	doc, err := ParseFrontmatter([]byte("---\ntitle: x\n---\nbody"))
	is.NoErr(err)
	is.Equal(doc.Content, "body")
}

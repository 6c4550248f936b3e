package showcase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	cases := map[string]string{
		"<script>alert(1)</script>Hello":                 "Hello",
		"  Hello  ":                                      "Hello",
		"a<SCRIPT type=\"x\">bad()</SCRIPT >b":           "ab",
		"<iframe src=\"//evil\"></iframe>ok":             "ok",
		"<scr<script>x</script>ipt>alert(1)</script>Hey": "Hey",
		"multi\n<script>\nline\n</script>\nkeep":         "multi\n\nkeep",
		"<b>bold stays</b>":                              "<b>bold stays</b>",
	}

	for in, want := range cases {
		assert.Equal(t, want, SanitizeText(in), "input %q", in)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"  MiXeD@Example.COM ",
		"<script>alert(1)</script>Hello",
		"<scr<script>x</script>ipt>alert(1)</script>",
		"plain text",
	}

	for _, s := range inputs {
		once := SanitizeEmail(s)
		assert.Equal(t, once, SanitizeEmail(once))

		text := SanitizeText(s)
		assert.Equal(t, text, SanitizeText(text))
	}
}

func TestSanitizeParams(t *testing.T) {
	p := SanitizeParams(EmailParams{
		ToEmail:   " Owner@Example.com",
		FromEmail: "ADA@example.com ",
		FromName:  " Ada<script>x</script>",
		Subject:   "Hi",
		Message:   "<iframe></iframe>Hello ",
		ReplyTo:   " Reply@Example.com",
		Variables: map[string]interface{}{"raw": "<script>kept</script>"},
	})

	assert.Equal(t, "owner@example.com", p.ToEmail)
	assert.Equal(t, "ada@example.com", p.FromEmail)
	assert.Equal(t, "Ada", p.FromName)
	assert.Equal(t, "Hello", p.Message)
	assert.Equal(t, "reply@example.com", p.ReplyTo)
	assert.Equal(t, "", p.ToName)
	assert.Equal(t, "<script>kept</script>", p.Variables["raw"])
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("a@b.co"))
	assert.True(t, IsValidEmail("first.last+tag@sub.example.com"))

	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("a@b"))
	assert.False(t, IsValidEmail("a b@c.de"))
	assert.False(t, IsValidEmail("@b.co"))
	assert.False(t, IsValidEmail("a@@b.co"))
}

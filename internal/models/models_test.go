package models_test

import (
	"testing"

	qt "github.com/frankban/quicktest"

	"github.com/go-ports/dm/internal/models"
)

func TestNameFromPath_HappyPath(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name string
		dir  string
		want string
	}{
		{"absolute project dir", "/home/u/projects/foo", "foo"},
		{"trailing slash is ignored", "/home/u/projects/foo/", "foo"},
		{"dotted name kept", "/srv/www.example.com", "www.example.com"},
		{"relative dir", "work/bar", "bar"},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(models.NameFromPath(tc.dir), qt.Equals, tc.want)
		})
	}
}

func TestNameFromPath_FailurePath(t *testing.T) {
	c := qt.New(t)

	for _, dir := range []string{"/", ".", ""} {
		c.Run("no base name for "+dir, func(c *qt.C) {
			c.Assert(models.NameFromPath(dir), qt.Equals, "")
		})
	}
}

func TestValidName(t *testing.T) {
	c := qt.New(t)

	cases := []struct {
		name string
		in   string
		want bool
	}{
		{"plain", "foo", true},
		{"with dash inside", "my-proj", true},
		{"empty", "", false},
		{"leading dash", "-foo", false},
		{"surrounding space", " foo", false},
	}

	for _, tc := range cases {
		c.Run(tc.name, func(c *qt.C) {
			c.Assert(models.ValidName(tc.in), qt.Equals, tc.want)
		})
	}
}

func TestBookmarkString(t *testing.T) {
	c := qt.New(t)
	b := models.Bookmark{Name: "foo", Path: "/home/u/projects/foo"}
	c.Assert(b.String(), qt.Equals, "foo -> /home/u/projects/foo")
}

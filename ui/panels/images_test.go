package panels

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCommonDir(t *testing.T) {
	root := filepath.FromSlash("/data/set")
	cases := []struct {
		paths []string
		want  string
	}{
		{nil, ""},
		{[]string{filepath.Join(root, "a.png")}, root},
		{[]string{filepath.Join(root, "a.png"), filepath.Join(root, "sub", "b.png")}, root},
		{[]string{filepath.Join(root, "x", "a.png"), filepath.Join(root, "y", "b.png")}, root},
		{[]string{filepath.Join(root, "a.png"), filepath.FromSlash("/other/b.png")}, filepath.FromSlash("/")},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, commonDir(tc.paths), "%v", tc.paths)
	}
}

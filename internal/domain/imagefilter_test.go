package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	m "github.com/mouse-blink/covlink/internal/model"
)

func TestImageFilter(t *testing.T) {
	mainExe := m.Image{Name: "unittests", Main: true}
	helper := m.Image{Name: "libhelper.so"}
	libc := m.Image{Name: "libc.so.6"}

	t.Run("default exclusions skip system libraries", func(t *testing.T) {
		f := NewImageFilter(m.Options{IncludeLibs: true})

		assert.True(t, f.Admit(mainExe))
		assert.True(t, f.Admit(helper))
		assert.False(t, f.Admit(libc))
	})

	t.Run("no-exclude admits everything", func(t *testing.T) {
		f := NewImageFilter(m.Options{IncludeLibs: true, NoDefaultExcludes: true})

		assert.True(t, f.Admit(libc))
	})

	t.Run("explicit exclusions replace the defaults", func(t *testing.T) {
		f := NewImageFilter(m.Options{IncludeLibs: true, ExcludeImages: []string{"helper"}})

		assert.False(t, f.Admit(helper))
		assert.True(t, f.Admit(libc))
	})

	t.Run("main-executable-only mode rejects all libraries", func(t *testing.T) {
		f := NewImageFilter(m.Options{})

		assert.True(t, f.Admit(mainExe))
		assert.False(t, f.Admit(helper))
	})

	t.Run("include substring restricts to matching images", func(t *testing.T) {
		f := NewImageFilter(m.Options{IncludeLibs: true, FilterImage: "unittests"})

		assert.True(t, f.Admit(mainExe))
		assert.False(t, f.Admit(helper))
	})
}

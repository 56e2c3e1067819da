package domain

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	m "github.com/mouse-blink/covlink/internal/model"
)

// fakeStore keeps segments and lookup lines in memory and can inject
// failures for either.
type fakeStore struct {
	segments    map[string]*bytes.Buffer
	lookup      []string
	failSegment bool
	failLookup  bool
	modules     []m.Image
	modulesPath m.Path
	closed      bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{segments: make(map[string]*bytes.Buffer)}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func (f *fakeStore) CreateSegment(name string) (io.WriteCloser, error) {
	if f.failSegment {
		return nil, errors.New("disk full")
	}

	buf := &bytes.Buffer{}
	f.segments[name] = buf

	return nopCloser{buf}, nil
}

func (f *fakeStore) AppendLookup(key, identifier string) error {
	if f.failLookup {
		return errors.New("lookup gone")
	}

	f.lookup = append(f.lookup, key+";"+identifier)

	return nil
}

func (f *fakeStore) WriteModules(path m.Path, images []m.Image) error {
	f.modulesPath = path
	f.modules = images

	return nil
}

func (f *fakeStore) Close() error {
	f.closed = true
	return nil
}

func testFunction(addr m.Address, symbol string) m.FunctionRecord {
	return m.FunctionRecord{
		Addr:       addr,
		Image:      "unittests",
		ImagePath:  "/bin/unittests",
		ImageLow:   0x400000,
		Symbol:     symbol,
		Size:       0x20,
		SourceFile: "/src/" + m.Path(symbol) + ".cpp",
		SourceLine: 42,
	}
}

func newTestSession(store *fakeStore, opts m.Options) *Session {
	s := NewSession(store, opts)
	s.ImageLoaded(m.Image{Name: "unittests", Path: "/bin/unittests", Low: 0x400000, High: 0x410000, Main: true})

	return s
}

func TestSessionFlush(t *testing.T) {
	t.Run("renders header and one line per covered function", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{})
		s.RecordFunction(testFunction(0x401000, "foo"))
		s.FunctionEntered(0x401000)

		require.NoError(t, s.Flush("A.t1___PASSED"))

		content := store.segments["1.log"].String()
		lines := strings.Split(strings.TrimSuffix(content, "\n"), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "unittests\t/bin/unittests", lines[0])
		assert.Equal(t, "\t+0x1000\t/src/foo.cpp\tfoo\t42", lines[1])
		assert.Equal(t, []string{"1;A.t1___PASSED"}, store.lookup)
	})

	t.Run("sequence starts at one and increases by one per flush", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{})

		require.NoError(t, s.Flush("first"))
		require.NoError(t, s.Flush("second"))
		require.NoError(t, s.Flush("third"))

		assert.Equal(t, []string{"1;first", "2;second", "3;third"}, store.lookup)

		for _, name := range []string{"1.log", "2.log", "3.log"} {
			assert.Contains(t, store.segments, name)
		}
	})

	t.Run("every entry lands in exactly one segment", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{})
		s.RecordFunction(testFunction(0x401000, "foo"))
		s.RecordFunction(testFunction(0x402000, "bar"))

		s.FunctionEntered(0x401000)
		require.NoError(t, s.Flush("one"))

		s.FunctionEntered(0x402000)
		require.NoError(t, s.Flush("two"))

		first := store.segments["1.log"].String()
		second := store.segments["2.log"].String()

		assert.Contains(t, first, "foo")
		assert.NotContains(t, first, "bar")
		assert.Contains(t, second, "bar")
		assert.NotContains(t, second, "foo")
	})

	t.Run("a repeated function is captured once per segment, not once per process", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{})
		s.RecordFunction(testFunction(0x401000, "foo"))

		s.FunctionEntered(0x401000)
		require.NoError(t, s.Flush("one"))

		s.FunctionEntered(0x401000)
		require.NoError(t, s.Flush("two"))

		assert.Contains(t, store.segments["1.log"].String(), "foo")
		assert.Contains(t, store.segments["2.log"].String(), "foo")
	})

	t.Run("a thousand entries contribute one line and a thousand calls", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{})
		s.RecordFunction(testFunction(0x401000, "hot"))

		for i := 0; i < 1000; i++ {
			s.FunctionEntered(0x401000)
		}

		calls, unique := s.Stats()
		assert.Equal(t, uint64(1000), calls)
		assert.Equal(t, 1, unique)

		require.NoError(t, s.Flush("hot"))
		assert.Equal(t, 1, strings.Count(store.segments["1.log"].String(), "hot"))
	})

	t.Run("log-all mode still keeps segment membership set-based", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{LogAllCalls: true})
		s.RecordFunction(testFunction(0x401000, "hot"))

		for i := 0; i < 5; i++ {
			assert.True(t, s.FunctionEntered(0x401000))
		}

		calls, _ := s.Stats()
		assert.Equal(t, uint64(5), calls)

		require.NoError(t, s.Flush("hot"))
		assert.Equal(t, 1, strings.Count(store.segments["1.log"].String(), "hot"))
	})

	t.Run("an address without metadata is silently omitted", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{})

		s.FunctionEntered(0x999999)
		require.NoError(t, s.Flush("sparse"))

		content := store.segments["1.log"].String()
		assert.Equal(t, "unittests\t/bin/unittests\n", content)
	})

	t.Run("missing debug info renders the unknown marker and line zero", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{})
		s.RecordFunction(m.FunctionRecord{Addr: 0x401000, ImageLow: 0x400000, Symbol: "stripped"})
		s.FunctionEntered(0x401000)

		require.NoError(t, s.Flush("stripped"))

		assert.Contains(t, store.segments["1.log"].String(), "\t+0x1000\t??\tstripped\t0\n")
	})
}

func TestSessionProcessTag(t *testing.T) {
	t.Run("tags filenames and lookup keys when following children", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{FollowChildren: true, ProcessID: 412})

		require.NoError(t, s.Flush("child"))

		assert.Contains(t, store.segments, "pid412_1.log")
		assert.Equal(t, []string{"pid412_1;child"}, store.lookup)
	})

	t.Run("two tagged processes never collide", func(t *testing.T) {
		parentStore := newFakeStore()
		childStore := newFakeStore()
		parent := newTestSession(parentStore, m.Options{FollowChildren: true, ProcessID: 100})
		child := newTestSession(childStore, m.Options{FollowChildren: true, ProcessID: 200})

		require.NoError(t, parent.Flush("p"))
		require.NoError(t, child.Flush("c"))

		assert.Contains(t, parentStore.segments, "pid100_1.log")
		assert.Contains(t, childStore.segments, "pid200_1.log")
	})
}

func TestSessionFlushErrors(t *testing.T) {
	t.Run("segment write failure still appends lookup, advances and clears", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{})
		s.RecordFunction(testFunction(0x401000, "foo"))
		s.FunctionEntered(0x401000)

		store.failSegment = true
		assert.Error(t, s.Flush("lost"))
		assert.Equal(t, []string{"1;lost"}, store.lookup)

		store.failSegment = false
		require.NoError(t, s.Flush("next"))
		assert.Equal(t, "2;next", store.lookup[1])

		// Working set was cleared by the failed flush.
		assert.NotContains(t, store.segments["2.log"].String(), "foo")
	})

	t.Run("lookup append failure is an error but the sequence keeps advancing", func(t *testing.T) {
		store := newFakeStore()
		s := newTestSession(store, m.Options{})

		store.failLookup = true
		assert.Error(t, s.Flush("uncorrelated"))

		store.failLookup = false
		require.NoError(t, s.Flush("ok"))
		assert.Equal(t, []string{"2;ok"}, store.lookup)
	})
}

func TestSessionClose(t *testing.T) {
	t.Run("writes the module list when configured", func(t *testing.T) {
		store := newFakeStore()
		s := NewSession(store, m.Options{ModulesFile: "modules.yaml"})
		s.ImageLoaded(m.Image{Name: "unittests", Main: true})
		s.ImageLoaded(m.Image{Name: "libhelper.so"})

		require.NoError(t, s.Close())

		assert.True(t, store.closed)
		assert.Equal(t, m.Path("modules.yaml"), store.modulesPath)
		require.Len(t, store.modules, 2)
		assert.Equal(t, "unittests", store.modules[0].Name)
	})

	t.Run("releases the store when no module list is requested", func(t *testing.T) {
		store := newFakeStore()
		s := NewSession(store, m.Options{})

		require.NoError(t, s.Close())
		assert.True(t, store.closed)
		assert.Empty(t, store.modulesPath)
	})
}

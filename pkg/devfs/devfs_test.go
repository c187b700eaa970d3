package devfs

import (
	"sync"
	"testing"

	"github.com/example/devfs/pkg/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRegisterDevice_RoundTrip tests that a registered node is returned for
// its number.
func TestRegisterDevice_RoundTrip(t *testing.T) {
	t.Parallel()

	d := New()
	pairs := [][2]uint32{{1, 3}, {1, 5}, {0, 0}, {0xffff_ffff, 0xffff_ffff}, {5, 1}}

	nodes := make([]fs.Node, len(pairs))
	for i, p := range pairs {
		nodes[i] = &ZeroDev{}
		d.RegisterDevice(p[0], p[1], nodes[i])
	}

	for i, p := range pairs {
		node, ok := d.GetDevice(p[0], p[1])
		require.True(t, ok, "device %d:%d should be registered", p[0], p[1])
		assert.Same(t, nodes[i], node)
	}
}

// TestGetDevice_Unregistered tests that unknown numbers resolve to nothing.
func TestGetDevice_Unregistered(t *testing.T) {
	t.Parallel()

	d := New()
	d.RegisterDevice(1, 3, &NullDev{})

	for _, p := range [][2]uint32{{1, 4}, {3, 1}, {0, 0}} {
		node, ok := d.GetDevice(p[0], p[1])
		assert.False(t, ok)
		assert.Nil(t, node)
	}
}

// TestRegisterDevice_LastWriterWins tests that re-registering replaces the
// earlier node.
func TestRegisterDevice_LastWriterWins(t *testing.T) {
	t.Parallel()

	d := New()
	first := &ZeroDev{}
	second := &NullDev{}

	d.RegisterDevice(1, 5, first)
	d.RegisterDevice(1, 5, second)

	node, ok := d.GetDevice(1, 5)
	require.True(t, ok)
	assert.Same(t, second, node)
	assert.Len(t, d.Devices(), 1)
}

// TestTreeAndRegistry_Independent tests that attaching a node to the tree
// does not register it and vice versa.
func TestTreeAndRegistry_Independent(t *testing.T) {
	t.Parallel()

	d := New()
	zero := &ZeroDev{}
	d.Mkdir("a").Add("b", zero)

	node, err := d.RootDir().Lookup("/a/b")
	require.NoError(t, err)
	assert.Same(t, zero, node)
	assert.Empty(t, d.Devices())

	_, ok := d.DeviceOf(zero)
	assert.False(t, ok)

	null := &NullDev{}
	d.RegisterDevice(1, 3, null)

	_, err = d.RootDir().Lookup("null")
	require.ErrorIs(t, err, fs.ErrNotExist)
}

// TestAdd_SharedInstance tests that tree and registry hand out the same
// instance.
func TestAdd_SharedInstance(t *testing.T) {
	t.Parallel()

	d := New()
	zero := &ZeroDev{}
	d.Add("zero", zero)
	d.RegisterDevice(1, 5, zero)

	byPath, err := fs.Resolve(d.RootDir(), "/zero")
	require.NoError(t, err)
	byID, ok := d.GetDevice(1, 5)
	require.True(t, ok)

	assert.Same(t, byPath, byID)

	id, ok := d.DeviceOf(byPath)
	require.True(t, ok)
	assert.Equal(t, MakeDev(1, 5), id)
}

// taggedDev is a value-typed node that cannot be compared with ==.
type taggedDev struct {
	fs.FileDefaults
	tags []string
}

func (taggedDev) GetAttr() (fs.NodeAttr, error) {
	return fs.NodeAttr{Mode: fs.DefaultFile(), Type: fs.FileTypeChar}, nil
}

func (taggedDev) ReadAt(uint64, []byte) (int, error) { return 0, nil }

func (taggedDev) WriteAt(_ uint64, buf []byte) (int, error) { return len(buf), nil }

// TestDeviceOf_UncomparableNode tests that reverse lookups involving a node
// of an uncomparable type report no match instead of panicking.
func TestDeviceOf_UncomparableNode(t *testing.T) {
	t.Parallel()

	d := New()
	d.RegisterDevice(4, 1, taggedDev{tags: []string{"a"}})
	zero := &ZeroDev{}
	d.RegisterDevice(1, 5, zero)

	assert.NotPanics(t, func() {
		_, ok := d.DeviceOf(taggedDev{tags: []string{"a"}})
		assert.False(t, ok)
	})

	id, ok := d.DeviceOf(zero)
	require.True(t, ok)
	assert.Equal(t, MakeDev(1, 5), id)
}

// TestMount_UncomparableParent tests mounting below parents that cannot be
// compared.
func TestMount_UncomparableParent(t *testing.T) {
	t.Parallel()

	d := New()
	first := NewDirNode(taggedDev{tags: []string{"x"}})
	second := NewDirNode(taggedDev{tags: []string{"y"}})

	assert.NotPanics(t, func() {
		require.NoError(t, d.Mount("/dev", first))
		require.NoError(t, d.Mount("/dev", second))
	})
	assert.True(t, d.Mounted())
}

// TestDevices_Sorted tests that registered numbers are listed in order.
func TestDevices_Sorted(t *testing.T) {
	t.Parallel()

	d := New()
	d.RegisterDevice(2, 0, &ZeroDev{})
	d.RegisterDevice(1, 9, &ZeroDev{})
	d.RegisterDevice(1, 3, &ZeroDev{})

	assert.Equal(t, []DeviceID{MakeDev(1, 3), MakeDev(1, 9), MakeDev(2, 0)}, d.Devices())
}

// TestDeviceOf_LowestID tests the reverse lookup of a node registered twice.
func TestDeviceOf_LowestID(t *testing.T) {
	t.Parallel()

	d := New()
	node := &URandomDev{}
	d.RegisterDevice(1, 9, node)
	d.RegisterDevice(1, 8, node)

	id, ok := d.DeviceOf(node)
	require.True(t, ok)
	assert.Equal(t, MakeDev(1, 8), id)
}

// TestMount_WithoutParent tests that mounting over a parentless node leaves
// the root without a parent.
func TestMount_WithoutParent(t *testing.T) {
	t.Parallel()

	d := New()
	mountPoint := NewDirNode(nil)

	require.NoError(t, d.Mount("/dev", mountPoint))

	assert.Nil(t, d.RootDir().Parent())
	assert.False(t, d.Mounted())
}

// TestMount_AdoptsParent tests that the root adopts the mount point's parent.
func TestMount_AdoptsParent(t *testing.T) {
	t.Parallel()

	host := NewDirNode(nil)
	mountPoint := host.Mkdir("dev")
	d := New()

	require.NoError(t, d.Mount("/dev", mountPoint))

	assert.Same(t, host, d.RootDir().Parent())
	assert.True(t, d.Mounted())

	node, err := d.RootDir().Lookup("..")
	require.NoError(t, err)
	assert.Same(t, host, node)
}

// TestMount_FirstParentKept tests that a second mount under another parent
// keeps the first parent, and that a parentless mount clears it.
func TestMount_FirstParentKept(t *testing.T) {
	t.Parallel()

	first := NewDirNode(nil)
	second := NewDirNode(nil)
	d := New()

	require.NoError(t, d.Mount("/dev", first.Mkdir("dev")))
	require.NoError(t, d.Mount("/other", second.Mkdir("dev")))
	assert.Same(t, first, d.RootDir().Parent())

	require.NoError(t, d.Mount("/", NewDirNode(nil)))
	assert.Nil(t, d.RootDir().Parent())

	require.NoError(t, d.Mount("/dev", second.Mkdir("dev")))
	assert.Same(t, first, d.RootDir().Parent())
}

// TestRegistry_Concurrent tests concurrent registration and lookup.
func TestRegistry_Concurrent(t *testing.T) {
	t.Parallel()

	d := New()
	const workers = 16

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func(minor uint32) {
			defer wg.Done()
			node := &ZeroDev{}
			d.RegisterDevice(7, minor, node)
			got, ok := d.GetDevice(7, minor)
			assert.True(t, ok)
			assert.Same(t, node, got)
		}(uint32(i))
	}
	wg.Wait()

	assert.Len(t, d.Devices(), workers)
}

// TestNewStandard_Layout tests the standard device set.
func TestNewStandard_Layout(t *testing.T) {
	t.Parallel()

	d := NewStandard()

	for _, tt := range []struct {
		name  string
		minor uint32
	}{
		{"null", NullMinor},
		{"zero", ZeroMinor},
		{"random", RandomMinor},
		{"urandom", URandomMinor},
	} {
		byPath, err := d.RootDir().Lookup(tt.name)
		require.NoError(t, err, tt.name)
		byID, ok := d.GetDevice(MemMajor, tt.minor)
		require.True(t, ok, tt.name)
		assert.Same(t, byPath, byID, tt.name)
	}

	for _, name := range []string{"pts", "shm"} {
		node, err := d.RootDir().Lookup(name)
		require.NoError(t, err)
		attr, err := node.GetAttr()
		require.NoError(t, err)
		assert.True(t, attr.IsDir())
	}
}

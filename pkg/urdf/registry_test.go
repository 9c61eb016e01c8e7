package urdf

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(LinkNamespace, "base"))

	err := r.Register(LinkNamespace, "base")
	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Contains(t, err.Error(), `link name "base"`)
}

func TestRegistryNamespacesAreIndependent(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(LinkNamespace, "arm"))
	require.NoError(t, r.Register(JointNamespace, "arm"))
	require.NoError(t, r.Register(MaterialNamespace, "arm"))

	assert.True(t, r.Has(LinkNamespace, "arm"))
	assert.True(t, r.Has(JointNamespace, "arm"))
	assert.True(t, r.Has(MaterialNamespace, "arm"))
	assert.False(t, r.Has(LinkNamespace, "base"))
}

func TestRegistryNamesKeepDeclarationOrder(t *testing.T) {
	r := NewRegistry()
	for _, n := range []string{"world", "base", "arm"} {
		require.NoError(t, r.Register(LinkNamespace, n))
	}
	assert.Equal(t, []string{"world", "base", "arm"}, r.Names(LinkNamespace))
	assert.Empty(t, r.Names(JointNamespace))
}

func TestRegistryConcurrentRegisterIsAtMostOnce(t *testing.T) {
	r := NewRegistry()
	const writers = 16
	const names = 50

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := make(map[string]int)
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < names; i++ {
				name := fmt.Sprintf("link_%d", i)
				if r.Register(LinkNamespace, name) == nil {
					mu.Lock()
					wins[name]++
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	require.Len(t, wins, names)
	for name, n := range wins {
		assert.Equal(t, 1, n, "name %s registered %d times", name, n)
	}
}

func TestNamespaceString(t *testing.T) {
	assert.Equal(t, "link", LinkNamespace.String())
	assert.Equal(t, "joint", JointNamespace.String())
	assert.Equal(t, "material", MaterialNamespace.String())
	assert.Equal(t, "Namespace(7)", Namespace(7).String())
}

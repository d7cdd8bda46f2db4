package k8sutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNamespace(t *testing.T) {
	require.Equal(t, "licensing", Namespace("licensing"))

	t.Setenv(podNamespaceEnv, "from-pod")
	require.Equal(t, "from-pod", Namespace(""))
}

package apierror

import (
	"net"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name        string
		kind        Kind
		message     string
		wantMessage string
	}{
		{
			name:        "default message",
			kind:        KindMissingKey,
			wantMessage: "Please enter a license key",
		},
		{
			name:        "custom message",
			kind:        KindInvalidLicense,
			message:     "nope",
			wantMessage: "nope",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.kind, tt.message)
			require.Equal(t, tt.kind, err.Kind)
			require.Equal(t, string(tt.kind), err.Code)
			require.Equal(t, tt.wantMessage, err.Message)
		})
	}
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{
			name: "nil",
			err:  nil,
			want: "",
		},
		{
			name: "direct",
			err:  New(KindNotFound, ""),
			want: KindNotFound,
		},
		{
			name: "wrapped",
			err:  errors.Wrap(New(KindRevoked, ""), "failed to validate license"),
			want: KindRevoked,
		},
		{
			name: "server passthrough",
			err:  Server(422, "license_expired", "expired"),
			want: KindServerError,
		},
		{
			name: "foreign error",
			err:  errors.New("boom"),
			want: KindUnknownError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestNetwork(t *testing.T) {
	cause := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	err := Network(cause)

	require.True(t, IsKind(err, KindNetworkError))
	require.False(t, IsNotFound(err))

	var opErr *net.OpError
	require.True(t, errors.As(err, &opErr))
}

package server

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/devfs/pkg/fs"
)

func TestToStatus_Mapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want codes.Code
	}{
		{fs.NewError("lookup", "/x", fs.ErrNotExist), codes.NotFound},
		{fs.ErrPermission, codes.PermissionDenied},
		{fs.ErrReadOnly, codes.PermissionDenied},
		{fs.ErrIsDir, codes.FailedPrecondition},
		{fs.ErrNotDir, codes.FailedPrecondition},
		{fs.ErrInvalidHandle, codes.InvalidArgument},
		{fs.ErrNotSupported, codes.Unimplemented},
		{errors.New("boom"), codes.Internal},
		{status.Error(codes.Aborted, "already a status"), codes.Aborted},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, status.Code(toStatus(tt.err)), tt.err.Error())
	}

	assert.NoError(t, toStatus(nil))
}

func TestNewDeviceServer_InvalidConfig(t *testing.T) {
	t.Parallel()

	config := DefaultConfig()
	config.MaxConcurrent = 0
	_, err := NewDeviceServer(config, nil, nil)
	assert.Error(t, err)

	config = DefaultConfig()
	config.MaxReadSize = -1
	_, err = NewDeviceServer(config, nil, nil)
	assert.Error(t, err)
}

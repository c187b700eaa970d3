package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/example/devfs/pkg/api"
	"github.com/example/devfs/pkg/devfs"
	"github.com/example/devfs/pkg/fs"
)

func TestStat(t *testing.T) {
	t.Parallel()

	env := startTestServer(t, nil)

	resp, err := env.client.Stat(context.Background(), wrapperspb.String("/zero"))
	require.NoError(t, err)
	assert.Equal(t, fs.NodeAttr{Mode: fs.DefaultFile(), Type: fs.FileTypeChar}, api.AttrFromStruct(resp))

	resp, err = env.client.Stat(context.Background(), wrapperspb.String("/"))
	require.NoError(t, err)
	assert.Equal(t, fs.NewDirAttr(4096, 0), api.AttrFromStruct(resp))

	_, err = env.client.Stat(context.Background(), wrapperspb.String("/missing"))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestList(t *testing.T) {
	t.Parallel()

	env := startTestServer(t, nil)
	env.devfs.Mkdir("pts").Add("0", &devfs.NullDev{})

	resp, err := env.client.List(context.Background(), wrapperspb.String("/pts"))
	require.NoError(t, err)
	assert.Equal(t, []fs.DirEntry{
		{Name: ".", Type: fs.FileTypeDirectory},
		{Name: "..", Type: fs.FileTypeDirectory},
		{Name: "0", Type: fs.FileTypeChar},
	}, api.EntriesFromStruct(resp))

	_, err = env.client.List(context.Background(), wrapperspb.String("/zero"))
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))
}

func TestDevices(t *testing.T) {
	t.Parallel()

	env := startTestServer(t, nil)

	resp, err := env.client.Devices(context.Background(), &emptypb.Empty{})
	require.NoError(t, err)

	var ids []string
	for _, d := range api.DevicesFromStruct(resp) {
		ids = append(ids, d.ID.String())
		assert.Equal(t, fs.FileTypeChar, d.Type)
	}
	assert.Equal(t, []string{"1:3", "1:5", "1:8", "1:9"}, ids)
}
